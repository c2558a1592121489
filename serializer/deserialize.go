package serializer

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/rgonek/richtext-html/model"
	"github.com/rgonek/richtext-html/rulechain"
)

// opaqueElements are never unwrapped: their children are not content.
var opaqueElements = map[string]bool{
	"script":   true,
	"style":    true,
	"template": true,
	"head":     true,
	"title":    true,
	"meta":     true,
	"noscript": true,
}

// boundaryElements break inline flow, so layout whitespace next to them is
// not content.
var boundaryElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"body": true, "br": true, "dd": true, "div": true, "dl": true, "dt": true,
	"figure": true, "footer": true, "form": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "header": true, "hr": true,
	"li": true, "main": true, "nav": true, "ol": true, "p": true, "pre": true,
	"section": true, "table": true, "tbody": true, "td": true, "tfoot": true,
	"th": true, "thead": true, "tr": true, "ul": true,
}

// Deserialize parses markup as a body fragment and converts it to a document.
func (s *Serializer) Deserialize(markup string) (DeserializeResult, error) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return DeserializeResult{}, fmt.Errorf("%w: failed to parse markup: %w", ErrMalformedInput, err)
	}

	return s.DeserializeNodes(nodes)
}

// DeserializeNodes converts an already parsed node sequence to a document.
// A document node is read from its body.
func (s *Serializer) DeserializeNodes(nodes []*html.Node) (DeserializeResult, error) {
	st := s.newState()

	content, err := st.deserializeNodes(nodes, 1)
	if err != nil {
		return DeserializeResult{}, err
	}

	doc := model.Document{Nodes: st.wrapTopLevel(content)}
	if len(doc.Nodes) == 0 {
		doc.Nodes = []model.Node{model.Block(st.config.DefaultBlock, nil)}
	}

	return DeserializeResult{
		Document: doc,
		Warnings: st.warnings,
	}, nil
}

func (st *state) deserializeNodes(nodes []*html.Node, depth int) ([]model.Node, error) {
	var content []model.Node
	for idx, n := range nodes {
		if n == nil {
			return nil, fmt.Errorf("%w: nil markup node", ErrMalformedInput)
		}
		if isCruft(n) {
			continue
		}
		if isLayoutWhitespace(n) {
			if !inlineNeighbors(nodes, idx) {
				continue
			}
			content = appendNode(content, model.Text(" "))
			continue
		}

		converted, err := st.deserializeNode(n, depth)
		if err != nil {
			return nil, err
		}
		for _, node := range converted {
			content = appendNode(content, node)
		}
	}
	return content, nil
}

func (st *state) deserializeNode(n *html.Node, depth int) ([]model.Node, error) {
	if depth > st.config.MaxDepth {
		return nil, fmt.Errorf("%w: nesting exceeds max depth %d", ErrMalformedInput, st.config.MaxDepth)
	}

	if n.Type == html.DocumentNode {
		root := n
		if body := findElement(n, atom.Body); body != nil {
			root = body
		}
		return st.deserializeNodes(rulechain.ChildNodes(root), depth)
	}

	node, outcome, err := st.chain.Deserialize(n, st.next(n, depth))
	if err != nil {
		return nil, err
	}

	switch outcome {
	case rulechain.Matched:
		return st.expand(node)
	case rulechain.Unwrapped:
		return node.Nodes, nil
	case rulechain.Dropped:
		st.logger.WithField("tag", rulechain.TagName(n)).Debug("node dropped by rule")
		return nil, nil
	}

	if n.Type == html.TextNode {
		return []model.Node{model.Text(n.Data)}, nil
	}
	return st.unknownElement(n, depth)
}

// next returns the recurse callback bound to parent.
func (st *state) next(parent *html.Node, depth int) rulechain.Next {
	return func(children []*html.Node) ([]model.Node, error) {
		for _, child := range children {
			if !st.isDescendant(child, parent) {
				return nil, fmt.Errorf("%w: recurse target is not a descendant of <%s>", ErrMalformedInput, rulechain.TagName(parent))
			}
		}
		return st.deserializeNodes(children, depth+1)
	}
}

func (st *state) isDescendant(child, parent *html.Node) bool {
	if child == nil {
		return false
	}
	steps := 0
	for ancestor := child.Parent; ancestor != nil; ancestor = ancestor.Parent {
		if ancestor == parent {
			return true
		}
		steps++
		if steps > st.config.MaxDepth {
			return false
		}
	}
	return false
}

// expand turns a matched rule descriptor into the nodes spliced into the
// parent. Mark descriptors are flattened onto their text leaves.
func (st *state) expand(node model.Node) ([]model.Node, error) {
	switch node.Object {
	case model.KindMark:
		if node.Type == "" {
			return nil, fmt.Errorf("%w: rule returned a mark without type", ErrMalformedInput)
		}
		return applyMark(node.Nodes, model.Mark{Type: node.Type, Data: node.Data}), nil
	case model.KindBlock, model.KindInline:
		if node.Type == "" {
			return nil, fmt.Errorf("%w: rule returned a %s without type", ErrMalformedInput, node.Object)
		}
		return []model.Node{node}, nil
	case model.KindText:
		return []model.Node{node}, nil
	default:
		return nil, fmt.Errorf("%w: rule returned %q object", ErrMalformedInput, node.Object)
	}
}

func (st *state) unknownElement(n *html.Node, depth int) ([]model.Node, error) {
	tag := rulechain.TagName(n)

	switch st.config.UnknownElements {
	case UnknownError:
		return nil, fmt.Errorf("%w: <%s>", ErrUnknownElement, tag)
	case UnknownUnwrap:
		if !opaqueElements[tag] {
			st.addWarning(WarningUnknownElement, tag, fmt.Sprintf("unrecognized element <%s> unwrapped", tag))
			return st.deserializeNodes(rulechain.ChildNodes(n), depth+1)
		}
	}

	st.addWarning(WarningUnknownElement, tag, fmt.Sprintf("unrecognized element <%s> dropped", tag))
	return nil, nil
}

// wrapTopLevel wraps runs of top-level inline and text nodes in default
// blocks. Whitespace-only text that would start a new block is dropped.
func (st *state) wrapTopLevel(content []model.Node) []model.Node {
	var blocks []model.Node
	wrapping := false
	for _, node := range content {
		if node.Object == model.KindBlock {
			blocks = append(blocks, node)
			wrapping = false
			continue
		}
		if wrapping {
			last := &blocks[len(blocks)-1]
			last.Nodes = appendNode(last.Nodes, node)
			continue
		}
		if node.Object == model.KindText && strings.TrimSpace(node.Text) == "" {
			continue
		}
		blocks = append(blocks, model.Block(st.config.DefaultBlock, nil, node))
		wrapping = true
	}
	return blocks
}

// isCruft reports nodes skipped before dispatch.
func isCruft(n *html.Node) bool {
	switch n.Type {
	case html.CommentNode, html.DoctypeNode, html.ErrorNode:
		return true
	}
	return false
}

// isLayoutWhitespace reports whitespace-only text holding a line break
// outside preformatted content.
func isLayoutWhitespace(n *html.Node) bool {
	if n.Type != html.TextNode || !strings.ContainsAny(n.Data, "\r\n") || strings.TrimSpace(n.Data) != "" {
		return false
	}
	for ancestor := n.Parent; ancestor != nil; ancestor = ancestor.Parent {
		if ancestor.Type == html.ElementNode && ancestor.DataAtom == atom.Pre {
			return false
		}
	}
	return true
}

// inlineNeighbors reports whether nodes[idx] sits between two inline
// siblings, where layout whitespace separates words.
func inlineNeighbors(nodes []*html.Node, idx int) bool {
	return isInlineSibling(nodes, idx, -1) && isInlineSibling(nodes, idx, 1)
}

func isInlineSibling(nodes []*html.Node, idx, step int) bool {
	for pos := idx + step; pos >= 0 && pos < len(nodes); pos += step {
		n := nodes[pos]
		if n == nil || isCruft(n) {
			continue
		}
		switch n.Type {
		case html.TextNode:
			return true
		case html.ElementNode:
			return !boundaryElements[rulechain.TagName(n)]
		}
		return false
	}
	return false
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findElement(child, a); found != nil {
			return found
		}
	}
	return nil
}
