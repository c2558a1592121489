package serializer

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/rgonek/richtext-html/model"
	"github.com/rgonek/richtext-html/rulechain"
)

// Serialize renders doc as an HTML string.
func (s *Serializer) Serialize(doc model.Document) (Result, error) {
	nodes, warnings, err := s.SerializeNodes(doc)
	if err != nil {
		return Result{}, err
	}

	var sb strings.Builder
	for _, n := range nodes {
		if err := html.Render(&sb, n); err != nil {
			return Result{}, fmt.Errorf("failed to render markup: %w", err)
		}
	}

	return Result{
		HTML:     sb.String(),
		Warnings: warnings,
	}, nil
}

// SerializeNodes renders doc as detached markup nodes in document order.
func (s *Serializer) SerializeNodes(doc model.Document) ([]*html.Node, []Warning, error) {
	st := s.newState()

	nodes, err := st.serializeChildren(doc.Nodes, 1, false)
	if err != nil {
		return nil, nil, err
	}
	return nodes, st.warnings, nil
}

// serializeChildren renders a child sequence. Text under a preformatted
// block keeps its newlines as text.
func (st *state) serializeChildren(nodes []model.Node, depth int, preformatted bool) ([]*html.Node, error) {
	var out []*html.Node
	for idx := 0; idx < len(nodes); {
		if nodes[idx].Object != model.KindText {
			rendered, err := st.serializeNode(nodes[idx], depth, preformatted)
			if err != nil {
				return nil, err
			}
			out = append(out, rendered...)
			idx++
			continue
		}

		end := idx
		for end < len(nodes) && nodes[end].Object == model.KindText {
			if len(nodes[end].Nodes) > 0 {
				return nil, fmt.Errorf("%w: text leaf with child nodes", ErrMalformedInput)
			}
			end++
		}
		rendered, err := st.serializeTextRun(nodes[idx:end], 0, preformatted)
		if err != nil {
			return nil, err
		}
		out = append(out, rendered...)
		idx = end
	}
	return out, nil
}

func (st *state) serializeNode(node model.Node, depth int, preformatted bool) ([]*html.Node, error) {
	if depth > st.config.MaxDepth {
		return nil, fmt.Errorf("%w: nesting exceeds max depth %d", ErrMalformedInput, st.config.MaxDepth)
	}

	switch node.Object {
	case model.KindBlock, model.KindInline:
	case model.KindDocument:
		return nil, fmt.Errorf("%w: nested document", ErrMalformedInput)
	case model.KindMark:
		return nil, fmt.Errorf("%w: mark node %q in model", ErrMalformedInput, node.Type)
	default:
		return nil, fmt.Errorf("%w: unknown node object %q", ErrMalformedInput, node.Object)
	}

	if node.Object == model.KindBlock && node.Type == BlockCode {
		preformatted = true
	}
	children, err := st.serializeChildren(node.Nodes, depth+1, preformatted)
	if err != nil {
		return nil, err
	}

	obj := rulechain.Object{Kind: node.Object, Type: node.Type, Data: node.Data.Clone()}
	out, outcome := st.chain.Serialize(obj, children)
	switch outcome {
	case rulechain.Matched:
		return out, nil
	case rulechain.Dropped:
		st.logger.WithField("type", node.Type).Debug("node dropped by rule")
		return nil, nil
	}

	st.addWarning(WarningUnrenderableNode, node.Type, fmt.Sprintf("no rule renders %s %q; node omitted", node.Object, node.Type))
	return nil, nil
}

// serializeTextRun renders adjacent text leaves that share their first level
// marks, grouping consecutive leaves by the mark at index level.
func (st *state) serializeTextRun(leaves []model.Node, level int, preformatted bool) ([]*html.Node, error) {
	var out []*html.Node
	for idx := 0; idx < len(leaves); {
		leaf := leaves[idx]
		if len(leaf.Marks) <= level {
			out = append(out, st.serializeText(leaf.Text, preformatted)...)
			idx++
			continue
		}

		mark := leaf.Marks[level]
		end := idx + 1
		for end < len(leaves) && len(leaves[end].Marks) > level && sameMark(leaves[end].Marks[level], mark) {
			end++
		}

		children, err := st.serializeTextRun(leaves[idx:end], level+1, preformatted)
		if err != nil {
			return nil, err
		}
		wrapped, err := st.serializeMark(mark, children)
		if err != nil {
			return nil, err
		}
		out = append(out, wrapped...)
		idx = end
	}
	return out, nil
}

func (st *state) serializeMark(mark model.Mark, children []*html.Node) ([]*html.Node, error) {
	obj := rulechain.Object{Kind: model.KindMark, Type: mark.Type, Data: mark.Data.Clone()}
	out, outcome := st.chain.Serialize(obj, children)
	switch outcome {
	case rulechain.Matched:
		return out, nil
	case rulechain.Dropped:
		return nil, nil
	}

	if st.config.UnknownMarks == UnknownError {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMark, mark.Type)
	}
	st.addWarning(WarningUnknownMark, mark.Type, fmt.Sprintf("no rule renders mark %q; formatting dropped", mark.Type))
	return children, nil
}

func (st *state) serializeText(text string, preformatted bool) []*html.Node {
	if text == "" {
		return nil
	}

	out, outcome := st.chain.Serialize(rulechain.Object{Kind: model.KindText, Text: text}, nil)
	switch outcome {
	case rulechain.Matched:
		return out
	case rulechain.Dropped:
		return nil
	}

	if preformatted {
		return []*html.Node{rulechain.TextNode(text)}
	}
	return textWithBreaks(text)
}

// textWithBreaks renders text as text nodes with a <br> per newline.
func textWithBreaks(text string) []*html.Node {
	var out []*html.Node
	for idx, part := range strings.Split(text, "\n") {
		if idx > 0 {
			out = append(out, rulechain.Element("br", nil))
		}
		if part != "" {
			out = append(out, rulechain.TextNode(part))
		}
	}
	return out
}
