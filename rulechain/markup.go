package rulechain

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TagName returns the lower-cased tag name of an element, or "" for any
// other node type.
func TagName(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	return strings.ToLower(n.Data)
}

// Attr returns the value of the named attribute.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, attr := range n.Attr {
		if attr.Namespace == "" && strings.EqualFold(attr.Key, key) {
			return attr.Val, true
		}
	}
	return "", false
}

// ChildNodes returns the direct children of n in document order.
func ChildNodes(n *html.Node) []*html.Node {
	if n == nil {
		return nil
	}
	var children []*html.Node
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		children = append(children, child)
	}
	return children
}

// FirstSignificantChild returns the only child of n that is not a comment or
// whitespace-only text. It returns nil when n has zero or several such children.
func FirstSignificantChild(n *html.Node) *html.Node {
	var found *html.Node
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case html.CommentNode:
			continue
		case html.TextNode:
			if strings.TrimSpace(child.Data) == "" {
				continue
			}
		}
		if found != nil {
			return nil
		}
		found = child
	}
	return found
}

// Element creates a detached element and appends children to it. Children
// must be detached nodes.
func Element(tag string, attrs []html.Attribute, children ...*html.Node) *html.Node {
	el := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
	for _, child := range children {
		if child == nil {
			continue
		}
		el.AppendChild(child)
	}
	return el
}

// TextNode creates a detached text node.
func TextNode(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}
