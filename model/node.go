package model

// Kind identifies which variant of the document model a node holds.
type Kind string

const (
	KindDocument Kind = "document"
	KindBlock    Kind = "block"
	KindInline   Kind = "inline"
	KindMark     Kind = "mark"
	KindText     Kind = "text"
)

// Data holds opaque node attributes. Values are passed through verbatim.
type Data map[string]any

// Clone returns a shallow copy of the data map.
func (d Data) Clone() Data {
	if d == nil {
		return nil
	}
	cloned := make(Data, len(d))
	for key, value := range d {
		cloned[key] = value
	}
	return cloned
}

// GetString returns the string value stored under key, or fallback when the
// key is missing or holds a non-string value.
func (d Data) GetString(key, fallback string) string {
	if d == nil {
		return fallback
	}
	if value, ok := d[key].(string); ok {
		return value
	}
	return fallback
}

// Mark represents formatting attached to a text leaf (e.g., bold, italic).
type Mark struct {
	Type string `json:"type"`
	Data Data   `json:"data,omitempty"`
}

// Node represents any non-root node of the document model.
//
// Block and inline nodes use Type, Data and Nodes. Text leaves use Text and
// Marks. Mark nodes only exist as rule results during deserialization and are
// flattened onto the text leaves below them.
type Node struct {
	Object Kind   `json:"object"`
	Type   string `json:"type,omitempty"`
	Data   Data   `json:"data,omitempty"`
	Nodes  []Node `json:"nodes,omitempty"`
	Text   string `json:"text,omitempty"`
	Marks  []Mark `json:"marks,omitempty"`
}

// Block creates a block node.
func Block(nodeType string, data Data, nodes ...Node) Node {
	return Node{Object: KindBlock, Type: nodeType, Data: data, Nodes: nodes}
}

// Inline creates an inline node.
func Inline(nodeType string, data Data, nodes ...Node) Node {
	return Node{Object: KindInline, Type: nodeType, Data: data, Nodes: nodes}
}

// MarkNode creates a mark descriptor wrapping nodes.
func MarkNode(markType string, data Data, nodes ...Node) Node {
	return Node{Object: KindMark, Type: markType, Data: data, Nodes: nodes}
}

// Text creates a text leaf carrying the given mark types, outermost first.
func Text(text string, markTypes ...string) Node {
	node := Node{Object: KindText, Text: text}
	for _, markType := range markTypes {
		node = node.WithMark(Mark{Type: markType}, false)
	}
	return node
}

// IsElement reports whether the node is a block or an inline.
func (n Node) IsElement() bool {
	return n.Object == KindBlock || n.Object == KindInline
}

// HasMark reports whether a text leaf carries a mark of the given type.
func (n Node) HasMark(markType string) bool {
	for _, mark := range n.Marks {
		if mark.Type == markType {
			return true
		}
	}
	return false
}

// MarkTypes lists the mark types of a text leaf in stored order.
func (n Node) MarkTypes() []string {
	if len(n.Marks) == 0 {
		return nil
	}
	types := make([]string, 0, len(n.Marks))
	for _, mark := range n.Marks {
		types = append(types, mark.Type)
	}
	return types
}

// WithMark returns a copy of the text leaf with mark added. A mark whose type
// is already present is not added twice. Outer marks are prepended so the
// slice stays ordered outermost first.
func (n Node) WithMark(mark Mark, outer bool) Node {
	if n.HasMark(mark.Type) {
		return n
	}
	marks := make([]Mark, 0, len(n.Marks)+1)
	if outer {
		marks = append(marks, cloneMark(mark))
		marks = append(marks, n.Marks...)
	} else {
		marks = append(marks, n.Marks...)
		marks = append(marks, cloneMark(mark))
	}
	n.Marks = marks
	return n
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	cloned := n
	cloned.Data = n.Data.Clone()
	if n.Nodes != nil {
		cloned.Nodes = make([]Node, len(n.Nodes))
		for idx, child := range n.Nodes {
			cloned.Nodes[idx] = child.Clone()
		}
	}
	if n.Marks != nil {
		cloned.Marks = make([]Mark, len(n.Marks))
		for idx, mark := range n.Marks {
			cloned.Marks[idx] = cloneMark(mark)
		}
	}
	return cloned
}

func cloneMark(mark Mark) Mark {
	cloned := mark
	cloned.Data = mark.Data.Clone()
	return cloned
}
