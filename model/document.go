package model

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
)

// Document is the root of the document model. It only holds blocks and can
// not be nested inside another node.
type Document struct {
	Data  Data   `json:"data,omitempty"`
	Nodes []Node `json:"nodes"`
}

// NewDocument creates a document holding the given blocks.
func NewDocument(nodes ...Node) Document {
	return Document{Nodes: nodes}
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	cloned := Document{Data: d.Data.Clone()}
	if d.Nodes != nil {
		cloned.Nodes = make([]Node, len(d.Nodes))
		for idx, node := range d.Nodes {
			cloned.Nodes[idx] = node.Clone()
		}
	}
	return cloned
}

type documentJSON struct {
	Object Kind   `json:"object"`
	Data   Data   `json:"data,omitempty"`
	Nodes  []Node `json:"nodes"`
}

type valueJSON struct {
	Object   Kind            `json:"object"`
	Document json.RawMessage `json:"document"`
}

// MarshalJSON encodes the document with its object tag.
func (d Document) MarshalJSON() ([]byte, error) {
	nodes := d.Nodes
	if nodes == nil {
		nodes = []Node{}
	}
	return json.Marshal(documentJSON{
		Object: KindDocument,
		Data:   d.Data,
		Nodes:  nodes,
	})
}

// UnmarshalJSON decodes a document object. A missing object tag is accepted.
func (d *Document) UnmarshalJSON(data []byte) error {
	var wire documentJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.Object != "" && wire.Object != KindDocument {
		return fmt.Errorf("expected document object, got %q", wire.Object)
	}
	d.Data = wire.Data
	d.Nodes = wire.Nodes
	return nil
}

// Decode reads a document from JSON. Both a bare document object and an
// editor value wrapper ({"object":"value","document":{...}}) are accepted.
func Decode(r io.Reader) (Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read document JSON: %w", err)
	}

	var probe valueJSON
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Document{}, fmt.Errorf("failed to parse document JSON: %w", err)
	}
	if probe.Object == "value" {
		if len(probe.Document) == 0 {
			return Document{}, fmt.Errorf("value object has no document")
		}
		raw = probe.Document
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("failed to parse document JSON: %w", err)
	}
	return doc, nil
}

// Encode writes a document as indented JSON.
func Encode(w io.Writer, doc Document) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}

// Equal reports whether two documents hold the same content. Nil and empty
// data maps are equal, and marks are compared as sets.
func Equal(a, b Document) bool {
	return dataEqual(a.Data, b.Data) && NodesEqual(a.Nodes, b.Nodes)
}

// NodesEqual reports whether two node sequences hold the same content.
func NodesEqual(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for idx := range a {
		if !nodeEqual(a[idx], b[idx]) {
			return false
		}
	}
	return true
}

func nodeEqual(a, b Node) bool {
	if a.Object != b.Object || a.Type != b.Type || a.Text != b.Text {
		return false
	}
	if !dataEqual(a.Data, b.Data) {
		return false
	}
	if !MarksEqual(a.Marks, b.Marks) {
		return false
	}
	return NodesEqual(a.Nodes, b.Nodes)
}

// MarksEqual compares two mark slices as sets.
func MarksEqual(a, b []Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for _, left := range a {
		found := false
		for _, right := range b {
			if left.Type == right.Type && dataEqual(left.Data, right.Data) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func dataEqual(a, b Data) bool {
	if len(a) != len(b) {
		return false
	}
	for key, left := range a {
		right, ok := b[key]
		if !ok || !reflect.DeepEqual(left, right) {
			return false
		}
	}
	return true
}
