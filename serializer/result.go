package serializer

import (
	"errors"

	"github.com/rgonek/richtext-html/model"
)

var (
	// ErrMalformedInput indicates input the serializer refuses to walk: nesting
	// beyond the configured depth, a rule recursing into nodes that are not
	// descendants of the current element, or a model with misplaced node kinds.
	ErrMalformedInput = errors.New("malformed input")
	// ErrUnknownElement is returned for unrecognized elements under UnknownError.
	ErrUnknownElement = errors.New("unknown element")
	// ErrUnknownMark is returned for unrenderable marks under UnknownError.
	ErrUnknownMark = errors.New("unknown mark")
)

// Result holds the output of Serialize.
type Result struct {
	HTML     string    `json:"html"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// DeserializeResult holds the output of Deserialize.
type DeserializeResult struct {
	Document model.Document `json:"document"`
	Warnings []Warning      `json:"warnings,omitempty"`
}

// WarningType categorizes conversion warnings.
type WarningType string

const (
	WarningUnknownElement   WarningType = "unknown_element"
	WarningUnrenderableNode WarningType = "unrenderable_node"
	WarningUnknownMark      WarningType = "unknown_mark"
)

// Warning represents content that was omitted or degraded during conversion.
type Warning struct {
	Type     WarningType `json:"type"`
	NodeType string      `json:"nodeType,omitempty"`
	Message  string      `json:"message"`
}
