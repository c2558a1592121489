// Package clipboard turns paste payloads into document fragments and hands
// them to an editor.
package clipboard

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"

	"github.com/rgonek/richtext-html/markdown"
	"github.com/rgonek/richtext-html/model"
	"github.com/rgonek/richtext-html/serializer"
)

// TransferType classifies a paste payload.
type TransferType string

const (
	TransferHTML     TransferType = "html"
	TransferFragment TransferType = "fragment"
	TransferText     TransferType = "text"
	TransferFiles    TransferType = "files"
	TransferUnknown  TransferType = "unknown"
)

// MIME types read by NewTransfer.
const (
	MIMEFragment = "application/x-richtext-fragment"
	MIMEHTML     = "text/html"
	MIMEText     = "text/plain"
)

// Transfer is a classified paste payload.
type Transfer struct {
	Type     TransferType
	HTML     string
	Text     string
	Fragment *model.Document
}

// NewTransfer classifies clipboard data keyed by MIME type. A serialized
// fragment wins over files, files over HTML, and HTML over plain text.
func NewTransfer(data map[string]string, fileCount int) (Transfer, error) {
	t := Transfer{
		Type: TransferUnknown,
		HTML: data[MIMEHTML],
		Text: data[MIMEText],
	}

	if raw := data[MIMEFragment]; raw != "" {
		doc, err := model.Decode(strings.NewReader(raw))
		if err != nil {
			return Transfer{}, fmt.Errorf("decode fragment: %w", err)
		}
		t.Type = TransferFragment
		t.Fragment = &doc
		return t, nil
	}

	switch {
	case fileCount > 0:
		t.Type = TransferFiles
	case t.HTML != "":
		t.Type = TransferHTML
	case t.Text != "":
		t.Type = TransferText
	}
	return t, nil
}

// Editor receives pasted fragments.
type Editor interface {
	InsertFragment(doc model.Document) error
}

// Options configures a Handler.
type Options struct {
	// Sanitize runs pasted HTML through Policy before deserializing it.
	Sanitize bool
	// MarkdownText treats plain-text payloads as Markdown.
	MarkdownText bool
	// Policy defaults to DefaultPolicy.
	Policy *bluemonday.Policy
	// Markdown defaults to a converter with GFM enabled.
	Markdown *markdown.Converter
	Logger   logrus.FieldLogger
}

// Handler handles paste events for an editor.
type Handler struct {
	serializer *serializer.Serializer
	opts       Options
}

// DefaultPolicy returns a UGC policy that keeps the attributes the
// serializer reads.
func DefaultPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").OnElements("p", "ul", "ol", "h1", "h2", "h3", "h4", "h5", "h6")
	policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code")
	return policy
}

// NewHandler creates a paste handler backed by s.
func NewHandler(s *serializer.Serializer, opts Options) (*Handler, error) {
	if s == nil {
		return nil, errors.New("serializer is required")
	}
	if opts.Policy == nil {
		opts.Policy = DefaultPolicy()
	}
	if opts.MarkdownText && opts.Markdown == nil {
		conv, err := markdown.New(markdown.Options{})
		if err != nil {
			return nil, err
		}
		opts.Markdown = conv
	}
	if opts.Logger == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		opts.Logger = logger
	}
	return &Handler{serializer: s, opts: opts}, nil
}

// HandlePaste inserts the payload into editor. It reports false when the
// payload is left to the editor's default behavior.
func (h *Handler) HandlePaste(t Transfer, editor Editor) (bool, error) {
	var markup string

	switch t.Type {
	case TransferFragment:
		if t.Fragment != nil {
			return true, h.insert(editor, *t.Fragment)
		}
		markup = t.HTML
	case TransferHTML:
		markup = t.HTML
	case TransferText:
		if !h.opts.MarkdownText || strings.TrimSpace(t.Text) == "" {
			return false, nil
		}
		rendered, err := h.opts.Markdown.ToHTML(t.Text)
		if err != nil {
			return false, err
		}
		markup = rendered
	default:
		return false, nil
	}

	if markup == "" {
		return false, nil
	}
	if h.opts.Sanitize {
		markup = h.opts.Policy.Sanitize(markup)
	}

	result, err := h.serializer.Deserialize(markup)
	if err != nil {
		return false, fmt.Errorf("deserialize pasted markup: %w", err)
	}
	for _, warning := range result.Warnings {
		h.opts.Logger.WithFields(logrus.Fields{
			"warning": warning.Type,
			"node":    warning.NodeType,
		}).Debug(warning.Message)
	}

	return true, h.insert(editor, result.Document)
}

func (h *Handler) insert(editor Editor, doc model.Document) error {
	if err := editor.InsertFragment(doc); err != nil {
		return fmt.Errorf("insert fragment: %w", err)
	}
	return nil
}
