// Package markdown bridges Markdown text and HTML markup so plain-text
// clipboard payloads and exports can pass through the serializer.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Options controls Markdown rendering.
type Options struct {
	// Extensions names goldmark extensions to enable. Empty means gfm.
	Extensions []string `json:"extensions,omitempty" yaml:"extensions,omitempty"`
	// HardWraps renders soft line breaks as <br>.
	HardWraps bool `json:"hardWraps,omitempty" yaml:"hardWraps,omitempty"`
	// Unsafe passes raw HTML in Markdown through to the output.
	Unsafe bool `json:"unsafe,omitempty" yaml:"unsafe,omitempty"`
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"tasklist":      extension.TaskList,
	"footnote":      extension.Footnote,
}

// Converter renders Markdown to HTML and converts HTML back to Markdown.
// It is safe for concurrent use.
type Converter struct {
	engine goldmark.Markdown
}

// New creates a Converter.
func New(opts Options) (*Converter, error) {
	exts, err := collectExtensions(opts.Extensions)
	if err != nil {
		return nil, err
	}

	var rendererOptions []renderer.Option
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, gmhtml.WithHardWraps())
	}
	if opts.Unsafe {
		rendererOptions = append(rendererOptions, gmhtml.WithUnsafe())
	}

	engineOptions := []goldmark.Option{goldmark.WithExtensions(exts...)}
	if len(rendererOptions) > 0 {
		engineOptions = append(engineOptions, goldmark.WithRendererOptions(rendererOptions...))
	}

	return &Converter{engine: goldmark.New(engineOptions...)}, nil
}

// ToHTML renders Markdown as HTML.
func (c *Converter) ToHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := c.engine.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("markdown render: %w", err)
	}
	return buf.String(), nil
}

// FromHTML converts HTML markup to Markdown.
func (c *Converter) FromHTML(markup string) (string, error) {
	out, err := htmltomarkdown.ConvertString(markup)
	if err != nil {
		return "", fmt.Errorf("html to markdown: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func collectExtensions(names []string) ([]goldmark.Extender, error) {
	if len(names) == 0 {
		return []goldmark.Extender{extension.GFM}, nil
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		ext, ok := extensionRegistry[key]
		if !ok {
			return nil, fmt.Errorf("unknown markdown extension %q", name)
		}
		seen[key] = struct{}{}
		extenders = append(extenders, ext)
	}
	return extenders, nil
}
