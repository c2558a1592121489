package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConverter(t testing.TB, opts Options) *Converter {
	t.Helper()

	conv, err := New(opts)
	require.NoError(t, err)

	return conv
}

func TestToHTML(t *testing.T) {
	conv := newTestConverter(t, Options{})

	out, err := conv.ToHTML("# Title\n\nHello **world** and ~~gone~~\n\n- one\n- two\n")
	require.NoError(t, err)

	assert.Contains(t, out, "<h1>Title</h1>")
	assert.Contains(t, out, "<p>Hello <strong>world</strong> and <del>gone</del></p>")
	assert.Contains(t, out, "<ul>\n<li>one</li>\n<li>two</li>\n</ul>")
}

func TestToHTMLRawHTML(t *testing.T) {
	safe := newTestConverter(t, Options{})
	out, err := safe.ToHTML("<span>raw</span>\n")
	require.NoError(t, err)
	assert.NotContains(t, out, "<span>")

	unsafe := newTestConverter(t, Options{Unsafe: true})
	out, err = unsafe.ToHTML("<span>raw</span>\n")
	require.NoError(t, err)
	assert.Contains(t, out, "<span>raw</span>")
}

func TestToHTMLHardWraps(t *testing.T) {
	conv := newTestConverter(t, Options{HardWraps: true})

	out, err := conv.ToHTML("one\ntwo\n")
	require.NoError(t, err)
	assert.Contains(t, out, "<br")
}

func TestFromHTML(t *testing.T) {
	conv := newTestConverter(t, Options{})

	out, err := conv.FromHTML("<h1>Title</h1><p>Hello <strong>world</strong></p>")
	require.NoError(t, err)

	assert.Contains(t, out, "# Title")
	assert.Contains(t, out, "Hello **world**")
}

func TestExtensions(t *testing.T) {
	_, err := New(Options{Extensions: []string{"Table", " strikethrough ", "table", ""}})
	require.NoError(t, err)

	_, err = New(Options{Extensions: []string{"mermaid"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mermaid")
}
