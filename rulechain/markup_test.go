package rulechain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestTagNameAndAttr(t *testing.T) {
	nodes := parseFragment(t, `<A HREF="https://example.com">x</A>`)
	require.Len(t, nodes, 1)

	assert.Equal(t, "a", TagName(nodes[0]))
	href, ok := Attr(nodes[0], "href")
	assert.True(t, ok)
	assert.Equal(t, "https://example.com", href)

	_, ok = Attr(nodes[0], "title")
	assert.False(t, ok)

	assert.Equal(t, "", TagName(nodes[0].FirstChild))
	assert.Equal(t, "", TagName(nil))
}

func TestChildNodes(t *testing.T) {
	nodes := parseFragment(t, `<p>a<em>b</em>c</p>`)
	children := ChildNodes(nodes[0])

	require.Len(t, children, 3)
	assert.Equal(t, "a", children[0].Data)
	assert.Equal(t, "em", TagName(children[1]))
	assert.Equal(t, "c", children[2].Data)
	assert.Nil(t, ChildNodes(nil))
}

func TestFirstSignificantChild(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{name: "sole code", markup: "<pre><code>x</code></pre>", want: "code"},
		{name: "whitespace around code", markup: "<pre> <code>x</code>\n<!-- c --></pre>", want: "code"},
		{name: "text beside code", markup: "<pre>y<code>x</code></pre>", want: ""},
		{name: "empty", markup: "<pre></pre>", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes := parseFragment(t, tt.markup)
			require.Len(t, nodes, 1)
			assert.Equal(t, tt.want, TagName(FirstSignificantChild(nodes[0])))
		})
	}
}

func TestElementAndTextNode(t *testing.T) {
	el := Element("pre", nil, Element("code", nil, TextNode("a < b")), nil)

	assert.Equal(t, "<pre><code>a &lt; b</code></pre>", render(t, el))

	withAttrs := Element("p", []html.Attribute{{Key: "class", Val: "lead"}}, TextNode("x"))
	assert.Equal(t, `<p class="lead">x</p>`, render(t, withAttrs))
}
