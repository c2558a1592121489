package rulechain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/rgonek/richtext-html/model"
)

func parseFragment(t *testing.T, markup string) []*html.Node {
	t.Helper()
	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	require.NoError(t, err)
	return nodes
}

func tagRule(name, tag, blockType string) Rule {
	return Rule{
		Name: name,
		Deserialize: func(n *html.Node, next Next) (model.Node, Outcome, error) {
			if TagName(n) != tag {
				return model.Node{}, NoMatch, nil
			}
			return model.Block(blockType, nil), Matched, nil
		},
	}
}

func noopNext(children []*html.Node) ([]model.Node, error) {
	return nil, nil
}

func TestDeserializeFirstMatchWins(t *testing.T) {
	chain := New(
		tagRule("specific", "pre", "code"),
		tagRule("generic", "pre", "preformatted"),
	)

	nodes := parseFragment(t, "<pre>x</pre>")
	node, outcome, err := chain.Deserialize(nodes[0], noopNext)
	require.NoError(t, err)

	assert.Equal(t, Matched, outcome)
	assert.Equal(t, "code", node.Type)
}

func TestDeserializeNoMatch(t *testing.T) {
	chain := New(tagRule("paragraph", "p", "paragraph"))

	nodes := parseFragment(t, "<section>x</section>")
	node, outcome, err := chain.Deserialize(nodes[0], noopNext)
	require.NoError(t, err)

	assert.Equal(t, NoMatch, outcome)
	assert.Equal(t, model.Node{}, node)
}

func TestDeserializeDroppedStopsDispatch(t *testing.T) {
	called := false
	chain := New(
		Rule{
			Name: "drop-paragraphs",
			Deserialize: func(n *html.Node, next Next) (model.Node, Outcome, error) {
				if TagName(n) == "p" {
					return model.Node{}, Dropped, nil
				}
				return model.Node{}, NoMatch, nil
			},
		},
		Rule{
			Name: "never",
			Deserialize: func(n *html.Node, next Next) (model.Node, Outcome, error) {
				called = true
				return model.Block("paragraph", nil), Matched, nil
			},
		},
	)

	nodes := parseFragment(t, "<p>x</p>")
	_, outcome, err := chain.Deserialize(nodes[0], noopNext)
	require.NoError(t, err)

	assert.Equal(t, Dropped, outcome)
	assert.False(t, called)
}

func TestDeserializeUnwrappedReturnsChildren(t *testing.T) {
	chain := New(Rule{
		Name: "unwrap-div",
		Deserialize: func(n *html.Node, next Next) (model.Node, Outcome, error) {
			if TagName(n) != "div" {
				return model.Node{}, NoMatch, nil
			}
			return model.Node{Nodes: []model.Node{model.Text("x")}}, Unwrapped, nil
		},
	})

	nodes := parseFragment(t, "<div>x</div>")
	node, outcome, err := chain.Deserialize(nodes[0], noopNext)
	require.NoError(t, err)

	assert.Equal(t, Unwrapped, outcome)
	assert.Equal(t, []model.Node{model.Text("x")}, node.Nodes)
}

func TestDeserializeSkipsSerializeOnlyRules(t *testing.T) {
	chain := New(
		Rule{
			Name: "serialize-only",
			Serialize: func(obj Object, children []*html.Node) ([]*html.Node, Outcome) {
				return nil, Matched
			},
		},
		tagRule("paragraph", "p", "paragraph"),
	)

	nodes := parseFragment(t, "<p>x</p>")
	node, outcome, err := chain.Deserialize(nodes[0], noopNext)
	require.NoError(t, err)
	assert.Equal(t, Matched, outcome)
	assert.Equal(t, "paragraph", node.Type)
}

func TestDeserializePropagatesErrors(t *testing.T) {
	sentinel := errors.New("boom")
	chain := New(Rule{
		Name: "failing",
		Deserialize: func(n *html.Node, next Next) (model.Node, Outcome, error) {
			return model.Node{}, Matched, sentinel
		},
	})

	nodes := parseFragment(t, "<p>x</p>")
	_, outcome, err := chain.Deserialize(nodes[0], noopNext)
	require.ErrorIs(t, err, sentinel)
	assert.Equal(t, NoMatch, outcome)
}

func TestDeserializePassesNextToRule(t *testing.T) {
	chain := New(Rule{
		Name: "recurse",
		Deserialize: func(n *html.Node, next Next) (model.Node, Outcome, error) {
			children, err := next(ChildNodes(n))
			if err != nil {
				return model.Node{}, NoMatch, err
			}
			return model.Block("quote", nil, children...), Matched, nil
		},
	})

	var seen []*html.Node
	next := func(children []*html.Node) ([]model.Node, error) {
		seen = children
		return []model.Node{model.Text("inner")}, nil
	}

	nodes := parseFragment(t, "<blockquote>inner</blockquote>")
	node, _, err := chain.Deserialize(nodes[0], next)
	require.NoError(t, err)

	require.Len(t, seen, 1)
	assert.Equal(t, html.TextNode, seen[0].Type)
	assert.Equal(t, []model.Node{model.Text("inner")}, node.Nodes)
}

func TestSerializeFirstMatchWins(t *testing.T) {
	chain := New(
		Rule{
			Name: "strong",
			Serialize: func(obj Object, children []*html.Node) ([]*html.Node, Outcome) {
				if obj.Kind != model.KindMark || obj.Type != "bold" {
					return nil, NoMatch
				}
				return []*html.Node{Element("strong", nil, children...)}, Matched
			},
		},
		Rule{
			Name: "b",
			Serialize: func(obj Object, children []*html.Node) ([]*html.Node, Outcome) {
				return []*html.Node{Element("b", nil, children...)}, Matched
			},
		},
	)

	out, outcome := chain.Serialize(Object{Kind: model.KindMark, Type: "bold"}, []*html.Node{TextNode("x")})
	require.Equal(t, Matched, outcome)
	require.Len(t, out, 1)
	assert.Equal(t, "<strong>x</strong>", render(t, out[0]))

	out, outcome = chain.Serialize(Object{Kind: model.KindMark, Type: "italic"}, []*html.Node{TextNode("y")})
	require.Equal(t, Matched, outcome)
	assert.Equal(t, "<b>y</b>", render(t, out[0]))
}

func TestSerializeNoMatchAndDropped(t *testing.T) {
	chain := New(Rule{
		Name: "drop-images",
		Serialize: func(obj Object, children []*html.Node) ([]*html.Node, Outcome) {
			if obj.Type == "image" {
				return nil, Dropped
			}
			return nil, NoMatch
		},
	})

	out, outcome := chain.Serialize(Object{Kind: model.KindBlock, Type: "image"}, nil)
	assert.Equal(t, Dropped, outcome)
	assert.Nil(t, out)

	out, outcome = chain.Serialize(Object{Kind: model.KindBlock, Type: "paragraph"}, nil)
	assert.Equal(t, NoMatch, outcome)
	assert.Nil(t, out)
}

func TestChainCopiesRules(t *testing.T) {
	rules := []Rule{tagRule("a", "p", "paragraph")}
	chain := New(rules...)
	rules[0] = tagRule("b", "p", "quote")

	assert.Equal(t, 1, chain.Len())
	assert.Equal(t, "a", chain.Rules()[0].Name)

	copied := chain.Rules()
	copied[0].Name = "mutated"
	assert.Equal(t, "a", chain.Rules()[0].Name)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "no_match", NoMatch.String())
	assert.Equal(t, "matched", Matched.String())
	assert.Equal(t, "dropped", Dropped.String())
	assert.Equal(t, "unwrapped", Unwrapped.String())
}

func render(t *testing.T, n *html.Node) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, html.Render(&sb, n))
	return sb.String()
}
