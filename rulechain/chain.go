// Package rulechain implements ordered, first-match dispatch over
// transformation rules that map markup nodes to document model nodes and back.
//
// A Chain never recurses on its own. Deserialize rules receive a Next callback
// and decide which child sequence to recurse into; serialize rules receive
// children that were already rendered.
package rulechain

import (
	"golang.org/x/net/html"

	"github.com/rgonek/richtext-html/model"
)

// Outcome reports how a rule handled its input.
type Outcome int

const (
	// NoMatch means the rule does not apply; the next rule is tried.
	NoMatch Outcome = iota
	// Matched means the rule produced a result; dispatch stops.
	Matched
	// Dropped means the rule claimed the input and produced nothing; dispatch stops.
	Dropped
	// Unwrapped means the rule claimed the input and its result's Nodes
	// replace it in the parent; dispatch stops. Deserialize only.
	Unwrapped
)

// String renders the outcome name.
func (o Outcome) String() string {
	switch o {
	case Matched:
		return "matched"
	case Dropped:
		return "dropped"
	case Unwrapped:
		return "unwrapped"
	default:
		return "no_match"
	}
}

// Next deserializes a child sequence chosen by a rule.
type Next func(children []*html.Node) ([]model.Node, error)

// DeserializeFunc maps a markup node to a model node descriptor.
// Descriptors of kind mark are flattened onto the text leaves in their Nodes.
type DeserializeFunc func(n *html.Node, next Next) (model.Node, Outcome, error)

// SerializeFunc renders an object with its already rendered children.
// A rule returning NoMatch must leave children detached.
type SerializeFunc func(obj Object, children []*html.Node) ([]*html.Node, Outcome)

// Object is the model value handed to serialize rules: a block, an inline,
// a mark wrapping a text run, or a text run itself.
type Object struct {
	Kind model.Kind
	Type string
	Data model.Data
	Text string
}

// Rule is a pair of optional direction-specific transforms.
type Rule struct {
	Name        string
	Deserialize DeserializeFunc
	Serialize   SerializeFunc
}

// Chain is an immutable ordered sequence of rules.
type Chain struct {
	rules []Rule
}

// New creates a chain evaluating rules in the given order.
func New(rules ...Rule) *Chain {
	copied := make([]Rule, len(rules))
	copy(copied, rules)
	return &Chain{rules: copied}
}

// Len returns the number of rules in the chain.
func (c *Chain) Len() int {
	return len(c.rules)
}

// Rules returns a copy of the rules in dispatch order.
func (c *Chain) Rules() []Rule {
	copied := make([]Rule, len(c.rules))
	copy(copied, c.rules)
	return copied
}

// Deserialize dispatches n to the first rule whose deserialize function
// matches. Rules without a deserialize function are skipped.
func (c *Chain) Deserialize(n *html.Node, next Next) (model.Node, Outcome, error) {
	for _, rule := range c.rules {
		if rule.Deserialize == nil {
			continue
		}
		node, outcome, err := rule.Deserialize(n, next)
		if err != nil {
			return model.Node{}, NoMatch, err
		}
		switch outcome {
		case Matched, Unwrapped:
			return node, outcome, nil
		case Dropped:
			return model.Node{}, Dropped, nil
		}
	}
	return model.Node{}, NoMatch, nil
}

// Serialize dispatches obj to the first rule whose serialize function matches.
func (c *Chain) Serialize(obj Object, children []*html.Node) ([]*html.Node, Outcome) {
	for _, rule := range c.rules {
		if rule.Serialize == nil {
			continue
		}
		out, outcome := rule.Serialize(obj, children)
		switch outcome {
		case Matched:
			return out, Matched
		case Dropped:
			return nil, Dropped
		}
	}
	return nil, NoMatch
}
