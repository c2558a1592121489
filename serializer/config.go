package serializer

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rgonek/richtext-html/rulechain"
)

// UnknownPolicy controls behavior for input no rule recognizes.
type UnknownPolicy string

const (
	// UnknownSkip omits the unrecognized element (and its subtree), or keeps
	// the text of an unrecognized mark without formatting.
	UnknownSkip UnknownPolicy = "skip"
	// UnknownUnwrap deserializes the children of an unrecognized element in
	// its place. Only valid for elements.
	UnknownUnwrap UnknownPolicy = "unwrap"
	// UnknownError fails the call.
	UnknownError UnknownPolicy = "error"
)

const (
	// DefaultMaxDepth bounds tree nesting in both directions.
	DefaultMaxDepth = 256
	maxDepthLimit   = 4096

	defaultBlockType = BlockParagraph
)

// Config holds serializer configuration.
type Config struct {
	UnknownElements UnknownPolicy      `json:"unknownElements,omitempty" yaml:"unknownElements,omitempty"`
	UnknownMarks    UnknownPolicy      `json:"unknownMarks,omitempty" yaml:"unknownMarks,omitempty"`
	DefaultBlock    string             `json:"defaultBlock,omitempty" yaml:"defaultBlock,omitempty"`
	MaxDepth        int                `json:"maxDepth,omitempty" yaml:"maxDepth,omitempty"`
	ExtraBlockTags  map[string]string  `json:"extraBlockTags,omitempty" yaml:"extraBlockTags,omitempty"`
	ExtraMarkTags   map[string]string  `json:"extraMarkTags,omitempty" yaml:"extraMarkTags,omitempty"`
	Rules           []rulechain.Rule   `json:"-" yaml:"-"` // replaces DefaultRules when non-empty; excludes Extra*Tags
	Logger          logrus.FieldLogger `json:"-" yaml:"-"`
}

func (c Config) applyDefaults() Config {
	if c.UnknownElements == "" {
		c.UnknownElements = UnknownSkip
	}
	if c.UnknownMarks == "" {
		c.UnknownMarks = UnknownSkip
	}
	if c.DefaultBlock == "" {
		c.DefaultBlock = defaultBlockType
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = DefaultMaxDepth
	}

	return c
}

// clone returns a deep copy of Config for slice and map-backed fields.
func (c Config) clone() Config {
	cloned := c
	cloned.ExtraBlockTags = cloneStringMap(c.ExtraBlockTags)
	cloned.ExtraMarkTags = cloneStringMap(c.ExtraMarkTags)
	if c.Rules != nil {
		cloned.Rules = make([]rulechain.Rule, len(c.Rules))
		copy(cloned.Rules, c.Rules)
	}
	cloned.Logger = c.Logger
	return cloned
}

// Validate checks that config values are valid.
func (c Config) Validate() error {
	if c.UnknownElements != UnknownSkip && c.UnknownElements != UnknownUnwrap && c.UnknownElements != UnknownError {
		return fmt.Errorf("invalid unknownElements policy %q", c.UnknownElements)
	}
	if c.UnknownMarks != UnknownSkip && c.UnknownMarks != UnknownError {
		return fmt.Errorf("invalid unknownMarks policy %q", c.UnknownMarks)
	}
	if strings.TrimSpace(c.DefaultBlock) == "" {
		return fmt.Errorf("defaultBlock must be non-empty")
	}
	if c.MaxDepth < 1 || c.MaxDepth > maxDepthLimit {
		return fmt.Errorf("maxDepth must be between 1 and %d, got %d", maxDepthLimit, c.MaxDepth)
	}
	for tag, blockType := range c.ExtraBlockTags {
		if strings.TrimSpace(tag) == "" || strings.TrimSpace(blockType) == "" {
			return fmt.Errorf("extraBlockTags keys and values must be non-empty")
		}
	}
	for tag, markType := range c.ExtraMarkTags {
		if strings.TrimSpace(tag) == "" || strings.TrimSpace(markType) == "" {
			return fmt.Errorf("extraMarkTags keys and values must be non-empty")
		}
	}
	if len(c.Rules) > 0 && (len(c.ExtraBlockTags) > 0 || len(c.ExtraMarkTags) > 0) {
		return fmt.Errorf("extraBlockTags and extraMarkTags only apply to the default rules; build custom rules with Rules(vocabulary) instead")
	}
	for idx, rule := range c.Rules {
		if rule.Deserialize == nil && rule.Serialize == nil {
			return fmt.Errorf("rule %d (%q) has neither a deserialize nor a serialize function", idx, rule.Name)
		}
	}

	return nil
}

func cloneStringMap(src map[string]string) map[string]string {
	if src == nil {
		return nil
	}

	dst := make(map[string]string, len(src))
	for key, value := range src {
		dst[key] = value
	}

	return dst
}
