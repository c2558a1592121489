package serializer

import (
	"sort"
	"strings"
)

// Block types produced by the default rules.
const (
	BlockParagraph    = "paragraph"
	BlockListItem     = "list-item"
	BlockBulletedList = "bulleted-list"
	BlockNumberedList = "numbered-list"
	BlockQuote        = "quote"
	BlockCode         = "code"
	BlockHeadingOne   = "heading-one"
	BlockHeadingTwo   = "heading-two"
	BlockHeadingThree = "heading-three"
	BlockHeadingFour  = "heading-four"
	BlockHeadingFive  = "heading-five"
	BlockHeadingSix   = "heading-six"
	BlockImage        = "image"
)

// InlineLink is the inline type produced for anchors.
const InlineLink = "link"

// Mark types produced by the default rules.
const (
	MarkBold          = "bold"
	MarkItalic        = "italic"
	MarkUnderline     = "underline"
	MarkStrikethrough = "strikethrough"
	MarkCode          = "code"
)

var defaultBlockTags = map[string]string{
	"p":          BlockParagraph,
	"li":         BlockListItem,
	"ul":         BlockBulletedList,
	"ol":         BlockNumberedList,
	"blockquote": BlockQuote,
	"pre":        BlockCode,
	"h1":         BlockHeadingOne,
	"h2":         BlockHeadingTwo,
	"h3":         BlockHeadingThree,
	"h4":         BlockHeadingFour,
	"h5":         BlockHeadingFive,
	"h6":         BlockHeadingSix,
}

var defaultMarkTags = map[string]string{
	"strong": MarkBold,
	"em":     MarkItalic,
	"u":      MarkUnderline,
	"s":      MarkStrikethrough,
	"code":   MarkCode,
}

// Vocabulary maps lower-case tag names to block and mark types.
type Vocabulary struct {
	Blocks map[string]string `json:"blocks,omitempty" yaml:"blocks,omitempty"`
	Marks  map[string]string `json:"marks,omitempty" yaml:"marks,omitempty"`
}

// DefaultVocabulary returns a fresh copy of the built-in tag tables.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Blocks: cloneStringMap(defaultBlockTags),
		Marks:  cloneStringMap(defaultMarkTags),
	}
}

// Merge returns a vocabulary holding v's entries overlaid with extra's.
// Tag names are lower-cased.
func (v Vocabulary) Merge(extra Vocabulary) Vocabulary {
	return Vocabulary{
		Blocks: mergeTags(v.Blocks, extra.Blocks),
		Marks:  mergeTags(v.Marks, extra.Marks),
	}
}

// BlockType returns the block type for tag.
func (v Vocabulary) BlockType(tag string) (string, bool) {
	blockType, ok := v.Blocks[strings.ToLower(tag)]
	return blockType, ok
}

// MarkType returns the mark type for tag.
func (v Vocabulary) MarkType(tag string) (string, bool) {
	markType, ok := v.Marks[strings.ToLower(tag)]
	return markType, ok
}

// BlockTag returns the tag used to render blockType.
func (v Vocabulary) BlockTag(blockType string) (string, bool) {
	tag, ok := reverseTags(v.Blocks, defaultBlockTags)[blockType]
	return tag, ok
}

// MarkTag returns the tag used to render markType.
func (v Vocabulary) MarkTag(markType string) (string, bool) {
	tag, ok := reverseTags(v.Marks, defaultMarkTags)[markType]
	return tag, ok
}

func mergeTags(base, extra map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(extra))
	for tag, nodeType := range base {
		merged[strings.ToLower(tag)] = nodeType
	}
	for tag, nodeType := range extra {
		merged[strings.ToLower(tag)] = nodeType
	}
	return merged
}

// reverseTags builds a type -> tag table. A built-in tag keeps rendering its
// type even when extra tags share it; otherwise the lexicographically first
// tag wins.
func reverseTags(table, builtin map[string]string) map[string]string {
	tags := make([]string, 0, len(table))
	for tag := range table {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	reverse := make(map[string]string, len(table))
	for _, tag := range tags {
		if builtin[tag] == table[tag] {
			if _, exists := reverse[table[tag]]; !exists {
				reverse[table[tag]] = tag
			}
		}
	}
	for _, tag := range tags {
		if _, exists := reverse[table[tag]]; !exists {
			reverse[table[tag]] = tag
		}
	}
	return reverse
}
