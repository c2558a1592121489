package serializer

import (
	"strings"

	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"

	"github.com/rgonek/richtext-html/model"
	"github.com/rgonek/richtext-html/rulechain"
)

const (
	dataClassName = "className"
	dataSrc       = "src"
	dataHref      = "href"
	dataLanguage  = "language"

	languageClassPrefix = "language-"
)

// classCarryingTags copy their class attribute into data.className.
var classCarryingTags = map[string]bool{
	"p": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

var markAliases = map[string]string{
	"b":      MarkBold,
	"i":      MarkItalic,
	"del":    MarkStrikethrough,
	"strike": MarkStrikethrough,
}

// DefaultRules returns the default rule list for the default vocabulary.
func DefaultRules() []rulechain.Rule {
	return Rules(DefaultVocabulary())
}

// Rules returns the default rule list with generic block and mark rules built
// from v. Special cases come first so they shadow the generic tables.
func Rules(v Vocabulary) []rulechain.Rule {
	return []rulechain.Rule{
		CodeBlockRule(),
		ImageRule(),
		LinkRule(),
		LineBreakRule(),
		MarkAliasRule(),
		BlockRule(v),
		MarkRule(v),
	}
}

// CodeBlockRule reads <pre> as a code block. When the only significant child
// is <code>, its children are used and a language-* class is kept as
// data.language.
func CodeBlockRule() rulechain.Rule {
	return rulechain.Rule{
		Name: "code-block",
		Deserialize: func(n *html.Node, next rulechain.Next) (model.Node, rulechain.Outcome, error) {
			if rulechain.TagName(n) != "pre" {
				return model.Node{}, rulechain.NoMatch, nil
			}

			source := n
			var data model.Data
			if code := rulechain.FirstSignificantChild(n); rulechain.TagName(code) == "code" {
				source = code
				if language := codeLanguage(code); language != "" {
					data = model.Data{dataLanguage: language}
				}
			}

			children, err := next(rulechain.ChildNodes(source))
			if err != nil {
				return model.Node{}, rulechain.NoMatch, err
			}
			return model.Block(BlockCode, data, children...), rulechain.Matched, nil
		},
	}
}

// ImageRule reads <img> as an image block without content. Images are not
// rendered back.
func ImageRule() rulechain.Rule {
	return rulechain.Rule{
		Name: "image",
		Deserialize: func(n *html.Node, _ rulechain.Next) (model.Node, rulechain.Outcome, error) {
			if rulechain.TagName(n) != "img" {
				return model.Node{}, rulechain.NoMatch, nil
			}
			data := model.Data{}
			if src, ok := rulechain.Attr(n, "src"); ok {
				data[dataSrc] = src
			}
			return model.Block(BlockImage, data), rulechain.Matched, nil
		},
	}
}

// LinkRule reads <a> as a link inline. Links are not rendered back.
func LinkRule() rulechain.Rule {
	return rulechain.Rule{
		Name: "link",
		Deserialize: func(n *html.Node, next rulechain.Next) (model.Node, rulechain.Outcome, error) {
			if rulechain.TagName(n) != "a" {
				return model.Node{}, rulechain.NoMatch, nil
			}
			children, err := next(rulechain.ChildNodes(n))
			if err != nil {
				return model.Node{}, rulechain.NoMatch, err
			}
			data := model.Data{}
			if href, ok := rulechain.Attr(n, "href"); ok {
				data[dataHref] = href
			}
			return model.Inline(InlineLink, data, children...), rulechain.Matched, nil
		},
	}
}

// LineBreakRule reads <br> as a newline text leaf.
func LineBreakRule() rulechain.Rule {
	return rulechain.Rule{
		Name: "line-break",
		Deserialize: func(n *html.Node, _ rulechain.Next) (model.Node, rulechain.Outcome, error) {
			if rulechain.TagName(n) != "br" {
				return model.Node{}, rulechain.NoMatch, nil
			}
			return model.Text("\n"), rulechain.Matched, nil
		},
	}
}

// MarkAliasRule reads presentational tags (b, i, del, strike) as the marks
// their semantic counterparts produce. A <b> whose style resets font-weight,
// as clipboard wrappers from word processors do, is unwrapped instead.
func MarkAliasRule() rulechain.Rule {
	return rulechain.Rule{
		Name: "mark-alias",
		Deserialize: func(n *html.Node, next rulechain.Next) (model.Node, rulechain.Outcome, error) {
			markType, ok := markAliases[rulechain.TagName(n)]
			if !ok {
				return model.Node{}, rulechain.NoMatch, nil
			}
			children, err := next(rulechain.ChildNodes(n))
			if err != nil {
				return model.Node{}, rulechain.NoMatch, err
			}
			if markType == MarkBold && hasNormalWeight(n) {
				return model.Node{Nodes: children}, rulechain.Unwrapped, nil
			}
			return model.MarkNode(markType, nil, children...), rulechain.Matched, nil
		},
	}
}

// BlockRule maps block tags to block types in both directions.
func BlockRule(v Vocabulary) rulechain.Rule {
	tags := cloneStringMap(v.Blocks)
	reverse := reverseTags(tags, defaultBlockTags)

	return rulechain.Rule{
		Name: "block",
		Deserialize: func(n *html.Node, next rulechain.Next) (model.Node, rulechain.Outcome, error) {
			tag := rulechain.TagName(n)
			blockType, ok := tags[tag]
			if !ok {
				return model.Node{}, rulechain.NoMatch, nil
			}
			children, err := next(rulechain.ChildNodes(n))
			if err != nil {
				return model.Node{}, rulechain.NoMatch, err
			}

			var data model.Data
			if classCarryingTags[tag] {
				if class, ok := rulechain.Attr(n, "class"); ok && class != "" {
					data = model.Data{dataClassName: class}
				}
			}
			return model.Block(blockType, data, children...), rulechain.Matched, nil
		},
		Serialize: func(obj rulechain.Object, children []*html.Node) ([]*html.Node, rulechain.Outcome) {
			if obj.Kind != model.KindBlock {
				return nil, rulechain.NoMatch
			}
			tag, ok := reverse[obj.Type]
			if !ok {
				return nil, rulechain.NoMatch
			}

			if tag == "pre" {
				var attrs []html.Attribute
				if language := obj.Data.GetString(dataLanguage, ""); language != "" {
					attrs = []html.Attribute{{Key: "class", Val: languageClassPrefix + language}}
				}
				code := rulechain.Element("code", attrs, children...)
				return []*html.Node{rulechain.Element("pre", nil, code)}, rulechain.Matched
			}

			var attrs []html.Attribute
			if classCarryingTags[tag] {
				if class := obj.Data.GetString(dataClassName, ""); class != "" {
					attrs = []html.Attribute{{Key: "class", Val: class}}
				}
			}
			return []*html.Node{rulechain.Element(tag, attrs, children...)}, rulechain.Matched
		},
	}
}

// MarkRule maps mark tags to mark types in both directions.
func MarkRule(v Vocabulary) rulechain.Rule {
	tags := cloneStringMap(v.Marks)
	reverse := reverseTags(tags, defaultMarkTags)

	return rulechain.Rule{
		Name: "mark",
		Deserialize: func(n *html.Node, next rulechain.Next) (model.Node, rulechain.Outcome, error) {
			markType, ok := tags[rulechain.TagName(n)]
			if !ok {
				return model.Node{}, rulechain.NoMatch, nil
			}
			children, err := next(rulechain.ChildNodes(n))
			if err != nil {
				return model.Node{}, rulechain.NoMatch, err
			}
			return model.MarkNode(markType, nil, children...), rulechain.Matched, nil
		},
		Serialize: func(obj rulechain.Object, children []*html.Node) ([]*html.Node, rulechain.Outcome) {
			if obj.Kind != model.KindMark {
				return nil, rulechain.NoMatch
			}
			tag, ok := reverse[obj.Type]
			if !ok {
				return nil, rulechain.NoMatch
			}
			return []*html.Node{rulechain.Element(tag, nil, children...)}, rulechain.Matched
		},
	}
}

func codeLanguage(code *html.Node) string {
	class, ok := rulechain.Attr(code, "class")
	if !ok {
		return ""
	}
	for _, field := range strings.Fields(class) {
		if strings.HasPrefix(field, languageClassPrefix) {
			return strings.TrimPrefix(field, languageClassPrefix)
		}
	}
	return ""
}

// hasNormalWeight reports whether the inline style of n sets a regular
// font-weight.
func hasNormalWeight(n *html.Node) bool {
	style, ok := rulechain.Attr(n, "style")
	if !ok || strings.TrimSpace(style) == "" {
		return false
	}
	declarations, err := parser.ParseDeclarations(style)
	if err != nil {
		return false
	}

	weight := ""
	for _, declaration := range declarations {
		if strings.EqualFold(strings.TrimSpace(declaration.Property), "font-weight") {
			weight = strings.ToLower(strings.TrimSpace(declaration.Value))
		}
	}
	return weight == "normal" || weight == "400"
}
