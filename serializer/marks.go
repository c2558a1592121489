package serializer

import "github.com/rgonek/richtext-html/model"

// applyMark attaches mark as the outermost mark of every text leaf in nodes,
// descending into blocks and inlines.
func applyMark(nodes []model.Node, mark model.Mark) []model.Node {
	if len(nodes) == 0 {
		return nil
	}

	out := make([]model.Node, 0, len(nodes))
	for _, node := range nodes {
		if node.Object == model.KindText {
			node = node.WithMark(mark, true)
		} else if node.IsElement() {
			node.Nodes = applyMark(node.Nodes, mark)
		}
		out = appendNode(out, node)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// appendNode appends next to content, merging it into a trailing text leaf
// with the same marks. Empty text leaves are dropped.
func appendNode(content []model.Node, next model.Node) []model.Node {
	if next.Object == model.KindText && next.Text == "" {
		return content
	}
	if len(content) > 0 && next.Object == model.KindText {
		last := &content[len(content)-1]
		if last.Object == model.KindText && model.MarksEqual(last.Marks, next.Marks) {
			last.Text += next.Text
			return content
		}
	}
	return append(content, next)
}

func sameMark(a, b model.Mark) bool {
	return model.MarksEqual([]model.Mark{a}, []model.Mark{b})
}
