package serializer

import (
	"errors"
	"testing"
)

func FuzzDeserialize(f *testing.F) {
	seeds := []string{
		"",
		"<p></p>",
		"<p>a<strong>b<em>c</em></strong></p>",
		"<pre><code>x := 1</code></pre>",
		"<ul><li>one<li>two</ul>",
		"<p>see <a href=\"/docs\">docs</a><img src=\"a.png\"></p>",
		"<div><span>loose</span> text<br>more</div>",
		"<table><tr><td>cell</td></tr></table>",
		"<h1 class=\"title\">x</h1><blockquote><p>q</p></blockquote>",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	s, err := New(Config{})
	if err != nil {
		f.Fatalf("failed to create serializer: %v", err)
	}

	f.Fuzz(func(t *testing.T, markup string) {
		result, err := s.Deserialize(markup)
		if err != nil {
			if errors.Is(err, ErrMalformedInput) {
				return
			}
			t.Fatalf("deserialize returned error: %v", err)
		}
		if len(result.Document.Nodes) == 0 {
			t.Fatalf("document has no blocks")
		}

		if _, err := s.Serialize(result.Document); err != nil {
			t.Fatalf("serialize returned error: %v", err)
		}
	})
}
