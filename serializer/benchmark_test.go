package serializer

import "testing"

const benchmarkMarkup = `<h1 class="title">Heading</h1>
<p>This is <strong>bold</strong> text with <em>emphasis <u>and underline</u></em> and <code>code</code>.</p>
<blockquote><p>Quoted <s>text</s></p></blockquote>
<ul><li>one</li><li>two</li><li>three</li></ul>
<pre><code class="language-go">fmt.Println(1)</code></pre>
<p>see <a href="https://example.com">link</a><br>next</p>`

func BenchmarkDeserialize(b *testing.B) {
	s, err := New(Config{})
	if err != nil {
		b.Fatalf("failed to create serializer: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Deserialize(benchmarkMarkup); err != nil {
			b.Fatalf("deserialize failed: %v", err)
		}
	}
}

func BenchmarkSerialize(b *testing.B) {
	s, err := New(Config{})
	if err != nil {
		b.Fatalf("failed to create serializer: %v", err)
	}
	result, err := s.Deserialize(benchmarkMarkup)
	if err != nil {
		b.Fatalf("deserialize failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Serialize(result.Document); err != nil {
			b.Fatalf("serialize failed: %v", err)
		}
	}
}
