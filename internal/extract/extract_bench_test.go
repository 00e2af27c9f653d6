package extract

import (
	"net/url"
	"strings"
	"testing"
)

// Benchmark Extract and Flatten on representative container sizes.
func BenchmarkExtract(b *testing.B) {
	base, _ := url.Parse("https://example.com/news/")
	for _, tc := range []struct {
		name  string
		input []byte
	}{
		{"small", []byte("<html><head><title>t</title></head><body><main><p>a</p></main></body></html>")},
		{"medium", makeHTML(50, 60)},
		{"large", makeHTML(200, 200)},
	} {
		doc, err := Parse(tc.input, "text/html")
		if err != nil {
			b.Fatalf("parse: %v", err)
		}
		b.Run(tc.name+"/blocks", func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_, _ = Extract(doc, base, Container{})
			}
		})
		b.Run(tc.name+"/flat", func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_, _ = Flatten(doc, Container{})
			}
		})
	}
}

func makeHTML(paras int, rows int) []byte {
	builder := new(strings.Builder)
	builder.WriteString("<html><head><title>demo</title></head><body><main>")
	for i := 0; i < paras; i++ {
		builder.WriteString("<h2>Heading</h2><p>")
		builder.WriteString(sampleText)
		builder.WriteString(`</p><img src="img/chart.png">`)
	}
	builder.WriteString("<table>")
	for i := 0; i < rows; i++ {
		builder.WriteString("<tr><td>cell</td><td>")
		builder.WriteString(sampleText)
		builder.WriteString("</td></tr>")
	}
	builder.WriteString("</table></main></body></html>")
	return []byte(builder.String())
}

const sampleText = "Lorem ipsum dolor sit amet, consectetur adipiscing elit. Sed do eiusmod tempor incididunt ut labore et dolore magna aliqua."
