package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"

	"github.com/hyperifyio/pagesnap/internal/block"
)

// DefaultSelector designates the page's primary content landmark.
const DefaultSelector = "main"

// Container locates the designated content container inside a document.
// The zero value matches the first <main> element.
type Container struct {
	selector string
	sel      cascadia.Sel
}

// NewContainer compiles a CSS selector. An empty selector means DefaultSelector.
func NewContainer(selector string) (Container, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		selector = DefaultSelector
	}
	sel, err := cascadia.Parse(selector)
	if err != nil {
		return Container{}, fmt.Errorf("container selector %q: %w", selector, err)
	}
	return Container{selector: selector, sel: sel}, nil
}

// String returns the selector source.
func (c Container) String() string {
	if c.selector == "" {
		return DefaultSelector
	}
	return c.selector
}

// Find returns the first matching container, or nil when the page does not
// have one.
func (c Container) Find(doc *html.Node) *html.Node {
	if doc == nil {
		return nil
	}
	if c.sel == nil {
		return findFirst(doc, DefaultSelector)
	}
	return cascadia.Query(doc, c.sel)
}

// Parse decodes input using the charset declared in contentType or the
// document itself, then builds the HTML tree.
func Parse(input []byte, contentType string) (*html.Node, error) {
	r, err := charset.NewReader(bytes.NewReader(input), contentType)
	if err != nil {
		// Unknown label: parse the raw bytes as UTF-8.
		return html.Parse(bytes.NewReader(input))
	}
	return html.Parse(r)
}

// Title returns the document title, preferring <title> over og:title.
func Title(doc *html.Node) string {
	if doc == nil {
		return ""
	}
	d := goquery.NewDocumentFromNode(doc)
	if t := strings.TrimSpace(d.Find("head title").First().Text()); t != "" {
		return collapseSpaces(t)
	}
	if og, ok := d.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		return collapseSpaces(strings.TrimSpace(og))
	}
	return ""
}

// Extract walks the designated container in document order and returns its
// content blocks. ok is false when the container is absent; a present but
// empty container yields an empty, non-nil slice.
//
// A node that produces a Table or Text block consumes its whole subtree, so no
// descendant can emit a second block. Ignorable nodes are transparent and their
// children are classified independently.
func Extract(doc *html.Node, base *url.URL, c Container) ([]block.Block, bool) {
	root := c.Find(doc)
	if root == nil {
		return nil, false
	}
	w := walker{base: base, blocks: []block.Block{}}
	for n := root.FirstChild; n != nil; n = n.NextSibling {
		w.visit(n)
	}
	return w.blocks, true
}

// walker holds the state of a single Extract call.
type walker struct {
	base   *url.URL
	blocks []block.Block
}

func (w *walker) visit(n *html.Node) {
	switch block.Classify(n) {
	case block.ClassImage:
		if src, ok := block.Attr(n, "src"); ok && src != "" {
			w.blocks = append(w.blocks, block.NewImage(resolve(w.base, src)))
		}
	case block.ClassTable:
		w.blocks = append(w.blocks, block.NewTable(tableRows(n)))
		return
	case block.ClassText:
		if text := nodeText(n); text != "" {
			w.blocks = append(w.blocks, block.NewText(text))
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.visit(c)
	}
}

// resolve makes src absolute against base. Unparseable references are kept
// verbatim so the renderer can still report them.
func resolve(base *url.URL, src string) string {
	trimmed := strings.TrimSpace(src)
	if trimmed == "" {
		return src
	}
	src = trimmed
	if base == nil {
		return src
	}
	u, err := base.Parse(src)
	if err != nil {
		return src
	}
	return u.String()
}

// tableRows collects the rows of t in order. Rows of nested tables are not
// rows of t; their text ends up inside the enclosing cell.
func tableRows(t *html.Node) [][]string {
	rows := [][]string{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Table:
				continue
			case atom.Tr:
				rows = append(rows, rowCells(c))
				continue
			}
			walk(c)
		}
	}
	walk(t)
	return rows
}

func rowCells(tr *html.Node) []string {
	cells := []string{}
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
			cells = append(cells, cellText(c))
		}
	}
	return cells
}

func findFirst(n *html.Node, tag string) *html.Node {
	var res *html.Node
	var dfs func(*html.Node)
	dfs = func(cur *html.Node) {
		if res != nil {
			return
		}
		if cur.Type == html.ElementNode && strings.EqualFold(cur.Data, tag) {
			res = cur
			return
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			dfs(c)
			if res != nil {
				return
			}
		}
	}
	dfs(n)
	return res
}
