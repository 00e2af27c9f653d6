package extract

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"

	"github.com/hyperifyio/pagesnap/internal/block"
)

// blockLevel elements start and end a line of flattened text.
var blockLevel = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Caption: true, atom.Dd: true, atom.Details: true, atom.Div: true,
	atom.Dl: true, atom.Dt: true, atom.Fieldset: true, atom.Figcaption: true,
	atom.Figure: true, atom.Footer: true, atom.Form: true, atom.H1: true,
	atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Header: true, atom.Hr: true, atom.Li: true, atom.Main: true,
	atom.Nav: true, atom.Ol: true, atom.P: true, atom.Pre: true,
	atom.Section: true, atom.Summary: true, atom.Table: true, atom.Tbody: true,
	atom.Tfoot: true, atom.Thead: true, atom.Tr: true, atom.Ul: true,
}

// lineWriter accumulates inline text into lines. Each flushed line is trimmed
// with internal whitespace collapsed; empty lines are dropped.
type lineWriter struct {
	lines []string
	cur   strings.Builder
}

func (w *lineWriter) flush() {
	line := collapseSpaces(strings.TrimSpace(w.cur.String()))
	w.cur.Reset()
	if line != "" {
		w.lines = append(w.lines, norm.NFC.String(line))
	}
}

func (w *lineWriter) write(n *html.Node, inPre bool) {
	switch n.Type {
	case html.TextNode:
		if !inPre {
			w.cur.WriteString(n.Data)
			return
		}
		parts := strings.Split(n.Data, "\n")
		for i, p := range parts {
			if i > 0 {
				w.flush()
			}
			w.cur.WriteString(p)
		}
		return
	case html.ElementNode:
		if block.IsHidden(n) {
			return
		}
	case html.DocumentNode:
	default:
		return
	}

	a := n.DataAtom
	switch {
	case a == atom.Br:
		w.flush()
		return
	case a == atom.Td || a == atom.Th:
		// Cells of one row share a line, separated by a single space.
		w.cur.WriteByte(' ')
		defer w.cur.WriteByte(' ')
	case blockLevel[a]:
		w.flush()
		defer w.flush()
	}
	if a == atom.Pre {
		inPre = true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.write(c, inPre)
	}
}

// textLines renders the content of n (not n itself) as trimmed lines.
func textLines(n *html.Node) []string {
	var w lineWriter
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.write(c, n.DataAtom == atom.Pre)
	}
	w.flush()
	return w.lines
}

// nodeText is the value of a Text block: one line per nested block-level
// boundary, inline runs joined with single spaces.
func nodeText(n *html.Node) string {
	return strings.Join(textLines(n), "\n")
}

// cellText flattens a table cell onto a single line.
func cellText(n *html.Node) string {
	return strings.Join(textLines(n), " ")
}

func collapseSpaces(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return b.String()
}
