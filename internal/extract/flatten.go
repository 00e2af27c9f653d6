package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// Flatten returns the designated container's text as one string: a line per
// block-level element, table rows on their own line with cells joined by a
// single space, every line trimmed and blank lines dropped. ok is false when
// the container is absent.
//
// Flatten does not look at extracted blocks, so a table or image that fails to
// render never affects the plain-text view.
func Flatten(doc *html.Node, c Container) (string, bool) {
	root := c.Find(doc)
	if root == nil {
		return "", false
	}
	return strings.Join(textLines(root), "\n"), true
}
