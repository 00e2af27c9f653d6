package block

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Class is the category a document node falls into during extraction.
type Class int

const (
	ClassIgnorable Class = iota
	ClassImage
	ClassTable
	ClassText
)

func (c Class) String() string {
	switch c {
	case ClassImage:
		return "image"
	case ClassTable:
		return "table"
	case ClassText:
		return "text"
	}
	return "ignorable"
}

// textTags are the heading, paragraph and list elements that may become a
// Text block.
var textTags = map[atom.Atom]bool{
	atom.P:  true,
	atom.H1: true,
	atom.H2: true,
	atom.H3: true,
	atom.H4: true,
	atom.H5: true,
	atom.H6: true,
	atom.Ul: true,
	atom.Ol: true,
}

// Classify places n in exactly one Class. Non-element nodes are ignorable;
// text-bearing tags only count when they contain non-whitespace text.
func Classify(n *html.Node) Class {
	if n == nil || n.Type != html.ElementNode {
		return ClassIgnorable
	}
	switch a := tagAtom(n); {
	case a == atom.Img:
		return ClassImage
	case a == atom.Table:
		return ClassTable
	case textTags[a] && hasText(n):
		return ClassText
	}
	return ClassIgnorable
}

// Attr returns the value of the named attribute and whether it exists.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

func tagAtom(n *html.Node) atom.Atom {
	if n.DataAtom != 0 {
		return n.DataAtom
	}
	return atom.Lookup([]byte(strings.ToLower(n.Data)))
}

// IsHidden reports whether n is an element whose content is never visible
// text.
func IsHidden(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	switch tagAtom(n) {
	case atom.Script, atom.Style, atom.Noscript, atom.Template:
		return true
	}
	return false
}

func hasText(n *html.Node) bool {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data) != ""
	}
	if IsHidden(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if hasText(c) {
			return true
		}
	}
	return false
}
