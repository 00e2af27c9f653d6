package extract

import (
	"net/url"

	"golang.org/x/net/html"

	"github.com/hyperifyio/pagesnap/internal/block"
)

// Extractor produces the two independent content views of a parsed page.
// Implementations must be deterministic and must not mutate the tree.
type Extractor interface {
	// Blocks returns the ordered content blocks, or ok=false when the page
	// has no designated container.
	Blocks(doc *html.Node, base *url.URL) ([]block.Block, bool)
	// Flat returns the plain-text view, with the same ok semantics.
	Flat(doc *html.Node) (string, bool)
}

// ContainerExtractor extracts from the element matched by Container.
type ContainerExtractor struct {
	Container Container
}

func (e ContainerExtractor) Blocks(doc *html.Node, base *url.URL) ([]block.Block, bool) {
	return Extract(doc, base, e.Container)
}

func (e ContainerExtractor) Flat(doc *html.Node) (string, bool) {
	return Flatten(doc, e.Container)
}
