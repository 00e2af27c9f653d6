package block

// Kind identifies which payload of a Block is populated.
type Kind int

const (
	KindText Kind = iota + 1
	KindTable
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindTable:
		return "table"
	case KindImage:
		return "image"
	}
	return "unknown"
}

// Block is one unit of extracted page content. Exactly one payload field is
// meaningful, selected by Kind.
type Block struct {
	Kind Kind

	// Text holds the rendered text of a heading, paragraph or list. Lines are
	// separated by '\n'.
	Text string
	// Rows holds row-major cell text. Rows may differ in length.
	Rows [][]string
	// Source is the absolute URL of an image.
	Source string
}

// NewText returns a text block.
func NewText(s string) Block { return Block{Kind: KindText, Text: s} }

// NewTable returns a table block. A nil rows slice is normalised to an empty
// one so that zero-row tables still compare equal across runs.
func NewTable(rows [][]string) Block {
	if rows == nil {
		rows = [][]string{}
	}
	return Block{Kind: KindTable, Rows: rows}
}

// NewImage returns an image block.
func NewImage(src string) Block { return Block{Kind: KindImage, Source: src} }

// Columns reports the column count the first row defines, or 0 for an empty table.
func (b Block) Columns() int {
	if b.Kind != KindTable || len(b.Rows) == 0 {
		return 0
	}
	return len(b.Rows[0])
}
