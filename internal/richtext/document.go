// Package richtext holds a word-processor style document made of headings
// and paragraphs of styled runs, and the renderer that fills it from parsed
// analysis text.
package richtext

import "strconv"

// Style is the uniform formatting of a run.
type Style int

const (
	Plain Style = iota
	Bold
	Italic
	Monospace
	Hyperlink
)

func (s Style) String() string {
	switch s {
	case Plain:
		return "plain"
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case Monospace:
		return "monospace"
	case Hyperlink:
		return "hyperlink"
	default:
		return "unknown"
	}
}

// Run is a contiguous piece of text sharing one style. URL is set for
// Hyperlink runs only. Mark is the bold, italic or monospace formatting a
// Hyperlink run also carries; it is Plain otherwise.
type Run struct {
	Text  string
	Style Style
	URL   string
	Mark  Style
}

// BlockKind identifies a document block.
type BlockKind int

const (
	BlockTitle BlockKind = iota
	BlockHeading
	BlockParagraph
	BlockSpacer
)

// ParagraphStyle names the paragraph style a serializer maps to its own
// style definitions.
type ParagraphStyle string

const (
	StyleNormal      ParagraphStyle = "Normal"
	StyleCode        ParagraphStyle = "Code"
	StylePlaceholder ParagraphStyle = "Placeholder"
)

// Block is a title, heading, paragraph or spacer. Level applies to headings
// (1 for sections, 2 for topics).
type Block struct {
	Kind  BlockKind
	Level int
	Style ParagraphStyle
	Runs  []Run
}

// Text concatenates the run texts of the block.
func (b Block) Text() string {
	n := 0
	for _, r := range b.Runs {
		n += len(r.Text)
	}
	buf := make([]byte, 0, n)
	for _, r := range b.Runs {
		buf = append(buf, r.Text...)
	}
	return string(buf)
}

// Relationship is an external hyperlink target referenced by runs.
type Relationship struct {
	ID     string
	Target string
}

// Document is built once per export and never shared.
type Document struct {
	Title   string
	Subject string
	Blocks  []Block

	rels     []Relationship
	relIndex map[string]string
}

// NewDocument returns an empty document.
func NewDocument(title, subject string) *Document {
	return &Document{
		Title:    title,
		Subject:  subject,
		relIndex: make(map[string]string),
	}
}

// AddTitle appends the document title block.
func (d *Document) AddTitle(text string) {
	d.Blocks = append(d.Blocks, Block{Kind: BlockTitle, Runs: []Run{{Text: text}}})
}

// AddHeading appends a heading at the given level.
func (d *Document) AddHeading(text string, level int) {
	d.Blocks = append(d.Blocks, Block{Kind: BlockHeading, Level: level, Runs: []Run{{Text: text}}})
}

// AddParagraph appends a paragraph and registers a relationship for every
// hyperlink target it has not seen yet.
func (d *Document) AddParagraph(style ParagraphStyle, runs ...Run) {
	for _, r := range runs {
		if r.Style == Hyperlink {
			d.relate(r.URL)
		}
	}
	d.Blocks = append(d.Blocks, Block{Kind: BlockParagraph, Style: style, Runs: runs})
}

// AddSpacer appends an empty spacing paragraph.
func (d *Document) AddSpacer() {
	d.Blocks = append(d.Blocks, Block{Kind: BlockSpacer})
}

// RelationshipID returns the relationship ID for target, if registered.
func (d *Document) RelationshipID(target string) (string, bool) {
	id, ok := d.relIndex[target]
	return id, ok
}

// Relationships returns hyperlink relationships in registration order.
func (d *Document) Relationships() []Relationship {
	out := make([]Relationship, len(d.rels))
	copy(out, d.rels)
	return out
}

func (d *Document) relate(target string) string {
	if d.relIndex == nil {
		d.relIndex = make(map[string]string)
	}
	if id, ok := d.relIndex[target]; ok {
		return id
	}
	id := "rIdLink" + strconv.Itoa(len(d.rels)+1)
	d.relIndex[target] = id
	d.rels = append(d.rels, Relationship{ID: id, Target: target})
	return id
}
