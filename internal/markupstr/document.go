// Package markupstr builds the page-layout flavor of a report: a flat list
// of flowables whose text is a markup string with inline tags (<b>, <i>,
// <font>, <a>) rather than discrete runs.
package markupstr

// Style names a paragraph style of the typesetting engine.
type Style string

const (
	StyleTitle       Style = "Title"
	StyleSection     Style = "Heading1"
	StyleTopic       Style = "Heading2"
	StyleBody        Style = "BodyText"
	StyleCode        Style = "Code"
	StylePlaceholder Style = "Placeholder"
)

// SpacerHeight is the vertical gap, in points, appended after each topic.
const SpacerHeight = 12.0

// FlowableKind distinguishes text paragraphs from spacers.
type FlowableKind int

const (
	FlowableParagraph FlowableKind = iota
	FlowableSpacer
)

// Flowable is one element of the page flow. Markup holds tagged text for
// paragraphs; Height is set for spacers.
type Flowable struct {
	Kind   FlowableKind
	Style  Style
	Markup string
	Height float64
}

// Document is an ordered list of flowables plus metadata.
type Document struct {
	Title     string
	Subject   string
	Flowables []Flowable
}

// NewDocument returns an empty document.
func NewDocument(title, subject string) *Document {
	return &Document{Title: title, Subject: subject}
}

// AddParagraph appends a paragraph whose markup is already tagged and escaped.
func (d *Document) AddParagraph(style Style, markup string) {
	d.Flowables = append(d.Flowables, Flowable{Kind: FlowableParagraph, Style: style, Markup: markup})
}

// AddText appends a paragraph of plain text, escaping it first.
func (d *Document) AddText(style Style, text string) {
	d.AddParagraph(style, Escape(text))
}

// AddSpacer appends a vertical gap.
func (d *Document) AddSpacer(height float64) {
	d.Flowables = append(d.Flowables, Flowable{Kind: FlowableSpacer, Height: height})
}
