package report

import (
	"github.com/noama-samreen/dasaf-cbgpt/internal/catalog"
	"github.com/noama-samreen/dasaf-cbgpt/internal/markup"
	"github.com/noama-samreen/dasaf-cbgpt/internal/markupstr"
	"github.com/noama-samreen/dasaf-cbgpt/internal/richtext"
)

// BuildRichText assembles the run-based document.
func BuildRichText(meta Metadata, topics []catalog.Topic, texts Analyses) *richtext.Document {
	b := &richTextBuilder{doc: richtext.NewDocument(meta.Title(), meta.Subject)}
	Assemble(b, meta, topics, texts)
	return b.doc
}

// BuildMarkup assembles the markup-string document.
func BuildMarkup(meta Metadata, topics []catalog.Topic, texts Analyses) *markupstr.Document {
	b := &markupBuilder{doc: markupstr.NewDocument(meta.Title(), meta.Subject)}
	Assemble(b, meta, topics, texts)
	return b.doc
}

type richTextBuilder struct {
	doc *richtext.Document
}

func (b *richTextBuilder) Title(text string) { b.doc.AddTitle(text) }

func (b *richTextBuilder) Reference(label, url string) {
	b.doc.AddParagraph(richtext.StyleNormal,
		richtext.Run{Text: label, Style: richtext.Bold},
		richtext.Run{Text: url, Style: richtext.Hyperlink, URL: url},
	)
}

func (b *richTextBuilder) Section(title string) { b.doc.AddHeading(title, 1) }
func (b *richTextBuilder) Topic(name string)    { b.doc.AddHeading(name, 2) }

func (b *richTextBuilder) Prose(p markup.Parsed) {
	b.doc.AddParagraph(richtext.StyleNormal, richtext.RenderParagraph(p)...)
}

func (b *richTextBuilder) Code(line string) {
	b.doc.AddParagraph(richtext.StyleCode, richtext.RenderCode(line)...)
}

func (b *richTextBuilder) Placeholder(text string) {
	b.doc.AddParagraph(richtext.StylePlaceholder, richtext.Run{Text: text, Style: richtext.Italic})
}

func (b *richTextBuilder) Spacer() { b.doc.AddSpacer() }

type markupBuilder struct {
	doc *markupstr.Document
}

func (b *markupBuilder) Title(text string) { b.doc.AddText(markupstr.StyleTitle, text) }

func (b *markupBuilder) Reference(label, url string) {
	b.doc.AddParagraph(markupstr.StyleBody, "<b>"+markupstr.Escape(label)+"</b>"+markupstr.Link(url, url))
}

func (b *markupBuilder) Section(title string) { b.doc.AddText(markupstr.StyleSection, title) }
func (b *markupBuilder) Topic(name string)    { b.doc.AddText(markupstr.StyleTopic, name) }

func (b *markupBuilder) Prose(p markup.Parsed) {
	b.doc.AddParagraph(markupstr.StyleBody, markupstr.RenderParagraph(p))
}

func (b *markupBuilder) Code(line string) {
	b.doc.AddParagraph(markupstr.StyleCode, markupstr.RenderCode(line))
}

func (b *markupBuilder) Placeholder(text string) {
	b.doc.AddParagraph(markupstr.StylePlaceholder, "<i>"+markupstr.Escape(text)+"</i>")
}

func (b *markupBuilder) Spacer() { b.doc.AddSpacer(markupstr.SpacerHeight) }
