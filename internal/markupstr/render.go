package markupstr

import (
	"strings"

	"github.com/noama-samreen/dasaf-cbgpt/internal/markup"
)

// Inline tags understood by the typesetting engine.
const (
	boldOpen   = "<b>"
	boldClose  = "</b>"
	italOpen   = "<i>"
	italClose  = "</i>"
	codeOpen   = `<font name="Courier" color="#C7254E">`
	codeClose  = "</font>"
	blockOpen  = `<font name="Courier">`
	blockClose = "</font>"
	linkClose  = "</u></a>"

	// LinkColor is the color applied to hyperlink text.
	LinkColor = "#0645AD"
)

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

// RenderParagraph wraps the spans of one parsed prose line in inline tags.
//
// Only the first code, first bold and first italic span are wrapped; later
// spans of the same family stay as plain stripped text. Every link is
// wrapped, with any formatting inside it nested within the link tag.
func RenderParagraph(p markup.Parsed) string {
	formats := make([]markup.FormatSpan, 0, 3)
	for _, family := range [][]markup.FormatSpan{p.Code, p.Bold, p.Italic} {
		if len(family) > 0 {
			formats = append(formats, family[0])
		}
	}

	var b strings.Builder
	b.Grow(len(p.Text) + 32)
	var link markup.Region
	inLink := false
	for _, seg := range markup.Split(p.Text, markup.Regions(formats, p.Links)) {
		if inLink && (!seg.Linked || seg.Link.Start != link.Start) {
			b.WriteString(linkClose)
			inLink = false
		}
		if seg.Linked && !inLink {
			link, inLink = seg.Link, true
			b.WriteString(linkOpen(link.URL))
		}
		text := textEscaper.Replace(seg.Text)
		if !seg.Formatted {
			b.WriteString(text)
			continue
		}
		switch seg.Format.Kind {
		case markup.KindCode:
			b.WriteString(codeOpen + text + codeClose)
		case markup.KindBold:
			b.WriteString(boldOpen + text + boldClose)
		case markup.KindItalic:
			b.WriteString(italOpen + text + italClose)
		default:
			b.WriteString(text)
		}
	}
	if inLink {
		b.WriteString(linkClose)
	}
	return b.String()
}

// RenderCode wraps a code line in a monospace tag without interpreting it.
func RenderCode(line string) string {
	return blockOpen + textEscaper.Replace(line) + blockClose
}

// Escape escapes text for use inside markup.
func Escape(s string) string {
	return textEscaper.Replace(s)
}

func linkOpen(url string) string {
	return `<a href="` + attrEscaper.Replace(url) + `" color="` + LinkColor + `"><u>`
}

// Link renders a standalone hyperlink tag around text.
func Link(text, url string) string {
	return linkOpen(url) + textEscaper.Replace(text) + linkClose
}
