// Package preview renders the stored analyses as an HTML page for quick
// review in a browser, without going through the document writers.
package preview

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	xhtml "golang.org/x/net/html"

	"github.com/noama-samreen/dasaf-cbgpt/internal/catalog"
	"github.com/noama-samreen/dasaf-cbgpt/internal/foundation/errors"
	"github.com/noama-samreen/dasaf-cbgpt/internal/markup"
	"github.com/noama-samreen/dasaf-cbgpt/internal/report"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
		html.WithXHTML(),
	),
)

const pageCSS = `body { max-width: 52rem; margin: 2rem auto; padding: 0 1rem; font-family: -apple-system, Helvetica, Arial, sans-serif; line-height: 1.5; color: #111; }
h1 { text-align: center; }
code, pre { font-family: Courier, monospace; color: #C7254E; }
pre { background: #f6f8fa; padding: .5rem; overflow-x: auto; }
a { color: #0645AD; }
`

// Markdown lays the report out as markdown. Analysis bodies are inserted
// verbatim since their dialect is a subset of markdown.
func Markdown(meta report.Metadata, topics []catalog.Topic, texts report.Analyses) []byte {
	var b bytes.Buffer
	b.WriteString("# " + meta.Title() + "\n\n")
	if url := strings.TrimSpace(meta.ReferenceURL); url != "" {
		b.WriteString("**" + strings.TrimSpace(report.ReferenceLabel) + "** <" + url + ">\n\n")
	}

	flagged, other := catalog.Partition(topics)
	writeSection(&b, report.FlaggedSectionTitle, flagged, texts)
	writeSection(&b, report.OtherSectionTitle, other, texts)
	return b.Bytes()
}

func writeSection(b *bytes.Buffer, title string, topics []catalog.Topic, texts report.Analyses) {
	b.WriteString("## " + title + "\n\n")
	for _, t := range topics {
		b.WriteString("### " + t.Name + "\n\n")
		body, ok := texts[t.Name]
		if !ok || !markup.HasContent(body) {
			b.WriteString("*" + report.Placeholder + "*\n\n")
			continue
		}
		b.WriteString(strings.TrimRight(body, "\n") + "\n\n")
	}
}

// Render converts the report to a standalone HTML page.
func Render(meta report.Metadata, topics []catalog.Topic, texts report.Analyses) ([]byte, error) {
	var body bytes.Buffer
	if err := md.Convert(Markdown(meta, topics, texts), &body); err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, "failed to render preview").
			WithContext("subject", meta.Subject).
			Build()
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\">")
	page.WriteString("<title>" + xhtml.EscapeString(meta.Title()) + "</title>")
	page.WriteString("<style>\n" + pageCSS + "</style></head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body></html>\n")
	return page.Bytes(), nil
}
