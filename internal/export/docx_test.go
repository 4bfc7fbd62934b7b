package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noama-samreen/dasaf-cbgpt/internal/catalog"
	"github.com/noama-samreen/dasaf-cbgpt/internal/markup"
	"github.com/noama-samreen/dasaf-cbgpt/internal/report"
	"github.com/noama-samreen/dasaf-cbgpt/internal/richtext"
)

var sampleTopics = []catalog.Topic{
	{Name: "Consensus", Flagged: true},
	{Name: "Finality"},
}

var sampleMeta = report.Metadata{Subject: "Solana", Symbol: "SOL", ReferenceURL: "https://explorer.solana.com"}

var sampleTexts = report.Analyses{
	"Consensus": "Uses **PoH** with [docs](https://docs.solana.com?a=1&b=2) and `slot` <tags> & more\n    raw **code**\nSee [docs](https://docs.solana.com?a=1&b=2) again",
}

func readParts(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	parts := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		require.Equal(t, zipEpoch.Year(), f.Modified.Year(), f.Name)
		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		parts[f.Name] = string(body)
	}
	return parts
}

func requireWellFormed(t *testing.T, name, body string) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(body))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return
		}
		require.NoError(t, err, "part %s is not well-formed XML", name)
	}
}

func TestDOCXWriter_Parts(t *testing.T) {
	doc := report.BuildRichText(sampleMeta, sampleTopics, sampleTexts)
	data, err := DOCXWriter{}.Write(doc)
	require.NoError(t, err)

	parts := readParts(t, data)
	for _, name := range []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"docProps/core.xml",
		"word/_rels/document.xml.rels",
		"word/styles.xml",
		"word/document.xml",
	} {
		require.Contains(t, parts, name)
		requireWellFormed(t, name, parts[name])
	}

	rels := parts["word/_rels/document.xml.rels"]
	require.Equal(t, 1, strings.Count(rels, `Target="https://explorer.solana.com"`))
	require.Equal(t, 1, strings.Count(rels, `Target="https://docs.solana.com?a=1&amp;b=2"`), "one relationship per distinct URL")

	body := parts["word/document.xml"]
	require.Contains(t, body, `<w:pStyle w:val="Title"/>`)
	require.Contains(t, body, `Solana (SOL) Security Analysis`)
	require.Contains(t, body, `<w:hyperlink r:id="rIdLink2">`)
	require.Contains(t, body, `&lt;tags&gt; &amp; more`)
	require.Contains(t, body, `<w:pStyle w:val="Code"/>`)
	require.Contains(t, body, `    raw **code**`)
	require.Contains(t, body, `<w:pStyle w:val="Placeholder"/>`)
	require.Contains(t, body, report.Placeholder)
	require.Less(t, strings.Index(body, report.FlaggedSectionTitle), strings.Index(body, report.OtherSectionTitle))

	core := parts["docProps/core.xml"]
	require.Contains(t, core, "urn:uuid:"+DocumentID(doc).String())
}

func TestDOCXWriter_Reproducible(t *testing.T) {
	a, err := DOCXWriter{}.Write(report.BuildRichText(sampleMeta, sampleTopics, sampleTexts))
	require.NoError(t, err)
	b, err := DOCXWriter{}.Write(report.BuildRichText(sampleMeta, sampleTopics, sampleTexts))
	require.NoError(t, err)
	require.True(t, bytes.Equal(a, b), "identical input must give identical bytes")

	other, err := DOCXWriter{}.Write(report.BuildRichText(sampleMeta, sampleTopics, report.Analyses{}))
	require.NoError(t, err)
	require.False(t, bytes.Equal(a, other))
}

func TestDOCXWriter_InlineCodeColor(t *testing.T) {
	doc := richtext.NewDocument("T", "S")
	doc.AddParagraph(richtext.StyleNormal, richtext.Run{Text: "x", Style: richtext.Monospace})
	doc.AddParagraph(richtext.StyleCode, richtext.Run{Text: "y", Style: richtext.Monospace})

	data, err := DOCXWriter{}.Write(doc)
	require.NoError(t, err)
	body := readParts(t, data)["word/document.xml"]
	require.Equal(t, 1, strings.Count(body, `<w:color w:val="`+codeColor+`"/>`), "only inline code is colored")
}

func TestDOCXWriter_FormattedHyperlink(t *testing.T) {
	for _, line := range []string{
		"See **[docs](https://x.example)** now",
		"See [**docs**](https://x.example) now",
		"See [`docs`](https://x.example) now",
	} {
		t.Run(line, func(t *testing.T) {
			doc := richtext.NewDocument("T", "S")
			doc.AddParagraph(richtext.StyleNormal, richtext.RenderParagraph(markup.Parse(line))...)

			data, err := DOCXWriter{}.Write(doc)
			require.NoError(t, err)
			parts := readParts(t, data)
			requireWellFormed(t, "word/document.xml", parts["word/document.xml"])
			require.Contains(t, parts["word/document.xml"], `<w:hyperlink r:id="rIdLink1"><w:r><w:rPr><w:rStyle w:val="Hyperlink"/>`)
			require.Contains(t, parts["word/document.xml"], `docs</w:t></w:r></w:hyperlink>`)
			require.Contains(t, parts["word/_rels/document.xml.rels"], `Target="https://x.example" TargetMode="External"`)
		})
	}

	doc := richtext.NewDocument("T", "S")
	doc.AddParagraph(richtext.StyleNormal, richtext.RenderParagraph(markup.Parse("**[docs](https://x.example)**"))...)
	data, err := DOCXWriter{}.Write(doc)
	require.NoError(t, err)
	require.Contains(t, readParts(t, data)["word/document.xml"], `<w:rStyle w:val="Hyperlink"/><w:b/></w:rPr>`)
}

func TestDOCXWriter_NilDocument(t *testing.T) {
	_, err := DOCXWriter{}.Write(nil)
	require.Error(t, err)
}

func TestDocumentID_Stable(t *testing.T) {
	a := richtext.NewDocument("Title", "Subject")
	b := richtext.NewDocument("Title", "Subject")
	c := richtext.NewDocument("Title", "Other")
	require.Equal(t, DocumentID(a), DocumentID(b))
	require.NotEqual(t, DocumentID(a), DocumentID(c))
	require.Equal(t, 5, int(DocumentID(a).Version()))
}
