package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noama-samreen/dasaf-cbgpt/internal/richtext"
)

// zipEpoch stamps every container entry so identical documents produce
// identical bytes. It is the earliest time the zip format can represent.
var zipEpoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// documentNamespace seeds the name-based document identifier.
var documentNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/noama-samreen/dasaf-cbgpt/report"))

const (
	nsW = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

	relTypeOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeCoreProps      = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	relTypeStyles         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relTypeHyperlink      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"

	monoFont  = "Courier New"
	codeColor = "C7254E"
)

// DOCXWriter serializes a rich-text document into a WordprocessingML
// container.
type DOCXWriter struct{}

// Extension is the output file extension.
func (DOCXWriter) Extension() string { return "docx" }

// Write returns the container bytes for doc.
func (w DOCXWriter) Write(doc *richtext.Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", packageRelsXML},
		{"docProps/core.xml", corePropsXML(doc)},
		{"word/_rels/document.xml.rels", documentRelsXML(doc)},
		{"word/styles.xml", stylesXML},
		{"word/document.xml", documentXML(doc)},
	}
	for _, p := range parts {
		if err := addPart(zw, p.name, p.body); err != nil {
			return nil, fmt.Errorf("write %s: %w", p.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close container: %w", err)
	}
	return buf.Bytes(), nil
}

func addPart(zw *zip.Writer, name, body string) error {
	fw, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: zipEpoch,
	})
	if err != nil {
		return err
	}
	_, err = fw.Write([]byte(body))
	return err
}

// DocumentID is the stable identifier written to the core properties.
func DocumentID(doc *richtext.Document) uuid.UUID {
	return uuid.NewSHA1(documentNamespace, []byte(doc.Title+"\x00"+doc.Subject))
}

func esc(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

const contentTypesXML = xmlHeader + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
	`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>` +
	`</Types>`

const packageRelsXML = xmlHeader + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="` + relTypeOfficeDocument + `" Target="word/document.xml"/>` +
	`<Relationship Id="rId2" Type="` + relTypeCoreProps + `" Target="docProps/core.xml"/>` +
	`</Relationships>`

func corePropsXML(doc *richtext.Document) string {
	return xmlHeader + `<cp:coreProperties` +
		` xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"` +
		` xmlns:dc="http://purl.org/dc/elements/1.1/">` +
		`<dc:title>` + esc(doc.Title) + `</dc:title>` +
		`<dc:subject>` + esc(doc.Subject) + `</dc:subject>` +
		`<dc:creator>dasaf</dc:creator>` +
		`<dc:identifier>urn:uuid:` + DocumentID(doc).String() + `</dc:identifier>` +
		`</cp:coreProperties>`
}

func documentRelsXML(doc *richtext.Document) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	b.WriteString(`<Relationship Id="rIdStyles" Type="` + relTypeStyles + `" Target="styles.xml"/>`)
	for _, rel := range doc.Relationships() {
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="%s" Target="%s" TargetMode="External"/>`,
			rel.ID, relTypeHyperlink, esc(rel.Target))
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

const stylesXML = xmlHeader + `<w:styles xmlns:w="` + nsW + `">` +
	`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/>` +
	`<w:pPr><w:spacing w:after="120"/></w:pPr><w:rPr><w:sz w:val="22"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/><w:basedOn w:val="Normal"/>` +
	`<w:pPr><w:jc w:val="center"/><w:spacing w:after="240"/></w:pPr><w:rPr><w:b/><w:sz w:val="40"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/>` +
	`<w:pPr><w:keepNext/><w:spacing w:before="240"/><w:outlineLvl w:val="0"/></w:pPr><w:rPr><w:b/><w:sz w:val="32"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/><w:basedOn w:val="Normal"/>` +
	`<w:pPr><w:keepNext/><w:spacing w:before="180"/><w:outlineLvl w:val="1"/></w:pPr><w:rPr><w:b/><w:sz w:val="26"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Code"><w:name w:val="Code"/><w:basedOn w:val="Normal"/>` +
	`<w:pPr><w:spacing w:after="0"/></w:pPr><w:rPr><w:rFonts w:ascii="` + monoFont + `" w:hAnsi="` + monoFont + `" w:cs="` + monoFont + `"/><w:sz w:val="20"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Placeholder"><w:name w:val="Placeholder"/><w:basedOn w:val="Normal"/>` +
	`<w:rPr><w:i/><w:color w:val="808080"/></w:rPr></w:style>` +
	`<w:style w:type="character" w:styleId="Hyperlink"><w:name w:val="Hyperlink"/>` +
	`<w:rPr><w:color w:val="0645AD"/><w:u w:val="single"/></w:rPr></w:style>` +
	`</w:styles>`

func documentXML(doc *richtext.Document) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<w:document xmlns:w="` + nsW + `" xmlns:r="` + nsR + `"><w:body>`)
	for _, blk := range doc.Blocks {
		writeBlock(&b, doc, blk)
	}
	// US Letter with one-inch margins.
	b.WriteString(`<w:sectPr><w:pgSz w:w="12240" w:h="15840"/>` +
		`<w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440" w:header="720" w:footer="720" w:gutter="0"/>` +
		`</w:sectPr>`)
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

func paragraphStyle(blk richtext.Block) string {
	switch blk.Kind {
	case richtext.BlockTitle:
		return "Title"
	case richtext.BlockHeading:
		if blk.Level <= 1 {
			return "Heading1"
		}
		return "Heading2"
	case richtext.BlockParagraph:
		if blk.Style == richtext.StyleNormal {
			return ""
		}
		return string(blk.Style)
	}
	return ""
}

func writeBlock(b *strings.Builder, doc *richtext.Document, blk richtext.Block) {
	if blk.Kind == richtext.BlockSpacer {
		b.WriteString(`<w:p/>`)
		return
	}
	b.WriteString(`<w:p>`)
	if style := paragraphStyle(blk); style != "" {
		b.WriteString(`<w:pPr><w:pStyle w:val="` + style + `"/></w:pPr>`)
	}
	codeBlock := blk.Style == richtext.StyleCode
	for _, r := range blk.Runs {
		writeRun(b, doc, r, codeBlock)
	}
	b.WriteString(`</w:p>`)
}

func writeRun(b *strings.Builder, doc *richtext.Document, r richtext.Run, codeBlock bool) {
	if r.Text == "" {
		return
	}
	props := runProps(r.Style, codeBlock)
	if r.Style == richtext.Hyperlink {
		props = `<w:rStyle w:val="Hyperlink"/>` + runProps(r.Mark, false)
	}

	run := `<w:r>`
	if props != "" {
		run += `<w:rPr>` + props + `</w:rPr>`
	}
	run += `<w:t xml:space="preserve">` + esc(r.Text) + `</w:t></w:r>`

	if r.Style == richtext.Hyperlink {
		if id, ok := doc.RelationshipID(r.URL); ok {
			b.WriteString(`<w:hyperlink r:id="` + id + `">` + run + `</w:hyperlink>`)
			return
		}
	}
	b.WriteString(run)
}

// runProps returns the run properties for a bold, italic or monospace style.
func runProps(style richtext.Style, codeBlock bool) string {
	switch style {
	case richtext.Bold:
		return `<w:b/>`
	case richtext.Italic:
		return `<w:i/>`
	case richtext.Monospace:
		props := `<w:rFonts w:ascii="` + monoFont + `" w:hAnsi="` + monoFont + `" w:cs="` + monoFont + `"/>`
		if !codeBlock {
			props += `<w:color w:val="` + codeColor + `"/>`
		}
		return props
	}
	return ""
}
