package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/noama-samreen/dasaf-cbgpt/internal/markupstr"
)

const pageCSS = `@page { size: Letter; margin: 1in; }
body { font-family: Helvetica, Arial, sans-serif; font-size: 11pt; line-height: 1.35; color: #111; }
h1.title { text-align: center; font-size: 20pt; margin: 0 0 18pt; }
h2 { font-size: 16pt; margin: 18pt 0 6pt; }
h3 { font-size: 13pt; margin: 12pt 0 4pt; page-break-after: avoid; }
p { margin: 0 0 6pt; }
p.code { font-family: Courier, monospace; font-size: 10pt; white-space: pre-wrap; margin: 0; }
p.placeholder { color: #808080; }
div.spacer { margin: 0; }
`

// ToHTML lays a markup-string document out as a standalone HTML page. The
// inline tags are translated through an HTML tokenizer so stray markup in
// analysis text cannot open elements the typesetter does not expect.
func ToHTML(doc *markupstr.Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}
	var b bytes.Buffer
	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\">")
	b.WriteString("<title>" + html.EscapeString(doc.Title) + "</title>")
	b.WriteString("<meta name=\"subject\" content=\"" + html.EscapeString(doc.Subject) + "\">")
	b.WriteString("<style>\n" + pageCSS + "</style></head>\n<body>\n")

	for _, f := range doc.Flowables {
		if f.Kind == markupstr.FlowableSpacer {
			fmt.Fprintf(&b, "<div class=\"spacer\" style=\"height:%gpt\"></div>\n", f.Height)
			continue
		}
		open, closing := blockTags(f.Style)
		b.WriteString(open)
		if err := writeInline(&b, f.Markup); err != nil {
			return nil, err
		}
		b.WriteString(closing + "\n")
	}
	b.WriteString("</body></html>\n")
	return b.Bytes(), nil
}

func blockTags(style markupstr.Style) (string, string) {
	switch style {
	case markupstr.StyleTitle:
		return `<h1 class="title">`, "</h1>"
	case markupstr.StyleSection:
		return "<h2>", "</h2>"
	case markupstr.StyleTopic:
		return "<h3>", "</h3>"
	case markupstr.StyleCode:
		return `<p class="code">`, "</p>"
	case markupstr.StylePlaceholder:
		return `<p class="placeholder">`, "</p>"
	default:
		return "<p>", "</p>"
	}
}

// writeInline translates the inline tag vocabulary (b, i, u, font, a) into
// HTML. Other tags are dropped while their text is kept.
func writeInline(w *bytes.Buffer, markup string) error {
	z := html.NewTokenizer(strings.NewReader(markup))
	var stack []string
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return fmt.Errorf("tokenize markup: %w", err)
			}
			for i := len(stack) - 1; i >= 0; i-- {
				w.WriteString("</" + stack[i] + ">")
			}
			return nil
		case html.TextToken:
			w.WriteString(html.EscapeString(string(z.Text())))
		case html.StartTagToken:
			tok := z.Token()
			if open, elem := translateTag(tok); elem != "" {
				w.WriteString(open)
				stack = append(stack, elem)
			}
		case html.EndTagToken:
			tok := z.Token()
			if want := htmlElement(tok.Data); want != "" && len(stack) > 0 && stack[len(stack)-1] == want {
				w.WriteString("</" + want + ">")
				stack = stack[:len(stack)-1]
			}
		}
	}
}

func htmlElement(tag string) string {
	switch tag {
	case "b", "i", "u", "a":
		return tag
	case "font":
		return "span"
	}
	return ""
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func translateTag(tok html.Token) (string, string) {
	switch tok.Data {
	case "b", "i", "u":
		return "<" + tok.Data + ">", tok.Data
	case "font":
		var style []string
		if name := attr(tok, "name"); name != "" {
			style = append(style, "font-family:"+cssValue(name)+", monospace")
		}
		if color := attr(tok, "color"); color != "" {
			style = append(style, "color:"+cssValue(color))
		}
		return `<span style="` + html.EscapeString(strings.Join(style, ";")) + `">`, "span"
	case "a":
		open := `<a href="` + html.EscapeString(attr(tok, "href")) + `"`
		if color := attr(tok, "color"); color != "" {
			open += ` style="color:` + html.EscapeString(cssValue(color)) + `"`
		}
		return open + ">", "a"
	}
	return "", ""
}

// cssValue keeps only characters that cannot end a declaration.
func cssValue(v string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ';', '{', '}', '"', '\'', '<', '>', '\\':
			return -1
		}
		return r
	}, v)
}
