// Package markup parses the small inline syntax used in analysis passages:
// `code`, **bold**, *italic*, [text](url) links and code-block lines.
//
// Parsing never fails. Unterminated markers are dropped from the text and
// produce no span, so malformed input degrades to plain text.
package markup

import "strings"

const fence = "```"

// pendingLink tracks a link whose display text is being scanned.
type pendingLink struct {
	start   int // offset in output where the display text begins
	closeAt int // index in src of the closing ']'
	resume  int // index in src just past ')'
	url     string
}

// Parse strips markers from line and returns the stripped text with every
// span expressed against it.
//
// Triple-backtick fences are removed first without producing a span. Then a
// single forward scan consumes the remaining markers; each family (`, **, *)
// keeps its own open position, and the next marker of the same family closes
// it. Link syntax is recognized in the same scan, so link offsets share the
// coordinate space of the format spans.
func Parse(line string) Parsed {
	src := strings.ReplaceAll(line, fence, "")

	var (
		out  strings.Builder
		res  Parsed
		link *pendingLink
	)
	open := [3]int{-1, -1, -1}
	out.Grow(len(src))

	for i := 0; i < len(src); {
		if link != nil && i >= link.closeAt {
			end := out.Len()
			res.Links = append(res.Links, LinkSpan{
				Text:  out.String()[link.start:end],
				URL:   link.url,
				Start: link.start,
				End:   end,
			})
			i = link.resume
			link = nil
			continue
		}

		c := src[i]
		switch {
		case c == '`':
			res.toggle(KindCode, &open, out.Len())
			i++
		case c == '*' && i+1 < len(src) && src[i+1] == '*':
			res.toggle(KindBold, &open, out.Len())
			i += 2
		case c == '*':
			res.toggle(KindItalic, &open, out.Len())
			i++
		case c == '[' && link == nil:
			if l, ok := matchLink(src, i); ok {
				l.start = out.Len()
				link = &l
			} else {
				out.WriteByte(c)
			}
			i++
		default:
			out.WriteByte(c)
			i++
		}
	}

	res.Text = out.String()
	return res
}

// toggle opens a span of kind k at pos, or closes the open one.
func (p *Parsed) toggle(k Kind, open *[3]int, pos int) {
	if open[k] < 0 {
		open[k] = pos
		return
	}
	start := open[k]
	open[k] = -1
	if pos == start {
		return
	}
	span := FormatSpan{Kind: k, Start: start, End: pos}
	switch k {
	case KindCode:
		p.Code = append(p.Code, span)
	case KindBold:
		p.Bold = append(p.Bold, span)
	case KindItalic:
		p.Italic = append(p.Italic, span)
	}
}

// matchLink reports whether src[i:] starts with [text](url), where text holds
// no ']' and url holds no ')' and neither is empty.
func matchLink(src string, i int) (pendingLink, bool) {
	rel := strings.IndexByte(src[i+1:], ']')
	if rel <= 0 {
		return pendingLink{}, false
	}
	closeAt := i + 1 + rel
	if closeAt+1 >= len(src) || src[closeAt+1] != '(' {
		return pendingLink{}, false
	}
	urlStart := closeAt + 2
	rel = strings.IndexByte(src[urlStart:], ')')
	if rel <= 0 {
		return pendingLink{}, false
	}
	return pendingLink{
		closeAt: closeAt,
		resume:  urlStart + rel + 1,
		url:     src[urlStart : urlStart+rel],
	}, true
}
