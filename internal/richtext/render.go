package richtext

import "github.com/noama-samreen/dasaf-cbgpt/internal/markup"

// RenderParagraph turns one parsed prose line into runs. Every code, bold,
// italic and link span is styled; the runs partition p.Text exactly. Text
// that is both formatted and linked becomes a Hyperlink run marked with the
// format.
func RenderParagraph(p markup.Parsed) []Run {
	segs := markup.Split(p.Text, markup.Regions(p.Formats(), p.Links))
	runs := make([]Run, 0, len(segs))
	for _, seg := range segs {
		run := Run{Text: seg.Text, Style: Plain}
		if seg.Formatted {
			run.Style = formatStyle(seg.Format.Kind)
		}
		if seg.Linked {
			run.Mark, run.Style, run.URL = run.Style, Hyperlink, seg.Link.URL
		}
		runs = append(runs, run)
	}
	return runs
}

func formatStyle(k markup.Kind) Style {
	switch k {
	case markup.KindCode:
		return Monospace
	case markup.KindBold:
		return Bold
	case markup.KindItalic:
		return Italic
	}
	return Plain
}

// RenderCode renders a code line as a single monospace run, untouched.
func RenderCode(line string) []Run {
	return []Run{{Text: line, Style: Monospace}}
}
