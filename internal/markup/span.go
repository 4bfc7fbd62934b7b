package markup

import "sort"

// Kind identifies the formatting family of a span or region.
type Kind int

const (
	KindCode Kind = iota
	KindBold
	KindItalic
	KindLink
)

func (k Kind) String() string {
	switch k {
	case KindCode:
		return "code"
	case KindBold:
		return "bold"
	case KindItalic:
		return "italic"
	case KindLink:
		return "link"
	default:
		return "unknown"
	}
}

// FormatSpan is a half-open byte range [Start, End) over the stripped text
// carrying one code, bold or italic instruction.
type FormatSpan struct {
	Kind  Kind
	Start int
	End   int
}

// LinkSpan is an inline [text](url) link. Start and End are byte offsets of
// Text within the stripped text.
type LinkSpan struct {
	Text  string
	URL   string
	Start int
	End   int
}

// Parsed is the result of parsing one prose line.
type Parsed struct {
	// Text is the line with every delimiter and link syntax removed.
	Text   string
	Code   []FormatSpan
	Bold   []FormatSpan
	Italic []FormatSpan
	Links  []LinkSpan
}

// Formats returns code, bold and italic spans in that order.
func (p Parsed) Formats() []FormatSpan {
	out := make([]FormatSpan, 0, len(p.Code)+len(p.Bold)+len(p.Italic))
	out = append(out, p.Code...)
	out = append(out, p.Bold...)
	return append(out, p.Italic...)
}

// Region is a styled range handed to a renderer. URL is set for KindLink only.
type Region struct {
	Kind  Kind
	Start int
	End   int
	URL   string
}

// Regions merges format and link spans into one list ordered by Start.
// Ties keep format spans ahead of links, and keep the given order among
// format spans.
func Regions(formats []FormatSpan, links []LinkSpan) []Region {
	out := make([]Region, 0, len(formats)+len(links))
	for _, f := range formats {
		out = append(out, Region{Kind: f.Kind, Start: f.Start, End: f.End})
	}
	for _, l := range links {
		out = append(out, Region{Kind: KindLink, Start: l.Start, End: l.End, URL: l.URL})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})
	return out
}

// Segment is one contiguous piece of text produced by Split. Format is the
// code, bold or italic region covering Text when Formatted is set; Link is
// the link covering Text when Linked is set. Both may apply at once.
type Segment struct {
	Text      string
	Formatted bool
	Format    Region
	Linked    bool
	Link      Region
}

// Split partitions text into segments. Regions must be ordered by Start.
// Format regions overlapping an earlier format region are clipped to begin
// where the earlier one ended and dropped when nothing is left; links are
// resolved the same way among themselves. Links are laid over formats, so a
// link is never lost to a format sharing its range. Joining the segment
// texts always yields text.
func Split(text string, regions []Region) []Segment {
	var formats, links []Region
	for _, r := range regions {
		if r.Kind == KindLink {
			links = append(links, r)
		} else {
			formats = append(formats, r)
		}
	}
	formats = resolve(text, formats)
	links = resolve(text, links)

	cuts := make([]int, 0, 2*(len(formats)+len(links))+2)
	cuts = append(cuts, 0, len(text))
	for _, r := range formats {
		cuts = append(cuts, r.Start, r.End)
	}
	for _, r := range links {
		cuts = append(cuts, r.Start, r.End)
	}
	sort.Ints(cuts)

	segs := make([]Segment, 0, len(cuts))
	for i := 1; i < len(cuts); i++ {
		start, end := cuts[i-1], cuts[i]
		if start == end {
			continue
		}
		seg := Segment{Text: text[start:end]}
		seg.Format, seg.Formatted = covering(formats, start)
		seg.Link, seg.Linked = covering(links, start)
		segs = append(segs, seg)
	}
	return segs
}

// resolve clips ordered regions so they no longer overlap each other or run
// past text.
func resolve(text string, regions []Region) []Region {
	out := make([]Region, 0, len(regions))
	cursor := 0
	for _, r := range regions {
		start := max(r.Start, cursor)
		end := min(r.End, len(text))
		if end <= start {
			continue
		}
		r.Start, r.End = start, end
		out = append(out, r)
		cursor = end
	}
	return out
}

func covering(regions []Region, pos int) (Region, bool) {
	for _, r := range regions {
		if r.Start <= pos && pos < r.End {
			return r, true
		}
	}
	return Region{}, false
}
