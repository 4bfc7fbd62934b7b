// Package report assembles security reports from a topic catalog and the
// stored analysis texts. Assembly is pure: it takes full snapshots and
// returns a fresh document per call.
package report

import (
	"strings"

	"github.com/noama-samreen/dasaf-cbgpt/internal/catalog"
	"github.com/noama-samreen/dasaf-cbgpt/internal/markup"
)

// Fixed report strings.
const (
	FlaggedSectionTitle = "Critical Security Risks"
	OtherSectionTitle   = "Other Security Considerations"
	Placeholder         = "No analysis available"
	ReferenceLabel      = "Block Explorer: "
)

// Metadata describes the subject of one report.
type Metadata struct {
	Subject      string
	Symbol       string
	ReferenceURL string
}

// Title is the document title, e.g. "Solana (SOL) Security Analysis".
func (m Metadata) Title() string {
	name := strings.TrimSpace(m.Subject)
	if sym := strings.TrimSpace(m.Symbol); sym != "" {
		name += " (" + strings.ToUpper(sym) + ")"
	}
	return name + " Security Analysis"
}

// Analyses maps topic names to analysis bodies. A missing key means no
// analysis exists for that topic.
type Analyses map[string]string

// Builder receives report structure in document order. Each target format
// implements it on top of its own document model.
type Builder interface {
	Title(text string)
	Reference(label, url string)
	Section(title string)
	Topic(name string)
	Prose(p markup.Parsed)
	Code(line string)
	Placeholder(text string)
	Spacer()
}

// Assemble walks the topics, flagged ones first, and feeds b.
func Assemble(b Builder, meta Metadata, topics []catalog.Topic, texts Analyses) {
	b.Title(meta.Title())
	if url := strings.TrimSpace(meta.ReferenceURL); url != "" {
		b.Reference(ReferenceLabel, url)
	}

	flagged, other := catalog.Partition(topics)
	section(b, FlaggedSectionTitle, flagged, texts)
	section(b, OtherSectionTitle, other, texts)
}

func section(b Builder, title string, topics []catalog.Topic, texts Analyses) {
	b.Section(title)
	for _, t := range topics {
		b.Topic(t.Name)
		body, ok := texts[t.Name]
		if !ok || !markup.HasContent(body) {
			b.Placeholder(Placeholder)
		} else {
			for _, blk := range markup.Blocks(body) {
				if blk.Kind == markup.BlockCode {
					b.Code(blk.Line)
				} else {
					b.Prose(blk.Parsed)
				}
			}
		}
		b.Spacer()
	}
}
