package report

import (
	"fmt"
	"testing"

	"github.com/noama-samreen/dasaf-cbgpt/internal/catalog"
	"github.com/noama-samreen/dasaf-cbgpt/internal/markup"
	"github.com/noama-samreen/dasaf-cbgpt/internal/markupstr"
	"github.com/noama-samreen/dasaf-cbgpt/internal/richtext"
	"github.com/stretchr/testify/require"
)

// recorder captures builder calls as strings.
type recorder struct {
	events []string
}

func (r *recorder) Title(text string)           { r.add("title", text) }
func (r *recorder) Reference(label, url string) { r.add("reference", label+url) }
func (r *recorder) Section(title string)        { r.add("section", title) }
func (r *recorder) Topic(name string)           { r.add("topic", name) }
func (r *recorder) Prose(p markup.Parsed)       { r.add("prose", p.Text) }
func (r *recorder) Code(line string)            { r.add("code", line) }
func (r *recorder) Placeholder(text string)     { r.add("placeholder", text) }
func (r *recorder) Spacer()                     { r.add("spacer", "") }

func (r *recorder) add(kind, text string) {
	r.events = append(r.events, fmt.Sprintf("%s:%s", kind, text))
}

var twoTopics = []catalog.Topic{
	{Name: "Other One", Prompt: "p2"},
	{Name: "Flagged One", Flagged: true, Prompt: "p1"},
}

func TestAssemble_EndToEndOrder(t *testing.T) {
	r := &recorder{}
	Assemble(r, Metadata{Subject: "Solana", Symbol: "sol"}, twoTopics, Analyses{
		"Flagged One": "First **line**\nSecond line",
	})

	require.Equal(t, []string{
		"title:Solana (SOL) Security Analysis",
		"section:Critical Security Risks",
		"topic:Flagged One",
		"prose:First line",
		"prose:Second line",
		"spacer:",
		"section:Other Security Considerations",
		"topic:Other One",
		"placeholder:No analysis available",
		"spacer:",
	}, r.events)
}

func TestAssemble_ReferenceAndCodeLines(t *testing.T) {
	r := &recorder{}
	Assemble(r, Metadata{Subject: "Chain", ReferenceURL: " https://explorer.example "}, []catalog.Topic{{Name: "T", Flagged: true}}, Analyses{
		"T": "Intro\n\n    raw **code**\n```\n",
	})

	require.Equal(t, []string{
		"title:Chain Security Analysis",
		"reference:Block Explorer: https://explorer.example",
		"section:Critical Security Risks",
		"topic:T",
		"prose:Intro",
		"code:    raw **code**",
		"code:```",
		"spacer:",
		"section:Other Security Considerations",
	}, r.events)
}

func TestAssemble_BlankAnalysisUsesPlaceholder(t *testing.T) {
	r := &recorder{}
	Assemble(r, Metadata{Subject: "X"}, []catalog.Topic{{Name: "T"}}, Analyses{"T": "  \n\t\n"})
	require.Contains(t, r.events, "placeholder:No analysis available")
}

func TestAssemble_KeepsCallerOrderWithinSections(t *testing.T) {
	topics := []catalog.Topic{
		{Name: "Zeta", Flagged: true},
		{Name: "beta"},
		{Name: "Alpha", Flagged: true},
		{Name: "Gamma"},
	}
	r := &recorder{}
	Assemble(r, Metadata{Subject: "X"}, topics, nil)

	var names []string
	for _, e := range r.events {
		if len(e) > 6 && e[:6] == "topic:" {
			names = append(names, e[6:])
		}
	}
	require.Equal(t, []string{"Zeta", "Alpha", "beta", "Gamma"}, names)
}

func TestBuildRichText(t *testing.T) {
	doc := BuildRichText(Metadata{Subject: "Solana", Symbol: "SOL", ReferenceURL: "https://explorer.solana.com"}, twoTopics, Analyses{
		"Flagged One": "See [docs](https://docs.example) and **a** plain **b**\n    code **x**",
	})

	require.Equal(t, "Solana (SOL) Security Analysis", doc.Title)
	require.Equal(t, "Solana", doc.Subject)

	kinds := make([]richtext.BlockKind, 0, len(doc.Blocks))
	for _, b := range doc.Blocks {
		kinds = append(kinds, b.Kind)
	}
	require.Equal(t, []richtext.BlockKind{
		richtext.BlockTitle,
		richtext.BlockParagraph, // reference
		richtext.BlockHeading,
		richtext.BlockHeading,
		richtext.BlockParagraph,
		richtext.BlockParagraph,
		richtext.BlockSpacer,
		richtext.BlockHeading,
		richtext.BlockHeading,
		richtext.BlockParagraph,
		richtext.BlockSpacer,
	}, kinds)

	prose := doc.Blocks[4]
	require.Equal(t, "See docs and a plain b", prose.Text())
	require.Equal(t, []richtext.Run{
		{Text: "See ", Style: richtext.Plain},
		{Text: "docs", Style: richtext.Hyperlink, URL: "https://docs.example"},
		{Text: " and ", Style: richtext.Plain},
		{Text: "a", Style: richtext.Bold},
		{Text: " plain ", Style: richtext.Plain},
		{Text: "b", Style: richtext.Bold},
	}, prose.Runs)

	code := doc.Blocks[5]
	require.Equal(t, richtext.StyleCode, code.Style)
	require.Equal(t, []richtext.Run{{Text: "    code **x**", Style: richtext.Monospace}}, code.Runs)

	require.Equal(t, richtext.StylePlaceholder, doc.Blocks[9].Style)
	require.Equal(t, Placeholder, doc.Blocks[9].Text())

	require.Equal(t, []richtext.Relationship{
		{ID: "rIdLink1", Target: "https://explorer.solana.com"},
		{ID: "rIdLink2", Target: "https://docs.example"},
	}, doc.Relationships())
}

func TestBuildMarkup(t *testing.T) {
	doc := BuildMarkup(Metadata{Subject: "Solana"}, twoTopics, Analyses{
		"Flagged One": "**a** plain **b**\n    code <x>",
	})

	require.Equal(t, []markupstr.Flowable{
		{Kind: markupstr.FlowableParagraph, Style: markupstr.StyleTitle, Markup: "Solana Security Analysis"},
		{Kind: markupstr.FlowableParagraph, Style: markupstr.StyleSection, Markup: FlaggedSectionTitle},
		{Kind: markupstr.FlowableParagraph, Style: markupstr.StyleTopic, Markup: "Flagged One"},
		{Kind: markupstr.FlowableParagraph, Style: markupstr.StyleBody, Markup: "<b>a</b> plain b"},
		{Kind: markupstr.FlowableParagraph, Style: markupstr.StyleCode, Markup: `<font name="Courier">    code &lt;x&gt;</font>`},
		{Kind: markupstr.FlowableSpacer, Height: markupstr.SpacerHeight},
		{Kind: markupstr.FlowableParagraph, Style: markupstr.StyleSection, Markup: OtherSectionTitle},
		{Kind: markupstr.FlowableParagraph, Style: markupstr.StyleTopic, Markup: "Other One"},
		{Kind: markupstr.FlowableParagraph, Style: markupstr.StylePlaceholder, Markup: "<i>No analysis available</i>"},
		{Kind: markupstr.FlowableSpacer, Height: markupstr.SpacerHeight},
	}, doc.Flowables)
}

func TestBuild_Reproducible(t *testing.T) {
	meta := Metadata{Subject: "Chain", Symbol: "CHN", ReferenceURL: "https://e.example"}
	texts := Analyses{"Flagged One": "x [y](z) `w`"}

	require.Equal(t, BuildRichText(meta, twoTopics, texts), BuildRichText(meta, twoTopics, texts))
	require.Equal(t, BuildMarkup(meta, twoTopics, texts), BuildMarkup(meta, twoTopics, texts))
}

func TestMetadataTitle(t *testing.T) {
	require.Equal(t, "Ethereum (ETH) Security Analysis", Metadata{Subject: " Ethereum ", Symbol: "eth"}.Title())
	require.Equal(t, "Ethereum Security Analysis", Metadata{Subject: "Ethereum"}.Title())
}
