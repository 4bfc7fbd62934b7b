package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/noama-samreen/dasaf-cbgpt/internal/catalog"
	"github.com/noama-samreen/dasaf-cbgpt/internal/markup"
	"github.com/noama-samreen/dasaf-cbgpt/internal/report"
)

// TopicsCmd implements the 'topics' command.
type TopicsCmd struct{}

func (t *TopicsCmd) Run(g *Global, root *CLI) (err error) {
	s, err := openSession(root)
	if err != nil {
		return err
	}
	defer closeSession(s, &err)

	texts, err := s.analyses(context.Background())
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(g.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "SECTION\tTOPIC\tANALYSIS")
	flagged, other := catalog.Partition(s.topics)
	for _, group := range []struct {
		section string
		topics  []catalog.Topic
	}{{report.FlaggedSectionTitle, flagged}, {report.OtherSectionTitle, other}} {
		for _, topic := range group.topics {
			status := "missing"
			if markup.HasContent(texts[topic.Name]) {
				status = "stored"
			}
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", group.section, topic.Name, status)
		}
	}
	return tw.Flush()
}
