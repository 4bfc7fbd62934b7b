package commands

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/noama-samreen/dasaf-cbgpt/internal/catalog"
	"github.com/noama-samreen/dasaf-cbgpt/internal/foundation/errors"
	"github.com/noama-samreen/dasaf-cbgpt/internal/llm"
	"github.com/noama-samreen/dasaf-cbgpt/internal/logfields"
	"github.com/noama-samreen/dasaf-cbgpt/internal/store"
)

// AnalyzeCmd implements the 'analyze' command.
type AnalyzeCmd struct {
	Topics []string `short:"t" name:"topic" help:"Topic to analyze (repeatable, default all)"`
	Extra  string   `name:"extra" help:"Additional details appended to every topic prompt"`
	Force  bool     `help:"Re-analyze topics that already have a stored analysis"`
}

func (a *AnalyzeCmd) Run(g *Global, root *CLI) (err error) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	s, err := openSession(root)
	if err != nil {
		return err
	}
	defer closeSession(s, &err)

	if err := s.cfg.ValidateForAnalyze(); err != nil {
		return err
	}
	selected, err := a.selectTopics(s)
	if err != nil {
		return err
	}
	client, err := llm.New(s.cfg.LLM, llm.WithRecorder(s.recorder))
	if err != nil {
		return err
	}

	subject := s.cfg.Report.Subject
	var analyzed, skipped, failed int
	for _, topic := range selected {
		if !a.Force {
			if _, err := s.store.Get(ctx, topic.Name); err == nil {
				slog.Debug("Analysis already stored", logfields.Topic(topic.Name))
				skipped++
				continue
			} else if !stderrors.Is(err, store.ErrNotFound) {
				return err
			}
		}

		start := time.Now()
		slog.Info("Analyzing topic", logfields.Topic(topic.Name), logfields.Subject(subject))
		text, err := client.AnalyzeTopic(ctx, subject, s.cfg.Report.ReferenceURL, topic, a.Extra)
		if err != nil {
			if ctx.Err() != nil || errors.HasCategory(err, errors.CategoryAuth) || errors.HasCategory(err, errors.CategoryConfig) {
				return err
			}
			slog.Error("Analysis failed", logfields.Topic(topic.Name), logfields.Error(err))
			failed++
			continue
		}
		if _, err := s.store.Put(ctx, topic.Name, text); err != nil {
			return err
		}
		slog.Info("Stored analysis", logfields.Topic(topic.Name), logfields.Duration(time.Since(start)))
		analyzed++
	}

	_, _ = fmt.Fprintf(g.Stdout, "Analyzed %d, skipped %d, failed %d of %d topics\n", analyzed, skipped, failed, len(selected))
	if failed > 0 {
		return errors.LLMError(fmt.Sprintf("%d of %d topics failed", failed, len(selected))).Build()
	}
	return nil
}

func (a *AnalyzeCmd) selectTopics(s *session) ([]catalog.Topic, error) {
	if len(a.Topics) == 0 {
		return s.topics, nil
	}
	out := make([]catalog.Topic, 0, len(a.Topics))
	for _, name := range a.Topics {
		t, err := s.topic(name)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
