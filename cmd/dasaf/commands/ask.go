package commands

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/noama-samreen/dasaf-cbgpt/internal/llm"
)

// AskCmd implements the 'ask' command.
type AskCmd struct {
	Question []string `arg:"" help:"Question to ask"`
	Topic    string   `short:"t" name:"topic" help:"Also store the answer as the analysis of this topic"`
}

func (a *AskCmd) Run(g *Global, root *CLI) (err error) {
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
	var topicName string
	if a.Topic != "" {
		t, err := s.topic(a.Topic)
		if err != nil {
			return err
		}
		topicName = t.Name
	}
	client, err := llm.New(s.cfg.LLM, llm.WithRecorder(s.recorder))
	if err != nil {
		return err
	}

	answer, err := client.Ask(ctx, s.cfg.Report.Subject, strings.Join(a.Question, " "))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(g.Stdout, answer)

	if topicName != "" {
		if _, err := s.store.Put(ctx, topicName, answer); err != nil {
			return err
		}
	}
	return nil
}
