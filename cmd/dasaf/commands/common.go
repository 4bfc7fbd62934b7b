package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/noama-samreen/dasaf-cbgpt/internal/catalog"
	"github.com/noama-samreen/dasaf-cbgpt/internal/config"
	"github.com/noama-samreen/dasaf-cbgpt/internal/foundation/errors"
	"github.com/noama-samreen/dasaf-cbgpt/internal/logfields"
	"github.com/noama-samreen/dasaf-cbgpt/internal/metrics"
	"github.com/noama-samreen/dasaf-cbgpt/internal/report"
	"github.com/noama-samreen/dasaf-cbgpt/internal/store"
)

// Global carries process-wide handles into every command.
type Global struct {
	Stdout io.Writer
	Stdin  io.Reader
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"dasaf.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
	Topics  TopicsCmd  `cmd:"" help:"List the topic catalog and which topics have an analysis"`
	Analyze AnalyzeCmd `cmd:"" help:"Request topic analyses from the language model and store them"`
	Ask     AskCmd     `cmd:"" help:"Ask a free-form question about the configured blockchain"`
	Set     SetCmd     `cmd:"" help:"Store an analysis text for a topic from a file or stdin"`
	Show    ShowCmd    `cmd:"" help:"Print the stored analysis for a topic"`
	Delete  DeleteCmd  `cmd:"" help:"Remove the stored analysis for a topic"`
	Export  ExportCmd  `cmd:"" help:"Write the report as DOCX and PDF documents"`
	Preview PreviewCmd `cmd:"" help:"Render the report as an HTML page, optionally regenerating on change"`
}

// AfterApply runs after flag parsing; it installs a logger so config loading
// can log. The handler is replaced once the configuration is known.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	configureLogging(config.LoggingConfig{Level: config.LogLevelInfo, Format: config.LogFormatText}, c.Verbose)
	return nil
}

func configureLogging(cfg config.LoggingConfig, verbose bool) {
	level := cfg.Level.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// session bundles what most commands need: configuration, catalog, store
// and metrics recorder.
type session struct {
	cfg      *config.Config
	topics   []catalog.Topic
	store    store.Store
	recorder metrics.Recorder
	prom     *metrics.PrometheusRecorder
}

func openSession(root *CLI) (*session, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	configureLogging(cfg.Logging, root.Verbose)

	topics, err := cfg.LoadTopics()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(string(cfg.Store.Backend), cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	slog.Debug("Opened analysis store",
		logfields.Backend(string(cfg.Store.Backend)),
		logfields.Path(cfg.Store.Path))

	s := &session{cfg: cfg, topics: topics, store: st, recorder: metrics.NoopRecorder{}}
	if cfg.Metrics.Textfile != "" {
		s.prom = metrics.NewPrometheusRecorder(nil)
		s.recorder = s.prom
	}
	return s, nil
}

// Close flushes metrics and releases the store.
func (s *session) Close() error {
	if s.prom != nil {
		if err := s.prom.WriteTextfile(s.cfg.Metrics.Textfile); err != nil {
			slog.Warn("Failed to write metrics", logfields.Path(s.cfg.Metrics.Textfile), logfields.Error(err))
		}
	}
	return s.store.Close()
}

func (s *session) meta() report.Metadata {
	return report.Metadata{
		Subject:      s.cfg.Report.Subject,
		Symbol:       s.cfg.Report.Symbol,
		ReferenceURL: s.cfg.Report.ReferenceURL,
	}
}

func (s *session) analyses(ctx context.Context) (report.Analyses, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return report.Analyses(snap), nil
}

// topic resolves name against the catalog.
func (s *session) topic(name string) (catalog.Topic, error) {
	t, ok := catalog.Find(s.topics, name)
	if !ok {
		return catalog.Topic{}, errors.NotFoundError("unknown topic (see 'dasaf topics')").
			ForTopic(name).
			Build()
	}
	return t, nil
}

// closeSession is deferred by commands; a close failure only matters when
// the command itself succeeded.
func closeSession(s *session, err *error) {
	if cerr := s.Close(); cerr != nil && *err == nil {
		*err = errors.WrapError(cerr, errors.CategoryStore, "failed to close store").Build()
	}
}
