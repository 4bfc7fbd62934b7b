package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/noama-samreen/dasaf-cbgpt/internal/config"
	"github.com/noama-samreen/dasaf-cbgpt/internal/export"
	"github.com/noama-samreen/dasaf-cbgpt/internal/foundation/errors"
)

// ExportCmd implements the 'export' command.
type ExportCmd struct {
	Formats []string `short:"f" name:"format" help:"Format to write: docx or pdf (repeatable, default from config)"`
	Output  string   `short:"o" name:"output" help:"Output directory (overrides export.directory)"`
}

func (e *ExportCmd) Run(g *Global, root *CLI) (err error) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	s, err := openSession(root)
	if err != nil {
		return err
	}
	defer closeSession(s, &err)

	formats, err := e.formats(s.cfg)
	if err != nil {
		return err
	}
	if err := s.cfg.ValidateForExport(); err != nil {
		return err
	}
	texts, err := s.analyses(ctx)
	if err != nil {
		return err
	}

	dir := s.cfg.Export.Directory
	if e.Output != "" {
		dir = e.Output
	}
	svc := export.NewService(dir, export.ChromeTypesetter{
		ExecPath: s.cfg.Export.ChromePath,
		Timeout:  s.cfg.Export.Timeout,
	})
	svc.Basename = s.cfg.Export.Basename
	svc.Recorder = s.recorder

	results, exportErr := svc.Export(ctx, s.meta(), s.topics, texts, formats)
	for _, res := range results {
		if res.Err != nil {
			_, _ = fmt.Fprintf(g.Stdout, "%s: failed: %v\n", res.Format, res.Err)
			continue
		}
		_, _ = fmt.Fprintf(g.Stdout, "%s: %s\n", res.Format, res.Path)
	}
	return exportErr
}

func (e *ExportCmd) formats(cfg *config.Config) ([]config.ExportFormat, error) {
	if len(e.Formats) == 0 {
		return cfg.Export.Formats, nil
	}
	out := make([]config.ExportFormat, 0, len(e.Formats))
	seen := make(map[config.ExportFormat]bool, len(e.Formats))
	for _, raw := range e.Formats {
		f, err := config.ParseFormat(raw)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryValidation, "invalid --format").
				WithContext(errors.ContextFormat, raw).
				Build()
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	cfg.Export.Formats = out
	return out, nil
}
