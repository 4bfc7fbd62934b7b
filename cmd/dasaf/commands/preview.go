package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/noama-samreen/dasaf-cbgpt/internal/config"
	"github.com/noama-samreen/dasaf-cbgpt/internal/export"
	"github.com/noama-samreen/dasaf-cbgpt/internal/foundation/errors"
	"github.com/noama-samreen/dasaf-cbgpt/internal/logfields"
	"github.com/noama-samreen/dasaf-cbgpt/internal/preview"
	"github.com/noama-samreen/dasaf-cbgpt/internal/report"
	"github.com/noama-samreen/dasaf-cbgpt/internal/store"
)

// PreviewCmd renders the report to HTML and optionally keeps it current.
type PreviewCmd struct {
	Output string `short:"o" name:"output" help:"HTML file to write (defaults to <basename>.html in the export directory)"`
	Watch  bool   `short:"w" name:"watch" help:"Regenerate whenever the analysis store changes"`
}

func (p *PreviewCmd) Run(g *Global, root *CLI) (err error) {
	sigctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	s, err := openSession(root)
	if err != nil {
		return err
	}
	// The store is reopened for every render so external edits are seen.
	if err := s.store.Close(); err != nil {
		return err
	}

	out := p.outputPath(s.cfg)
	render := func(ctx context.Context) error {
		return renderPreview(ctx, s, out)
	}
	if err := render(sigctx); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Stdout, "Preview written to %s\n", out)
	if !p.Watch {
		return nil
	}

	w, err := preview.NewWatcher(s.cfg.Store.Path, preview.DefaultDebounce)
	if err != nil {
		return err
	}
	return w.Run(sigctx, func(ctx context.Context) error {
		if err := render(ctx); err != nil {
			return err
		}
		slog.Info("Preview regenerated", logfields.Path(out))
		return nil
	})
}

func (p *PreviewCmd) outputPath(cfg *config.Config) string {
	if p.Output != "" {
		return p.Output
	}
	base := cfg.Export.Basename
	if base == "" {
		base = export.BaseName(cfg.Report.Subject)
	}
	return filepath.Join(cfg.Export.Directory, base+".html")
}

func renderPreview(ctx context.Context, s *session, out string) error {
	st, err := store.Open(string(s.cfg.Store.Backend), s.cfg.Store.Path)
	if err != nil {
		return err
	}
	snap, err := st.Snapshot(ctx)
	_ = st.Close()
	if err != nil {
		return err
	}

	page, err := preview.Render(s.meta(), s.topics, report.Analyses(snap))
	if err != nil {
		return err
	}
	if dir := filepath.Dir(out); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to create output directory").
				WithContext(errors.ContextPath, dir).
				Build()
		}
	}
	// #nosec G306 -- previews are shared documents
	if err := os.WriteFile(out, page, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write preview").
			WithContext(errors.ContextPath, out).
			Build()
	}
	return nil
}
