// Package export serializes assembled reports into binary documents and
// writes them to disk.
package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/noama-samreen/dasaf-cbgpt/internal/catalog"
	"github.com/noama-samreen/dasaf-cbgpt/internal/config"
	"github.com/noama-samreen/dasaf-cbgpt/internal/foundation/errors"
	"github.com/noama-samreen/dasaf-cbgpt/internal/logfields"
	"github.com/noama-samreen/dasaf-cbgpt/internal/markup"
	"github.com/noama-samreen/dasaf-cbgpt/internal/metrics"
	"github.com/noama-samreen/dasaf-cbgpt/internal/report"
)

// Result is the outcome of one format.
type Result struct {
	Format   config.ExportFormat
	Path     string
	Bytes    int
	Duration time.Duration
	Err      error
}

// Service assembles reports and writes one file per requested format.
type Service struct {
	Dir      string
	Basename string // defaults to BaseName(subject)
	DOCX     DOCXWriter
	PDF      PDFWriter
	Recorder metrics.Recorder
}

// NewService returns a service writing into dir with the given typesetter
// for PDF output.
func NewService(dir string, typesetter Typesetter) *Service {
	return &Service{
		Dir:      dir,
		PDF:      PDFWriter{Typesetter: typesetter},
		Recorder: metrics.NoopRecorder{},
	}
}

// BaseName derives a file name stem from the report subject, e.g.
// "Solana" becomes "solana_security_analysis".
func BaseName(subject string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(subject)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	stem := strings.TrimSuffix(b.String(), "_")
	if stem == "" {
		stem = "report"
	}
	return stem + "_security_analysis"
}

// Export renders every format independently. A failing format does not
// stop the others; its Result carries a render error, and the returned
// error summarizes all failures.
func (s *Service) Export(ctx context.Context, meta report.Metadata, topics []catalog.Topic, texts report.Analyses, formats []config.ExportFormat) ([]Result, error) {
	rec := s.Recorder
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	if err := os.MkdirAll(s.Dir, 0o750); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to create output directory").
			WithContext(errors.ContextPath, s.Dir).
			Build()
	}

	recordTopics(rec, topics, texts)

	base := s.Basename
	if base == "" {
		base = BaseName(meta.Subject)
	}

	results := make([]Result, 0, len(formats))
	var failed []string
	for _, format := range formats {
		res := s.exportOne(ctx, meta, topics, texts, format, base)
		rec.ObserveExportDuration(string(format), res.Duration)
		if res.Err != nil {
			rec.IncExportResult(string(format), metrics.ResultFailed)
			slog.Error("Export failed", logfields.Format(string(format)), logfields.Error(res.Err))
			failed = append(failed, string(format))
		} else {
			rec.IncExportResult(string(format), metrics.ResultSuccess)
			slog.Info("Exported report",
				logfields.Format(string(format)),
				logfields.Path(res.Path),
				logfields.Duration(res.Duration))
		}
		results = append(results, res)
	}

	if len(failed) > 0 {
		return results, errors.RenderError(fmt.Sprintf("%d of %d formats failed", len(failed), len(formats))).
			WithContext("formats", strings.Join(failed, ",")).
			Build()
	}
	return results, nil
}

func (s *Service) exportOne(ctx context.Context, meta report.Metadata, topics []catalog.Topic, texts report.Analyses, format config.ExportFormat, base string) Result {
	start := time.Now()
	res := Result{Format: format}

	var data []byte
	var err error
	switch format {
	case config.FormatDOCX:
		data, err = s.DOCX.Write(report.BuildRichText(meta, topics, texts))
	case config.FormatPDF:
		data, err = s.PDF.Write(ctx, report.BuildMarkup(meta, topics, texts))
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		res.Duration = time.Since(start)
		res.Err = errors.WrapError(err, errors.CategoryRender, "failed to serialize report").
			WithContext(errors.ContextFormat, string(format)).
			Build()
		return res
	}

	res.Path = filepath.Join(s.Dir, base+"."+string(format))
	if err := writeFileAtomic(res.Path, data); err != nil {
		res.Duration = time.Since(start)
		res.Err = errors.WrapError(err, errors.CategoryFileSystem, "failed to write report").
			WithContext(errors.ContextPath, res.Path).
			Build()
		return res
	}
	res.Bytes = len(data)
	res.Duration = time.Since(start)
	return res
}

func recordTopics(rec metrics.Recorder, topics []catalog.Topic, texts report.Analyses) {
	flagged, other := catalog.Partition(topics)
	for _, group := range []struct {
		section string
		topics  []catalog.Topic
	}{{report.FlaggedSectionTitle, flagged}, {report.OtherSectionTitle, other}} {
		for _, t := range group.topics {
			body, ok := texts[t.Name]
			rec.IncTopicsRendered(group.section, !ok || !markup.HasContent(body))
		}
	}
}

// writeFileAtomic writes data to a temp file beside path and renames it into
// place. The temp file is removed on every failure.
func writeFileAtomic(path string, data []byte) error {
	return writeAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

func writeAtomic(path string, write func(io.Writer) error) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	if err = write(f); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// #nosec G302 -- reports are shared documents
	if err = os.Chmod(tmp, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
