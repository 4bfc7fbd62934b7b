package export

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/noama-samreen/dasaf-cbgpt/internal/markupstr"
)

// Typesetter turns a laid-out HTML page into PDF bytes.
type Typesetter interface {
	Typeset(ctx context.Context, layout []byte) ([]byte, error)
}

// PDFWriter serializes a markup-string document through a Typesetter.
type PDFWriter struct {
	Typesetter Typesetter
}

// Extension is the output file extension.
func (PDFWriter) Extension() string { return "pdf" }

// Write lays out doc and typesets it.
func (w PDFWriter) Write(ctx context.Context, doc *markupstr.Document) ([]byte, error) {
	if w.Typesetter == nil {
		return nil, fmt.Errorf("no typesetter configured")
	}
	layout, err := ToHTML(doc)
	if err != nil {
		return nil, err
	}
	return w.Typesetter.Typeset(ctx, layout)
}

// ChromeTypesetter prints pages with a headless Chrome over the DevTools
// protocol.
type ChromeTypesetter struct {
	ExecPath string        // empty uses chromedp's lookup
	Timeout  time.Duration // per document
}

// Typeset loads content into a blank tab and prints it to PDF.
func (t ChromeTypesetter) Typeset(ctx context.Context, content []byte) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	if t.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(t.ExecPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	cctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	if t.Timeout > 0 {
		cctx, cancel = context.WithTimeout(cctx, t.Timeout)
		defer cancel()
	}

	var pdf []byte
	err := chromedp.Run(cctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return fmt.Errorf("get frame tree: %w", err)
			}
			return page.SetDocumentContent(tree.Frame.ID, string(content)).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return fmt.Errorf("print to pdf: %w", err)
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("chrome typesetting: %w", err)
	}
	return pdf, nil
}
