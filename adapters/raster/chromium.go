// Package raster captures rendered HTML trees as bitmaps using a shared
// headless Chromium instance.
package raster

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/paperbuddy/paperbuddy/export"
)

const (
	defaultViewportWidth  = 1200
	defaultViewportHeight = 800
	defaultOversample     = 2.0
)

// ChromiumEngine rasterizes HTML using a shared headless Chromium instance.
// The browser is started lazily on first capture and reused across captures;
// each capture runs in its own tab.
type ChromiumEngine struct {
	BrowserPath string
	Headless    bool
	Timeout     time.Duration
	Args        []string

	// ViewportWidth is the CSS layout width; the capture itself extends to
	// the full content height.
	ViewportWidth int64

	initOnce      sync.Once
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// Capture renders the tree and screenshots the full content bounds as an
// opaque PNG at the requested oversample factor.
func (e *ChromiumEngine) Capture(ctx context.Context, req export.CaptureRequest) ([]byte, error) {
	if e == nil {
		return nil, export.NewError(export.PhaseCapture, export.KindInternal, "chromium engine is nil", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if err := e.ensureBrowser(); err != nil {
		return nil, export.NewError(export.PhaseCapture, export.KindCapture, "chromium engine init failed", err)
	}

	tabCtx, cancel := chromedp.NewContext(e.browserCtx)
	defer cancel()

	execCtx, cancelReq := context.WithCancel(tabCtx)
	defer cancelReq()
	go func() {
		select {
		case <-ctx.Done():
			cancelReq()
		case <-execCtx.Done():
		}
	}()
	if e.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		execCtx, cancelTimeout = context.WithTimeout(execCtx, e.Timeout)
		defer cancelTimeout()
	}

	width := e.ViewportWidth
	if width <= 0 {
		width = defaultViewportWidth
	}
	oversample := req.Oversample
	if oversample <= 0 {
		oversample = defaultOversample
	}

	var shot []byte
	actions := []chromedp.Action{
		chromedp.EmulateViewport(width, defaultViewportHeight, chromedp.EmulateScale(oversample)),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(req.HTML)).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		// Quality 100 selects lossless PNG output.
		chromedp.FullScreenshot(&shot, 100),
	}

	if err := chromedp.Run(execCtx, actions...); err != nil {
		return nil, export.NewError(export.PhaseCapture, export.KindCapture, "chromium capture failed", err)
	}
	return shot, nil
}

// Close releases Chromium resources if they have been initialized.
func (e *ChromiumEngine) Close() error {
	if e == nil {
		return nil
	}
	if e.browserCancel != nil {
		e.browserCancel()
	}
	if e.allocCancel != nil {
		e.allocCancel()
	}
	return nil
}

func (e *ChromiumEngine) ensureBrowser() error {
	e.initOnce.Do(func() {
		options := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
		if e.BrowserPath != "" {
			options = append(options, chromedp.ExecPath(e.BrowserPath))
		}
		options = append(options, chromedp.Flag("headless", e.Headless))
		options = append(options, allocatorOptionsFromArgs(e.Args)...)

		e.allocCtx, e.allocCancel = chromedp.NewExecAllocator(context.Background(), options...)
		e.browserCtx, e.browserCancel = chromedp.NewContext(e.allocCtx)
	})
	if e.allocCtx == nil || e.browserCtx == nil {
		return errors.New("chromium allocator unavailable")
	}
	return nil
}

func allocatorOptionsFromArgs(args []string) []chromedp.ExecAllocatorOption {
	options := make([]chromedp.ExecAllocatorOption, 0, len(args))
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		arg = strings.TrimPrefix(arg, "--")
		if arg == "" {
			continue
		}
		if name, value, ok := strings.Cut(arg, "="); ok {
			options = append(options, chromedp.Flag(name, value))
			continue
		}
		options = append(options, chromedp.Flag(arg, true))
	}
	return options
}

var _ export.Rasterizer = (*ChromiumEngine)(nil)
