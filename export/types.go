package export

import (
	"context"
	"io"
	"time"
)

// Theme is a visual color scheme of the rendered tree.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// CaptureTheme is the canonical theme forced during rasterization,
// regardless of the ambient UI theme.
const CaptureTheme = ThemeLight

// Document is the rendered visual tree the engine captures.
type Document struct {
	HTML  []byte
	Theme Theme
	Title string
}

// Status captures export job states.
type Status string

const (
	StatusIdle            Status = "idle"
	StatusResolvingImages Status = "resolving_images"
	StatusCapturing       Status = "capturing"
	StatusPaginating      Status = "paginating"
	StatusDone            Status = "done"
	StatusFailed          Status = "failed"
)

// Terminal reports whether no further transitions can happen.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// Job is the ephemeral state of one export invocation. It is created per
// call and discarded after completion or failure, never persisted.
type Job struct {
	ID       string
	Status   Status
	Progress int
}

// ProgressSink receives job updates. Progress values are monotonically
// non-decreasing in 0..100 and no update follows a terminal status.
type ProgressSink interface {
	Progress(job Job)
}

// ProgressSinkFunc adapts a function to a ProgressSink.
type ProgressSinkFunc func(job Job)

func (f ProgressSinkFunc) Progress(job Job) {
	if f != nil {
		f(job)
	}
}

// ThemeState exposes the ambient UI theme so the engine can force the
// canonical capture theme and restore the prior one afterwards.
type ThemeState interface {
	Active() Theme
	Apply(ctx context.Context, theme Theme) error
}

// StaticTheme is a ThemeState holding a single mutable value.
type StaticTheme struct {
	theme Theme
}

// NewStaticTheme creates a StaticTheme starting at the given theme.
func NewStaticTheme(theme Theme) *StaticTheme {
	return &StaticTheme{theme: theme}
}

func (s *StaticTheme) Active() Theme {
	return s.theme
}

func (s *StaticTheme) Apply(_ context.Context, theme Theme) error {
	s.theme = theme
	return nil
}

// CaptureRequest is passed to the rasterizer once image resolution has
// settled.
type CaptureRequest struct {
	// HTML is the self-contained tree to capture; image sources have
	// already been inlined.
	HTML []byte
	// Oversample is the device scale factor used for legibility.
	Oversample float64
}

// Rasterizer renders a tree into a single opaque PNG bitmap sized to the
// content's natural bounds.
type Rasterizer interface {
	Capture(ctx context.Context, req CaptureRequest) ([]byte, error)
}

// RasterizerFunc adapts a function to a Rasterizer.
type RasterizerFunc func(ctx context.Context, req CaptureRequest) ([]byte, error)

func (f RasterizerFunc) Capture(ctx context.Context, req CaptureRequest) ([]byte, error) {
	if f == nil {
		return nil, NewError(PhaseCapture, KindInternal, "rasterizer func is nil", nil)
	}
	return f(ctx, req)
}

// Relay fetches image bytes through a cross-origin passthrough service.
type Relay interface {
	Name() string
	Fetch(ctx context.Context, imageURL string) ([]byte, string, error)
}

// Request describes one export invocation.
type Request struct {
	Document Document
	// Filename is the requested download name; it is sanitized and given
	// a .pdf extension. Empty falls back to the document title.
	Filename string
	Output   io.Writer
	Progress ProgressSink
}

// Result captures a completed export.
type Result struct {
	Job      Job
	Filename string
	Pages    int
	Bytes    int64
	// Unresolved counts image references left in their placeholder state
	// after both relays failed.
	Unresolved int
	Duration   time.Duration
}

// Logger provides logging hooks.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger is a no-op logger.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Warnf(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}
