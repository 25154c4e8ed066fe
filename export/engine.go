package export

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// DefaultSettleDelay is the wait after switching the ambient theme, so
// transition effects finish before capture reads the visual state.
const DefaultSettleDelay = 250 * time.Millisecond

// DefaultImageTimeout bounds one image's whole resolution attempt across
// the relay chain.
const DefaultImageTimeout = 8 * time.Second

// DefaultOversample is the capture scale factor.
const DefaultOversample = 2.0

// Engine converts a rendered visual tree into a paginated document: it
// inlines remote images, normalizes the theme, rasterizes the tree, slices
// the raster into pages, and emits the result. One export runs at a time; an
// overlapping call fails with a conflict error rather than queueing.
type Engine struct {
	Rasterizer Rasterizer
	Relays     []Relay
	// Themes is the ambient UI theme the engine saves and restores around
	// its capture window. Optional.
	Themes ThemeState

	Page         PageOptions
	Oversample   float64
	SettleDelay  time.Duration
	ImageTimeout time.Duration

	Logger Logger
	Now    func() time.Time

	inFlight atomic.Bool
}

// Export runs the full pipeline for one request. It emits progressive job
// updates to the request's sink; values are monotonically non-decreasing and
// stop at the terminal Done or Failed transition.
func (e *Engine) Export(ctx context.Context, req Request) (Result, error) {
	if e == nil {
		return Result{}, NewError("", KindInternal, "engine is nil", nil)
	}
	if e.Rasterizer == nil {
		return Result{}, NewError("", KindValidation, "engine requires a rasterizer", nil)
	}
	if req.Output == nil {
		return Result{}, NewError("", KindValidation, "output writer is required", nil)
	}
	if len(req.Document.HTML) == 0 {
		return Result{}, NewError("", KindValidation, "document is empty", nil)
	}

	if !e.inFlight.CompareAndSwap(false, true) {
		return Result{}, NewError("", KindConflict, "an export is already in progress", nil)
	}
	defer e.inFlight.Store(false)

	now := e.Now
	if now == nil {
		now = time.Now
	}
	started := now()

	job := &Job{ID: uuid.NewString(), Status: StatusIdle}
	sink := newProgressGuard(req.Progress)

	filename := req.Filename
	if filename == "" {
		filename = req.Document.Title
	}
	filename = SanitizeFilename(filename)

	restore, err := e.normalizeTheme(ctx, req.Document.Theme)
	if err != nil {
		sink.fail(job)
		return Result{}, NewError(PhaseNormalize, KindInternal, "apply capture theme", err)
	}
	// Restore runs on every exit path, success or failure.
	defer restore()

	result, err := e.run(ctx, req, job, sink, filename)
	if err != nil {
		e.logger().Errorf("export %s failed: %v", job.ID, err)
		sink.fail(job)
		return Result{}, err
	}

	result.Duration = now().Sub(started)
	sink.done(job)
	result.Job = *job
	return result, nil
}

func (e *Engine) run(ctx context.Context, req Request, job *Job, sink *progressGuard, filename string) (Result, error) {
	sink.update(job, StatusResolvingImages, 10)

	inlined, err := e.inlineImages(ctx, req.Document, func(done, total int) {
		// Image resolution owns the 10..60 progress range.
		sink.update(job, StatusResolvingImages, 10+done*50/total)
	})
	if err != nil {
		return Result{}, err
	}
	if inlined.unresolved > 0 {
		e.logger().Warnf("export %s: %d of %d images left unresolved", job.ID, inlined.unresolved, inlined.total)
	}

	sink.update(job, StatusCapturing, 60)

	bitmap, err := e.Rasterizer.Capture(ctx, CaptureRequest{HTML: inlined.html, Oversample: e.oversample()})
	if err != nil {
		return Result{}, NewError(PhaseCapture, KindCapture, "rasterize tree", err)
	}

	sink.update(job, StatusPaginating, 80)

	pageOpts := e.Page
	if pageOpts == (PageOptions{}) {
		pageOpts = DefaultPageOptions()
	}
	pageOpts.Oversample = e.oversample()

	pages, written, err := paginate(bitmap, pageOpts, req.Output)
	if err != nil {
		return Result{}, err
	}

	sink.update(job, StatusPaginating, 95)

	return Result{
		Filename:   filename,
		Pages:      pages,
		Bytes:      written,
		Unresolved: inlined.unresolved,
	}, nil
}

// normalizeTheme forces the canonical capture theme on the ambient state and
// returns the restore func. The restore is a no-op when the active theme
// already matches.
func (e *Engine) normalizeTheme(ctx context.Context, docTheme Theme) (func(), error) {
	state := e.Themes
	if state == nil {
		state = NewStaticTheme(docTheme)
	}

	prior := state.Active()
	if prior == CaptureTheme {
		return func() {}, nil
	}

	if err := state.Apply(ctx, CaptureTheme); err != nil {
		return func() {}, err
	}
	e.settle(ctx)

	return func() {
		// Restore uses a fresh context: the export may be failing because
		// the caller's context is already done.
		if err := state.Apply(context.Background(), prior); err != nil {
			e.logger().Errorf("export: restoring theme %q failed: %v", prior, err)
		}
	}, nil
}

// settle waits the configured delay, returning early if ctx ends.
func (e *Engine) settle(ctx context.Context) {
	delay := e.SettleDelay
	if delay <= 0 {
		delay = DefaultSettleDelay
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func (e *Engine) relays() []Relay {
	if len(e.Relays) > 0 {
		return e.Relays
	}
	return DefaultRelays()
}

func (e *Engine) oversample() float64 {
	if e.Oversample > 0 {
		return e.Oversample
	}
	return DefaultOversample
}

func (e *Engine) imageTimeout() time.Duration {
	if e.ImageTimeout > 0 {
		return e.ImageTimeout
	}
	return DefaultImageTimeout
}

func (e *Engine) logger() Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return NopLogger{}
}

// progressGuard enforces the sink contract: monotonic values, clamped to
// 0..100, and silence after a terminal transition.
type progressGuard struct {
	sink     ProgressSink
	last     int
	terminal bool
}

func newProgressGuard(sink ProgressSink) *progressGuard {
	return &progressGuard{sink: sink}
}

func (g *progressGuard) update(job *Job, status Status, progress int) {
	if g.terminal {
		return
	}
	if progress < g.last {
		progress = g.last
	}
	if progress > 100 {
		progress = 100
	}
	g.last = progress

	job.Status = status
	job.Progress = progress
	if g.sink != nil {
		g.sink.Progress(*job)
	}
}

func (g *progressGuard) done(job *Job) {
	g.update(job, StatusDone, 100)
	g.terminal = true
}

func (g *progressGuard) fail(job *Job) {
	if g.terminal {
		return
	}
	job.Status = StatusFailed
	job.Progress = g.last
	if g.sink != nil {
		g.sink.Progress(*job)
	}
	g.terminal = true
}
