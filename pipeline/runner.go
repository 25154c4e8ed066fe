package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultStyle is the illustration style token sent to the illustrator when
// none is configured.
const DefaultStyle = "pastel"

// Runner sequences the parse, summarize, and illustrate stages and assembles
// the unified result. Stages run strictly in order; a stage never starts
// before the prior stage's result is available, and the first failure aborts
// the run with no partial result.
type Runner struct {
	Parser      Parser
	Summarizer  Summarizer
	Illustrator Illustrator

	// Style is the illustration style token. Defaults to DefaultStyle.
	Style string

	Logger Logger
	Now    func() time.Time
}

// Run executes the pipeline for one submission.
func (r *Runner) Run(ctx context.Context, input PipelineInput) (PipelineResult, error) {
	if r == nil {
		return PipelineResult{}, NewError("", KindInternal, "runner is nil", nil)
	}
	if r.Parser == nil || r.Summarizer == nil || r.Illustrator == nil {
		return PipelineResult{}, NewError("", KindInternal, "runner collaborators are not configured", nil)
	}
	if r.Logger == nil {
		r.Logger = NopLogger{}
	}
	if r.Now == nil {
		r.Now = time.Now
	}

	if err := ValidateInput(input); err != nil {
		return PipelineResult{}, err
	}

	started := r.Now()

	paper, err := r.parse(ctx, input)
	if err != nil {
		return PipelineResult{}, r.stageError(StageParse, err)
	}

	summary, err := r.Summarizer.Summarize(ctx, paper)
	if err != nil {
		return PipelineResult{}, r.stageError(StageSummarize, err)
	}

	images, err := r.illustrate(ctx, summary)
	if err != nil {
		return PipelineResult{}, r.stageError(StageIllustrate, err)
	}

	r.Logger.Infof("pipeline completed: title=%q steps=%d images=%d duration=%s",
		paper.Title, len(summary.Steps), len(images.Images), r.Now().Sub(started))

	return PipelineResult{Paper: paper, Summary: summary, Images: images}, nil
}

func (r *Runner) parse(ctx context.Context, input PipelineInput) (ParsedPaper, error) {
	switch input.Kind {
	case KindFile:
		return r.Parser.ParseFile(ctx, input.File, input.Topic)
	case KindURL:
		return r.Parser.ParseURL(ctx, input.URL, input.Topic)
	case KindManual:
		return r.Parser.ParseManual(ctx, input.Manual, input.Topic)
	}
	return ParsedPaper{}, NewError(StageParse, KindInternal, fmt.Sprintf("unhandled input kind: %s", input.Kind), nil)
}

// illustrate short-circuits to an empty set when the summary has no steps;
// the illustrator is not invoked in that case.
func (r *Runner) illustrate(ctx context.Context, summary Summary) (IllustrationSet, error) {
	if len(summary.Steps) == 0 {
		return IllustrationSet{Images: []Illustration{}}, nil
	}

	style := r.Style
	if style == "" {
		style = DefaultStyle
	}
	return r.Illustrator.Illustrate(ctx, summary.Steps, style)
}

func (r *Runner) stageError(stage Stage, err error) error {
	var pipeErr *Error
	if errors.As(err, &pipeErr) {
		if pipeErr.Stage == "" {
			tagged := *pipeErr
			tagged.Stage = stage
			return &tagged
		}
		return pipeErr
	}

	kind := KindFromError(err)
	if kind == KindInternal {
		kind = KindRemote
	}
	r.Logger.Errorf("pipeline stage %s failed: %v", stage, err)
	return NewError(stage, kind, fmt.Sprintf("%s stage failed", stage), err)
}
