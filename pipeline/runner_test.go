package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubCollaborators struct {
	parseFileCalls   int
	parseURLCalls    int
	parseManualCalls int
	summarizeCalls   int
	illustrateCalls  int

	lastKeyPoints []string
	lastStyle     string

	paper   ParsedPaper
	summary Summary
	images  IllustrationSet

	parseErr      error
	summarizeErr  error
	illustrateErr error
}

func (s *stubCollaborators) ParseFile(_ context.Context, _ FileUpload, _ CourseTopic) (ParsedPaper, error) {
	s.parseFileCalls++
	return s.paper, s.parseErr
}

func (s *stubCollaborators) ParseURL(_ context.Context, _ string, _ CourseTopic) (ParsedPaper, error) {
	s.parseURLCalls++
	return s.paper, s.parseErr
}

func (s *stubCollaborators) ParseManual(_ context.Context, _ ManualPaper, _ CourseTopic) (ParsedPaper, error) {
	s.parseManualCalls++
	return s.paper, s.parseErr
}

func (s *stubCollaborators) Summarize(_ context.Context, _ ParsedPaper) (Summary, error) {
	s.summarizeCalls++
	return s.summary, s.summarizeErr
}

func (s *stubCollaborators) Illustrate(_ context.Context, keyPoints []string, style string) (IllustrationSet, error) {
	s.illustrateCalls++
	s.lastKeyPoints = keyPoints
	s.lastStyle = style
	return s.images, s.illustrateErr
}

func newRunner(stub *stubCollaborators) *Runner {
	return &Runner{Parser: stub, Summarizer: stub, Illustrator: stub}
}

func manualInput() PipelineInput {
	return PipelineInput{
		Kind: KindManual,
		Manual: ManualPaper{
			Title:    "T",
			Authors:  []string{"A"},
			Abstract: "X",
			Sections: []Section{},
		},
		Topic: TopicCV,
	}
}

func TestRun_ManualEndToEnd(t *testing.T) {
	stub := &stubCollaborators{
		paper: ParsedPaper{Title: "T", Authors: []string{"A"}, Abstract: "X", Sections: []Section{}, Topic: TopicCV},
		summary: Summary{
			BigIdea:  "computers learn",
			Steps:    []string{"s1", "s2"},
			Glossary: []GlossaryEntry{},
		},
		images: IllustrationSet{Images: []Illustration{{URL: "data:image/png;base64,x", KeyPoint: "s1"}}},
	}

	result, err := newRunner(stub).Run(context.Background(), manualInput())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if stub.parseManualCalls != 1 || stub.parseFileCalls != 0 || stub.parseURLCalls != 0 {
		t.Fatalf("expected exactly one manual parse call, got manual=%d file=%d url=%d",
			stub.parseManualCalls, stub.parseFileCalls, stub.parseURLCalls)
	}
	if stub.illustrateCalls != 1 {
		t.Fatalf("expected one illustrate call, got %d", stub.illustrateCalls)
	}
	if len(stub.lastKeyPoints) != 2 || stub.lastKeyPoints[0] != "s1" || stub.lastKeyPoints[1] != "s2" {
		t.Fatalf("illustrate key points = %v, want [s1 s2]", stub.lastKeyPoints)
	}
	if stub.lastStyle != DefaultStyle {
		t.Fatalf("illustrate style = %q, want %q", stub.lastStyle, DefaultStyle)
	}
	if result.Paper.Title != "T" || result.Summary.BigIdea == "" || len(result.Images.Images) != 1 {
		t.Fatalf("result not fully assembled: %+v", result)
	}
}

func TestRun_EachKindCallsMatchingEndpoint(t *testing.T) {
	cases := []struct {
		name  string
		input PipelineInput
		check func(t *testing.T, stub *stubCollaborators)
	}{
		{
			name:  "file",
			input: PipelineInput{Kind: KindFile, File: FileUpload{Filename: "p.pdf", Reader: strings.NewReader("%PDF")}, Topic: TopicCV},
			check: func(t *testing.T, stub *stubCollaborators) {
				if stub.parseFileCalls != 1 || stub.parseURLCalls != 0 || stub.parseManualCalls != 0 {
					t.Fatalf("file=%d url=%d manual=%d", stub.parseFileCalls, stub.parseURLCalls, stub.parseManualCalls)
				}
			},
		},
		{
			name:  "url",
			input: PipelineInput{Kind: KindURL, URL: "https://arxiv.org/abs/1706.03762", Topic: TopicNLP},
			check: func(t *testing.T, stub *stubCollaborators) {
				if stub.parseURLCalls != 1 || stub.parseFileCalls != 0 || stub.parseManualCalls != 0 {
					t.Fatalf("file=%d url=%d manual=%d", stub.parseFileCalls, stub.parseURLCalls, stub.parseManualCalls)
				}
			},
		},
		{
			name:  "manual",
			input: manualInput(),
			check: func(t *testing.T, stub *stubCollaborators) {
				if stub.parseManualCalls != 1 || stub.parseFileCalls != 0 || stub.parseURLCalls != 0 {
					t.Fatalf("file=%d url=%d manual=%d", stub.parseFileCalls, stub.parseURLCalls, stub.parseManualCalls)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubCollaborators{summary: Summary{BigIdea: "b", Steps: []string{"s"}}}
			if _, err := newRunner(stub).Run(context.Background(), tc.input); err != nil {
				t.Fatalf("run: %v", err)
			}
			tc.check(t, stub)
		})
	}
}

func TestRun_ManualMissingAuthorsFailsBeforeNetwork(t *testing.T) {
	stub := &stubCollaborators{}
	input := manualInput()
	input.Manual.Authors = nil

	_, err := newRunner(stub).Run(context.Background(), input)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if KindFromError(err) != KindValidation {
		t.Fatalf("kind = %s, want %s", KindFromError(err), KindValidation)
	}
	if StageFromError(err) != StageValidate {
		t.Fatalf("stage = %s, want %s", StageFromError(err), StageValidate)
	}
	total := stub.parseFileCalls + stub.parseURLCalls + stub.parseManualCalls + stub.summarizeCalls + stub.illustrateCalls
	if total != 0 {
		t.Fatalf("expected no network activity, got %d calls", total)
	}
}

func TestRun_SummarizeFailureSkipsIllustrate(t *testing.T) {
	stub := &stubCollaborators{summarizeErr: errors.New("boom")}

	_, err := newRunner(stub).Run(context.Background(), manualInput())
	if err == nil {
		t.Fatal("expected summarize failure")
	}
	if StageFromError(err) != StageSummarize {
		t.Fatalf("stage = %s, want %s", StageFromError(err), StageSummarize)
	}
	if stub.illustrateCalls != 0 {
		t.Fatalf("illustrate call count = %d, want 0", stub.illustrateCalls)
	}
}

func TestRun_ParseFailureStopsPipeline(t *testing.T) {
	stub := &stubCollaborators{parseErr: NewError(StageParse, KindRemote, "parse endpoint returned 502", nil)}

	_, err := newRunner(stub).Run(context.Background(), manualInput())
	if err == nil {
		t.Fatal("expected parse failure")
	}
	if KindFromError(err) != KindRemote {
		t.Fatalf("kind = %s, want %s", KindFromError(err), KindRemote)
	}
	if stub.summarizeCalls != 0 || stub.illustrateCalls != 0 {
		t.Fatalf("later stages ran: summarize=%d illustrate=%d", stub.summarizeCalls, stub.illustrateCalls)
	}
}

func TestRun_EmptyStepsShortCircuitsIllustrate(t *testing.T) {
	stub := &stubCollaborators{summary: Summary{BigIdea: "b", Steps: []string{}}}

	result, err := newRunner(stub).Run(context.Background(), manualInput())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stub.illustrateCalls != 0 {
		t.Fatalf("illustrate call count = %d, want 0", stub.illustrateCalls)
	}
	if result.Images.Images == nil || len(result.Images.Images) != 0 {
		t.Fatalf("images = %#v, want empty non-nil set", result.Images.Images)
	}
}

func TestRun_CustomStyleToken(t *testing.T) {
	stub := &stubCollaborators{summary: Summary{BigIdea: "b", Steps: []string{"s"}}}
	runner := newRunner(stub)
	runner.Style = "colorful"

	if _, err := runner.Run(context.Background(), manualInput()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if stub.lastStyle != "colorful" {
		t.Fatalf("style = %q, want colorful", stub.lastStyle)
	}
}
