package pipeline

import (
	"context"
	"io"
)

// InputKind selects which parse collaborator handles the submission.
type InputKind string

const (
	KindFile   InputKind = "file"
	KindURL    InputKind = "url"
	KindManual InputKind = "manual"
)

// CourseTopic is the course a paper is being explained for.
type CourseTopic string

const (
	TopicCV      CourseTopic = "CV"
	TopicNLP     CourseTopic = "NLP"
	TopicSystems CourseTopic = "Systems"
)

// FileUpload carries an uploaded paper document.
type FileUpload struct {
	Filename string
	Reader   io.Reader
}

// ManualPaper holds manually entered paper fields.
type ManualPaper struct {
	Title    string    `json:"title"`
	Authors  []string  `json:"authors"`
	Abstract string    `json:"abstract"`
	Sections []Section `json:"sections"`
}

// PipelineInput is the tagged union of submission kinds. Exactly one of
// File, URL, or Manual is populated, selected by Kind.
type PipelineInput struct {
	Kind   InputKind
	File   FileUpload
	URL    string
	Manual ManualPaper
	Topic  CourseTopic
}

// Section is one heading/content pair of a parsed paper.
type Section struct {
	Heading string `json:"heading"`
	Content string `json:"content"`
}

// ParsedPaper is the parse stage output. Immutable once produced.
type ParsedPaper struct {
	Title    string      `json:"title"`
	Authors  []string    `json:"authors"`
	Abstract string      `json:"abstract"`
	Sections []Section   `json:"sections"`
	Topic    CourseTopic `json:"courseTopic"`
}

// GlossaryEntry explains one technical term.
type GlossaryEntry struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// ForClass holds teaching context for classroom use.
type ForClass struct {
	Prerequisites       []string `json:"prerequisites"`
	Connections         []string `json:"connections"`
	DiscussionQuestions []string `json:"discussion_questions"`
}

// Summary is the summarize stage output. Every field except BigIdea is
// optional; an absent field is simply not rendered.
type Summary struct {
	BigIdea       string          `json:"big_idea"`
	Steps         []string        `json:"steps"`
	Example       string          `json:"example,omitempty"`
	WhyItMatters  string          `json:"why_it_matters,omitempty"`
	Limitations   string          `json:"limitations,omitempty"`
	Glossary      []GlossaryEntry `json:"glossary"`
	ForClass      ForClass        `json:"for_class"`
	AccuracyFlags []string        `json:"accuracy_flags"`
}

// Illustration is one generated image. URL may be empty, which renders as a
// placeholder.
type Illustration struct {
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
	KeyPoint    string `json:"key_point,omitempty"`
}

// IllustrationSet is the illustrate stage output.
type IllustrationSet struct {
	Images []Illustration `json:"images"`
}

// PipelineResult aggregates the three stage outputs. Owned by the caller;
// the runner does not retain it after Run returns.
type PipelineResult struct {
	Paper   ParsedPaper     `json:"paperData"`
	Summary Summary         `json:"summary"`
	Images  IllustrationSet `json:"images"`
}

// Parser converts raw submissions into a ParsedPaper. The three methods map
// to three distinct remote endpoints, one per input kind.
type Parser interface {
	ParseFile(ctx context.Context, file FileUpload, topic CourseTopic) (ParsedPaper, error)
	ParseURL(ctx context.Context, url string, topic CourseTopic) (ParsedPaper, error)
	ParseManual(ctx context.Context, paper ManualPaper, topic CourseTopic) (ParsedPaper, error)
}

// Summarizer produces a kid-friendly summary of a parsed paper.
type Summarizer interface {
	Summarize(ctx context.Context, paper ParsedPaper) (Summary, error)
}

// Illustrator generates one illustration per key point.
type Illustrator interface {
	Illustrate(ctx context.Context, keyPoints []string, style string) (IllustrationSet, error)
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
