package render

import (
	"strings"
	"testing"

	"github.com/paperbuddy/paperbuddy/export"
	"github.com/paperbuddy/paperbuddy/pipeline"
)

func sampleResult() pipeline.PipelineResult {
	return pipeline.PipelineResult{
		Paper: pipeline.ParsedPaper{
			Title:    "Attention Is All You Need",
			Authors:  []string{"Vaswani", "Shazeer"},
			Abstract: "Sequence transduction without recurrence.",
			Topic:    pipeline.TopicNLP,
		},
		Summary: pipeline.Summary{
			BigIdea:      "Computers learn to understand human language",
			Steps:        []string{"Read lots of text", "Find word patterns"},
			Example:      "Like a robot learning to chat",
			WhyItMatters: "Makes chatbots smarter",
			Glossary:     []pipeline.GlossaryEntry{{Term: "Token", Definition: "A small piece of a sentence"}},
			ForClass: pipeline.ForClass{
				Prerequisites:       []string{"Basic NLP"},
				DiscussionQuestions: []string{"How do models learn meaning?"},
			},
			AccuracyFlags: []string{"Simplified explanation"},
		},
		Images: pipeline.IllustrationSet{Images: []pipeline.Illustration{
			{URL: "https://cdn.example.com/step1.png", Description: "reading text", KeyPoint: "Read lots of text"},
			{KeyPoint: "Find word patterns"},
		}},
	}
}

func TestRender_ProducesThemedTree(t *testing.T) {
	doc, err := New().Render(sampleResult(), export.ThemeDark)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	html := string(doc.HTML)
	if !strings.Contains(html, `data-theme="dark"`) {
		t.Fatal("missing theme attribute")
	}
	if doc.Theme != export.ThemeDark {
		t.Fatalf("theme = %s", doc.Theme)
	}
	if doc.Title != "Attention Is All You Need" {
		t.Fatalf("title = %q", doc.Title)
	}
	if !strings.Contains(html, "Vaswani, Shazeer") {
		t.Fatal("authors not joined")
	}
	if !strings.Contains(html, "Computers learn to understand human language") {
		t.Fatal("big idea missing")
	}
}

func TestRender_ImageAndPlaceholder(t *testing.T) {
	doc, err := New().Render(sampleResult(), export.ThemeLight)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	html := string(doc.HTML)
	if !strings.Contains(html, `src="https://cdn.example.com/step1.png"`) {
		t.Fatal("illustration with URL should render an img tag")
	}
	if !strings.Contains(html, `class="placeholder"`) {
		t.Fatal("illustration without URL should render a placeholder")
	}
}

func TestRender_OptionalSectionsOmitted(t *testing.T) {
	result := pipeline.PipelineResult{
		Paper:   pipeline.ParsedPaper{Title: "T", Authors: []string{"A"}, Topic: pipeline.TopicCV},
		Summary: pipeline.Summary{BigIdea: "idea"},
	}

	doc, err := New().Render(result, export.ThemeLight)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	html := string(doc.HTML)
	for _, heading := range []string{"For Example", "Why It Matters", "Word List", "For Class", "Careful!"} {
		if strings.Contains(html, heading) {
			t.Fatalf("absent field rendered section %q", heading)
		}
	}
}

func TestRender_DefaultsToLightTheme(t *testing.T) {
	doc, err := New().Render(sampleResult(), "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if doc.Theme != export.ThemeLight {
		t.Fatalf("theme = %s, want light", doc.Theme)
	}
}
