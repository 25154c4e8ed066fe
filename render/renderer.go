// Package render turns a pipeline result into the themed HTML tree the
// export engine captures.
package render

import (
	"bytes"

	"github.com/flosch/pongo2/v6"
	"github.com/paperbuddy/paperbuddy/export"
	"github.com/paperbuddy/paperbuddy/pipeline"
)

// Renderer renders pipeline results into export documents.
type Renderer struct {
	template *pongo2.Template
}

// New creates a renderer with the built-in result template.
func New() *Renderer {
	return &Renderer{template: resultTemplate}
}

// stepView pairs one summary step with its illustration, if any.
type stepView struct {
	Number int
	Text   string
	Image  *pipeline.Illustration
}

// Render produces the rendered visual tree for a result under the given
// theme.
func (r *Renderer) Render(result pipeline.PipelineResult, theme export.Theme) (export.Document, error) {
	if theme == "" {
		theme = export.ThemeLight
	}

	steps := make([]stepView, len(result.Summary.Steps))
	for i, step := range result.Summary.Steps {
		steps[i] = stepView{Number: i + 1, Text: step}
		if i < len(result.Images.Images) {
			img := result.Images.Images[i]
			steps[i].Image = &img
		}
	}

	var buf bytes.Buffer
	err := r.template.ExecuteWriter(pongo2.Context{
		"theme":   string(theme),
		"paper":   result.Paper,
		"summary": result.Summary,
		"steps":   steps,
	}, &buf)
	if err != nil {
		return export.Document{}, err
	}

	return export.Document{
		HTML:  buf.Bytes(),
		Theme: theme,
		Title: result.Paper.Title,
	}, nil
}
