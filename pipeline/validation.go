package pipeline

import (
	"fmt"
	"strings"
)

// ValidateInput checks the submission shape before any network call is made.
func ValidateInput(input PipelineInput) error {
	switch input.Topic {
	case TopicCV, TopicNLP, TopicSystems:
	case "":
		return NewError(StageValidate, KindValidation, "course topic is required", nil)
	default:
		return NewError(StageValidate, KindValidation, fmt.Sprintf("unknown course topic: %s", input.Topic), nil)
	}

	switch input.Kind {
	case KindFile:
		if input.File.Reader == nil {
			return NewError(StageValidate, KindValidation, "file input requires a file", nil)
		}
		if strings.TrimSpace(input.File.Filename) == "" {
			return NewError(StageValidate, KindValidation, "file input requires a filename", nil)
		}
	case KindURL:
		if strings.TrimSpace(input.URL) == "" {
			return NewError(StageValidate, KindValidation, "url input requires a non-empty url", nil)
		}
	case KindManual:
		if strings.TrimSpace(input.Manual.Title) == "" {
			return NewError(StageValidate, KindValidation, "manual input requires a title", nil)
		}
		if len(input.Manual.Authors) == 0 {
			return NewError(StageValidate, KindValidation, "manual input requires at least one author", nil)
		}
		for _, author := range input.Manual.Authors {
			if strings.TrimSpace(author) == "" {
				return NewError(StageValidate, KindValidation, "manual input authors must be non-empty", nil)
			}
		}
		if strings.TrimSpace(input.Manual.Abstract) == "" {
			return NewError(StageValidate, KindValidation, "manual input requires an abstract", nil)
		}
	case "":
		return NewError(StageValidate, KindValidation, "input kind is required", nil)
	default:
		return NewError(StageValidate, KindValidation, fmt.Sprintf("unknown input kind: %s", input.Kind), nil)
	}

	return nil
}
