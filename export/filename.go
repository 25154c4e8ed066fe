package export

import (
	"regexp"
	"strings"
)

// DefaultFilename is used when neither a filename nor a document title is
// available.
const DefaultFilename = "paper-explanation"

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeFilename turns an arbitrary name (typically a paper title) into a
// safe download filename with a .pdf extension.
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimSuffix(strings.ToLower(name), ".pdf")

	name = unsafeFilenameChars.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-.")
	if name == "" {
		name = DefaultFilename
	}

	const maxBase = 120
	if len(name) > maxBase {
		name = strings.Trim(name[:maxBase], "-.")
	}

	return name + ".pdf"
}
