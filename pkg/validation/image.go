// Package validation gates untrusted strings before they reach a command line.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/quayside/stevedore/internal/domain"
)

// ImageReferencePattern accepts image references of the form
// [host[:port]/]repository[:tag] built from word characters, dots, hyphens,
// colons and slashes, with at most one leading host[:port]/ segment.
// Anything else is rejected; the reference is later embedded in a command
// line, so this gate is deliberately conservative instead of trying to
// escape downstream.
const ImageReferencePattern = `^(([\w.-]+)(:\d+)*/)?[\w.:-]+$`

var imageReferenceRegexp = regexp.MustCompile(ImageReferencePattern)

// ValidateImageReference strips surrounding quote characters from raw and
// returns the cleaned reference, or an error when the result is empty or
// falls outside the image grammar.
func ValidateImageReference(raw string) (string, error) {
	cleaned := strings.ReplaceAll(strings.ReplaceAll(raw, `"`, ""), `'`, "")
	if cleaned == "" {
		return "", domain.ErrImageRequired
	}
	if !imageReferenceRegexp.MatchString(cleaned) {
		return "", fmt.Errorf("image %q: %w", cleaned, domain.ErrInvalidImage)
	}
	return cleaned, nil
}
