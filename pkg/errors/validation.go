package errors

import (
	"math"
	"strings"
	"unicode"
)

// maxIDLength bounds node and edge identifiers accepted at ingestion.
const maxIDLength = 256

// ValidateID validates a node or edge identifier.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters or null bytes
//   - No leading or trailing whitespace
//   - Maximum length of 256 characters
func ValidateID(kind, id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "%s id cannot be empty", kind)
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "%s id too long (max %d characters)", kind, maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s id %q contains invalid control characters", kind, id)
		}
	}

	if strings.TrimSpace(id) != id {
		return New(ErrCodeInvalidInput, "%s id %q has surrounding whitespace", kind, id)
	}

	return nil
}

// ValidateViewport checks that viewport dimensions are usable for layout.
// Zero means "use the default" and is accepted; negative or non-finite values are not.
func ValidateViewport(width, height float64) error {
	if width < 0 || height < 0 {
		return New(ErrCodeInvalidViewport, "viewport must not be negative (got %gx%g)", width, height)
	}
	if math.IsNaN(width) || math.IsNaN(height) {
		return New(ErrCodeInvalidViewport, "viewport must be a number")
	}
	const maxDimension = 1 << 20
	if width > maxDimension || height > maxDimension {
		return New(ErrCodeInvalidViewport, "viewport too large (max %d pixels per side)", maxDimension)
	}
	return nil
}

// ValidatePath validates a graph file path supplied over the API or config.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, part := range strings.Split(strings.ReplaceAll(path, "\\", "/"), "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}
