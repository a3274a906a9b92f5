package errors

import (
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ValidateDocumentID checks that id is a canonical UUID as issued by the
// document store.
func ValidateDocumentID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "document id cannot be empty")
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Wrap(ErrCodeInvalidID, err, "invalid document id %q", id)
	}
	if parsed.String() != strings.ToLower(id) {
		return New(ErrCodeInvalidID, "document id %q is not in canonical form", id)
	}
	return nil
}

// designatorRegex matches component and pin designators such as "R1",
// "U3", "GND" or "-".
var designatorRegex = regexp.MustCompile(`^[A-Za-z0-9_+\-.#]{1,32}$`)

// ValidateDesignator validates a component or pin name. Dots are allowed
// inside pin names but a designator may not consist of dots only.
func ValidateDesignator(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "designator cannot be empty")
	}
	if !designatorRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid designator: %q", name)
	}
	if strings.Trim(name, ".") == "" {
		return New(ErrCodeInvalidInput, "invalid designator: %q", name)
	}
	return nil
}

// ValidateFormat checks that format is one of allowed.
func ValidateFormat(format string, allowed ...string) error {
	if !slices.Contains(allowed, format) {
		return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))
	}
	return nil
}

// ValidatePath validates a relative file path for safety.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}
