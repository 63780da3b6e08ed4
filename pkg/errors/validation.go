package errors

import (
	"strings"
	"unicode"
)

// maxFileNameLength bounds a single manifest entry (Windows MAX_PATH).
const maxFileNameLength = 260

// ValidateFileName validates a resolved manifest entry before it is joined
// with the driver directory. Entries are names relative to that directory,
// so anything that could escape it is rejected:
//   - No empty names
//   - No control characters or null bytes
//   - No absolute paths or drive letters
//   - No ".." path elements
//   - Maximum length of 260 characters
//
// Backslashes are accepted as separators, since descriptors are written for
// Windows.
func ValidateFileName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "file name cannot be empty")
	}

	if len(name) > maxFileNameLength {
		return New(ErrCodeInvalidPath, "file name too long (max %d characters)", maxFileNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "file name %q contains control characters", name)
		}
	}

	if strings.HasPrefix(name, "/") || strings.HasPrefix(name, "\\") {
		return New(ErrCodeInvalidPath, "file name %q must be relative", name)
	}
	if len(name) >= 2 && name[1] == ':' {
		return New(ErrCodeInvalidPath, "file name %q must not carry a drive letter", name)
	}

	for _, elem := range strings.FieldsFunc(name, isSeparator) {
		if elem == ".." {
			return New(ErrCodeInvalidPath, "file name %q cannot contain path traversal sequences (..)", name)
		}
	}

	return nil
}

func isSeparator(r rune) bool { return r == '/' || r == '\\' }
