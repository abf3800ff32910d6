package errors

import (
	"strings"
	"unicode"
)

// ValidateNodeName validates a node name before it is sent to an external
// service. Names must be non-empty and free of control characters.
func ValidateNodeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "Invalid node name", "node name cannot be empty")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "Invalid node name", "node name %q contains control characters", name)
		}
	}
	return nil
}

// ValidateQueryNodeName validates a node name used inside a space-separated
// query list. Whitespace would split the name into several queries.
func ValidateQueryNodeName(name string) error {
	if err := ValidateNodeName(name); err != nil {
		return err
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return New(ErrCodeInvalidInput, "Invalid node name",
			"Node name '%s' contains white spaces, which is not supported by the extracting app.", name)
	}
	return nil
}

// ValidateColumnName validates a user supplied column name.
func ValidateColumnName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "Invalid column name", "column name cannot be empty")
	}
	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "Invalid column name", "column name too long (max 256 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "Invalid column name", "column name contains invalid control characters")
		}
	}
	return nil
}

// ValidatePath validates a relative file path, such as a session or export
// file name, for safety.
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
		return New(ErrCodeInvalidInput, "Invalid path", "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "Invalid path", "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "Invalid path", "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidInput, "Invalid path", "path must be relative (cannot start with /)")
	}
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidInput, "Invalid path", "path cannot contain path traversal sequences (..)")
	}
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidInput, "Invalid path", "path cannot contain backslashes")
	}
	return nil
}

// ValidateURL validates a service URL. Only http and https are accepted.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "Invalid URL", "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "Invalid URL", "URL must use http or https scheme")
	}
	return nil
}
