package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// formatRegex matches Graphviz output format tags, including renderer and
// formatter qualifiers such as "png:cairo:gd".
var formatRegex = regexp.MustCompile(`^[a-z0-9_]+(:[a-z0-9_]+)*$`)

// ValidateFormat validates a renderer output format tag.
// The tag becomes both a command-line argument and a file extension, so it is
// restricted to lowercase alphanumerics with optional ":" qualifiers.
func ValidateFormat(format string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}

	if len(format) > 64 {
		return New(ErrCodeInvalidFormat, "format too long (max 64 characters)")
	}

	if !formatRegex.MatchString(format) {
		return New(ErrCodeInvalidFormat, "invalid format: %q", format)
	}

	return nil
}

// ValidateOutputBase validates an output base name (a path without extension).
//
// Validation rules:
//   - Base cannot be empty
//   - Maximum length of 1024 characters
//   - No null bytes or control characters
//   - No trailing path separator (the base must name a file)
func ValidateOutputBase(base string) error {
	if base == "" {
		return New(ErrCodeInvalidPath, "output base cannot be empty")
	}

	const maxBaseLength = 1024
	if len(base) > maxBaseLength {
		return New(ErrCodeInvalidPath, "output base too long (max %d characters)", maxBaseLength)
	}

	for _, r := range base {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output base contains invalid characters")
		}
	}

	if strings.HasSuffix(base, "/") || strings.HasSuffix(base, "\\") {
		return New(ErrCodeInvalidPath, "output base must name a file, not a directory")
	}

	return nil
}

// ValidateCommand validates a renderer command name or path.
func ValidateCommand(cmd string) error {
	if strings.TrimSpace(cmd) == "" {
		return New(ErrCodeInvalidInput, "renderer command cannot be empty")
	}

	for _, r := range cmd {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "renderer command contains invalid characters")
		}
	}

	return nil
}
