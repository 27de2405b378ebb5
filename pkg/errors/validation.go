package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// slotNameRegex matches valid slot names for layout overrides.
var slotNameRegex = regexp.MustCompile(`^[a-z]+$`)

// ValidateSlotName validates a placeholder slot name used in layout
// overrides (e.g. "barcode", "name"). Slot names are lowercase ASCII
// letters only, mirroring the keys accepted in wheel configuration.
func ValidateSlotName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidLayout, "slot name cannot be empty")
	}

	if len(name) > 64 {
		return New(ErrCodeInvalidLayout, "slot name too long (max 64 characters)")
	}

	if !slotNameRegex.MatchString(name) {
		return New(ErrCodeInvalidLayout, "invalid slot name: %q (lowercase letters only)", name)
	}

	return nil
}

// ValidateFontFamily validates a font family name before handing it to
// the font resolver. The rules are intentionally conservative:
//   - No empty names
//   - No control characters or null bytes
//   - Maximum length of 256 characters
func ValidateFontFamily(family string) error {
	if family == "" {
		return New(ErrCodeInvalidInput, "font family cannot be empty")
	}

	if len(family) > 256 {
		return New(ErrCodeInvalidInput, "font family too long (max 256 characters)")
	}

	for _, r := range family {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "font family contains invalid control characters")
		}
	}

	return nil
}

// ValidatePicturePath validates a local picture reference from a catalog
// row. It prevents path traversal out of the catalog directory and
// ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative to the catalog)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePicturePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "picture path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "picture path too long (max %d characters)", maxPathLength)
	}

	// Check for null bytes and control characters
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "picture path contains invalid characters")
		}
	}

	// Must not be absolute path
	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "picture path must be relative (cannot start with /)")
	}

	// Check for path traversal
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "picture path cannot contain path traversal sequences (..)")
	}

	// No backslashes (potential Windows path injection)
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "picture path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	if len(rawURL) > 2000 {
		return New(ErrCodeInvalidInput, "URL too long (max 2000 characters)")
	}

	for _, r := range rawURL {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "URL contains invalid control characters")
		}
	}

	return nil
}

// ValidatePictureRef validates a catalog picture reference, which may be
// either a local relative path or an http(s) URL. References carrying
// any other URL scheme are rejected rather than treated as paths.
func ValidatePictureRef(ref string) error {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ValidateURL(ref)
	}
	if strings.Contains(ref, "://") {
		return New(ErrCodeInvalidPath, "picture URL must use http or https scheme")
	}
	return ValidatePicturePath(ref)
}
