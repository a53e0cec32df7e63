package errors

import (
	"strings"
	"unicode"
)

// ValidatePath validates a file path within a repository before it is placed
// into a contents API URL.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 1024 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No ".." path segments
//   - No backslashes
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 1024
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	// "foo..bar.yaml" is a legal file name; only whole segments are rejected.
	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateExtension validates a candidate file extension such as ".yaml".
func ValidateExtension(ext string) error {
	if len(ext) < 2 || ext[0] != '.' {
		return New(ErrCodeInvalidExtension, "extension %q must start with a dot", ext)
	}
	if strings.ContainsAny(ext[1:], "./\\ ") {
		return New(ErrCodeInvalidExtension, "extension %q contains invalid characters", ext)
	}
	return nil
}

// ValidateScheme validates a share-link prefix such as "vmess://".
func ValidateScheme(scheme string) error {
	name, ok := strings.CutSuffix(scheme, "://")
	if !ok || name == "" {
		return New(ErrCodeInvalidInput, "link scheme %q must look like name://", scheme)
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '-' && r != '.' {
			return New(ErrCodeInvalidInput, "link scheme %q contains invalid characters", scheme)
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	return nil
}
