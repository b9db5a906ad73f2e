package errors

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https) and a host.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidConfig, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidConfig, "URL must use http or https scheme: %q", rawURL)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidConfig, err, "invalid URL %q", rawURL)
	}
	if u.Host == "" {
		return New(ErrCodeInvalidConfig, "URL has no host: %q", rawURL)
	}

	return nil
}

// localNameRegex matches RDF local names accepted by the N-Triples writer.
var localNameRegex = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.\-]*$`)

// ValidateLocalName validates an RDF prefix or local name.
// Names end up inside IRIs, so anything that would need escaping is rejected.
//
// Validation rules:
//   - Name cannot be empty
//   - Maximum length of 256 characters
//   - No control characters or whitespace
//   - Only letters, digits, '_', '-' and '.' (not leading)
func ValidateLocalName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidName, "name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidName, "name contains invalid characters: %q", name)
		}
	}

	if !localNameRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid name: %q", name)
	}

	return nil
}
