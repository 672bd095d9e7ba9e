package errors

import (
	"net/url"
	"slices"
	"strings"
	"unicode"
)

// MaxKeyLength bounds record keys.
const MaxKeyLength = 256

// ValidateKey checks one record key. kind ("individual" or "union") prefixes
// the message. Keys end up in file names, URLs and DOT output, so they must
// be short and free of control characters.
func ValidateKey(kind, key string) error {
	switch {
	case key == "":
		return New(ErrCodeInvalidRecords, "%s with empty key", kind)
	case len(key) > MaxKeyLength:
		return New(ErrCodeInvalidRecords, "%s key %.16q... longer than %d bytes", kind, key, MaxKeyLength)
	case strings.IndexFunc(key, unicode.IsControl) >= 0:
		return New(ErrCodeInvalidRecords, "%s key %q contains control characters", kind, key)
	}
	return nil
}

// IsURL reports whether s should be fetched rather than read from disk.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// ValidateURL checks that rawURL is an absolute http(s) URL with a host.
func ValidateURL(rawURL string) error {
	if !IsURL(rawURL) {
		return New(ErrCodeInvalidInput, "record URL %q must use http or https", rawURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "record URL")
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "record URL %q has no host", rawURL)
	}
	return nil
}

// ValidateFormat checks format against allowed, ignoring case.
func ValidateFormat(format string, allowed ...string) error {
	if slices.Contains(allowed, strings.ToLower(format)) {
		return nil
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))
}
