package errors

import (
	"strings"
	"testing"
)

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr string
	}{
		{"simple", "I1", ""},
		{"gedcom xref", "@I123@", ""},
		{"unicode", "Müller-1", ""},
		{"empty", "", "individual with empty key"},
		{"too long", strings.Repeat("k", MaxKeyLength+1), "longer than 256 bytes"},
		{"null byte", "foo\x00bar", "control characters"},
		{"newline", "foo\nbar", "control characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey("individual", tt.key)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidateKey(%q) = %v, want nil", tt.key, err)
				}
				return
			}
			if !Is(err, ErrCodeInvalidRecords) {
				t.Fatalf("ValidateKey(%q) = %v, want INVALID_RECORDS", tt.key, err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateKey(%q) = %q, want it to mention %q", tt.key, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://example.org/tree.json", false},
		{"http with port", "http://localhost:8080/tree.json", false},
		{"empty", "", true},
		{"file scheme", "file:///etc/passwd", true},
		{"no scheme", "example.org/tree.json", true},
		{"no host", "https:///tree.json", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateURL(%q) code = %s, want INVALID_INPUT", tt.input, GetCode(err))
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	if err := ValidateFormat("SVG", "svg", "png", "pdf"); err != nil {
		t.Errorf("ValidateFormat(SVG) error = %v", err)
	}
	err := ValidateFormat("gif", "svg", "png")
	if !Is(err, ErrCodeInvalidFormat) {
		t.Errorf("ValidateFormat(gif) error = %v, want INVALID_FORMAT", err)
	}
	if !strings.Contains(err.Error(), "svg, png") {
		t.Errorf("ValidateFormat(gif) error = %q, want the allowed list", err)
	}
}
