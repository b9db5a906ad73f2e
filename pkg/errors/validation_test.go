package errors

import (
	"testing"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"http", "http://localhost:10044", false},
		{"https with path", "https://wikimedia.org/api/rest_v1/media/math", false},

		{"empty", "", true},
		{"no scheme", "localhost:10044", true},
		{"ftp", "ftp://example.org", true},
		{"no host", "http://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidConfig) {
				t.Errorf("ValidateURL(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidConfig)
			}
		})
	}
}

func TestValidateLocalName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "testing", false},
		{"entity id", "Q1", false},
		{"with dash", "P1-value", false},
		{"with dot", "v1.2", false},
		{"underscore first", "_x", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"space", "a b", true},
		{"newline", "a\nb", true},
		{"angle bracket", "a>b", true},
		{"slash", "a/b", true},
		{"leading dot", ".a", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLocalName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLocalName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
