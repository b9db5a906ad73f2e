package render

import (
	"testing"

	"github.com/matzehuels/mathfmt/pkg/datamodel"
	"github.com/matzehuels/mathfmt/pkg/errors"
)

func TestTeXFromValue(t *testing.T) {
	tests := []struct {
		name    string
		value   datamodel.Value
		want    TeX
		wantErr bool
	}{
		{"string", datamodel.StringValue(`\sin x`), `\sin x`, false},
		{"nil", nil, "", true},
		{"number", datamodel.NumberValue(0), "", true},
		{"empty", datamodel.StringValue(""), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TeXFromValue(tt.value)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidArgument) {
					t.Errorf("TeXFromValue() error = %v, want INVALID_ARGUMENT", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("TeXFromValue() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("TeXFromValue() = %q, want %q", got, tt.want)
			}
		})
	}
}
