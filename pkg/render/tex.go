package render

import (
	"github.com/matzehuels/mathfmt/pkg/datamodel"
	"github.com/matzehuels/mathfmt/pkg/errors"
)

// TeX is non-empty TeX math source. Obtain one through [TeXFromValue] so
// that invalid input is rejected before any renderer is involved.
type TeX string

// String returns the raw TeX source.
func (t TeX) String() string { return string(t) }

// TeXFromValue validates v as math input. Only non-empty string values are
// accepted; nil, non-string and empty values yield an
// [errors.ErrCodeInvalidArgument] error.
func TeXFromValue(v datamodel.Value) (TeX, error) {
	if v == nil {
		return "", errors.New(errors.ErrCodeInvalidArgument, "value must not be nil")
	}
	s, ok := v.(datamodel.StringValue)
	if !ok {
		return "", errors.New(errors.ErrCodeInvalidArgument, "expected a string value, got %s", v.Type())
	}
	if s == "" {
		return "", errors.New(errors.ErrCodeInvalidArgument, "TeX source must not be empty")
	}
	return TeX(s), nil
}
