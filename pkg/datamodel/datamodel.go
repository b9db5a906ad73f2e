// Package datamodel defines the value and snak types consumed by the
// formatter and the RDF builder.
//
// Only the narrow surface needed for math values is modelled: a [Value] that
// reports its type, the two concrete kinds callers hand in ([StringValue] and
// [NumberValue]), and a [Snak] binding a property to a value.
package datamodel

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Value type identifiers returned by [Value.Type].
const (
	TypeString = "string"
	TypeNumber = "number"
)

// Value is a single scalar data value.
type Value interface {
	// Type returns the value type identifier (e.g. "string").
	Type() string
}

// StringValue is a string-typed value. Math values carry their TeX source
// in a StringValue.
type StringValue string

// Type implements [Value].
func (StringValue) Type() string { return TypeString }

// String returns the raw string.
func (v StringValue) String() string { return string(v) }

// NumberValue is a numeric value. It is never accepted as math input.
type NumberValue float64

// Type implements [Value].
func (NumberValue) Type() string { return TypeNumber }

// String formats the number without trailing zeros.
func (v NumberValue) String() string {
	return strconv.FormatFloat(float64(v), 'f', -1, 64)
}

// Snak is a property-value claim attached to an entity.
type Snak struct {
	PropertyID string
	Value      Value
}

// NewPropertyValueSnak creates a snak for property with the given value.
func NewPropertyValueSnak(property string, v Value) Snak {
	return Snak{PropertyID: property, Value: v}
}

// jsonValue is the serialized form of a Value, as used by API payloads.
type jsonValue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// DecodeValue decodes a JSON value of the form {"type": "string", "value": "..."}.
// A JSON null decodes to a nil Value.
func DecodeValue(data []byte) (Value, error) {
	if string(data) == "null" {
		return nil, nil
	}
	var raw jsonValue
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	switch raw.Type {
	case TypeString:
		var s string
		if err := json.Unmarshal(raw.Value, &s); err != nil {
			return nil, fmt.Errorf("decode string value: %w", err)
		}
		return StringValue(s), nil
	case TypeNumber:
		var n float64
		if err := json.Unmarshal(raw.Value, &n); err != nil {
			return nil, fmt.Errorf("decode number value: %w", err)
		}
		return NumberValue(n), nil
	default:
		return nil, fmt.Errorf("unsupported value type %q", raw.Type)
	}
}
