package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Field is a record value that is either a single string or a list of
// strings. A classification seen once on a page becomes a scalar; one seen
// several times (or zero times) stays a list.
type Field struct {
	scalar string
	list   []string
	isList bool
}

// Scalar returns a single-value field.
func Scalar(s string) Field {
	return Field{scalar: s}
}

// List returns a list field holding a copy of values.
func List(values []string) Field {
	out := make([]string, len(values))
	copy(out, values)
	return Field{list: out, isList: true}
}

// NewField flattens values: exactly one value yields a scalar, any other
// length yields a list.
func NewField(values []string) Field {
	if len(values) == 1 {
		return Scalar(values[0])
	}
	return List(values)
}

// IsList reports whether f holds a list.
func (f Field) IsList() bool {
	return f.isList
}

// String returns the scalar value, or the list values joined by ", ".
func (f Field) String() string {
	if !f.isList {
		return f.scalar
	}
	var buf bytes.Buffer
	for i, v := range f.list {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(v)
	}
	return buf.String()
}

// Values returns the field as a slice regardless of its shape.
func (f Field) Values() []string {
	if !f.isList {
		return []string{f.scalar}
	}
	out := make([]string, len(f.list))
	copy(out, f.list)
	return out
}

// MarshalJSON encodes a scalar as a JSON string and a list as an array.
func (f Field) MarshalJSON() ([]byte, error) {
	if f.isList {
		list := f.list
		if list == nil {
			list = []string{}
		}
		return marshalUnescaped(list)
	}
	return marshalUnescaped(f.scalar)
}

// ErrInvalidField is returned when a JSON value is neither a string nor an
// array of strings.
var ErrInvalidField = errors.New("field must be a string or an array of strings")

// UnmarshalJSON accepts a JSON string or an array of strings.
func (f *Field) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []string
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidField, err)
		}
		*f = List(list)
		return nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidField, err)
	}
	*f = Scalar(s)
	return nil
}

// marshalUnescaped encodes v without HTML escaping and without the trailing
// newline json.Encoder appends.
func marshalUnescaped(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
