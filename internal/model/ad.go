package model

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Canonical field names of an AdRecord.
const (
	FieldTitle       = "Title"
	FieldPrice       = "Price"
	FieldDescription = "Description"
	FieldLocation    = "Location"
	FieldURL         = "URL"
	FieldDetails     = "Details"
)

// AdRecord is the canonical, normalized form of one listing page.
//
// Fields holds the top-level values keyed by canonical name (Title, Price,
// Description, Location, URL) or by the raw classification when no canonical
// name exists. Details holds the labeled table rows keyed by their raw label
// text. A nil Details map means the record has no Details key at all.
type AdRecord struct {
	Fields  map[string]Field
	Details map[string]Field
}

// NewAdRecord returns an empty record.
func NewAdRecord() *AdRecord {
	return &AdRecord{Fields: make(map[string]Field)}
}

// Get returns the top-level field named key.
func (r *AdRecord) Get(key string) (Field, bool) {
	f, ok := r.Fields[key]
	return f, ok
}

// Set stores a top-level field, replacing any previous value.
func (r *AdRecord) Set(key string, f Field) {
	if r.Fields == nil {
		r.Fields = make(map[string]Field)
	}
	r.Fields[key] = f
}

// Keys returns all top-level keys, Details included, in sorted order.
func (r *AdRecord) Keys() []string {
	keys := slices.Collect(maps.Keys(r.Fields))
	if r.Details != nil {
		keys = append(keys, FieldDetails)
	}
	slices.Sort(keys)
	return slices.Compact(keys)
}

// Clone returns a deep copy of r.
func (r *AdRecord) Clone() *AdRecord {
	out := &AdRecord{Fields: make(map[string]Field, len(r.Fields))}
	for k, v := range r.Fields {
		out.Fields[k] = cloneField(v)
	}
	if r.Details != nil {
		out.Details = make(map[string]Field, len(r.Details))
		for k, v := range r.Details {
			out.Details[k] = cloneField(v)
		}
	}
	return out
}

func cloneField(f Field) Field {
	if f.IsList() {
		return List(f.list)
	}
	return f
}

// MarshalJSON encodes the record as a single JSON object. Details, when
// present, is a nested object. encoding/json sorts map keys, so the output
// is key-sorted at every level.
func (r *AdRecord) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		obj[k] = v
	}
	if r.Details != nil {
		obj[FieldDetails] = r.Details
	}
	return marshalUnescaped(obj)
}

// UnmarshalJSON decodes a record written by MarshalJSON.
func (r *AdRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	rec := NewAdRecord()
	for k, v := range raw {
		if k == FieldDetails {
			var details map[string]Field
			if err := json.Unmarshal(v, &details); err == nil {
				if details == nil {
					details = make(map[string]Field)
				}
				rec.Details = details
				continue
			}
		}
		var f Field
		if err := json.Unmarshal(v, &f); err != nil {
			return fmt.Errorf("failed to decode field %q: %w", k, err)
		}
		rec.Fields[k] = f
	}
	*r = *rec
	return nil
}
