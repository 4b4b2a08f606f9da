package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/nao1215/aptscout/internal/extract"
	"github.com/nao1215/aptscout/internal/model"
)

// renames maps raw classifications to canonical field names. Anything not
// listed keeps its raw name.
var renames = map[model.Classification]string{
	extract.ClassDescription: model.FieldDescription,
	extract.ClassTitle:       model.FieldTitle,
	extract.ClassPrice:       model.FieldPrice,
	extract.ClassLabeledRow:  model.FieldDetails,
}

// AllowedProps lists the fields kept for summarization.
var AllowedProps = []string{
	model.FieldDescription,
	model.FieldDetails,
	model.FieldLocation,
	model.FieldTitle,
	model.FieldPrice,
	model.FieldURL,
}

// CanonicalName returns the field name used for classification c.
func CanonicalName(c model.Classification) string {
	if name, ok := renames[c]; ok {
		return name
	}
	return string(c)
}

// Normalize builds the canonical record for a listing page from its tagged
// pairs. Labeled rows are grouped again by label into Details; a page with
// no labeled rows gets an empty Details object. A Location pair, when
// present, becomes the Location field.
func Normalize(pairs []model.TaggedPair) *model.AdRecord {
	grouped := PairsToDict(pairs)
	rec := model.NewAdRecord()
	rec.Details = make(map[string]model.Field)

	for _, c := range grouped.Keys() {
		payloads := grouped.Values(c)
		name := CanonicalName(c)
		if name == model.FieldDetails {
			rec.Details = groupDetails(payloads)
			continue
		}
		rec.Set(name, Flatten(texts(payloads)))
	}
	return rec
}

func groupDetails(payloads []model.Payload) map[string]model.Field {
	byLabel := model.NewGroupedMap[string, string]()
	for _, p := range payloads {
		byLabel.Add(p.Label, p.Text)
	}
	details := make(map[string]model.Field, byLabel.Len())
	for _, label := range byLabel.Keys() {
		details[label] = Flatten(byLabel.Values(label))
	}
	return details
}

// WithURL sets the URL field of rec, overwriting any extracted value, and
// returns rec.
func WithURL(rec *model.AdRecord, url string) *model.AdRecord {
	rec.Set(model.FieldURL, model.Scalar(url))
	return rec
}

// FilterProps returns a copy of rec restricted to AllowedProps.
func FilterProps(rec *model.AdRecord) *model.AdRecord {
	out := model.NewAdRecord()
	for _, key := range AllowedProps {
		if key == model.FieldDetails {
			if rec.Details != nil {
				out.Details = rec.Clone().Details
			}
			continue
		}
		if f, ok := rec.Get(key); ok {
			out.Set(key, f)
		}
	}
	return out
}

// Format serializes rec as JSON with sorted keys, a four-space indent and
// unescaped UTF-8 text.
func Format(rec *model.AdRecord) ([]byte, error) {
	return FormatIndent(rec, "    ")
}

// FormatIndent is Format with a caller-chosen indent.
func FormatIndent(rec *model.AdRecord, indent string) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, rec, indent); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Encode writes v as indented JSON without HTML escaping.
func Encode(w io.Writer, v any, indent string) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}
