package model

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"
)

func TestNewField(t *testing.T) {
	t.Parallel()

	t.Run("single value becomes scalar", func(t *testing.T) {
		t.Parallel()

		f := NewField([]string{"3 500 zł"})
		if f.IsList() {
			t.Fatal("expected scalar field")
		}
		if f.String() != "3 500 zł" {
			t.Errorf("got %q, want %q", f.String(), "3 500 zł")
		}
	})

	t.Run("two values stay a list", func(t *testing.T) {
		t.Parallel()

		f := NewField([]string{"a", "b"})
		if !f.IsList() {
			t.Fatal("expected list field")
		}
		if got := f.Values(); !slices.Equal(got, []string{"a", "b"}) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("empty input is an empty list", func(t *testing.T) {
		t.Parallel()

		f := NewField(nil)
		if !f.IsList() {
			t.Fatal("expected list field")
		}
		data, err := json.Marshal(f)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "[]" {
			t.Errorf("got %s, want []", data)
		}
	})
}

func TestField_JSON(t *testing.T) {
	t.Parallel()

	t.Run("scalar keeps non-ASCII and markup unescaped", func(t *testing.T) {
		t.Parallel()

		data, err := Scalar("Mieszkanie <2 pokoje> & balkon").MarshalJSON()
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != `"Mieszkanie <2 pokoje> & balkon"` {
			t.Errorf("got %s", data)
		}
	})

	t.Run("accepts string or array", func(t *testing.T) {
		t.Parallel()

		var s, l Field
		if err := json.Unmarshal([]byte(`"x"`), &s); err != nil {
			t.Fatal(err)
		}
		if err := json.Unmarshal([]byte(` ["x","y"]`), &l); err != nil {
			t.Fatal(err)
		}
		if s.IsList() || s.String() != "x" {
			t.Errorf("scalar decoded as %+v", s)
		}
		if !l.IsList() || l.String() != "x, y" {
			t.Errorf("list decoded as %+v", l)
		}
	})

	t.Run("rejects numbers", func(t *testing.T) {
		t.Parallel()

		var f Field
		err := json.Unmarshal([]byte(`42`), &f)
		if !errors.Is(err, ErrInvalidField) {
			t.Errorf("expected ErrInvalidField, got %v", err)
		}
	})
}

func TestAdRecord_JSON(t *testing.T) {
	t.Parallel()

	rec := NewAdRecord()
	rec.Set(FieldTitle, Scalar("Kawalerka"))
	rec.Set(FieldPrice, List([]string{"2 000 zł", "40 zł/m²"}))
	rec.Details = map[string]Field{"Czynsz:": Scalar("500 zł")}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"Details":{"Czynsz:":"500 zł"},"Price":["2 000 zł","40 zł/m²"],"Title":"Kawalerka"}`
	if string(data) != want {
		t.Errorf("got  %s\nwant %s", data, want)
	}

	var decoded AdRecord
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if got := decoded.Details["Czynsz:"].String(); got != "500 zł" {
		t.Errorf("Details not decoded, got %q", got)
	}
	if !decoded.Fields[FieldPrice].IsList() {
		t.Error("expected Price to decode as list")
	}
	if got := decoded.Keys(); !slices.Equal(got, []string{"Details", "Price", "Title"}) {
		t.Errorf("Keys() = %v", got)
	}
}

func TestAdRecord_Clone(t *testing.T) {
	t.Parallel()

	rec := NewAdRecord()
	rec.Set(FieldTitle, Scalar("a"))
	clone := rec.Clone()
	clone.Set(FieldTitle, Scalar("b"))

	if got, _ := rec.Get(FieldTitle); got.String() != "a" {
		t.Errorf("original modified: %q", got.String())
	}
	if clone.Details != nil {
		t.Error("clone must keep a nil Details map nil")
	}
}
