package record

import (
	"encoding/json"
	"testing"
	"time"
)

func decode(t *testing.T, raw string) Record {
	t.Helper()
	var r Record
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return r
}

func TestLookupDottedPath(t *testing.T) {
	r := decode(t, `{"_id":"a1","user":{"name":"Ada","age":31}}`)
	if got := r.String("user.name"); got != "Ada" {
		t.Fatalf("expected Ada, got %q", got)
	}
	if got, ok := r.Number("user.age"); !ok || got != 31 {
		t.Fatalf("expected 31, got %v (%v)", got, ok)
	}
	if _, ok := r.Lookup("user.missing"); ok {
		t.Fatalf("expected missing nested field")
	}
	if _, ok := r.Lookup("user.name.first"); ok {
		t.Fatalf("expected lookup through scalar to fail")
	}
	if got := r.ID(); got != "a1" {
		t.Fatalf("expected id a1, got %q", got)
	}
}

func TestIDFallsBackToPlainID(t *testing.T) {
	r := decode(t, `{"id":42}`)
	if got := r.ID(); got != "42" {
		t.Fatalf("expected 42, got %q", got)
	}
}

func TestTimeParsesISOAndEpoch(t *testing.T) {
	want := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	iso := decode(t, `{"createdAt":"2024-03-01T00:00:00Z"}`)
	got, ok := iso.CreatedAt()
	if !ok || !got.Equal(want) {
		t.Fatalf("iso: got %v (%v)", got, ok)
	}

	millis := decode(t, `{"createdAt":1709251200000}`)
	got, ok = millis.CreatedAt()
	if !ok || !got.Equal(want) {
		t.Fatalf("epoch: got %v (%v)", got, ok)
	}

	bare := decode(t, `{"createdAt":"2024-03-01"}`)
	got, ok = bare.CreatedAt()
	if !ok || !got.Equal(want) {
		t.Fatalf("date only: got %v (%v)", got, ok)
	}
}

func TestTimeRejectsGarbage(t *testing.T) {
	for _, raw := range []string{`{}`, `{"createdAt":"yesterday"}`, `{"createdAt":true}`, `{"createdAt":null}`} {
		r := decode(t, raw)
		if _, ok := r.CreatedAt(); ok {
			t.Fatalf("%s: expected unparseable", raw)
		}
	}
}

func TestTextRendersScalars(t *testing.T) {
	r := decode(t, `{"deleted":false,"price":12.5,"tags":["a","b"],"nested":{"x":1}}`)
	cases := map[string]string{
		"deleted": "false",
		"price":   "12.5",
		"tags":    "a, b",
		"nested":  "",
		"missing": "",
	}
	for path, want := range cases {
		if got := r.String(path); got != want {
			t.Fatalf("%s: expected %q, got %q", path, want, got)
		}
	}
	if r.IsText("tags") {
		t.Fatalf("tags should not be text")
	}
}
