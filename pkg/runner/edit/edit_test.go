package edit

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"tableflip.dev/campus/pkg/app"
	"tableflip.dev/campus/pkg/source"
)

func init() {
	color.NoColor = true
}

func newApp(t *testing.T) (*app.Service, string) {
	t.Helper()
	dir := t.TempDir()
	data := `{"data":[{"_id":"a","itemName":"Keys"},{"_id":"b","itemName":"Wallet"}]}`
	if err := os.WriteFile(filepath.Join(dir, "lostfound.json"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "transactions.json"), []byte(`[{"_id":"t1"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	return &app.Service{Backend: source.NewFiles(dir, nil), Scope: "test"}, dir
}

func TestEdit(t *testing.T) {
	a, dir := newApp(t)
	var buf bytes.Buffer
	e := Edit{App: a, Page: "lostfound", ID: "a", Fields: map[string]any{"itemName": "Car keys"}, Out: &buf}
	if err := e.Do(context.Background()); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "Car keys") || !strings.Contains(out, "Wallet") {
		t.Fatalf("output after edit:\n%s", out)
	}
	raw, err := os.ReadFile(filepath.Join(dir, "lostfound.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"Car keys"`) {
		t.Fatalf("fixture not rewritten:\n%s", raw)
	}
}

func TestEditErrors(t *testing.T) {
	a, _ := newApp(t)
	ctx := context.Background()
	fields := map[string]any{"itemName": "x"}

	e := Edit{App: a, Page: "lostfound", ID: "zzz", Fields: fields, Quiet: true}
	if err := e.Do(ctx); !errors.Is(err, source.ErrNotFound) {
		t.Fatalf("unknown id = %v, want ErrNotFound", err)
	}
	e = Edit{App: a, Page: "transactions", ID: "t1", Fields: fields, Quiet: true}
	if err := e.Do(ctx); !errors.Is(err, app.ErrReadOnly) {
		t.Fatalf("read-only page = %v, want ErrReadOnly", err)
	}
	e = Edit{App: a, Page: "lostfound", Fields: fields, Quiet: true}
	if err := e.Do(ctx); err == nil {
		t.Fatal("missing id accepted")
	}
}
