package remove

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

func newApp(t *testing.T) *app.Service {
	t.Helper()
	dir := t.TempDir()
	data := `{"data":[{"_id":"a","itemName":"Keys"},{"_id":"b","itemName":"Wallet"}]}`
	if err := os.WriteFile(filepath.Join(dir, "lostfound.json"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "transactions.json"), []byte(`[{"_id":"t1"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	return &app.Service{Backend: source.NewFiles(dir, nil), Scope: "test"}
}

func TestRemove(t *testing.T) {
	var buf bytes.Buffer
	r := Remove{App: newApp(t), Page: "lostfound", IDs: []string{"a"}, Out: &buf}
	if err := r.Do(context.Background()); err != nil {
		t.Fatalf("Do: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Wallet") || strings.Contains(out, "Keys") {
		t.Fatalf("output after delete:\n%s", out)
	}
}

func TestRemoveErrors(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()

	r := Remove{App: a, Page: "lostfound", IDs: []string{"zzz"}, Quiet: true}
	if err := r.Do(ctx); !errors.Is(err, source.ErrNotFound) {
		t.Fatalf("unknown id = %v, want ErrNotFound", err)
	}
	r = Remove{App: a, Page: "transactions", IDs: []string{"t1"}, Quiet: true}
	if err := r.Do(ctx); !errors.Is(err, app.ErrReadOnly) {
		t.Fatalf("read-only page = %v, want ErrReadOnly", err)
	}
	r = Remove{App: a, Page: "lostfound", Quiet: true}
	if err := r.Do(ctx); err == nil {
		t.Fatal("Do accepted no ids")
	}
}
