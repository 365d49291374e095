package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"tableflip.dev/campus/pkg/listview"
	"tableflip.dev/campus/pkg/source"
	"tableflip.dev/campus/pkg/store"
)

const lostFound = `{"data":[
 {"_id":"a","itemName":"Keys","type":"lost","status":"pending","createdAt":"2024-03-15T10:00:00Z"},
 {"_id":"b","itemName":"Wallet","type":"found","status":"approved","createdAt":"2024-03-14T10:00:00Z"},
 {"_id":"c","itemName":"Scarf","type":"lost","status":"approved","createdAt":"2024-03-13T10:00:00Z"}
]}`

func newTestService(t *testing.T) *Service {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "lostfound.json"), []byte(lostFound), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "transactions.json"), []byte(`{"data":[{"_id":"t1"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	h, err := store.Load(store.BasePath(t.TempDir()))
	if err != nil {
		t.Fatalf("load history: %v", err)
	}
	return &Service{
		Backend: source.NewFiles(dir, nil),
		History: h,
		Scope:   "test",
	}
}

func TestOpenRemembersQuery(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	v, err := s.Open("lost", OpenOptions{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := v.Controller.Mount(ctx); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	v.Controller.SetFilter("type", "lost")
	v.Controller.Close()

	again, err := s.Open("lostfound", OpenOptions{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer again.Controller.Close()
	if err := again.Controller.Mount(ctx); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	snap := again.Controller.Snapshot()
	if snap.State.Filter("type") != "lost" || snap.Projection.TotalMatched != 2 {
		t.Fatalf("remembered state = %+v, total %d", snap.State, snap.Projection.TotalMatched)
	}

	entries := s.Remembered(ctx)
	if len(entries) != 1 || entries[0].Query != "type=lost" {
		t.Fatalf("history = %+v", entries)
	}
	if err := s.Forget("lostfound"); err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if got := s.Remembered(ctx); len(got) != 0 {
		t.Fatalf("history after Forget = %+v", got)
	}
}

func TestOpenQueryOverride(t *testing.T) {
	s := newTestService(t)
	q := "status=approved&timeFilter=all"
	v, err := s.Open("lostfound", OpenOptions{Query: &q, Ephemeral: true, Viewport: listview.FixedViewport(80)})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer v.Controller.Close()
	if err := v.Controller.Mount(context.Background()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if got := v.Controller.Snapshot().Projection.TotalMatched; got != 2 {
		t.Fatalf("approved = %d, want 2", got)
	}
	if got := s.Remembered(context.Background()); len(got) != 0 {
		t.Fatalf("ephemeral view wrote history: %+v", got)
	}
}

func TestDeleteRefreshes(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	v, err := s.Open("lostfound", OpenOptions{Ephemeral: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer v.Controller.Close()
	if err := v.Controller.Mount(ctx); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if err := s.Delete(ctx, v, "b"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := v.Controller.Snapshot().Loaded; got != 2 {
		t.Fatalf("loaded after delete = %d, want 2", got)
	}
	if err := s.Delete(ctx, v, "b"); !errors.Is(err, source.ErrNotFound) {
		t.Fatalf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestDeleteReadOnly(t *testing.T) {
	s := newTestService(t)
	if err := s.DeleteFrom(context.Background(), "transactions", "t1"); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("DeleteFrom = %v, want ErrReadOnly", err)
	}
}

func TestWatchSupport(t *testing.T) {
	s := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if _, err := s.Watch(ctx); err != nil {
		t.Fatalf("Watch on files: %v", err)
	}
	rest, err := source.NewREST("http://localhost:1", 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	s.Backend = rest
	if _, err := s.Watch(ctx); !errors.Is(err, ErrWatchUnsupported) {
		t.Fatalf("Watch on REST = %v", err)
	}
}
