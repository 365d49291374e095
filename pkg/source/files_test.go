package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFixture(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

func TestFilesFetch(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "groups.json", `{"data":[{"_id":"g1"},{"_id":"g2"}]}`)
	writeFixture(t, dir, "users.json", `[{"id":"u1"}]`)
	f := NewFiles(dir, nil)

	res, err := f.Fetch(context.Background(), Request{Endpoint: "/groups"})
	if err != nil {
		t.Fatalf("Fetch groups: %v", err)
	}
	if len(res.Records) != 2 {
		t.Fatalf("groups = %d records", len(res.Records))
	}
	res, err = f.Fetch(context.Background(), Request{Endpoint: "users"})
	if err != nil {
		t.Fatalf("Fetch users: %v", err)
	}
	if len(res.Records) != 1 || res.Records[0].ID() != "u1" {
		t.Fatalf("users = %v", res.Records)
	}

	_, err = f.Fetch(context.Background(), Request{Endpoint: "/orders"})
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Status != 404 {
		t.Fatalf("missing fixture = %v", err)
	}
}

func TestFilesServerPaged(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "solutions.json", `{"data":[{"_id":"1"},{"_id":"2"},{"_id":"3"},{"_id":"4"},{"_id":"5"}]}`)
	f := NewFiles(dir, nil)
	res, err := f.Fetch(context.Background(), Request{Endpoint: "/solutions", Page: 3, PageSize: 2, ServerPaged: true})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(res.Records) != 1 || res.Records[0].ID() != "5" {
		t.Fatalf("page 3 = %v", res.Records)
	}
	if res.Pagination.Total != 5 || res.Pagination.Pages != 3 {
		t.Fatalf("pagination = %+v", res.Pagination)
	}
	res, err = f.Fetch(context.Background(), Request{Endpoint: "/solutions", Page: 9, PageSize: 2, ServerPaged: true})
	if err != nil || len(res.Records) != 0 {
		t.Fatalf("page past the end = %v, %v", res.Records, err)
	}
}

func TestFilesDeleteAndUpdate(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "products.json", `{"data":[{"_id":"p1","name":"Mug"},{"_id":"p2","name":"Pen"}]}`)
	f := NewFiles(dir, nil)
	ctx := context.Background()

	if err := f.Delete(ctx, "/products", "p1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := f.Update(ctx, "/products", "p2", map[string]any{"deleted": true}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := f.Delete(ctx, "/products", "p1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete = %v, want ErrNotFound", err)
	}

	res, err := f.Fetch(ctx, Request{Endpoint: "/products"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(res.Records) != 1 || res.Records[0].ID() != "p2" {
		t.Fatalf("records = %v", res.Records)
	}
	if res.Records[0]["deleted"] != true || res.Records[0]["name"] != "Pen" {
		t.Fatalf("update lost fields: %v", res.Records[0])
	}
}

func TestFilesWatch(t *testing.T) {
	dir := t.TempDir()
	f := NewFiles(dir, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := f.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	// Allow the watcher goroutine to subscribe before writing.
	time.Sleep(50 * time.Millisecond)
	writeFixture(t, dir, "orders.json", `{"data":[]}`)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt := <-ch:
			if evt.Endpoint == "" {
				return
			}
			if evt.Endpoint != "/orders" {
				t.Fatalf("endpoint = %q, want /orders", evt.Endpoint)
			}
			return
		case <-deadline:
			t.Fatal("timed out waiting for a change event")
		}
	}
}

func TestEventThrottleCoalesces(t *testing.T) {
	th := newEventThrottle(20 * time.Millisecond)
	defer th.Stop()
	got := make(chan Event, 8)
	send := func(ev Event) { got <- ev }
	for i := 0; i < 5; i++ {
		th.Enqueue(Event{Endpoint: "/groups"}, send)
	}
	select {
	case ev := <-got:
		if ev.Endpoint != "/groups" {
			t.Fatalf("endpoint = %q", ev.Endpoint)
		}
	case <-time.After(time.Second):
		t.Fatal("no event flushed")
	}
	select {
	case ev := <-got:
		t.Fatalf("burst produced a second event %+v", ev)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestFilesRewriteReplacesFixture(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "orders.json", `[{"_id":"o1"},{"_id":"o2"}]`)
	f := NewFiles(dir, nil)

	if err := f.Delete(context.Background(), "/orders", "o2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "orders.json" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("dir after rewrite = %v, want only orders.json", names)
	}
	raw, err := os.ReadFile(filepath.Join(dir, "orders.json"))
	if err != nil {
		t.Fatal(err)
	}
	if got := string(raw); got != "{\n  \"data\": [\n    {\n      \"_id\": \"o1\"\n    }\n  ]\n}" {
		t.Fatalf("fixture = %s", got)
	}
}
