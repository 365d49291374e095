package source

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestREST(t *testing.T, h http.HandlerFunc) *REST {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	r, err := NewREST(srv.URL+"/api/", time.Second, nil)
	if err != nil {
		t.Fatalf("NewREST: %v", err)
	}
	return r
}

func TestRESTFetch(t *testing.T) {
	r := newTestREST(t, func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/api/lostfound" {
			t.Errorf("path = %q", req.URL.Path)
		}
		if req.URL.RawQuery != "" {
			t.Errorf("client-side collection sent query %q", req.URL.RawQuery)
		}
		io.WriteString(w, `{"data":[{"_id":"a","itemName":"Keys"},{"_id":"b","itemName":"Wallet"}]}`)
	})
	res, err := r.Fetch(context.Background(), Request{Endpoint: "/lostfound"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(res.Records) != 2 || res.Records[1].ID() != "b" {
		t.Fatalf("records = %v", res.Records)
	}
	if res.Pagination != nil {
		t.Fatalf("unexpected pagination %+v", res.Pagination)
	}
}

func TestRESTFetchServerPaged(t *testing.T) {
	r := newTestREST(t, func(w http.ResponseWriter, req *http.Request) {
		if got := req.URL.Query().Get("page"); got != "3" {
			t.Errorf("page = %q, want 3", got)
		}
		if got := req.URL.Query().Get("limit"); got != "20" {
			t.Errorf("limit = %q, want 20", got)
		}
		io.WriteString(w, `{"data":[{"_id":"s41"}],"pagination":{"total":41,"pages":3}}`)
	})
	res, err := r.Fetch(context.Background(), Request{Endpoint: "solutions", Page: 3, PageSize: 20, ServerPaged: true})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.Pagination == nil || res.Pagination.Total != 41 || res.Pagination.Pages != 3 {
		t.Fatalf("pagination = %+v", res.Pagination)
	}
}

func TestRESTFetchError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{name: "message", status: http.StatusInternalServerError, body: `{"message":"database unavailable"}`, want: "database unavailable"},
		{name: "error", status: http.StatusForbidden, body: `{"error":"admins only"}`, want: "admins only"},
		{name: "plain", status: http.StatusBadGateway, body: `<html>`, want: "Bad Gateway"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestREST(t, func(w http.ResponseWriter, req *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})
			_, err := r.Fetch(context.Background(), Request{Endpoint: "/orders"})
			var fe *FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("err = %v, want *FetchError", err)
			}
			if fe.Status != tt.status || fe.UserMessage() != tt.want {
				t.Fatalf("got %d %q, want %d %q", fe.Status, fe.UserMessage(), tt.status, tt.want)
			}
		})
	}
}

func TestRESTMalformedBody(t *testing.T) {
	r := newTestREST(t, func(w http.ResponseWriter, req *http.Request) {
		io.WriteString(w, `{"data": {`)
	})
	_, err := r.Fetch(context.Background(), Request{Endpoint: "/groups"})
	var fe *FetchError
	if !errors.As(err, &fe) || fe.UserMessage() != "malformed response from server" {
		t.Fatalf("err = %v", err)
	}
}

func TestRESTDeleteAndUpdate(t *testing.T) {
	var got []string
	var patch map[string]any
	r := newTestREST(t, func(w http.ResponseWriter, req *http.Request) {
		got = append(got, req.Method+" "+req.URL.Path)
		switch {
		case req.URL.Path == "/api/products/missing":
			w.WriteHeader(http.StatusNotFound)
		case req.Method == http.MethodPatch:
			if err := json.NewDecoder(req.Body).Decode(&patch); err != nil {
				t.Errorf("decode patch: %v", err)
			}
			io.WriteString(w, `{}`)
		default:
			io.WriteString(w, `{"message":"deleted"}`)
		}
	})
	ctx := context.Background()
	if err := r.Delete(ctx, "/products", "p 1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := r.Update(ctx, "/orders", "o1", map[string]any{"status": "shipped"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := r.Delete(ctx, "/products", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete missing = %v, want ErrNotFound", err)
	}
	want := []string{"DELETE /api/products/p 1", "PATCH /api/orders/o1", "DELETE /api/products/missing"}
	if len(got) != len(want) {
		t.Fatalf("requests = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("requests = %v, want %v", got, want)
		}
	}
	if patch["status"] != "shipped" {
		t.Fatalf("patch = %v", patch)
	}
}

func TestNewRESTRejectsBadURL(t *testing.T) {
	if _, err := NewREST("ftp://example.com", 0, nil); err == nil {
		t.Fatal("expected an error for a non-http scheme")
	}
}
