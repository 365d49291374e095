// Package source fetches record collections from the campus-services backend
// and applies record mutations.
package source

import (
	"context"
	"errors"
	"fmt"

	"tableflip.dev/campus/pkg/record"
)

// Request describes one collection fetch.
type Request struct {
	// Endpoint is the collection path, for example "/lostfound".
	Endpoint string
	// Page and PageSize are only sent for server-paged collections.
	Page        int
	PageSize    int
	ServerPaged bool
}

// Pagination is the server-side paging envelope of paged endpoints.
type Pagination struct {
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// Result is a fetched collection.
type Result struct {
	Records    []record.Record
	Pagination *Pagination
}

// Source fetches a collection, returning the records or an error.
type Source interface {
	Fetch(ctx context.Context, req Request) (Result, error)
}

// Mutator edits single records. Callers re-fetch after a successful
// mutation; no source patches its results in place.
type Mutator interface {
	Delete(ctx context.Context, endpoint, id string) error
	Update(ctx context.Context, endpoint, id string, fields map[string]any) error
}

// Backend is a Source that can also mutate records.
type Backend interface {
	Source
	Mutator
}

// ErrNotFound is returned when a mutation targets a record that does not
// exist.
var ErrNotFound = errors.New("source: record not found")

// FetchError is a failed request to the backend. Message is what the
// backend said, suitable for showing to the user verbatim.
type FetchError struct {
	Endpoint string
	Status   int
	Message  string
	Err      error
}

func (e *FetchError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("source: %s: %d %s", e.Endpoint, e.Status, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("source: %s: %v", e.Endpoint, e.Err)
	default:
		return fmt.Sprintf("source: %s: %s", e.Endpoint, e.Message)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// UserMessage returns the message to show in an error banner.
func (e *FetchError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "request failed"
}

// envelope is the JSON shape shared by every collection endpoint.
type envelope struct {
	Data       []record.Record `json:"data"`
	Pagination *Pagination     `json:"pagination,omitempty"`
}

// errorBody is the JSON shape of backend error responses.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (b errorBody) text() string {
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}
