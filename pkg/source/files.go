package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/natefinch/atomic"

	"tableflip.dev/campus/pkg/record"
)

// Files serves collections from JSON fixtures on disk, one file per
// endpoint: "/lostfound" lives in {Dir}/lostfound.json. The files use the
// same envelope as the HTTP backend, or a bare JSON array.
type Files struct {
	Dir    string
	Logger *log.Logger

	mu sync.Mutex
}

var _ Backend = (*Files)(nil)

// NewFiles returns a Files source rooted at dir.
func NewFiles(dir string, logger *log.Logger) *Files {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Files{Dir: dir, Logger: logger}
}

func (f *Files) logger() *log.Logger {
	if f.Logger == nil {
		return log.New(io.Discard)
	}
	return f.Logger
}

func (f *Files) path(endpoint string) string {
	name := strings.Trim(endpoint, "/")
	name = strings.ReplaceAll(name, "/", "_")
	return filepath.Join(f.Dir, name+".json")
}

// endpointFor maps a fixture path back to its endpoint.
func (f *Files) endpointFor(path string) string {
	rel, err := filepath.Rel(f.Dir, path)
	if err != nil || strings.Contains(rel, string(os.PathSeparator)) || filepath.Ext(rel) != ".json" {
		return ""
	}
	return "/" + strings.ReplaceAll(strings.TrimSuffix(rel, ".json"), "_", "/")
}

func (f *Files) read(endpoint string) ([]record.Record, error) {
	raw, err := os.ReadFile(f.path(endpoint))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &FetchError{Endpoint: endpoint, Status: 404, Message: "collection not found", Err: err}
		}
		return nil, &FetchError{Endpoint: endpoint, Err: err}
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		var list []record.Record
		if err2 := json.Unmarshal(raw, &list); err2 != nil {
			return nil, &FetchError{Endpoint: endpoint, Message: "malformed fixture", Err: err}
		}
		return list, nil
	}
	return env.Data, nil
}

func (f *Files) write(endpoint string, records []record.Record) error {
	raw, err := json.MarshalIndent(envelope{Data: records}, "", "  ")
	if err != nil {
		return fmt.Errorf("source: encode %s: %w", endpoint, err)
	}
	if err := atomic.WriteFile(f.path(endpoint), bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("source: write %s: %w", endpoint, err)
	}
	return nil
}

// Fetch implements Source. Server-paged requests are sliced here and carry
// pagination like the HTTP backend does.
func (f *Files) Fetch(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	f.mu.Lock()
	records, err := f.read(req.Endpoint)
	f.mu.Unlock()
	if err != nil {
		return Result{}, err
	}
	f.logger().Debug("read fixture", "endpoint", req.Endpoint, "records", len(records))
	if !req.ServerPaged {
		return Result{Records: records}, nil
	}
	size := req.PageSize
	if size < 1 {
		size = len(records)
	}
	page := max(req.Page, 1)
	pages := 1
	if size > 0 {
		pages = max((len(records)+size-1)/size, 1)
	}
	start := min((page-1)*size, len(records))
	end := min(start+size, len(records))
	return Result{
		Records:    records[start:end],
		Pagination: &Pagination{Total: len(records), Pages: pages},
	}, nil
}

// Delete implements Mutator by rewriting the fixture without the record.
func (f *Files) Delete(ctx context.Context, endpoint, id string) error {
	return f.edit(ctx, endpoint, id, func(records []record.Record, i int) []record.Record {
		return append(records[:i], records[i+1:]...)
	})
}

// Update implements Mutator by merging fields into the record.
func (f *Files) Update(ctx context.Context, endpoint, id string, fields map[string]any) error {
	return f.edit(ctx, endpoint, id, func(records []record.Record, i int) []record.Record {
		next := make(record.Record, len(records[i])+len(fields))
		for k, v := range records[i] {
			next[k] = v
		}
		for k, v := range fields {
			next[k] = v
		}
		records[i] = next
		return records
	})
}

func (f *Files) edit(ctx context.Context, endpoint, id string, fn func([]record.Record, int) []record.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	records, err := f.read(endpoint)
	if err != nil {
		return err
	}
	for i, r := range records {
		if r.ID() == id {
			return f.write(endpoint, fn(records, i))
		}
	}
	return fmt.Errorf("source: %s/%s: %w", endpoint, id, ErrNotFound)
}
