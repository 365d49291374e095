package store

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/peterbourgon/diskv/v3"
)

// Entry is the remembered view of one list page: the canonical query string
// it was last left with.
type Entry struct {
	Scope   string    `json:"scope"`
	Page    string    `json:"page"`
	Query   string    `json:"query"`
	Updated time.Time `json:"updated"`
}

// History remembers the query string of every list page, per scope. A scope
// is usually the backend the pages were read from, so two backends keep
// separate views. Save replaces the previous entry; there is no back stack.
type History interface {
	Load(scope, page string) (Entry, error)
	Save(scope, page, query string) error
	Erase(scope, page string) error
	List(ctx context.Context, scope string) []Entry
}

// Config locates the history on disk.
type Config interface {
	BasePath() string
}

// BasePath is a Config holding a directory path.
type BasePath string

// BasePath implements Config.
func (b BasePath) BasePath() string { return string(b) }

// Load opens a diskv-backed History.
func Load(cfg Config) (History, error) {
	if cfg == nil {
		return nil, errors.New("store: no configuration")
	}
	basePath := cfg.BasePath()
	if basePath == "" {
		return nil, errors.New("store: history path unknown")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure history path: %w", err)
	}
	return &history{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      256 * 1024,
	}), now: time.Now}, nil
}

type history struct {
	d   *diskv.Diskv
	now func() time.Time
}

func (h *history) Load(scope, page string) (Entry, error) {
	key := toKey(scope, page)
	if !h.d.Has(key) {
		return Entry{Scope: scope, Page: page}, nil
	}
	return h.read(key)
}

func (h *history) read(key string) (Entry, error) {
	val, err := h.d.Read(key)
	if err != nil {
		return Entry{}, err
	}
	var e Entry
	if err := json.Unmarshal(val, &e); err != nil {
		return Entry{}, fmt.Errorf("store: %s: %w", key, err)
	}
	return e, nil
}

func (h *history) Save(scope, page, query string) error {
	data, err := json.Marshal(Entry{Scope: scope, Page: page, Query: query, Updated: h.now().UTC()})
	if err != nil {
		return err
	}
	return h.d.Write(toKey(scope, page), data)
}

func (h *history) Erase(scope, page string) error {
	key := toKey(scope, page)
	if !h.d.Has(key) {
		return nil
	}
	return h.d.Erase(key)
}

func (h *history) List(ctx context.Context, scope string) []Entry {
	prefix := encode(scope) + "-"
	all := make([]Entry, 0)
	for key := range h.d.KeysPrefix(prefix, ctx.Done()) {
		e, err := h.read(key)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", key, err)
			continue
		}
		all = append(all, e)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Page < all[j].Page
	})
	return all
}

// Location adapts one page of a History to the controller's location.
type Location struct {
	History History
	Scope   string
	Page    string
}

// Query returns the remembered query string, "" when there is none.
func (l Location) Query() (string, error) {
	e, err := l.History.Load(l.Scope, l.Page)
	if err != nil {
		return "", err
	}
	return e.Query, nil
}

// Replace overwrites the remembered query string.
func (l Location) Replace(query string) error {
	return l.History.Save(l.Scope, l.Page, query)
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "-")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), pathKey.FileName)
}

// toKey makes `scope-page`, both hex encoded so neither can contain the
// separator or a path character.
func toKey(scope, page string) string {
	return fmt.Sprintf("%s-%s", encode(scope), encode(page))
}

func encode(s string) string {
	if s == "" {
		return "_"
	}
	return hex.EncodeToString([]byte(s))
}
