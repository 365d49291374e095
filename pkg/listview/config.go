package listview

import (
	"fmt"
	"sort"
	"strings"

	"tableflip.dev/campus/pkg/record"
)

// SortKind selects how a sortable field is compared.
type SortKind int

const (
	// SortText compares case-folded strings.
	SortText SortKind = iota
	// SortNumber compares numerically; missing or invalid values count as 0.
	SortNumber
	// SortTime compares parsed timestamps; missing or invalid values count
	// as the Unix epoch.
	SortTime
)

// SortField is one entry of a page's sort allow-list.
type SortField struct {
	Name  string
	Label string
	Kind  SortKind
}

// FilterDescriptor declares a field-equality filter offered by a page.
type FilterDescriptor struct {
	// Field is the dotted record path compared against the selected value.
	Field string
	// Key is the query-string key. Empty means Field.
	Key   string
	Label string
	// Values is the allow-list. When empty the options are derived from the
	// data and any decoded value is accepted.
	Values []string
}

// QueryKey returns the query-string key used for the filter.
func (d FilterDescriptor) QueryKey() string {
	if d.Key != "" {
		return d.Key
	}
	return d.Field
}

// Derived reports whether the options come from the data.
func (d FilterDescriptor) Derived() bool {
	return len(d.Values) == 0
}

// normalize maps raw onto the declared value it matches case-insensitively.
// Derived filters accept any value as-is.
func (d FilterDescriptor) normalize(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || d.Derived() {
		return raw, true
	}
	for _, v := range d.Values {
		if strings.EqualFold(v, raw) {
			return v, true
		}
	}
	return "", false
}

// Keys names the query-string keys of the shared vocabulary.
type Keys struct {
	Search    string
	Page      string
	PageSize  string
	View      string
	Time      string
	SortBy    string
	SortOrder string
}

// DefaultKeys returns the shared vocabulary.
func DefaultKeys() Keys {
	return Keys{
		Search:    "search",
		Page:      "page",
		PageSize:  "pageSize",
		View:      "view",
		Time:      "time",
		SortBy:    "sortBy",
		SortOrder: "sortOrder",
	}
}

func (k Keys) withDefaults() Keys {
	d := DefaultKeys()
	if k.Search == "" {
		k.Search = d.Search
	}
	if k.Page == "" {
		k.Page = d.Page
	}
	if k.PageSize == "" {
		k.PageSize = d.PageSize
	}
	if k.View == "" {
		k.View = d.View
	}
	if k.Time == "" {
		k.Time = d.Time
	}
	if k.SortBy == "" {
		k.SortBy = d.SortBy
	}
	if k.SortOrder == "" {
		k.SortOrder = d.SortOrder
	}
	return k
}

// DefaultPageSize is used when a page does not declare one.
const DefaultPageSize = 10

// PageConfig parametrises one list page.
type PageConfig struct {
	Name string
	// Endpoint is the backend collection path.
	Endpoint        string
	SearchFields    []string
	Filters         []FilterDescriptor
	SortFields      []SortField
	DefaultSort     string
	DefaultPageSize int
	Keys            Keys
	// AlwaysEmit lists query keys written even when they hold their default,
	// for shareable links (for example the page and view keys).
	AlwaysEmit []string
	// ServerPaged pages receive one page at a time from the backend, so the
	// slice step is skipped and the total comes from the server.
	ServerPaged bool
}

// ConfigError reports a page configuration problem that was absorbed by
// falling back to a default.
type ConfigError struct {
	Page   string
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("listview: page %q: %s: %s", e.Page, e.Field, e.Reason)
}

// Normalize fills blanks with defaults and repairs an inconsistent
// configuration. Every repair is reported as a ConfigError; none is fatal.
func (c PageConfig) Normalize() (PageConfig, []error) {
	var errs []error
	c.Keys = c.Keys.withDefaults()
	if c.DefaultPageSize < 1 {
		if c.DefaultPageSize != 0 {
			errs = append(errs, &ConfigError{Page: c.Name, Field: "defaultPageSize", Reason: fmt.Sprintf("%d is not positive", c.DefaultPageSize)})
		}
		c.DefaultPageSize = DefaultPageSize
	}
	if len(c.SortFields) == 0 {
		c.SortFields = []SortField{{Name: "createdAt", Label: "Created", Kind: SortTime}}
	}
	if _, ok := c.SortField(c.DefaultSort); !ok {
		if c.DefaultSort != "" {
			errs = append(errs, &ConfigError{Page: c.Name, Field: "defaultSort", Reason: fmt.Sprintf("%q is not sortable", c.DefaultSort)})
		}
		c.DefaultSort = c.SortFields[0].Name
	}
	seen := map[string]bool{}
	filters := make([]FilterDescriptor, 0, len(c.Filters))
	for _, f := range c.Filters {
		if f.Field == "" {
			errs = append(errs, &ConfigError{Page: c.Name, Field: "filters", Reason: "filter without a field"})
			continue
		}
		if seen[f.Field] {
			errs = append(errs, &ConfigError{Page: c.Name, Field: "filters", Reason: fmt.Sprintf("duplicate filter %q", f.Field)})
			continue
		}
		seen[f.Field] = true
		filters = append(filters, f)
	}
	c.Filters = filters
	return c, errs
}

// SortField looks a field up in the sort allow-list.
func (c PageConfig) SortField(name string) (SortField, bool) {
	for _, f := range c.SortFields {
		if f.Name == name {
			return f, true
		}
	}
	return SortField{}, false
}

// FilterFor looks a filter up by record field.
func (c PageConfig) FilterFor(field string) (FilterDescriptor, bool) {
	for _, f := range c.Filters {
		if f.Field == field {
			return f, true
		}
	}
	return FilterDescriptor{}, false
}

func (c PageConfig) alwaysEmits(key string) bool {
	for _, k := range c.AlwaysEmit {
		if k == key {
			return true
		}
	}
	return false
}

// FilterOptions returns the values offered for a filter: the declared
// values, or the sorted distinct non-empty values present in records.
func FilterOptions(records []record.Record, d FilterDescriptor) []string {
	if !d.Derived() {
		out := make([]string, len(d.Values))
		copy(out, d.Values)
		return out
	}
	set := map[string]struct{}{}
	for _, r := range records {
		if v := r.String(d.Field); v != "" {
			set[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
