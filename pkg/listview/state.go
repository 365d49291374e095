// Package listview turns a raw in-memory collection plus user-adjustable view
// parameters into a page of rows, and keeps that view state synchronised with
// a canonical query string.
//
// The pieces are layered: Codec maps ViewState to and from a query string,
// ViewportPolicy picks grid or table from the available width, Projector
// filters, sorts and slices records, and Controller owns one ViewState and
// wires the other three together for a single list page.
package listview

import (
	"strings"

	"tableflip.dev/campus/pkg/record"
	"tableflip.dev/campus/pkg/timewindow"
)

// SortOrder is the direction of the active sort.
type SortOrder string

const (
	// Asc sorts smallest first.
	Asc SortOrder = "asc"
	// Desc sorts largest first. It is the default.
	Desc SortOrder = "desc"
)

// ParseSortOrder reads "asc" or "desc", case-insensitively.
func ParseSortOrder(raw string) (SortOrder, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "asc":
		return Asc, true
	case "desc":
		return Desc, true
	default:
		return Desc, false
	}
}

// Flip returns the opposite direction.
func (o SortOrder) Flip() SortOrder {
	if o == Asc {
		return Desc
	}
	return Asc
}

// ViewMode selects grid or table rendering of the same rows.
type ViewMode string

const (
	// ModeGrid renders rows as cards.
	ModeGrid ViewMode = "grid"
	// ModeTable renders rows as a table.
	ModeTable ViewMode = "table"
)

// ParseViewMode reads "grid" or "table". "cards" and "list" are accepted
// as aliases.
func ParseViewMode(raw string) (ViewMode, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "grid", "cards":
		return ModeGrid, true
	case "table", "list":
		return ModeTable, true
	default:
		return "", false
	}
}

// Toggle returns the other mode.
func (m ViewMode) Toggle() ViewMode {
	if m == ModeGrid {
		return ModeTable
	}
	return ModeGrid
}

// ViewState is the canonical, serialisable state of one list view.
type ViewState struct {
	Search     string
	Filters    map[string]string
	TimeWindow timewindow.Window
	SortBy     string
	SortOrder  SortOrder
	Page       int
	PageSize   int
	ViewMode   ViewMode
	// ViewModeExplicit is set once the user picks a mode by hand. It is
	// session state and never travels through the query string.
	ViewModeExplicit bool
}

// Clone returns a copy that shares no maps with s.
func (s ViewState) Clone() ViewState {
	out := s
	out.Filters = make(map[string]string, len(s.Filters))
	for k, v := range s.Filters {
		out.Filters[k] = v
	}
	return out
}

// Filter returns the selected value for field, or "" for no constraint.
func (s ViewState) Filter(field string) string {
	if s.Filters == nil {
		return ""
	}
	return s.Filters[field]
}

// Projection is the filtered, sorted and paginated subset of records on
// screen. It is derived on every relevant change and never cached.
type Projection struct {
	Rows         []record.Record
	TotalMatched int
}

// PageCount returns the number of pages needed for TotalMatched rows. An
// empty result still has one (empty) page.
func PageCount(total, pageSize int) int {
	if pageSize < 1 {
		pageSize = 1
	}
	if total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}
