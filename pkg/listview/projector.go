package listview

import (
	"sort"
	"strings"
	"time"

	"tableflip.dev/campus/pkg/record"
	"tableflip.dev/campus/pkg/timewindow"
)

// Projector applies a page's search, filters, time window, sort and
// pagination to an in-memory collection. It is pure: the same inputs always
// give the same projection.
type Projector struct {
	Config     PageConfig
	Classifier timewindow.Classifier
}

// Project runs the pipeline in its fixed order: search, field filters, time
// window, stable sort, slice.
func (p Projector) Project(records []record.Record, s ViewState, now time.Time) Projection {
	matched := p.Match(records, s, now)
	proj := Projection{TotalMatched: len(matched)}
	if p.Config.ServerPaged {
		proj.Rows = matched
		return proj
	}
	proj.Rows = slicePage(matched, s.Page, s.PageSize)
	return proj
}

// Match returns every record that passes the predicates, sorted, without
// pagination.
func (p Projector) Match(records []record.Record, s ViewState, now time.Time) []record.Record {
	query := strings.ToLower(strings.TrimSpace(s.Search))
	out := make([]record.Record, 0, len(records))
	for _, r := range records {
		if !p.matchSearch(r, query) {
			continue
		}
		if !p.matchFilters(r, s) {
			continue
		}
		if !p.matchWindow(r, s.TimeWindow, now) {
			continue
		}
		out = append(out, r)
	}
	p.sort(out, s)
	return out
}

func (p Projector) matchSearch(r record.Record, query string) bool {
	if query == "" {
		return true
	}
	for _, field := range p.Config.SearchFields {
		if strings.Contains(strings.ToLower(r.String(field)), query) {
			return true
		}
	}
	return false
}

func (p Projector) matchFilters(r record.Record, s ViewState) bool {
	for _, f := range p.Config.Filters {
		want := s.Filter(f.Field)
		if want == "" {
			continue
		}
		got := r.String(f.Field)
		if r.IsText(f.Field) {
			if strings.ToLower(got) != strings.ToLower(want) {
				return false
			}
			continue
		}
		if got != want {
			return false
		}
	}
	return true
}

func (p Projector) matchWindow(r record.Record, w timewindow.Window, now time.Time) bool {
	if w == timewindow.None || w == timewindow.All {
		return true
	}
	created, ok := r.CreatedAt()
	if !ok {
		return false
	}
	return p.Classifier.Matches(created, w, now)
}

func (p Projector) sort(rows []record.Record, s ViewState) {
	field, ok := p.Config.SortField(s.SortBy)
	if !ok {
		field, ok = p.Config.SortField(p.Config.DefaultSort)
		if !ok {
			return
		}
	}
	if s.SortOrder == Asc {
		sort.SliceStable(rows, func(i, j int) bool {
			return compare(rows[i], rows[j], field) < 0
		})
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return compare(rows[j], rows[i], field) < 0
	})
}

func compare(a, b record.Record, f SortField) int {
	switch f.Kind {
	case SortNumber:
		x, _ := a.Number(f.Name)
		y, _ := b.Number(f.Name)
		return compareOrdered(x, y)
	case SortTime:
		return compareOrdered(millis(a, f.Name), millis(b, f.Name))
	default:
		return strings.Compare(strings.ToLower(a.String(f.Name)), strings.ToLower(b.String(f.Name)))
	}
}

func millis(r record.Record, path string) int64 {
	t, ok := r.Time(path)
	if !ok {
		return 0
	}
	return t.UnixMilli()
}

func compareOrdered[T int64 | float64](x, y T) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

func slicePage(rows []record.Record, page, size int) []record.Record {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	start := (page - 1) * size
	if start >= len(rows) || start < 0 {
		return []record.Record{}
	}
	end := start + size
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}
