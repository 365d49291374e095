package listview

import (
	"net/url"
	"strconv"
	"strings"

	"tableflip.dev/campus/pkg/timewindow"
)

// Defaults are the values Decode falls back to and Encode omits.
type Defaults struct {
	PageSize int
	SortBy   string
	ViewMode ViewMode
}

// Fallback records a query value that Decode replaced with a default.
type Fallback struct {
	Key   string
	Value string
}

// Codec maps ViewState to and from a query string for one page.
type Codec struct {
	cfg PageConfig
}

// NewCodec builds a codec for cfg. The configuration is normalised first.
func NewCodec(cfg PageConfig) Codec {
	cfg, _ = cfg.Normalize()
	return Codec{cfg: cfg}
}

// Defaults returns the page defaults with the given view mode.
func (c Codec) Defaults(mode ViewMode) Defaults {
	if mode == "" {
		mode = ModeTable
	}
	return Defaults{
		PageSize: c.cfg.DefaultPageSize,
		SortBy:   c.cfg.DefaultSort,
		ViewMode: mode,
	}
}

// Encode writes every field that differs from its default, plus the keys
// the page always emits. Keys come out sorted.
func (c Codec) Encode(s ViewState, d Defaults) string {
	k := c.cfg.Keys
	v := url.Values{}
	put := func(key, value string, isDefault bool) {
		if !isDefault || c.cfg.alwaysEmits(key) {
			v.Set(key, value)
		}
	}

	put(k.Search, s.Search, s.Search == "")
	for _, f := range c.cfg.Filters {
		value := s.Filter(f.Field)
		put(f.QueryKey(), value, value == "")
	}
	put(k.Time, s.TimeWindow.String(), s.TimeWindow == timewindow.None)
	sortBy := s.SortBy
	if sortBy == "" {
		sortBy = d.SortBy
	}
	put(k.SortBy, sortBy, sortBy == d.SortBy)
	order := s.SortOrder
	if order == "" {
		order = Desc
	}
	put(k.SortOrder, string(order), order == Desc)
	page := s.Page
	if page < 1 {
		page = 1
	}
	put(k.Page, strconv.Itoa(page), page == 1)
	size := s.PageSize
	if size < 1 {
		size = d.PageSize
	}
	put(k.PageSize, strconv.Itoa(size), size == d.PageSize)
	mode := s.ViewMode
	if mode == "" {
		mode = d.ViewMode
	}
	put(k.View, string(mode), mode == d.ViewMode)

	return v.Encode()
}

// Decode reads a query string into a ViewState. It never fails: every
// missing or malformed value falls back to its default.
func (c Codec) Decode(query string, d Defaults) ViewState {
	s, _ := c.DecodeWithFallbacks(query, d)
	return s
}

// DecodeWithFallbacks is Decode that also reports the values it corrected.
func (c Codec) DecodeWithFallbacks(query string, d Defaults) (ViewState, []Fallback) {
	k := c.cfg.Keys
	if d.PageSize < 1 {
		d.PageSize = c.cfg.DefaultPageSize
	}
	if d.SortBy == "" {
		d.SortBy = c.cfg.DefaultSort
	}
	if d.ViewMode == "" {
		d.ViewMode = ModeTable
	}

	// ParseQuery keeps every pair it could read even when it reports an
	// error, so a partly malformed query still decodes what it can.
	values, _ := url.ParseQuery(strings.TrimPrefix(strings.TrimSpace(query), "?"))

	var fallbacks []Fallback
	fallback := func(key, value string) {
		fallbacks = append(fallbacks, Fallback{Key: key, Value: value})
	}

	s := ViewState{
		Search:    values.Get(k.Search),
		Filters:   map[string]string{},
		SortBy:    d.SortBy,
		SortOrder: Desc,
		Page:      1,
		PageSize:  d.PageSize,
		ViewMode:  d.ViewMode,
	}

	for _, f := range c.cfg.Filters {
		raw, ok := values[f.QueryKey()]
		if !ok || len(raw) == 0 {
			continue
		}
		value, valid := f.normalize(raw[0])
		if !valid {
			fallback(f.QueryKey(), raw[0])
			continue
		}
		if value != "" {
			s.Filters[f.Field] = value
		}
	}

	if raw := values.Get(k.Time); raw != "" {
		w, ok := timewindow.Parse(raw)
		if !ok {
			fallback(k.Time, raw)
		}
		s.TimeWindow = w
	}

	if raw := values.Get(k.SortBy); raw != "" {
		if _, ok := c.cfg.SortField(raw); ok {
			s.SortBy = raw
		} else {
			fallback(k.SortBy, raw)
		}
	}

	if raw := values.Get(k.SortOrder); raw != "" {
		order, ok := ParseSortOrder(raw)
		if !ok {
			fallback(k.SortOrder, raw)
		}
		s.SortOrder = order
	}

	if raw := values.Get(k.Page); raw != "" {
		if n, ok := parseLeadingInt(raw); ok && n > 0 {
			s.Page = n
		} else {
			fallback(k.Page, raw)
		}
	}

	if raw := values.Get(k.PageSize); raw != "" {
		if n, ok := parseLeadingInt(raw); ok && n > 0 {
			s.PageSize = n
		} else {
			fallback(k.PageSize, raw)
		}
	}

	if raw := values.Get(k.View); raw != "" {
		if mode, ok := ParseViewMode(raw); ok {
			s.ViewMode = mode
		} else {
			fallback(k.View, raw)
		}
	}

	return s, fallbacks
}

// namesView reports whether query carries a valid view mode.
func (c Codec) namesView(query string) bool {
	values, _ := url.ParseQuery(strings.TrimPrefix(strings.TrimSpace(query), "?"))
	_, ok := ParseViewMode(values.Get(c.cfg.Keys.View))
	return ok
}

// parseLeadingInt reads an optionally signed run of leading digits, so
// "12abc" is 12 and "3.7" is 3. Values that do not fit an int are rejected.
func parseLeadingInt(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
