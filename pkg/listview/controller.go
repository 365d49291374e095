package listview

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"tableflip.dev/campus/pkg/record"
	"tableflip.dev/campus/pkg/source"
	"tableflip.dev/campus/pkg/timewindow"
)

// Status is the lifecycle state of a Controller.
type Status int

const (
	// StatusIdle means nothing has been fetched yet.
	StatusIdle Status = iota
	// StatusLoading means a fetch is in flight.
	StatusLoading
	// StatusReady means the collection is loaded and projected.
	StatusReady
	// StatusError means the last fetch failed.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

var (
	// ErrFetchInFlight is returned when a fetch is requested while another
	// one for the same controller is still outstanding.
	ErrFetchInFlight = errors.New("listview: fetch already in flight")
	// ErrClosed is returned by operations on a closed controller. A fetch
	// that completes after Close also returns it and its result is dropped.
	ErrClosed = errors.New("listview: controller closed")
	// ErrNoSource is returned by Fetch when the controller has no source.
	ErrNoSource = errors.New("listview: no source configured")
)

// Location holds the query string of one page, the way a browser location
// does. Replace overwrites the current entry instead of adding a new one.
type Location interface {
	Query() (string, error)
	Replace(query string) error
}

type memoryLocation struct {
	query string
}

func (m *memoryLocation) Query() (string, error) { return m.query, nil }

func (m *memoryLocation) Replace(query string) error {
	m.query = query
	return nil
}

// Options configure a Controller.
type Options struct {
	Config     PageConfig
	Source     source.Source
	Location   Location
	Policy     ViewportPolicy
	Classifier timewindow.Classifier
	Viewport   Viewport
	Logger     *log.Logger
	Now        func() time.Time
}

// Snapshot is what the presentation layer renders.
type Snapshot struct {
	Status     Status
	State      ViewState
	Projection Projection
	// Err is the message of the last failed fetch, empty otherwise.
	Err       string
	Loading   bool
	Query     string
	PageCount int
	// Loaded is the size of the raw collection.
	Loaded int
	// Stale is set on server-paged pages when the page moved and the
	// collection has to be fetched again.
	Stale bool
}

// Controller owns the ViewState of one list page. Every mutation merges the
// state, replaces the page location with the re-encoded query and recomputes
// the projection before returning, so the last applied change always wins.
type Controller struct {
	cfg       PageConfig
	codec     Codec
	projector Projector
	src       source.Source
	loc       Location
	policy    ViewportPolicy
	viewport  Viewport
	logger    *log.Logger
	now       func() time.Time

	mu         sync.Mutex
	started    bool
	closed     bool
	inFlight   bool
	cancel     context.CancelFunc
	status     Status
	state      ViewState
	defaults   Defaults
	query      string
	records    []record.Record
	pagination *source.Pagination
	projection Projection
	err        string
	stale      bool
}

// New builds a controller. Configuration problems are logged and repaired;
// New never fails.
func New(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	cfg, problems := opts.Config.Normalize()
	for _, err := range problems {
		logger.Warn("page configuration repaired", "err", err)
	}
	loc := opts.Location
	if loc == nil {
		loc = &memoryLocation{}
	}
	viewport := opts.Viewport
	if viewport == nil {
		viewport = FixedViewport(0)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	c := &Controller{
		cfg:       cfg,
		codec:     Codec{cfg: cfg},
		projector: Projector{Config: cfg, Classifier: opts.Classifier},
		src:       opts.Source,
		loc:       loc,
		policy:    opts.Policy,
		viewport:  viewport,
		logger:    logger.With("page", cfg.Name),
		now:       now,
	}
	c.projection = Projection{Rows: []record.Record{}}
	return c
}

// Config returns the normalised page configuration.
func (c *Controller) Config() PageConfig {
	return c.cfg
}

// Start reads the initial ViewState from the page location. It runs at most
// once; Fetch and every mutation call it implicitly.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startLocked()
}

func (c *Controller) startLocked() {
	if c.started {
		return
	}
	c.started = true
	query, err := c.loc.Query()
	if err != nil {
		c.logger.Warn("read page location", "err", err)
		query = ""
	}
	c.defaults = c.codec.Defaults(c.policy.InitialMode(c.viewport.Width()))
	state, fallbacks := c.codec.DecodeWithFallbacks(query, c.defaults)
	for _, fb := range fallbacks {
		c.logger.Debug("query value replaced by default", "key", fb.Key, "value", fb.Value)
	}
	// A view in the starting query was chosen in an earlier session.
	state.ViewModeExplicit = c.codec.namesView(query)
	c.state = state
	c.syncLocked()
}

// Mount starts the controller and issues the first fetch.
func (c *Controller) Mount(ctx context.Context) error {
	c.Start()
	return c.Fetch(ctx)
}

// Refresh re-fetches the collection, for example after a mutation.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.Fetch(ctx)
}

// Fetch loads the collection from the source. Only one fetch runs at a time;
// a second call while one is outstanding returns ErrFetchInFlight. A failed
// fetch clears the collection and records the backend's message; there is no
// automatic retry.
func (c *Controller) Fetch(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.startLocked()
	if c.src == nil {
		c.mu.Unlock()
		return ErrNoSource
	}
	if c.inFlight {
		c.mu.Unlock()
		return ErrFetchInFlight
	}
	c.inFlight = true
	c.status = StatusLoading
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	req := source.Request{
		Endpoint:    c.cfg.Endpoint,
		Page:        c.state.Page,
		PageSize:    c.state.PageSize,
		ServerPaged: c.cfg.ServerPaged,
	}
	src := c.src
	c.mu.Unlock()

	res, err := src.Fetch(ctx, req)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	c.cancel = nil
	if c.closed {
		return ErrClosed
	}
	if err != nil {
		c.status = StatusError
		c.err = errorMessage(err)
		c.records = nil
		c.pagination = nil
		c.logger.Error("fetch failed", "endpoint", req.Endpoint, "err", err)
		c.recomputeLocked()
		return err
	}
	c.status = StatusReady
	c.err = ""
	// The page may have moved while the request was out.
	c.stale = c.cfg.ServerPaged && (c.state.Page != req.Page || c.state.PageSize != req.PageSize)
	c.records = res.Records
	c.pagination = res.Pagination
	c.recomputeLocked()
	return nil
}

func errorMessage(err error) string {
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	return err.Error()
}

// Close disposes the controller. An in-flight fetch is cancelled and its
// result discarded; later mutations are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Snapshot returns the current state for rendering.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startLocked()
	rows := make([]record.Record, len(c.projection.Rows))
	copy(rows, c.projection.Rows)
	return Snapshot{
		Status:     c.status,
		State:      c.state.Clone(),
		Projection: Projection{Rows: rows, TotalMatched: c.projection.TotalMatched},
		Err:        c.err,
		Loading:    c.status == StatusLoading,
		Query:      c.query,
		PageCount:  c.pageCountLocked(),
		Loaded:     len(c.records),
		Stale:      c.stale,
	}
}

// Query returns the canonical query string of the current state.
func (c *Controller) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startLocked()
	return c.query
}

// FilterOptions returns the selectable values of the filter on field.
func (c *Controller) FilterOptions(field string) []string {
	d, ok := c.cfg.FilterFor(field)
	if !ok {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return FilterOptions(c.records, d)
}

// SetSearch changes the free-text query.
func (c *Controller) SetSearch(q string) {
	c.mutate(func(s *ViewState) bool {
		if s.Search == q {
			return false
		}
		s.Search = q
		return true
	})
}

// SetFilter selects value for the filter on field; "" clears it. Unknown
// fields are ignored and values outside a declared allow-list clear the
// filter.
func (c *Controller) SetFilter(field, value string) {
	d, ok := c.cfg.FilterFor(field)
	if !ok {
		c.logger.Warn("ignoring filter", "err", &ConfigError{Page: c.cfg.Name, Field: field, Reason: "not a declared filter"})
		return
	}
	normalized, valid := d.normalize(value)
	if !valid {
		c.logger.Debug("filter value not allowed", "field", field, "value", value)
	}
	c.mutate(func(s *ViewState) bool {
		if s.Filter(field) == normalized {
			return false
		}
		if normalized == "" {
			delete(s.Filters, field)
		} else {
			s.Filters[field] = normalized
		}
		return true
	})
}

// ClearFilters drops the search, every field filter and the time window.
func (c *Controller) ClearFilters() {
	c.mutate(func(s *ViewState) bool {
		changed := s.Search != "" || len(s.Filters) > 0 || s.TimeWindow != timewindow.None
		s.Search = ""
		s.Filters = map[string]string{}
		s.TimeWindow = timewindow.None
		return changed
	})
}

// SetTimeWindow changes the time-window filter. Unknown windows count as
// None.
func (c *Controller) SetTimeWindow(w timewindow.Window) {
	if !w.Valid() {
		w = timewindow.None
	}
	c.mutate(func(s *ViewState) bool {
		if s.TimeWindow == w {
			return false
		}
		s.TimeWindow = w
		return true
	})
}

// SetSort sorts by field in order. A field outside the allow-list falls
// back to the page default.
func (c *Controller) SetSort(field string, order SortOrder) {
	if _, ok := c.cfg.SortField(field); !ok {
		c.logger.Warn("falling back to default sort", "err", &ConfigError{Page: c.cfg.Name, Field: field, Reason: "not sortable"})
		field = c.cfg.DefaultSort
	}
	if order != Asc {
		order = Desc
	}
	c.mutate(func(s *ViewState) bool {
		s.SortBy = field
		s.SortOrder = order
		return false
	})
}

// ToggleSortOrder flips between ascending and descending.
func (c *Controller) ToggleSortOrder() {
	c.mutate(func(s *ViewState) bool {
		s.SortOrder = s.SortOrder.Flip()
		return false
	})
}

// SetPage moves to page n. Pages past the end are allowed; see ClampPage.
func (c *Controller) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	c.mutate(func(s *ViewState) bool {
		s.Page = n
		return false
	})
}

// NextPage advances one page, stopping at the last one.
func (c *Controller) NextPage() {
	c.mutate(func(s *ViewState) bool {
		if s.Page < c.pageCountLocked() {
			s.Page++
		}
		return false
	})
}

// PrevPage goes back one page, stopping at the first one.
func (c *Controller) PrevPage() {
	c.mutate(func(s *ViewState) bool {
		if s.Page > 1 {
			s.Page--
		}
		return false
	})
}

// SetPageSize changes the page size; values below 1 restore the default.
func (c *Controller) SetPageSize(n int) {
	c.mutate(func(s *ViewState) bool {
		if n < 1 {
			n = c.defaults.PageSize
		}
		if s.PageSize == n {
			return false
		}
		s.PageSize = n
		return true
	})
}

// ClampPage pulls the page back into range when the projection shrank
// under it. It reports whether the page changed.
func (c *Controller) ClampPage() bool {
	changed := false
	c.mutate(func(s *ViewState) bool {
		if last := c.pageCountLocked(); s.Page > last {
			s.Page = last
			changed = true
		}
		return false
	})
	return changed
}

// SetViewMode records an explicit user choice of view mode.
func (c *Controller) SetViewMode(m ViewMode) {
	if m != ModeGrid && m != ModeTable {
		return
	}
	c.mutate(func(s *ViewState) bool {
		s.ViewMode = m
		s.ViewModeExplicit = true
		return false
	})
}

// ToggleViewMode switches between grid and table as an explicit choice.
func (c *Controller) ToggleViewMode() {
	c.mutate(func(s *ViewState) bool {
		s.ViewMode = s.ViewMode.Toggle()
		s.ViewModeExplicit = true
		return false
	})
}

// Resize applies the viewport policy for a new width. Only the view mode
// can change.
func (c *Controller) Resize(width int) {
	c.mutate(func(s *ViewState) bool {
		s.ViewMode = c.policy.OnResize(width, *s)
		return false
	})
}

// mutate applies fn to a copy of the state. When fn reports that the match
// set changed the page goes back to 1.
func (c *Controller) mutate(fn func(s *ViewState) (resetPage bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.startLocked()
	prev := c.state
	next := c.state.Clone()
	if fn(&next) {
		next.Page = 1
	}
	c.state = next
	if c.cfg.ServerPaged && (next.Page != prev.Page || next.PageSize != prev.PageSize) {
		c.stale = true
	}
	c.syncLocked()
}

func (c *Controller) syncLocked() {
	query := c.codec.Encode(c.state, c.defaults)
	if query != c.query {
		c.query = query
		if err := c.loc.Replace(query); err != nil {
			c.logger.Warn("replace page location", "err", err)
		}
	}
	c.recomputeLocked()
}

// recomputeLocked projects the last good collection. While a refresh is
// loading that is still the previous fetch.
func (c *Controller) recomputeLocked() {
	if c.status == StatusIdle || c.status == StatusError {
		c.projection = Projection{Rows: []record.Record{}}
		return
	}
	c.projection = c.projector.Project(c.records, c.state, c.now())
	if c.cfg.ServerPaged && c.pagination != nil {
		c.projection.TotalMatched = c.pagination.Total
	}
}

func (c *Controller) pageCountLocked() int {
	return PageCount(c.projection.TotalMatched, c.state.PageSize)
}
