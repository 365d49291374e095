package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"tableflip.dev/campus/pkg/listview"
	"tableflip.dev/campus/pkg/pages"
	"tableflip.dev/campus/pkg/source"
	"tableflip.dev/campus/pkg/store"
	"tableflip.dev/campus/pkg/timewindow"
)

// Service provides the operations shared by the CLI, the TUI and the MCP
// server: opening list views, deleting records and remembering where each
// page was left.
type Service struct {
	Backend    source.Backend
	History    store.History
	Scope      string
	Pages      *pages.Registry
	Policy     listview.ViewportPolicy
	Classifier timewindow.Classifier
	Logger     *log.Logger
	Now        func() time.Time
}

var (
	// ErrReadOnly is returned when changing records of a page that does not
	// allow it.
	ErrReadOnly = errors.New("app: page is read-only")
	// ErrWatchUnsupported is returned by Watch when the backend cannot
	// report changes.
	ErrWatchUnsupported = errors.New("app: backend does not support watching")
)

func (s *Service) registry() *pages.Registry {
	if s.Pages == nil {
		return pages.Default()
	}
	return s.Pages
}

func (s *Service) logger() *log.Logger {
	if s.Logger == nil {
		return log.New(io.Discard)
	}
	return s.Logger
}

// Page looks a page up by name or alias.
func (s *Service) Page(name string) (pages.Page, error) {
	return s.registry().Lookup(name)
}

// AllPages returns every page.
func (s *Service) AllPages() []pages.Page {
	return s.registry().All()
}

// OpenOptions tune a view opened by Open.
type OpenOptions struct {
	// Viewport reports the width at mount. Nil means unknown.
	Viewport listview.Viewport
	// Query, when set, replaces the remembered query string.
	Query *string
	// Ephemeral views never write the history.
	Ephemeral bool
}

// View is an opened list page.
type View struct {
	Page       pages.Page
	Controller *listview.Controller
}

// Open builds a controller for the named page. The returned view is not
// fetched yet; call Mount on its controller.
func (s *Service) Open(name string, opts OpenOptions) (*View, error) {
	if s.Backend == nil {
		return nil, errors.New("app: no backend configured")
	}
	page, err := s.Page(name)
	if err != nil {
		return nil, err
	}
	loc := s.location(page.Name, opts)
	c := listview.New(listview.Options{
		Config:     page.PageConfig,
		Source:     s.Backend,
		Location:   loc,
		Policy:     s.Policy,
		Classifier: s.Classifier,
		Viewport:   opts.Viewport,
		Logger:     s.logger(),
		Now:        s.Now,
	})
	return &View{Page: page, Controller: c}, nil
}

func (s *Service) location(page string, opts OpenOptions) listview.Location {
	var loc listview.Location
	if s.History != nil && !opts.Ephemeral {
		loc = store.Location{History: s.History, Scope: s.Scope, Page: page}
	}
	if opts.Query == nil && loc != nil {
		return loc
	}
	seeded := &seededLocation{next: loc}
	if opts.Query != nil {
		seeded.query = *opts.Query
	}
	return seeded
}

// seededLocation starts from a given query and forwards replacements to
// next, when there is one.
type seededLocation struct {
	query string
	next  listview.Location
}

func (l *seededLocation) Query() (string, error) { return l.query, nil }

func (l *seededLocation) Replace(query string) error {
	l.query = query
	if l.next == nil {
		return nil
	}
	return l.next.Replace(query)
}

// Delete removes the record id shown by v and re-fetches the page.
func (s *Service) Delete(ctx context.Context, v *View, id string) error {
	if v.Page.ReadOnly {
		return fmt.Errorf("%w: %s", ErrReadOnly, v.Page.Name)
	}
	if err := s.Backend.Delete(ctx, v.Page.Endpoint, id); err != nil {
		return err
	}
	s.logger().Info("deleted record", "page", v.Page.Name, "id", id)
	if err := v.Controller.Refresh(ctx); err != nil && !errors.Is(err, listview.ErrFetchInFlight) {
		return err
	}
	return nil
}

// DeleteFrom removes a record from the named page without an open view.
func (s *Service) DeleteFrom(ctx context.Context, name, id string) error {
	page, err := s.Page(name)
	if err != nil {
		return err
	}
	if page.ReadOnly {
		return fmt.Errorf("%w: %s", ErrReadOnly, page.Name)
	}
	if s.Backend == nil {
		return errors.New("app: no backend configured")
	}
	if err := s.Backend.Delete(ctx, page.Endpoint, id); err != nil {
		return err
	}
	s.logger().Info("deleted record", "page", page.Name, "id", id)
	return nil
}

// Watch subscribes to backend change events.
func (s *Service) Watch(ctx context.Context) (<-chan source.Event, error) {
	w, ok := s.Backend.(source.Watcher)
	if !ok {
		return nil, ErrWatchUnsupported
	}
	return w.Watch(ctx)
}

// Remembered returns the history entries of the current scope.
func (s *Service) Remembered(ctx context.Context) []store.Entry {
	if s.History == nil {
		return nil
	}
	return s.History.List(ctx, s.Scope)
}

// Forget drops the remembered query of a page.
func (s *Service) Forget(name string) error {
	if s.History == nil {
		return nil
	}
	page, err := s.Page(name)
	if err != nil {
		return err
	}
	return s.History.Erase(s.Scope, page.Name)
}
