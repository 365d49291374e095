package app

import (
	"fmt"

	"tableflip.dev/campus/pkg/listview"
	"tableflip.dev/campus/pkg/timewindow"
)

// Adjustments are view changes requested up front, by command-line flags
// or tool arguments, and applied on top of the starting query.
type Adjustments struct {
	Search    *string
	Filters   map[string]string
	Time      string
	SortBy    string
	SortOrder string
	PageSize  int
	Page      int
	View      string
}

// Validate checks the values that have a fixed vocabulary.
func (a Adjustments) Validate() error {
	if a.Time != "" {
		if _, ok := timewindow.Parse(a.Time); !ok {
			return fmt.Errorf("app: unknown time window %q", a.Time)
		}
	}
	if a.SortOrder != "" {
		if _, ok := listview.ParseSortOrder(a.SortOrder); !ok {
			return fmt.Errorf("app: sort order %q: expected asc or desc", a.SortOrder)
		}
	}
	if a.View != "" {
		if _, ok := listview.ParseViewMode(a.View); !ok {
			return fmt.Errorf("app: view %q: expected grid or table", a.View)
		}
	}
	return nil
}

// fit checks the page-specific names before anything is applied, since
// every controller change is written to history as it happens.
func (a Adjustments) fit(cfg listview.PageConfig) error {
	for field := range a.Filters {
		if _, ok := cfg.FilterFor(field); !ok {
			return fmt.Errorf("app: page %s has no filter %q", cfg.Name, field)
		}
	}
	if a.SortBy != "" {
		if _, ok := cfg.SortField(a.SortBy); !ok {
			return fmt.Errorf("app: page %s cannot sort by %q", cfg.Name, a.SortBy)
		}
	}
	return nil
}

// Apply runs the adjustments through the controller in an order where the
// requested page survives the page resets caused by the other changes.
func (a Adjustments) Apply(c *listview.Controller) error {
	if err := a.Validate(); err != nil {
		return err
	}
	cfg := c.Config()
	if err := a.fit(cfg); err != nil {
		return err
	}
	if a.Search != nil {
		c.SetSearch(*a.Search)
	}
	for field, value := range a.Filters {
		c.SetFilter(field, value)
	}
	if a.Time != "" {
		w, _ := timewindow.Parse(a.Time)
		c.SetTimeWindow(w)
	}
	if a.PageSize > 0 {
		c.SetPageSize(a.PageSize)
	}
	if a.SortBy != "" || a.SortOrder != "" {
		state := c.Snapshot().State
		field, order := state.SortBy, state.SortOrder
		if a.SortBy != "" {
			field = a.SortBy
		}
		if a.SortOrder != "" {
			order, _ = listview.ParseSortOrder(a.SortOrder)
		}
		c.SetSort(field, order)
	}
	if a.View != "" {
		mode, _ := listview.ParseViewMode(a.View)
		c.SetViewMode(mode)
	}
	if a.Page > 0 {
		c.SetPage(a.Page)
	}
	return nil
}
