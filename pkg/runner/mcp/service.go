// Package mcp provides the Model Context Protocol server integration for
// the campus console.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tableflip.dev/campus/pkg/app"
	"tableflip.dev/campus/pkg/listview"
	"tableflip.dev/campus/pkg/pages"
	"tableflip.dev/campus/pkg/printers"
)

// Service coordinates the list-page operations exposed by the MCP server.
type Service struct {
	App *app.Service
}

// NewService builds a service wrapper around the application service.
func NewService(a *app.Service) *Service {
	return &Service{App: a}
}

// FilterDTO describes one filter of a page.
type FilterDTO struct {
	Key    string   `json:"key"`
	Field  string   `json:"field"`
	Label  string   `json:"label"`
	Values []string `json:"values,omitempty"`
}

// PageDTO is a transport-friendly description of a list page.
type PageDTO struct {
	Name            string      `json:"name"`
	Title           string      `json:"title"`
	Endpoint        string      `json:"endpoint"`
	Aliases         []string    `json:"aliases,omitempty"`
	SearchFields    []string    `json:"searchFields"`
	Filters         []FilterDTO `json:"filters"`
	SortFields      []string    `json:"sortFields"`
	DefaultSort     string      `json:"defaultSort"`
	DefaultPageSize int         `json:"defaultPageSize"`
	TimeKey         string      `json:"timeKey"`
	ServerPaged     bool        `json:"serverPaged"`
	ReadOnly        bool        `json:"readOnly"`
}

func toPageDTO(p pages.Page) PageDTO {
	cfg, _ := p.Normalize()
	dto := PageDTO{
		Name:            cfg.Name,
		Title:           p.Title,
		Endpoint:        cfg.Endpoint,
		Aliases:         p.Aliases,
		SearchFields:    cfg.SearchFields,
		Filters:         make([]FilterDTO, 0, len(cfg.Filters)),
		DefaultSort:     cfg.DefaultSort,
		DefaultPageSize: cfg.DefaultPageSize,
		TimeKey:         cfg.Keys.Time,
		ServerPaged:     cfg.ServerPaged,
		ReadOnly:        p.ReadOnly,
	}
	for _, f := range cfg.Filters {
		dto.Filters = append(dto.Filters, FilterDTO{Key: f.QueryKey(), Field: f.Field, Label: f.Label, Values: f.Values})
	}
	for _, f := range cfg.SortFields {
		dto.SortFields = append(dto.SortFields, f.Name)
	}
	return dto
}

// ListPages describes every page.
func (s *Service) ListPages() ([]PageDTO, error) {
	if s.App == nil {
		return nil, errors.New("application service is not configured")
	}
	all := s.App.AllPages()
	out := make([]PageDTO, 0, len(all))
	for _, p := range all {
		out = append(out, toPageDTO(p))
	}
	return out, nil
}

// DescribePage describes one page.
func (s *Service) DescribePage(name string) (PageDTO, error) {
	if s.App == nil {
		return PageDTO{}, errors.New("application service is not configured")
	}
	p, err := s.App.Page(name)
	if err != nil {
		return PageDTO{}, err
	}
	return toPageDTO(p), nil
}

// ListOptions select one page of records.
type ListOptions struct {
	Page        string
	Query       string
	Adjustments app.Adjustments
}

// ListRecords fetches a page and returns the projected rows. The view is
// ephemeral: it never touches the remembered history.
func (s *Service) ListRecords(ctx context.Context, opts ListOptions) (printers.ListJSON, error) {
	if s.App == nil {
		return printers.ListJSON{}, errors.New("application service is not configured")
	}
	query := strings.TrimPrefix(strings.TrimSpace(opts.Query), "?")
	v, err := s.App.Open(opts.Page, app.OpenOptions{Query: &query, Ephemeral: true})
	if err != nil {
		return printers.ListJSON{}, err
	}
	defer v.Controller.Close()

	v.Controller.Start()
	if err := opts.Adjustments.Apply(v.Controller); err != nil {
		return printers.ListJSON{}, err
	}
	if err := v.Controller.Fetch(ctx); err != nil && !errors.Is(err, listview.ErrFetchInFlight) {
		return printers.ListJSON{}, fmt.Errorf("list %s: %w", v.Page.Name, err)
	}
	return printers.NewListJSON(v.Page, v.Controller.Snapshot()), nil
}

// DeleteRecord removes a record from a page.
func (s *Service) DeleteRecord(ctx context.Context, page, id string) error {
	if s.App == nil {
		return errors.New("application service is not configured")
	}
	if strings.TrimSpace(id) == "" {
		return errors.New("record id is required")
	}
	return s.App.DeleteFrom(ctx, page, id)
}

// UpdateRecord merges "field=value" pairs into a record of a page.
func (s *Service) UpdateRecord(ctx context.Context, page, id string, pairs []string) (map[string]any, error) {
	if s.App == nil {
		return nil, errors.New("application service is not configured")
	}
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("record id is required")
	}
	fields, err := app.ParseFields(pairs)
	if err != nil {
		return nil, err
	}
	if err := s.App.UpdateFrom(ctx, page, id, fields); err != nil {
		return nil, err
	}
	return fields, nil
}
