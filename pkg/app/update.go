package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"tableflip.dev/campus/pkg/listview"
)

// Update merges fields into the record id shown by v and re-fetches the
// page.
func (s *Service) Update(ctx context.Context, v *View, id string, fields map[string]any) error {
	if err := s.updateRecord(ctx, v.Page.Name, id, fields); err != nil {
		return err
	}
	if err := v.Controller.Refresh(ctx); err != nil && !errors.Is(err, listview.ErrFetchInFlight) {
		return err
	}
	return nil
}

// UpdateFrom merges fields into a record of the named page without an open
// view.
func (s *Service) UpdateFrom(ctx context.Context, name, id string, fields map[string]any) error {
	return s.updateRecord(ctx, name, id, fields)
}

func (s *Service) updateRecord(ctx context.Context, name, id string, fields map[string]any) error {
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
	if len(fields) == 0 {
		return errors.New("app: nothing to update")
	}
	if err := s.Backend.Update(ctx, page.Endpoint, id, fields); err != nil {
		return err
	}
	s.logger().Info("updated record", "page", page.Name, "id", id, "fields", len(fields))
	return nil
}

// ParseFields reads field=value pairs. Values that are JSON literals
// (true, 12.5, null, "quoted") keep their type; anything else is a string.
func ParseFields(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		field, raw, ok := strings.Cut(pair, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("app: field %q: expected field=value", pair)
		}
		raw = strings.TrimSpace(raw)
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		out[field] = value
	}
	return out, nil
}
