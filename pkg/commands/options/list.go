package options

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/campus/pkg/app"
	"tableflip.dev/campus/pkg/timewindow"
)

// ListOptions are the view adjustments accepted by list-like commands.
type ListOptions struct {
	Query     string
	Search    string
	Filters   []string
	Time      string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
	View      string
	Width     int
	ShowID    bool
	NoHistory bool
}

func AddListArgs(cmd *cobra.Command, o *ListOptions) {
	windows := make([]string, 0, len(timewindow.Windows()))
	for _, w := range timewindow.Windows() {
		windows = append(windows, w.String())
	}

	cmd.Flags().StringVarP(&o.Query, "query", "q", "",
		"Start from this query string instead of the remembered one.")
	cmd.Flags().StringVarP(&o.Search, "search", "s", "",
		"Case-insensitive free-text search.")
	cmd.Flags().StringArrayVarP(&o.Filters, "filter", "f", nil,
		"Filter as field=value. Repeatable; an empty value clears the filter.")
	cmd.Flags().StringVarP(&o.Time, "time", "t", "",
		"Time window, one of: "+strings.Join(windows, ", ")+".")
	cmd.Flags().StringVar(&o.SortBy, "sort", "",
		"Field to sort by.")
	cmd.Flags().StringVar(&o.SortOrder, "order", "",
		"Sort order, asc or desc.")
	cmd.Flags().IntVarP(&o.Page, "page", "p", 0,
		"Page number, starting at 1.")
	cmd.Flags().IntVarP(&o.PageSize, "page-size", "n", 0,
		"Rows per page.")
	cmd.Flags().StringVar(&o.View, "view", "",
		"Force grid or table. Chosen from the terminal width when empty.")
	cmd.Flags().IntVar(&o.Width, "width", 0,
		"Pretend the terminal is this many columns wide.")
	cmd.Flags().BoolVar(&o.ShowID, "id", false,
		"Show record ids.")
	cmd.Flags().BoolVar(&o.NoHistory, "no-history", false,
		"Do not remember the resulting query.")
}

// QueryOverride returns the starting query when --query was given.
func (o *ListOptions) QueryOverride(cmd *cobra.Command) *string {
	if !cmd.Flags().Changed("query") {
		return nil
	}
	q := strings.TrimPrefix(strings.TrimSpace(o.Query), "?")
	return &q
}

// Adjustments converts the flags into view adjustments. Only flags the user
// set take part.
func (o *ListOptions) Adjustments(cmd *cobra.Command) (app.Adjustments, error) {
	adj := app.Adjustments{
		Time:      o.Time,
		SortBy:    o.SortBy,
		SortOrder: o.SortOrder,
		Page:      o.Page,
		PageSize:  o.PageSize,
		View:      o.View,
	}
	if cmd.Flags().Changed("search") {
		adj.Search = &o.Search
	}
	if len(o.Filters) > 0 {
		adj.Filters = make(map[string]string, len(o.Filters))
		for _, pair := range o.Filters {
			field, value, ok := strings.Cut(pair, "=")
			if !ok || strings.TrimSpace(field) == "" {
				return adj, fmt.Errorf("--filter %q: expected field=value", pair)
			}
			adj.Filters[strings.TrimSpace(field)] = strings.TrimSpace(value)
		}
	}
	return adj, adj.Validate()
}
