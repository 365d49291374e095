package printers

import (
	"encoding/json"
	"io"

	"tableflip.dev/campus/pkg/listview"
	"tableflip.dev/campus/pkg/pages"
	"tableflip.dev/campus/pkg/record"
)

// ListJSON is the machine-readable form of a rendered page.
type ListJSON struct {
	Page         string          `json:"page"`
	Query        string          `json:"query"`
	PageNumber   int             `json:"pageNumber"`
	PageSize     int             `json:"pageSize"`
	PageCount    int             `json:"pageCount"`
	TotalMatched int             `json:"totalMatched"`
	ViewMode     string          `json:"view"`
	Error        string          `json:"error,omitempty"`
	Rows         []record.Record `json:"rows"`
}

// NewListJSON converts a snapshot.
func NewListJSON(page pages.Page, snap listview.Snapshot) ListJSON {
	rows := snap.Projection.Rows
	if rows == nil {
		rows = []record.Record{}
	}
	return ListJSON{
		Page:         page.Name,
		Query:        snap.Query,
		PageNumber:   snap.State.Page,
		PageSize:     snap.State.PageSize,
		PageCount:    snap.PageCount,
		TotalMatched: snap.Projection.TotalMatched,
		ViewMode:     string(snap.State.ViewMode),
		Error:        snap.Err,
		Rows:         rows,
	}
}

// PrintJSON writes the snapshot as indented JSON.
func PrintJSON(w io.Writer, page pages.Page, snap listview.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewListJSON(page, snap))
}
