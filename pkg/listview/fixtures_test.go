package listview

import (
	"fmt"
	"time"

	"tableflip.dev/campus/pkg/record"
)

var testNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

func lostFoundConfig() PageConfig {
	return PageConfig{
		Name:         "lostfound",
		Endpoint:     "/lostfound",
		SearchFields: []string{"itemName", "location", "description"},
		Filters: []FilterDescriptor{
			{Field: "type", Label: "Type", Values: []string{"lost", "found"}},
			{Field: "status", Label: "Status", Values: []string{"pending", "approved", "rejected"}},
			{Field: "location", Label: "Location"},
		},
		SortFields: []SortField{
			{Name: "createdAt", Label: "Created", Kind: SortTime},
			{Name: "itemName", Label: "Item", Kind: SortText},
			{Name: "reward", Label: "Reward", Kind: SortNumber},
		},
		DefaultSort: "createdAt",
		Keys:        Keys{Time: "timeFilter"},
	}
}

// twentyFive returns 25 records created one hour apart, newest first,
// alternating lost and found.
func twentyFive() []record.Record {
	out := make([]record.Record, 0, 25)
	for i := 0; i < 25; i++ {
		kind := "lost"
		if i%2 == 1 {
			kind = "found"
		}
		out = append(out, record.Record{
			"_id":       fmt.Sprintf("r%02d", i),
			"itemName":  fmt.Sprintf("Item %02d", i),
			"type":      kind,
			"status":    "pending",
			"location":  "Library",
			"reward":    float64(i),
			"createdAt": testNow.Add(-time.Duration(i) * time.Hour).Format(time.RFC3339),
		})
	}
	return out
}

func ids(rows []record.Record) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID())
	}
	return out
}
