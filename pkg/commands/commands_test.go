package commands

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSubcommands(t *testing.T) {
	root := New()
	var got []string
	for _, c := range root.Commands() {
		got = append(got, c.Name())
	}
	sort.Strings(got)
	want := []string{"completion", "delete", "edit", "list", "mcp", "pages", "ui", "version"}
	// cobra adds help lazily, so it may or may not be present.
	filtered := got[:0]
	for _, name := range got {
		if name != "help" {
			filtered = append(filtered, name)
		}
	}
	if diff := cmp.Diff(want, filtered); diff != "" {
		t.Fatalf("subcommands (-want +got):\n%s", diff)
	}
}

func TestListFlagsBecomeAdjustments(t *testing.T) {
	root := New()
	list, _, err := root.Find([]string{"list"})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if err := list.ParseFlags([]string{"--filter", "status=approved", "-f", "type=lost", "--search", "", "--time", "last7d", "--order", "asc"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if !list.Flags().Changed("search") || !list.Flags().Changed("filter") {
		t.Fatal("flags not marked as changed")
	}
	if list.Flags().Changed("query") {
		t.Fatal("query marked as changed")
	}
}
