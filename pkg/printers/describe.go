package printers

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"tableflip.dev/campus/pkg/listview"
	"tableflip.dev/campus/pkg/pages"
)

// DescribeMarkdown documents a page's query vocabulary as markdown.
func DescribeMarkdown(page pages.Page) string {
	cfg, _ := page.Normalize()
	k := cfg.Keys
	b := strings.Builder{}
	fmt.Fprintf(&b, "# %s\n\n", page.Title)
	fmt.Fprintf(&b, "Endpoint `%s`, name `%s`", cfg.Endpoint, cfg.Name)
	if len(page.Aliases) > 0 {
		fmt.Fprintf(&b, ", aliases `%s`", strings.Join(page.Aliases, "`, `"))
	}
	b.WriteString(".\n\n")
	if cfg.ServerPaged {
		b.WriteString("Pages are fetched from the server one at a time.\n\n")
	}

	b.WriteString("## Query keys\n\n")
	b.WriteString("| Key | Meaning | Default |\n|---|---|---|\n")
	fmt.Fprintf(&b, "| `%s` | search over %s | |\n", k.Search, strings.Join(cfg.SearchFields, ", "))
	fmt.Fprintf(&b, "| `%s` | time window | none |\n", k.Time)
	fmt.Fprintf(&b, "| `%s` | sort field | %s |\n", k.SortBy, cfg.DefaultSort)
	fmt.Fprintf(&b, "| `%s` | asc or desc | desc |\n", k.SortOrder)
	fmt.Fprintf(&b, "| `%s` | page number | 1 |\n", k.Page)
	fmt.Fprintf(&b, "| `%s` | rows per page | %d |\n", k.PageSize, cfg.DefaultPageSize)
	fmt.Fprintf(&b, "| `%s` | grid or table | by width |\n", k.View)
	for _, f := range cfg.Filters {
		values := "from data"
		if !f.Derived() {
			values = strings.Join(f.Values, ", ")
		}
		fmt.Fprintf(&b, "| `%s` | %s (%s) | |\n", f.QueryKey(), f.Label, values)
	}

	b.WriteString("\n## Sortable fields\n\n")
	for _, f := range cfg.SortFields {
		fmt.Fprintf(&b, "- `%s` %s (%s)\n", f.Name, f.Label, sortKind(f.Kind))
	}
	if len(cfg.AlwaysEmit) > 0 {
		fmt.Fprintf(&b, "\nAlways in links: `%s`.\n", strings.Join(cfg.AlwaysEmit, "`, `"))
	}
	return b.String()
}

func sortKind(k listview.SortKind) string {
	switch k {
	case listview.SortNumber:
		return "number"
	case listview.SortTime:
		return "time"
	default:
		return "text"
	}
}

// Describe renders DescribeMarkdown for the terminal.
func Describe(page pages.Page) (string, error) {
	return glamour.Render(DescribeMarkdown(page), "dark")
}
