// Package pages declares the list pages of the campus-services console.
package pages

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"tableflip.dev/campus/pkg/listview"
)

// ErrUnknownPage is returned when a page name or alias is not registered.
var ErrUnknownPage = errors.New("pages: unknown page")

// Column is one column of the table view.
type Column struct {
	Header string
	Field  string
	// Width caps the rendered cell; 0 means no cap.
	Width int
}

// Page is a list page: its list-view configuration plus what the printers
// need to render it.
type Page struct {
	listview.PageConfig

	Title   string
	Aliases []string
	Columns []Column
	// CardTitle is the field shown as the heading of a grid card.
	CardTitle string
	// Badges are fields rendered as coloured badges on cards.
	Badges []string
	// ReadOnly pages do not offer deletion or edits.
	ReadOnly bool
}

// Matches reports whether name is the page's name or one of its aliases.
func (p Page) Matches(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == p.Name {
		return true
	}
	for _, a := range p.Aliases {
		if a == name {
			return true
		}
	}
	return false
}

var created = listview.SortField{Name: "createdAt", Label: "Created", Kind: listview.SortTime}

// Builtin returns the pages served by the campus-services backend.
func Builtin() []Page {
	return []Page{
		{
			PageConfig: listview.PageConfig{
				Name:         "groups",
				Endpoint:     "/groups",
				SearchFields: []string{"name", "description", "category"},
				Filters: []listview.FilterDescriptor{
					{Field: "category", Label: "Category"},
				},
				SortFields: []listview.SortField{
					created,
					{Name: "name", Label: "Name", Kind: listview.SortText},
					{Name: "memberCount", Label: "Members", Kind: listview.SortNumber},
				},
				DefaultSort:     "createdAt",
				DefaultPageSize: 12,
				AlwaysEmit:      []string{"page", "view"},
			},
			Title:     "Groups",
			Aliases:   []string{"group"},
			CardTitle: "name",
			Badges:    []string{"category"},
			Columns: []Column{
				{Header: "Name", Field: "name", Width: 32},
				{Header: "Category", Field: "category"},
				{Header: "Members", Field: "memberCount"},
				{Header: "Created", Field: "createdAt"},
			},
		},
		{
			PageConfig: listview.PageConfig{
				Name:         "lostfound",
				Endpoint:     "/lostfound",
				SearchFields: []string{"itemName", "description", "location", "contactName"},
				Filters: []listview.FilterDescriptor{
					{Field: "type", Label: "Type", Values: []string{"lost", "found"}},
					{Field: "status", Label: "Status", Values: []string{"pending", "approved", "rejected", "resolved"}},
				},
				SortFields: []listview.SortField{
					created,
					{Name: "itemName", Label: "Item", Kind: listview.SortText},
					{Name: "dateLostFound", Label: "Date", Kind: listview.SortTime},
				},
				DefaultSort: "createdAt",
				Keys:        listview.Keys{Time: "timeFilter"},
			},
			Title:     "Lost & Found",
			Aliases:   []string{"lost-found", "lost", "found"},
			CardTitle: "itemName",
			Badges:    []string{"type", "status"},
			Columns: []Column{
				{Header: "Item", Field: "itemName", Width: 28},
				{Header: "Type", Field: "type"},
				{Header: "Status", Field: "status"},
				{Header: "Location", Field: "location", Width: 24},
				{Header: "Created", Field: "createdAt"},
			},
		},
		{
			PageConfig: listview.PageConfig{
				Name:         "products",
				Endpoint:     "/products",
				SearchFields: []string{"name", "description", "category"},
				Filters: []listview.FilterDescriptor{
					{Field: "category", Label: "Category"},
					{Field: "deleted", Label: "Deleted", Values: []string{"true", "false"}},
				},
				SortFields: []listview.SortField{
					created,
					{Name: "name", Label: "Name", Kind: listview.SortText},
					{Name: "price", Label: "Price", Kind: listview.SortNumber},
					{Name: "stock", Label: "Stock", Kind: listview.SortNumber},
				},
				DefaultSort:     "createdAt",
				DefaultPageSize: 12,
				AlwaysEmit:      []string{"page", "view"},
			},
			Title:     "Products",
			Aliases:   []string{"product", "shop"},
			CardTitle: "name",
			Badges:    []string{"category"},
			Columns: []Column{
				{Header: "Name", Field: "name", Width: 28},
				{Header: "Category", Field: "category"},
				{Header: "Price", Field: "price"},
				{Header: "Stock", Field: "stock"},
				{Header: "Created", Field: "createdAt"},
			},
		},
		{
			PageConfig: listview.PageConfig{
				Name:         "orders",
				Endpoint:     "/orders",
				SearchFields: []string{"orderNumber", "user.name", "user.email"},
				Filters: []listview.FilterDescriptor{
					{Field: "status", Label: "Status", Values: []string{"pending", "processing", "completed", "cancelled"}},
					{Field: "paymentStatus", Label: "Payment", Values: []string{"pending", "paid", "failed", "refunded"}},
				},
				SortFields: []listview.SortField{
					created,
					{Name: "totalAmount", Label: "Total", Kind: listview.SortNumber},
					{Name: "orderNumber", Label: "Order", Kind: listview.SortText},
				},
				DefaultSort: "createdAt",
			},
			Title:     "Orders",
			Aliases:   []string{"order"},
			CardTitle: "orderNumber",
			Badges:    []string{"status", "paymentStatus"},
			Columns: []Column{
				{Header: "Order", Field: "orderNumber"},
				{Header: "Customer", Field: "user.name", Width: 24},
				{Header: "Total", Field: "totalAmount"},
				{Header: "Status", Field: "status"},
				{Header: "Payment", Field: "paymentStatus"},
				{Header: "Created", Field: "createdAt"},
			},
		},
		{
			PageConfig: listview.PageConfig{
				Name:         "transactions",
				Endpoint:     "/transactions",
				SearchFields: []string{"reference", "description", "user.name"},
				Filters: []listview.FilterDescriptor{
					{Field: "type", Label: "Type", Values: []string{"credit", "debit", "refund"}},
					{Field: "status", Label: "Status", Values: []string{"pending", "completed", "failed"}},
				},
				SortFields: []listview.SortField{
					created,
					{Name: "amount", Label: "Amount", Kind: listview.SortNumber},
				},
				DefaultSort: "createdAt",
			},
			Title:     "Transactions",
			Aliases:   []string{"tx", "transaction"},
			CardTitle: "reference",
			Badges:    []string{"type", "status"},
			ReadOnly:  true,
			Columns: []Column{
				{Header: "Reference", Field: "reference"},
				{Header: "User", Field: "user.name", Width: 24},
				{Header: "Amount", Field: "amount"},
				{Header: "Type", Field: "type"},
				{Header: "Status", Field: "status"},
				{Header: "Created", Field: "createdAt"},
			},
		},
		{
			PageConfig: listview.PageConfig{
				Name:         "seniors",
				Endpoint:     "/seniors",
				SearchFields: []string{"name", "email", "department"},
				Filters: []listview.FilterDescriptor{
					{Field: "submissionStatus", Label: "Submission", Values: []string{"pending", "submitted", "approved", "rejected"}},
					{Field: "department", Label: "Department"},
				},
				SortFields: []listview.SortField{
					created,
					{Name: "name", Label: "Name", Kind: listview.SortText},
				},
				DefaultSort: "createdAt",
			},
			Title:     "Seniors",
			Aliases:   []string{"senior"},
			CardTitle: "name",
			Badges:    []string{"submissionStatus"},
			Columns: []Column{
				{Header: "Name", Field: "name", Width: 24},
				{Header: "Email", Field: "email", Width: 28},
				{Header: "Department", Field: "department"},
				{Header: "Submission", Field: "submissionStatus"},
				{Header: "Created", Field: "createdAt"},
			},
		},
		{
			PageConfig: listview.PageConfig{
				Name:         "users",
				Endpoint:     "/users",
				SearchFields: []string{"name", "email"},
				Filters: []listview.FilterDescriptor{
					{Field: "role", Label: "Role", Values: []string{"admin", "editor", "viewer"}},
				},
				SortFields: []listview.SortField{
					created,
					{Name: "name", Label: "Name", Kind: listview.SortText},
					{Name: "lastLogin", Label: "Last login", Kind: listview.SortTime},
				},
				DefaultSort: "createdAt",
			},
			Title:     "Dashboard users",
			Aliases:   []string{"user", "admins"},
			CardTitle: "name",
			Badges:    []string{"role"},
			Columns: []Column{
				{Header: "Name", Field: "name", Width: 24},
				{Header: "Email", Field: "email", Width: 28},
				{Header: "Role", Field: "role"},
				{Header: "Last login", Field: "lastLogin"},
			},
		},
		{
			PageConfig: listview.PageConfig{
				Name:         "solutions",
				Endpoint:     "/solutions",
				SearchFields: []string{"title", "subject", "author.name"},
				Filters: []listview.FilterDescriptor{
					{Field: "subject", Label: "Subject"},
				},
				SortFields: []listview.SortField{
					created,
					{Name: "title", Label: "Title", Kind: listview.SortText},
					{Name: "views", Label: "Views", Kind: listview.SortNumber},
				},
				DefaultSort: "createdAt",
				ServerPaged: true,
			},
			Title:     "Solutions",
			Aliases:   []string{"solution"},
			CardTitle: "title",
			Badges:    []string{"subject"},
			Columns: []Column{
				{Header: "Title", Field: "title", Width: 32},
				{Header: "Subject", Field: "subject"},
				{Header: "Author", Field: "author.name"},
				{Header: "Views", Field: "views"},
				{Header: "Created", Field: "createdAt"},
			},
		},
	}
}

// Registry looks pages up by name or alias.
type Registry struct {
	pages []Page
}

// NewRegistry builds a registry over pages.
func NewRegistry(pages ...Page) *Registry {
	return &Registry{pages: pages}
}

// Default is a registry of the built-in pages.
func Default() *Registry {
	return NewRegistry(Builtin()...)
}

// Lookup finds a page by name or alias.
func (r *Registry) Lookup(name string) (Page, error) {
	for _, p := range r.pages {
		if p.Matches(name) {
			return p, nil
		}
	}
	return Page{}, fmt.Errorf("%w %q (known: %s)", ErrUnknownPage, name, strings.Join(r.Names(), ", "))
}

// Names returns the registered page names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.pages))
	for _, p := range r.pages {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

// All returns every page in name order.
func (r *Registry) All() []Page {
	out := make([]Page, len(r.pages))
	copy(out, r.pages)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// WithPageSizes returns a registry whose pages use the given default page
// sizes, keyed by page name.
func (r *Registry) WithPageSizes(sizes map[string]int) *Registry {
	out := make([]Page, len(r.pages))
	for i, p := range r.pages {
		if n, ok := sizes[p.Name]; ok && n > 0 {
			p.DefaultPageSize = n
		}
		out[i] = p
	}
	return NewRegistry(out...)
}
