package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/campus/pkg/app"
	"tableflip.dev/campus/pkg/timewindow"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerListPagesTool(srv, svc)
	registerDescribePageTool(srv, svc)
	registerListRecordsTool(srv, svc)
	registerDeleteRecordTool(srv, svc)
	registerUpdateRecordTool(srv, svc)
}

func registerListPagesTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_pages",
		mcp.WithDescription("List the admin console pages with their filters and sortable fields."),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		all, err := svc.ListPages()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"pages": all,
			"count": len(all),
		})
	})
}

func registerDescribePageTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"describe_page",
		mcp.WithDescription("Describe the query vocabulary of one page."),
		mcp.WithString("page",
			mcp.Required(),
			mcp.Description("Page name or alias, for example lostfound or orders."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("page")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dto, err := svc.DescribePage(name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func timeWindowNames() []string {
	names := make([]string, 0, len(timewindow.Windows()))
	for _, w := range timewindow.Windows() {
		if w == timewindow.None {
			continue
		}
		names = append(names, w.String())
	}
	return names
}

func registerListRecordsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_records",
		mcp.WithDescription("Fetch one page of records, filtered, sorted and paginated the way the console shows them."),
		mcp.WithString("page",
			mcp.Required(),
			mcp.Description("Page name or alias."),
		),
		mcp.WithString("query",
			mcp.Description("Starting query string, for example type=lost&timeFilter=last7d."),
		),
		mcp.WithString("search",
			mcp.Description("Case-insensitive free-text search."),
		),
		mcp.WithString("filters",
			mcp.Description("Comma separated field=value pairs, for example status=approved,type=lost."),
		),
		mcp.WithString("time",
			mcp.Description("Relative time window."),
			mcp.Enum(timeWindowNames()...),
		),
		mcp.WithString("sort_by",
			mcp.Description("Field to sort by; see describe_page."),
		),
		mcp.WithString("sort_order",
			mcp.Description("Sort direction."),
			mcp.Enum("asc", "desc"),
		),
		mcp.WithNumber("page_number",
			mcp.Description("Page number, starting at 1."),
			mcp.Min(1),
		),
		mcp.WithNumber("page_size",
			mcp.Description("Rows per page."),
			mcp.Min(1),
			mcp.Max(200),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Page       string `json:"page"`
			Query      string `json:"query"`
			Search     string `json:"search"`
			Filters    string `json:"filters"`
			Time       string `json:"time"`
			SortBy     string `json:"sort_by"`
			SortOrder  string `json:"sort_order"`
			PageNumber int    `json:"page_number"`
			PageSize   int    `json:"page_size"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if strings.TrimSpace(args.Page) == "" {
			return mcp.NewToolResultError("page is required"), nil
		}
		filters, err := ParseFilters(args.Filters)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		adj := app.Adjustments{
			Filters:   filters,
			Time:      args.Time,
			SortBy:    args.SortBy,
			SortOrder: args.SortOrder,
			Page:      args.PageNumber,
			PageSize:  args.PageSize,
		}
		if args.Search != "" {
			adj.Search = &args.Search
		}

		result, err := svc.ListRecords(ctx, ListOptions{Page: args.Page, Query: args.Query, Adjustments: adj})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(result)
	})
}

func registerDeleteRecordTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"delete_record",
		mcp.WithDescription("Delete a record from a page's collection."),
		mcp.WithString("page",
			mcp.Required(),
			mcp.Description("Page name or alias."),
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Record identifier to delete."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		page, err := request.RequireString("page")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := svc.DeleteRecord(ctx, page, id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"page":    page,
			"id":      id,
			"deleted": true,
		})
	})
}

func registerUpdateRecordTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"update_record",
		mcp.WithDescription("Change fields of a record. Values that read as JSON keep their type."),
		mcp.WithString("page",
			mcp.Required(),
			mcp.Description("Page name or alias."),
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Record identifier to change."),
		),
		mcp.WithString("fields",
			mcp.Required(),
			mcp.Description("Comma separated field=value pairs, for example status=approved,reward=10."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		page, err := request.RequireString("page")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		raw, err := request.RequireString("fields")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var pairs []string
		for _, pair := range strings.Split(raw, ",") {
			if strings.TrimSpace(pair) != "" {
				pairs = append(pairs, pair)
			}
		}
		fields, err := svc.UpdateRecord(ctx, page, id, pairs)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"page":    page,
			"id":      id,
			"updated": fields,
		})
	})
}

// ParseFilters reads "field=value,field=value".
func ParseFilters(raw string) (map[string]string, error) {
	out := map[string]string{}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		field, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(field) == "" {
			return nil, fmt.Errorf("filter %q: expected field=value", pair)
		}
		out[strings.TrimSpace(field)] = strings.TrimSpace(value)
	}
	return out, nil
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
