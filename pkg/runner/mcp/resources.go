package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerPagesResource(srv, svc)
	registerPageTemplate(srv, svc)
}

func registerPagesResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"campus://pages",
		"Pages",
		mcp.WithResourceDescription("Every list page of the campus-services console."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		all, err := svc.ListPages()
		if err != nil {
			return nil, err
		}
		payload := map[string]any{
			"pages": all,
			"count": len(all),
		}
		return encodeResourceJSON(request.Params.URI, payload)
	})
}

func registerPageTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"campus://pages/{name}",
		"Page Records",
		mcp.WithTemplateDescription("The first page of records of a list page, default view."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		name, _ := request.Params.Arguments["name"].(string)
		if name == "" {
			return nil, fmt.Errorf("page name is required")
		}
		result, err := svc.ListRecords(ctx, ListOptions{Page: name})
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, result)
	})
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
