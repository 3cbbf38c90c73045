// Package resources implements the MCP resource handlers for the
// story/goal tracker.
//
// Resources provide read-only data that the host can attach as context.
// They never register workspaces or change records.
package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/storygoal/internal/store"
)

const (
	summaryPrefix = "storygoal://workspace/"
	summarySuffix = "/summary"

	// SummaryTemplate is the URI template of the workspace summary resource.
	SummaryTemplate = summaryPrefix + "{user_key}" + summarySuffix
)

// WorkspaceReport is the body of the workspace summary resource.
type WorkspaceReport struct {
	store.WorkspaceSummary
	GoalList []store.Goal `json:"goal_list"`
}

// Handler serves workspace resources from the store.
type Handler struct {
	store *store.Store
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(s *store.Store) *Handler {
	return &Handler{store: s}
}

// SummaryTemplate returns the MCP resource template for workspace summaries.
func (h *Handler) SummaryTemplate() mcp.ResourceTemplate {
	return mcp.NewResourceTemplate(
		SummaryTemplate,
		"Workspace summary",
		mcp.WithTemplateDescription("Goal and story counts for one workspace, plus every goal with its progress"),
		mcp.WithTemplateMIMEType("application/json"),
	)
}

// HandleSummary renders the summary for the workspace named in the URI.
// Unknown workspaces report zero counts.
func (h *Handler) HandleSummary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	key, err := userKeyFromURI(uri)
	if err != nil {
		return nil, err
	}

	summary, err := h.store.Summary(ctx, key)
	if err != nil {
		return errorResource(uri, err), nil
	}
	goals, err := h.store.ListGoals(ctx, key)
	if err != nil {
		return errorResource(uri, err), nil
	}

	data, err := json.MarshalIndent(WorkspaceReport{WorkspaceSummary: *summary, GoalList: goals}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling summary: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// userKeyFromURI extracts the path-escaped workspace key.
func userKeyFromURI(uri string) (string, error) {
	if !strings.HasPrefix(uri, summaryPrefix) || !strings.HasSuffix(uri, summarySuffix) {
		return "", fmt.Errorf("unsupported resource URI %q", uri)
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(uri, summaryPrefix), summarySuffix)
	key, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("resource URI %q: %w", uri, err)
	}
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("resource URI %q has no workspace key", uri)
	}
	return key, nil
}

// errorResource returns a resource with the error kind and message.
func errorResource(uri string, err error) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("%s: %s", store.KindOf(err), store.MessageOf(err)),
		},
	}
}
