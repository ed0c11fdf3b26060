package browser

import (
	"context"
	"fmt"
	"strconv"

	"github.com/webtrailhq/webtrail/pkg/agent/tools"
)

// GetPageContentTool returns a condensed outline of the current page.
type GetPageContentTool struct {
	session *Session
}

// NewGetPageContentTool creates a new get_page_content tool.
func NewGetPageContentTool(session *Session) *GetPageContentTool {
	return &GetPageContentTool{session: session}
}

// Name returns the tool name.
func (t *GetPageContentTool) Name() string {
	return "get_page_content"
}

// Description returns the tool description.
func (t *GetPageContentTool) Description() string {
	return "Get a condensed outline of the current page: title, headings, links, form controls and visible text."
}

// Schema returns the tool's JSON schema.
func (t *GetPageContentTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"max_length": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum content length in characters (default 10000)",
			},
		},
		nil,
	)
}

// Execute condenses the page HTML into an outline the model can read
// without blowing its context window.
func (t *GetPageContentTool) Execute(ctx context.Context, args map[string]string) (string, error) {
	if !t.session.Ready() {
		return tools.NotReadyOutcome(), nil
	}

	maxLength := DefaultContentLength
	if raw := args["max_length"]; raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			maxLength = parsed
		}
	}

	rawHTML, err := t.session.Content()
	if err != nil {
		return fmt.Sprintf("%s Failed to get page content: %v", tools.FailureMarker(), err), nil
	}

	outline, err := OutlinePage(rawHTML, maxLength)
	if err != nil {
		return fmt.Sprintf("%s Failed to parse page content: %v", tools.FailureMarker(), err), nil
	}
	return fmt.Sprintf("%s Retrieved page content:\n%s", tools.SuccessMarker(), outline.String()), nil
}
