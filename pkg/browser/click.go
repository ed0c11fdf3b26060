package browser

import (
	"context"
	"fmt"

	"github.com/webtrailhq/webtrail/pkg/agent/tools"
)

// ClickTool clicks an element on the current page.
type ClickTool struct {
	session *Session
}

// NewClickTool creates a new click tool.
func NewClickTool(session *Session) *ClickTool {
	return &ClickTool{session: session}
}

// Name returns the tool name.
func (t *ClickTool) Name() string {
	return "click"
}

// Description returns the tool description.
func (t *ClickTool) Description() string {
	return "Click an element on the page. Accepts CSS selectors, XPath (starting with //), or text= selectors."
}

// Schema returns the tool's JSON schema.
func (t *ClickTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"selector": map[string]interface{}{
				"type":        "string",
				"description": "Selector for the element to click (e.g., 'button.submit', '//a[@id=\"next\"]', 'text=More information')",
			},
			"description": map[string]interface{}{
				"type":        "string",
				"description": "Short human-readable description of the element being clicked",
			},
		},
		[]string{"selector"},
	)
}

// Execute clicks the element. The description, when present, is echoed
// in the outcome so transcript readers see what was clicked, not just
// the selector.
func (t *ClickTool) Execute(ctx context.Context, args map[string]string) (string, error) {
	selector := args["selector"]
	if selector == "" {
		return fmt.Sprintf("%s Missing required argument: selector", tools.FailureMarker()), nil
	}
	if !t.session.Ready() {
		return tools.NotReadyOutcome(), nil
	}

	description := args["description"]
	if description == "" {
		description = selector
	}

	if err := t.session.Click(selector); err != nil {
		return fmt.Sprintf("%s Failed to click element %s: %v", tools.FailureMarker(), selector, err), nil
	}
	return fmt.Sprintf("%s Successfully clicked element: %s (%s)", tools.SuccessMarker(), description, selector), nil
}
