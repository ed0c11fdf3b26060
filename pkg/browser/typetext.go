package browser

import (
	"context"
	"fmt"

	"github.com/webtrailhq/webtrail/pkg/agent/tools"
)

// TypeTool fills text into an input element.
type TypeTool struct {
	session *Session
}

// NewTypeTool creates a new type tool.
func NewTypeTool(session *Session) *TypeTool {
	return &TypeTool{session: session}
}

// Name returns the tool name.
func (t *TypeTool) Name() string {
	return "type"
}

// Description returns the tool description.
func (t *TypeTool) Description() string {
	return "Type text into an input element. Clears the existing value first."
}

// Schema returns the tool's JSON schema.
func (t *TypeTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"selector": map[string]interface{}{
				"type":        "string",
				"description": "Selector for the input element (e.g., '#search', 'input[name=\"q\"]')",
			},
			"text": map[string]interface{}{
				"type":        "string",
				"description": "Text to type into the element",
			},
		},
		[]string{"selector", "text"},
	)
}

// Execute fills the element with the text.
func (t *TypeTool) Execute(ctx context.Context, args map[string]string) (string, error) {
	selector := args["selector"]
	if selector == "" {
		return fmt.Sprintf("%s Missing required argument: selector", tools.FailureMarker()), nil
	}
	text, ok := args["text"]
	if !ok {
		return fmt.Sprintf("%s Missing required argument: text", tools.FailureMarker()), nil
	}
	if !t.session.Ready() {
		return tools.NotReadyOutcome(), nil
	}

	if err := t.session.Fill(selector, text); err != nil {
		return fmt.Sprintf("%s Failed to type into %s: %v", tools.FailureMarker(), selector, err), nil
	}
	return fmt.Sprintf("%s Successfully typed '%s' into %s", tools.SuccessMarker(), text, selector), nil
}
