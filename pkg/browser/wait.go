package browser

import (
	"context"
	"fmt"
	"strconv"

	"github.com/webtrailhq/webtrail/pkg/agent/tools"
)

// WaitForSelectorTool waits for an element to appear on the page.
type WaitForSelectorTool struct {
	session *Session
}

// NewWaitForSelectorTool creates a new wait_for_selector tool.
func NewWaitForSelectorTool(session *Session) *WaitForSelectorTool {
	return &WaitForSelectorTool{session: session}
}

// Name returns the tool name.
func (t *WaitForSelectorTool) Name() string {
	return "wait_for_selector"
}

// Description returns the tool description.
func (t *WaitForSelectorTool) Description() string {
	return "Wait until an element matching the selector appears on the page. Use before interacting with dynamic content."
}

// Schema returns the tool's JSON schema.
func (t *WaitForSelectorTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"selector": map[string]interface{}{
				"type":        "string",
				"description": "Selector to wait for",
			},
			"timeout": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum wait in milliseconds (default 10000)",
			},
		},
		[]string{"selector"},
	)
}

// Execute waits for the element to resolve.
func (t *WaitForSelectorTool) Execute(ctx context.Context, args map[string]string) (string, error) {
	selector := args["selector"]
	if selector == "" {
		return fmt.Sprintf("%s Missing required argument: selector", tools.FailureMarker()), nil
	}
	if !t.session.Ready() {
		return tools.NotReadyOutcome(), nil
	}

	timeout := parseTimeout(args["timeout"])
	if err := t.session.WaitForSelector(selector, timeout); err != nil {
		return fmt.Sprintf("%s Element %s did not appear: %v", tools.FailureMarker(), selector, err), nil
	}
	return fmt.Sprintf("%s Element %s appeared on page", tools.SuccessMarker(), selector), nil
}

// WaitForTextTool waits for visible text to appear on the page.
type WaitForTextTool struct {
	session *Session
}

// NewWaitForTextTool creates a new wait_for_text tool.
func NewWaitForTextTool(session *Session) *WaitForTextTool {
	return &WaitForTextTool{session: session}
}

// Name returns the tool name.
func (t *WaitForTextTool) Name() string {
	return "wait_for_text"
}

// Description returns the tool description.
func (t *WaitForTextTool) Description() string {
	return "Wait until the given text is visible anywhere on the page."
}

// Schema returns the tool's JSON schema.
func (t *WaitForTextTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"text": map[string]interface{}{
				"type":        "string",
				"description": "Text to wait for",
			},
			"timeout": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum wait in milliseconds (default 10000)",
			},
		},
		[]string{"text"},
	)
}

// Execute waits for the text to become visible.
func (t *WaitForTextTool) Execute(ctx context.Context, args map[string]string) (string, error) {
	text := args["text"]
	if text == "" {
		return fmt.Sprintf("%s Missing required argument: text", tools.FailureMarker()), nil
	}
	if !t.session.Ready() {
		return tools.NotReadyOutcome(), nil
	}

	timeout := parseTimeout(args["timeout"])
	if err := t.session.WaitForText(text, timeout); err != nil {
		return fmt.Sprintf("%s Text '%s' did not appear: %v", tools.FailureMarker(), text, err), nil
	}
	return fmt.Sprintf("%s Text '%s' appeared on page", tools.SuccessMarker(), text), nil
}

// parseTimeout coerces a wire timeout value, falling back to the
// default when absent or unparseable.
func parseTimeout(value string) float64 {
	if value == "" {
		return DefaultWaitTimeout
	}
	timeout, err := strconv.ParseFloat(value, 64)
	if err != nil || timeout <= 0 {
		return DefaultWaitTimeout
	}
	return timeout
}
