package browser

import (
	"context"
	"fmt"

	"github.com/webtrailhq/webtrail/pkg/agent/tools"
)

// ExecuteJavaScriptTool evaluates a script in the page context.
type ExecuteJavaScriptTool struct {
	session *Session
}

// NewExecuteJavaScriptTool creates a new execute_javascript tool.
func NewExecuteJavaScriptTool(session *Session) *ExecuteJavaScriptTool {
	return &ExecuteJavaScriptTool{session: session}
}

// Name returns the tool name.
func (t *ExecuteJavaScriptTool) Name() string {
	return "execute_javascript"
}

// Description returns the tool description.
func (t *ExecuteJavaScriptTool) Description() string {
	return "Execute JavaScript in the page and return the result. Use for checks selectors cannot express."
}

// Schema returns the tool's JSON schema.
func (t *ExecuteJavaScriptTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"script": map[string]interface{}{
				"type":        "string",
				"description": "JavaScript expression or function body to evaluate",
			},
		},
		[]string{"script"},
	)
}

// Execute evaluates the script.
func (t *ExecuteJavaScriptTool) Execute(ctx context.Context, args map[string]string) (string, error) {
	script := args["script"]
	if script == "" {
		return fmt.Sprintf("%s Missing required argument: script", tools.FailureMarker()), nil
	}
	if !t.session.Ready() {
		return tools.NotReadyOutcome(), nil
	}

	result, err := t.session.Evaluate(script)
	if err != nil {
		return fmt.Sprintf("%s JavaScript execution failed: %v", tools.FailureMarker(), err), nil
	}
	return fmt.Sprintf("%s JavaScript executed. Result: %v", tools.SuccessMarker(), result), nil
}
