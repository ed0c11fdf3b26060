package browser

import (
	"context"
	"fmt"

	"github.com/webtrailhq/webtrail/pkg/agent/tools"
)

// CloseBrowserTool shuts the browser session down. The model is
// instructed to call it as its final action; the run closes the
// session anyway on every exit path, so a second close is a no-op.
type CloseBrowserTool struct {
	session *Session
}

// NewCloseBrowserTool creates a new close_browser tool.
func NewCloseBrowserTool(session *Session) *CloseBrowserTool {
	return &CloseBrowserTool{session: session}
}

// Name returns the tool name.
func (t *CloseBrowserTool) Name() string {
	return "close_browser"
}

// Description returns the tool description.
func (t *CloseBrowserTool) Description() string {
	return "Close the browser. Call this as the final step once the test is complete."
}

// Schema returns the tool's JSON schema.
func (t *CloseBrowserTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(map[string]interface{}{}, nil)
}

// Execute closes the session.
func (t *CloseBrowserTool) Execute(ctx context.Context, args map[string]string) (string, error) {
	if err := t.session.Close(); err != nil {
		return fmt.Sprintf("%s Failed to close browser: %v", tools.FailureMarker(), err), nil
	}
	return fmt.Sprintf("%s Browser closed successfully", tools.SuccessMarker()), nil
}
