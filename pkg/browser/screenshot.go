package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/webtrailhq/webtrail/pkg/agent/tools"
)

// ScreenshotTool captures the current page to a file.
type ScreenshotTool struct {
	session *Session
}

// NewScreenshotTool creates a new screenshot tool.
func NewScreenshotTool(session *Session) *ScreenshotTool {
	return &ScreenshotTool{session: session}
}

// Name returns the tool name.
func (t *ScreenshotTool) Name() string {
	return "screenshot"
}

// Description returns the tool description.
func (t *ScreenshotTool) Description() string {
	return "Capture a screenshot of the current page as evidence. A filename is generated when omitted."
}

// Schema returns the tool's JSON schema.
func (t *ScreenshotTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"filename": map[string]interface{}{
				"type":        "string",
				"description": "File name for the screenshot (e.g., 'login-page.png'). Optional.",
			},
		},
		nil,
	)
}

// Execute captures the page and reports the stored path.
func (t *ScreenshotTool) Execute(ctx context.Context, args map[string]string) (string, error) {
	if !t.session.Ready() {
		return tools.NotReadyOutcome(), nil
	}

	filename := args["filename"]
	if filename == "" {
		filename = fmt.Sprintf("screenshot_%d.png", time.Now().UnixMilli())
	}
	if !strings.HasSuffix(filename, ".png") {
		filename += ".png"
	}

	path, err := t.session.Screenshot(filename)
	if err != nil {
		return fmt.Sprintf("%s Failed to capture screenshot: %v", tools.FailureMarker(), err), nil
	}
	return fmt.Sprintf("%s Screenshot saved to: %s", tools.SuccessMarker(), path), nil
}
