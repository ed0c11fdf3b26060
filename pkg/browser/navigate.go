package browser

import (
	"context"
	"fmt"

	"github.com/webtrailhq/webtrail/pkg/agent/tools"
	apperrors "github.com/webtrailhq/webtrail/pkg/errors"
)

// NavigateTool opens a URL, launching the browser on first use.
type NavigateTool struct {
	session *Session
}

// NewNavigateTool creates a new navigate tool.
func NewNavigateTool(session *Session) *NavigateTool {
	return &NavigateTool{session: session}
}

// Name returns the tool name.
func (t *NavigateTool) Name() string {
	return "navigate"
}

// Description returns the tool description.
func (t *NavigateTool) Description() string {
	return "Navigate to a URL. Launches the browser on first use and waits for the page to load."
}

// Schema returns the tool's JSON schema.
func (t *NavigateTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"url": map[string]interface{}{
				"type":        "string",
				"description": "URL to navigate to (must include protocol, e.g., https://example.com)",
			},
		},
		[]string{"url"},
	)
}

// Execute navigates to the URL and reports the landed page. The
// outcome carries a page metadata block so every navigation is
// observable in the transcript even when the model never asks for
// metadata explicitly.
func (t *NavigateTool) Execute(ctx context.Context, args map[string]string) (string, error) {
	url := args["url"]
	if url == "" {
		return fmt.Sprintf("%s Missing required argument: url", tools.FailureMarker()), nil
	}

	title, err := t.session.Navigate(url)
	if err != nil {
		// A browser that cannot launch at all is fatal to the run.
		if apperrors.IsBrowser(err) || apperrors.IsState(err) || apperrors.IsConfiguration(err) {
			return "", err
		}
		return fmt.Sprintf("%s Failed to navigate to %s: %v", tools.FailureMarker(), url, err), nil
	}

	outcome := fmt.Sprintf("%s Successfully navigated to %s - Page title: '%s'",
		tools.SuccessMarker(), url, title)
	return outcome + "\n\n" + FormatPageBlock(t.session.CurrentURL(), title), nil
}
