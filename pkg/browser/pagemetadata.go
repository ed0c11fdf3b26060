package browser

import (
	"context"
	"fmt"

	"github.com/webtrailhq/webtrail/pkg/agent/tools"
)

// GetPageMetadataTool reports the page URL, title and key interactive
// elements in the structured block the transcript scanner consumes.
type GetPageMetadataTool struct {
	session *Session
}

// NewGetPageMetadataTool creates a new get_page_metadata tool.
func NewGetPageMetadataTool(session *Session) *GetPageMetadataTool {
	return &GetPageMetadataTool{session: session}
}

// Name returns the tool name.
func (t *GetPageMetadataTool) Name() string {
	return "get_page_metadata"
}

// Description returns the tool description.
func (t *GetPageMetadataTool) Description() string {
	return "Capture structured metadata for the current page: URL, title and matching interactive elements. Call after reaching a new page."
}

// Schema returns the tool's JSON schema.
func (t *GetPageMetadataTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"selector": map[string]interface{}{
				"type":        "string",
				"description": "Selector for the elements to include (default 'a, button, input, form, select, textarea')",
			},
		},
		nil,
	)
}

const defaultMetadataSelector = "a, button, input, form, select, textarea"

// Execute captures the metadata block. At most MaxMetadataElements
// elements are reported per query.
func (t *GetPageMetadataTool) Execute(ctx context.Context, args map[string]string) (string, error) {
	if !t.session.Ready() {
		return tools.NotReadyOutcome(), nil
	}

	selector := args["selector"]
	if selector == "" {
		selector = defaultMetadataSelector
	}

	url := t.session.CurrentURL()
	title, err := t.session.Title()
	if err != nil {
		return fmt.Sprintf("%s Failed to read page title: %v", tools.FailureMarker(), err), nil
	}

	elements, err := t.session.QueryElements(selector, MaxMetadataElements)
	if err != nil {
		return fmt.Sprintf("%s Failed to query elements for %s: %v", tools.FailureMarker(), selector, err), nil
	}

	return fmt.Sprintf("%s Captured page metadata:\n%s",
		tools.SuccessMarker(), FormatMetadataBlock(url, title, elements)), nil
}
