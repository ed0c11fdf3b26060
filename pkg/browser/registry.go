package browser

import "github.com/webtrailhq/webtrail/pkg/agent/tools"

// RegisterDefaultTools registers the full browser tool catalogue for a
// session on the given registry.
func RegisterDefaultTools(registry *tools.Registry, session *Session) {
	registry.Register(NewNavigateTool(session))
	registry.Register(NewClickTool(session))
	registry.Register(NewTypeTool(session))
	registry.Register(NewScreenshotTool(session))
	registry.Register(NewWaitForSelectorTool(session))
	registry.Register(NewWaitForTextTool(session))
	registry.Register(NewGetPageContentTool(session))
	registry.Register(NewExecuteJavaScriptTool(session))
	registry.Register(NewGetPageMetadataTool(session))
	registry.Register(NewCloseBrowserTool(session))
}
