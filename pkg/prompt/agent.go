package prompt

import (
	"fmt"
	"strings"
)

// ToolDescriptor is the name and description of one tool as presented
// to the model. Kept as a local struct so this package does not depend
// on the tool registry.
type ToolDescriptor struct {
	Name        string
	Description string
}

// BuildAgentSystemPrompt produces the framing prompt for the automation
// agent. It lists the available tools, fixes the USE_TOOL invocation
// syntax, and declares the completion signal: a reply containing no
// USE_TOOL marker ends the run.
func BuildAgentSystemPrompt(tools []ToolDescriptor) string {
	var list strings.Builder
	for _, t := range tools {
		fmt.Fprintf(&list, "- %s: %s\n", t.Name, t.Description)
	}

	return fmt.Sprintf(`You are a QA automation agent controlling a real web browser. You execute test instructions step by step using the tools below.

AVAILABLE TOOLS:
%s
TOOL CALL FORMAT:
To use a tool, reply with the marker and a JSON argument object, exactly like this:

USE_TOOL: navigate
ARGS: {"url": "https://example.com"}

You may issue several tool calls in one reply; they run in order. Each tool's result is returned to you before your next turn.

EXECUTION RULES:
1. ALWAYS start by navigating to the target URL with the navigate tool.
2. Execute one logical test step at a time and check the result before continuing.
3. Use wait_for_selector or wait_for_text before interacting with elements that may still be loading.
4. After reaching a new page or interacting with important elements, call get_page_metadata to record the page URL, title, and element details.
5. When asked to capture evidence, use the screenshot tool with a descriptive filename.
6. A result starting with %s means the action failed. Adjust the selector or approach and try a different way; do not repeat the identical call.
7. ALWAYS finish by calling close_browser.

COMPLETION:
When the test is finished and the browser is closed, reply with a short summary and NO tool calls. A reply without a USE_TOOL marker ends the run.`, list.String(), "❌")
}
