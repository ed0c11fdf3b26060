package tools

import "context"

// Tool represents a browser capability the model can invoke during a
// run. Tools are invoked through USE_TOOL directives parsed from model
// replies.
//
// Example invocation format from the model:
//
//	USE_TOOL: navigate
//	ARGS: {"url": "https://example.com"}
type Tool interface {
	// Name returns the unique identifier for this tool (e.g., "navigate")
	Name() string

	// Description returns a human-readable description of what this tool
	// does, shown to the model in the system prompt
	Description() string

	// Schema returns the JSON schema for this tool's input parameters
	Schema() map[string]interface{}

	// Execute runs the tool with the given arguments and returns a single
	// outcome string starting with "✅ " or "❌ ". Arguments arrive as a
	// string map at the wire; each tool coerces its own values.
	//
	// A non-nil error is fatal to the run. Ordinary failures (bad
	// selector, timeout) are reported in the "❌" outcome string with a
	// nil error so the model can correct course.
	Execute(ctx context.Context, args map[string]string) (string, error)
}

// BaseToolSchema creates a common JSON schema structure for a tool
// with the given properties and required fields
func BaseToolSchema(properties map[string]interface{}, required []string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// Success reports whether an outcome string records a successful
// execution.
func Success(outcome string) bool {
	return len(outcome) >= len(successMarker) && outcome[:len(successMarker)] == successMarker
}

const (
	successMarker = "✅"
	failureMarker = "❌"
)

// SuccessMarker returns the marker prefix for successful outcomes.
func SuccessMarker() string { return successMarker }

// FailureMarker returns the marker prefix for failed outcomes.
func FailureMarker() string { return failureMarker }

const notReadyOutcome = failureMarker + " Browser not initialized. Please navigate to a page first."

// NotReadyOutcome is the shared failure outcome for tools that need a
// page before the session has navigated anywhere.
func NotReadyOutcome() string { return notReadyOutcome }

// NotReady reports whether an outcome records a session-not-ready
// failure.
func NotReady(outcome string) bool { return outcome == notReadyOutcome }
