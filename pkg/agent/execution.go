package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/webtrailhq/webtrail/pkg/agent/tools"
	apperrors "github.com/webtrailhq/webtrail/pkg/errors"
)

// maxNotReadyFailures aborts a run whose session never becomes usable.
// Ordinary tool failures (bad selector, timeout) flow back to the model
// indefinitely; the iteration ceiling bounds those. Only repeated
// session-not-ready outcomes mark the session itself as unusable.
const maxNotReadyFailures = 5

// executeCalls runs parsed tool calls in order and renders one result
// entry per call. It returns the entries, the number of successful
// steps, and a non-nil error only when the run must abort.
func (l *Loop) executeCalls(ctx context.Context, calls []tools.ToolCall, notReadyFailures *int) ([]string, int, error) {
	entries := make([]string, 0, len(calls))
	steps := 0

	for _, call := range calls {
		outcome, fatal := l.executeCall(ctx, call)
		if fatal != nil {
			entries = append(entries, formatEntry(call.Name, fmt.Sprintf("%s %v", tools.FailureMarker(), fatal)))
			return entries, steps, fatal
		}

		entries = append(entries, formatEntry(call.Name, outcome))

		if tools.Success(outcome) {
			steps++
			*notReadyFailures = 0
			continue
		}

		if !tools.NotReady(outcome) {
			continue
		}

		*notReadyFailures++
		if *notReadyFailures >= maxNotReadyFailures {
			err := apperrors.NewBrowser("execution",
				fmt.Errorf("session still not ready after %d tool calls, aborting run", *notReadyFailures))
			return entries, steps, err
		}
	}

	return entries, steps, nil
}

// executeCall resolves and runs one call. Parse and lookup problems
// become failed outcomes so the model can correct itself.
func (l *Loop) executeCall(ctx context.Context, call tools.ToolCall) (string, error) {
	if call.Err != nil {
		return fmt.Sprintf("%s Invalid tool invocation: %v", tools.FailureMarker(), call.Err), nil
	}

	tool, ok := l.registry.Get(call.Name)
	if !ok {
		return fmt.Sprintf("%s Tool '%s' not found. Available tools: %s",
			tools.FailureMarker(), call.Name, strings.Join(l.registry.Names(), ", ")), nil
	}

	l.debugf("executing tool %s", call.Name)
	outcome, err := tool.Execute(ctx, call.Args)
	if err != nil {
		return "", err
	}
	return outcome, nil
}

// formatEntry renders one transcript line pair for a tool call. The
// leading marker mirrors the outcome's own marker so scanners can
// classify entries without parsing the outcome body.
func formatEntry(name, outcome string) string {
	marker := tools.FailureMarker()
	if tools.Success(outcome) {
		marker = tools.SuccessMarker()
	}
	return fmt.Sprintf("%s %s: %s", marker, name, outcome)
}

func (l *Loop) debugf(format string, args ...interface{}) {
	if l.logger != nil {
		l.logger.Debugf(format, args...)
	}
}
