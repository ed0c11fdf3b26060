// Package agent implements the tool-calling loop that drives a browser
// session from model replies. One Run is one conversation: the model
// proposes tool invocations, the loop executes them against the
// registry, and the combined outcomes are fed back as a user message
// until the model replies without a tool call or the iteration ceiling
// is reached.
package agent

import (
	"context"
	"errors"
	"strings"

	"github.com/webtrailhq/webtrail/pkg/agent/tools"
	"github.com/webtrailhq/webtrail/pkg/llm"
	"github.com/webtrailhq/webtrail/pkg/llm/tokenizer"
	"github.com/webtrailhq/webtrail/pkg/logging"
	"github.com/webtrailhq/webtrail/pkg/types"
)

// State is the loop's execution phase.
type State string

const (
	StateReady          State = "ready"
	StateInvokingModel  State = "invoking-model"
	StateParsing        State = "parsing"
	StateExecutingTools State = "executing-tools"
	StateCompleted      State = "completed"
	StateAborted        State = "aborted"
)

// ErrIterationLimit is returned when the model is still issuing tool
// calls after the configured maximum number of iterations.
var ErrIterationLimit = errors.New("iteration limit reached before completion")

// DefaultMaxIterations bounds runaway conversations.
const DefaultMaxIterations = 10

// toolResultsHeader prefixes the combined tool outcome message each
// turn. The transcript scanner and downstream parsers key on it.
const toolResultsHeader = "Tool execution results:\n"

// Result is the outcome of one loop run. Transcript is append-only and
// includes the system and initial user messages. Output is the flat
// text the transcript scanner consumes: assistant replies and tool
// result blocks in order.
type Result struct {
	State         State
	Transcript    []*types.Message
	Output        string
	FinalReply    string
	StepsExecuted int
	Iterations    int
	Err           error
}

// ToolOutput returns only the tool result blocks of the transcript,
// joined in order. Graph extraction reads this rather than Output so
// that assistant prose quoting a metadata block cannot fabricate
// pages.
func (r *Result) ToolOutput() string {
	var b strings.Builder
	for _, m := range r.Transcript {
		if m.IsToolOutput() {
			appendBlock(&b, m.Content)
		}
	}
	return b.String()
}

// Loop runs the agent conversation against a provider and a tool
// registry.
type Loop struct {
	provider      llm.Provider
	registry      *tools.Registry
	maxIterations int
	logger        *logging.Logger
	tokenizer     *tokenizer.Tokenizer
}

// Option configures a Loop.
type Option func(*Loop)

// WithMaxIterations overrides the iteration ceiling.
func WithMaxIterations(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.maxIterations = n
		}
	}
}

// WithLogger attaches a logger for per-iteration diagnostics.
func WithLogger(logger *logging.Logger) Option {
	return func(l *Loop) { l.logger = logger }
}

// WithTokenizer enables token budget reporting in debug logs.
func WithTokenizer(tok *tokenizer.Tokenizer) Option {
	return func(l *Loop) { l.tokenizer = tok }
}

// NewLoop creates a loop over the provider and registry.
func NewLoop(provider llm.Provider, registry *tools.Registry, opts ...Option) *Loop {
	l := &Loop{
		provider:      provider,
		registry:      registry,
		maxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run drives the conversation to completion. A model failure aborts
// the run; a tool failure is reported back to the model and the run
// continues. A session that repeatedly reports not-ready is treated as
// unusable and aborts.
func (l *Loop) Run(ctx context.Context, systemPrompt, userPrompt string) *Result {
	result := &Result{State: StateReady}

	messages := []*types.Message{
		types.NewSystemMessage(systemPrompt),
		types.NewUserMessage(userPrompt),
	}
	result.Transcript = messages

	var output strings.Builder
	notReadyFailures := 0

	for iteration := 1; iteration <= l.maxIterations; iteration++ {
		result.Iterations = iteration
		result.State = StateInvokingModel

		l.debugTokens(messages, iteration)

		reply, err := l.provider.Complete(ctx, messages)
		if err != nil {
			l.errorf("model call failed on iteration %d: %v", iteration, err)
			result.State = StateAborted
			result.Err = err
			result.Output = output.String()
			return result
		}

		messages = append(messages, reply)
		result.Transcript = messages
		result.FinalReply = reply.Content
		appendBlock(&output, reply.Content)

		result.State = StateParsing
		if !tools.HasToolCall(reply.Content) {
			l.infof("run completed after %d iteration(s), %d step(s) executed", iteration, result.StepsExecuted)
			result.State = StateCompleted
			result.Output = output.String()
			return result
		}

		calls := tools.ParseToolCalls(reply.Content)

		result.State = StateExecutingTools
		entries, steps, fatal := l.executeCalls(ctx, calls, &notReadyFailures)
		result.StepsExecuted += steps

		resultsText := toolResultsHeader + strings.Join(entries, "\n\n")
		messages = append(messages, types.NewToolOutputMessage(resultsText))
		result.Transcript = messages
		appendBlock(&output, resultsText)

		if fatal != nil {
			l.errorf("tool execution aborted run on iteration %d: %v", iteration, fatal)
			result.State = StateAborted
			result.Err = fatal
			result.Output = output.String()
			return result
		}
	}

	l.errorf("iteration ceiling of %d reached without completion", l.maxIterations)
	result.State = StateAborted
	result.Err = ErrIterationLimit
	result.Output = output.String()
	return result
}

func appendBlock(b *strings.Builder, text string) {
	if b.Len() > 0 {
		b.WriteString("\n\n")
	}
	b.WriteString(text)
}

func (l *Loop) debugTokens(messages []*types.Message, iteration int) {
	if l.tokenizer == nil || l.logger == nil {
		return
	}
	count := l.tokenizer.CountMessages(messages)
	l.logger.Debugf("iteration %d: %d message(s), ~%d tokens", iteration, len(messages), count)
}

func (l *Loop) infof(format string, args ...interface{}) {
	if l.logger != nil {
		l.logger.Infof(format, args...)
	}
}

func (l *Loop) errorf(format string, args ...interface{}) {
	if l.logger != nil {
		l.logger.Errorf(format, args...)
	}
}
