// Package runner coordinates one automation run end to end: prompt
// validation, browser toolchain setup, the agent loop, transcript
// scanning and outcome assembly.
package runner

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/webtrailhq/webtrail/pkg/agent"
	"github.com/webtrailhq/webtrail/pkg/agent/tools"
	"github.com/webtrailhq/webtrail/pkg/browser"
	apperrors "github.com/webtrailhq/webtrail/pkg/errors"
	"github.com/webtrailhq/webtrail/pkg/graph"
	"github.com/webtrailhq/webtrail/pkg/llm"
	"github.com/webtrailhq/webtrail/pkg/llm/tokenizer"
	"github.com/webtrailhq/webtrail/pkg/logging"
	"github.com/webtrailhq/webtrail/pkg/prompt"
	"github.com/webtrailhq/webtrail/pkg/types"
)

// screenshotPattern extracts stored screenshot paths from tool
// outcomes.
var screenshotPattern = regexp.MustCompile(`Screenshot saved to: (\S+)`)

// criticalFailureMarkers classify a completed run as failed when any
// of these appear in the transcript. Navigation and interaction are
// the critical tools; a failed wait or screenshot does not fail a run
// on its own.
var criticalFailureMarkers = []string{
	"❌ navigate:",
	"❌ click:",
	"❌ type:",
}

// Toolchain is the per-run tool surface: a populated registry and the
// teardown for whatever backs it.
type Toolchain struct {
	Registry *tools.Registry
	Close    func() error
}

// ToolchainFactory builds a fresh toolchain for one run. The default
// factory launches a real browser session; tests substitute fakes.
type ToolchainFactory func(opts browser.Options) (*Toolchain, error)

// defaultToolchain wires a browser session and the full tool
// catalogue.
func defaultToolchain(logger *logging.Logger) ToolchainFactory {
	return func(opts browser.Options) (*Toolchain, error) {
		session, err := browser.NewSession(opts, logger)
		if err != nil {
			return nil, err
		}
		registry := tools.NewRegistry()
		browser.RegisterDefaultTools(registry, session)
		return &Toolchain{Registry: registry, Close: session.Close}, nil
	}
}

// Coordinator executes test instructions. One coordinator may run many
// instructions; each run owns a fresh toolchain and transcript.
type Coordinator struct {
	provider     llm.Provider
	validator    *prompt.Validator
	logger       *logging.Logger
	tokenizer    *tokenizer.Tokenizer
	browserOpts  browser.Options
	maxIter      int
	newToolchain ToolchainFactory
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger attaches a logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

// WithTokenizer enables token accounting in loop debug logs.
func WithTokenizer(tok *tokenizer.Tokenizer) Option {
	return func(c *Coordinator) { c.tokenizer = tok }
}

// WithBrowserOptions sets the default browser options for runs that do
// not override them.
func WithBrowserOptions(opts browser.Options) Option {
	return func(c *Coordinator) { c.browserOpts = opts }
}

// WithMaxIterations sets the default iteration ceiling.
func WithMaxIterations(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.maxIter = n
		}
	}
}

// WithToolchainFactory substitutes the toolchain construction, used by
// tests to avoid launching a browser.
func WithToolchainFactory(factory ToolchainFactory) Option {
	return func(c *Coordinator) { c.newToolchain = factory }
}

// NewCoordinator creates a coordinator over the provider and prompt
// validator.
func NewCoordinator(provider llm.Provider, validator *prompt.Validator, opts ...Option) *Coordinator {
	c := &Coordinator{
		provider:  provider,
		validator: validator,
		browserOpts: browser.Options{
			Engine:   types.EngineChromium,
			Headless: true,
		},
		maxIter: agent.DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.newToolchain == nil {
		c.newToolchain = defaultToolchain(c.logger)
	}
	return c
}

// Execute runs one test instruction to completion and assembles its
// outcome record. Validation failures are returned as errors before
// any browser is launched; loop and tool failures are reported in the
// outcome's status instead.
func (c *Coordinator) Execute(ctx context.Context, instruction types.TestInstruction) (*types.Outcome, error) {
	if strings.TrimSpace(instruction.TestID) == "" {
		return nil, apperrors.NewInvalidInput("test_id", "test_id must not be empty")
	}

	userPrompt, err := c.assemblePrompt(instruction)
	if err != nil {
		return nil, err
	}

	// A supplied engine means the instruction carries a full browser
	// config; otherwise the coordinator defaults apply.
	opts := c.browserOpts
	if instruction.Browser.Engine != "" {
		opts.Engine = instruction.Browser.Engine
		opts.Headless = instruction.Browser.Headless
	}

	maxIter := c.maxIter
	if instruction.Browser.MaxIterations > 0 {
		maxIter = instruction.Browser.MaxIterations
	}

	start := time.Now()

	toolchain, err := c.newToolchain(opts)
	if err != nil {
		return nil, err
	}

	// The session must be released exactly once on every exit path.
	// Toolchain closers are idempotent, so the deferred close is a
	// safety net for panics and early returns.
	closed := false
	closeToolchain := func() {
		if !closed {
			closed = true
			if cerr := toolchain.Close(); cerr != nil && c.logger != nil {
				c.logger.Warnf("toolchain close failed: %v", cerr)
			}
		}
	}
	defer closeToolchain()

	systemPrompt := prompt.BuildAgentSystemPrompt(descriptors(toolchain.Registry))

	loop := agent.NewLoop(c.provider, toolchain.Registry,
		agent.WithMaxIterations(maxIter),
		agent.WithLogger(c.logger),
		agent.WithTokenizer(c.tokenizer),
	)

	if c.logger != nil {
		c.logger.Infof("starting run %s: engine=%s max_iterations=%d", instruction.TestID, opts.Engine, maxIter)
	}

	result := loop.Run(ctx, systemPrompt, userPrompt)
	closeToolchain()

	// Graph and screenshot extraction read the tool outcomes only; an
	// assistant reply quoting a metadata block must not mint pages.
	toolOutput := result.ToolOutput()
	pages, edges := graph.Scan(toolOutput)

	outcome := &types.Outcome{
		TestID:        instruction.TestID,
		Status:        classify(result, toolOutput),
		ExecutionTime: time.Since(start).Seconds(),
		StepsExecuted: result.StepsExecuted,
		AgentOutput:   result.Output,
		Pages:         pages,
		Edges:         edges,
		Screenshots:   screenshots(toolOutput),
		ExecutedAt:    time.Now().UTC(),
	}
	if result.Err != nil {
		outcome.ErrorMessage = result.Err.Error()
	}

	if c.logger != nil {
		c.logger.Infof("run %s finished: status=%s steps=%d pages=%d edges=%d",
			instruction.TestID, outcome.Status, outcome.StepsExecuted, len(pages), len(edges))
	}
	return outcome, nil
}

// assemblePrompt picks the executable prompt and validates it. A
// pre-generated prompt is executed as-is; otherwise the raw test
// description is the prompt.
func (c *Coordinator) assemblePrompt(instruction types.TestInstruction) (string, error) {
	text := instruction.GeneratedPrompt
	if text == "" {
		text = instruction.Description
	}
	if strings.TrimSpace(text) == "" {
		return "", apperrors.NewInvalidInput("description", "either generated_prompt or description is required")
	}

	if c.validator != nil {
		report := c.validator.Validate(text)
		if !report.Valid {
			return "", apperrors.NewInvalidInput("description",
				strings.Join(report.BlockingFindings(), "; "))
		}
	}
	return text, nil
}

// classify maps the loop's terminal state onto the run status.
// Completion with a failed critical tool is failed; hitting the
// iteration ceiling is failed; any other abort is error. Failure
// markers are matched against the tool outcomes, not assistant prose.
func classify(result *agent.Result, toolOutput string) types.RunStatus {
	switch result.State {
	case agent.StateCompleted:
		for _, marker := range criticalFailureMarkers {
			if strings.Contains(toolOutput, marker) {
				return types.StatusFailed
			}
		}
		return types.StatusSuccess
	default:
		if errors.Is(result.Err, agent.ErrIterationLimit) {
			return types.StatusFailed
		}
		return types.StatusError
	}
}

func screenshots(output string) []string {
	matches := screenshotPattern.FindAllStringSubmatch(output, -1)
	shots := make([]string, 0, len(matches))
	for _, m := range matches {
		shots = append(shots, m[1])
	}
	return shots
}

func descriptors(registry *tools.Registry) []prompt.ToolDescriptor {
	list := registry.List()
	out := make([]prompt.ToolDescriptor, 0, len(list))
	for _, t := range list {
		out = append(out, prompt.ToolDescriptor{Name: t.Name(), Description: t.Description()})
	}
	return out
}
