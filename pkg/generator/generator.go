// Package generator turns authored test cases into executable
// automation prompts by calling the configured model with the prompt
// templates.
package generator

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "github.com/webtrailhq/webtrail/pkg/errors"
	"github.com/webtrailhq/webtrail/pkg/llm"
	"github.com/webtrailhq/webtrail/pkg/logging"
	"github.com/webtrailhq/webtrail/pkg/prompt"
	"github.com/webtrailhq/webtrail/pkg/types"
)

var errEmptyGeneration = errors.New("model returned an empty prompt")

// Generator produces executable prompts from test cases.
type Generator struct {
	provider  llm.Provider
	templates *prompt.Manager
	logger    *logging.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger attaches a logger.
func WithLogger(logger *logging.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

// NewGenerator creates a generator over the provider and template
// manager.
func NewGenerator(provider llm.Provider, templates *prompt.Manager, opts ...Option) *Generator {
	g := &Generator{provider: provider, templates: templates}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GeneratePrompt converts one test case into a numbered automation
// prompt. The test case description must pass prompt validation.
func (g *Generator) GeneratePrompt(ctx context.Context, tc types.TestCase) (*types.TestCasePrompt, error) {
	return g.generate(ctx, tc, prompt.TemplateTestCaseConversion, nil)
}

// GenerateWithContext converts a test case using page context captured
// by an earlier run, steering the model toward selectors that exist.
func (g *Generator) GenerateWithContext(ctx context.Context, tc types.TestCase, pageContext string) (*types.TestCasePrompt, error) {
	extra := map[string]string{"page_context": pageContext}
	return g.generate(ctx, tc, prompt.TemplateTestCaseWithContext, extra)
}

// GenerateBatch converts test cases in order. Individual failures do
// not stop the batch; failed cases are reported with their errors.
func (g *Generator) GenerateBatch(ctx context.Context, cases []types.TestCase) ([]types.TestCasePrompt, []error) {
	prompts := make([]types.TestCasePrompt, 0, len(cases))
	var errs []error

	for _, tc := range cases {
		result, err := g.GeneratePrompt(ctx, tc)
		if err != nil {
			if g.logger != nil {
				g.logger.Warnf("prompt generation failed for %s: %v", tc.TestID, err)
			}
			errs = append(errs, err)
			continue
		}
		prompts = append(prompts, *result)
	}
	return prompts, errs
}

func (g *Generator) generate(ctx context.Context, tc types.TestCase, template string, extra map[string]string) (*types.TestCasePrompt, error) {
	if strings.TrimSpace(tc.TestID) == "" {
		return nil, apperrors.NewInvalidInput("test_id", "test_id must not be empty")
	}
	if strings.TrimSpace(tc.Description) == "" {
		return nil, apperrors.NewInvalidInput("description", "description must not be empty")
	}

	vars := map[string]string{
		"test_id":         tc.TestID,
		"module":          tc.Module,
		"functionality":   tc.Functionality,
		"description":     tc.Description,
		"steps":           tc.Steps,
		"expected_result": tc.ExpectedResult,
	}
	for k, v := range extra {
		vars[k] = v
	}

	formatted, err := g.templates.Format(template, vars)
	if err != nil {
		return nil, err
	}

	messages := []*types.Message{
		types.NewSystemMessage(formatted.System),
		types.NewUserMessage(formatted.User),
	}

	reply, err := g.provider.Complete(ctx, messages)
	if err != nil {
		return nil, err
	}

	generated := StripFences(reply.Content)
	if strings.TrimSpace(generated) == "" {
		return nil, apperrors.NewLLM(g.provider.GetModelInfo().Provider, g.provider.GetModel(),
			errEmptyGeneration)
	}

	if g.logger != nil {
		g.logger.Infof("generated prompt for %s (%d chars)", tc.TestID, len(generated))
	}

	return &types.TestCasePrompt{
		TestCase:        tc,
		GeneratedPrompt: generated,
		GeneratedAt:     time.Now().UTC(),
	}, nil
}

// StripFences removes a surrounding markdown code fence from model
// output. Models frequently wrap plain-text step lists in fences
// despite instructions not to.
func StripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return trimmed
	}

	// Drop the opening fence line (which may carry a language tag) and
	// a matching closing fence.
	lines = lines[1:]
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
