// Package prompt holds the template registry, the prompt assembler and
// the rule-based safety validator that gates every user prompt before
// it reaches a model.
package prompt

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/webtrailhq/webtrail/pkg/errors"
)

// Template pairs a system prompt with a user prompt template. User
// templates carry {placeholder} slots filled by Format.
type Template struct {
	Name         string `yaml:"name"`
	SystemPrompt string `yaml:"system_prompt"`
	UserTemplate string `yaml:"user_template"`
}

// FormattedPrompt is the validated output of Format.
type FormattedPrompt struct {
	System string
	User   string
}

// Built-in template names.
const (
	TemplateTestCaseConversion  = "test_case_conversion"
	TemplateTestCaseWithContext = "test_case_with_context"
)

var placeholderRegexp = regexp.MustCompile(`\{([a-z_]+)\}`)

// Manager holds the named templates and formats them with strict
// variable substitution, gated through the validator.
type Manager struct {
	templates map[string]*Template
	validator *Validator
}

// NewManager creates a manager with the built-in templates registered
// and the given validator guarding Format output.
func NewManager(validator *Validator) *Manager {
	m := &Manager{
		templates: make(map[string]*Template),
		validator: validator,
	}
	for _, t := range builtinTemplates() {
		m.Register(t)
	}
	return m
}

// Register adds or replaces a template.
func (m *Manager) Register(t *Template) {
	m.templates[t.Name] = t
}

// Get returns a registered template by name.
func (m *Manager) Get(name string) (*Template, error) {
	t, ok := m.templates[name]
	if !ok {
		return nil, apperrors.NewConfiguration("template",
			fmt.Sprintf("unknown template %q", name))
	}
	return t, nil
}

// Names returns the registered template names in sorted order.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.templates))
	for name := range m.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Format substitutes vars into the named template and validates the
// resulting user prompt. Substitution is strict: a placeholder with no
// matching variable is a ConfigurationError. A prompt the validator
// rejects is an InvalidInput error; warnings pass through.
func (m *Manager) Format(name string, vars map[string]string) (*FormattedPrompt, error) {
	t, err := m.Get(name)
	if err != nil {
		return nil, err
	}

	user, err := substitute(t.UserTemplate, vars)
	if err != nil {
		return nil, err
	}

	report := m.validator.Validate(user)
	if !report.Valid {
		return nil, apperrors.NewInvalidInput("prompt",
			strings.Join(report.BlockingFindings(), "; "))
	}

	return &FormattedPrompt{System: t.SystemPrompt, User: user}, nil
}

// Validate runs the manager's validator directly, for callers that
// bring a pre-generated prompt instead of a template.
func (m *Manager) Validate(text string) *Report {
	return m.validator.Validate(text)
}

// LoadOverlay reads a YAML file of templates and registers them over
// the built-ins. The file holds a top-level "templates" list.
func (m *Manager) LoadOverlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return apperrors.NewConfiguration("template_overlay", err.Error())
	}

	var overlay struct {
		Templates []*Template `yaml:"templates"`
	}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return apperrors.NewConfiguration("template_overlay", err.Error())
	}

	for _, t := range overlay.Templates {
		if t.Name == "" {
			return apperrors.NewConfiguration("template_overlay", "template without a name")
		}
		m.Register(t)
	}
	return nil
}

// substitute fills {placeholder} slots from vars. Every placeholder in
// the template must have a value; extra vars are ignored.
func substitute(template string, vars map[string]string) (string, error) {
	var missing []string
	out := placeholderRegexp.ReplaceAllStringFunc(template, func(match string) string {
		key := match[1 : len(match)-1]
		val, ok := vars[key]
		if !ok {
			missing = append(missing, key)
			return match
		}
		return val
	})
	if len(missing) > 0 {
		return "", apperrors.NewConfiguration("template",
			fmt.Sprintf("missing template variables: %s", strings.Join(missing, ", ")))
	}
	return out, nil
}

func builtinTemplates() []*Template {
	return []*Template{
		{
			Name: TemplateTestCaseConversion,
			SystemPrompt: `You are a QA automation engineer. Convert manual test cases into precise, numbered browser automation steps.

Rules:
- Produce a single numbered list, one action per step.
- Every step is an imperative instruction a browser agent can execute: navigate, click, type, wait, verify.
- The first step always navigates to a full URL including the protocol.
- Reference elements by visible text or a concrete CSS selector.
- Include explicit waits before interacting with elements that load dynamically.
- The last step closes the browser.
- Output only the numbered steps, no commentary.`,
			UserTemplate: `Convert this test case into automation steps:

Test ID: {test_id}
Module: {module}
Functionality: {functionality}
Description: {description}
Steps: {steps}
Expected Result: {expected_result}`,
		},
		{
			Name: TemplateTestCaseWithContext,
			SystemPrompt: `You are a QA automation engineer. Convert manual test cases into precise, numbered browser automation steps, using the provided page context to choose accurate selectors.

Rules:
- Produce a single numbered list, one action per step.
- Prefer selectors and element text that appear in the page context.
- The first step always navigates to a full URL including the protocol.
- Include explicit waits before interacting with elements that load dynamically.
- The last step closes the browser.
- Output only the numbered steps, no commentary.`,
			UserTemplate: `Convert this test case into automation steps:

Test ID: {test_id}
Module: {module}
Functionality: {functionality}
Description: {description}
Steps: {steps}
Expected Result: {expected_result}

Known page context from a previous run:
{page_context}`,
		},
	}
}
