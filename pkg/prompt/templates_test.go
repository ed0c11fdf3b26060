package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/webtrailhq/webtrail/pkg/errors"
)

func newTestManager() *Manager {
	return NewManager(NewValidator(DefaultValidatorConfig()))
}

func conversionVars() map[string]string {
	return map[string]string{
		"test_id":         "TC-001",
		"module":          "Auth",
		"functionality":   "Login",
		"description":     "Verify a registered user can log in with valid credentials",
		"steps":           "1. Open site 2. Enter credentials 3. Submit",
		"expected_result": "User lands on the dashboard",
	}
}

func TestFormatTestCaseConversion(t *testing.T) {
	m := newTestManager()

	formatted, err := m.Format(TemplateTestCaseConversion, conversionVars())
	require.NoError(t, err)

	assert.Contains(t, formatted.System, "QA automation engineer")
	assert.Contains(t, formatted.User, "Test ID: TC-001")
	assert.Contains(t, formatted.User, "Module: Auth")
	assert.NotContains(t, formatted.User, "{test_id}")
}

func TestFormatMissingVariableIsConfigurationError(t *testing.T) {
	m := newTestManager()

	vars := conversionVars()
	delete(vars, "expected_result")

	_, err := m.Format(TemplateTestCaseConversion, vars)
	require.Error(t, err)
	assert.True(t, apperrors.IsConfiguration(err))
	assert.Contains(t, err.Error(), "expected_result")
}

func TestFormatUnknownTemplateIsConfigurationError(t *testing.T) {
	m := newTestManager()

	_, err := m.Format("no_such_template", nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsConfiguration(err))
}

func TestFormatRejectsInjectedDescription(t *testing.T) {
	m := newTestManager()

	vars := conversionVars()
	vars["description"] = "<script>alert(1)</script>login to site"

	_, err := m.Format(TemplateTestCaseConversion, vars)
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidInput(err))
}

func TestLoadOverlayReplacesTemplate(t *testing.T) {
	m := newTestManager()

	path := filepath.Join(t.TempDir(), "templates.yaml")
	overlay := `templates:
  - name: test_case_conversion
    system_prompt: custom system framing for conversions
    user_template: "Just do it for {test_id} with this description {description} please"
`
	require.NoError(t, os.WriteFile(path, []byte(overlay), 0600))
	require.NoError(t, m.LoadOverlay(path))

	formatted, err := m.Format(TemplateTestCaseConversion, map[string]string{
		"test_id":     "TC-002",
		"description": "verify checkout works end to end",
	})
	require.NoError(t, err)
	assert.Equal(t, "custom system framing for conversions", formatted.System)
	assert.Contains(t, formatted.User, "TC-002")
}

func TestBuildAgentSystemPrompt(t *testing.T) {
	prompt := BuildAgentSystemPrompt([]ToolDescriptor{
		{Name: "navigate", Description: "Navigate the browser to a URL"},
		{Name: "close_browser", Description: "Close the browser"},
	})

	assert.Contains(t, prompt, "USE_TOOL: navigate")
	assert.Contains(t, prompt, "- navigate: Navigate the browser to a URL")
	assert.Contains(t, prompt, "close_browser")
	assert.Contains(t, prompt, "ARGS:")
	assert.Contains(t, prompt, "without a USE_TOOL marker")
}
