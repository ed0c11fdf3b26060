package generator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/webtrailhq/webtrail/pkg/errors"
	"github.com/webtrailhq/webtrail/pkg/llm"
	"github.com/webtrailhq/webtrail/pkg/prompt"
	"github.com/webtrailhq/webtrail/pkg/types"
)

type fakeProvider struct {
	reply    string
	fail     error
	requests [][]*types.Message
}

func (p *fakeProvider) Complete(ctx context.Context, messages []*types.Message) (*types.Message, error) {
	p.requests = append(p.requests, messages)
	if p.fail != nil {
		return nil, p.fail
	}
	return types.NewAssistantMessage(p.reply), nil
}

func (p *fakeProvider) GetModelInfo() *types.ModelInfo {
	return &types.ModelInfo{Provider: "test", Name: "fake"}
}
func (p *fakeProvider) GetModel() string   { return "fake" }
func (p *fakeProvider) GetBaseURL() string { return "" }
func (p *fakeProvider) GetAPIKey() string  { return "" }

var _ llm.Provider = (*fakeProvider)(nil)

func newTestGenerator(provider llm.Provider) *Generator {
	manager := prompt.NewManager(prompt.NewValidator(prompt.DefaultValidatorConfig()))
	return NewGenerator(provider, manager)
}

func sampleCase() types.TestCase {
	return types.TestCase{
		TestID:         "TC-001",
		Module:         "Auth",
		Functionality:  "Login",
		Description:    "Verify a registered user can log in with valid credentials",
		Steps:          "Open login page; enter credentials; submit",
		ExpectedResult: "Dashboard is shown",
	}
}

func TestGeneratePromptBuildsConversionRequest(t *testing.T) {
	provider := &fakeProvider{reply: "1. Navigate to https://example.com/login\n2. Type 'user' into #username\n3. Close the browser"}
	g := newTestGenerator(provider)

	result, err := g.GeneratePrompt(context.Background(), sampleCase())
	require.NoError(t, err)

	assert.Equal(t, "TC-001", result.TestCase.TestID)
	assert.Contains(t, result.GeneratedPrompt, "1. Navigate to https://example.com/login")
	assert.False(t, result.GeneratedAt.IsZero())

	require.Len(t, provider.requests, 1)
	request := provider.requests[0]
	require.Len(t, request, 2)
	assert.Equal(t, types.RoleSystem, request[0].Role)
	assert.Equal(t, types.RoleUser, request[1].Role)
	assert.Contains(t, request[1].Content, "Test ID: TC-001")
	assert.Contains(t, request[1].Content, "Description: Verify a registered user can log in")
}

func TestGeneratePromptStripsMarkdownFences(t *testing.T) {
	provider := &fakeProvider{reply: "```text\n1. Navigate to https://example.com\n2. Close the browser\n```"}
	g := newTestGenerator(provider)

	result, err := g.GeneratePrompt(context.Background(), sampleCase())
	require.NoError(t, err)
	assert.Equal(t, "1. Navigate to https://example.com\n2. Close the browser", result.GeneratedPrompt)
}

func TestGeneratePromptRequiresIDAndDescription(t *testing.T) {
	g := newTestGenerator(&fakeProvider{reply: "steps"})

	_, err := g.GeneratePrompt(context.Background(), types.TestCase{Description: "something to verify here"})
	assert.True(t, apperrors.IsInvalidInput(err))

	_, err = g.GeneratePrompt(context.Background(), types.TestCase{TestID: "TC-002"})
	assert.True(t, apperrors.IsInvalidInput(err))
}

func TestGeneratePromptRejectsInjectedDescription(t *testing.T) {
	provider := &fakeProvider{reply: "steps"}
	g := newTestGenerator(provider)

	tc := sampleCase()
	tc.Description = "<script>alert(1)</script> log in to the site"

	_, err := g.GeneratePrompt(context.Background(), tc)
	assert.True(t, apperrors.IsInvalidInput(err))
	assert.Empty(t, provider.requests)
}

func TestGenerateWithContextIncludesPageContext(t *testing.T) {
	provider := &fakeProvider{reply: "1. Navigate to https://example.com\n2. Close the browser"}
	g := newTestGenerator(provider)

	_, err := g.GenerateWithContext(context.Background(), sampleCase(), "page_1: Login (#username, #password, button#submit)")
	require.NoError(t, err)

	require.Len(t, provider.requests, 1)
	assert.Contains(t, provider.requests[0][1].Content, "page_1: Login (#username, #password, button#submit)")
}

func TestGenerateBatchContinuesPastFailures(t *testing.T) {
	provider := &fakeProvider{reply: "1. Navigate to https://example.com\n2. Close the browser"}
	g := newTestGenerator(provider)

	cases := []types.TestCase{
		sampleCase(),
		{TestID: "TC-BAD"}, // missing description
		{TestID: "TC-003", Description: "Verify the footer contains a contact link"},
	}

	prompts, errs := g.GenerateBatch(context.Background(), cases)
	assert.Len(t, prompts, 2)
	assert.Len(t, errs, 1)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, "plain text", StripFences("plain text"))
	assert.Equal(t, "line one\nline two", StripFences("```\nline one\nline two\n```"))
	assert.Equal(t, "steps", StripFences("```markdown\nsteps\n```"))
	assert.Equal(t, "no closing fence", StripFences("```\nno closing fence"))
}
