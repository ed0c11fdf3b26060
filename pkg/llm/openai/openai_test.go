package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/webtrailhq/webtrail/pkg/errors"
	"github.com/webtrailhq/webtrail/pkg/types"
)

func TestCompleteReturnsAssistantMessage(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{
					"message":       map[string]string{"role": "assistant", "content": "hello back"},
					"finish_reason": "stop",
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewProvider("test-key",
		WithBaseURL(server.URL),
		WithModel("gpt-4o"),
		WithTemperature(0.3),
	)
	require.NoError(t, err)

	reply, err := provider.Complete(context.Background(), []*types.Message{
		types.NewSystemMessage("be brief"),
		types.NewUserMessage("hello"),
	})
	require.NoError(t, err)

	assert.Equal(t, types.RoleAssistant, reply.Role)
	assert.Equal(t, "hello back", reply.Content)
	assert.Equal(t, "gpt-4o", gotBody["model"])
	assert.Equal(t, 0.3, gotBody["temperature"])
	assert.Len(t, gotBody["messages"], 2)
}

func TestCompleteSurfacesAPIErrorAsLLMError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider, err := NewProvider("test-key", WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = provider.Complete(context.Background(), []*types.Message{types.NewUserMessage("hi")})
	require.Error(t, err)
	assert.True(t, apperrors.IsLLM(err))

	var llmErr *apperrors.LLMError
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, "openai", llmErr.Provider)
	assert.Equal(t, DefaultModel, llmErr.Model)
}

func TestNewProviderRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := NewProvider("")
	require.Error(t, err)
	assert.True(t, apperrors.IsConfiguration(err))
}

func TestCloneWithModel(t *testing.T) {
	provider, err := NewProvider("test-key", WithModel("gpt-4o"))
	require.NoError(t, err)

	clone := provider.CloneWithModel("gpt-4o-mini")
	assert.Equal(t, "gpt-4o-mini", clone.GetModel())
	assert.Equal(t, "gpt-4o", provider.GetModel())
	assert.Equal(t, provider.GetAPIKey(), clone.GetAPIKey())
	assert.Equal(t, "gpt-4o-mini", clone.GetModelInfo().Name)
	assert.Equal(t, "gpt-4o", provider.GetModelInfo().Name)
}

func TestProviderNameOverride(t *testing.T) {
	provider, err := NewProvider("test-key",
		WithProviderName("groq"),
		WithBaseURL("https://api.groq.com/openai/v1"),
	)
	require.NoError(t, err)
	assert.Equal(t, "groq", provider.GetModelInfo().Provider)
}
