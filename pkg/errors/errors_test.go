package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "invalid input with field",
			err:  NewInvalidInput("test_id", "must not be empty"),
			want: "invalid input for test_id: must not be empty",
		},
		{
			name: "configuration with key",
			err:  NewConfiguration("llm.temperature", "must be between 0 and 2"),
			want: "configuration error for llm.temperature: must be between 0 and 2",
		},
		{
			name: "state error",
			err:  NewState("uninitialized", "browser session not ready"),
			want: "invalid state uninitialized: browser session not ready",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestKindPredicates(t *testing.T) {
	llmErr := NewLLM("openai", "gpt-4o", fmt.Errorf("connection refused"))
	browserErr := NewBrowser("click", fmt.Errorf("selector not found"))

	assert.True(t, IsLLM(llmErr))
	assert.False(t, IsLLM(browserErr))
	assert.True(t, IsBrowser(browserErr))
	assert.False(t, IsBrowser(llmErr))
	assert.True(t, IsInvalidInput(NewInvalidInput("f", "m")))
	assert.True(t, IsConfiguration(NewConfiguration("k", "m")))
	assert.True(t, IsValidation(NewValidation("blocked", nil)))
	assert.True(t, IsState(NewState("s", "m")))
	assert.True(t, IsDatabase(NewDatabase("save", fmt.Errorf("locked"))))
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	inner := NewLLM("groq", "llama-3.3-70b-versatile", fmt.Errorf("timeout"))
	wrapped := fmt.Errorf("run aborted: %w", inner)

	assert.True(t, IsLLM(wrapped))
	assert.False(t, IsBrowser(wrapped))
}
