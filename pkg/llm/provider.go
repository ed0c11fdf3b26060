// Package llm provides abstractions for LLM provider integration.
//
// Example usage:
//
//	provider, err := openai.NewProvider(
//	    os.Getenv("OPENAI_API_KEY"),
//	    openai.WithModel("gpt-4o"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	messages := []*types.Message{
//	    types.NewUserMessage("Hello!"),
//	}
//
//	reply, err := provider.Complete(context.Background(), messages)
package llm

import (
	"context"

	"github.com/webtrailhq/webtrail/pkg/types"
)

// ModelCloner is an optional interface that LLM providers can implement to
// support lightweight per-call model overrides without constructing a full
// second provider. The returned provider shares credentials and transport
// with the original but directs calls to the given model.
type ModelCloner interface {
	CloneWithModel(model string) Provider
}

// Provider defines the interface for LLM integrations.
//
// Providers are stateless across calls; conversation continuity is the
// caller's responsibility. A provider takes an ordered message list and
// returns a single assistant message, with transport failures surfaced
// as LLMError. Providers never retry.
type Provider interface {
	// Complete sends messages to the LLM and returns the full response.
	//
	// Returns the assistant's response message or an LLMError carrying
	// the provider and model names.
	Complete(ctx context.Context, messages []*types.Message) (*types.Message, error)

	// GetModelInfo returns information about the LLM model being used.
	GetModelInfo() *types.ModelInfo

	// GetModel returns the model name being used.
	GetModel() string

	// GetBaseURL returns the base URL being used for API requests.
	GetBaseURL() string

	// GetAPIKey returns the API key being used for authentication.
	GetAPIKey() string
}
