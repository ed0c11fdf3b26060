// Package groq provides an LLM provider for the Groq inference service.
// Groq exposes an OpenAI-compatible chat endpoint, so the provider is a
// thin construction wrapper over the openai package with Groq defaults.
package groq

import (
	"os"

	apperrors "github.com/webtrailhq/webtrail/pkg/errors"
	"github.com/webtrailhq/webtrail/pkg/llm"
	"github.com/webtrailhq/webtrail/pkg/llm/openai"
)

const (
	// DefaultBaseURL is Groq's OpenAI-compatible endpoint
	DefaultBaseURL = "https://api.groq.com/openai/v1"

	// DefaultModel is used when no model option is supplied
	DefaultModel = "llama-3.3-70b-versatile"
)

// Option configures the Groq provider.
type Option func(*settings)

type settings struct {
	model       string
	baseURL     string
	temperature *float64
	maxTokens   *int
}

// WithModel sets the model to use for completions.
func WithModel(model string) Option {
	return func(s *settings) {
		s.model = model
	}
}

// WithBaseURL overrides the Groq endpoint, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(s *settings) {
		s.baseURL = baseURL
	}
}

// WithTemperature sets the sampling temperature sent on each request.
func WithTemperature(t float64) Option {
	return func(s *settings) {
		s.temperature = &t
	}
}

// WithMaxTokens caps the completion length per request.
func WithMaxTokens(n int) Option {
	return func(s *settings) {
		s.maxTokens = &n
	}
}

// NewProvider creates a Groq-backed provider. If apiKey is empty the
// GROQ_API_KEY environment variable is used.
func NewProvider(apiKey string, opts ...Option) (llm.Provider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GROQ_API_KEY")
	}
	if apiKey == "" {
		return nil, apperrors.NewConfiguration("llm.api_key",
			"Groq API key is required (provide via parameter or GROQ_API_KEY environment variable)")
	}

	s := settings{
		model:   DefaultModel,
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(&s)
	}

	providerOpts := []openai.ProviderOption{
		openai.WithProviderName("groq"),
		openai.WithBaseURL(s.baseURL),
		openai.WithModel(s.model),
	}
	if s.temperature != nil {
		providerOpts = append(providerOpts, openai.WithTemperature(*s.temperature))
	}
	if s.maxTokens != nil {
		providerOpts = append(providerOpts, openai.WithMaxTokens(*s.maxTokens))
	}

	return openai.NewProvider(apiKey, providerOpts...)
}
