package main

import (
	"fmt"

	"github.com/webtrailhq/webtrail/pkg/config"
	apperrors "github.com/webtrailhq/webtrail/pkg/errors"
	"github.com/webtrailhq/webtrail/pkg/llm"
	"github.com/webtrailhq/webtrail/pkg/llm/groq"
	"github.com/webtrailhq/webtrail/pkg/llm/openai"
	"github.com/webtrailhq/webtrail/pkg/logging"
	"github.com/webtrailhq/webtrail/pkg/store"
)

// buildProvider constructs the configured model provider.
func buildProvider(cfg *config.Config) (llm.Provider, error) {
	switch cfg.LLM.Provider {
	case "openai":
		opts := []openai.ProviderOption{
			openai.WithModel(cfg.LLM.OpenAIModel),
			openai.WithTemperature(cfg.LLM.Temperature),
			openai.WithMaxTokens(cfg.LLM.MaxTokens),
		}
		if cfg.LLM.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.LLM.BaseURL))
		}
		provider, err := openai.NewProvider(cfg.LLM.APIKey, opts...)
		if err != nil {
			return nil, err
		}
		return provider, nil
	case "groq":
		return groq.NewProvider(cfg.LLM.APIKey,
			groq.WithModel(cfg.LLM.GroqModel),
			groq.WithTemperature(cfg.LLM.Temperature),
			groq.WithMaxTokens(cfg.LLM.MaxTokens),
		)
	default:
		return nil, apperrors.NewConfiguration("llm.provider",
			fmt.Sprintf("unknown provider %q", cfg.LLM.Provider))
	}
}

// buildStore constructs the configured outcome store.
func buildStore(cfg *config.Config, logger *logging.Logger) (*store.Store, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		return store.NewSQLiteStore(cfg.Database.DSN, logger)
	case "mysql":
		return store.NewMySQLStore(cfg.Database.DSN, logger)
	default:
		return nil, apperrors.NewConfiguration("database.driver",
			fmt.Sprintf("unknown driver %q", cfg.Database.Driver))
	}
}

// buildLogger constructs a component logger at the configured level.
func buildLogger(cfg *config.Config, component string) *logging.Logger {
	logger, err := logging.NewLogger(component)
	if err != nil {
		// NewLogger already returned a stderr fallback.
		fmt.Fprintf(logger.Writer(), "file logging unavailable: %v\n", err)
	}
	logger.SetLevel(logging.ParseLevel(cfg.Log.Level))
	return logger
}
