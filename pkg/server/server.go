// Package server exposes the orchestration core over HTTP/JSON. The
// server is a thin shell: request decoding, provider selection and
// status mapping live here; everything else is delegated to the core
// packages.
package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/webtrailhq/webtrail/pkg/browser"
	"github.com/webtrailhq/webtrail/pkg/config"
	apperrors "github.com/webtrailhq/webtrail/pkg/errors"
	"github.com/webtrailhq/webtrail/pkg/generator"
	"github.com/webtrailhq/webtrail/pkg/llm"
	"github.com/webtrailhq/webtrail/pkg/llm/groq"
	"github.com/webtrailhq/webtrail/pkg/llm/openai"
	"github.com/webtrailhq/webtrail/pkg/llm/tokenizer"
	"github.com/webtrailhq/webtrail/pkg/logging"
	"github.com/webtrailhq/webtrail/pkg/prompt"
	"github.com/webtrailhq/webtrail/pkg/runner"
	"github.com/webtrailhq/webtrail/pkg/store"
	"github.com/webtrailhq/webtrail/pkg/types"
)

// ProviderFactory builds a provider by name. Tests substitute fakes.
type ProviderFactory func(name string) (llm.Provider, error)

// Server hosts the HTTP surface. The active provider may be swapped at
// runtime; everything else is fixed at construction.
type Server struct {
	cfg       *config.Config
	logger    *logging.Logger
	outcomes  *store.Store
	validator *prompt.Validator
	templates *prompt.Manager
	tokenizer *tokenizer.Tokenizer
	uploadDir string

	newProvider  ProviderFactory
	newToolchain runner.ToolchainFactory

	mu           sync.RWMutex
	provider     llm.Provider
	providerName string

	router *mux.Router
}

// Option configures a Server.
type Option func(*Server)

// WithStore attaches an outcome store. Without one, run results are
// returned but not persisted.
func WithStore(s *store.Store) Option {
	return func(srv *Server) { srv.outcomes = s }
}

// WithLogger attaches a logger.
func WithLogger(logger *logging.Logger) Option {
	return func(srv *Server) { srv.logger = logger }
}

// WithTokenizer enables token accounting in run logs.
func WithTokenizer(tok *tokenizer.Tokenizer) Option {
	return func(srv *Server) { srv.tokenizer = tok }
}

// WithUploadDir sets where uploaded workbooks are stored.
func WithUploadDir(dir string) Option {
	return func(srv *Server) { srv.uploadDir = dir }
}

// WithProviderFactory substitutes provider construction, used by tests.
func WithProviderFactory(factory ProviderFactory) Option {
	return func(srv *Server) { srv.newProvider = factory }
}

// WithToolchainFactory substitutes the browser toolchain for runs,
// used by tests.
func WithToolchainFactory(factory runner.ToolchainFactory) Option {
	return func(srv *Server) { srv.newToolchain = factory }
}

// New creates a server from configuration and builds the initial
// provider.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	srv := &Server{
		cfg:       cfg,
		uploadDir: ".",
	}
	for _, opt := range opts {
		opt(srv)
	}

	srv.validator = prompt.NewValidator(prompt.ValidatorConfig{
		MaxLength:      cfg.Validation.MaxLength,
		MinLength:      cfg.Validation.MinLength,
		MaxTokens:      cfg.Validation.MaxTokens,
		AllowHTML:      cfg.Validation.AllowHTML,
		Strict:         cfg.Validation.Strict,
		CheckInjection: cfg.Validation.CheckInjection,
		CheckProfanity: cfg.Validation.CheckProfanity,
	})
	srv.templates = prompt.NewManager(srv.validator)

	if srv.newProvider == nil {
		srv.newProvider = srv.configuredProvider
	}

	provider, err := srv.newProvider(cfg.LLM.Provider)
	if err != nil {
		return nil, err
	}
	srv.provider = provider
	srv.providerName = cfg.LLM.Provider

	srv.router = mux.NewRouter()
	srv.routes()
	return srv, nil
}

// configuredProvider builds a real provider from config.
func (s *Server) configuredProvider(name string) (llm.Provider, error) {
	switch name {
	case "openai":
		opts := []openai.ProviderOption{
			openai.WithModel(s.cfg.LLM.OpenAIModel),
			openai.WithTemperature(s.cfg.LLM.Temperature),
			openai.WithMaxTokens(s.cfg.LLM.MaxTokens),
		}
		if s.cfg.LLM.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(s.cfg.LLM.BaseURL))
		}
		provider, err := openai.NewProvider(s.cfg.LLM.APIKey, opts...)
		if err != nil {
			return nil, err
		}
		return provider, nil
	case "groq":
		return groq.NewProvider(s.cfg.LLM.APIKey,
			groq.WithModel(s.cfg.LLM.GroqModel),
			groq.WithTemperature(s.cfg.LLM.Temperature),
			groq.WithMaxTokens(s.cfg.LLM.MaxTokens),
		)
	default:
		return nil, apperrors.NewConfiguration("llm.provider",
			fmt.Sprintf("unknown provider %q", name))
	}
}

// activeProvider returns the current provider and its name.
func (s *Server) activeProvider() (llm.Provider, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.provider, s.providerName
}

// switchProvider swaps the active provider.
func (s *Server) switchProvider(name string) error {
	provider, err := s.newProvider(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.provider = provider
	s.providerName = name
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Infof("provider switched to %s (%s)", name, provider.GetModel())
	}
	return nil
}

// newGenerator builds a generator over the active provider.
func (s *Server) newGenerator() *generator.Generator {
	provider, _ := s.activeProvider()
	return generator.NewGenerator(provider, s.templates, generator.WithLogger(s.logger))
}

// newCoordinator builds a run coordinator over the active provider and
// the configured browser defaults.
func (s *Server) newCoordinator() *runner.Coordinator {
	provider, _ := s.activeProvider()

	opts := []runner.Option{
		runner.WithLogger(s.logger),
		runner.WithTokenizer(s.tokenizer),
		runner.WithMaxIterations(s.cfg.Browser.MaxIterations),
		runner.WithBrowserOptions(browser.Options{
			Engine:        types.EngineVariant(s.cfg.Browser.Engine),
			Headless:      s.cfg.Browser.Headless,
			ScreenshotDir: s.cfg.Browser.ScreenshotDir,
			AllowedHosts:  s.cfg.Browser.AllowedHosts,
		}),
	}
	if s.newToolchain != nil {
		opts = append(opts, runner.WithToolchainFactory(s.newToolchain))
	}
	return runner.NewCoordinator(provider, s.validator, opts...)
}

// Router returns the configured handler for mounting or testing.
func (s *Server) Router() http.Handler { return s.router }

// ListenAndServe blocks serving HTTP on the configured address.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}
	if s.logger != nil {
		s.logger.Infof("listening on %s", addr)
	}
	return httpServer.ListenAndServe()
}

func (s *Server) routes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/config", s.handleConfig).Methods(http.MethodGet)
	s.router.HandleFunc("/providers", s.handleProviders).Methods(http.MethodGet)
	s.router.HandleFunc("/change-provider", s.handleChangeProvider).Methods(http.MethodPost)
	s.router.HandleFunc("/generate-prompt", s.handleGeneratePrompt).Methods(http.MethodPost)
	s.router.HandleFunc("/generate-prompts-batch", s.handleGenerateBatch).Methods(http.MethodPost)
	s.router.HandleFunc("/upload-excel", s.handleUploadExcel).Methods(http.MethodPost)
	s.router.HandleFunc("/read-excel", s.handleReadExcel).Methods(http.MethodPost)
	s.router.HandleFunc("/runs", s.handleExecuteRun).Methods(http.MethodPost)
	s.router.HandleFunc("/runs/{id:[0-9]+}", s.handleGetRun).Methods(http.MethodGet)
}
