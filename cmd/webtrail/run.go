package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/webtrailhq/webtrail/pkg/browser"
	"github.com/webtrailhq/webtrail/pkg/config"
	"github.com/webtrailhq/webtrail/pkg/llm/tokenizer"
	"github.com/webtrailhq/webtrail/pkg/prompt"
	"github.com/webtrailhq/webtrail/pkg/runner"
	"github.com/webtrailhq/webtrail/pkg/types"
)

var runFlags struct {
	configFile    string
	testID        string
	description   string
	promptFile    string
	engine        string
	headful       bool
	maxIterations int
	save          bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one automation run and print the outcome",
	Long: `Executes a single test instruction against a real browser and
prints the outcome record, including the discovered navigation graph,
as JSON on stdout.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runFlags.configFile, "config", "c", "", "config file path")
	runCmd.Flags().StringVar(&runFlags.testID, "test-id", "", "test identifier (required)")
	runCmd.Flags().StringVar(&runFlags.description, "description", "", "natural language test description")
	runCmd.Flags().StringVar(&runFlags.promptFile, "prompt-file", "", "file containing a pre-generated prompt, used instead of the description")
	runCmd.Flags().StringVar(&runFlags.engine, "engine", "", "browser engine override (chromium, firefox, webkit, edge)")
	runCmd.Flags().BoolVar(&runFlags.headful, "headful", false, "run the browser with a visible window")
	runCmd.Flags().IntVar(&runFlags.maxIterations, "max-iterations", 0, "agent iteration ceiling override")
	runCmd.Flags().BoolVar(&runFlags.save, "save", false, "persist the outcome to the configured store")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(runFlags.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := buildLogger(cfg, "run")
	defer logger.Close()

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	instruction := types.TestInstruction{
		TestID:      runFlags.testID,
		Description: runFlags.description,
	}
	if runFlags.promptFile != "" {
		raw, err := os.ReadFile(runFlags.promptFile)
		if err != nil {
			return fmt.Errorf("failed to read prompt file: %w", err)
		}
		instruction.GeneratedPrompt = string(raw)
	}
	if runFlags.engine != "" {
		instruction.Browser = types.BrowserConfig{
			Engine:        types.EngineVariant(runFlags.engine),
			Headless:      !runFlags.headful,
			MaxIterations: runFlags.maxIterations,
		}
	} else if runFlags.maxIterations > 0 {
		instruction.Browser.MaxIterations = runFlags.maxIterations
	}

	validator := prompt.NewValidator(prompt.ValidatorConfig{
		MaxLength:      cfg.Validation.MaxLength,
		MinLength:      cfg.Validation.MinLength,
		MaxTokens:      cfg.Validation.MaxTokens,
		AllowHTML:      cfg.Validation.AllowHTML,
		Strict:         cfg.Validation.Strict,
		CheckInjection: cfg.Validation.CheckInjection,
		CheckProfanity: cfg.Validation.CheckProfanity,
	})

	opts := []runner.Option{
		runner.WithLogger(logger),
		runner.WithMaxIterations(cfg.Browser.MaxIterations),
		runner.WithBrowserOptions(browser.Options{
			Engine:        types.EngineVariant(cfg.Browser.Engine),
			Headless:      cfg.Browser.Headless,
			ScreenshotDir: cfg.Browser.ScreenshotDir,
			AllowedHosts:  cfg.Browser.AllowedHosts,
		}),
	}
	if tok, err := tokenizer.New(); err == nil {
		opts = append(opts, runner.WithTokenizer(tok))
	}

	coordinator := runner.NewCoordinator(provider, validator, opts...)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	outcome, err := coordinator.Execute(ctx, instruction)
	if err != nil {
		return err
	}

	if runFlags.save {
		outcomes, err := buildStore(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to open outcome store: %w", err)
		}
		id, err := outcomes.Save(ctx, outcome)
		if err != nil {
			logger.Errorf("failed to persist outcome: %v", err)
		} else {
			fmt.Fprintf(os.Stderr, "outcome saved as record %d\n", id)
		}
	}

	encoded, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))

	if outcome.Status != types.StatusSuccess {
		return fmt.Errorf("run finished with status %s", outcome.Status)
	}
	return nil
}
