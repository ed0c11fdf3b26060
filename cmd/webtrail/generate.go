package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/webtrailhq/webtrail/pkg/config"
	"github.com/webtrailhq/webtrail/pkg/generator"
	"github.com/webtrailhq/webtrail/pkg/ingest"
	"github.com/webtrailhq/webtrail/pkg/prompt"
	"github.com/webtrailhq/webtrail/pkg/types"
)

var generateFlags struct {
	configFile  string
	excelPath   string
	outputPath  string
	testID      string
	description string
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate automation prompts from test cases",
	Long: `Generates executable automation prompts from test case
descriptions, either inline via flags or in bulk from an Excel
workbook. Bulk results are written to a new workbook.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateFlags.configFile, "config", "c", "", "config file path")
	generateCmd.Flags().StringVar(&generateFlags.excelPath, "excel", "", "workbook with test cases to convert")
	generateCmd.Flags().StringVarP(&generateFlags.outputPath, "output", "o", "prompts.xlsx", "output workbook for bulk generation")
	generateCmd.Flags().StringVar(&generateFlags.testID, "test-id", "", "test identifier (inline mode, or filter for workbook mode)")
	generateCmd.Flags().StringVar(&generateFlags.description, "description", "", "test description (inline mode)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(generateFlags.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := buildLogger(cfg, "generate")
	defer logger.Close()

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
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
	gen := generator.NewGenerator(provider, prompt.NewManager(validator),
		generator.WithLogger(logger))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if generateFlags.excelPath == "" {
		return generateInline(ctx, gen)
	}
	return generateFromWorkbook(ctx, gen)
}

// generateInline converts a single test case supplied via flags and
// prints the result as JSON.
func generateInline(ctx context.Context, gen *generator.Generator) error {
	if generateFlags.testID == "" || generateFlags.description == "" {
		return fmt.Errorf("inline mode requires --test-id and --description")
	}

	result, err := gen.GeneratePrompt(ctx, types.TestCase{
		TestID:      generateFlags.testID,
		Description: generateFlags.description,
	})
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

// generateFromWorkbook converts test cases read from a workbook and
// writes the prompts to the output workbook.
func generateFromWorkbook(ctx context.Context, gen *generator.Generator) error {
	if generateFlags.testID != "" {
		tc, err := ingest.GetTestCaseByID(generateFlags.excelPath, generateFlags.testID)
		if err != nil {
			return err
		}
		result, err := gen.GeneratePrompt(ctx, *tc)
		if err != nil {
			return err
		}
		if err := ingest.WritePrompts(generateFlags.outputPath, []types.TestCasePrompt{*result}); err != nil {
			return err
		}
		fmt.Printf("1 prompt written to %s\n", generateFlags.outputPath)
		return nil
	}

	cases, err := ingest.ReadTestCases(generateFlags.excelPath)
	if err != nil {
		return err
	}

	prompts, errs := gen.GenerateBatch(ctx, cases)
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "generation error: %v\n", err)
	}
	if len(prompts) == 0 {
		return fmt.Errorf("no prompts generated from %d test cases", len(cases))
	}

	if err := ingest.WritePrompts(generateFlags.outputPath, prompts); err != nil {
		return err
	}
	fmt.Printf("%d of %d prompts written to %s\n", len(prompts), len(cases), generateFlags.outputPath)
	return nil
}
