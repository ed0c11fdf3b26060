package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/webtrailhq/webtrail/pkg/ingest"
)

var ingestFlags struct {
	testID string
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <workbook.xlsx>",
	Short: "Read test cases from an Excel workbook",
	Long: `Reads test cases from an Excel workbook and prints them as JSON.
The first row must carry at least the Test ID and Description columns.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestFlags.testID, "test-id", "", "print only the test case with this identifier")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := args[0]

	if ingestFlags.testID != "" {
		tc, err := ingest.GetTestCaseByID(path, ingestFlags.testID)
		if err != nil {
			return err
		}
		encoded, err := json.MarshalIndent(tc, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(encoded))
		return nil
	}

	cases, err := ingest.ReadTestCases(path)
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(cases, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	fmt.Fprintf(cmd.ErrOrStderr(), "%d test cases read from %s\n", len(cases), path)
	return nil
}
