// Package ingest reads authored test cases from spreadsheets and
// writes generated prompts back out. The sheet layout is one header
// row followed by one test case per row.
package ingest

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/webtrailhq/webtrail/pkg/errors"
	"github.com/webtrailhq/webtrail/pkg/types"
)

// Recognized header names, matched case-insensitively after trimming.
const (
	headerTestID         = "test id"
	headerModule         = "module"
	headerFunctionality  = "functionality"
	headerDescription    = "description"
	headerSteps          = "steps"
	headerExpectedResult = "expected result"
	headerTestData       = "test data"
	headerPriority       = "priority"
)

// ReadTestCases loads every test case from the first sheet of the
// workbook. Rows without a Test ID are skipped.
func ReadTestCases(path string) ([]types.TestCase, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewInvalidInput("file", fmt.Sprintf("cannot open workbook: %v", err))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewInvalidInput("file", "workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.NewInvalidInput("file", fmt.Sprintf("cannot read sheet %q: %v", sheets[0], err))
	}
	if len(rows) < 2 {
		return nil, apperrors.NewInvalidInput("file", "workbook has no data rows")
	}

	columns, err := mapHeader(rows[0])
	if err != nil {
		return nil, err
	}

	var cases []types.TestCase
	for _, row := range rows[1:] {
		tc := types.TestCase{
			TestID:         cell(row, columns[headerTestID]),
			Module:         cell(row, columns[headerModule]),
			Functionality:  cell(row, columns[headerFunctionality]),
			Description:    cell(row, columns[headerDescription]),
			Steps:          cell(row, columns[headerSteps]),
			ExpectedResult: cell(row, columns[headerExpectedResult]),
			TestData:       cell(row, columns[headerTestData]),
			Priority:       cell(row, columns[headerPriority]),
			Status:         types.TestCasePending,
		}
		if tc.TestID == "" {
			continue
		}
		cases = append(cases, tc)
	}
	return cases, nil
}

// GetTestCaseByID loads one test case from the workbook.
func GetTestCaseByID(path, testID string) (*types.TestCase, error) {
	cases, err := ReadTestCases(path)
	if err != nil {
		return nil, err
	}
	for i := range cases {
		if cases[i].TestID == testID {
			return &cases[i], nil
		}
	}
	return nil, apperrors.NewInvalidInput("test_id", fmt.Sprintf("test case %q not found in workbook", testID))
}

// WritePrompts writes generated prompts to a new workbook, one row per
// prompt, keeping the source test case columns alongside the output.
func WritePrompts(path string, prompts []types.TestCasePrompt) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := []interface{}{
		"Test ID", "Module", "Functionality", "Description",
		"Steps", "Expected Result", "Priority", "Generated Prompt", "Generated At",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return apperrors.NewInvalidInput("file", fmt.Sprintf("cannot write header: %v", err))
	}

	for i, p := range prompts {
		row := []interface{}{
			p.TestCase.TestID,
			p.TestCase.Module,
			p.TestCase.Functionality,
			p.TestCase.Description,
			p.TestCase.Steps,
			p.TestCase.ExpectedResult,
			p.TestCase.Priority,
			p.GeneratedPrompt,
			p.GeneratedAt.Format("2006-01-02 15:04:05"),
		}
		axis := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, axis, &row); err != nil {
			return apperrors.NewInvalidInput("file", fmt.Sprintf("cannot write row %d: %v", i+2, err))
		}
	}

	if err := f.SaveAs(path); err != nil {
		return apperrors.NewInvalidInput("file", fmt.Sprintf("cannot save workbook: %v", err))
	}
	return nil
}

// mapHeader resolves header names to column indexes. Test ID and
// Description are required; the rest are optional.
func mapHeader(header []string) (map[string]int, error) {
	columns := map[string]int{
		headerTestID:         -1,
		headerModule:         -1,
		headerFunctionality:  -1,
		headerDescription:    -1,
		headerSteps:          -1,
		headerExpectedResult: -1,
		headerTestData:       -1,
		headerPriority:       -1,
	}

	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, known := columns[key]; known {
			columns[key] = i
		}
	}

	if columns[headerTestID] < 0 {
		return nil, apperrors.NewInvalidInput("header", "missing required column: Test ID")
	}
	if columns[headerDescription] < 0 {
		return nil, apperrors.NewInvalidInput("header", "missing required column: Description")
	}
	return columns, nil
}

func cell(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}
