package types

import "time"

// TestCaseStatus tracks a test case through its lifecycle.
type TestCaseStatus string

const (
	TestCasePending   TestCaseStatus = "pending"
	TestCaseGenerated TestCaseStatus = "generated"
	TestCaseExecuted  TestCaseStatus = "executed"
	TestCaseFailed    TestCaseStatus = "failed"
)

// TestCase is a QA test case as authored in a test-management sheet.
// Only TestID and Description are required; the structured fields are
// carried into prompts as context.
type TestCase struct {
	TestID         string         `json:"test_id"`
	Module         string         `json:"module,omitempty"`
	Functionality  string         `json:"functionality,omitempty"`
	Description    string         `json:"description"`
	Steps          string         `json:"steps,omitempty"`
	ExpectedResult string         `json:"expected_result,omitempty"`
	TestData       string         `json:"test_data,omitempty"`
	Priority       string         `json:"priority,omitempty"`
	Status         TestCaseStatus `json:"status,omitempty"`
}

// TestCasePrompt pairs a test case with the executable automation prompt
// generated for it.
type TestCasePrompt struct {
	TestCase        TestCase  `json:"test_case"`
	GeneratedPrompt string    `json:"generated_prompt"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// EngineVariant selects the browser engine for a run.
type EngineVariant string

const (
	// EngineChromium is the primary engine.
	EngineChromium EngineVariant = "chromium"

	// EngineFirefox is the gecko variant.
	EngineFirefox EngineVariant = "firefox"

	// EngineWebKit is the webkit variant.
	EngineWebKit EngineVariant = "webkit"

	// EngineEdge is Chromium launched through the msedge channel.
	EngineEdge EngineVariant = "edge"
)

// ValidEngine reports whether v names a supported engine variant.
func ValidEngine(v EngineVariant) bool {
	switch v {
	case EngineChromium, EngineFirefox, EngineWebKit, EngineEdge:
		return true
	}
	return false
}

// BrowserConfig carries the per-run browser choices.
type BrowserConfig struct {
	Engine        EngineVariant `json:"engine"`
	Headless      bool          `json:"headless"`
	MaxIterations int           `json:"max_iterations"`
}

// TestInstruction is the immutable input to one automation run.
// GeneratedPrompt, when set, is executed as-is; otherwise the run
// assembles a prompt from Description.
type TestInstruction struct {
	TestID          string        `json:"test_id"`
	Description     string        `json:"description"`
	Module          string        `json:"module,omitempty"`
	Functionality   string        `json:"functionality,omitempty"`
	Priority        string        `json:"priority,omitempty"`
	GeneratedPrompt string        `json:"generated_prompt,omitempty"`
	Browser         BrowserConfig `json:"browser"`
}
