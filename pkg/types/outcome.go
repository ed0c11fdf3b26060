package types

import "time"

// RunStatus is the terminal classification of one automation run.
type RunStatus string

const (
	// StatusSuccess means the loop completed and no critical tool failed.
	StatusSuccess RunStatus = "success"

	// StatusFailed means a critical tool failed or the iteration ceiling
	// was reached before the model signalled completion.
	StatusFailed RunStatus = "failed"

	// StatusError means the run was aborted before completing, typically
	// by a model transport failure.
	StatusError RunStatus = "error"
)

// Outcome is the structured result of one automation run.
// ExecutionTime is wall-clock seconds. StepsExecuted counts successful
// tool executions only.
type Outcome struct {
	TestID        string    `json:"test_id"`
	Status        RunStatus `json:"status"`
	ExecutionTime float64   `json:"execution_time"`
	StepsExecuted int       `json:"steps_executed"`
	AgentOutput   string    `json:"agent_output"`
	Pages         []Page    `json:"pages"`
	Edges         []Edge    `json:"edges"`
	Screenshots   []string  `json:"screenshots"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	ExecutedAt    time.Time `json:"executed_at"`
}
