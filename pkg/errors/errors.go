// Package errors defines the error taxonomy shared across the run
// pipeline. Every error carries enough structured context (field, tool,
// provider) for callers to map it onto an HTTP status or log line
// without string matching.
package errors

import (
	"errors"
	"fmt"
)

// InvalidInputError reports caller input that was rejected before any
// work started.
type InvalidInputError struct {
	Field   string
	Message string
}

func (e *InvalidInputError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid input for %s: %s", e.Field, e.Message)
	}
	return "invalid input: " + e.Message
}

// NewInvalidInput creates an InvalidInputError for the given field.
func NewInvalidInput(field, message string) *InvalidInputError {
	return &InvalidInputError{Field: field, Message: message}
}

// ConfigurationError reports a missing or out-of-range configuration
// value. Fatal at the start of a run.
type ConfigurationError struct {
	Key     string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("configuration error for %s: %s", e.Key, e.Message)
	}
	return "configuration error: " + e.Message
}

// NewConfiguration creates a ConfigurationError for the given key.
func NewConfiguration(key, message string) *ConfigurationError {
	return &ConfigurationError{Key: key, Message: message}
}

// ValidationError reports a prompt that failed safety validation.
type ValidationError struct {
	Message  string
	Findings []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Message
}

// NewValidation creates a ValidationError with the blocking findings.
func NewValidation(message string, findings []string) *ValidationError {
	return &ValidationError{Message: message, Findings: findings}
}

// LLMError reports a model transport failure. Fatal to the current run.
type LLMError struct {
	Provider string
	Model    string
	Err      error
}

func (e *LLMError) Error() string {
	return fmt.Sprintf("llm request failed (provider=%s model=%s): %v", e.Provider, e.Model, e.Err)
}

func (e *LLMError) Unwrap() error { return e.Err }

// NewLLM wraps a transport error with provider context.
func NewLLM(provider, model string, err error) *LLMError {
	return &LLMError{Provider: provider, Model: model, Err: err}
}

// BrowserError reports a browser driver failure attributed to a tool.
type BrowserError struct {
	Tool string
	Err  error
}

func (e *BrowserError) Error() string {
	return fmt.Sprintf("browser error in %s: %v", e.Tool, e.Err)
}

func (e *BrowserError) Unwrap() error { return e.Err }

// NewBrowser wraps a driver error with the failing tool's name.
func NewBrowser(tool string, err error) *BrowserError {
	return &BrowserError{Tool: tool, Err: err}
}

// StateError reports an illegal lifecycle transition, such as using a
// session before initialization or exhausting the iteration ceiling.
type StateError struct {
	State   string
	Message string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("invalid state %s: %s", e.State, e.Message)
}

// NewState creates a StateError for the named state.
func NewState(state, message string) *StateError {
	return &StateError{State: state, Message: message}
}

// DatabaseError reports a persistence failure. Never fatal to a run.
type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database error during %s: %v", e.Op, e.Err)
}

func (e *DatabaseError) Unwrap() error { return e.Err }

// NewDatabase wraps a store error with the failing operation.
func NewDatabase(op string, err error) *DatabaseError {
	return &DatabaseError{Op: op, Err: err}
}

// IsInvalidInput reports whether err is an InvalidInputError.
func IsInvalidInput(err error) bool {
	var target *InvalidInputError
	return errors.As(err, &target)
}

// IsConfiguration reports whether err is a ConfigurationError.
func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsLLM reports whether err is an LLMError.
func IsLLM(err error) bool {
	var target *LLMError
	return errors.As(err, &target)
}

// IsBrowser reports whether err is a BrowserError.
func IsBrowser(err error) bool {
	var target *BrowserError
	return errors.As(err, &target)
}

// IsState reports whether err is a StateError.
func IsState(err error) bool {
	var target *StateError
	return errors.As(err, &target)
}

// IsDatabase reports whether err is a DatabaseError.
func IsDatabase(err error) bool {
	var target *DatabaseError
	return errors.As(err, &target)
}
