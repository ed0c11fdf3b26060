package prompt

import (
	"fmt"
	"regexp"
	"strings"
)

// Severity classifies a validation finding.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Finding is one validation result.
type Finding struct {
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	Field      string   `json:"field,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// Report is the outcome of validating one prompt. SanitizedPrompt is
// always populated, regardless of verdict.
type Report struct {
	Valid           bool      `json:"is_valid"`
	Findings        []Finding `json:"findings"`
	SanitizedPrompt string    `json:"sanitized_prompt"`
	TokenCount      int       `json:"token_count"`
}

// CriticalFindings returns the messages of all critical findings.
func (r *Report) CriticalFindings() []string {
	var out []string
	for _, f := range r.Findings {
		if f.Severity == SeverityCritical {
			out = append(out, f.Message)
		}
	}
	return out
}

// BlockingFindings returns the messages of findings that made the
// report invalid under the active policy.
func (r *Report) BlockingFindings() []string {
	var out []string
	for _, f := range r.Findings {
		if f.Severity == SeverityCritical || f.Severity == SeverityError {
			out = append(out, f.Message)
		}
	}
	return out
}

// ValidatorConfig enumerates the validator limits and toggles.
type ValidatorConfig struct {
	MaxLength       int
	MinLength       int
	MaxTokens       int
	AllowHTML       bool
	AllowCodeFences bool
	Strict          bool
	CheckInjection  bool
	CheckProfanity  bool
}

// DefaultValidatorConfig returns the limits used when callers pass a
// zero config.
func DefaultValidatorConfig() ValidatorConfig {
	return ValidatorConfig{
		MaxLength:      10000,
		MinLength:      10,
		MaxTokens:      4000,
		CheckInjection: true,
	}
}

// Injection patterns produce critical findings. Matching is
// case-insensitive; script blocks match across lines.
var injectionPatterns = []struct {
	re      *regexp.Regexp
	message string
}{
	{regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`), "script tag detected"},
	{regexp.MustCompile(`(?i)javascript:`), "javascript scheme detected"},
	{regexp.MustCompile(`(?i)\bon\w+\s*=`), "inline event handler detected"},
	{regexp.MustCompile(`(?i)\beval\s*\(`), "eval call detected"},
	{regexp.MustCompile(`(?i)\bexec\s*\(`), "exec call detected"},
	{regexp.MustCompile(`(?i)__import__`), "dynamic import detected"},
	{regexp.MustCompile(`(?i)\bsubprocess\b`), "subprocess reference detected"},
	{regexp.MustCompile(`(?i)os\.system`), "os.system reference detected"},
	{regexp.MustCompile(`\$\{[^}]*\}`), "template placeholder detected"},
	{regexp.MustCompile(`\{\{[^}]*\}\}`), "template placeholder detected"},
}

// Instruction-override phrases are part of the injection set and
// produce critical findings.
var overridePhrases = []string{
	"ignore previous instructions",
	"ignore all previous instructions",
	"disregard all previous",
	"forget everything",
	"ignore the above",
	"jailbreak",
	"do anything now",
	"developer mode",
}

var profanityWords = []string{
	"damn", "hell", "crap",
}

var htmlTagRegex = regexp.MustCompile(`(?i)<\s*/?\s*[a-z][a-z0-9-]*[^>]*>`)

// Validator is a rule-based prompt safety checker. It is a pure
// function over (text, config); the same input always yields the same
// report.
type Validator struct {
	config ValidatorConfig
}

// NewValidator creates a validator. A zero MaxLength selects the
// default limits.
func NewValidator(config ValidatorConfig) *Validator {
	if config.MaxLength == 0 {
		defaults := DefaultValidatorConfig()
		defaults.Strict = config.Strict
		config = defaults
	}
	return &Validator{config: config}
}

// Validate checks the prompt against all configured rules and returns a
// full report, including the sanitized form and an estimated token
// count (characters divided by four).
func (v *Validator) Validate(text string) *Report {
	report := &Report{
		TokenCount:      estimateTokens(text),
		SanitizedPrompt: Sanitize(text),
	}

	v.checkBasic(text, report)
	v.checkLength(text, report)
	v.checkTokens(report)
	if v.config.CheckInjection {
		v.checkInjection(text, report)
	}
	v.checkHTML(text, report)
	if v.config.CheckProfanity {
		v.checkProfanity(text, report)
	}
	v.checkStructure(text, report)

	report.Valid = v.isValid(report)
	return report
}

// isValid implements the blocking policy: critical findings always
// block; error findings block only in strict mode.
func (v *Validator) isValid(report *Report) bool {
	for _, f := range report.Findings {
		if f.Severity == SeverityCritical {
			return false
		}
		if v.config.Strict && f.Severity == SeverityError {
			return false
		}
	}
	return true
}

func (v *Validator) checkBasic(text string, report *Report) {
	if strings.TrimSpace(text) == "" {
		report.Findings = append(report.Findings, Finding{
			Severity: SeverityCritical,
			Message:  "prompt is empty",
			Field:    "prompt",
		})
	}
}

func (v *Validator) checkLength(text string, report *Report) {
	if len(text) < v.config.MinLength {
		report.Findings = append(report.Findings, Finding{
			Severity:   SeverityError,
			Message:    fmt.Sprintf("prompt is shorter than %d characters", v.config.MinLength),
			Field:      "prompt",
			Suggestion: "describe the test in more detail",
		})
	}
	if len(text) > v.config.MaxLength {
		report.Findings = append(report.Findings, Finding{
			Severity:   SeverityError,
			Message:    fmt.Sprintf("prompt exceeds %d characters", v.config.MaxLength),
			Field:      "prompt",
			Suggestion: "shorten the test description",
		})
	}
}

func (v *Validator) checkTokens(report *Report) {
	if report.TokenCount > v.config.MaxTokens {
		report.Findings = append(report.Findings, Finding{
			Severity:   SeverityError,
			Message:    fmt.Sprintf("estimated %d tokens exceeds the %d token ceiling", report.TokenCount, v.config.MaxTokens),
			Field:      "prompt",
			Suggestion: "shorten the test description",
		})
	}
}

func (v *Validator) checkInjection(text string, report *Report) {
	for _, p := range injectionPatterns {
		if p.re.MatchString(text) {
			report.Findings = append(report.Findings, Finding{
				Severity:   SeverityCritical,
				Message:    p.message,
				Field:      "prompt",
				Suggestion: "remove code or markup from the test description",
			})
		}
	}

	lower := strings.ToLower(text)
	for _, phrase := range overridePhrases {
		if strings.Contains(lower, phrase) {
			report.Findings = append(report.Findings, Finding{
				Severity:   SeverityCritical,
				Message:    fmt.Sprintf("instruction-override phrase %q detected", phrase),
				Field:      "prompt",
				Suggestion: "describe the test without directives aimed at the model",
			})
		}
	}
}

func (v *Validator) checkHTML(text string, report *Report) {
	if v.config.AllowHTML {
		return
	}
	if htmlTagRegex.MatchString(text) {
		report.Findings = append(report.Findings, Finding{
			Severity:   SeverityWarning,
			Message:    "prompt contains HTML markup",
			Field:      "prompt",
			Suggestion: "describe elements by text or selector instead of raw markup",
		})
	}
	if !v.config.AllowCodeFences && strings.Contains(text, "```") {
		report.Findings = append(report.Findings, Finding{
			Severity: SeverityWarning,
			Message:  "prompt contains a code fence",
			Field:    "prompt",
		})
	}
}

func (v *Validator) checkProfanity(text string, report *Report) {
	lower := strings.ToLower(text)
	for _, word := range profanityWords {
		if strings.Contains(lower, word) {
			report.Findings = append(report.Findings, Finding{
				Severity: SeverityWarning,
				Message:  "prompt contains potentially unprofessional language",
				Field:    "prompt",
			})
			return
		}
	}
}

func (v *Validator) checkStructure(text string, report *Report) {
	pairs := [][2]rune{{'(', ')'}, {'[', ']'}, {'{', '}'}}
	for _, pair := range pairs {
		if strings.Count(text, string(pair[0])) != strings.Count(text, string(pair[1])) {
			report.Findings = append(report.Findings, Finding{
				Severity: SeverityInfo,
				Message:  fmt.Sprintf("unbalanced %c%c brackets", pair[0], pair[1]),
				Field:    "prompt",
			})
		}
	}

	for _, line := range strings.Split(text, "\n") {
		if len(line) > 500 {
			report.Findings = append(report.Findings, Finding{
				Severity: SeverityInfo,
				Message:  "prompt contains a line longer than 500 characters",
				Field:    "prompt",
			})
			break
		}
	}
}

// estimateTokens approximates the token count as characters divided by
// four, matching the validator contract. Exact counting lives in the
// tokenizer package.
func estimateTokens(text string) int {
	return len(text) / 4
}
