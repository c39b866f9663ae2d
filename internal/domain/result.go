package domain

import "time"

// Outcome strings reported by the protocol clients.
const (
	OutcomePassed  = "Passed"
	OutcomeFailed  = "Failed"
	OutcomeSkipped = "Skipped"
)

// TestRunResult is one streamed result record from a protocol client.
type TestRunResult struct {
	ID           string        // identifier to match against requested tests
	Outcome      string        // Passed, Failed, Skipped
	Duration     time.Duration
	ErrorMessage string
	StackTrace   string
	Output       string        // captured standard output, may be empty
	DisplayName  string        // used for fallback matching when the ID is unknown
}

// Passed reports whether the outcome counts as a success.
func (r TestRunResult) Passed() bool {
	return r.Outcome == OutcomePassed || r.Outcome == OutcomeSkipped
}

// RunReportMeta summarizes one headless run for the persisted report.
type RunReportMeta struct {
	TotalTests      int     `json:"total_tests"`
	PassedTests     int     `json:"passed_tests"`
	FailedTests     int     `json:"failed_tests"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Timestamp       string  `json:"timestamp"`
}

// TestFailure is one failed test case in the persisted report.
type TestFailure struct {
	TestName     string `json:"test_name"`
	FullName     string `json:"full_name"`
	Binary       string `json:"binary"`
	ErrorMessage string `json:"error_message"`
	StackTrace   string `json:"stack_trace"`
	Output       string `json:"output,omitempty"`
	Resolved     bool   `json:"resolved"`
}

// RunReport is the complete persisted output of a headless run.
type RunReport struct {
	Meta     RunReportMeta `json:"meta"`
	Failures []TestFailure `json:"failures"`
}
