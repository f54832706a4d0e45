package runner

import (
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/survival-kitchen/pkg/state"
)

// TestSuite defines a complete integration test scenario
// Can either be a regular test with Steps, or a suite that references other Cases
type TestSuite struct {
	Name    string     `json:"name"`
	Catalog string     `json:"catalog,omitempty"` // catalog file on the server; default when empty
	Seed    int64      `json:"seed,omitempty"`
	Steps   []TestStep `json:"steps,omitempty"`
	Cases   []string   `json:"cases,omitempty"` // Used for suite tests (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep is one player action. Input is typed text parsed against the
// current prompt; Command is sent as-is. Repeat sends it several times.
type TestStep struct {
	Name         string         `json:"name,omitempty"`
	Input        string         `json:"input,omitempty"`
	Command      *state.Command `json:"command,omitempty"`
	Repeat       int            `json:"repeat,omitempty"`
	Expectations Expectations   `json:"expect"`
}

// Expectations defines what to check after a test step executes
type Expectations struct {
	// Rejected steps expect the API to refuse the command with this status.
	Status *int `json:"status,omitempty"`

	Day       *int           `json:"day,omitempty"`
	Period    *string        `json:"period,omitempty"`
	Phase     *string        `json:"phase,omitempty"`
	Outcome   *string        `json:"outcome,omitempty"`
	Location  *string        `json:"location,omitempty"`
	Stats     map[string]int `json:"stats,omitempty"`     // exact values by name
	Inventory map[string]int `json:"inventory,omitempty"` // item counts; 0 means absent

	// Response Analysis over messages and prompt text
	ResponseContains    []string `json:"response_contains,omitempty"`
	ResponseNotContains []string `json:"response_not_contains,omitempty"`
	ResponseRegex       string   `json:"response_regex,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	StepName     string
	Success      bool
	Error        error
	Duration     time.Duration
	ResponseText string
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job      TestJob
	Results  []TestResult
	GameID   uuid.UUID
	Duration time.Duration
	Error    error
}
