package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/jwebster45206/survival-kitchen/pkg/catalog"
	"github.com/jwebster45206/survival-kitchen/pkg/state"
	"gopkg.in/yaml.v3"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes integration tests against a running survival-kitchen API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration
	Logger            func(format string, args ...any)
	ErrorHandlingMode ErrorHandlingMode
	CatalogOverride   string // If set, overrides the catalog for all test cases

	// Catalog parses typed step input. It should match the server's.
	Catalog *catalog.Catalog
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 60 * time.Second},
		Timeout:           30 * time.Second,
		Logger:            func(string, ...any) {},
		ErrorHandlingMode: ErrorHandlingContinue,
		Catalog:           catalog.Default(),
	}
}

// LoadTestSuite loads a test suite from a YAML or JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	// YAML cases go through JSON so commands keep their wire field names.
	if ext := strings.ToLower(filepath.Ext(filename)); ext == ".yaml" || ext == ".yml" {
		var doc any
		if err := yaml.Unmarshal(content, &doc); err != nil {
			return TestSuite{}, fmt.Errorf("failed to parse YAML in %s: %w", filename, err)
		}
		if content, err = json.Marshal(doc); err != nil {
			return TestSuite{}, fmt.Errorf("failed to convert %s: %w", filename, err)
		}
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
// Returns a list of actual test suites (expanded from the sequence if needed)
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		// Recursively load (in case a sequence references another sequence)
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}
		jobs = append(jobs, subJobs...)
	}
	return jobs, nil
}

// RunSuite executes a complete test suite
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job:     TestJob{Name: suite.Name, Suite: suite},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	catalogFile := suite.Catalog
	if r.CatalogOverride != "" {
		catalogFile = r.CatalogOverride
	}
	resp, err := CreateGame(ctx, r.Client, r.BaseURL, catalogFile, suite.Seed)
	if err != nil {
		result.Error = fmt.Errorf("failed to create game: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.GameID = resp.State.ID
	current := resp.State

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult, next := r.runStep(ctx, current, step)
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
		} else {
			r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
		}
		if next != nil {
			current = next
		}
	}

	if err := DeleteGame(ctx, r.Client, r.BaseURL, result.GameID); err != nil {
		r.Logger("    failed to delete game %s: %v", result.GameID, err)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

// runStep sends a step and checks it. It returns the state to continue from.
func (r *Runner) runStep(ctx context.Context, current *state.GameState, step TestStep) (TestResult, *state.GameState) {
	start := time.Now()
	result := TestResult{StepName: step.Name}

	stepCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	repeat := max(step.Repeat, 1)
	var (
		resp *state.Response
		err  error
		text []string
	)
	for range repeat {
		var cmd state.Command
		cmd, err = r.command(step, current)
		if err != nil {
			break
		}
		resp, err = PostCommand(stepCtx, r.Client, r.BaseURL, current.ID, cmd)
		if err != nil {
			break
		}
		current = resp.State
		text = append(text, resp.Interlude...)
		text = append(text, resp.Messages...)
		text = append(text, resp.State.Prompt.Text)
	}
	result.Duration = time.Since(start)
	result.ResponseText = strings.Join(text, "\n")

	exp := step.Expectations
	if exp.Status != nil {
		var apiErr *APIError
		switch {
		case errors.As(err, &apiErr) && apiErr.Status == *exp.Status:
			result.Success = true
		case err != nil:
			result.Error = fmt.Errorf("expected status %d, got %w", *exp.Status, err)
		default:
			result.Error = fmt.Errorf("expected status %d, command succeeded", *exp.Status)
		}
		return result, current
	}
	if err != nil {
		result.Error = err
		return result, current
	}

	if err := checkExpectations(exp, current, result.ResponseText); err != nil {
		result.Error = err
		return result, current
	}
	result.Success = true
	return result, current
}

func (r *Runner) command(step TestStep, current *state.GameState) (state.Command, error) {
	if step.Command != nil {
		return *step.Command, nil
	}
	if step.Input == "" {
		return state.Command{}, errors.New("step needs input or command")
	}
	return state.ParseCommand(step.Input, current.Prompt, r.Catalog)
}

func checkExpectations(exp Expectations, gs *state.GameState, responseText string) error {
	var problems []string
	fail := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if exp.Day != nil && gs.Progress.Day != *exp.Day {
		fail("day: expected %d, got %d", *exp.Day, gs.Progress.Day)
	}
	if exp.Period != nil && string(gs.Progress.Period) != *exp.Period {
		fail("period: expected %s, got %s", *exp.Period, gs.Progress.Period)
	}
	if exp.Phase != nil && string(gs.Prompt.Phase) != *exp.Phase {
		fail("phase: expected %s, got %s", *exp.Phase, gs.Prompt.Phase)
	}
	if exp.Outcome != nil && string(gs.Progress.Outcome) != *exp.Outcome {
		fail("outcome: expected %s, got %s", *exp.Outcome, gs.Progress.Outcome)
	}
	if exp.Location != nil && gs.Prompt.Location != *exp.Location {
		fail("location: expected %q, got %q", *exp.Location, gs.Prompt.Location)
	}

	stats := gs.GetStats()
	for _, name := range sortedKeys(exp.Stats) {
		got, ok := stats[name]
		if !ok {
			fail("unknown stat %q", name)
			continue
		}
		if got != exp.Stats[name] {
			fail("%s: expected %d, got %d", name, exp.Stats[name], got)
		}
	}

	have := make(map[string]int, len(gs.Inventory))
	for _, e := range gs.Inventory {
		have[e.Item] += e.Count
	}
	for _, item := range sortedKeys(exp.Inventory) {
		if have[item] != exp.Inventory[item] {
			fail("inventory %s: expected %d, got %d", item, exp.Inventory[item], have[item])
		}
	}

	lower := strings.ToLower(responseText)
	for _, s := range exp.ResponseContains {
		if !strings.Contains(lower, strings.ToLower(s)) {
			fail("response missing %q", s)
		}
	}
	for _, s := range exp.ResponseNotContains {
		if strings.Contains(lower, strings.ToLower(s)) {
			fail("response should not contain %q", s)
		}
	}
	if exp.ResponseRegex != "" {
		re, err := regexp.Compile(exp.ResponseRegex)
		if err != nil {
			fail("invalid response_regex: %v", err)
		} else if !re.MatchString(responseText) {
			fail("response does not match %q", exp.ResponseRegex)
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
