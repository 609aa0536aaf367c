package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/715d/bytevec/pkg/vector"
)

// RunConfiguration is one way of running a case's script.
type RunConfiguration struct {
	// Name is a descriptive name for this configuration.
	Name string `yaml:"name"`

	// MemoryLimit caps the vector's allocations in bytes. 0 means unlimited.
	MemoryLimit int64 `yaml:"memory_limit,omitempty"`

	// CapacityHint overrides the kind's initial capacity. 0 is a valid override.
	CapacityHint *int `yaml:"capacity_hint,omitempty"`

	// ExpectedOutput is the rendered vector. Trailing whitespace on each line is ignored.
	ExpectedOutput string `yaml:"output"`

	// ExpectedErrors lists substrings of an expected run error.
	ExpectedErrors []string `yaml:"expected_errors"`
}

// TestCase is a script plus the configurations it is run under.
type TestCase struct {
	// Dir is the case directory relative to the testdata root.
	Dir string `yaml:"-"`

	// Description says what the case exercises.
	Description string `yaml:"description"`

	// Script is the file holding the script, relative to Dir.
	Script string `yaml:"script"`

	// Runs are the configurations to execute.
	Runs []RunConfiguration `yaml:"runs"`
}

// TestHarness runs golden cases.
type TestHarness struct {
	// root is the root directory for test data
	root string
}

// NewHarness creates a new test harness.
func NewHarness(root string) *TestHarness {
	return &TestHarness{root: root}
}

// ConfigurationResult is the outcome of one run configuration.
type ConfigurationResult struct {
	Configuration RunConfiguration
	Output        string
	Success       bool
	Message       string
}

// TestResult is the outcome of a test case.
type TestResult struct {
	TestCase             *TestCase
	ConfigurationResults []ConfigurationResult
	Success              bool
	Message              string
}

// Run executes a test case under all its configurations.
func (h *TestHarness) Run(t *testing.T, tc *TestCase) *TestResult {
	t.Helper()
	require.NotEmpty(t, tc.Runs, "test case has no run configurations")

	scriptName := tc.Script
	if scriptName == "" {
		scriptName = "input.txt"
	}
	input, err := os.ReadFile(filepath.Join(h.root, tc.Dir, scriptName))
	require.NoError(t, err)

	var results []ConfigurationResult
	allSuccess := true
	for _, cfg := range tc.Runs {
		cr := h.runConfiguration(t, input, cfg)
		results = append(results, *cr)
		if !cr.Success {
			allSuccess = false
		}
	}

	var resultMsg string
	if allSuccess {
		resultMsg = fmt.Sprintf("All %d configurations passed", len(tc.Runs))
	} else {
		var msgs []string
		for _, cr := range results {
			if !cr.Success {
				msgs = append(msgs, fmt.Sprintf("[%s] %s", cr.Configuration.Name, cr.Message))
			}
		}
		resultMsg = fmt.Sprintf("%d/%d configurations failed:\n%s",
			len(msgs), len(tc.Runs), strings.Join(msgs, "\n"))
	}

	return &TestResult{
		TestCase:             tc,
		ConfigurationResults: results,
		Success:              allSuccess,
		Message:              resultMsg,
	}
}

func (h *TestHarness) runConfiguration(t *testing.T, input []byte, cfg RunConfiguration) *ConfigurationResult {
	t.Helper()
	cr := &ConfigurationResult{Configuration: cfg}

	script, err := Parse(bytes.NewReader(input))
	require.NoError(t, err)

	opts := Options{CapacityHint: cfg.CapacityHint}
	var budget *vector.Budget
	if cfg.MemoryLimit > 0 {
		budget = vector.NewBudget(cfg.MemoryLimit)
		opts.Allocator = budget
	}

	var out bytes.Buffer
	_, err = Run(t.Context(), script, &out, opts)
	cr.Output = out.String()

	if budget != nil && budget.Used() != 0 {
		cr.Message = fmt.Sprintf("vector leaked %d bytes", budget.Used())
		return cr
	}

	if err != nil {
		for _, expected := range cfg.ExpectedErrors {
			if strings.Contains(err.Error(), expected) {
				cr.Success = true
				cr.Message = fmt.Sprintf("Got expected error: %v", err)
				return cr
			}
		}
		cr.Message = fmt.Sprintf("unexpected error: %v", err)
		return cr
	}
	if len(cfg.ExpectedErrors) > 0 {
		cr.Message = fmt.Sprintf("expected an error containing %q, run succeeded", cfg.ExpectedErrors)
		return cr
	}

	if got, want := normalize(cr.Output), normalize(cfg.ExpectedOutput); got != want {
		cr.Message = fmt.Sprintf("output mismatch:\n--- want\n%s\n--- got\n%s", want, got)
		return cr
	}
	cr.Success = true
	cr.Message = "output matched"
	return cr
}

// normalize trims trailing whitespace from every line and trailing blank lines.
func normalize(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t\r")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}
