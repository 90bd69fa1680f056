// Package doctor diagnoses why the cluster can't read a device: missing or
// invalid config, absent ports, serial permissions, log file and metrics
// address problems.
package doctor

import (
	"fmt"
	"sync"
)

// CheckStatus represents the result status of a check.
type CheckStatus int

const (
	StatusPass CheckStatus = iota
	StatusWarn
	StatusFail
)

// String returns a human-readable status string.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// MarshalText makes statuses readable in JSON output.
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Categories in report order.
const (
	CategoryConfig  = "CONFIG"
	CategoryDevice  = "DEVICE"
	CategoryRuntime = "RUNTIME"
)

// CategoryOrder is the order categories are reported in.
var CategoryOrder = []string{CategoryConfig, CategoryDevice, CategoryRuntime}

// CheckResult contains the outcome of running a check.
type CheckResult struct {
	Name       string      `json:"name"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Fixable    bool        `json:"fixable,omitempty"` // Whether --fix can address this
}

// Check is one diagnostic.
type Check interface {
	Name() string
	Category() string
	Run() CheckResult

	// Fix attempts to repair the issue. Checks that can't fix anything
	// return nil and never report Fixable.
	Fix() error
}

// RunAll executes checks in order.
func RunAll(checks []Check) []CheckResult {
	results := make([]CheckResult, len(checks))
	for i, check := range checks {
		results[i] = check.Run()
	}
	return results
}

// RunAllParallel executes all checks concurrently. Results keep the order
// of checks.
func RunAllParallel(checks []Check) []CheckResult {
	results := make([]CheckResult, len(checks))
	var wg sync.WaitGroup

	for i, check := range checks {
		wg.Add(1)
		go func(idx int, c Check) {
			defer wg.Done()
			results[idx] = c.Run()
		}(i, check)
	}

	wg.Wait()
	return results
}

// AttemptFixes runs Fix for every fixable issue and re-runs the check
// after a successful fix.
func AttemptFixes(checks []Check, results []CheckResult) []CheckResult {
	for i, result := range results {
		if !result.Fixable || result.Status == StatusPass {
			continue
		}
		if err := checks[i].Fix(); err == nil {
			results[i] = checks[i].Run()
		}
	}
	return results
}

// CountByStatus counts results by status.
func CountByStatus(results []CheckResult) map[CheckStatus]int {
	counts := make(map[CheckStatus]int)
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}

// HasFailures returns true if any result has a fail status.
func HasFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == StatusFail {
			return true
		}
	}
	return false
}

// HasIssues returns true if any result has a fail or warn status.
func HasIssues(results []CheckResult) bool {
	for _, r := range results {
		if r.Status != StatusPass {
			return true
		}
	}
	return false
}

// FixableCount returns the number of issues that can be fixed automatically.
func FixableCount(results []CheckResult) int {
	count := 0
	for _, r := range results {
		if r.Fixable && r.Status != StatusPass {
			count++
		}
	}
	return count
}

// Summary returns a one-line summary of the results.
func Summary(results []CheckResult) string {
	counts := CountByStatus(results)
	total := counts[StatusWarn] + counts[StatusFail]
	if total == 0 {
		return "Everything looks good"
	}
	return fmt.Sprintf("%d issue%s found", total, pluralize(total))
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func pass(name, msg string) CheckResult {
	return CheckResult{Name: name, Status: StatusPass, Message: msg}
}
