package preflight

import (
	"context"
	"strings"

	"merakireboot/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	// Skipped marks checks that did not run; they count as passed.
	Skipped bool
	Detail  string
}

// RunAll executes all applicable preflight checks for the given config.
// The Dashboard check runs only when apiKey is non-empty.
func RunAll(ctx context.Context, cfg *config.Config, apiKey string) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	if cfg.Reboot.SingleRun {
		results = append(results, CheckCreatableDirectory("State directory", cfg.Paths.StateDir))
	} else {
		results = append(results, Result{Name: "State directory", Passed: true, Skipped: true, Detail: "not used (reboot.single_run is off)"})
	}

	if cfg.History.Enabled {
		results = append(results, CheckLedger(ctx, cfg.History.Path))
	}

	if strings.TrimSpace(apiKey) == "" {
		results = append(results, Result{Name: "Dashboard API", Passed: true, Skipped: true, Detail: "not checked (pass -k to verify the API key)"})
	} else {
		results = append(results, CheckDashboard(ctx, cfg, apiKey))
	}

	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
