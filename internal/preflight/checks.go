package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"merakireboot/internal/config"
	"merakireboot/internal/dashboard"
	"merakireboot/internal/history"
)

// CheckDashboard verifies that the directory host is reachable and accepts
// the API key by listing organizations. A single attempt is made.
func CheckDashboard(ctx context.Context, cfg *config.Config, apiKey string) Result {
	const name = "Dashboard API"

	client, err := dashboard.NewFromConfig(cfg, apiKey, nil)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	orgs, err := client.ListOrganizations(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeDashboardError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d organizations visible)", cfg.API.BaseURL, len(orgs))}
}

// CheckLedger verifies that the run ledger opens with the expected schema.
func CheckLedger(ctx context.Context, path string) Result {
	const name = "History ledger"

	store, err := history.Open(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	defer store.Close()

	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d runs)", path, len(runs))}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckCreatableDirectory passes when path is a usable directory or when it is
// missing but its nearest existing ancestor is writable.
func CheckCreatableDirectory(name, path string) Result {
	if _, err := os.Stat(path); err == nil || !os.IsNotExist(err) {
		return CheckDirectoryAccess(name, path)
	}
	parent := filepath.Dir(path)
	for {
		if _, err := os.Stat(parent); err == nil {
			break
		}
		next := filepath.Dir(parent)
		if next == parent {
			break
		}
		parent = next
	}
	if err := unix.Access(parent, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, parent, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (created on first run)", path)}
}

func summarizeDashboardError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out (Dashboard API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "request timed out (Dashboard API unreachable)"
	}
	var statusErr *dashboard.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "auth failed (invalid API key)"
		default:
			return fmt.Sprintf("unexpected status %d", statusErr.StatusCode)
		}
	}
	return err.Error()
}
