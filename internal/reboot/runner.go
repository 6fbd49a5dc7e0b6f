package reboot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"merakireboot/internal/dashboard"
	"merakireboot/internal/history"
	"merakireboot/internal/logging"
	"merakireboot/internal/notifications"
	"merakireboot/internal/runlock"
	"merakireboot/internal/services"
)

// PlaceholderDevice stands in for the device list when it cannot be fetched.
// Dispatching it issues one reboot addressed to serial "null".
var PlaceholderDevice = dashboard.Device{Serial: "null", Model: "null"}

// Ledger records run progress. *history.Store satisfies it.
type Ledger interface {
	BeginRun(ctx context.Context, run history.Run) (history.Run, error)
	SetTarget(ctx context.Context, runID, organizationID, shard string, deviceCount int, placeholder bool) error
	RecordResult(ctx context.Context, result history.Result) error
	FinishRun(ctx context.Context, runID string, outcome history.Outcome, succeeded, failed int, errMsg string, finished time.Time) error
}

var _ Ledger = (*history.Store)(nil)

// Options configures a Runner.
type Options struct {
	Client   dashboard.API
	Out      io.Writer
	Logger   *slog.Logger
	Ledger   Ledger
	Notifier notifications.Service
	Sleep    Sleeper
	Now      func() time.Time

	// AbortOnListFailure stops the run when the device list cannot be
	// fetched instead of dispatching the placeholder.
	AbortOnListFailure bool
	// LockDir enables the per-network run lock when non-empty.
	LockDir string
}

// Request identifies the devices to reboot.
type Request struct {
	Organization string
	NetworkID    string
	Interval     time.Duration
}

// Result is the outcome of one reboot request. StatusCode is 0 when no
// response was received.
type Result struct {
	Serial     string
	StatusCode int
	Err        error
}

// Accepted reports whether the shard answered with a 2xx status.
func (r Result) Accepted() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Summary describes a finished or aborted run.
type Summary struct {
	RunID        string
	Organization dashboard.Organization
	Shard        string
	NetworkID    string
	Devices      int
	Succeeded    int
	Failed       int
	Placeholder  bool
	Results      []Result
	Started      time.Time
	Finished     time.Time
}

// Duration returns the elapsed run time.
func (s Summary) Duration() time.Duration {
	if s.Finished.IsZero() {
		return 0
	}
	return s.Finished.Sub(s.Started)
}

// Runner executes reboot runs against the Dashboard.
type Runner struct {
	client             dashboard.API
	out                io.Writer
	logger             *slog.Logger
	ledger             Ledger
	notifier           notifications.Service
	sleep              Sleeper
	now                func() time.Time
	abortOnListFailure bool
	lockDir            string
}

// NewRunner validates opts and fills defaults.
func NewRunner(opts Options) (*Runner, error) {
	if opts.Client == nil {
		return nil, errors.New("dashboard client is required")
	}
	r := &Runner{
		client:             opts.Client,
		out:                opts.Out,
		logger:             logging.NewComponentLogger(opts.Logger, "reboot"),
		ledger:             opts.Ledger,
		notifier:           opts.Notifier,
		sleep:              opts.Sleep,
		now:                opts.Now,
		abortOnListFailure: opts.AbortOnListFailure,
		lockDir:            strings.TrimSpace(opts.LockDir),
	}
	if r.out == nil {
		r.out = io.Discard
	}
	if r.notifier == nil {
		r.notifier = notifications.NewService(nil)
	}
	if r.sleep == nil {
		r.sleep = SleepContext
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r, nil
}

// Run resolves the organization and shard, lists the network's devices, and
// dispatches a reboot to each. Organization and shard failures abort before
// any reboot is sent. A device list failure dispatches PlaceholderDevice
// unless the runner was built with AbortOnListFailure.
func (r *Runner) Run(ctx context.Context, req Request) (Summary, error) {
	req.NetworkID = strings.TrimSpace(req.NetworkID)
	if req.Interval < 0 {
		return Summary{}, services.Wrap(services.ErrUsage, "reboot", "run", "interval must not be negative", nil)
	}

	if r.lockDir != "" {
		lock, err := runlock.Acquire(r.lockDir, req.NetworkID)
		if err != nil {
			return Summary{}, err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				r.logger.Warn("failed to release run lock", "lock", lock.Path(), logging.Error(err))
			}
		}()
	}

	summary := Summary{
		RunID:     uuid.NewString(),
		NetworkID: req.NetworkID,
		Started:   r.now(),
	}
	ctx = services.WithNetworkID(services.WithRunID(ctx, summary.RunID), req.NetworkID)
	logger := logging.WithContext(ctx, r.logger)

	if r.ledger != nil {
		if _, err := r.ledger.BeginRun(ctx, history.Run{
			ID:              summary.RunID,
			Organization:    req.Organization,
			NetworkID:       req.NetworkID,
			IntervalSeconds: int(req.Interval / time.Second),
			StartedAt:       summary.Started,
		}); err != nil {
			return summary, fmt.Errorf("record run start: %w", err)
		}
	}

	logger.Info("reboot run started", "organization", req.Organization, "interval", req.Interval)

	org, err := r.client.ResolveOrganization(ctx, req.Organization)
	if err != nil {
		return r.abort(ctx, logger, summary, req, err)
	}
	summary.Organization = org

	shard, err := r.client.ResolveShard(ctx, org.ID)
	if err != nil {
		return r.abort(ctx, logger, summary, req, err)
	}
	summary.Shard = shard

	devices, err := r.client.ListDevices(ctx, shard, req.NetworkID)
	if err != nil {
		if r.abortOnListFailure {
			return r.abort(ctx, logger, summary, req, err)
		}
		logger.Warn("device list unavailable; dispatching placeholder", logging.Error(err))
		devices = []dashboard.Device{PlaceholderDevice}
		summary.Placeholder = true
	}
	summary.Devices = len(devices)

	if r.ledger != nil {
		if err := r.ledger.SetTarget(ctx, summary.RunID, org.ID.String(), shard, len(devices), summary.Placeholder); err != nil {
			logger.Warn("failed to record run target", logging.Error(err))
		}
	}

	results, err := r.Dispatch(ctx, shard, req.NetworkID, devices, req.Interval)
	summary.Results = results
	for _, result := range results {
		if result.Accepted() {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}
	if err != nil {
		return r.abort(ctx, logger, summary, req, err)
	}

	summary.Finished = r.now()
	if r.ledger != nil {
		if err := r.ledger.FinishRun(ctx, summary.RunID, history.OutcomeCompleted, summary.Succeeded, summary.Failed, "", summary.Finished); err != nil {
			logger.Warn("failed to record run completion", logging.Error(err))
		}
	}
	logger.Info("reboot run completed",
		"devices", summary.Devices,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"duration", summary.Duration(),
	)
	if err := r.notifier.NotifyRunCompleted(ctx, notifications.RunReport{
		Organization: req.Organization,
		NetworkID:    req.NetworkID,
		Devices:      summary.Devices,
		Succeeded:    summary.Succeeded,
		Failed:       summary.Failed,
		Placeholder:  summary.Placeholder,
		Duration:     summary.Duration(),
	}); err != nil {
		logger.Warn("run completion notification failed", logging.Error(err))
	}
	return summary, nil
}

// Dispatch reboots devices in order. After each request it writes
// "<serial> <status>" to the output and sleeps for interval, including after
// the last device. Rejected and failed requests do not stop the loop; only a
// failed output write or an interrupted sleep does.
func (r *Runner) Dispatch(ctx context.Context, shard, networkID string, devices []dashboard.Device, interval time.Duration) ([]Result, error) {
	logger := logging.WithContext(ctx, r.logger)
	runID, _ := services.RunIDFromContext(ctx)
	results := make([]Result, 0, len(devices))

	for i, device := range devices {
		requested := r.now()
		status, err := r.client.RebootDevice(ctx, shard, networkID, device.Serial)
		result := Result{Serial: device.Serial, StatusCode: status, Err: err}
		results = append(results, result)

		if err != nil {
			logger.Warn("reboot request failed", logging.FieldSerial, device.Serial, logging.Error(err))
		} else if !result.Accepted() {
			logger.Warn("reboot request rejected", logging.FieldSerial, device.Serial, "status", status)
		}

		if r.ledger != nil && runID != "" {
			entry := history.Result{
				RunID:       runID,
				Position:    i,
				Serial:      device.Serial,
				Model:       device.Model,
				StatusCode:  status,
				RequestedAt: requested,
			}
			if err != nil {
				entry.Error = err.Error()
			}
			if recErr := r.ledger.RecordResult(ctx, entry); recErr != nil {
				logger.Warn("failed to record reboot result", logging.FieldSerial, device.Serial, logging.Error(recErr))
			}
		}

		if _, werr := fmt.Fprintf(r.out, "%s %d\n", device.Serial, status); werr != nil {
			return results, fmt.Errorf("write result for %s: %w", device.Serial, werr)
		}

		if err := r.sleep(ctx, interval); err != nil {
			return results, fmt.Errorf("wait after %s: %w", device.Serial, err)
		}
	}
	return results, nil
}

func (r *Runner) abort(ctx context.Context, logger *slog.Logger, summary Summary, req Request, cause error) (Summary, error) {
	summary.Finished = r.now()
	logger.Error("reboot run aborted", logging.Error(cause))
	if r.ledger != nil {
		if err := r.ledger.FinishRun(ctx, summary.RunID, history.OutcomeAborted, summary.Succeeded, summary.Failed, cause.Error(), summary.Finished); err != nil {
			logger.Warn("failed to record run abort", logging.Error(err))
		}
	}
	if err := r.notifier.NotifyRunFailed(ctx, req.Organization, req.NetworkID, cause); err != nil {
		logger.Warn("run failure notification failed", logging.Error(err))
	}
	return summary, cause
}
