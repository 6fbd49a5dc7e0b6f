package reboot

import (
	"context"
	"time"
)

// Sleeper pauses between reboot requests.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext blocks for d or until ctx is done. A non-positive duration
// returns immediately.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
