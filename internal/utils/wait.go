package utils

import (
	"context"
	"time"
)

// WaitFor blocks for d or until ctx is done. The sleep function is injectable so
// callers can replace it in tests; nil means time.Sleep.
func WaitFor(ctx context.Context, d time.Duration, sleep func(time.Duration)) error {
	if d <= 0 {
		return nil
	}
	if sleep == nil {
		sleep = time.Sleep
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sleep(d)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}
