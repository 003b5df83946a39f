// Package retry is a minimal fixed-delay retry helper.
package retry

import (
	"context"
	"time"
)

// Do runs fn up to attempts times, sleeping delay between failures. It
// returns the last error, or early if the context is done.
func Do(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var err error

	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}

		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return err
}
