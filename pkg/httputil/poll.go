package httputil

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned by [Poll] when the schedule's timeout elapses
// before the polled operation is done.
var ErrTimeout = errors.New("polling timed out")

// Schedule describes how often [Poll] retries: every Fast interval until
// SlowAfter has elapsed, then every Slow interval until Timeout.
type Schedule struct {
	Fast      time.Duration
	Slow      time.Duration
	SlowAfter time.Duration
	// Timeout bounds the total waiting time. 0 waits forever.
	Timeout time.Duration
}

// DefaultSchedule polls every second for a minute, then every ten seconds.
func DefaultSchedule(timeout time.Duration) Schedule {
	return Schedule{
		Fast:      time.Second,
		Slow:      10 * time.Second,
		SlowAfter: time.Minute,
		Timeout:   timeout,
	}
}

// Next returns the wait before the next attempt, once elapsed time has
// been spent waiting.
func (s Schedule) Next(elapsed time.Duration) time.Duration {
	if elapsed < s.SlowAfter {
		return s.Fast
	}
	return s.Slow
}

// Poll calls fn until it reports done or fails. Waits are summed as
// elapsed time, so a slow fn does not count against the timeout.
// Returns ErrTimeout when the next wait would exceed the timeout, or
// ctx.Err() if cancelled.
func Poll(ctx context.Context, s Schedule, fn func(context.Context) (bool, error)) error {
	var elapsed time.Duration
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		done, err := fn(ctx)
		if err != nil || done {
			return err
		}

		wait := s.Next(elapsed)
		if s.Timeout > 0 && elapsed+wait > s.Timeout {
			return ErrTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
			elapsed += wait
		}
	}
}
