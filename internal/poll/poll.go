//
// Tencent is pleased to support the open source community by making trpc-genmedia-go available.
//
// Copyright (C) 2026 Tencent.  All rights reserved.
//
// trpc-genmedia-go is licensed under the Apache License Version 2.0.
//
//

// Package poll implements the bounded poll loop shared by all asynchronous
// provider adapters.
package poll

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Defaults applied when a Config field is unset. The provider documentation
// gives no precise numbers, so these stay configurable end to end.
const (
	DefaultInterval    = 5 * time.Second
	DefaultTimeout     = 10 * time.Minute
	DefaultMaxFailures = 3
)

// ErrTimeout is returned when the job does not reach a terminal state within
// the wall-clock budget.
var ErrTimeout = errors.New("poll deadline exceeded")

// Config bounds one poll loop.
type Config struct {
	// Interval between consecutive polls.
	Interval time.Duration
	// Timeout is the total wall-clock budget.
	Timeout time.Duration
	// MaxFailures is the number of consecutive transient poll failures
	// tolerated before the last error is surfaced.
	MaxFailures int
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxFailures <= 0 {
		c.MaxFailures = DefaultMaxFailures
	}
	return c
}

// Permanent marks err as non-retryable: Await surfaces it immediately instead
// of counting it against the transient-failure budget.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

func isPermanent(err error) bool {
	var perm *backoff.PermanentError
	return errors.As(err, &perm)
}

// Await calls check immediately and then once per interval until check
// reports done, fails permanently, fails transiently MaxFailures times in a
// row, or the timeout elapses (ErrTimeout). A successful poll resets the
// transient-failure count.
func Await(ctx context.Context, cfg Config, check func(context.Context) (bool, error)) error {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	failures := 0
	for {
		done, err := check(ctx)
		switch {
		case err != nil && isPermanent(err):
			var perm *backoff.PermanentError
			errors.As(err, &perm)
			return perm.Unwrap()
		case err != nil:
			failures++
			if failures >= cfg.MaxFailures {
				return err
			}
		case done:
			return nil
		default:
			failures = 0
		}

		timer := time.NewTimer(cfg.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return ErrTimeout
			}
			return ctx.Err()
		case <-timer.C:
		}
	}
}
