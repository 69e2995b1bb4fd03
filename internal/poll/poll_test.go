//
// Tencent is pleased to support the open source community by making trpc-genmedia-go available.
//
// Copyright (C) 2026 Tencent.  All rights reserved.
//
// trpc-genmedia-go is licensed under the Apache License Version 2.0.
//
//

package poll

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	return Config{Interval: time.Millisecond, Timeout: time.Second, MaxFailures: 3}
}

func TestAwaitSucceedsAfterSeveralPolls(t *testing.T) {
	calls := 0
	err := Await(context.Background(), fastConfig(), func(context.Context) (bool, error) {
		calls++
		return calls == 4, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 4, calls)
}

func TestAwaitPermanentErrorSurfacesImmediately(t *testing.T) {
	boom := errors.New("job failed")
	calls := 0
	err := Await(context.Background(), fastConfig(), func(context.Context) (bool, error) {
		calls++
		return false, Permanent(boom)
	})
	assert.Equal(t, boom, err)
	assert.Equal(t, 1, calls)
}

func TestAwaitBoundsConsecutiveTransientFailures(t *testing.T) {
	boom := errors.New("connection reset")
	calls := 0
	err := Await(context.Background(), fastConfig(), func(context.Context) (bool, error) {
		calls++
		return false, boom
	})
	assert.Equal(t, boom, err)
	assert.Equal(t, 3, calls)
}

func TestAwaitResetsFailureCountOnSuccess(t *testing.T) {
	boom := errors.New("connection reset")
	calls := 0
	err := Await(context.Background(), fastConfig(), func(context.Context) (bool, error) {
		calls++
		// Two failures, one good poll, two failures, then done. The budget of
		// three consecutive failures is never exhausted.
		switch calls {
		case 1, 2, 4, 5:
			return false, boom
		case 3:
			return false, nil
		}
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 6, calls)
}

func TestAwaitTimesOut(t *testing.T) {
	cfg := Config{Interval: time.Millisecond, Timeout: 20 * time.Millisecond, MaxFailures: 3}
	err := Await(context.Background(), cfg, func(context.Context) (bool, error) {
		return false, nil
	})
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestAwaitRespectsCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Await(ctx, fastConfig(), func(context.Context) (bool, error) {
		return false, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
