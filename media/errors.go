//
// Tencent is pleased to support the open source community by making trpc-genmedia-go available.
//
// Copyright (C) 2026 Tencent.  All rights reserved.
//
// trpc-genmedia-go is licensed under the Apache License Version 2.0.
//
//

package media

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the failure taxonomy. Every failure surfaced by a
// generator or the runner wraps exactly one of these, so callers can classify
// with errors.Is while still seeing the offending option, path or provider
// message in the text.
var (
	// ErrMissingCredential indicates a required API key is absent from the
	// configuration. Surfaced before any network call.
	ErrMissingCredential = errors.New("missing credential")
	// ErrInvalidOption indicates a supplied option value is outside its
	// documented enumerated set or numeric range.
	ErrInvalidOption = errors.New("invalid option")
	// ErrInvalidOptionCombination indicates individually valid options that
	// violate a documented cross-field constraint.
	ErrInvalidOptionCombination = errors.New("invalid option combination")
	// ErrContentRejected indicates the provider declined generation for
	// policy reasons. Never retried.
	ErrContentRejected = errors.New("content rejected")
	// ErrTransport indicates a network or transport failure that persisted
	// after the bounded retry budget was exhausted.
	ErrTransport = errors.New("transport failure")
	// ErrJobTimeout indicates an asynchronous job did not reach a terminal
	// state within the wall-clock budget.
	ErrJobTimeout = errors.New("job timeout")
	// ErrWrite indicates a local filesystem failure while persisting output.
	ErrWrite = errors.New("write failure")
)

// InvalidOptionf wraps ErrInvalidOption with detail about the offending value.
func InvalidOptionf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidOption, fmt.Sprintf(format, args...))
}

// InvalidCombinationf wraps ErrInvalidOptionCombination with the violated rule.
func InvalidCombinationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidOptionCombination, fmt.Sprintf(format, args...))
}

// MissingCredentialf wraps ErrMissingCredential naming the absent key.
func MissingCredentialf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMissingCredential, fmt.Sprintf(format, args...))
}

// ContentRejectedf wraps ErrContentRejected with the provider's message.
func ContentRejectedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrContentRejected, fmt.Sprintf(format, args...))
}

// Transportf wraps ErrTransport with the underlying failure.
func Transportf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrTransport, fmt.Sprintf(format, args...))
}

// IsFatal reports whether err must not be retried: validation failures,
// missing credentials and provider policy rejections are final regardless of
// any retry budget.
func IsFatal(err error) bool {
	return errors.Is(err, ErrMissingCredential) ||
		errors.Is(err, ErrInvalidOption) ||
		errors.Is(err, ErrInvalidOptionCombination) ||
		errors.Is(err, ErrContentRejected)
}
