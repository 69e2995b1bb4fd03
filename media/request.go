//
// Tencent is pleased to support the open source community by making trpc-genmedia-go available.
//
// Copyright (C) 2026 Tencent.  All rights reserved.
//
// trpc-genmedia-go is licensed under the Apache License Version 2.0.
//
//

package media

import "context"

// Options is the raw option map attached to a request. Values are the plain
// types produced by the CLI layer: string, bool, int, int64 or float64.
type Options map[string]any

// Clone returns a shallow copy so normalization never mutates caller state.
func (o Options) Clone() Options {
	cp := make(Options, len(o))
	for k, v := range o {
		cp[k] = v
	}
	return cp
}

// Has reports whether the key is present.
func (o Options) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// String returns the string value for key, or "" when absent or mistyped.
func (o Options) String(key string) string {
	s, _ := o[key].(string)
	return s
}

// Int returns the integer value for key, accepting the numeric types the CLI
// layer may produce.
func (o Options) Int(key string) int {
	switch v := o[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Float returns the float value for key.
func (o Options) Float(key string) float64 {
	switch v := o[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// Bool returns the bool value for key, or false when absent.
func (o Options) Bool(key string) bool {
	b, _ := o[key].(bool)
	return b
}

// Request is a normalized generation request. It is built once per invocation
// and treated as immutable after validation fills option defaults.
type Request struct {
	// Capability selects the content-generation category.
	Capability Capability
	// Prompt is the text prompt, empty for purely input-driven modes.
	Prompt string
	// InputPaths are ordered input file paths. Order is significant and must
	// be preserved all the way to the provider (multiview 3D views are
	// front, back, left, right).
	InputPaths []string
	// Options is the option map, fully defaulted after validation.
	Options Options
}

// Output is one produced payload plus the authoritative extension for it.
type Output struct {
	// Data contains the raw bytes.
	Data []byte
	// MIMEType is the content-type hint reported by the provider, if any.
	MIMEType string
	// Extension is the authoritative file extension, without the leading dot.
	Extension string
}

// Result is the terminal outcome of a generation request.
type Result struct {
	// Outputs holds the produced payloads. Usually one; image providers with
	// n > 1 return several. Voice-management verbs may return none.
	Outputs []Output
	// DefaultName is the documented base filename used when the caller
	// supplied no output path, e.g. "generated_image".
	DefaultName string
	// Detail is auxiliary human-readable output, e.g. a created voice name
	// or text commentary streamed alongside an image.
	Detail string
}

// Submission is what a generator returns from Submit: either a terminal
// Result (synchronous providers) or a Job handle to be polled.
type Submission struct {
	Result *Result
	Job    *Job
}

// Generator translates validated requests into provider calls.
//
// Validate is pure apart from normalizing req.Options in place; it must fail
// with ErrInvalidOption / ErrInvalidOptionCombination before any network
// activity. Submit performs the provider call; asynchronous providers return
// a Job and additionally implement JobRunner.
type Generator interface {
	// Capability returns the content category this generator serves.
	Capability() Capability
	// Validate fills documented defaults and range-checks req.Options.
	Validate(req *Request) error
	// Submit performs the provider call for a validated request.
	Submit(ctx context.Context, req *Request) (*Submission, error)
}

// JobRunner is implemented by generators whose Submit returns a Job.
type JobRunner interface {
	// PollJob queries the provider once and returns the refreshed job.
	// A non-nil error means the poll itself failed (transport); a terminal
	// failed status is reported through the returned job, not the error.
	PollJob(ctx context.Context, job *Job) (*Job, error)
	// FetchResult downloads the payload of a succeeded job.
	FetchResult(ctx context.Context, job *Job) (*Result, error)
}
