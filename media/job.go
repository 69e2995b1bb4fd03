//
// Tencent is pleased to support the open source community by making trpc-genmedia-go available.
//
// Copyright (C) 2026 Tencent.  All rights reserved.
//
// trpc-genmedia-go is licensed under the Apache License Version 2.0.
//
//

package media

// JobStatus is the state of an asynchronous provider job.
type JobStatus string

const (
	// JobPending means the provider accepted the job but has not started it.
	JobPending JobStatus = "pending"
	// JobRunning means the provider is working on the job.
	JobRunning JobStatus = "running"
	// JobSucceeded is the successful terminal state.
	JobSucceeded JobStatus = "succeeded"
	// JobFailed is the failed terminal state.
	JobFailed JobStatus = "failed"
)

// Terminal reports whether no further transition can occur.
func (s JobStatus) Terminal() bool {
	return s == JobSucceeded || s == JobFailed
}

// Job is the handle for an asynchronous generation job. It is created when
// the provider accepts the request and mutated only by polling responses.
type Job struct {
	// ID is the provider-assigned opaque job identifier.
	ID string
	// Status is the last observed state.
	Status JobStatus
	// ResultRef optionally points at the result payload (URI or token).
	ResultRef string
	// Message carries the provider's failure message for failed jobs, or
	// progress detail for running ones.
	Message string
	// payload lets adapters stash provider-native operation state between
	// polls (e.g. the genai video operation).
	payload any
}

// SetPayload stores provider-native state on the job.
func (j *Job) SetPayload(p any) { j.payload = p }

// Payload returns provider-native state previously stored with SetPayload.
func (j *Job) Payload() any { return j.payload }
