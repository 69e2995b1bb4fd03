//
// Tencent is pleased to support the open source community by making trpc-genmedia-go available.
//
// Copyright (C) 2026 Tencent.  All rights reserved.
//
// trpc-genmedia-go is licensed under the Apache License Version 2.0.
//
//

// Package runner dispatches generation requests: it validates options,
// submits the provider call, awaits asynchronous jobs and persists the
// resulting artifacts. All providers run through the same code path.
package runner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"trpc.group/trpc-go/trpc-genmedia-go/artifact"
	"trpc.group/trpc-go/trpc-genmedia-go/internal/poll"
	"trpc.group/trpc-go/trpc-genmedia-go/log"
	"trpc.group/trpc-go/trpc-genmedia-go/media"
)

// maxFanOut bounds the worker pool used when a provider lacks native
// multi-output support.
const maxFanOut = 4

// Outcome is what one dispatched request produced.
type Outcome struct {
	// Paths are the written output files, in production order.
	Paths []string
	// Detail is auxiliary text output (voice names, streamed commentary).
	Detail string
}

// Runner is the generation dispatcher.
type Runner struct {
	writer *artifact.Writer
	poll   poll.Config
}

// Option configures a Runner.
type Option func(*Runner)

// WithWriter replaces the artifact writer, e.g. to attach a COS mirror.
func WithWriter(w *artifact.Writer) Option {
	return func(r *Runner) { r.writer = w }
}

// WithPollConfig tunes the asynchronous job loop.
func WithPollConfig(cfg poll.Config) Option {
	return func(r *Runner) { r.poll = cfg }
}

// New creates a Runner with the given options.
func New(opts ...Option) *Runner {
	r := &Runner{writer: artifact.NewWriter()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run dispatches one request and persists its outputs. outputPath may be
// empty, in which case the provider's documented default filename is used.
func (r *Runner) Run(ctx context.Context, gen media.Generator, req *media.Request, outputPath string) (*Outcome, error) {
	return r.run(ctx, gen, req, outputPath, "")
}

// RunN dispatches the request n times through a bounded worker pool, for
// providers without native multi-output support. Outputs are suffixed _1.._n.
func (r *Runner) RunN(ctx context.Context, gen media.Generator, req *media.Request, outputPath string, n int) (*Outcome, error) {
	if n <= 1 {
		return r.Run(ctx, gen, req, outputPath)
	}
	size := n
	if size > maxFanOut {
		size = maxFanOut
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
		outcomes = make([]*Outcome, n)
	)
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			cloned := *req
			cloned.Options = req.Options.Clone()
			outcome, err := r.run(ctx, gen, &cloned, outputPath, fmt.Sprintf("_%d", i+1))
			mu.Lock()
			defer mu.Unlock()
			if err != nil && firstErr == nil {
				firstErr = err
			}
			outcomes[i] = outcome
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = submitErr
			}
			mu.Unlock()
		}
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	merged := &Outcome{}
	for _, o := range outcomes {
		if o == nil {
			continue
		}
		merged.Paths = append(merged.Paths, o.Paths...)
		if o.Detail != "" {
			merged.Detail = o.Detail
		}
	}
	return merged, nil
}

func (r *Runner) run(ctx context.Context, gen media.Generator, req *media.Request, outputPath, suffix string) (*Outcome, error) {
	requestID := uuid.NewString()
	if err := gen.Validate(req); err != nil {
		return nil, err
	}
	log.Infof("request %s: %s generation submitted", requestID, req.Capability)

	sub, err := gen.Submit(ctx, req)
	if err != nil {
		return nil, err
	}

	result := sub.Result
	if sub.Job != nil {
		result, err = r.await(ctx, gen, sub.Job, requestID)
		if err != nil {
			return nil, err
		}
	}
	if result == nil {
		return nil, fmt.Errorf("request %s: provider returned no result", requestID)
	}

	outcome := &Outcome{Detail: result.Detail}
	for i, out := range result.Outputs {
		path := resolveOutputPath(outputPath, result.DefaultName, out.Extension, suffix, i, len(result.Outputs))
		art := &artifact.Artifact{Data: out.Data, MimeType: out.MIMEType, Name: filepath.Base(path)}
		if err := r.writer.Write(ctx, path, art); err != nil {
			return nil, err
		}
		log.Infof("request %s: output saved to %s", requestID, path)
		outcome.Paths = append(outcome.Paths, path)
	}
	return outcome, nil
}

// await drives the poll loop for asynchronous jobs. Transient poll failures
// are retried inside poll.Await up to its bounded count; fatal classifications
// and a terminal failed status from the provider are surfaced immediately and
// never retried.
func (r *Runner) await(ctx context.Context, gen media.Generator, job *media.Job, requestID string) (*media.Result, error) {
	jr, ok := gen.(media.JobRunner)
	if !ok {
		return nil, fmt.Errorf("request %s: generator returned a job but cannot poll", requestID)
	}
	polls := 0
	err := poll.Await(ctx, r.poll, func(ctx context.Context) (bool, error) {
		polls++
		refreshed, err := jr.PollJob(ctx, job)
		if err != nil {
			if media.IsFatal(err) {
				return false, poll.Permanent(err)
			}
			log.Warnf("request %s: poll %d failed: %v", requestID, polls, err)
			return false, err
		}
		*job = *refreshed
		log.Debugf("request %s: poll %d status %s", requestID, polls, job.Status)
		if job.Status == media.JobFailed {
			return false, poll.Permanent(fmt.Errorf("job %s failed: %s", job.ID, job.Message))
		}
		return job.Status == media.JobSucceeded, nil
	})
	if errors.Is(err, poll.ErrTimeout) {
		return nil, fmt.Errorf("%w: job %s last status %s after %d polls",
			media.ErrJobTimeout, job.ID, job.Status, polls)
	}
	if err != nil {
		return nil, err
	}
	return jr.FetchResult(ctx, job)
}

// resolveOutputPath picks the final path for output i of total. With several
// outputs the index lands before the extension, matching the documented
// _<i> naming. The resolved extension always wins over the caller's.
func resolveOutputPath(requested, defaultName, ext, suffix string, i, total int) string {
	name := defaultName + suffix
	req := requested
	if total > 1 {
		index := fmt.Sprintf("_%d", i+1)
		name += index
		if req != "" {
			e := filepath.Ext(req)
			req = strings.TrimSuffix(req, e) + index + e
		}
	} else if suffix != "" && req != "" {
		e := filepath.Ext(req)
		req = strings.TrimSuffix(req, e) + suffix + e
	}
	return artifact.ResolvePath(req, name, ext)
}
