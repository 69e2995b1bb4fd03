//
// Tencent is pleased to support the open source community by making trpc-genmedia-go available.
//
// Copyright (C) 2026 Tencent.  All rights reserved.
//
// trpc-genmedia-go is licensed under the Apache License Version 2.0.
//
//

// Package sora generates videos through the OpenAI Sora video API. Jobs are
// asynchronous: create, poll until completed or failed, then download the
// rendered content. An optional input reference image is scaled and padded to
// the target frame before upload.
package sora

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"trpc.group/trpc-go/trpc-genmedia-go/config"
	"trpc.group/trpc-go/trpc-genmedia-go/internal/httpclient"
	"trpc.group/trpc-go/trpc-genmedia-go/media"
)

// optionSpec is the documented option table for Sora video generation.
var optionSpec = &media.OptionSpec{
	Fields: map[string]media.Field{
		"model": {
			Kind:    media.KindString,
			Enum:    []string{"sora-2", "sora-2-pro"},
			Default: "sora-2",
		},
		"duration": {
			Kind:    media.KindInt,
			IntEnum: []int{4, 8, 12},
			Default: 4,
		},
		"size": {
			Kind:    media.KindString,
			Enum:    []string{"720x1280", "1280x720", "1024x1792", "1792x1024"},
			Default: "720x1280",
		},
	},
}

// videoJob mirrors the provider's video object.
type videoJob struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Error    *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generator implements media.Generator and media.JobRunner for Sora.
type Generator struct {
	client *httpclient.Client
}

// Option configures the Generator.
type Option func(*Generator)

// WithClient replaces the REST client, mainly for tests.
func WithClient(c *httpclient.Client) Option {
	return func(g *Generator) { g.client = c }
}

// New creates a Sora video generator. The credential check runs before the
// REST client is constructed. Azure mode routes through the endpoint's
// /openai/v1/ surface.
func New(cfg config.OpenAI, opts ...Option) (*Generator, error) {
	g := &Generator{}
	for _, opt := range opts {
		opt(g)
	}
	if g.client == nil {
		if cfg.APIKey == "" {
			return nil, media.MissingCredentialf("OPENAI_API_KEY is not set")
		}
		base := cfg.BaseURL
		if cfg.UseAzure {
			base = strings.TrimRight(base, "/") + "/openai/v1"
		}
		g.client = httpclient.New(
			httpclient.WithBaseURL(base),
			httpclient.WithBearer(cfg.APIKey),
		)
	}
	return g, nil
}

// Capability implements media.Generator.
func (g *Generator) Capability() media.Capability { return media.CapabilityVideo }

// Validate implements media.Generator.
func (g *Generator) Validate(req *media.Request) error {
	if req.Prompt == "" {
		return media.InvalidOptionf("prompt must not be empty")
	}
	if len(req.InputPaths) > 1 {
		return media.InvalidOptionf("at most one input reference image is supported, got %d", len(req.InputPaths))
	}
	normalized, err := optionSpec.Normalize(req.Options)
	if err != nil {
		return err
	}
	req.Options = normalized
	return nil
}

// Submit implements media.Generator. The seconds field is a string on the
// wire.
func (g *Generator) Submit(ctx context.Context, req *media.Request) (*media.Submission, error) {
	var job videoJob
	size := req.Options.String("size")
	if len(req.InputPaths) == 1 {
		reference, err := prepareReference(req.InputPaths[0], size)
		if err != nil {
			return nil, err
		}
		fields := map[string]string{
			"model":   req.Options.String("model"),
			"prompt":  req.Prompt,
			"seconds": strconv.Itoa(req.Options.Int("duration")),
			"size":    size,
		}
		files := []httpclient.FormFile{{
			Field:       "input_reference",
			Name:        "image.png",
			ContentType: "image/png",
			Data:        reference,
		}}
		if err := g.client.PostForm(ctx, "/videos", fields, files, &job); err != nil {
			return nil, classifyError(err)
		}
	} else {
		body := map[string]string{
			"model":   req.Options.String("model"),
			"prompt":  req.Prompt,
			"seconds": strconv.Itoa(req.Options.Int("duration")),
			"size":    size,
		}
		if err := g.client.PostJSON(ctx, "/videos", body, &job); err != nil {
			return nil, classifyError(err)
		}
	}
	return &media.Submission{Job: job.toJob()}, nil
}

// PollJob implements media.JobRunner.
func (g *Generator) PollJob(ctx context.Context, job *media.Job) (*media.Job, error) {
	var refreshed videoJob
	if err := g.client.GetJSON(ctx, "/videos/"+job.ID, &refreshed); err != nil {
		return nil, err
	}
	return refreshed.toJob(), nil
}

// FetchResult implements media.JobRunner.
func (g *Generator) FetchResult(ctx context.Context, job *media.Job) (*media.Result, error) {
	data, err := g.client.Download(ctx, "/videos/"+job.ID+"/content")
	if err != nil {
		return nil, err
	}
	return &media.Result{
		Outputs:     []media.Output{{Data: data, MIMEType: "video/mp4", Extension: "mp4"}},
		DefaultName: "generated_video",
	}, nil
}

// toJob maps provider statuses onto the job model: queued is pending,
// in_progress is running, completed and failed are terminal.
func (v *videoJob) toJob() *media.Job {
	job := &media.Job{ID: v.ID}
	switch v.Status {
	case "queued":
		job.Status = media.JobPending
	case "in_progress":
		job.Status = media.JobRunning
		job.Message = fmt.Sprintf("progress %d%%", v.Progress)
	case "completed":
		job.Status = media.JobSucceeded
	case "failed":
		job.Status = media.JobFailed
		job.Message = "unknown error"
		if v.Error != nil && v.Error.Message != "" {
			job.Message = v.Error.Message
		}
	default:
		job.Status = media.JobRunning
		job.Message = v.Status
	}
	return job
}

func classifyError(err error) error {
	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) && statusErr.Code == 400 &&
		strings.Contains(strings.ToLower(statusErr.Body), "moderation") {
		return media.ContentRejectedf("sora: %s", statusErr.Body)
	}
	return err
}
