//
// Tencent is pleased to support the open source community by making trpc-genmedia-go available.
//
// Copyright (C) 2026 Tencent.  All rights reserved.
//
// trpc-genmedia-go is licensed under the Apache License Version 2.0.
//
//

// Package veo generates videos through Google Veo. Generation is
// asynchronous: Submit starts a long-running operation and the runner polls
// it to completion before the video bytes are downloaded.
package veo

import (
	"context"
	"fmt"
	"math"

	"google.golang.org/genai"

	"trpc.group/trpc-go/trpc-genmedia-go/config"
	"trpc.group/trpc-go/trpc-genmedia-go/internal/fileutil"
	"trpc.group/trpc-go/trpc-genmedia-go/internal/googleai"
	"trpc.group/trpc-go/trpc-genmedia-go/media"
)

const (
	defaultModel = "veo-3.1-generate-001"
	// The SDK carries the seed as an int32, so larger values cannot be
	// submitted and are rejected during validation.
	maxSeed = math.MaxInt32
)

// optionSpec is the documented option table for Veo video generation.
// 1080p output is only available for 8 second 16:9 videos; the rule rejects
// the combination instead of silently downgrading.
var optionSpec = &media.OptionSpec{
	Fields: map[string]media.Field{
		"model": {
			Kind:    media.KindString,
			Enum:    []string{"veo-3.1-generate-001", "veo-3.1-fast-generate-001"},
			Default: defaultModel,
		},
		"aspect_ratio": {
			Kind:    media.KindString,
			Enum:    []string{"16:9", "9:16"},
			Default: "16:9",
		},
		"duration": {
			Kind:    media.KindInt,
			IntEnum: []int{4, 6, 8},
			Default: 8,
		},
		"resolution": {
			Kind:    media.KindString,
			Enum:    []string{"720p", "1080p"},
			Default: "720p",
		},
		"negative_prompt": {Kind: media.KindString},
		"seed":            {Kind: media.KindInt, Range: &media.Range{Min: 0, Max: maxSeed}},
	},
	Rules: []media.Rule{
		{
			Name: "1080p requires 8s 16:9",
			Check: func(opts media.Options) string {
				if opts.String("resolution") == "1080p" &&
					(opts.Int("duration") != 8 || opts.String("aspect_ratio") != "16:9") {
					return "1080p resolution requires duration=8 and aspect_ratio=16:9"
				}
				return ""
			},
		},
	},
}

// Client is the slice of the GenAI SDK this adapter needs.
type Client interface {
	GenerateVideos(ctx context.Context, model, prompt string, image *genai.Image,
		config *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error)
	GetVideosOperation(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error)
	DownloadVideo(ctx context.Context, video *genai.Video) ([]byte, error)
}

type genaiClient struct {
	client *genai.Client
}

func (c *genaiClient) GenerateVideos(ctx context.Context, model, prompt string, image *genai.Image,
	config *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error) {
	return c.client.Models.GenerateVideos(ctx, model, prompt, image, config)
}

func (c *genaiClient) GetVideosOperation(ctx context.Context,
	op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
	return c.client.Operations.GetVideosOperation(ctx, op, nil)
}

func (c *genaiClient) DownloadVideo(ctx context.Context, video *genai.Video) ([]byte, error) {
	return c.client.Files.Download(ctx, video, nil)
}

// Generator implements media.Generator and media.JobRunner for Veo.
type Generator struct {
	client Client
}

// Option configures the Generator.
type Option func(*Generator)

// WithClient replaces the SDK client, mainly for tests.
func WithClient(c Client) Option {
	return func(g *Generator) { g.client = c }
}

// New creates a Veo video generator. The credential check runs before the
// SDK client is constructed.
func New(ctx context.Context, cfg config.Google, opts ...Option) (*Generator, error) {
	g := &Generator{}
	for _, opt := range opts {
		opt(g)
	}
	if g.client == nil {
		client, err := googleai.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		g.client = &genaiClient{client: client}
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
		return media.InvalidOptionf("at most one input image is supported, got %d", len(req.InputPaths))
	}
	normalized, err := optionSpec.Normalize(req.Options)
	if err != nil {
		return err
	}
	req.Options = normalized
	return nil
}

// Submit implements media.Generator. It starts the generation operation and
// hands back a job to be polled.
func (g *Generator) Submit(ctx context.Context, req *media.Request) (*media.Submission, error) {
	cfg := &genai.GenerateVideosConfig{
		AspectRatio:     req.Options.String("aspect_ratio"),
		DurationSeconds: genai.Ptr(int32(req.Options.Int("duration"))),
		Resolution:      req.Options.String("resolution"),
	}
	if s := req.Options.String("negative_prompt"); s != "" {
		cfg.NegativePrompt = s
	}
	if req.Options.Has("seed") {
		cfg.Seed = genai.Ptr(int32(req.Options.Int("seed")))
	}

	var image *genai.Image
	if len(req.InputPaths) == 1 {
		data, err := fileutil.ReadInput(req.InputPaths[0])
		if err != nil {
			return nil, err
		}
		image = &genai.Image{ImageBytes: data, MIMEType: fileutil.MIMEFromPath(req.InputPaths[0])}
	}

	op, err := g.client.GenerateVideos(ctx, req.Options.String("model"), req.Prompt, image, cfg)
	if err != nil {
		return nil, err
	}
	job := &media.Job{ID: op.Name, Status: media.JobRunning}
	job.SetPayload(op)
	return &media.Submission{Job: job}, nil
}

// PollJob implements media.JobRunner.
func (g *Generator) PollJob(ctx context.Context, job *media.Job) (*media.Job, error) {
	op, ok := job.Payload().(*genai.GenerateVideosOperation)
	if !ok {
		return nil, fmt.Errorf("job %s carries no video operation", job.ID)
	}
	refreshed, err := g.client.GetVideosOperation(ctx, op)
	if err != nil {
		return nil, err
	}
	next := &media.Job{ID: job.ID, Status: media.JobRunning}
	next.SetPayload(refreshed)
	if refreshed.Done {
		if refreshed.Error != nil {
			next.Status = media.JobFailed
			next.Message = operationError(refreshed.Error)
		} else {
			next.Status = media.JobSucceeded
		}
	}
	return next, nil
}

// FetchResult implements media.JobRunner. Video bytes come inline on the
// Gemini API backend and via file download on Vertex.
func (g *Generator) FetchResult(ctx context.Context, job *media.Job) (*media.Result, error) {
	op, ok := job.Payload().(*genai.GenerateVideosOperation)
	if !ok || op.Response == nil {
		return nil, fmt.Errorf("job %s finished without a response", job.ID)
	}
	if len(op.Response.GeneratedVideos) == 0 {
		if len(op.Response.RAIMediaFilteredReasons) > 0 {
			return nil, media.ContentRejectedf("video filtered: %s", op.Response.RAIMediaFilteredReasons[0])
		}
		return nil, media.ContentRejectedf("operation produced no videos")
	}
	video := op.Response.GeneratedVideos[0].Video
	data := video.VideoBytes
	if len(data) == 0 {
		downloaded, err := g.client.DownloadVideo(ctx, video)
		if err != nil {
			return nil, media.Transportf("download video: %v", err)
		}
		data = downloaded
	}
	return &media.Result{
		Outputs:     []media.Output{{Data: data, MIMEType: "video/mp4", Extension: "mp4"}},
		DefaultName: "generated_video",
	}, nil
}

func operationError(e map[string]any) string {
	if msg, ok := e["message"].(string); ok && msg != "" {
		return msg
	}
	return fmt.Sprintf("%v", e)
}
