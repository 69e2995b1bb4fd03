//
// Tencent is pleased to support the open source community by making trpc-genmedia-go available.
//
// Copyright (C) 2026 Tencent.  All rights reserved.
//
// trpc-genmedia-go is licensed under the Apache License Version 2.0.
//
//

// Package tripo generates 3D models through the Tripo task API. Three modes
// share one generator: text to model, image to model and multiview to model
// (ordered views: front, back, left, right). Tasks are asynchronous; an
// optional format conversion task is chained after the main task succeeds.
package tripo

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"trpc.group/trpc-go/trpc-genmedia-go/config"
	"trpc.group/trpc-go/trpc-genmedia-go/internal/fileutil"
	"trpc.group/trpc-go/trpc-genmedia-go/internal/httpclient"
	"trpc.group/trpc-go/trpc-genmedia-go/internal/poll"
	"trpc.group/trpc-go/trpc-genmedia-go/log"
	"trpc.group/trpc-go/trpc-genmedia-go/media"
)

const (
	taskPath   = "/v2/openapi/task"
	uploadPath = "/v2/openapi/upload"

	defaultNegativePrompt = "low quality, blurry, deformed, extra limbs, multiple heads"

	maxViews = 4
)

// multiviewVersions are the model versions that accept multiview input.
var multiviewVersions = map[string]bool{
	"v2.0-20240919": true,
	"v2.5-20250123": true,
	"v3.0-20250812": true,
}

// optionSpec is the documented option table for Tripo 3D generation.
var optionSpec = &media.OptionSpec{
	Fields: map[string]media.Field{
		"version": {
			Kind: media.KindString,
			Enum: []string{
				"Turbo-v1.0-20250506",
				"v1.4-20240625",
				"v2.0-20240919",
				"v2.5-20250123",
				"v3.0-20250812",
			},
			Default: "v3.0-20250812",
		},
		"texture_quality": {
			Kind:    media.KindString,
			Enum:    []string{"standard", "detailed"},
			Default: "standard",
		},
		"geometry_quality": {
			Kind:    media.KindString,
			Enum:    []string{"standard", "detailed"},
			Default: "standard",
		},
		"face_limit":      {Kind: media.KindInt, Range: &media.Range{Min: 1, Max: 0}},
		"texture":         {Kind: media.KindBool, Default: true},
		"pbr":             {Kind: media.KindBool, Default: true},
		"format":          {Kind: media.KindString, Enum: []string{"GLTF", "USDZ", "FBX", "OBJ", "STL", "3MF"}},
		"negative_prompt": {Kind: media.KindString, Default: defaultNegativePrompt},
	},
}

// apiResponse is the provider's JSON envelope.
type apiResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		TaskID     string     `json:"task_id"`
		ImageToken string     `json:"image_token"`
		Status     string     `json:"status"`
		Progress   int        `json:"progress"`
		Output     taskOutput `json:"output"`
	} `json:"data"`
}

type taskOutput struct {
	Model     string `json:"model"`
	PBRModel  string `json:"pbr_model"`
	BaseModel string `json:"base_model"`
}

// jobState travels on the media.Job payload between polls.
type jobState struct {
	mode   string
	format string
	output taskOutput
}

// Generator implements media.Generator and media.JobRunner for Tripo.
type Generator struct {
	client *httpclient.Client
	poll   poll.Config
}

// Option configures the Generator.
type Option func(*Generator)

// WithClient replaces the REST client, mainly for tests.
func WithClient(c *httpclient.Client) Option {
	return func(g *Generator) { g.client = c }
}

// WithPollConfig tunes the poll loop used for chained conversion tasks.
func WithPollConfig(cfg poll.Config) Option {
	return func(g *Generator) { g.poll = cfg }
}

// New creates a Tripo 3D generator.
func New(cfg config.Tripo, opts ...Option) (*Generator, error) {
	g := &Generator{}
	for _, opt := range opts {
		opt(g)
	}
	if g.client == nil {
		if cfg.APIKey == "" {
			return nil, media.MissingCredentialf("TRIPO_API_KEY is not set")
		}
		g.client = httpclient.New(
			httpclient.WithBaseURL(cfg.BaseURL),
			httpclient.WithBearer(cfg.APIKey),
		)
	}
	return g, nil
}

// Capability implements media.Generator.
func (g *Generator) Capability() media.Capability { return media.CapabilityModel3D }

// mode derives the task type from the request shape.
func mode(req *media.Request) string {
	switch {
	case len(req.InputPaths) > 1:
		return "multiview_to_model"
	case len(req.InputPaths) == 1:
		return "image_to_model"
	default:
		return "text_to_model"
	}
}

// Validate implements media.Generator. Multiview mode takes at most four
// views, in front, back, left, right order, and only with model versions
// v2.0 and later.
func (g *Generator) Validate(req *media.Request) error {
	if req.Prompt == "" && len(req.InputPaths) == 0 {
		return media.InvalidOptionf("either a prompt or input images are required")
	}
	if len(req.InputPaths) > maxViews {
		return media.InvalidOptionf("too many views: %d, maximum %d", len(req.InputPaths), maxViews)
	}
	normalized, err := optionSpec.Normalize(req.Options)
	if err != nil {
		return err
	}
	if mode(req) == "multiview_to_model" && !multiviewVersions[normalized.String("version")] {
		return media.InvalidCombinationf("multiview requires model version v2.0-20240919, v2.5-20250123 or v3.0-20250812, got %s",
			normalized.String("version"))
	}
	req.Options = normalized
	return nil
}

// Submit implements media.Generator. Input images are uploaded first; the
// returned file tokens go into the task payload in the original view order.
func (g *Generator) Submit(ctx context.Context, req *media.Request) (*media.Submission, error) {
	taskMode := mode(req)
	body := map[string]any{
		"type":             taskMode,
		"model_version":    req.Options.String("version"),
		"texture_quality":  req.Options.String("texture_quality"),
		"geometry_quality": req.Options.String("geometry_quality"),
		"texture":          req.Options.Bool("texture"),
		"pbr":              req.Options.Bool("pbr"),
	}
	if req.Options.Has("face_limit") {
		body["face_limit"] = req.Options.Int("face_limit")
	}

	switch taskMode {
	case "text_to_model":
		body["prompt"] = req.Prompt
		if s := req.Options.String("negative_prompt"); s != "" {
			body["negative_prompt"] = s
		}
	case "image_to_model":
		token, fileType, err := g.upload(ctx, req.InputPaths[0])
		if err != nil {
			return nil, err
		}
		body["file"] = map[string]any{"type": fileType, "file_token": token}
	case "multiview_to_model":
		files := make([]map[string]any, 0, len(req.InputPaths))
		for _, path := range req.InputPaths {
			token, fileType, err := g.upload(ctx, path)
			if err != nil {
				return nil, err
			}
			files = append(files, map[string]any{"type": fileType, "file_token": token})
		}
		body["files"] = files
	}

	var resp apiResponse
	if err := g.client.PostJSON(ctx, taskPath, body, &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("create task: %s (code %d)", resp.Message, resp.Code)
	}

	job := &media.Job{ID: resp.Data.TaskID, Status: media.JobPending}
	job.SetPayload(&jobState{mode: taskMode, format: req.Options.String("format")})
	return &media.Submission{Job: job}, nil
}

// upload pushes one input image and returns its file token and type.
func (g *Generator) upload(ctx context.Context, path string) (token, fileType string, err error) {
	data, err := fileutil.ReadInput(path)
	if err != nil {
		return "", "", err
	}
	var resp apiResponse
	files := []httpclient.FormFile{{
		Field:       "file",
		Name:        filepath.Base(path),
		ContentType: fileutil.MIMEFromPath(path),
		Data:        data,
	}}
	if err := g.client.PostForm(ctx, uploadPath, nil, files, &resp); err != nil {
		return "", "", err
	}
	if resp.Code != 0 {
		return "", "", fmt.Errorf("upload %s: %s (code %d)", path, resp.Message, resp.Code)
	}
	fileType = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if fileType == "jpeg" {
		fileType = "jpg"
	}
	return resp.Data.ImageToken, fileType, nil
}

// PollJob implements media.JobRunner.
func (g *Generator) PollJob(ctx context.Context, job *media.Job) (*media.Job, error) {
	status, output, err := g.taskStatus(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	state, _ := job.Payload().(*jobState)
	next := &media.Job{ID: job.ID, Status: taskJobStatus(status)}
	if next.Status == media.JobFailed {
		next.Message = fmt.Sprintf("task status %s", status)
	}
	if state != nil {
		state.output = output
	}
	next.SetPayload(state)
	return next, nil
}

// FetchResult implements media.JobRunner. When a conversion format was
// requested a convert_model task is chained and polled here before download.
func (g *Generator) FetchResult(ctx context.Context, job *media.Job) (*media.Result, error) {
	state, ok := job.Payload().(*jobState)
	if !ok {
		return nil, fmt.Errorf("job %s carries no task state", job.ID)
	}
	output := state.output
	ext := "glb"

	if state.format != "" {
		converted, err := g.convert(ctx, job.ID, state.format)
		if err != nil {
			return nil, err
		}
		output = converted
		ext = strings.ToLower(state.format)
	}

	url := output.Model
	if url == "" {
		url = output.PBRModel
	}
	if url == "" {
		url = output.BaseModel
	}
	if url == "" {
		return nil, fmt.Errorf("job %s produced no model file", job.ID)
	}
	data, err := g.client.Download(ctx, url)
	if err != nil {
		return nil, err
	}
	return &media.Result{
		Outputs:     []media.Output{{Data: data, Extension: ext}},
		DefaultName: strings.TrimSuffix(state.mode, "_model") + "_3d",
	}, nil
}

// convert runs a convert_model task to completion and returns its output.
func (g *Generator) convert(ctx context.Context, taskID, format string) (taskOutput, error) {
	var created apiResponse
	body := map[string]any{
		"type":                   "convert_model",
		"original_model_task_id": taskID,
		"format":                 format,
	}
	if err := g.client.PostJSON(ctx, taskPath, body, &created); err != nil {
		return taskOutput{}, err
	}
	if created.Code != 0 {
		return taskOutput{}, fmt.Errorf("create conversion task: %s (code %d)", created.Message, created.Code)
	}
	convertID := created.Data.TaskID
	log.Infof("converting model to %s (task %s)", format, convertID)

	var output taskOutput
	err := poll.Await(ctx, g.poll, func(ctx context.Context) (bool, error) {
		status, out, err := g.taskStatus(ctx, convertID)
		if err != nil {
			return false, err
		}
		switch taskJobStatus(status) {
		case media.JobSucceeded:
			output = out
			return true, nil
		case media.JobFailed:
			return false, poll.Permanent(fmt.Errorf("conversion task %s status %s", convertID, status))
		}
		return false, nil
	})
	if err != nil {
		return taskOutput{}, err
	}
	return output, nil
}

func (g *Generator) taskStatus(ctx context.Context, taskID string) (string, taskOutput, error) {
	var resp apiResponse
	if err := g.client.GetJSON(ctx, taskPath+"/"+taskID, &resp); err != nil {
		return "", taskOutput{}, err
	}
	if resp.Code != 0 {
		return "", taskOutput{}, fmt.Errorf("query task %s: %s (code %d)", taskID, resp.Message, resp.Code)
	}
	return resp.Data.Status, resp.Data.Output, nil
}

// taskJobStatus maps provider task statuses onto the job model.
func taskJobStatus(status string) media.JobStatus {
	switch status {
	case "queued":
		return media.JobPending
	case "running":
		return media.JobRunning
	case "success":
		return media.JobSucceeded
	default:
		return media.JobFailed
	}
}
