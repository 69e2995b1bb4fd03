//
// Tencent is pleased to support the open source community by making trpc-genmedia-go available.
//
// Copyright (C) 2026 Tencent.  All rights reserved.
//
// trpc-genmedia-go is licensed under the Apache License Version 2.0.
//
//

// Package gptimage generates and edits images through the OpenAI Images API
// (gpt-image model family). Requests with input images go through the edit
// endpoint; pure text prompts go through generate. Both return base64 data.
package gptimage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"trpc.group/trpc-go/trpc-genmedia-go/config"
	"trpc.group/trpc-go/trpc-genmedia-go/internal/fileutil"
	"trpc.group/trpc-go/trpc-genmedia-go/media"
)

const maxInputImages = 16

// optionSpec is the documented option table for GPT Image generation.
var optionSpec = &media.OptionSpec{
	Fields: map[string]media.Field{
		"model": {
			Kind:    media.KindString,
			Enum:    []string{"gpt-image-1.5", "gpt-image-1", "gpt-image-1-mini"},
			Default: "gpt-image-1.5",
		},
		"size": {
			Kind:    media.KindString,
			Enum:    []string{"1024x1024", "1536x1024", "1024x1536", "auto"},
			Default: "1024x1024",
		},
		"quality": {
			Kind:    media.KindString,
			Enum:    []string{"auto", "high", "medium", "low"},
			Default: "auto",
		},
		"format": {
			Kind:    media.KindString,
			Enum:    []string{"png", "jpeg", "webp"},
			Default: "png",
		},
		"background": {
			Kind:    media.KindString,
			Enum:    []string{"auto", "transparent", "opaque"},
			Default: "auto",
		},
		"n": {
			Kind:    media.KindInt,
			Range:   &media.Range{Min: 1, Max: 10},
			Default: 1,
		},
	},
	Rules: []media.Rule{
		{
			Name: "transparent background needs alpha",
			Check: func(opts media.Options) string {
				if opts.String("background") == "transparent" && opts.String("format") == "jpeg" {
					return "background=transparent requires format png or webp, not jpeg"
				}
				return ""
			},
		},
	},
}

// Client is the slice of the OpenAI SDK this adapter needs.
type Client interface {
	Generate(ctx context.Context, params openai.ImageGenerateParams) (*openai.ImagesResponse, error)
	Edit(ctx context.Context, params openai.ImageEditParams) (*openai.ImagesResponse, error)
}

type sdkClient struct {
	client openai.Client
}

func (c *sdkClient) Generate(ctx context.Context, params openai.ImageGenerateParams) (*openai.ImagesResponse, error) {
	return c.client.Images.Generate(ctx, params)
}

func (c *sdkClient) Edit(ctx context.Context, params openai.ImageEditParams) (*openai.ImagesResponse, error) {
	return c.client.Images.Edit(ctx, params)
}

// Generator implements media.Generator for GPT Image.
type Generator struct {
	client Client
}

// Option configures the Generator.
type Option func(*Generator)

// WithClient replaces the SDK client, mainly for tests.
func WithClient(c Client) Option {
	return func(g *Generator) { g.client = c }
}

// New creates a GPT Image generator. The credential check runs before the
// SDK client is constructed. Azure mode routes through the configured
// endpoint's /openai/v1/ surface with api-version and api-key applied.
func New(cfg config.OpenAI, opts ...Option) (*Generator, error) {
	g := &Generator{}
	for _, opt := range opts {
		opt(g)
	}
	if g.client == nil {
		if cfg.APIKey == "" {
			return nil, media.MissingCredentialf("OPENAI_API_KEY is not set")
		}
		reqOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
		if cfg.UseAzure {
			reqOpts = append(reqOpts,
				option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/openai/v1/"),
				option.WithQuery("api-version", cfg.AzureAPIVersion),
				option.WithHeader("api-key", cfg.APIKey),
			)
		} else {
			reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
		}
		g.client = &sdkClient{client: openai.NewClient(reqOpts...)}
	}
	return g, nil
}

// Capability implements media.Generator.
func (g *Generator) Capability() media.Capability { return media.CapabilityImage }

// Validate implements media.Generator.
func (g *Generator) Validate(req *media.Request) error {
	if req.Prompt == "" {
		return media.InvalidOptionf("prompt must not be empty")
	}
	if len(req.InputPaths) > maxInputImages {
		return media.InvalidOptionf("too many input images: %d, maximum %d", len(req.InputPaths), maxInputImages)
	}
	normalized, err := optionSpec.Normalize(req.Options)
	if err != nil {
		return err
	}
	req.Options = normalized
	return nil
}

// Submit implements media.Generator.
func (g *Generator) Submit(ctx context.Context, req *media.Request) (*media.Submission, error) {
	var (
		resp *openai.ImagesResponse
		err  error
	)
	if len(req.InputPaths) > 0 {
		resp, err = g.edit(ctx, req)
	} else {
		resp, err = g.generate(ctx, req)
	}
	if err != nil {
		return nil, classifyError(err)
	}

	format := req.Options.String("format")
	result := &media.Result{DefaultName: "generated_image"}
	for _, img := range resp.Data {
		data, err := base64.StdEncoding.DecodeString(img.B64JSON)
		if err != nil {
			return nil, media.Transportf("decode image data: %v", err)
		}
		result.Outputs = append(result.Outputs, media.Output{
			Data:      data,
			MIMEType:  "image/" + format,
			Extension: format,
		})
	}
	if len(result.Outputs) == 0 {
		return nil, media.Transportf("response contained no image data")
	}
	return &media.Submission{Result: result}, nil
}

func (g *Generator) generate(ctx context.Context, req *media.Request) (*openai.ImagesResponse, error) {
	return g.client.Generate(ctx, openai.ImageGenerateParams{
		Prompt:       req.Prompt,
		Model:        openai.ImageModel(req.Options.String("model")),
		Size:         openai.ImageGenerateParamsSize(req.Options.String("size")),
		Quality:      openai.ImageGenerateParamsQuality(req.Options.String("quality")),
		OutputFormat: openai.ImageGenerateParamsOutputFormat(req.Options.String("format")),
		Background:   openai.ImageGenerateParamsBackground(req.Options.String("background")),
		N:            openai.Int(int64(req.Options.Int("n"))),
	})
}

func (g *Generator) edit(ctx context.Context, req *media.Request) (*openai.ImagesResponse, error) {
	var readers []io.Reader
	for _, path := range req.InputPaths {
		data, err := fileutil.ReadInput(path)
		if err != nil {
			return nil, err
		}
		readers = append(readers, openai.File(bytes.NewReader(data), path, fileutil.MIMEFromPath(path)))
	}
	return g.client.Edit(ctx, openai.ImageEditParams{
		Image:        openai.ImageEditParamsImageUnion{OfFileArray: readers},
		Prompt:       req.Prompt,
		Model:        openai.ImageModel(req.Options.String("model")),
		Size:         openai.ImageEditParamsSize(req.Options.String("size")),
		Quality:      openai.ImageEditParamsQuality(req.Options.String("quality")),
		OutputFormat: openai.ImageEditParamsOutputFormat(req.Options.String("format")),
		Background:   openai.ImageEditParamsBackground(req.Options.String("background")),
		N:            openai.Int(int64(req.Options.Int("n"))),
	})
}

func classifyError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == 429 || apiErr.StatusCode >= 500 {
			return media.Transportf("gpt image: %v", err)
		}
		code := strings.ToLower(apiErr.Code)
		if code == "moderation_blocked" || code == "content_policy_violation" {
			return media.ContentRejectedf("gpt image: %s", apiErr.Message)
		}
	}
	return err
}
