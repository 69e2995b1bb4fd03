//
// Tencent is pleased to support the open source community by making trpc-genmedia-go available.
//
// Copyright (C) 2026 Tencent.  All rights reserved.
//
// trpc-genmedia-go is licensed under the Apache License Version 2.0.
//
//

// Package gemini generates images through the Gemini image model
// (gemini-3-pro-image-preview). Generation is synchronous: one
// GenerateContent call returns inline PNG bytes plus any streamed text.
package gemini

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"

	"trpc.group/trpc-go/trpc-genmedia-go/config"
	"trpc.group/trpc-go/trpc-genmedia-go/internal/fileutil"
	"trpc.group/trpc-go/trpc-genmedia-go/internal/googleai"
	"trpc.group/trpc-go/trpc-genmedia-go/media"
)

const (
	defaultModel   = "gemini-3-pro-image-preview"
	maxInputImages = 14
)

// optionSpec is the documented option table for Gemini image generation.
var optionSpec = &media.OptionSpec{
	Fields: map[string]media.Field{
		"aspect_ratio": {
			Kind:    media.KindString,
			Enum:    []string{"1:1", "2:3", "3:2", "3:4", "4:3", "4:5", "5:4", "9:16", "16:9", "21:9"},
			Default: "1:1",
		},
		"resolution": {
			Kind:    media.KindString,
			Enum:    []string{"1K", "2K", "4K"},
			Default: "1K",
		},
	},
}

// Client is the slice of the GenAI SDK this adapter needs. Tests substitute
// a fake; production wraps *genai.Client.
type Client interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content,
		config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type genaiClient struct {
	client *genai.Client
}

func (c *genaiClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content,
	config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return c.client.Models.GenerateContent(ctx, model, contents, config)
}

// Generator implements media.Generator for Gemini image generation.
type Generator struct {
	client Client
	model  string
}

// Option configures the Generator.
type Option func(*Generator)

// WithClient replaces the SDK client, mainly for tests.
func WithClient(c Client) Option {
	return func(g *Generator) { g.client = c }
}

// WithModel overrides the image model name.
func WithModel(model string) Option {
	return func(g *Generator) { g.model = model }
}

// New creates a Gemini image generator. The credential check runs before the
// SDK client is constructed.
func New(ctx context.Context, cfg config.Google, opts ...Option) (*Generator, error) {
	g := &Generator{model: defaultModel}
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
func (g *Generator) Capability() media.Capability { return media.CapabilityImage }

// Validate implements media.Generator. Resolution is accepted in either case
// and canonicalized to upper before the enum check.
func (g *Generator) Validate(req *media.Request) error {
	if req.Prompt == "" {
		return media.InvalidOptionf("prompt must not be empty")
	}
	if len(req.InputPaths) > maxInputImages {
		return media.InvalidOptionf("too many input images: %d, maximum %d", len(req.InputPaths), maxInputImages)
	}
	if s, ok := req.Options["resolution"].(string); ok {
		req.Options["resolution"] = strings.ToUpper(s)
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
	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	for _, path := range req.InputPaths {
		data, err := fileutil.ReadInput(path)
		if err != nil {
			return nil, err
		}
		parts = append(parts, genai.NewPartFromBytes(data, fileutil.MIMEFromPath(path)))
	}
	contents := []*genai.Content{{Role: genai.RoleUser, Parts: parts}}

	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
		ImageConfig: &genai.ImageConfig{
			AspectRatio: req.Options.String("aspect_ratio"),
		},
	}
	// The SDK's ImageConfig does not carry the image size yet, so the
	// resolution rides the request body through ExtraBody. The nested map is
	// deep-merged into generationConfig on serialization.
	if size := req.Options.String("resolution"); size != "" {
		cfg.HTTPOptions = &genai.HTTPOptions{
			ExtraBody: map[string]any{
				"generationConfig": map[string]any{
					"imageConfig": map[string]any{"imageSize": size},
				},
			},
		}
	}
	resp, err := g.client.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return nil, classifyError(err)
	}
	result, err := extractResult(resp)
	if err != nil {
		return nil, err
	}
	return &media.Submission{Result: result}, nil
}

// extractResult collects inline image bytes and streamed text from the
// response, turning safety blocks into ErrContentRejected.
func extractResult(resp *genai.GenerateContentResponse) (*media.Result, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, media.ContentRejectedf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}
	result := &media.Result{DefaultName: "generated_image"}
	var text strings.Builder
	var finish genai.FinishReason
	for _, cand := range resp.Candidates {
		finish = cand.FinishReason
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.Text != "" {
				text.WriteString(part.Text)
			}
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				result.Outputs = append(result.Outputs, media.Output{
					Data:      part.InlineData.Data,
					MIMEType:  part.InlineData.MIMEType,
					Extension: "png",
				})
			}
		}
	}
	result.Detail = text.String()
	if len(result.Outputs) == 0 {
		if finish == genai.FinishReasonSafety || finish == genai.FinishReasonProhibitedContent {
			return nil, media.ContentRejectedf("generation blocked: %s", finish)
		}
		return nil, media.Transportf("response contained no image data")
	}
	return result, nil
}

func classifyError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == 429 || apiErr.Code >= 500 {
			return media.Transportf("gemini: %v", err)
		}
		if apiErr.Code == 400 && strings.Contains(strings.ToLower(apiErr.Message), "safety") {
			return media.ContentRejectedf("gemini: %s", apiErr.Message)
		}
	}
	return err
}
