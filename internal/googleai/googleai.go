//
// Tencent is pleased to support the open source community by making trpc-genmedia-go available.
//
// Copyright (C) 2026 Tencent.  All rights reserved.
//
// trpc-genmedia-go is licensed under the Apache License Version 2.0.
//
//

// Package googleai builds the shared GenAI SDK client used by the Gemini and
// Veo adapters. Credential checks happen here, before the SDK client exists.
package googleai

import (
	"context"

	"google.golang.org/genai"

	"trpc.group/trpc-go/trpc-genmedia-go/config"
	"trpc.group/trpc-go/trpc-genmedia-go/media"
)

// NewClient creates a GenAI client from the Google configuration. Vertex AI
// mode requires a project; API mode requires a key. Construction performs no
// network I/O.
func NewClient(ctx context.Context, cfg config.Google) (*genai.Client, error) {
	if cfg.UseVertexAI {
		if cfg.Project == "" {
			return nil, media.MissingCredentialf("GOOGLE_CLOUD_PROJECT is not set (required with USE_VERTEX_AI)")
		}
		return genai.NewClient(ctx, &genai.ClientConfig{
			Backend:  genai.BackendVertexAI,
			Project:  cfg.Project,
			Location: cfg.Location,
		})
	}
	if cfg.APIKey == "" {
		return nil, media.MissingCredentialf("GOOGLE_CLOUD_API_KEY is not set")
	}
	return genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  cfg.APIKey,
	})
}
