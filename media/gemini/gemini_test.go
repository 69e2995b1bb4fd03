//
// Tencent is pleased to support the open source community by making trpc-genmedia-go available.
//
// Copyright (C) 2026 Tencent.  All rights reserved.
//
// trpc-genmedia-go is licensed under the Apache License Version 2.0.
//
//

package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"trpc.group/trpc-go/trpc-genmedia-go/config"
	"trpc.group/trpc-go/trpc-genmedia-go/media"
)

type fakeClient struct {
	calls        int
	lastModel    string
	lastContents []*genai.Content
	lastConfig   *genai.GenerateContentConfig
	response     *genai.GenerateContentResponse
	err          error
}

func (c *fakeClient) GenerateContent(_ context.Context, model string, contents []*genai.Content,
	cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	c.calls++
	c.lastModel = model
	c.lastContents = contents
	c.lastConfig = cfg
	return c.response, c.err
}

func newGenerator(t *testing.T, c Client) *Generator {
	t.Helper()
	g, err := New(context.Background(), config.Google{}, WithClient(c))
	require.NoError(t, err)
	return g
}

func imageResponse(text string, images ...[]byte) *genai.GenerateContentResponse {
	parts := []*genai.Part{}
	if text != "" {
		parts = append(parts, &genai.Part{Text: text})
	}
	for _, img := range images {
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{Data: img, MIMEType: "image/png"}})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

func TestValidateFillsDefaults(t *testing.T) {
	g := newGenerator(t, &fakeClient{})
	req := &media.Request{Prompt: "a cat"}
	require.NoError(t, g.Validate(req))
	assert.Equal(t, "1:1", req.Options.String("aspect_ratio"))
	assert.Equal(t, "1K", req.Options.String("resolution"))
}

func TestValidateCanonicalizesResolution(t *testing.T) {
	g := newGenerator(t, &fakeClient{})
	req := &media.Request{Prompt: "a cat", Options: media.Options{"resolution": "2k"}}
	require.NoError(t, g.Validate(req))
	assert.Equal(t, "2K", req.Options.String("resolution"))
}

func TestValidateRejectsTooManyInputs(t *testing.T) {
	c := &fakeClient{}
	g := newGenerator(t, c)
	req := &media.Request{Prompt: "combine these", InputPaths: make([]string, 15)}
	err := g.Validate(req)
	require.Error(t, err)
	assert.ErrorIs(t, err, media.ErrInvalidOption)
	assert.Equal(t, 0, c.calls)
}

func TestSubmitBuildsImageConfig(t *testing.T) {
	c := &fakeClient{response: imageResponse("here you go", []byte("png-bytes"))}
	g := newGenerator(t, c)
	req := &media.Request{Prompt: "a cat", Options: media.Options{"aspect_ratio": "16:9", "resolution": "4K"}}
	require.NoError(t, g.Validate(req))
	sub, err := g.Submit(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "gemini-3-pro-image-preview", c.lastModel)
	require.NotNil(t, c.lastConfig.ImageConfig)
	assert.Equal(t, "16:9", c.lastConfig.ImageConfig.AspectRatio)
	assert.Equal(t, []string{"TEXT", "IMAGE"}, c.lastConfig.ResponseModalities)

	// The image size has no SDK field and travels in the extra request body,
	// nested so it merges into generationConfig.
	require.NotNil(t, c.lastConfig.HTTPOptions)
	assert.Equal(t, map[string]any{
		"generationConfig": map[string]any{
			"imageConfig": map[string]any{"imageSize": "4K"},
		},
	}, c.lastConfig.HTTPOptions.ExtraBody)

	require.NotNil(t, sub.Result)
	require.Len(t, sub.Result.Outputs, 1)
	assert.Equal(t, []byte("png-bytes"), sub.Result.Outputs[0].Data)
	assert.Equal(t, "png", sub.Result.Outputs[0].Extension)
	assert.Equal(t, "here you go", sub.Result.Detail)
	assert.Equal(t, "generated_image", sub.Result.DefaultName)
}

func TestSubmitCollectsMultipleImages(t *testing.T) {
	c := &fakeClient{response: imageResponse("", []byte("one"), []byte("two"))}
	g := newGenerator(t, c)
	req := &media.Request{Prompt: "a pair"}
	require.NoError(t, g.Validate(req))
	sub, err := g.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, sub.Result.Outputs, 2)
}

func TestSubmitBlockedPromptIsContentRejected(t *testing.T) {
	c := &fakeClient{response: &genai.GenerateContentResponse{
		PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
	}}
	g := newGenerator(t, c)
	req := &media.Request{Prompt: "blocked"}
	require.NoError(t, g.Validate(req))
	_, err := g.Submit(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, media.ErrContentRejected)
}

func TestSubmitSafetyFinishWithoutImageIsContentRejected(t *testing.T) {
	c := &fakeClient{response: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
	}}
	g := newGenerator(t, c)
	req := &media.Request{Prompt: "x"}
	require.NoError(t, g.Validate(req))
	_, err := g.Submit(context.Background(), req)
	assert.ErrorIs(t, err, media.ErrContentRejected)
}

func TestSubmitEmptyResponseIsTransport(t *testing.T) {
	c := &fakeClient{response: &genai.GenerateContentResponse{}}
	g := newGenerator(t, c)
	req := &media.Request{Prompt: "x"}
	require.NoError(t, g.Validate(req))
	_, err := g.Submit(context.Background(), req)
	assert.ErrorIs(t, err, media.ErrTransport)
}

func TestClassifyError(t *testing.T) {
	assert.ErrorIs(t, classifyError(genai.APIError{Code: 429, Message: "quota"}), media.ErrTransport)
	assert.ErrorIs(t, classifyError(genai.APIError{Code: 503, Message: "unavailable"}), media.ErrTransport)
	assert.ErrorIs(t, classifyError(genai.APIError{Code: 400, Message: "blocked by safety filters"}),
		media.ErrContentRejected)
	err := classifyError(genai.APIError{Code: 400, Message: "bad field"})
	assert.NotErrorIs(t, err, media.ErrTransport)
	assert.NotErrorIs(t, err, media.ErrContentRejected)
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(context.Background(), config.Google{})
	require.Error(t, err)
	assert.ErrorIs(t, err, media.ErrMissingCredential)
}
