//
// Tencent is pleased to support the open source community by making trpc-genmedia-go available.
//
// Copyright (C) 2026 Tencent.  All rights reserved.
//
// trpc-genmedia-go is licensed under the Apache License Version 2.0.
//
//

package gptimage

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-genmedia-go/config"
	"trpc.group/trpc-go/trpc-genmedia-go/media"
)

type fakeClient struct {
	generateCalls      int
	editCalls          int
	lastGenerateParams openai.ImageGenerateParams
	lastEditParams     openai.ImageEditParams
	response           *openai.ImagesResponse
	err                error
}

func (c *fakeClient) Generate(_ context.Context, params openai.ImageGenerateParams) (*openai.ImagesResponse, error) {
	c.generateCalls++
	c.lastGenerateParams = params
	return c.response, c.err
}

func (c *fakeClient) Edit(_ context.Context, params openai.ImageEditParams) (*openai.ImagesResponse, error) {
	c.editCalls++
	c.lastEditParams = params
	return c.response, c.err
}

func newGenerator(t *testing.T, c Client) *Generator {
	t.Helper()
	g, err := New(config.OpenAI{}, WithClient(c))
	require.NoError(t, err)
	return g
}

func b64Response(payloads ...string) *openai.ImagesResponse {
	resp := &openai.ImagesResponse{}
	for _, p := range payloads {
		resp.Data = append(resp.Data, openai.Image{B64JSON: base64.StdEncoding.EncodeToString([]byte(p))})
	}
	return resp
}

func TestValidateFillsDefaults(t *testing.T) {
	g := newGenerator(t, &fakeClient{})
	req := &media.Request{Prompt: "a dog"}
	require.NoError(t, g.Validate(req))
	assert.Equal(t, "gpt-image-1.5", req.Options.String("model"))
	assert.Equal(t, "1024x1024", req.Options.String("size"))
	assert.Equal(t, "auto", req.Options.String("quality"))
	assert.Equal(t, "png", req.Options.String("format"))
	assert.Equal(t, 1, req.Options.Int("n"))
}

func TestValidateTransparentJpegRejected(t *testing.T) {
	c := &fakeClient{}
	g := newGenerator(t, c)
	req := &media.Request{Prompt: "x", Options: media.Options{"background": "transparent", "format": "jpeg"}}
	err := g.Validate(req)
	require.Error(t, err)
	assert.ErrorIs(t, err, media.ErrInvalidOptionCombination)
	assert.Equal(t, 0, c.generateCalls)

	// Transparent with png is allowed.
	req = &media.Request{Prompt: "x", Options: media.Options{"background": "transparent"}}
	assert.NoError(t, g.Validate(req))
}

func TestValidateCountBounds(t *testing.T) {
	g := newGenerator(t, &fakeClient{})
	req := &media.Request{Prompt: "x", Options: media.Options{"n": 11}}
	assert.ErrorIs(t, g.Validate(req), media.ErrInvalidOption)

	req = &media.Request{Prompt: "x", Options: media.Options{"n": 0}}
	assert.ErrorIs(t, g.Validate(req), media.ErrInvalidOption)
}

func TestSubmitGeneratesWithoutInputs(t *testing.T) {
	c := &fakeClient{response: b64Response("img-bytes")}
	g := newGenerator(t, c)
	req := &media.Request{Prompt: "a dog", Options: media.Options{"size": "1536x1024", "format": "webp", "n": 2}}
	require.NoError(t, g.Validate(req))
	sub, err := g.Submit(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, c.generateCalls)
	assert.Equal(t, 0, c.editCalls)
	assert.Equal(t, "a dog", c.lastGenerateParams.Prompt)
	assert.Equal(t, openai.ImageModel("gpt-image-1.5"), c.lastGenerateParams.Model)
	assert.Equal(t, openai.ImageGenerateParamsSize("1536x1024"), c.lastGenerateParams.Size)
	assert.Equal(t, openai.ImageGenerateParamsOutputFormat("webp"), c.lastGenerateParams.OutputFormat)
	assert.Equal(t, int64(2), c.lastGenerateParams.N.Value)

	require.Len(t, sub.Result.Outputs, 1)
	assert.Equal(t, []byte("img-bytes"), sub.Result.Outputs[0].Data)
	assert.Equal(t, "webp", sub.Result.Outputs[0].Extension)
	assert.Equal(t, "image/webp", sub.Result.Outputs[0].MIMEType)
}

func TestSubmitEditsWithInputs(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "base.png")
	require.NoError(t, os.WriteFile(input, []byte("png"), 0o644))

	c := &fakeClient{response: b64Response("edited")}
	g := newGenerator(t, c)
	req := &media.Request{Prompt: "make it blue", InputPaths: []string{input}}
	require.NoError(t, g.Validate(req))
	sub, err := g.Submit(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, c.editCalls)
	assert.Equal(t, 0, c.generateCalls)
	assert.Len(t, c.lastEditParams.Image.OfFileArray, 1)
	assert.Equal(t, []byte("edited"), sub.Result.Outputs[0].Data)
}

func TestSubmitMultipleOutputs(t *testing.T) {
	c := &fakeClient{response: b64Response("one", "two", "three")}
	g := newGenerator(t, c)
	req := &media.Request{Prompt: "x", Options: media.Options{"n": 3}}
	require.NoError(t, g.Validate(req))
	sub, err := g.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, sub.Result.Outputs, 3)
}

func TestSubmitEmptyResponseIsTransport(t *testing.T) {
	c := &fakeClient{response: &openai.ImagesResponse{}}
	g := newGenerator(t, c)
	req := &media.Request{Prompt: "x"}
	require.NoError(t, g.Validate(req))
	_, err := g.Submit(context.Background(), req)
	assert.ErrorIs(t, err, media.ErrTransport)
}

func TestClassifyError(t *testing.T) {
	assert.ErrorIs(t, classifyError(&openai.Error{StatusCode: 429}), media.ErrTransport)
	assert.ErrorIs(t, classifyError(&openai.Error{StatusCode: 500}), media.ErrTransport)
	assert.ErrorIs(t, classifyError(&openai.Error{StatusCode: 400, Code: "moderation_blocked"}),
		media.ErrContentRejected)
	assert.ErrorIs(t, classifyError(&openai.Error{StatusCode: 400, Code: "content_policy_violation"}),
		media.ErrContentRejected)
	err := classifyError(&openai.Error{StatusCode: 400, Code: "invalid_request"})
	assert.NotErrorIs(t, err, media.ErrTransport)
	assert.NotErrorIs(t, err, media.ErrContentRejected)
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(config.OpenAI{})
	require.Error(t, err)
	assert.ErrorIs(t, err, media.ErrMissingCredential)
}
