//
// Tencent is pleased to support the open source community by making trpc-genmedia-go available.
//
// Copyright (C) 2026 Tencent.  All rights reserved.
//
// trpc-genmedia-go is licensed under the Apache License Version 2.0.
//
//

package elevenlabs

import (
	"context"
	"fmt"
	"net/url"

	"trpc.group/trpc-go/trpc-genmedia-go/config"
	"trpc.group/trpc-go/trpc-genmedia-go/internal/httpclient"
	"trpc.group/trpc-go/trpc-genmedia-go/media"
)

// musicSpec is the documented option table for music generation. Music also
// accepts the 192 kbit/s opus encoding on top of the shared format list.
var musicSpec = &media.OptionSpec{
	Fields: map[string]media.Field{
		"model": {
			Kind:    media.KindString,
			Enum:    []string{"music_v1"},
			Default: "music_v1",
		},
		"format": {
			Kind:    media.KindString,
			Enum:    append(append([]string{}, outputFormats...), "opus_48000_192"),
			Default: defaultFormat,
		},
		"duration":     {Kind: media.KindInt, Range: &media.Range{Min: 10, Max: 300}, Default: 30},
		"instrumental": {Kind: media.KindBool, Default: false},
	},
}

// Music implements media.Generator for ElevenLabs music composition.
type Music struct {
	client *client
}

// MusicOption configures the Music generator.
type MusicOption func(*musicOptions)

type musicOptions struct {
	httpClient *httpclient.Client
}

// WithMusicClient replaces the REST client, mainly for tests.
func WithMusicClient(c *httpclient.Client) MusicOption {
	return func(o *musicOptions) { o.httpClient = c }
}

// NewMusic creates the music generator.
func NewMusic(cfg config.ElevenLabs, opts ...MusicOption) (*Music, error) {
	var o musicOptions
	for _, opt := range opts {
		opt(&o)
	}
	c, err := newClient(cfg, o.httpClient)
	if err != nil {
		return nil, err
	}
	return &Music{client: c}, nil
}

// Capability implements media.Generator.
func (m *Music) Capability() media.Capability { return media.CapabilityMusic }

// Validate implements media.Generator.
func (m *Music) Validate(req *media.Request) error {
	if req.Prompt == "" {
		return media.InvalidOptionf("music description must not be empty")
	}
	normalized, err := musicSpec.Normalize(req.Options)
	if err != nil {
		return err
	}
	req.Options = normalized
	return nil
}

// Submit implements media.Generator. Duration travels as milliseconds.
func (m *Music) Submit(ctx context.Context, req *media.Request) (*media.Submission, error) {
	body := map[string]any{
		"prompt":             req.Prompt,
		"model_id":           req.Options.String("model"),
		"music_length_ms":    req.Options.Int("duration") * 1000,
		"force_instrumental": req.Options.Bool("instrumental"),
	}
	format := req.Options.String("format")
	path := fmt.Sprintf("/v1/music?output_format=%s", url.QueryEscape(format))
	data, _, err := m.client.http.PostBinary(ctx, path, body)
	if err != nil {
		return nil, err
	}
	return &media.Submission{Result: &media.Result{
		Outputs:     []media.Output{{Data: data, MIMEType: formatMIME(format), Extension: formatExt(format)}},
		DefaultName: "generated_music",
	}}, nil
}
