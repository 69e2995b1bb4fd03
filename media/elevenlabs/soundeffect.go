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

// soundEffectSpec is the documented option table for sound effect
// generation. Duration stays absent by default; the provider then picks an
// appropriate length itself.
var soundEffectSpec = &media.OptionSpec{
	Fields: map[string]media.Field{
		"model": {
			Kind:    media.KindString,
			Enum:    []string{"eleven_text_to_sound_v2", "eleven_text_to_sound_v1"},
			Default: "eleven_text_to_sound_v2",
		},
		"format": {
			Kind:    media.KindString,
			Enum:    outputFormats,
			Default: defaultFormat,
		},
		"duration":         {Kind: media.KindFloat, Range: &media.Range{Min: 0.5, Max: 30}},
		"prompt_influence": {Kind: media.KindFloat, Range: &media.Range{Min: 0, Max: 1}, Default: 0.3},
		"loop":             {Kind: media.KindBool, Default: false},
	},
	Rules: []media.Rule{
		{
			Name: "loop requires v2",
			Check: func(opts media.Options) string {
				if opts.Bool("loop") && opts.String("model") != "eleven_text_to_sound_v2" {
					return "loop is only supported with eleven_text_to_sound_v2"
				}
				return ""
			},
		},
	},
}

// SoundEffect implements media.Generator for ElevenLabs sound effects.
type SoundEffect struct {
	client *client
}

// SoundEffectOption configures the SoundEffect generator.
type SoundEffectOption func(*soundEffectOptions)

type soundEffectOptions struct {
	httpClient *httpclient.Client
}

// WithSoundEffectClient replaces the REST client, mainly for tests.
func WithSoundEffectClient(c *httpclient.Client) SoundEffectOption {
	return func(o *soundEffectOptions) { o.httpClient = c }
}

// NewSoundEffect creates the sound effect generator.
func NewSoundEffect(cfg config.ElevenLabs, opts ...SoundEffectOption) (*SoundEffect, error) {
	var o soundEffectOptions
	for _, opt := range opts {
		opt(&o)
	}
	c, err := newClient(cfg, o.httpClient)
	if err != nil {
		return nil, err
	}
	return &SoundEffect{client: c}, nil
}

// Capability implements media.Generator.
func (s *SoundEffect) Capability() media.Capability { return media.CapabilityAudio }

// Validate implements media.Generator.
func (s *SoundEffect) Validate(req *media.Request) error {
	if req.Prompt == "" {
		return media.InvalidOptionf("sound description must not be empty")
	}
	normalized, err := soundEffectSpec.Normalize(req.Options)
	if err != nil {
		return err
	}
	req.Options = normalized
	return nil
}

// Submit implements media.Generator.
func (s *SoundEffect) Submit(ctx context.Context, req *media.Request) (*media.Submission, error) {
	body := map[string]any{
		"text":             req.Prompt,
		"model_id":         req.Options.String("model"),
		"prompt_influence": req.Options.Float("prompt_influence"),
		"loop":             req.Options.Bool("loop"),
	}
	if req.Options.Has("duration") {
		body["duration_seconds"] = req.Options.Float("duration")
	}
	format := req.Options.String("format")
	path := fmt.Sprintf("/v1/sound-generation?output_format=%s", url.QueryEscape(format))
	data, _, err := s.client.http.PostBinary(ctx, path, body)
	if err != nil {
		return nil, err
	}
	return &media.Submission{Result: &media.Result{
		Outputs:     []media.Output{{Data: data, MIMEType: formatMIME(format), Extension: formatExt(format)}},
		DefaultName: "generated_sound",
	}}, nil
}
