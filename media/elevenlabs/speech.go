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
	"trpc.group/trpc-go/trpc-genmedia-go/log"
	"trpc.group/trpc-go/trpc-genmedia-go/media"
)

const (
	defaultVoiceID   = "21m00Tcm4TlvDq8ikWAM"
	defaultVoiceName = "Rachel"
)

// speechSpec is the documented option table for text to speech.
var speechSpec = &media.OptionSpec{
	Fields: map[string]media.Field{
		"model": {
			Kind:    media.KindString,
			Enum:    []string{"eleven_multilingual_v2", "eleven_v3", "eleven_flash_v2_5", "eleven_turbo_v2_5"},
			Default: "eleven_multilingual_v2",
		},
		"format": {
			Kind:    media.KindString,
			Enum:    outputFormats,
			Default: defaultFormat,
		},
		"voice":        {Kind: media.KindString},
		"voice_search": {Kind: media.KindString},
		"stability":    {Kind: media.KindFloat, Range: &media.Range{Min: 0, Max: 1}},
		"similarity":   {Kind: media.KindFloat, Range: &media.Range{Min: 0, Max: 1}},
		"speed":        {Kind: media.KindFloat, Range: &media.Range{Min: 0.7, Max: 1.2}},
	},
}

// Speech implements media.Generator for ElevenLabs text to speech.
type Speech struct {
	client *client
}

// SpeechOption configures the Speech generator.
type SpeechOption func(*speechOptions)

type speechOptions struct {
	httpClient *httpclient.Client
}

// WithSpeechClient replaces the REST client, mainly for tests.
func WithSpeechClient(c *httpclient.Client) SpeechOption {
	return func(o *speechOptions) { o.httpClient = c }
}

// NewSpeech creates the speech generator. The credential check runs before
// the REST client is constructed.
func NewSpeech(cfg config.ElevenLabs, opts ...SpeechOption) (*Speech, error) {
	var o speechOptions
	for _, opt := range opts {
		opt(&o)
	}
	c, err := newClient(cfg, o.httpClient)
	if err != nil {
		return nil, err
	}
	return &Speech{client: c}, nil
}

// Capability implements media.Generator.
func (s *Speech) Capability() media.Capability { return media.CapabilitySpeech }

// Validate implements media.Generator. For eleven_v3 the stability value is
// snapped to the nearest of 0.0, 0.5 and 1.0, the only values that model
// accepts.
func (s *Speech) Validate(req *media.Request) error {
	if req.Prompt == "" {
		return media.InvalidOptionf("text must not be empty")
	}
	normalized, err := speechSpec.Normalize(req.Options)
	if err != nil {
		return err
	}
	if normalized.String("model") == "eleven_v3" && normalized.Has("stability") {
		normalized["stability"] = snapStability(normalized.Float("stability"))
	}
	req.Options = normalized
	return nil
}

func snapStability(v float64) float64 {
	nearest, best := 0.0, v
	if best < 0 {
		best = -best
	}
	for _, candidate := range []float64{0.5, 1.0} {
		d := v - candidate
		if d < 0 {
			d = -d
		}
		if d < best {
			nearest, best = candidate, d
		}
	}
	return nearest
}

// Submit implements media.Generator. Voice resolution order: explicit voice
// ID, then search (own voices first, then the shared library), then the
// documented default voice.
func (s *Speech) Submit(ctx context.Context, req *media.Request) (*media.Submission, error) {
	voiceID, voiceName := defaultVoiceID, defaultVoiceName
	if v := req.Options.String("voice"); v != "" {
		voiceID, voiceName = v, v
	} else if query := req.Options.String("voice_search"); query != "" {
		id, name, err := s.searchVoice(ctx, query)
		if err != nil {
			return nil, err
		}
		if id != "" {
			voiceID, voiceName = id, name
		} else {
			log.Warnf("no voice found for %q, using default voice %s", query, defaultVoiceName)
		}
	}

	body := map[string]any{
		"text":     req.Prompt,
		"model_id": req.Options.String("model"),
	}
	if settings := voiceSettings(req.Options); settings != nil {
		body["voice_settings"] = settings
	}

	format := req.Options.String("format")
	path := fmt.Sprintf("/v1/text-to-speech/%s?output_format=%s", url.PathEscape(voiceID), url.QueryEscape(format))
	data, _, err := s.client.http.PostBinary(ctx, path, body)
	if err != nil {
		return nil, err
	}
	return &media.Submission{Result: &media.Result{
		Outputs:     []media.Output{{Data: data, MIMEType: formatMIME(format), Extension: formatExt(format)}},
		DefaultName: "generated_speech",
		Detail:      fmt.Sprintf("voice: %s (%s)", voiceName, voiceID),
	}}, nil
}

// voiceSettings builds the settings object when any tuning option was given.
// The provider requires all three fields once the object is present.
func voiceSettings(opts media.Options) map[string]any {
	if !opts.Has("stability") && !opts.Has("similarity") && !opts.Has("speed") {
		return nil
	}
	settings := map[string]any{
		"stability":        0.5,
		"similarity_boost": 0.75,
		"speed":            1.0,
	}
	if opts.Has("stability") {
		settings["stability"] = opts.Float("stability")
	}
	if opts.Has("similarity") {
		settings["similarity_boost"] = opts.Float("similarity")
	}
	if opts.Has("speed") {
		settings["speed"] = opts.Float("speed")
	}
	return settings
}

type voiceList struct {
	Voices []struct {
		VoiceID string `json:"voice_id"`
		Name    string `json:"name"`
	} `json:"voices"`
}

// searchVoice looks up a voice by free-text query, first among the account's
// own voices, then in the shared voice library.
func (s *Speech) searchVoice(ctx context.Context, query string) (id, name string, err error) {
	for _, path := range []string{"/v1/voices", "/v1/shared-voices"} {
		var list voiceList
		u := fmt.Sprintf("%s?search=%s&page_size=1", path, url.QueryEscape(query))
		if err := s.client.http.GetJSON(ctx, u, &list); err != nil {
			return "", "", err
		}
		if len(list.Voices) > 0 {
			return list.Voices[0].VoiceID, list.Voices[0].Name, nil
		}
	}
	return "", "", nil
}
