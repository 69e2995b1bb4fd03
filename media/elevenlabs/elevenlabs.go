//
// Tencent is pleased to support the open source community by making trpc-genmedia-go available.
//
// Copyright (C) 2026 Tencent.  All rights reserved.
//
// trpc-genmedia-go is licensed under the Apache License Version 2.0.
//
//

// Package elevenlabs generates speech, sound effects and music through the
// ElevenLabs REST API. All three endpoints stream audio bytes back
// synchronously and share the output-format family (mp3/pcm/opus).
package elevenlabs

import (
	"strings"

	"trpc.group/trpc-go/trpc-genmedia-go/config"
	"trpc.group/trpc-go/trpc-genmedia-go/internal/httpclient"
	"trpc.group/trpc-go/trpc-genmedia-go/media"
)

// outputFormats are the audio encodings accepted by every ElevenLabs
// endpoint. Music additionally accepts opus_48000_192.
var outputFormats = []string{
	"mp3_22050_32",
	"mp3_44100_64",
	"mp3_44100_128",
	"mp3_44100_192",
	"pcm_16000",
	"pcm_22050",
	"pcm_44100",
	"pcm_48000",
	"opus_48000_64",
	"opus_48000_128",
}

const defaultFormat = "mp3_44100_128"

// client wraps the shared REST transport with the xi-api-key header applied.
type client struct {
	http *httpclient.Client
}

func newClient(cfg config.ElevenLabs, override *httpclient.Client) (*client, error) {
	if override != nil {
		return &client{http: override}, nil
	}
	if cfg.APIKey == "" {
		return nil, media.MissingCredentialf("ELEVENLABS_API_KEY is not set")
	}
	return &client{http: httpclient.New(
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithHeader("xi-api-key", cfg.APIKey),
	)}, nil
}

// formatExt maps an output format onto the file extension it should be
// persisted with. Raw PCM is written with a wav extension, as the provider
// documents.
func formatExt(format string) string {
	switch {
	case strings.HasPrefix(format, "pcm"):
		return "wav"
	case strings.HasPrefix(format, "opus"):
		return "opus"
	default:
		return "mp3"
	}
}

func formatMIME(format string) string {
	switch formatExt(format) {
	case "wav":
		return "audio/wav"
	case "opus":
		return "audio/opus"
	default:
		return "audio/mpeg"
	}
}
