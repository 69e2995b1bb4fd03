//
// Tencent is pleased to support the open source community by making trpc-genmedia-go available.
//
// Copyright (C) 2026 Tencent.  All rights reserved.
//
// trpc-genmedia-go is licensed under the Apache License Version 2.0.
//
//

// Package dashscope generates speech through the DashScope Qwen TTS realtime
// WebSocket API and manages custom voices (clone and design) through the TTS
// customization REST endpoint.
package dashscope

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"trpc.group/trpc-go/trpc-genmedia-go/config"
	"trpc.group/trpc-go/trpc-genmedia-go/media"
)

const defaultSessionTimeout = 120 * time.Second

// speechSpec is the documented option table for realtime TTS.
var speechSpec = &media.OptionSpec{
	Fields: map[string]media.Field{
		"model": {
			Kind: media.KindString,
			Enum: []string{
				"qwen3-tts-flash-realtime",
				"qwen3-tts-flash-realtime-2025-11-27",
				"qwen-tts-realtime",
				"qwen-tts-realtime-latest",
				"qwen3-tts-vd-realtime-2025-12-16",
				"qwen3-tts-vc-realtime-2026-01-15",
				"qwen3-tts-vc-realtime-2025-11-27",
			},
			Default: "qwen3-tts-flash-realtime",
		},
		"voice":       {Kind: media.KindString, Default: "Cherry"},
		"format":      {Kind: media.KindString, Enum: []string{"pcm", "wav", "mp3", "opus"}, Default: "mp3"},
		"sample_rate": {Kind: media.KindInt, IntEnum: []int{8000, 16000, 22050, 24000, 44100, 48000}, Default: 24000},
		"volume":      {Kind: media.KindInt, Range: &media.Range{Min: 0, Max: 100}, Default: 50},
		"speed":       {Kind: media.KindFloat, Range: &media.Range{Min: 0.5, Max: 2.0}, Default: 1.0},
		"pitch":       {Kind: media.KindFloat, Range: &media.Range{Min: 0.5, Max: 2.0}, Default: 1.0},
	},
}

// Speech implements media.Generator for DashScope realtime TTS. One Submit is
// one WebSocket session: configure, append the text, commit, collect audio
// deltas until the response is done.
type Speech struct {
	realtimeURL string
	apiKey      string
	dialer      *websocket.Dialer
	timeout     time.Duration
}

// SpeechOption configures the Speech generator.
type SpeechOption func(*Speech)

// WithDialer replaces the WebSocket dialer, mainly for tests.
func WithDialer(d *websocket.Dialer) SpeechOption {
	return func(s *Speech) { s.dialer = d }
}

// WithSessionTimeout bounds one synthesis session.
func WithSessionTimeout(d time.Duration) SpeechOption {
	return func(s *Speech) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewSpeech creates the realtime TTS generator.
func NewSpeech(cfg config.DashScope, opts ...SpeechOption) (*Speech, error) {
	if cfg.APIKey == "" {
		return nil, media.MissingCredentialf("DASHSCOPE_API_KEY is not set")
	}
	s := &Speech{
		realtimeURL: cfg.RealtimeURL,
		apiKey:      cfg.APIKey,
		dialer:      websocket.DefaultDialer,
		timeout:     defaultSessionTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Capability implements media.Generator.
func (s *Speech) Capability() media.Capability { return media.CapabilitySpeech }

// Validate implements media.Generator.
func (s *Speech) Validate(req *media.Request) error {
	if req.Prompt == "" {
		return media.InvalidOptionf("text must not be empty")
	}
	normalized, err := speechSpec.Normalize(req.Options)
	if err != nil {
		return err
	}
	req.Options = normalized
	return nil
}

// event is one realtime protocol frame, sent or received.
type event struct {
	Type    string         `json:"type"`
	Session map[string]any `json:"session,omitempty"`
	Text    string         `json:"text,omitempty"`
	Delta   string         `json:"delta,omitempty"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Submit implements media.Generator.
func (s *Speech) Submit(ctx context.Context, req *media.Request) (*media.Submission, error) {
	u := fmt.Sprintf("%s?model=%s", s.realtimeURL, url.QueryEscape(req.Options.String("model")))
	header := http.Header{"Authorization": {"Bearer " + s.apiKey}}
	conn, resp, err := s.dialer.DialContext(ctx, u, header)
	if err != nil {
		if resp != nil {
			return nil, media.Transportf("dial realtime endpoint: %v (status %d)", err, resp.StatusCode)
		}
		return nil, media.Transportf("dial realtime endpoint: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(s.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetReadDeadline(deadline)
	_ = conn.SetWriteDeadline(deadline)

	setup := []event{
		{Type: "session.update", Session: map[string]any{
			"mode":            "commit",
			"voice":           req.Options.String("voice"),
			"response_format": req.Options.String("format"),
			"sample_rate":     req.Options.Int("sample_rate"),
			"volume":          req.Options.Int("volume"),
			"speech_rate":     req.Options.Float("speed"),
			"pitch_rate":      req.Options.Float("pitch"),
		}},
		{Type: "input_text_buffer.append", Text: req.Prompt},
		{Type: "input_text_buffer.commit"},
	}
	for _, ev := range setup {
		if err := conn.WriteJSON(ev); err != nil {
			return nil, media.Transportf("send %s: %v", ev.Type, err)
		}
	}

	audio, err := s.collect(conn)
	if err != nil {
		return nil, err
	}
	// Best effort; the audio is already complete at this point.
	_ = conn.WriteJSON(event{Type: "session.finish"})

	format := req.Options.String("format")
	return &media.Submission{Result: &media.Result{
		Outputs:     []media.Output{{Data: audio, MIMEType: formatMIME(format), Extension: format}},
		DefaultName: "tts_output",
	}}, nil
}

// collect reads protocol events until the response is complete, concatenating
// base64 audio deltas.
func (s *Speech) collect(conn *websocket.Conn) ([]byte, error) {
	var audio []byte
	for {
		var ev event
		if err := conn.ReadJSON(&ev); err != nil {
			return nil, media.Transportf("read realtime event: %v", err)
		}
		switch ev.Type {
		case "response.audio.delta":
			chunk, err := base64.StdEncoding.DecodeString(ev.Delta)
			if err != nil {
				return nil, media.Transportf("decode audio delta: %v", err)
			}
			audio = append(audio, chunk...)
		case "response.done", "session.finished":
			if len(audio) == 0 {
				return nil, media.Transportf("no audio data received")
			}
			return audio, nil
		case "error":
			msg := "unknown error"
			if ev.Error != nil && ev.Error.Message != "" {
				msg = ev.Error.Message
			}
			return nil, fmt.Errorf("realtime synthesis failed: %s", msg)
		}
	}
}

func formatMIME(format string) string {
	switch format {
	case "wav":
		return "audio/wav"
	case "mp3":
		return "audio/mpeg"
	case "opus":
		return "audio/opus"
	default:
		return "audio/pcm"
	}
}
