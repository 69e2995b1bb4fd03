//
// Tencent is pleased to support the open source community by making trpc-genmedia-go available.
//
// Copyright (C) 2026 Tencent.  All rights reserved.
//
// trpc-genmedia-go is licensed under the Apache License Version 2.0.
//
//

package dashscope

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-genmedia-go/config"
	"trpc.group/trpc-go/trpc-genmedia-go/media"
)

// realtimeServer runs a WebSocket endpoint that records incoming events and
// plays back a scripted response after the commit arrives.
func realtimeServer(t *testing.T, respond func(conn *websocket.Conn), received *[]event) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		for {
			var ev event
			if err := conn.ReadJSON(&ev); err != nil {
				return
			}
			*received = append(*received, ev)
			if ev.Type == "input_text_buffer.commit" {
				respond(conn)
				return
			}
		}
	}))
}

func newRealtimeSpeech(t *testing.T, srv *httptest.Server) *Speech {
	t.Helper()
	s, err := NewSpeech(config.DashScope{
		APIKey:      "test-key",
		RealtimeURL: "ws" + strings.TrimPrefix(srv.URL, "http"),
	})
	require.NoError(t, err)
	return s
}

func TestSpeechValidateFillsDefaults(t *testing.T) {
	s, err := NewSpeech(config.DashScope{APIKey: "k"})
	require.NoError(t, err)
	req := &media.Request{Prompt: "你好"}
	require.NoError(t, s.Validate(req))
	assert.Equal(t, "qwen3-tts-flash-realtime", req.Options.String("model"))
	assert.Equal(t, "Cherry", req.Options.String("voice"))
	assert.Equal(t, "mp3", req.Options.String("format"))
	assert.Equal(t, 24000, req.Options.Int("sample_rate"))
	assert.Equal(t, 50, req.Options.Int("volume"))
	assert.Equal(t, 1.0, req.Options.Float("speed"))
}

func TestSpeechValidateBounds(t *testing.T) {
	s, err := NewSpeech(config.DashScope{APIKey: "k"})
	require.NoError(t, err)
	req := &media.Request{Prompt: "x", Options: media.Options{"speed": 2.5}}
	assert.ErrorIs(t, s.Validate(req), media.ErrInvalidOption)

	req = &media.Request{Prompt: "x", Options: media.Options{"sample_rate": 11025}}
	assert.ErrorIs(t, s.Validate(req), media.ErrInvalidOption)
}

func TestSpeechSubmitSessionFlow(t *testing.T) {
	var received []event
	srv := realtimeServer(t, func(conn *websocket.Conn) {
		conn.WriteJSON(event{Type: "response.audio.delta",
			Delta: base64.StdEncoding.EncodeToString([]byte("first-"))})
		conn.WriteJSON(event{Type: "response.audio.delta",
			Delta: base64.StdEncoding.EncodeToString([]byte("second"))})
		conn.WriteJSON(event{Type: "response.done"})
	}, &received)
	defer srv.Close()

	s := newRealtimeSpeech(t, srv)
	req := &media.Request{Prompt: "你好世界", Options: media.Options{"voice": "Serena", "format": "wav"}}
	require.NoError(t, s.Validate(req))
	sub, err := s.Submit(context.Background(), req)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(received), 3)
	assert.Equal(t, "session.update", received[0].Type)
	assert.Equal(t, "commit", received[0].Session["mode"])
	assert.Equal(t, "Serena", received[0].Session["voice"])
	assert.Equal(t, "wav", received[0].Session["response_format"])
	assert.Equal(t, float64(24000), received[0].Session["sample_rate"])
	assert.Equal(t, "input_text_buffer.append", received[1].Type)
	assert.Equal(t, "你好世界", received[1].Text)
	assert.Equal(t, "input_text_buffer.commit", received[2].Type)

	require.Len(t, sub.Result.Outputs, 1)
	assert.Equal(t, []byte("first-second"), sub.Result.Outputs[0].Data)
	assert.Equal(t, "wav", sub.Result.Outputs[0].Extension)
	assert.Equal(t, "tts_output", sub.Result.DefaultName)
}

func TestSpeechSubmitErrorEventFails(t *testing.T) {
	var received []event
	srv := realtimeServer(t, func(conn *websocket.Conn) {
		conn.WriteJSON(map[string]any{"type": "error", "error": map[string]string{"message": "voice not found"}})
	}, &received)
	defer srv.Close()

	s := newRealtimeSpeech(t, srv)
	req := &media.Request{Prompt: "x"}
	require.NoError(t, s.Validate(req))
	_, err := s.Submit(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "voice not found")
}

func TestSpeechSubmitEmptyAudioIsTransport(t *testing.T) {
	var received []event
	srv := realtimeServer(t, func(conn *websocket.Conn) {
		conn.WriteJSON(event{Type: "response.done"})
	}, &received)
	defer srv.Close()

	s := newRealtimeSpeech(t, srv)
	req := &media.Request{Prompt: "x"}
	require.NoError(t, s.Validate(req))
	_, err := s.Submit(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, media.ErrTransport)
}

func TestNewSpeechRequiresCredentials(t *testing.T) {
	_, err := NewSpeech(config.DashScope{})
	require.Error(t, err)
	assert.ErrorIs(t, err, media.ErrMissingCredential)
}
