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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"trpc.group/trpc-go/trpc-genmedia-go/config"
	"trpc.group/trpc-go/trpc-genmedia-go/internal/fileutil"
	"trpc.group/trpc-go/trpc-genmedia-go/internal/httpclient"
	"trpc.group/trpc-go/trpc-genmedia-go/media"
)

const (
	customizationPath = "/api/v1/services/audio/tts/customization"
	maxAudioBytes     = 10 * 1024 * 1024
)

var languages = []string{"zh", "en", "de", "it", "pt", "es", "ja", "ko", "fr", "ru"}

// cloneAudioMIME maps the accepted enrollment audio extensions.
var cloneAudioMIME = map[string]string{
	".wav": "audio/wav",
	".mp3": "audio/mpeg",
	".m4a": "audio/mp4",
}

// customizationRequest is the envelope of the TTS customization endpoint.
type customizationRequest struct {
	Model      string         `json:"model"`
	Input      map[string]any `json:"input"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

type customizationResponse struct {
	Output struct {
		Voice        string           `json:"voice"`
		TargetModel  string           `json:"target_model"`
		VoiceList    []map[string]any `json:"voice_list"`
		TotalCount   int              `json:"total_count"`
		PreviewAudio *struct {
			Data string `json:"data"`
		} `json:"preview_audio"`
	} `json:"output"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newCustomizationClient(cfg config.DashScope, override *httpclient.Client) (*httpclient.Client, error) {
	if override != nil {
		return override, nil
	}
	if cfg.APIKey == "" {
		return nil, media.MissingCredentialf("DASHSCOPE_API_KEY is not set")
	}
	return httpclient.New(
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithBearer(cfg.APIKey),
	), nil
}

// validName reports whether a preferred voice name fits the provider rules:
// at most 16 characters, letters, digits and underscores only.
func validName(name string) bool {
	if name == "" || len(name) > 16 {
		return false
	}
	for _, r := range name {
		ok := r == '_' ||
			(r >= '0' && r <= '9') ||
			(r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z')
		if !ok {
			return false
		}
	}
	return true
}

// formatVoiceList renders the list action response as one voice per line.
func formatVoiceList(resp *customizationResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d voice(s)", resp.Output.TotalCount)
	for _, v := range resp.Output.VoiceList {
		voice, _ := v["voice"].(string)
		target, _ := v["target_model"].(string)
		fmt.Fprintf(&b, "\n%s\t%s", voice, target)
	}
	return b.String()
}

// VoiceClone implements media.Generator for DashScope voice enrollment:
// creating a custom voice from a reference recording plus the list, query and
// delete management actions.
type VoiceClone struct {
	client *httpclient.Client
}

// VoiceCloneOption configures the VoiceClone generator.
type VoiceCloneOption func(*voiceOptions)

type voiceOptions struct {
	httpClient *httpclient.Client
}

// WithVoiceCloneClient replaces the REST client, mainly for tests.
func WithVoiceCloneClient(c *httpclient.Client) VoiceCloneOption {
	return func(o *voiceOptions) { o.httpClient = c }
}

// NewVoiceClone creates the voice clone generator.
func NewVoiceClone(cfg config.DashScope, opts ...VoiceCloneOption) (*VoiceClone, error) {
	var o voiceOptions
	for _, opt := range opts {
		opt(&o)
	}
	client, err := newCustomizationClient(cfg, o.httpClient)
	if err != nil {
		return nil, err
	}
	return &VoiceClone{client: client}, nil
}

var cloneSpec = &media.OptionSpec{
	Fields: map[string]media.Field{
		"action": {
			Kind:    media.KindString,
			Enum:    []string{"create", "list", "query", "delete"},
			Default: "create",
		},
		"target_model": {
			Kind:    media.KindString,
			Enum:    []string{"qwen3-tts-vc-realtime-2026-01-15", "qwen3-tts-vc-realtime-2025-11-27"},
			Default: "qwen3-tts-vc-realtime-2026-01-15",
		},
		"name":       {Kind: media.KindString},
		"language":   {Kind: media.KindString, Enum: languages},
		"text":       {Kind: media.KindString},
		"voice":      {Kind: media.KindString},
		"page_index": {Kind: media.KindInt, Range: &media.Range{Min: 0, Max: 0}},
		"page_size":  {Kind: media.KindInt, Range: &media.Range{Min: 1, Max: 100}},
	},
}

// Capability implements media.Generator.
func (v *VoiceClone) Capability() media.Capability { return media.CapabilityVoice }

// Validate implements media.Generator. Per-action requirements: create needs
// one enrollment recording and a valid preferred name; query and delete need
// the voice identifier.
func (v *VoiceClone) Validate(req *media.Request) error {
	normalized, err := cloneSpec.Normalize(req.Options)
	if err != nil {
		return err
	}
	switch normalized.String("action") {
	case "create":
		if len(req.InputPaths) != 1 {
			return media.InvalidOptionf("voice clone create requires exactly one audio file, got %d", len(req.InputPaths))
		}
		ext := strings.ToLower(filepath.Ext(req.InputPaths[0]))
		if _, ok := cloneAudioMIME[ext]; !ok {
			return media.InvalidOptionf("unsupported audio format %q, supported: wav, mp3, m4a", ext)
		}
		if info, err := os.Stat(req.InputPaths[0]); err == nil && info.Size() > maxAudioBytes {
			return media.InvalidOptionf("audio file too large: %d bytes, maximum %d", info.Size(), maxAudioBytes)
		}
		if !validName(normalized.String("name")) {
			return media.InvalidOptionf("name must be 1-16 characters of letters, digits or underscores")
		}
	case "query", "delete":
		if normalized.String("voice") == "" {
			return media.InvalidOptionf("voice is required for %s", normalized.String("action"))
		}
	}
	req.Options = normalized
	return nil
}

// Submit implements media.Generator.
func (v *VoiceClone) Submit(ctx context.Context, req *media.Request) (*media.Submission, error) {
	input := map[string]any{"action": req.Options.String("action")}
	switch req.Options.String("action") {
	case "create":
		data, err := fileutil.ReadInput(req.InputPaths[0])
		if err != nil {
			return nil, err
		}
		mime := cloneAudioMIME[strings.ToLower(filepath.Ext(req.InputPaths[0]))]
		input["target_model"] = req.Options.String("target_model")
		input["preferred_name"] = req.Options.String("name")
		input["audio"] = map[string]any{
			"data": fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data)),
		}
		if lang := req.Options.String("language"); lang != "" {
			input["language"] = lang
		}
		if text := req.Options.String("text"); text != "" {
			input["text"] = text
		}
	case "list":
		input["page_index"] = req.Options.Int("page_index")
		pageSize := req.Options.Int("page_size")
		if pageSize == 0 {
			pageSize = 10
		}
		input["page_size"] = pageSize
	case "query", "delete":
		input["voice"] = req.Options.String("voice")
	}

	var resp customizationResponse
	err := v.client.PostJSON(ctx, customizationPath, customizationRequest{
		Model: "qwen-voice-enrollment",
		Input: input,
	}, &resp)
	if err != nil {
		return nil, err
	}

	result := &media.Result{}
	switch req.Options.String("action") {
	case "create":
		if resp.Output.Voice == "" {
			return nil, fmt.Errorf("provider returned no voice name: %s", resp.Message)
		}
		result.Detail = fmt.Sprintf("voice created: %s", resp.Output.Voice)
	case "list":
		result.Detail = formatVoiceList(&resp)
	case "query":
		result.Detail = fmt.Sprintf("voice: %s target_model: %s", resp.Output.Voice, resp.Output.TargetModel)
	case "delete":
		result.Detail = fmt.Sprintf("voice deleted: %s", req.Options.String("voice"))
	}
	return &media.Submission{Result: result}, nil
}

// VoiceDesign implements media.Generator for DashScope voice design: a voice
// synthesized from a text description, returning a preview recording.
type VoiceDesign struct {
	client *httpclient.Client
}

// VoiceDesignOption configures the VoiceDesign generator.
type VoiceDesignOption func(*voiceOptions)

// WithVoiceDesignClient replaces the REST client, mainly for tests.
func WithVoiceDesignClient(c *httpclient.Client) VoiceDesignOption {
	return func(o *voiceOptions) { o.httpClient = c }
}

// NewVoiceDesign creates the voice design generator.
func NewVoiceDesign(cfg config.DashScope, opts ...VoiceDesignOption) (*VoiceDesign, error) {
	var o voiceOptions
	for _, opt := range opts {
		opt(&o)
	}
	client, err := newCustomizationClient(cfg, o.httpClient)
	if err != nil {
		return nil, err
	}
	return &VoiceDesign{client: client}, nil
}

var designSpec = &media.OptionSpec{
	Fields: map[string]media.Field{
		"action": {
			Kind:    media.KindString,
			Enum:    []string{"create", "list", "query", "delete"},
			Default: "create",
		},
		"target_model": {
			Kind:    media.KindString,
			Enum:    []string{"qwen3-tts-vd-realtime-2025-12-16"},
			Default: "qwen3-tts-vd-realtime-2025-12-16",
		},
		"preview_text": {Kind: media.KindString},
		"language":     {Kind: media.KindString, Enum: languages, Default: "zh"},
		"sample_rate":  {Kind: media.KindInt, IntEnum: []int{8000, 16000, 24000, 48000}, Default: 24000},
		"format":       {Kind: media.KindString, Enum: []string{"mp3", "wav", "pcm", "opus"}, Default: "wav"},
		"name":         {Kind: media.KindString},
		"voice":        {Kind: media.KindString},
		"page_index":   {Kind: media.KindInt, Range: &media.Range{Min: 0, Max: 0}},
		"page_size":    {Kind: media.KindInt, Range: &media.Range{Min: 1, Max: 100}},
	},
}

// Capability implements media.Generator.
func (v *VoiceDesign) Capability() media.Capability { return media.CapabilityVoice }

// Validate implements media.Generator. The prompt is the voice description
// (at most 2048 characters); preview text is capped at 1024.
func (v *VoiceDesign) Validate(req *media.Request) error {
	normalized, err := designSpec.Normalize(req.Options)
	if err != nil {
		return err
	}
	switch normalized.String("action") {
	case "create":
		if req.Prompt == "" {
			return media.InvalidOptionf("voice description must not be empty")
		}
		if len(req.Prompt) > 2048 {
			return media.InvalidOptionf("voice description too long: %d characters, maximum 2048", len(req.Prompt))
		}
		preview := normalized.String("preview_text")
		if preview == "" {
			return media.InvalidOptionf("preview_text is required for create")
		}
		if len(preview) > 1024 {
			return media.InvalidOptionf("preview_text too long: %d characters, maximum 1024", len(preview))
		}
		if name := normalized.String("name"); name != "" && !validName(name) {
			return media.InvalidOptionf("name must be 1-16 characters of letters, digits or underscores")
		}
	case "query", "delete":
		if normalized.String("voice") == "" {
			return media.InvalidOptionf("voice is required for %s", normalized.String("action"))
		}
	}
	req.Options = normalized
	return nil
}

// Submit implements media.Generator. The create action returns the new voice
// name plus a preview recording which is persisted as <voice>_preview.<ext>.
func (v *VoiceDesign) Submit(ctx context.Context, req *media.Request) (*media.Submission, error) {
	action := req.Options.String("action")
	reqBody := customizationRequest{Model: "qwen-voice-design", Input: map[string]any{"action": action}}
	switch action {
	case "create":
		reqBody.Input["target_model"] = req.Options.String("target_model")
		reqBody.Input["voice_prompt"] = req.Prompt
		reqBody.Input["preview_text"] = req.Options.String("preview_text")
		reqBody.Input["language"] = req.Options.String("language")
		if name := req.Options.String("name"); name != "" {
			reqBody.Input["preferred_name"] = name
		}
		reqBody.Parameters = map[string]any{
			"sample_rate":     req.Options.Int("sample_rate"),
			"response_format": req.Options.String("format"),
		}
	case "list":
		reqBody.Input["page_index"] = req.Options.Int("page_index")
		pageSize := req.Options.Int("page_size")
		if pageSize == 0 {
			pageSize = 10
		}
		reqBody.Input["page_size"] = pageSize
	case "query", "delete":
		reqBody.Input["voice"] = req.Options.String("voice")
	}

	var resp customizationResponse
	if err := v.client.PostJSON(ctx, customizationPath, reqBody, &resp); err != nil {
		return nil, err
	}

	result := &media.Result{}
	switch action {
	case "create":
		if resp.Output.Voice == "" {
			return nil, fmt.Errorf("provider returned no voice name: %s", resp.Message)
		}
		result.Detail = fmt.Sprintf("voice created: %s", resp.Output.Voice)
		if resp.Output.PreviewAudio != nil && resp.Output.PreviewAudio.Data != "" {
			audio, err := base64.StdEncoding.DecodeString(resp.Output.PreviewAudio.Data)
			if err != nil {
				return nil, media.Transportf("decode preview audio: %v", err)
			}
			format := req.Options.String("format")
			result.Outputs = []media.Output{{Data: audio, MIMEType: formatMIME(format), Extension: format}}
			result.DefaultName = resp.Output.Voice + "_preview"
		}
	case "list":
		result.Detail = formatVoiceList(&resp)
	case "query":
		result.Detail = fmt.Sprintf("voice: %s target_model: %s", resp.Output.Voice, resp.Output.TargetModel)
	case "delete":
		result.Detail = fmt.Sprintf("voice deleted: %s", req.Options.String("voice"))
	}
	return &media.Submission{Result: result}, nil
}
