//
// Tencent is pleased to support the open source community by making trpc-genmedia-go available.
//
// Copyright (C) 2026 Tencent.  All rights reserved.
//
// trpc-genmedia-go is licensed under the Apache License Version 2.0.
//
//

// Package provider provides a unified interface for constructing
// media.Generator instances from different providers.
package provider

import (
	"context"
	"fmt"
	"sync"

	"trpc.group/trpc-go/trpc-genmedia-go/config"
	"trpc.group/trpc-go/trpc-genmedia-go/internal/poll"
	"trpc.group/trpc-go/trpc-genmedia-go/media"
	"trpc.group/trpc-go/trpc-genmedia-go/media/dashscope"
	"trpc.group/trpc-go/trpc-genmedia-go/media/elevenlabs"
	"trpc.group/trpc-go/trpc-genmedia-go/media/gemini"
	"trpc.group/trpc-go/trpc-genmedia-go/media/gptimage"
	"trpc.group/trpc-go/trpc-genmedia-go/media/sora"
	"trpc.group/trpc-go/trpc-genmedia-go/media/tripo"
	"trpc.group/trpc-go/trpc-genmedia-go/media/veo"
)

func init() {
	Register("gemini", geminiProvider)
	Register("gpt-image", gptImageProvider)
	Register("veo", veoProvider)
	Register("sora", soraProvider)
	Register("elevenlabs-tts", elevenLabsTTSProvider)
	Register("elevenlabs-sfx", elevenLabsSFXProvider)
	Register("elevenlabs-music", elevenLabsMusicProvider)
	Register("dashscope-tts", dashScopeTTSProvider)
	Register("dashscope-voice-clone", dashScopeVoiceCloneProvider)
	Register("dashscope-voice-design", dashScopeVoiceDesignProvider)
	Register("tripo", tripoProvider)
}

// Provider builds a media.Generator instance from the process configuration.
type Provider func(ctx context.Context, cfg *config.Config) (media.Generator, error)

var (
	providersMu sync.RWMutex                // providersMu guards providers access.
	providers   = make(map[string]Provider) // providers stores provider name to provider mappings.
)

// Register registers a provider by name.
func Register(name string, provider Provider) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[name] = provider
}

// Get returns the provider by name or nil if not found.
func Get(name string) (Provider, bool) {
	providersMu.RLock()
	defer providersMu.RUnlock()
	provider, ok := providers[name]
	return provider, ok
}

// Generator constructs the named provider's generator.
func Generator(ctx context.Context, name string, cfg *config.Config) (media.Generator, error) {
	provider, ok := Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", name)
	}
	return provider(ctx, cfg)
}

func geminiProvider(ctx context.Context, cfg *config.Config) (media.Generator, error) {
	return gemini.New(ctx, cfg.Google)
}

func gptImageProvider(_ context.Context, cfg *config.Config) (media.Generator, error) {
	return gptimage.New(cfg.OpenAI)
}

func veoProvider(ctx context.Context, cfg *config.Config) (media.Generator, error) {
	return veo.New(ctx, cfg.Google)
}

func soraProvider(_ context.Context, cfg *config.Config) (media.Generator, error) {
	return sora.New(cfg.OpenAI)
}

func elevenLabsTTSProvider(_ context.Context, cfg *config.Config) (media.Generator, error) {
	return elevenlabs.NewSpeech(cfg.ElevenLabs)
}

func elevenLabsSFXProvider(_ context.Context, cfg *config.Config) (media.Generator, error) {
	return elevenlabs.NewSoundEffect(cfg.ElevenLabs)
}

func elevenLabsMusicProvider(_ context.Context, cfg *config.Config) (media.Generator, error) {
	return elevenlabs.NewMusic(cfg.ElevenLabs)
}

func dashScopeTTSProvider(_ context.Context, cfg *config.Config) (media.Generator, error) {
	return dashscope.NewSpeech(cfg.DashScope)
}

func dashScopeVoiceCloneProvider(_ context.Context, cfg *config.Config) (media.Generator, error) {
	return dashscope.NewVoiceClone(cfg.DashScope)
}

func dashScopeVoiceDesignProvider(_ context.Context, cfg *config.Config) (media.Generator, error) {
	return dashscope.NewVoiceDesign(cfg.DashScope)
}

func tripoProvider(_ context.Context, cfg *config.Config) (media.Generator, error) {
	return tripo.New(cfg.Tripo, tripo.WithPollConfig(poll.Config{
		Interval:    cfg.Poll.Interval,
		Timeout:     cfg.Poll.Timeout,
		MaxFailures: cfg.Poll.MaxFailures,
	}))
}
