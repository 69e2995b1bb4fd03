//
// Tencent is pleased to support the open source community by making trpc-genmedia-go available.
//
// Copyright (C) 2026 Tencent.  All rights reserved.
//
// trpc-genmedia-go is licensed under the Apache License Version 2.0.
//
//

package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-genmedia-go/config"
	"trpc.group/trpc-go/trpc-genmedia-go/media"
)

func TestBuiltinProvidersRegistered(t *testing.T) {
	names := []string{
		"gemini", "gpt-image", "veo", "sora",
		"elevenlabs-tts", "elevenlabs-sfx", "elevenlabs-music",
		"dashscope-tts", "dashscope-voice-clone", "dashscope-voice-design",
		"tripo",
	}
	for _, name := range names {
		_, ok := Get(name)
		assert.True(t, ok, "provider %s not registered", name)
	}
}

func TestGeneratorUnknownProvider(t *testing.T) {
	_, err := Generator(context.Background(), "no-such-provider", &config.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-provider")
}

func TestGeneratorMissingCredential(t *testing.T) {
	// With an empty config every builtin fails the credential check before
	// any client is constructed.
	_, err := Generator(context.Background(), "tripo", &config.Config{})
	require.Error(t, err)
	assert.ErrorIs(t, err, media.ErrMissingCredential)
}

func TestRegisterOverride(t *testing.T) {
	called := false
	Register("test-override", func(context.Context, *config.Config) (media.Generator, error) {
		called = true
		return nil, nil
	})
	_, err := Generator(context.Background(), "test-override", &config.Config{})
	require.NoError(t, err)
	assert.True(t, called)
}
