//
// Tencent is pleased to support the open source community by making trpc-genmedia-go available.
//
// Copyright (C) 2026 Tencent.  All rights reserved.
//
// trpc-genmedia-go is licensed under the Apache License Version 2.0.
//
//

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearProviderEnv blanks the variables Load reads so leaked CI values cannot
// influence assertions.
func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GOOGLE_CLOUD_API_KEY", "USE_VERTEX_AI", "GOOGLE_CLOUD_PROJECT", "GOOGLE_CLOUD_LOCATION",
		"OPENAI_API_KEY", "OPENAI_API_BASE", "USE_AZURE_OPENAI", "AZURE_OPENAI_API_VERSION",
		"ELEVENLABS_API_KEY", "DASHSCOPE_API_KEY", "TRIPO_API_KEY",
		"GENMEDIA_COS_BUCKET_URL", "TCOS_SECRETID", "TCOS_SECRETKEY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearProviderEnv(t)
	cfg, err := load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "us-central1", cfg.Google.Location)
	assert.False(t, cfg.Google.UseVertexAI)
	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAI.BaseURL)
	assert.Equal(t, "2025-04-01-preview", cfg.OpenAI.AzureAPIVersion)
	assert.Equal(t, "https://api.elevenlabs.io", cfg.ElevenLabs.BaseURL)
	assert.Equal(t, "wss://dashscope.aliyuncs.com/api-ws/v1/realtime", cfg.DashScope.RealtimeURL)
	assert.Equal(t, "https://api.tripo3d.ai", cfg.Tripo.BaseURL)

	assert.Equal(t, 5*time.Second, cfg.Poll.Interval)
	assert.Equal(t, 10*time.Minute, cfg.Poll.Timeout)
	assert.Equal(t, 3, cfg.Poll.MaxFailures)

	assert.False(t, cfg.COS.Enabled)
	assert.Equal(t, "genmedia", cfg.COS.Prefix)
}

func TestLoadReadsEnvironment(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("GOOGLE_CLOUD_API_KEY", "g-key")
	t.Setenv("USE_VERTEX_AI", "TRUE")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "my-project")
	t.Setenv("GOOGLE_CLOUD_LOCATION", "europe-west4")
	t.Setenv("OPENAI_API_KEY", "oa-key")
	t.Setenv("ELEVENLABS_API_KEY", "el-key")
	t.Setenv("GENMEDIA_COS_BUCKET_URL", "https://bucket-1250000000.cos.ap-guangzhou.myqcloud.com")

	cfg, err := load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "g-key", cfg.Google.APIKey)
	assert.True(t, cfg.Google.UseVertexAI)
	assert.Equal(t, "my-project", cfg.Google.Project)
	assert.Equal(t, "europe-west4", cfg.Google.Location)
	assert.Equal(t, "oa-key", cfg.OpenAI.APIKey)
	assert.Equal(t, "el-key", cfg.ElevenLabs.APIKey)
	// A bucket URL from the environment enables the mirror.
	assert.True(t, cfg.COS.Enabled)
}

func TestLoadAppliesYAMLOverlay(t *testing.T) {
	clearProviderEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "genmedia.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
poll:
  interval: 2s
  timeout: 3m
  max_failures: 5
elevenlabs:
  base_url: https://proxy.example.com
cos:
  bucket_url: https://bucket.example.com
  prefix: renders
`), 0o644))

	cfg, err := load(path)
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.Poll.Interval)
	assert.Equal(t, 3*time.Minute, cfg.Poll.Timeout)
	assert.Equal(t, 5, cfg.Poll.MaxFailures)
	assert.Equal(t, "https://proxy.example.com", cfg.ElevenLabs.BaseURL)
	assert.True(t, cfg.COS.Enabled)
	assert.Equal(t, "https://bucket.example.com", cfg.COS.BucketURL)
	assert.Equal(t, "renders", cfg.COS.Prefix)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	clearProviderEnv(t)
	path := filepath.Join(t.TempDir(), "genmedia.yaml")
	require.NoError(t, os.WriteFile(path, []byte("poll: [broken"), 0o644))
	_, err := load(path)
	require.Error(t, err)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	clearProviderEnv(t)
	path := filepath.Join(t.TempDir(), "genmedia.yaml")
	require.NoError(t, os.WriteFile(path, []byte("poll:\n  interval: soon\n"), 0o644))
	_, err := load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "poll.interval")
}
