//
// Tencent is pleased to support the open source community by making trpc-genmedia-go available.
//
// Copyright (C) 2026 Tencent.  All rights reserved.
//
// trpc-genmedia-go is licensed under the Apache License Version 2.0.
//
//

// Package config loads process configuration: provider credentials from the
// environment (optionally seeded from a dotenv file) and tuning knobs from an
// optional YAML file. The result is an explicit object handed to adapters at
// startup; nothing reads the environment after Load returns.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultYAMLFile is the optional tuning file looked up in the working
// directory.
const DefaultYAMLFile = "genmedia.yaml"

// dotenvFiles are loaded in order before the environment is read. Values
// already present in the real environment win.
var dotenvFiles = []string{".genix.env", ".env"}

// Google holds Gemini / Veo credentials. Either an API key or Vertex AI
// project coordinates.
type Google struct {
	APIKey      string
	UseVertexAI bool
	Project     string
	Location    string
}

// OpenAI holds GPT Image / Sora credentials, with optional Azure variant.
type OpenAI struct {
	APIKey          string
	BaseURL         string
	UseAzure        bool
	AzureAPIVersion string
}

// ElevenLabs holds the ElevenLabs credential and endpoint override.
type ElevenLabs struct {
	APIKey  string
	BaseURL string `yaml:"base_url"`
}

// DashScope holds the DashScope credential and endpoint overrides.
type DashScope struct {
	APIKey      string
	BaseURL     string `yaml:"base_url"`
	RealtimeURL string `yaml:"realtime_url"`
}

// Tripo holds the Tripo credential and endpoint override.
type Tripo struct {
	APIKey  string
	BaseURL string `yaml:"base_url"`
}

// Poll tunes the asynchronous job loop.
type Poll struct {
	Interval    time.Duration
	Timeout     time.Duration
	MaxFailures int
}

// COS configures the optional artifact mirror.
type COS struct {
	Enabled   bool
	BucketURL string
	SecretID  string
	SecretKey string
	Prefix    string
}

// Config is the complete process configuration.
type Config struct {
	Google     Google
	OpenAI     OpenAI
	ElevenLabs ElevenLabs
	DashScope  DashScope
	Tripo      Tripo
	Poll       Poll
	COS        COS
}

// yamlConfig mirrors the optional tuning file. Durations are Go duration
// strings ("5s", "10m").
type yamlConfig struct {
	Poll struct {
		Interval    string `yaml:"interval"`
		Timeout     string `yaml:"timeout"`
		MaxFailures int    `yaml:"max_failures"`
	} `yaml:"poll"`
	OpenAI struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"openai"`
	ElevenLabs struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"elevenlabs"`
	DashScope struct {
		BaseURL     string `yaml:"base_url"`
		RealtimeURL string `yaml:"realtime_url"`
	} `yaml:"dashscope"`
	Tripo struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"tripo"`
	COS struct {
		Enabled   bool   `yaml:"enabled"`
		BucketURL string `yaml:"bucket_url"`
		Prefix    string `yaml:"prefix"`
	} `yaml:"cos"`
}

// Load builds the configuration: dotenv files seed the environment, the
// optional YAML file supplies tuning, and environment variables supply
// credentials and mode flags.
func Load() (*Config, error) {
	return load(DefaultYAMLFile)
}

func load(yamlFile string) (*Config, error) {
	for _, f := range dotenvFiles {
		// Missing dotenv files are fine; existing env always wins.
		_ = godotenv.Load(f)
	}

	cfg := &Config{
		Google: Google{
			APIKey:      os.Getenv("GOOGLE_CLOUD_API_KEY"),
			UseVertexAI: envBool("USE_VERTEX_AI"),
			Project:     os.Getenv("GOOGLE_CLOUD_PROJECT"),
			Location:    envOr("GOOGLE_CLOUD_LOCATION", "us-central1"),
		},
		OpenAI: OpenAI{
			APIKey:          os.Getenv("OPENAI_API_KEY"),
			BaseURL:         envOr("OPENAI_API_BASE", "https://api.openai.com/v1"),
			UseAzure:        envBool("USE_AZURE_OPENAI"),
			AzureAPIVersion: envOr("AZURE_OPENAI_API_VERSION", "2025-04-01-preview"),
		},
		ElevenLabs: ElevenLabs{
			APIKey:  os.Getenv("ELEVENLABS_API_KEY"),
			BaseURL: "https://api.elevenlabs.io",
		},
		DashScope: DashScope{
			APIKey:      os.Getenv("DASHSCOPE_API_KEY"),
			BaseURL:     "https://dashscope.aliyuncs.com",
			RealtimeURL: "wss://dashscope.aliyuncs.com/api-ws/v1/realtime",
		},
		Tripo: Tripo{
			APIKey:  os.Getenv("TRIPO_API_KEY"),
			BaseURL: "https://api.tripo3d.ai",
		},
		Poll: Poll{
			Interval:    5 * time.Second,
			Timeout:     10 * time.Minute,
			MaxFailures: 3,
		},
		COS: COS{
			BucketURL: os.Getenv("GENMEDIA_COS_BUCKET_URL"),
			SecretID:  os.Getenv("TCOS_SECRETID"),
			SecretKey: os.Getenv("TCOS_SECRETKEY"),
			Prefix:    "genmedia",
		},
	}
	cfg.COS.Enabled = cfg.COS.BucketURL != ""

	if err := applyYAML(cfg, yamlFile); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if yc.Poll.Interval != "" {
		d, err := time.ParseDuration(yc.Poll.Interval)
		if err != nil {
			return fmt.Errorf("parse poll.interval: %w", err)
		}
		cfg.Poll.Interval = d
	}
	if yc.Poll.Timeout != "" {
		d, err := time.ParseDuration(yc.Poll.Timeout)
		if err != nil {
			return fmt.Errorf("parse poll.timeout: %w", err)
		}
		cfg.Poll.Timeout = d
	}
	if yc.Poll.MaxFailures > 0 {
		cfg.Poll.MaxFailures = yc.Poll.MaxFailures
	}
	if yc.OpenAI.BaseURL != "" {
		cfg.OpenAI.BaseURL = yc.OpenAI.BaseURL
	}
	if yc.ElevenLabs.BaseURL != "" {
		cfg.ElevenLabs.BaseURL = yc.ElevenLabs.BaseURL
	}
	if yc.DashScope.BaseURL != "" {
		cfg.DashScope.BaseURL = yc.DashScope.BaseURL
	}
	if yc.DashScope.RealtimeURL != "" {
		cfg.DashScope.RealtimeURL = yc.DashScope.RealtimeURL
	}
	if yc.Tripo.BaseURL != "" {
		cfg.Tripo.BaseURL = yc.Tripo.BaseURL
	}
	if yc.COS.BucketURL != "" {
		cfg.COS.BucketURL = yc.COS.BucketURL
		cfg.COS.Enabled = true
	}
	if yc.COS.Prefix != "" {
		cfg.COS.Prefix = yc.COS.Prefix
	}
	if yc.COS.Enabled {
		cfg.COS.Enabled = true
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	return strings.EqualFold(os.Getenv(key), "true")
}
