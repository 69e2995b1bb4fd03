//
// Tencent is pleased to support the open source community by making trpc-genmedia-go available.
//
// Copyright (C) 2026 Tencent.  All rights reserved.
//
// trpc-genmedia-go is licensed under the Apache License Version 2.0.
//
//

// Package media defines the core types shared by all generation providers:
// requests, options, option tables, jobs, results and the error taxonomy.
package media

// Capability is a content-generation category.
type Capability string

const (
	// CapabilityImage is still-image generation and editing.
	CapabilityImage Capability = "image"
	// CapabilityVideo is video generation.
	CapabilityVideo Capability = "video"
	// CapabilityAudio is sound-effect generation.
	CapabilityAudio Capability = "audio"
	// CapabilitySpeech is text-to-speech synthesis.
	CapabilitySpeech Capability = "speech"
	// CapabilityMusic is music generation.
	CapabilityMusic Capability = "music"
	// CapabilityModel3D is 3D model generation.
	CapabilityModel3D Capability = "model3d"
	// CapabilityVoice is custom-voice management (clone, design, list, delete).
	CapabilityVoice Capability = "voice"
)

// String implements fmt.Stringer.
func (c Capability) String() string { return string(c) }
