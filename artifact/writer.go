//
// Tencent is pleased to support the open source community by making trpc-genmedia-go available.
//
// Copyright (C) 2026 Tencent.  All rights reserved.
//
// trpc-genmedia-go is licensed under the Apache License Version 2.0.
//
//

package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"trpc.group/trpc-go/trpc-genmedia-go/media"
)

// Mirror receives a copy of every written artifact. Implementations upload to
// remote storage; writing locally never depends on the mirror succeeding.
type Mirror interface {
	// Save stores the artifact under the given object name.
	Save(ctx context.Context, name string, art *Artifact) error
}

// ResolvePath determines the final output path. The resolved format's
// extension (without leading dot) is authoritative: a caller-supplied
// extension that contradicts it is replaced, a missing one is appended, and
// an empty requested path falls back to defaultName plus the extension.
func ResolvePath(requested, defaultName, ext string) string {
	if requested == "" {
		return defaultName + "." + ext
	}
	current := strings.TrimPrefix(filepath.Ext(requested), ".")
	if strings.EqualFold(current, ext) {
		return requested
	}
	if current == "" {
		return requested + "." + ext
	}
	return strings.TrimSuffix(requested, filepath.Ext(requested)) + "." + ext
}

// Writer persists artifacts to the local filesystem. Each call creates
// exactly one file; overwriting an existing file is allowed and avoiding
// collisions is the caller's responsibility.
type Writer struct {
	mirror Mirror
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithMirror attaches a remote mirror to the writer.
func WithMirror(m Mirror) WriterOption {
	return func(w *Writer) { w.mirror = m }
}

// NewWriter creates a Writer with the given options.
func NewWriter(opts ...WriterOption) *Writer {
	w := &Writer{}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write persists the artifact at path, creating parent directories as
// needed, and mirrors it when a mirror is configured. Filesystem failures
// wrap media.ErrWrite with the attempted path; mirror failures do too, since
// the caller asked for the copy explicitly.
func (w *Writer) Write(ctx context.Context, path string, art *Artifact) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %s: %v", media.ErrWrite, path, err)
		}
	}
	if err := os.WriteFile(path, art.Data, 0o644); err != nil {
		return fmt.Errorf("%w: %s: %v", media.ErrWrite, path, err)
	}
	if w.mirror != nil {
		name := art.Name
		if name == "" {
			name = filepath.Base(path)
		}
		if err := w.mirror.Save(ctx, name, art); err != nil {
			return fmt.Errorf("%w: mirror %s: %v", media.ErrWrite, name, err)
		}
	}
	return nil
}
