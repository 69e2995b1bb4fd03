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
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-genmedia-go/media"
)

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name      string
		requested string
		def       string
		ext       string
		want      string
	}{
		{"empty uses default", "", "generated_image", "png", "generated_image.png"},
		{"matching extension kept", "pic.png", "generated_image", "png", "pic.png"},
		{"case-insensitive match", "pic.PNG", "generated_image", "png", "pic.PNG"},
		{"missing extension appended", "model", "text_to_3d", "stl", "model.stl"},
		{"wrong extension replaced", "clip.avi", "generated_video", "mp4", "clip.mp4"},
		{"nested path preserved", "out/dir/pic", "generated_image", "png", "out/dir/pic.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvePath(tt.requested, tt.def, tt.ext))
		})
	}
}

func TestWriteCreatesParentDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b", "out.png")
	w := NewWriter()
	err := w.Write(context.Background(), path, &Artifact{Data: []byte{1, 2}, MimeType: "image/png"})
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, data)
}

func TestWriteOverwritesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))
	w := NewWriter()
	require.NoError(t, w.Write(context.Background(), path, &Artifact{Data: []byte("new")}))
	data, _ := os.ReadFile(path)
	assert.Equal(t, []byte("new"), data)
}

func TestWriteFailureWrapsErrWrite(t *testing.T) {
	w := NewWriter()
	// Writing below an existing file must fail.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	err := w.Write(context.Background(), filepath.Join(blocker, "out.png"), &Artifact{Data: []byte{1}})
	require.Error(t, err)
	assert.ErrorIs(t, err, media.ErrWrite)
	assert.Contains(t, err.Error(), "out.png")
}

type recordingMirror struct {
	names []string
	fail  bool
}

func (m *recordingMirror) Save(_ context.Context, name string, _ *Artifact) error {
	if m.fail {
		return errors.New("upload refused")
	}
	m.names = append(m.names, name)
	return nil
}

func TestWriteMirrorsArtifact(t *testing.T) {
	mirror := &recordingMirror{}
	w := NewWriter(WithMirror(mirror))
	path := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, w.Write(context.Background(), path, &Artifact{Data: []byte{1}, Name: "clip.mp4"}))
	assert.Equal(t, []string{"clip.mp4"}, mirror.names)
}

func TestWriteMirrorFailureWrapsErrWrite(t *testing.T) {
	w := NewWriter(WithMirror(&recordingMirror{fail: true}))
	path := filepath.Join(t.TempDir(), "clip.mp4")
	err := w.Write(context.Background(), path, &Artifact{Data: []byte{1}})
	require.Error(t, err)
	assert.ErrorIs(t, err, media.ErrWrite)
	// The local file is still written before the mirror runs.
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}
