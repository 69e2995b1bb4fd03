//
// Tencent is pleased to support the open source community by making trpc-genmedia-go available.
//
// Copyright (C) 2026 Tencent.  All rights reserved.
//
// trpc-genmedia-go is licensed under the Apache License Version 2.0.
//
//

package sora

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strconv"
	"strings"

	xdraw "golang.org/x/image/draw"

	"trpc.group/trpc-go/trpc-genmedia-go/internal/fileutil"
	"trpc.group/trpc-go/trpc-genmedia-go/media"
)

// prepareReference loads the input reference image and fits it to the target
// frame: scaled down or up preserving aspect ratio, centered, padded with
// black. The provider requires the reference to match the video size exactly.
func prepareReference(path, size string) ([]byte, error) {
	width, height, err := parseSize(size)
	if err != nil {
		return nil, err
	}
	data, err := fileutil.ReadInput(path)
	if err != nil {
		return nil, err
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, media.InvalidOptionf("decode input image %s: %v", path, err)
	}

	bounds := src.Bounds()
	if bounds.Dx() == width && bounds.Dy() == height {
		return encodePNG(src)
	}

	scaleW := float64(width) / float64(bounds.Dx())
	scaleH := float64(height) / float64(bounds.Dy())
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(bounds.Dx()) * scale)
	newH := int(float64(bounds.Dy()) * scale)

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	offsetX := (width - newW) / 2
	offsetY := (height - newH) / 2
	target := image.Rect(offsetX, offsetY, offsetX+newW, offsetY+newH)
	xdraw.CatmullRom.Scale(canvas, target, src, bounds, xdraw.Over, nil)

	return encodePNG(canvas)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode reference image: %w", err)
	}
	return buf.Bytes(), nil
}

func parseSize(size string) (int, int, error) {
	parts := strings.SplitN(size, "x", 2)
	if len(parts) != 2 {
		return 0, 0, media.InvalidOptionf("malformed size %q", size)
	}
	width, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, media.InvalidOptionf("malformed size %q", size)
	}
	height, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, media.InvalidOptionf("malformed size %q", size)
	}
	return width, height, nil
}
