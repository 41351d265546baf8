// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodeTestPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test png: %v", err)
	}
	return buf.Bytes()
}

func TestNormalizePassesThroughNonImages(t *testing.T) {
	p := NewProcessor(100)

	data := []byte("definitely not an image")
	if got := p.Normalize(data); !bytes.Equal(got, data) {
		t.Error("non-image payloads must pass through unmodified")
	}
}

func TestNormalizeKeepsSmallImages(t *testing.T) {
	p := NewProcessor(100)

	data := encodeTestPNG(t, 50, 40)
	if got := p.Normalize(data); !bytes.Equal(got, data) {
		t.Error("an image within bounds must keep its original bytes")
	}
}

func TestNormalizeCapsWidth(t *testing.T) {
	p := NewProcessor(100)

	data := encodeTestPNG(t, 300, 150)
	got := p.Normalize(data)
	if bytes.Equal(got, data) {
		t.Fatal("oversized image should have been rewritten")
	}

	w, h, err := Dimensions(got)
	if err != nil {
		t.Fatalf("Dimensions: %v", err)
	}
	if w != 100 {
		t.Errorf("width = %d, want 100", w)
	}
	if h != 50 {
		t.Errorf("height = %d, want 50 (aspect ratio preserved)", h)
	}
}

func TestNormalizeDisabled(t *testing.T) {
	p := NewProcessor(0)

	data := encodeTestPNG(t, 300, 150)
	if got := p.Normalize(data); !bytes.Equal(got, data) {
		t.Error("maxWidth <= 0 must disable scaling")
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
	}{
		{name: "png", data: []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0}, expected: "png"},
		{name: "jpeg", data: []byte{0xFF, 0xD8, 0xFF, 0xE0}, expected: "jpeg"},
		{name: "gif", data: []byte("GIF89a...."), expected: "gif"},
		{name: "webp", data: []byte("RIFF1234WEBPVP8 ......"), expected: "webp"},
		{name: "unknown", data: []byte("hello world"), expected: ""},
		{name: "empty", data: nil, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectFormat(tt.data); got != tt.expected {
				t.Errorf("detectFormat() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDimensions(t *testing.T) {
	data := encodeTestPNG(t, 12, 34)
	w, h, err := Dimensions(data)
	if err != nil {
		t.Fatalf("Dimensions: %v", err)
	}
	if w != 12 || h != 34 {
		t.Errorf("Dimensions = %dx%d, want 12x34", w, h)
	}
}
