// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging normalizes rehosted images: EXIF orientation is applied,
// oversized images are scaled down, and metadata is stripped by re-encoding
// with pure Go encoders.
package imaging

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder
)

// JPEGQuality is the re-encode quality for processed JPEG images.
const JPEGQuality = 95

// Processor rewrites image payloads before they are persisted as media
// files.
type Processor struct {
	maxWidth int
}

// NewProcessor creates a processor that scales images down to at most
// maxWidth pixels wide. A maxWidth <= 0 disables scaling.
func NewProcessor(maxWidth int) *Processor {
	return &Processor{maxWidth: maxWidth}
}

// Normalize returns the image re-encoded with EXIF orientation applied,
// width capped and metadata dropped. Payloads that are not decodable
// images, or that need no change, pass through untouched; Normalize never
// fails, it only declines to rewrite.
//
// WebP is decode-only in pure Go, so WebP payloads always pass through.
func (p *Processor) Normalize(data []byte) []byte {
	format := detectFormat(data)
	if format == "" || format == "webp" {
		return data
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}

	orientation := readExifOrientation(bytes.NewReader(data))
	needsResize := p.maxWidth > 0 && img.Bounds().Dx() > p.maxWidth
	if orientation == 1 && !needsResize {
		// Nothing to fix; keep the original bytes (and their compression).
		return data
	}

	img = applyOrientation(img, orientation)
	if p.maxWidth > 0 && img.Bounds().Dx() > p.maxWidth {
		img = imaging.Resize(img, p.maxWidth, 0, imaging.Lanczos)
	}

	processed, err := encodeImage(img, format, JPEGQuality)
	if err != nil {
		return data
	}
	return processed
}

// Dimensions reports the pixel size of an image payload without decoding
// the full image.
func Dimensions(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// detectFormat identifies an image format from its magic bytes. Returns ""
// for anything unrecognized.
func detectFormat(data []byte) string {
	switch {
	case len(data) > 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return "jpeg"
	case len(data) > 8 && bytes.HasPrefix(data, []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}):
		return "png"
	case len(data) > 4 && bytes.HasPrefix(data, []byte("GIF8")):
		return "gif"
	case len(data) > 12 && bytes.HasPrefix(data, []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return "webp"
	default:
		return ""
	}
}

// readExifOrientation reads the EXIF orientation tag from image data.
// Returns 1 (normal) if orientation cannot be determined.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}

	return orientation
}

// applyOrientation applies EXIF orientation transformation to an image.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// encodeImage encodes an image to bytes with the specified format and quality.
func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	case "gif":
		if err := gif.Encode(&buf, img, nil); err != nil {
			return nil, err
		}
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}
