// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

func inlineImg(fileName string) string {
	payload := base64.StdEncoding.EncodeToString(pngBytes)
	return fmt.Sprintf(`<img src="data:image/png;base64,%s" data-filename=%q alt="x" />`, payload, fileName)
}

func countingSaver(calls *int) Saver {
	return func(data []byte, fileName string) (string, error) {
		*calls++
		return "/posts/files/" + fileName, nil
	}
}

func TestRehostInlineImages(t *testing.T) {
	body := "<p>before</p>" + inlineImg("pic.png") + "<p>after</p>"

	calls := 0
	newBody, assets, err := RehostInlineImages(body, countingSaver(&calls))
	if err != nil {
		t.Fatalf("RehostInlineImages: %v", err)
	}

	if calls != 1 {
		t.Errorf("saver called %d times, want 1", calls)
	}
	if len(assets) != 1 {
		t.Fatalf("got %d assets, want 1", len(assets))
	}
	if assets[0].FileName != "pic.png" || assets[0].URL != "/posts/files/pic.png" {
		t.Errorf("unexpected asset: %+v", assets[0])
	}
	if assets[0].Size != len(pngBytes) {
		t.Errorf("asset size = %d, want %d", assets[0].Size, len(pngBytes))
	}

	if strings.Contains(newBody, "base64") {
		t.Error("rewritten body still contains a base64 source")
	}
	if strings.Contains(newBody, "data-filename") {
		t.Error("rewritten body still contains the filename hint")
	}
	if !strings.Contains(newBody, `src="/posts/files/pic.png"`) {
		t.Errorf("rewritten body missing new src: %s", newBody)
	}
	if !strings.Contains(newBody, `alt="x"`) {
		t.Error("unrelated attributes must survive the rewrite")
	}
	if !strings.HasPrefix(newBody, "<p>before</p>") || !strings.HasSuffix(newBody, "<p>after</p>") {
		t.Error("surrounding markup must be preserved")
	}
}

func TestRehostIsIdempotent(t *testing.T) {
	body := inlineImg("pic.png")

	calls := 0
	once, _, err := RehostInlineImages(body, countingSaver(&calls))
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}

	twice, assets, err := RehostInlineImages(once, countingSaver(&calls))
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if twice != once {
		t.Error("second pass must be a no-op")
	}
	if len(assets) != 0 || calls != 1 {
		t.Errorf("second pass saved again: calls=%d assets=%d", calls, len(assets))
	}
}

func TestRehostLeavesUntouched(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "disallowed extension",
			body: inlineImg("payload.svg"),
		},
		{
			name: "non-base64 source",
			body: `<img src="/already/hosted.png" data-filename="hosted.png" />`,
		},
		{
			name: "missing filename hint",
			body: `<img src="data:image/png;base64,iVBORw0KGgo=" />`,
		},
		{
			name: "invalid base64 payload",
			body: `<img src="data:image/png;base64,!!!not-base64!!!" data-filename="pic.png" />`,
		},
		{
			name: "no images at all",
			body: "<p>plain text</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			newBody, assets, err := RehostInlineImages(tt.body, countingSaver(&calls))
			if err != nil {
				t.Fatalf("RehostInlineImages: %v", err)
			}
			if newBody != tt.body {
				t.Errorf("body changed:\n got %q\nwant %q", newBody, tt.body)
			}
			if calls != 0 || len(assets) != 0 {
				t.Errorf("saver invoked for untouchable element: calls=%d", calls)
			}
		})
	}
}

func TestRehostSaveFailure(t *testing.T) {
	body := inlineImg("pic.png")
	saveErr := errors.New("disk full")

	newBody, assets, err := RehostInlineImages(body, func([]byte, string) (string, error) {
		return "", saveErr
	})
	if !errors.Is(err, saveErr) {
		t.Fatalf("err = %v, want wrapped save error", err)
	}
	if newBody != body {
		t.Error("body must be returned unmodified on save failure")
	}
	if len(assets) != 0 {
		t.Error("no assets on failure")
	}
}

func TestRehostMultipleImages(t *testing.T) {
	body := inlineImg("a.jpg") + "<hr/>" + inlineImg("b.webp")

	calls := 0
	newBody, assets, err := RehostInlineImages(body, countingSaver(&calls))
	if err != nil {
		t.Fatalf("RehostInlineImages: %v", err)
	}
	if calls != 2 || len(assets) != 2 {
		t.Fatalf("calls=%d assets=%d, want 2 and 2", calls, len(assets))
	}
	if !strings.Contains(newBody, "<hr/>") {
		t.Error("markup between images must be preserved")
	}
}
