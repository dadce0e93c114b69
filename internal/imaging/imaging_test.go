// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package imaging

import (
	"bytes"
	"image/jpeg"
	"testing"

	"pulsepost/internal/models"
)

func testDraft() models.ContentDraft {
	return models.ContentDraft{
		Topic: models.Topic{ID: 1, Name: "Coinjoin Privacy", Category: models.CategoryPrivacy},
		Body:  "Coinjoin breaks the common-input heuristic.",
	}
}

func TestRenderProfileDimensions(t *testing.T) {
	r := NewRenderer("")

	tests := []struct {
		profile models.AspectProfile
		w, h    int
	}{
		{models.ProfileWide, 1200, 675},
		{models.ProfileSquare, 1080, 1080},
		{models.ProfilePortrait, 1080, 1350},
	}

	for _, tt := range tests {
		art := r.Render(testDraft(), tt.profile, 1)
		if art.Width != tt.w || art.Height != tt.h {
			t.Errorf("%s: got %dx%d, want %dx%d", tt.profile, art.Width, art.Height, tt.w, tt.h)
		}
		if art.ContentType != "image/jpeg" {
			t.Errorf("%s: content type = %q", tt.profile, art.ContentType)
		}

		cfg, err := jpeg.DecodeConfig(bytes.NewReader(art.Data))
		if err != nil {
			t.Fatalf("%s: decode: %v", tt.profile, err)
		}
		if cfg.Width != tt.w || cfg.Height != tt.h {
			t.Errorf("%s: encoded %dx%d, want %dx%d", tt.profile, cfg.Width, cfg.Height, tt.w, tt.h)
		}
	}
}

func TestRenderUnknownProfileFallsBackToWide(t *testing.T) {
	r := NewRenderer("")

	art := r.Render(testDraft(), models.AspectProfile("cinema"), 1)
	if art.Profile != models.ProfileWide {
		t.Errorf("profile = %q, want %q", art.Profile, models.ProfileWide)
	}
	if art.Width != 1200 || art.Height != 675 {
		t.Errorf("got %dx%d, want 1200x675", art.Width, art.Height)
	}
}

func TestRenderDeterministicForSeed(t *testing.T) {
	r := NewRenderer("pulsepost")

	first := r.Render(testDraft(), models.ProfileSquare, 99)
	second := r.Render(testDraft(), models.ProfileSquare, 99)
	if !bytes.Equal(first.Data, second.Data) {
		t.Error("same draft and seed produced different bytes")
	}

	third := r.Render(testDraft(), models.ProfileSquare, 100)
	if bytes.Equal(first.Data, third.Data) {
		t.Error("different seeds produced identical bytes")
	}
}

func TestRenderUnknownCategoryUsesDefaultTheme(t *testing.T) {
	r := NewRenderer("")

	draft := testDraft()
	draft.Topic.Category = models.Category("Gardening")

	art := r.Render(draft, models.ProfileWide, 1)
	if len(art.Data) == 0 {
		t.Error("no image data for unknown category")
	}
}

func TestThemeForKnownCategories(t *testing.T) {
	for _, cat := range models.Categories() {
		th := themeFor(cat)
		if len(th.accents) == 0 {
			t.Errorf("%s: theme has no accents", cat)
		}
	}
}
