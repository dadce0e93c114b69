// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging renders the post image: a themed background with shape
// accents, a topic label band, and a watermark. Rendering is pure given
// the same draft, profile, and seed, and it never fails the cycle — any
// internal error degrades to a minimal fallback artifact.
package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"log/slog"
	"math/rand"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"pulsepost/internal/models"
)

// profileSizes maps each aspect profile to its pixel dimensions.
var profileSizes = map[models.AspectProfile][2]int{
	models.ProfileWide:     {1200, 675},
	models.ProfileSquare:   {1080, 1080},
	models.ProfilePortrait: {1080, 1350},
}

// theme holds the base and accent colors of a category.
type theme struct {
	base    color.RGBA
	accents []color.RGBA
}

// rgb converts a 0xRRGGBB value to an opaque color.RGBA.
func rgb(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}
}

// themes carries the category palettes: Bitcoin orange, Lightning purple,
// and so on.
var themes = map[models.Category]theme{
	models.CategoryBitcoin: {
		base:    rgb(0xF7931A),
		accents: []color.RGBA{rgb(0x4D4D4D), rgb(0xFFFFFF), rgb(0x000000)},
	},
	models.CategoryLightning: {
		base:    rgb(0x792EE5),
		accents: []color.RGBA{rgb(0xFFFFFF), rgb(0x000000), rgb(0xF7931A)},
	},
	models.CategoryNostr: {
		base:    rgb(0x8E44AD),
		accents: []color.RGBA{rgb(0xFFFFFF), rgb(0x000000), rgb(0x3498DB)},
	},
	models.CategoryPrivacy: {
		base:    rgb(0x2C3E50),
		accents: []color.RGBA{rgb(0xECF0F1), rgb(0x000000), rgb(0x3498DB)},
	},
	models.CategoryNodeSetup: {
		base:    rgb(0x27AE60),
		accents: []color.RGBA{rgb(0xFFFFFF), rgb(0x000000), rgb(0xF1C40F)},
	},
}

// Renderer produces image artifacts for drafts.
type Renderer struct {
	watermark string
	quality   int
}

// NewRenderer creates a renderer with the given watermark label.
func NewRenderer(watermark string) *Renderer {
	return &Renderer{watermark: watermark, quality: 95}
}

// Render produces the artifact for a draft. Unknown profiles render as
// wide. On any rendering error the minimal fallback artifact is returned
// instead — publishing degraded content beats no post.
func (r *Renderer) Render(draft models.ContentDraft, profile models.AspectProfile, seed int64) models.ImageArtifact {
	size, ok := profileSizes[profile]
	if !ok {
		profile = models.ProfileWide
		size = profileSizes[profile]
	}

	img := r.compose(draft, size[0], size[1], seed)

	data, err := encodeJPEG(img, r.quality)
	if err != nil {
		slog.Warn("image encode failed, using fallback artifact",
			"topic", draft.Topic.Name,
			"error", err,
		)
		return r.fallback(draft, profile)
	}

	return models.ImageArtifact{
		Data:        data,
		Profile:     profile,
		Width:       size[0],
		Height:      size[1],
		ContentType: "image/jpeg",
	}
}

// compose draws the themed background, shape accents, label band,
// topic text, and watermark.
func (r *Renderer) compose(draft models.ContentDraft, w, h int, seed int64) *image.RGBA {
	th := themeFor(draft.Topic.Category)
	rng := rand.New(rand.NewSource(seed))

	img := image.NewRGBA(image.Rect(0, 0, w, h))

	// Vertical gradient from the base color toward its darker half.
	for y := 0; y < h; y++ {
		f := float64(y) / float64(h)
		c := color.RGBA{
			R: uint8(float64(th.base.R) * (1 - f/2)),
			G: uint8(float64(th.base.G) * (1 - f/2)),
			B: uint8(float64(th.base.B) * (1 - f/2)),
			A: 0xFF,
		}
		draw.Draw(img, image.Rect(0, y, w, y+1), image.NewUniform(c), image.Point{}, draw.Src)
	}

	// Translucent accent shapes for visual interest.
	for i := 0; i < 20; i++ {
		c := th.accents[rng.Intn(len(th.accents))]
		c.A = 0x30
		x := rng.Intn(w)
		y := rng.Intn(h)
		size := 20 + rng.Intn(180)
		if rng.Intn(2) == 0 {
			fillRect(img, x, y, size, size, c)
		} else {
			fillEllipse(img, x, y, size, c)
		}
	}

	// Label band across the lower third.
	bandTop := h - h/4
	fillRect(img, 0, bandTop, w, h-bandTop, color.RGBA{0, 0, 0, 0xB4})

	label := draft.Topic.Name
	drawText(img, 40, bandTop+50, label, color.RGBA{0xFF, 0xFF, 0xFF, 0xFF})
	drawText(img, 40, bandTop+80, string(draft.Topic.Category), th.base)

	if r.watermark != "" {
		drawText(img, w-8*len(r.watermark)-20, h-20, r.watermark, color.RGBA{0xFF, 0xFF, 0xFF, 0xC8})
	}

	return img
}

// fallback renders the minimal artifact: solid base color plus the topic
// label. This path uses no randomness and cannot realistically fail; if
// even its encode errors, an empty artifact is returned and the publisher
// posts text-only.
func (r *Renderer) fallback(draft models.ContentDraft, profile models.AspectProfile) models.ImageArtifact {
	size := profileSizes[profile]
	th := themeFor(draft.Topic.Category)

	img := image.NewRGBA(image.Rect(0, 0, size[0], size[1]))
	draw.Draw(img, img.Bounds(), image.NewUniform(th.base), image.Point{}, draw.Src)
	drawText(img, 40, size[1]/2, draft.Topic.Name, color.RGBA{0xFF, 0xFF, 0xFF, 0xFF})

	data, err := encodeJPEG(img, 90)
	if err != nil {
		slog.Error("fallback image encode failed", "error", err)
		data = nil
	}

	return models.ImageArtifact{
		Data:        data,
		Profile:     profile,
		Width:       size[0],
		Height:      size[1],
		ContentType: "image/jpeg",
	}
}

func themeFor(cat models.Category) theme {
	if th, ok := themes[cat]; ok {
		return th
	}
	return themes[models.CategoryBitcoin]
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fillRect alpha-blends a rectangle onto the image, clipped to bounds.
func fillRect(img *image.RGBA, x, y, w, h int, c color.RGBA) {
	r := image.Rect(x, y, x+w, y+h).Intersect(img.Bounds())
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Over)
}

// fillEllipse alpha-blends a circle of the given diameter onto the image.
func fillEllipse(img *image.RGBA, x, y, d int, c color.RGBA) {
	rad := d / 2
	cx, cy := x+rad, y+rad
	bounds := img.Bounds()
	for py := y; py < y+d; py++ {
		for px := x; px < x+d; px++ {
			if px < bounds.Min.X || px >= bounds.Max.X || py < bounds.Min.Y || py >= bounds.Max.Y {
				continue
			}
			dx, dy := px-cx, py-cy
			if dx*dx+dy*dy <= rad*rad {
				draw.Draw(img, image.Rect(px, py, px+1, py+1), image.NewUniform(c), image.Point{}, draw.Over)
			}
		}
	}
}

// drawText renders a single line with the built-in bitmap face. The
// renderer intentionally avoids external font loading so output depends
// only on its inputs.
func drawText(img *image.RGBA, x, y int, text string, c color.RGBA) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
