// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var face = basicfont.Face7x13

// TextSize returns the pixel size of s rendered in the built-in face.
func TextSize(s string) image.Point {
	return image.Pt(face.Advance*len(s), face.Height)
}

// RenderText draws s in fg over bg into a new image sized to fit it.
func RenderText(s string, fg, bg color.Color) *image.RGBA {
	size := TextSize(s)
	img := image.NewRGBA(image.Rectangle{Max: size})
	draw.Draw(img, img.Bounds(), &image.Uniform{bg}, image.Point{}, draw.Src)
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{fg},
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	drawer.DrawString(s)
	return img
}
