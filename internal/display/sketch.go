// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"fmt"
	"image"

	"github.com/relabs-tech/resistive_touch/internal/touch"
)

// Surface is what Sketch draws on. *ST7789 implements it.
type Surface interface {
	Bounds() image.Rectangle
	FillRect(x, y, w, h int, c Color) error
	DrawImage(x, y int, img image.Image) error
}

const (
	dotRadius  = 2
	textHeight = 13
)

// Sketch is the on-panel touch test: every accepted point leaves a dot,
// the coordinates are shown along the top edge and lifting the finger
// replaces them with "Released".
type Sketch struct {
	s       Surface
	ink     Color
	touched bool
}

// NewSketch clears s and returns a sketch drawing in ink.
func NewSketch(s Surface, ink Color) (*Sketch, error) {
	k := &Sketch{s: s, ink: ink}
	if err := k.Clear(); err != nil {
		return nil, err
	}
	return k, nil
}

// Clear blanks the surface.
func (k *Sketch) Clear() error {
	b := k.s.Bounds()
	k.touched = false
	return k.s.FillRect(b.Min.X, b.Min.Y, b.Dx(), b.Dy(), Black)
}

// Touch marks p and prints its coordinates.
func (k *Sketch) Touch(p touch.Point) error {
	k.touched = true
	if err := k.s.FillRect(p.X-dotRadius, p.Y-dotRadius, 2*dotRadius+1, 2*dotRadius+1, k.ink); err != nil {
		return err
	}
	return k.label(fmt.Sprintf("X:%3d Y:%3d", p.X, p.Y))
}

// Release shows the released banner once per lift.
func (k *Sketch) Release() error {
	if !k.touched {
		return nil
	}
	k.touched = false
	return k.label("Released")
}

func (k *Sketch) label(s string) error {
	b := k.s.Bounds()
	if err := k.s.FillRect(b.Min.X, b.Min.Y, b.Dx(), textHeight, Black); err != nil {
		return err
	}
	return k.s.DrawImage(b.Min.X, b.Min.Y, RenderText(s, colorOf(White), colorOf(Black)))
}
