// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import "image/color"

// Color is an RGB565 pixel.
type Color uint16

const (
	Black  Color = 0x0000
	White  Color = 0xFFFF
	Red    Color = 0xF800
	Green  Color = 0x07E0
	Blue   Color = 0x001F
	Yellow Color = 0xFFE0
	Cyan   Color = 0x07FF
)

// RGB565 packs 8-bit channels.
func RGB565(r, g, b uint8) Color {
	return Color(uint16(r&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(b)>>3)
}

// FromColor converts any color, ignoring alpha.
func FromColor(c color.Color) Color {
	r, g, b, _ := c.RGBA()
	return RGB565(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// colorOf expands c back to an image color.
func colorOf(c Color) color.RGBA {
	r := uint8(c>>11) << 3
	g := uint8(c>>5&0x3F) << 2
	b := uint8(c&0x1F) << 3
	return color.RGBA{R: r | r>>5, G: g | g>>6, B: b | b>>5, A: 0xFF}
}
