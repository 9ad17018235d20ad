// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package touch

import "fmt"

// Profile holds the raw-unit bounds that map onto the full screen.
type Profile struct {
	XMin int `json:"x_min"`
	XMax int `json:"x_max"`
	YMin int `json:"y_min"`
	YMax int `json:"y_max"`
}

// DefaultProfile matches the reference 2.8" panel.
var DefaultProfile = Profile{XMin: 160, XMax: 3870, YMin: 215, YMax: 3910}

// Validate rejects profiles that would make the mapping divide by zero
// or by a negative range.
func (p Profile) Validate() error {
	if p.XMin >= p.XMax {
		return fmt.Errorf("%w: x_min %d >= x_max %d", ErrCalibration, p.XMin, p.XMax)
	}
	if p.YMin >= p.YMax {
		return fmt.Errorf("%w: y_min %d >= y_max %d", ErrCalibration, p.YMin, p.YMax)
	}
	return nil
}

// Mapper converts raw coordinates to screen pixels.
type Mapper struct {
	Profile Profile
	Width   int
	Height  int
	SwapXY  bool
	InvertX bool
	InvertY bool
}

// Map applies swap, clamp, offset, scale, invert and the final pixel
// clamp, in that order. A mapper holding an invalid profile maps every
// input to the origin rather than dividing by a non-positive range.
func (m Mapper) Map(rawX, rawY int) Point {
	if m.Profile.Validate() != nil || m.Width <= 0 || m.Height <= 0 {
		return Point{}
	}
	x, y := rawX, rawY
	if m.SwapXY {
		x, y = y, x
	}

	p := m.Profile
	x = clamp(x, p.XMin, p.XMax) - p.XMin
	y = clamp(y, p.YMin, p.YMax) - p.YMin

	x = int(int64(x) * int64(m.Width) / int64(p.XMax-p.XMin))
	y = int(int64(y) * int64(m.Height) / int64(p.YMax-p.YMin))

	if m.InvertX {
		x = m.Width - 1 - x
	}
	if m.InvertY {
		y = m.Height - 1 - y
	}

	return Point{
		X: clamp(x, 0, m.Width-1),
		Y: clamp(y, 0, m.Height-1),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
