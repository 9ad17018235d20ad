// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package touch

// minPlate1 keeps the pressure estimate away from the near-zero z1 region
// where the full resistive formula would divide by almost nothing.
const minPlate1 = 50

// PressureGate decides whether the panel is being touched.
//
// The decision uses z2 - z1 as a proxy for the full resistive pressure
// formula; calibration thresholds in the field were tuned against this
// exact number.
type PressureGate struct {
	s         *Sampler
	line      TouchLine
	threshold int
}

// NewPressureGate returns a gate reading plates through s. line may be nil.
func NewPressureGate(s *Sampler, line TouchLine, threshold int) *PressureGate {
	return &PressureGate{s: s, line: line, threshold: threshold}
}

// Pressed reports touch presence. With an interrupt line configured and
// not asserted no bus traffic is generated.
func (g *PressureGate) Pressed() (bool, error) {
	if g.line != nil && !g.line.Asserted() {
		return false, nil
	}
	z1, z2, err := g.s.ReadPlates()
	if err != nil {
		return false, err
	}
	return IsPressed(z1, z2, g.threshold), nil
}

// Threshold returns the configured pressure threshold.
func (g *PressureGate) Threshold() int {
	return g.threshold
}

// IsPressed applies the gate decision to one pair of plate readings.
func IsPressed(z1, z2 uint16, threshold int) bool {
	if z1 < minPlate1 {
		return false
	}
	return int(z2)-int(z1) > threshold
}
