// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package touch

// Controller commands. X and Y are swapped relative to the datasheet
// wording; these match how the panel is wired on the reference board.
const (
	CmdX  byte = 0x90
	CmdY  byte = 0xD0
	CmdZ1 byte = 0xB0
	CmdZ2 byte = 0xC0
)

// Transport performs one synchronous command/response exchange with the
// touch controller and returns the raw 16-bit response frame.
// Implementations own chip-select handling and may block.
type Transport interface {
	Exchange(cmd byte) (uint16, error)
}

// TouchLine is the optional pen-interrupt line of the controller.
type TouchLine interface {
	// Asserted reports whether the panel currently signals contact.
	Asserted() bool
}

// Point is a calibrated screen coordinate in pixels.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// RawPoint is an uncalibrated coordinate in raw units.
type RawPoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// RawSample holds one reading of every channel used by the pipeline.
type RawSample struct {
	X  uint16 `json:"x"`
	Y  uint16 `json:"y"`
	Z1 uint16 `json:"z1"`
	Z2 uint16 `json:"z2"`
}

// Pressure is the simplified pressure estimate z2 - z1 used by the gate.
func (s RawSample) Pressure() int {
	return int(s.Z2) - int(s.Z1)
}
