// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package touch

import (
	"fmt"
	"time"
)

// Target is a screen position the user is asked to touch during guided
// calibration.
type Target struct {
	Label string `json:"label"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
}

// Capture is the averaged raw reading recorded for a target.
type Capture struct {
	Target  Target   `json:"target"`
	Raw     RawPoint `json:"raw"`
	Samples int      `json:"samples"`
}

// CalibrationTargets returns the four corners (top-left, top-right,
// bottom-right, bottom-left) inset by inset pixels, followed by the centre.
func CalibrationTargets(width, height, inset int) []Target {
	return []Target{
		{Label: "Top-Left", X: inset, Y: inset},
		{Label: "Top-Right", X: width - inset, Y: inset},
		{Label: "Bottom-Right", X: width - inset, Y: height - inset},
		{Label: "Bottom-Left", X: inset, Y: height - inset},
		{Label: "Center", X: width / 2, Y: height / 2},
	}
}

// CaptureSession walks the user through a list of targets. A target is
// captured once it has been held continuously for the hold time; lifting
// the finger earlier restarts that target. After a capture the finger has
// to be lifted before the next target starts accumulating.
type CaptureSession struct {
	targets []Target
	hold    time.Duration

	idx         int
	start       time.Time
	sumX, sumY  int
	n           int
	needRelease bool
	captures    []Capture
}

// NewCaptureSession starts a session over targets.
func NewCaptureSession(targets []Target, hold time.Duration) *CaptureSession {
	return &CaptureSession{targets: targets, hold: hold}
}

// Current returns the target being captured and its index, or false once
// all targets are done.
func (s *CaptureSession) Current() (Target, int, bool) {
	if s.idx >= len(s.targets) {
		return Target{}, s.idx, false
	}
	return s.targets[s.idx], s.idx, true
}

// Feed adds one raw reading taken at now. touched=false means the panel
// reported no contact. It returns how long the current target has been
// held and whether this reading completed it.
func (s *CaptureSession) Feed(raw RawPoint, touched bool, now time.Time) (time.Duration, bool) {
	if s.Done() {
		return 0, false
	}
	if !touched {
		s.needRelease = false
		s.restart()
		return 0, false
	}
	if s.needRelease {
		return 0, false
	}
	if s.start.IsZero() {
		s.start = now
	}
	s.sumX += raw.X
	s.sumY += raw.Y
	s.n++

	held := now.Sub(s.start)
	if held < s.hold {
		return held, false
	}
	s.captures = append(s.captures, Capture{
		Target:  s.targets[s.idx],
		Raw:     RawPoint{X: s.sumX / s.n, Y: s.sumY / s.n},
		Samples: s.n,
	})
	s.idx++
	s.needRelease = true
	s.restart()
	return held, true
}

// Done reports whether every target has been captured.
func (s *CaptureSession) Done() bool { return s.idx >= len(s.targets) }

// Captures returns the readings recorded so far.
func (s *CaptureSession) Captures() []Capture {
	return append([]Capture(nil), s.captures...)
}

// Profile derives a calibration profile from the first four captures.
func (s *CaptureSession) Profile() (Profile, error) {
	if len(s.captures) < 4 {
		return Profile{}, fmt.Errorf("%w: %d of 4 corners captured", ErrCalibration, len(s.captures))
	}
	corners := make([]RawPoint, 4)
	for i := range corners {
		corners[i] = s.captures[i].Raw
	}
	return ProfileFromCorners(corners)
}

func (s *CaptureSession) restart() {
	s.start = time.Time{}
	s.sumX, s.sumY, s.n = 0, 0, 0
}

// ProfileFromCorners takes the raw bounding box of the corner readings.
func ProfileFromCorners(corners []RawPoint) (Profile, error) {
	if len(corners) == 0 {
		return Profile{}, fmt.Errorf("%w: no corners", ErrCalibration)
	}
	p := Profile{XMin: corners[0].X, XMax: corners[0].X, YMin: corners[0].Y, YMax: corners[0].Y}
	for _, c := range corners[1:] {
		p.XMin = min(p.XMin, c.X)
		p.XMax = max(p.XMax, c.X)
		p.YMin = min(p.YMin, c.Y)
		p.YMax = max(p.YMax, c.Y)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}
