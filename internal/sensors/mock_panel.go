// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/relabs-tech/resistive_touch/internal/touch"
)

const (
	mockStroke  = 3 * time.Second // finger down, tracing a circle
	mockLift    = 1 * time.Second // finger up
	mockPressZ1 = 400
	mockPressZ2 = 1400
)

// MockPanel simulates a touch controller: a finger draws a circle around
// the middle of the calibrated area for three seconds, lifts for one,
// and starts again. Readings carry uniform noise.
type MockPanel struct {
	mu      sync.Mutex
	start   time.Time
	now     func() time.Time
	rng     *rand.Rand
	profile touch.Profile
	noise   int
}

// NewMockPanel creates a simulated panel whose raw readings stay inside
// profile. noise is the peak jitter in raw units.
func NewMockPanel(profile touch.Profile, noise int) *MockPanel {
	return &MockPanel{
		start:   time.Now(),
		now:     time.Now,
		rng:     rand.New(rand.NewPCG(1, 2)),
		profile: profile,
		noise:   noise,
	}
}

// Exchange returns the frame the controller would send for cmd.
func (m *MockPanel) Exchange(cmd byte) (uint16, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elapsed := m.now().Sub(m.start) % (mockStroke + mockLift)
	down := elapsed < mockStroke

	var v int
	switch cmd {
	case touch.CmdZ1:
		v = 0
		if down {
			v = mockPressZ1
		}
	case touch.CmdZ2:
		v = 0
		if down {
			v = mockPressZ2
		}
	case touch.CmdX, touch.CmdY:
		if !down {
			return 0, nil
		}
		phase := 2 * math.Pi * elapsed.Seconds() / mockStroke.Seconds()
		p := m.profile
		if cmd == touch.CmdX {
			mid, r := (p.XMin+p.XMax)/2, float64(p.XMax-p.XMin)*0.35
			v = mid + int(r*math.Cos(phase))
		} else {
			mid, r := (p.YMin+p.YMax)/2, float64(p.YMax-p.YMin)*0.35
			v = mid + int(r*math.Sin(phase))
		}
		if m.noise > 0 {
			v += m.rng.IntN(2*m.noise+1) - m.noise
		}
	}
	v = min(max(v, 0), 4095)
	return uint16(v) << 3, nil
}
