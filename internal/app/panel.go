// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"sync"

	"github.com/relabs-tech/resistive_touch/internal/touch"
)

// panelDevice is the subset of touch.Controller used by the calibration
// and live diagnostic handlers.
type panelDevice interface {
	ReadRaw() (touch.RawPoint, bool, error)
	ReadSample() (touch.RawSample, error)
	PressureThreshold() int
	Calibrate(xMin, yMin, xMax, yMax int) error
	Profile() touch.Profile
	Config() touch.Config
}

// Panel serialises access to one touch controller shared by several
// HTTP handlers. The controller is not safe for concurrent use.
type Panel struct {
	mu  sync.Mutex
	dev panelDevice
}

func NewPanel(dev panelDevice) *Panel {
	return &Panel{dev: dev}
}

func (p *Panel) ReadRaw() (touch.RawPoint, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dev.ReadRaw()
}

// ReadSample returns one unfiltered reading and the gate threshold.
func (p *Panel) ReadSample() (touch.RawSample, int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, err := p.dev.ReadSample()
	return s, p.dev.PressureThreshold(), err
}

// Apply installs prof. The previous profile stays active on error.
func (p *Panel) Apply(prof touch.Profile) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dev.Calibrate(prof.XMin, prof.YMin, prof.XMax, prof.YMax)
}

func (p *Panel) Profile() touch.Profile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dev.Profile()
}

// ScreenSize returns the pixel range points are mapped to.
func (p *Panel) ScreenSize() (width, height int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cfg := p.dev.Config()
	return cfg.Width, cfg.Height
}
