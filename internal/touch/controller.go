// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package touch

import (
	"fmt"
)

// State is the externally observable mode of the controller.
type State int

const (
	// Idle: no touch, history cleared.
	Idle State = iota
	// Tracking: a valid stream of points, history populated.
	Tracking
	// Rejecting: touch present but recent samples failed gating.
	Rejecting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Tracking:
		return "tracking"
	case Rejecting:
		return "rejecting"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// TouchState persists between reads.
type TouchState struct {
	Last         *Point // reference point of the jump rejector
	InvalidCount int
}

// Stats counts pipeline outcomes since the controller was created.
type Stats struct {
	Reads      uint64 `json:"reads"`
	Accepted   uint64 `json:"accepted"`
	Unreliable uint64 `json:"unreliable"`
	Jumps      uint64 `json:"jumps"`
	Resets     uint64 `json:"resets"` // resets forced by the invalid-sample ceiling
}

// Option customises a Controller.
type Option func(*Controller)

// WithTouchLine attaches the pen-interrupt line used when
// Config.UseTouchLine is set.
func WithTouchLine(l TouchLine) Option {
	return func(c *Controller) { c.line = l }
}

// WithClock replaces the wall clock used for settle delays.
func WithClock(clk Clock) Option {
	return func(c *Controller) { c.clk = clk }
}

// Controller runs the acquisition pipeline:
// gate -> batch -> median -> variance -> map -> jump -> smooth.
//
// A Controller is not safe for concurrent use; it owns the transport for
// the duration of each call.
type Controller struct {
	cfg     Config
	clk     Clock
	line    TouchLine
	sampler *Sampler
	gate    *PressureGate
	mapper  Mapper
	history *History

	state TouchState
	mode  State
	stats Stats
}

// New validates cfg and builds a controller over tr.
func New(tr Transport, cfg Config, opts ...Option) (*Controller, error) {
	if tr == nil {
		return nil, fmt.Errorf("%w: nil transport", ErrConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Controller{cfg: cfg}
	for _, o := range opts {
		o(c)
	}
	if c.clk == nil {
		c.clk = systemClock{}
	}
	if cfg.UseTouchLine && c.line == nil {
		return nil, fmt.Errorf("%w: touch line enabled but not provided", ErrConfig)
	}
	var line TouchLine
	if cfg.UseTouchLine {
		line = c.line
	}
	c.sampler = NewSampler(tr, c.clk, cfg.ExchangeGap, cfg.BatchSettle)
	c.gate = NewPressureGate(c.sampler, line, cfg.PressureThreshold)
	c.mapper = Mapper{
		Profile: cfg.Profile,
		Width:   cfg.Width,
		Height:  cfg.Height,
		SwapXY:  cfg.SwapXY,
		InvertX: cfg.InvertX,
		InvertY: cfg.InvertY,
	}
	c.history = NewHistory(cfg.AverageWindow)
	return c, nil
}

// Init clears all filter state and waits for the chip to stabilise.
func (c *Controller) Init() {
	c.reset()
	if c.cfg.StartupWait > 0 {
		c.clk.Sleep(c.cfg.StartupWait)
	}
}

// Read performs one full pass of the pipeline. It returns ok=false when
// the panel is not touched or the sample was rejected; err is non-nil only
// for transport failures.
func (c *Controller) Read() (p Point, ok bool, err error) {
	c.stats.Reads++

	pressed, err := c.gate.Pressed()
	if err != nil {
		return Point{}, false, err
	}
	if !pressed {
		c.reset()
		return Point{}, false, nil
	}

	xs, ys, err := c.sampler.ReadBatch(c.cfg.Samples)
	if err != nil {
		return Point{}, false, err
	}
	mx, my := Median(xs), Median(ys)
	if !Reliable(xs, ys, mx, my, c.cfg.VarianceLimit) {
		c.reject(ErrUnreliableSample)
		return Point{}, false, nil
	}

	next := c.mapper.Map(int(mx), int(my))
	if c.state.Last != nil && !AcceptJump(next, *c.state.Last, c.cfg.JumpThreshold) {
		c.reject(ErrJumpRejected)
		return Point{}, false, nil
	}

	c.state.InvalidCount = 0
	smoothed := c.history.Push(next)
	c.state.Last = &smoothed
	c.mode = Tracking
	c.stats.Accepted++
	return smoothed, true, nil
}

// IsTouched runs the pressure gate only.
func (c *Controller) IsTouched() (bool, error) {
	return c.gate.Pressed()
}

// rawAverageSamples is the number of exchanges averaged by ReadRaw.
const rawAverageSamples = 3

// ReadRaw returns the mean of three unfiltered X/Y readings without
// calibration. Filter state is left untouched.
func (c *Controller) ReadRaw() (RawPoint, bool, error) {
	pressed, err := c.gate.Pressed()
	if err != nil || !pressed {
		return RawPoint{}, false, err
	}
	var sx, sy int
	for i := 0; i < rawAverageSamples; i++ {
		x, err := c.sampler.SampleAxis(CmdX)
		if err != nil {
			return RawPoint{}, false, err
		}
		y, err := c.sampler.SampleAxis(CmdY)
		if err != nil {
			return RawPoint{}, false, err
		}
		sx += int(x)
		sy += int(y)
	}
	return RawPoint{X: sx / rawAverageSamples, Y: sy / rawAverageSamples}, true, nil
}

// ReadSample reads every channel once, bypassing the gate and filters.
func (c *Controller) ReadSample() (RawSample, error) {
	return c.sampler.ReadSample()
}

// Calibrate atomically replaces the calibration profile. Invalid bounds
// are rejected and the previous profile stays in effect.
func (c *Controller) Calibrate(xMin, yMin, xMax, yMax int) error {
	p := Profile{XMin: xMin, XMax: xMax, YMin: yMin, YMax: yMax}
	if err := p.Validate(); err != nil {
		return err
	}
	c.mapper.Profile = p
	c.cfg.Profile = p
	c.reset()
	return nil
}

// SetScreenSize changes the pixel range of the mapping.
func (c *Controller) SetScreenSize(width, height int) error {
	if width < 1 || height < 1 {
		return fmt.Errorf("%w: screen size %dx%d", ErrConfig, width, height)
	}
	c.mapper.Width, c.mapper.Height = width, height
	c.cfg.Width, c.cfg.Height = width, height
	c.reset()
	return nil
}

// Profile returns the active calibration profile.
func (c *Controller) Profile() Profile { return c.mapper.Profile }

// Config returns the active configuration.
func (c *Controller) Config() Config { return c.cfg }

// State returns the current mode of the state machine.
func (c *Controller) State() State { return c.mode }

// TouchState returns a copy of the persistent filter state.
func (c *Controller) TouchState() TouchState {
	ts := TouchState{InvalidCount: c.state.InvalidCount}
	if c.state.Last != nil {
		last := *c.state.Last
		ts.Last = &last
	}
	return ts
}

// HistoryLen is the number of points currently averaged by the smoother.
func (c *Controller) HistoryLen() int { return c.history.Len() }

// Stats returns the pipeline counters.
func (c *Controller) Stats() Stats { return c.stats }

// PressureThreshold returns the gate threshold, for diagnostics.
func (c *Controller) PressureThreshold() int { return c.gate.Threshold() }

func (c *Controller) reject(reason error) {
	switch reason {
	case ErrUnreliableSample:
		c.stats.Unreliable++
	case ErrJumpRejected:
		c.stats.Jumps++
	}
	c.state.InvalidCount++
	if c.state.InvalidCount >= c.cfg.MaxInvalid {
		c.stats.Resets++
		c.reset()
		return
	}
	c.mode = Rejecting
}

func (c *Controller) reset() {
	c.history.Reset()
	c.state = TouchState{}
	c.mode = Idle
}
