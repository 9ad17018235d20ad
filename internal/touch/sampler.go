// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package touch

import (
	"fmt"
	"time"
)

// Clock abstracts waiting so the settle intervals can be honoured on real
// hardware and skipped in tests.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// Sampler issues exchanges and decodes the 12-bit conversions.
type Sampler struct {
	tr     Transport
	clk    Clock
	gap    time.Duration // minimum time between two exchanges
	settle time.Duration // wait after every X/Y pair of a batch
	last   time.Time
}

// NewSampler returns a sampler over tr.
func NewSampler(tr Transport, clk Clock, gap, settle time.Duration) *Sampler {
	if clk == nil {
		clk = systemClock{}
	}
	return &Sampler{tr: tr, clk: clk, gap: gap, settle: settle}
}

// SampleAxis sends cmd and returns the conversion result. The controller
// places the 12-bit value in the top bits of the 16-bit frame.
func (s *Sampler) SampleAxis(cmd byte) (uint16, error) {
	s.waitGap()
	v, err := s.tr.Exchange(cmd)
	s.last = s.clk.Now()
	if err != nil {
		return 0, fmt.Errorf("%w: command 0x%02X: %w", ErrTransport, cmd, err)
	}
	return v >> 3, nil
}

// ReadBatch reads n X-then-Y pairs.
func (s *Sampler) ReadBatch(n int) (xs, ys []uint16, err error) {
	xs = make([]uint16, n)
	ys = make([]uint16, n)
	for i := 0; i < n; i++ {
		if xs[i], err = s.SampleAxis(CmdX); err != nil {
			return nil, nil, err
		}
		if ys[i], err = s.SampleAxis(CmdY); err != nil {
			return nil, nil, err
		}
		if s.settle > 0 {
			s.clk.Sleep(s.settle)
		}
	}
	return xs, ys, nil
}

// ReadPlates reads the two pressure-plate channels.
func (s *Sampler) ReadPlates() (z1, z2 uint16, err error) {
	if z1, err = s.SampleAxis(CmdZ1); err != nil {
		return 0, 0, err
	}
	if z2, err = s.SampleAxis(CmdZ2); err != nil {
		return 0, 0, err
	}
	return z1, z2, nil
}

// ReadSample reads X, Y, Z1 and Z2 once each, for diagnostics.
func (s *Sampler) ReadSample() (RawSample, error) {
	var (
		rs  RawSample
		err error
	)
	if rs.X, err = s.SampleAxis(CmdX); err != nil {
		return RawSample{}, err
	}
	if rs.Y, err = s.SampleAxis(CmdY); err != nil {
		return RawSample{}, err
	}
	if rs.Z1, rs.Z2, err = s.ReadPlates(); err != nil {
		return RawSample{}, err
	}
	return rs, nil
}

func (s *Sampler) waitGap() {
	if s.gap <= 0 || s.last.IsZero() {
		return
	}
	if d := s.gap - s.clk.Now().Sub(s.last); d > 0 {
		s.clk.Sleep(d)
	}
}
