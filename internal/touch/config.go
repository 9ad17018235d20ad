// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package touch

import (
	"fmt"
	"time"
)

// Config collects the runtime options of a Controller. It replaces the
// per-board compile-time switches of the firmware this pipeline came from.
type Config struct {
	Samples           int   // samples per batch, odd and >= 3
	AverageWindow     int   // moving-average capacity
	JumpThreshold     int   // pixels
	MaxInvalid        int   // consecutive rejections before a full reset
	PressureThreshold int   // z2 - z1 must exceed this
	VarianceLimit     int64 // per-axis population variance ceiling, raw units²

	SwapXY       bool
	InvertX      bool
	InvertY      bool
	UseTouchLine bool

	Width   int
	Height  int
	Profile Profile

	ExchangeGap time.Duration // minimum interval between two exchanges
	BatchSettle time.Duration // wait after each X/Y pair of a batch
	StartupWait time.Duration // chip stabilisation wait in Init
}

// DefaultConfig returns the values used on the reference board.
func DefaultConfig() Config {
	return Config{
		Samples:           7,
		AverageWindow:     10,
		JumpThreshold:     80,
		MaxInvalid:        3,
		PressureThreshold: 500,
		VarianceLimit:     10000,
		Width:             240,
		Height:            320,
		Profile:           DefaultProfile,
		ExchangeGap:       time.Millisecond,
		BatchSettle:       2 * time.Millisecond,
		StartupWait:       10 * time.Millisecond,
	}
}

// Validate checks every option.
func (c Config) Validate() error {
	if c.Samples < 3 || c.Samples%2 == 0 {
		return fmt.Errorf("%w: samples per batch must be odd and >= 3, got %d", ErrConfig, c.Samples)
	}
	if c.AverageWindow < 1 {
		return fmt.Errorf("%w: average window must be >= 1, got %d", ErrConfig, c.AverageWindow)
	}
	if c.JumpThreshold < 1 {
		return fmt.Errorf("%w: jump threshold must be >= 1, got %d", ErrConfig, c.JumpThreshold)
	}
	if c.MaxInvalid < 1 {
		return fmt.Errorf("%w: invalid-sample ceiling must be >= 1, got %d", ErrConfig, c.MaxInvalid)
	}
	if c.PressureThreshold < 0 {
		return fmt.Errorf("%w: pressure threshold must be >= 0, got %d", ErrConfig, c.PressureThreshold)
	}
	if c.VarianceLimit < 0 {
		return fmt.Errorf("%w: variance limit must be >= 0, got %d", ErrConfig, c.VarianceLimit)
	}
	if c.Width < 1 || c.Height < 1 {
		return fmt.Errorf("%w: screen size %dx%d", ErrConfig, c.Width, c.Height)
	}
	if c.ExchangeGap < 0 || c.BatchSettle < 0 || c.StartupWait < 0 {
		return fmt.Errorf("%w: negative delay", ErrConfig)
	}
	return c.Profile.Validate()
}
