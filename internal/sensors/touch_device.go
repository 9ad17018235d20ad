// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/relabs-tech/resistive_touch/internal/config"
	"github.com/relabs-tech/resistive_touch/internal/touch"
)

// TouchDevice is a ready controller together with the hardware handles
// it holds open.
type TouchDevice struct {
	*touch.Controller
	closers []io.Closer
}

// NewTouchDevice builds the transport selected by TOUCH_TRANSPORT, the
// optional pen interrupt line and an initialized controller.
func NewTouchDevice(cfg *config.Config) (*TouchDevice, error) {
	d := &TouchDevice{}

	tr, err := d.openTransport(cfg)
	if err != nil {
		return nil, err
	}

	tc := cfg.TouchConfig()
	var opts []touch.Option
	switch {
	case !cfg.HasTouchLine():
	case cfg.TouchTransport == config.TransportMock:
		// The simulated panel has no pen interrupt.
		tc.UseTouchLine = false
		log.Printf("touch: mock transport, ignoring configured IRQ line")
	default:
		line, err := d.openLine(cfg)
		if err != nil {
			d.Close()
			return nil, err
		}
		opts = append(opts, touch.WithTouchLine(line))
	}

	ctrl, err := touch.New(tr, tc, opts...)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("touch controller: %w", err)
	}
	ctrl.Init()
	d.Controller = ctrl

	p := ctrl.Profile()
	log.Printf("touch: %s transport, %dx%d screen, calibration x=%d..%d y=%d..%d",
		cfg.TouchTransport, cfg.ScreenWidth, cfg.ScreenHeight, p.XMin, p.XMax, p.YMin, p.YMax)
	return d, nil
}

func (d *TouchDevice) openTransport(cfg *config.Config) (touch.Transport, error) {
	switch cfg.TouchTransport {
	case config.TransportSPI:
		t, err := NewSPITransport(cfg.TouchSPIDevice, cfg.TouchSPISpeedHz, cfg.TouchCSPin)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, t)
		return t, nil
	case config.TransportSerial:
		t, err := NewSerialTransport(cfg.TouchSerialPort, cfg.TouchSerialBaud)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, t)
		return t, nil
	case config.TransportMock:
		p := cfg.TouchConfig().Profile
		return NewMockPanel(p, 15), nil
	default:
		return nil, fmt.Errorf("unknown touch transport %q", cfg.TouchTransport)
	}
}

func (d *TouchDevice) openLine(cfg *config.Config) (touch.TouchLine, error) {
	if cfg.TouchIRQChip != "" {
		l, err := NewCdevLine(cfg.TouchIRQChip, cfg.TouchIRQLine)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, l)
		return l, nil
	}
	return NewPinLine(cfg.TouchIRQPin)
}

// Close releases every handle opened for the device.
func (d *TouchDevice) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		errs = append(errs, d.closers[i].Close())
	}
	d.closers = nil
	return errors.Join(errs...)
}
