// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log"
	"syscall"

	"github.com/warthog618/go-gpiocdev"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// The pen interrupt output of the controller is open drain and pulled
// low while the panel is touched.

type levelReader interface {
	Read() gpio.Level
}

// PinLine reads the pen interrupt through a periph GPIO pin.
type PinLine struct {
	pin levelReader
}

// NewPinLine configures name as a pulled-up input.
func NewPinLine(name string) (*PinLine, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("touch IRQ: periph host init: %w", err)
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("touch IRQ: pin %q not found", name)
	}
	if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("touch IRQ: pin %q: %w", name, err)
	}
	return &PinLine{pin: pin}, nil
}

// Asserted reports whether the line is low.
func (l *PinLine) Asserted() bool {
	return l.pin.Read() == gpio.Low
}

type valueReader interface {
	Value() (int, error)
	Close() error
}

// CdevLine reads the pen interrupt through the GPIO character device.
// Used on kernels where the sysfs GPIO interface periph relies on is gone.
type CdevLine struct {
	line valueReader
	name string
}

// NewCdevLine requests offset on chip (e.g. "gpiochip0") as an input
// with pull-up.
func NewCdevLine(chip string, offset int) (*CdevLine, error) {
	line, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithConsumer("resistive-touch"))
	if err != nil {
		if err == syscall.Errno(22) {
			log.Println("touch IRQ: WithPullUp requires Linux 5.5 or later")
		}
		return nil, fmt.Errorf("touch IRQ: request %s:%d: %w", chip, offset, err)
	}
	return &CdevLine{line: line, name: fmt.Sprintf("%s:%d", chip, offset)}, nil
}

// Asserted reports whether the line is low. A read error counts as not
// asserted so a flaky line cannot wedge the pipeline in the touched state.
func (l *CdevLine) Asserted() bool {
	v, err := l.line.Value()
	if err != nil {
		log.Printf("touch IRQ %s: %v", l.name, err)
		return false
	}
	return v == 0
}

// Close releases the line.
func (l *CdevLine) Close() error {
	return l.line.Close()
}
