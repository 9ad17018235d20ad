// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"io"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// txConn is the part of spi.Conn the transport needs.
type txConn interface {
	Tx(w, r []byte) error
}

// pinOut is the part of gpio.PinOut used for a manual chip select.
type pinOut interface {
	Out(l gpio.Level) error
}

// SPITransport talks to the touch controller over a spidev port. A
// controller shares the bus with the display on most boards, so an
// optional GPIO chip select can be driven around each exchange.
type SPITransport struct {
	name string
	conn txConn
	cs   pinOut
	port io.Closer

	w [3]byte
	r [3]byte
}

// NewSPITransport opens spiDev at hz. csPin may be empty when the
// spidev chip enable is wired to the controller.
func NewSPITransport(spiDev string, hz int, csPin string) (*SPITransport, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("touch SPI: periph host init: %w", err)
	}

	var cs pinOut
	if csPin != "" {
		pin := gpioreg.ByName(csPin)
		if pin == nil {
			return nil, fmt.Errorf("touch SPI: CS pin %q not found", csPin)
		}
		if err := pin.Out(gpio.High); err != nil {
			return nil, fmt.Errorf("touch SPI: CS pin %q: %w", csPin, err)
		}
		cs = pin
	}

	port, err := spireg.Open(spiDev)
	if err != nil {
		return nil, fmt.Errorf("touch SPI: open %s: %w", spiDev, err)
	}
	conn, err := port.Connect(physic.Frequency(hz)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("touch SPI: connect %s: %w", spiDev, err)
	}
	return newSPITransport(spiDev, conn, cs, port), nil
}

func newSPITransport(name string, conn txConn, cs pinOut, port io.Closer) *SPITransport {
	return &SPITransport{name: name, conn: conn, cs: cs, port: port}
}

// Exchange sends cmd followed by two clock bytes and returns the 16-bit
// frame clocked back during those bytes.
func (t *SPITransport) Exchange(cmd byte) (uint16, error) {
	t.w = [3]byte{cmd, 0, 0}
	if t.cs != nil {
		if err := t.cs.Out(gpio.Low); err != nil {
			return 0, fmt.Errorf("%s: CS low: %w", t.name, err)
		}
	}
	err := t.conn.Tx(t.w[:], t.r[:])
	if t.cs != nil {
		if cerr := t.cs.Out(gpio.High); cerr != nil && err == nil {
			err = fmt.Errorf("CS high: %w", cerr)
		}
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", t.name, err)
	}
	return decodeFrame(t.r[1], t.r[2]), nil
}

// Close releases the SPI port.
func (t *SPITransport) Close() error {
	if t.port == nil {
		return nil
	}
	return t.port.Close()
}

func decodeFrame(hi, lo byte) uint16 {
	return uint16(hi)<<8 | uint16(lo)
}
