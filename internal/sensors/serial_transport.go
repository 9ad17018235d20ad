// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"io"

	serial "github.com/jacobsa/go-serial/serial"
)

// SerialTransport reaches the controller through a USB/UART bridge that
// forwards each command byte to the chip and answers with the two frame
// bytes, high byte first.
type SerialTransport struct {
	name string
	port io.ReadWriteCloser
	buf  [2]byte
}

// NewSerialTransport opens portName at baud.
func NewSerialTransport(portName string, baud int) (*SerialTransport, error) {
	opts := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              uint(baud),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       2,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 100,
	}
	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("touch serial: open %s: %w", portName, err)
	}
	return &SerialTransport{name: portName, port: port}, nil
}

// Exchange writes cmd and reads the two-byte response.
func (t *SerialTransport) Exchange(cmd byte) (uint16, error) {
	if _, err := t.port.Write([]byte{cmd}); err != nil {
		return 0, fmt.Errorf("%s: write: %w", t.name, err)
	}
	if _, err := io.ReadFull(t.port, t.buf[:]); err != nil {
		return 0, fmt.Errorf("%s: read: %w", t.name, err)
	}
	return decodeFrame(t.buf[0], t.buf[1]), nil
}

// Close closes the serial port.
func (t *SerialTransport) Close() error {
	return t.port.Close()
}
