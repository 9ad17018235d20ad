// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"fmt"
	"image"
	"io"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// ST7789 commands.
const (
	cmdSWRESET = 0x01
	cmdSLPIN   = 0x10
	cmdSLPOUT  = 0x11
	cmdNORON   = 0x13
	cmdINVOFF  = 0x20
	cmdINVON   = 0x21
	cmdDISPON  = 0x29
	cmdCASET   = 0x2A
	cmdRASET   = 0x2B
	cmdRAMWR   = 0x2C
	cmdMADCTL  = 0x36
	cmdCOLMOD  = 0x3A

	madctlMY  = 0x80
	madctlMX  = 0x40
	madctlMV  = 0x20
	madctlRGB = 0x00

	colorMode16bit = 0x55
)

// maxChunk matches the default spidev buffer size.
const maxChunk = 4096

type txConn interface {
	Tx(w, r []byte) error
}

type pinOut interface {
	Out(l gpio.Level) error
}

// ST7789 drives an ST7789 TFT over SPI with separate data/command and
// reset lines.
type ST7789 struct {
	conn  txConn
	dc    pinOut
	rst   pinOut
	port  io.Closer
	sleep func(time.Duration)

	width, height  int
	xShift, yShift int
	rotation       int

	buf []byte
}

// NewST7789 opens the panel on spiDev. width and height are the portrait
// dimensions of the glass.
func NewST7789(spiDev string, hz int, dcPin, rstPin string, width, height int) (*ST7789, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("st7789: periph host init: %w", err)
	}
	dc := gpioreg.ByName(dcPin)
	if dc == nil {
		return nil, fmt.Errorf("st7789: DC pin %q not found", dcPin)
	}
	var rst pinOut
	if rstPin != "" {
		p := gpioreg.ByName(rstPin)
		if p == nil {
			return nil, fmt.Errorf("st7789: RST pin %q not found", rstPin)
		}
		rst = p
	}

	port, err := spireg.Open(spiDev)
	if err != nil {
		return nil, fmt.Errorf("st7789: open %s: %w", spiDev, err)
	}
	conn, err := port.Connect(physic.Frequency(hz)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("st7789: connect %s: %w", spiDev, err)
	}
	return newST7789(conn, dc, rst, port, width, height), nil
}

func newST7789(conn txConn, dc, rst pinOut, port io.Closer, width, height int) *ST7789 {
	return &ST7789{
		conn:   conn,
		dc:     dc,
		rst:    rst,
		port:   port,
		sleep:  time.Sleep,
		width:  width,
		height: height,
		buf:    make([]byte, maxChunk),
	}
}

// Init resets the controller and runs the power-on sequence for the
// given rotation (0 portrait, 1 landscape, 2 and 3 inverted), leaving
// the screen black.
func (d *ST7789) Init(rotation int) error {
	if d.rst != nil {
		for _, step := range []struct {
			l gpio.Level
			d time.Duration
		}{{gpio.High, 5 * time.Millisecond}, {gpio.Low, 20 * time.Millisecond}, {gpio.High, 150 * time.Millisecond}} {
			if err := d.rst.Out(step.l); err != nil {
				return fmt.Errorf("st7789: reset: %w", err)
			}
			d.sleep(step.d)
		}
	}

	seq := []struct {
		cmd   byte
		data  []byte
		delay time.Duration
	}{
		{cmdSWRESET, nil, 150 * time.Millisecond},
		{cmdSLPOUT, nil, 10 * time.Millisecond},
		{cmdCOLMOD, []byte{colorMode16bit}, 0},
		{0xB2, []byte{0x0C, 0x0C, 0x00, 0x33, 0x33}, 0}, // porch
		{0xB7, []byte{0x35}, 0},                         // gate
		{0xBB, []byte{0x19}, 0},                         // VCOM
		{0xC0, []byte{0x2C}, 0},                         // LCM
		{0xC2, []byte{0x01}, 0},                         // VDV/VRH enable
		{0xC3, []byte{0x12}, 0},                         // VRH
		{0xC4, []byte{0x20}, 0},                         // VDV
		{0xC6, []byte{0x0F}, 0},                         // frame rate
		{0xD0, []byte{0xA4, 0xA1}, 0},                   // power
		{0xE0, []byte{0xD0, 0x04, 0x0D, 0x11, 0x13, 0x2B, 0x3F, 0x54, 0x4C, 0x18, 0x0D, 0x0B, 0x1F, 0x23}, 0},
		{0xE1, []byte{0xD0, 0x04, 0x0C, 0x11, 0x13, 0x2C, 0x3F, 0x44, 0x51, 0x2F, 0x1F, 0x1F, 0x20, 0x23}, 0},
	}
	for _, s := range seq {
		if err := d.command(s.cmd, s.data...); err != nil {
			return err
		}
		if s.delay > 0 {
			d.sleep(s.delay)
		}
	}
	if err := d.SetRotation(rotation); err != nil {
		return err
	}
	if err := d.command(cmdINVOFF); err != nil {
		return err
	}
	if err := d.command(cmdNORON); err != nil {
		return err
	}
	d.sleep(10 * time.Millisecond)
	if err := d.command(cmdDISPON); err != nil {
		return err
	}
	d.sleep(10 * time.Millisecond)
	return d.FillScreen(Black)
}

// SetRotation sets the memory access order. Odd rotations swap the
// logical width and height.
func (d *ST7789) SetRotation(rotation int) error {
	var m byte
	switch rotation % 4 {
	case 0:
		m = madctlMX | madctlMY | madctlRGB
	case 1:
		m = madctlMY | madctlMV | madctlRGB
	case 2:
		m = madctlRGB
	case 3:
		m = madctlMX | madctlMV | madctlRGB
	}
	if (rotation%2 == 1) != (d.rotation%2 == 1) {
		d.width, d.height = d.height, d.width
	}
	d.rotation = rotation % 4
	return d.command(cmdMADCTL, m)
}

// Invert toggles colour inversion.
func (d *ST7789) Invert(on bool) error {
	if on {
		return d.command(cmdINVON)
	}
	return d.command(cmdINVOFF)
}

// Sleep enters or leaves sleep mode.
func (d *ST7789) Sleep(on bool) error {
	cmd := byte(cmdSLPOUT)
	if on {
		cmd = cmdSLPIN
	}
	if err := d.command(cmd); err != nil {
		return err
	}
	d.sleep(120 * time.Millisecond)
	return nil
}

// Bounds returns the logical drawing area for the current rotation.
func (d *ST7789) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.width, d.height)
}

// SetWindow selects the inclusive rectangle (x0,y0)-(x1,y1) and starts a
// memory write. Pixels sent afterwards fill it row by row.
func (d *ST7789) SetWindow(x0, y0, x1, y1 int) error {
	x0 += d.xShift
	x1 += d.xShift
	y0 += d.yShift
	y1 += d.yShift
	if err := d.command(cmdCASET, byte(x0>>8), byte(x0), byte(x1>>8), byte(x1)); err != nil {
		return err
	}
	if err := d.command(cmdRASET, byte(y0>>8), byte(y0), byte(y1>>8), byte(y1)); err != nil {
		return err
	}
	return d.command(cmdRAMWR)
}

// StreamPixels sends pixels into the current window, big-endian RGB565.
func (d *ST7789) StreamPixels(px []Color) error {
	if err := d.dc.Out(gpio.High); err != nil {
		return fmt.Errorf("st7789: DC: %w", err)
	}
	for len(px) > 0 {
		n := min(len(px), len(d.buf)/2)
		for i, c := range px[:n] {
			d.buf[2*i] = byte(c >> 8)
			d.buf[2*i+1] = byte(c)
		}
		if err := d.conn.Tx(d.buf[:2*n], nil); err != nil {
			return fmt.Errorf("st7789: pixels: %w", err)
		}
		px = px[n:]
	}
	return nil
}

// FillRect paints a rectangle, clipped to the screen.
func (d *ST7789) FillRect(x, y, w, h int, c Color) error {
	r := image.Rect(x, y, x+w, y+h).Intersect(d.Bounds())
	if r.Empty() {
		return nil
	}
	if err := d.SetWindow(r.Min.X, r.Min.Y, r.Max.X-1, r.Max.Y-1); err != nil {
		return err
	}
	if err := d.dc.Out(gpio.High); err != nil {
		return fmt.Errorf("st7789: DC: %w", err)
	}
	chunk := d.buf[:len(d.buf)&^1]
	for i := 0; i < len(chunk); i += 2 {
		chunk[i], chunk[i+1] = byte(c>>8), byte(c)
	}
	remaining := 2 * r.Dx() * r.Dy()
	for remaining > 0 {
		n := min(remaining, len(chunk))
		if err := d.conn.Tx(chunk[:n], nil); err != nil {
			return fmt.Errorf("st7789: fill: %w", err)
		}
		remaining -= n
	}
	return nil
}

// FillScreen paints the whole screen.
func (d *ST7789) FillScreen(c Color) error {
	return d.FillRect(0, 0, d.width, d.height, c)
}

// DrawImage copies img to the screen with its top-left corner at (x, y).
func (d *ST7789) DrawImage(x, y int, img image.Image) error {
	b := img.Bounds()
	dst := image.Rect(x, y, x+b.Dx(), y+b.Dy()).Intersect(d.Bounds())
	if dst.Empty() {
		return nil
	}
	if err := d.SetWindow(dst.Min.X, dst.Min.Y, dst.Max.X-1, dst.Max.Y-1); err != nil {
		return err
	}
	px := make([]Color, 0, dst.Dx()*dst.Dy())
	for py := dst.Min.Y; py < dst.Max.Y; py++ {
		for pxx := dst.Min.X; pxx < dst.Max.X; pxx++ {
			px = append(px, FromColor(img.At(b.Min.X+pxx-x, b.Min.Y+py-y)))
		}
	}
	return d.StreamPixels(px)
}

// Close releases the SPI port.
func (d *ST7789) Close() error {
	if d.port == nil {
		return nil
	}
	return d.port.Close()
}

func (d *ST7789) command(cmd byte, data ...byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return fmt.Errorf("st7789: DC: %w", err)
	}
	if err := d.conn.Tx([]byte{cmd}, nil); err != nil {
		return fmt.Errorf("st7789: command 0x%02X: %w", cmd, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := d.dc.Out(gpio.High); err != nil {
		return fmt.Errorf("st7789: DC: %w", err)
	}
	if err := d.conn.Tx(data, nil); err != nil {
		return fmt.Errorf("st7789: data for 0x%02X: %w", cmd, err)
	}
	return nil
}
