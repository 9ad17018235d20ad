// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package uinput exposes filtered touch points as a Linux virtual
// single-touch touchscreen, so desktop software sees the panel as a
// regular input device.
package uinput

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/lunixbochs/struc"
	"golang.org/x/sys/unix"
)

// Device is an open virtual touchscreen.
type Device struct {
	fd      int
	w       io.Writer
	touched bool
	is32    bool
}

type fdWriter int

func (f fdWriter) Write(p []byte) (int, error) { return unix.Write(int(f), p) }

// New creates a touchscreen named name reporting ABS_X in [0, width) and
// ABS_Y in [0, height).
func New(name string, width, height int) (*Device, error) {
	if len(name) >= maxNameSize {
		return nil, fmt.Errorf("uinput: name %q too long", name)
	}
	fd, err := unix.Open("/dev/uinput", unix.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("uinput: open: %w", err)
	}
	fail := func(step string, err error) (*Device, error) {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("uinput: %s: %w", step, err)
	}

	setup := []struct {
		req uint
		val int
	}{
		{uiSetEvBit, evKey},
		{uiSetKeyBit, btnTouch},
		{uiSetEvBit, evAbs},
		{uiSetAbsBit, absX},
		{uiSetAbsBit, absY},
		{uiSetPropBit, inputPropDirect},
	}
	for _, s := range setup {
		if err := unix.IoctlSetInt(fd, s.req, s.val); err != nil {
			return fail(fmt.Sprintf("ioctl 0x%08X", s.req), err)
		}
	}

	rec, err := packUserDev(name, width, height)
	if err != nil {
		return fail("pack setup", err)
	}
	if _, err := unix.Write(fd, rec); err != nil {
		return fail("write setup", err)
	}
	if err := unix.IoctlSetInt(fd, uiDevCreate, 0); err != nil {
		return fail("create", err)
	}

	// udev needs a moment to create the event node before events are
	// worth sending.
	time.Sleep(200 * time.Millisecond)

	return &Device{fd: fd, w: fdWriter(fd), is32: strconv.IntSize == 32}, nil
}

// Touch reports contact at (x, y).
func (d *Device) Touch(x, y int) error {
	evs := []inputEvent{
		{Type: evAbs, Code: absX, Value: int32(x)},
		{Type: evAbs, Code: absY, Value: int32(y)},
	}
	if !d.touched {
		evs = append(evs, inputEvent{Type: evKey, Code: btnTouch, Value: 1})
	}
	evs = append(evs, inputEvent{Type: evSyn, Code: synReport})
	if err := d.emit(evs); err != nil {
		return err
	}
	d.touched = true
	return nil
}

// Release reports the end of contact. It is a no-op when not touched.
func (d *Device) Release() error {
	if !d.touched {
		return nil
	}
	err := d.emit([]inputEvent{
		{Type: evKey, Code: btnTouch, Value: 0},
		{Type: evSyn, Code: synReport},
	})
	if err != nil {
		return err
	}
	d.touched = false
	return nil
}

// Close releases any contact, destroys the device and closes it.
func (d *Device) Close() error {
	relErr := d.Release()
	if d.fd <= 0 {
		return relErr
	}
	err := unix.IoctlSetInt(d.fd, uiDevDestroy, 0)
	return errors.Join(relErr, err, unix.Close(d.fd))
}

func (d *Device) emit(evs []inputEvent) error {
	buf, err := packEvents(evs, d.is32)
	if err != nil {
		return fmt.Errorf("uinput: pack: %w", err)
	}
	if _, err := d.w.Write(buf); err != nil {
		return fmt.Errorf("uinput: write: %w", err)
	}
	return nil
}

func packUserDev(name string, width, height int) ([]byte, error) {
	dev := userDev{
		ID: inputID{BusType: busVirtual, Vendor: 0x2046, Product: 0x0001, Version: 1},
	}
	copy(dev.Name[:], name)
	dev.AbsMax[absX] = int32(width - 1)
	dev.AbsMax[absY] = int32(height - 1)

	var buf bytes.Buffer
	if err := struc.PackWithOptions(&buf, &dev, &struc.Options{Order: binary.LittleEndian}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func packEvents(evs []inputEvent, is32 bool) ([]byte, error) {
	var buf bytes.Buffer
	opts := &struc.Options{Order: binary.LittleEndian}
	for i := range evs {
		var err error
		if is32 {
			ev := inputEvent32{Type: evs[i].Type, Code: evs[i].Code, Value: evs[i].Value}
			err = struc.PackWithOptions(&buf, &ev, opts)
		} else {
			err = struc.PackWithOptions(&buf, &evs[i], opts)
		}
		if err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
