// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package uinput

// Ref: input-event-codes.h
const (
	evSyn = 0x00
	evKey = 0x01
	evAbs = 0x03

	synReport = 0x00

	btnTouch = 0x14a

	absX   = 0x00
	absY   = 0x01
	absCnt = 0x40

	inputPropDirect = 0x01

	busVirtual = 0x06
)

// Ref: ioctl.h
const (
	iocNone  = 0x0
	iocWrite = 0x1

	iocNrshift   = 0
	iocTypeshift = 8
	iocSizeshift = 16
	iocDirshift  = 30
)

func ioc(dir, t, nr, size uint) uint {
	return dir<<iocDirshift | t<<iocTypeshift | nr<<iocNrshift | size<<iocSizeshift
}

// Ref: uinput.h
var (
	uiSetEvBit   = ioc(iocWrite, 'U', 100, 4)
	uiSetKeyBit  = ioc(iocWrite, 'U', 101, 4)
	uiSetAbsBit  = ioc(iocWrite, 'U', 103, 4)
	uiSetPropBit = ioc(iocWrite, 'U', 110, 4)
	uiDevCreate  = ioc(iocNone, 'U', 1, 0)
	uiDevDestroy = ioc(iocNone, 'U', 2, 0)
)

const maxNameSize = 80

type inputID struct {
	BusType uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

// userDev is struct uinput_user_dev, the legacy setup record written
// before UI_DEV_CREATE.
type userDev struct {
	Name       [maxNameSize]byte
	ID         inputID
	EffectsMax uint32
	AbsMax     [absCnt]int32
	AbsMin     [absCnt]int32
	AbsFuzz    [absCnt]int32
	AbsFlat    [absCnt]int32
}

// inputEvent is struct input_event on 64-bit kernels. The kernel stamps
// injected events itself, so the time fields are left zero.
type inputEvent struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

// inputEvent32 is struct input_event where timeval holds 32-bit fields.
type inputEvent32 struct {
	Sec   int32
	Usec  int32
	Type  uint16
	Code  uint16
	Value int32
}
