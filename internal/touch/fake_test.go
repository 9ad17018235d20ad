package touch

import (
	"errors"
	"time"
)

// fakePanel answers exchanges the way an XPT2046 would, with the 12-bit
// value shifted into the top of the frame.
type fakePanel struct {
	z1, z2 uint16
	xs, ys []uint16
	xi, yi int

	calls   map[byte]int
	failCmd byte
	failErr error
}

func newFakePanel() *fakePanel {
	return &fakePanel{calls: map[byte]int{}}
}

func (f *fakePanel) Exchange(cmd byte) (uint16, error) {
	f.calls[cmd]++
	if f.failErr != nil && cmd == f.failCmd {
		return 0, f.failErr
	}
	switch cmd {
	case CmdZ1:
		return f.z1 << 3, nil
	case CmdZ2:
		return f.z2 << 3, nil
	case CmdX:
		v := f.xs[f.xi%len(f.xs)]
		f.xi++
		return v << 3, nil
	case CmdY:
		v := f.ys[f.yi%len(f.ys)]
		f.yi++
		return v << 3, nil
	}
	return 0, errors.New("unknown command")
}

// press holds the panel at a single raw position with firm pressure.
func (f *fakePanel) press(x, y uint16) {
	f.z1, f.z2 = 100, 700
	f.xs, f.ys = []uint16{x}, []uint16{y}
	f.xi, f.yi = 0, 0
}

func (f *fakePanel) release() {
	f.z1, f.z2 = 100, 150
}

func (f *fakePanel) total() int {
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// fakeClock only advances when slept on.
type fakeClock struct {
	now   time.Time
	slept time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.now = c.now.Add(d)
	c.slept += d
}

type fakeLine struct{ asserted bool }

func (l *fakeLine) Asserted() bool { return l.asserted }
