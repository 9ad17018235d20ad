package app

import (
	"errors"
	"sync"
	"time"

	"github.com/relabs-tech/resistive_touch/internal/touch"
)

// pressCycle is the number of reads per scripted press: five touched reads
// followed by one release.
const pressCycle = 6

// fakePanel presses each of corners in turn.
type fakePanel struct {
	mu       sync.Mutex
	corners  []touch.RawPoint
	calls    int
	never    bool // never report contact
	rawErr   error
	sample   touch.RawSample
	applied  *touch.Profile
	profile  touch.Profile
	width    int
	height   int
	sampleNo int
}

func (f *fakePanel) ReadRaw() (touch.RawPoint, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rawErr != nil {
		return touch.RawPoint{}, false, f.rawErr
	}
	k := f.calls
	f.calls++
	if f.never || k%pressCycle == pressCycle-1 {
		return touch.RawPoint{}, false, nil
	}
	return f.corners[(k/pressCycle)%len(f.corners)], true, nil
}

func (f *fakePanel) ReadSample() (touch.RawSample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sampleNo++
	if f.rawErr != nil {
		return touch.RawSample{}, f.rawErr
	}
	return f.sample, nil
}

func (f *fakePanel) PressureThreshold() int { return 500 }

func (f *fakePanel) Calibrate(xMin, yMin, xMax, yMax int) error {
	p := touch.Profile{XMin: xMin, XMax: xMax, YMin: yMin, YMax: yMax}
	if err := p.Validate(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = &p
	f.profile = p
	return nil
}

func (f *fakePanel) Profile() touch.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profile
}

func (f *fakePanel) Config() touch.Config {
	cfg := touch.DefaultConfig()
	cfg.Width, cfg.Height = f.width, f.height
	return cfg
}

func (f *fakePanel) appliedProfile() *touch.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.applied
}

// stepClock advances by step on every call.
type stepClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(c.step)
	return c.t
}

var errBus = errors.New("bus down")
