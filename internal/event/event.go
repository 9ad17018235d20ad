package event

import (
	"time"

	"github.com/relabs-tech/resistive_touch/internal/touch"
)

// Touch is one poll result as published on the touch topic.
type Touch struct {
	Time    time.Time `json:"time"`
	Touched bool      `json:"touched"`
	X       int       `json:"x"` // screen pixels, valid when Touched
	Y       int       `json:"y"`
	State   string    `json:"state"` // "idle", "tracking" or "rejecting"
}

// NewTouch builds the message for a Read result.
func NewTouch(t time.Time, p touch.Point, ok bool, state touch.State) Touch {
	ev := Touch{Time: t, Touched: ok, State: state.String()}
	if ok {
		ev.X, ev.Y = p.X, p.Y
	}
	return ev
}

// Point returns the screen coordinate carried by the message.
func (e Touch) Point() touch.Point {
	return touch.Point{X: e.X, Y: e.Y}
}

// Stats is the periodic pipeline counter snapshot.
type Stats struct {
	Time    time.Time     `json:"time"`
	State   string        `json:"state"`
	Counts  touch.Stats   `json:"counts"`
	Profile touch.Profile `json:"profile"`
}

// Raw is one unfiltered reading of every channel, used by the live
// diagnostic view.
type Raw struct {
	Time      time.Time `json:"time"`
	X         uint16    `json:"x"`
	Y         uint16    `json:"y"`
	Z1        uint16    `json:"z1"`
	Z2        uint16    `json:"z2"`
	Pressure  int       `json:"pressure"`
	Threshold int       `json:"threshold"`
	Pressed   bool      `json:"pressed"`
	XInRange  bool      `json:"x_in_range"` // inside the active calibration bounds
	YInRange  bool      `json:"y_in_range"`
}

// NewRaw derives the pressure and range fields from s.
func NewRaw(t time.Time, s touch.RawSample, threshold int, prof touch.Profile) Raw {
	return Raw{
		Time:      t,
		X:         s.X,
		Y:         s.Y,
		Z1:        s.Z1,
		Z2:        s.Z2,
		Pressure:  s.Pressure(),
		Threshold: threshold,
		Pressed:   touch.IsPressed(s.Z1, s.Z2, threshold),
		XInRange:  int(s.X) >= prof.XMin && int(s.X) <= prof.XMax,
		YInRange:  int(s.Y) >= prof.YMin && int(s.Y) <= prof.YMax,
	}
}
