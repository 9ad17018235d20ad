// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/relabs-tech/resistive_touch/internal/touch"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

const (
	calibrationInset    = 10
	calibrationHold     = time.Second
	calibrationInterval = 20 * time.Millisecond
)

// WebSocket message types
type WSMessage struct {
	Action string `json:"action"` // start, cancel
}

type WSResponse struct {
	Type     string         `json:"type"` // target, progress, captured, complete, cancelled, error
	Target   *touch.Target  `json:"target,omitempty"`
	Index    int            `json:"index"`
	Total    int            `json:"total,omitempty"`
	Progress float64        `json:"progress,omitempty"`
	Capture  *touch.Capture `json:"capture,omitempty"`
	Profile  *touch.Profile `json:"profile,omitempty"`
	Config   []string       `json:"config,omitempty"`
	Message  string         `json:"message,omitempty"`
}

// Calibrator runs guided calibration sessions against a shared panel.
type Calibrator struct {
	panel    *Panel
	hold     time.Duration
	interval time.Duration
	now      func() time.Time
}

func NewCalibrator(panel *Panel) *Calibrator {
	return &Calibrator{
		panel:    panel,
		hold:     calibrationHold,
		interval: calibrationInterval,
		now:      time.Now,
	}
}

// calibrationSession is one websocket client. Writes come from both the
// read loop and the capture goroutine.
type calibrationSession struct {
	cal     *Calibrator
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// HandleCalibrationWS handles the WebSocket connection for calibration.
// The client sends {"action":"start"} to begin and {"action":"cancel"} to
// abort; the server walks it through the targets and applies the result.
func (c *Calibrator) HandleCalibrationWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("calibration: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	s := &calibrationSession{cal: c, conn: conn}

	var (
		wg     sync.WaitGroup
		cancel context.CancelFunc = func() {}
	)
	stop := func() {
		cancel()
		wg.Wait()
	}
	defer stop()

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			log.Printf("calibration: websocket read error: %v", err)
			return
		}

		switch msg.Action {
		case "start":
			stop()
			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.run(ctx)
			}()
			log.Printf("calibration: session started")

		case "cancel":
			stop()
			s.send(WSResponse{Type: "cancelled"})
			log.Printf("calibration: cancelled by user")

		default:
			s.sendError(fmt.Sprintf("unknown action %q", msg.Action))
		}
	}
}

func (s *calibrationSession) run(ctx context.Context) {
	width, height := s.cal.panel.ScreenSize()
	targets := touch.CalibrationTargets(width, height, calibrationInset)
	cs := touch.NewCaptureSession(targets, s.cal.hold)
	s.sendTarget(cs, len(targets))

	ticker := time.NewTicker(s.cal.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		raw, touched, err := s.cal.panel.ReadRaw()
		if err != nil {
			s.sendError(err.Error())
			return
		}

		held, captured := cs.Feed(raw, touched, s.cal.now())
		if !captured {
			if held > 0 {
				s.send(WSResponse{Type: "progress", Progress: 100 * float64(held) / float64(s.cal.hold)})
			}
			continue
		}

		caps := cs.Captures()
		last := caps[len(caps)-1]
		s.send(WSResponse{Type: "captured", Capture: &last, Index: len(caps) - 1})

		if cs.Done() {
			s.complete(cs)
			return
		}
		s.sendTarget(cs, len(targets))
	}
}

func (s *calibrationSession) complete(cs *touch.CaptureSession) {
	prof, err := cs.Profile()
	if err != nil {
		s.sendError(err.Error())
		return
	}
	if err := s.cal.panel.Apply(prof); err != nil {
		s.sendError(err.Error())
		return
	}

	lines := ProfileConfigLines(prof)
	log.Printf("calibration: applied %+v; add to the config file to persist:", prof)
	for _, l := range lines {
		log.Printf("  %s", l)
	}
	s.send(WSResponse{Type: "complete", Profile: &prof, Config: lines})
}

// ProfileConfigLines renders prof as config file entries.
func ProfileConfigLines(p touch.Profile) []string {
	return []string{
		fmt.Sprintf("TOUCH_X_MIN=%d", p.XMin),
		fmt.Sprintf("TOUCH_X_MAX=%d", p.XMax),
		fmt.Sprintf("TOUCH_Y_MIN=%d", p.YMin),
		fmt.Sprintf("TOUCH_Y_MAX=%d", p.YMax),
	}
}

func (s *calibrationSession) sendTarget(cs *touch.CaptureSession, total int) {
	t, idx, ok := cs.Current()
	if !ok {
		return
	}
	s.send(WSResponse{
		Type:   "target",
		Target: &t,
		Index:  idx,
		Total:  total,
	})
}

func (s *calibrationSession) sendError(message string) {
	s.send(WSResponse{
		Type:    "error",
		Message: message,
	})
}

func (s *calibrationSession) send(resp WSResponse) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(resp); err != nil {
		log.Printf("calibration: websocket write error: %v", err)
	}
}
