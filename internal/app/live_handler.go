// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/relabs-tech/resistive_touch/internal/event"
)

const liveInterval = 100 * time.Millisecond

// LiveView streams unfiltered channel readings for wiring and threshold
// checks.
type LiveView struct {
	panel    *Panel
	interval time.Duration
	now      func() time.Time
}

func NewLiveView(panel *Panel) *LiveView {
	return &LiveView{panel: panel, interval: liveInterval, now: time.Now}
}

func (v *LiveView) sample() (event.Raw, error) {
	s, threshold, err := v.panel.ReadSample()
	if err != nil {
		return event.Raw{}, err
	}
	return event.NewRaw(v.now(), s, threshold, v.panel.Profile()), nil
}

// HandleRaw returns a single reading.
func (v *LiveView) HandleRaw(w http.ResponseWriter, r *http.Request) {
	raw, err := v.sample()
	if err != nil {
		log.Printf("live: read error: %v", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, raw)
}

// HandleLiveWS pushes a reading every interval until the client leaves.
func (v *LiveView) HandleLiveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("live: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	// Reader goroutine only detects the close.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("live: websocket error: %v", err)
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(v.interval)
	defer ticker.Stop()

	for {
		select {
		case <-gone:
			return
		case <-ticker.C:
		}

		raw, err := v.sample()
		if err != nil {
			if werr := conn.WriteJSON(WSResponse{Type: "error", Message: err.Error()}); werr != nil {
				log.Printf("live: websocket write error: %v", werr)
				return
			}
			continue
		}
		if err := conn.WriteJSON(raw); err != nil {
			log.Printf("live: websocket write error: %v", err)
			return
		}
	}
}
