// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/relabs-tech/resistive_touch/internal/config"
	"github.com/relabs-tech/resistive_touch/internal/sensors"
	"github.com/relabs-tech/resistive_touch/internal/touch"
)

// RunCalibrationServer owns the touch bus and serves guided calibration
// and the live raw view to the browser.
func RunCalibrationServer() error {
	cfg := config.Get()

	dev, err := sensors.NewTouchDevice(cfg)
	if err != nil {
		return fmt.Errorf("touch device: %w", err)
	}
	defer dev.Close()

	panel := NewPanel(dev)
	cal := NewCalibrator(panel)
	live := NewLiveView(panel)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/calibration", cal.HandleCalibrationWS)
	mux.HandleFunc("/ws/live", live.HandleLiveWS)
	mux.HandleFunc("/api/raw", live.HandleRaw)
	mux.HandleFunc("/api/profile", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, panel.Profile())
	})
	mux.Handle("/", http.FileServer(http.Dir("web")))

	addr := fmt.Sprintf(":%d", cfg.CalibrationServerPort)
	log.Printf("calibration server listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

// RunCalibrationCLI walks through the targets on the terminal and prints
// the resulting config lines to out.
func RunCalibrationCLI(out io.Writer) error {
	cfg := config.Get()

	dev, err := sensors.NewTouchDevice(cfg)
	if err != nil {
		return fmt.Errorf("touch device: %w", err)
	}
	defer dev.Close()

	prof, err := captureProfile(NewPanel(dev), out, calibrationHold, calibrationInterval, time.Now)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "\nAdd these lines to the config file:")
	for _, l := range ProfileConfigLines(prof) {
		fmt.Fprintln(out, l)
	}
	return nil
}

func captureProfile(panel *Panel, out io.Writer, hold, interval time.Duration, now func() time.Time) (touch.Profile, error) {
	width, height := panel.ScreenSize()
	cs := touch.NewCaptureSession(touch.CalibrationTargets(width, height, calibrationInset), hold)

	prompted := -1
	for !cs.Done() {
		if t, idx, ok := cs.Current(); ok && idx != prompted {
			fmt.Fprintf(out, "Touch and hold %s (%d,%d)...\n", t.Label, t.X, t.Y)
			prompted = idx
		}

		raw, touched, err := panel.ReadRaw()
		if err != nil {
			return touch.Profile{}, err
		}
		if _, captured := cs.Feed(raw, touched, now()); captured {
			caps := cs.Captures()
			c := caps[len(caps)-1]
			fmt.Fprintf(out, "  raw %d,%d (%d samples), release\n", c.Raw.X, c.Raw.Y, c.Samples)
		}
		time.Sleep(interval)
	}

	prof, err := cs.Profile()
	if err != nil {
		return touch.Profile{}, err
	}
	if err := panel.Apply(prof); err != nil {
		return touch.Profile{}, err
	}
	return prof, nil
}
