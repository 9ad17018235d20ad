// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"time"

	"github.com/relabs-tech/resistive_touch/internal/event"
	"github.com/relabs-tech/resistive_touch/internal/sensors"
	"github.com/relabs-tech/resistive_touch/internal/touch"
)

// RunMockConsole runs the full pipeline over a simulated panel and prints
// every result, so the filters can be watched without hardware.
func RunMockConsole() error {
	cfg := touch.DefaultConfig()
	cfg.ExchangeGap = 0
	cfg.BatchSettle = 0
	cfg.StartupWait = 0

	ctrl, err := touch.New(sensors.NewMockPanel(cfg.Profile, 15), cfg)
	if err != nil {
		return err
	}
	ctrl.Init()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	touched := false
	for t := range ticker.C {
		p, ok, err := ctrl.Read()
		if err != nil {
			return err
		}
		state := ctrl.State()
		release := touched && !ok && state != touch.Rejecting
		if ok || release {
			fmt.Println(formatTouch(event.NewTouch(t, p, ok, state)))
		}
		if ok {
			touched = true
		} else if release {
			touched = false
		}
	}
	return nil
}
