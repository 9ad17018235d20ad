// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// ./cmd/calibration
//
// Guided calibration for the resistive touch panel.
//
// The panel is asked for five targets (four corners inset by 10 px, then
// the centre). Each target must be held for one second; lifting the finger
// early restarts it. The raw bounding box of the corners becomes the new
// profile, applied immediately and printed as TOUCH_X_MIN... lines to copy
// into the config file. Nothing is written to disk.
//
// Run:
//
//	sudo ./calibration            # browser UI on CALIBRATION_SERVER_PORT
//	sudo ./calibration -cli       # terminal prompts
//
// The tool owns the touch bus, so stop touch_producer first.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/relabs-tech/resistive_touch/internal/app"
	"github.com/relabs-tech/resistive_touch/internal/config"
)

func main() {
	configPath := flag.String("config", "touch_config.txt", "path to the config file")
	cli := flag.Bool("cli", false, "prompt on the terminal instead of serving the web UI")
	flag.Parse()

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var err error
	if *cli {
		err = app.RunCalibrationCLI(os.Stdout)
	} else {
		err = app.RunCalibrationServer()
	}
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
