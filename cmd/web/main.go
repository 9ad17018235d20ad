// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/resistive_touch/internal/app"
	"github.com/relabs-tech/resistive_touch/internal/config"
)

func main() {
	configPath := flag.String("config", "touch_config.txt", "path to the config file")
	flag.Parse()

	log.Println("starting resistive-touch web server (MQTT subscriber)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	log.Println("Note: touch data requires the producer to be running (sudo ./touch_producer)")

	if err := app.RunWeb(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
