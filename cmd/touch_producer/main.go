// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// touch_producer polls the XPT2046 and publishes filtered touch points to
// MQTT. Needs access to the SPI device (and /dev/uinput when
// UINPUT_ENABLED=true), so it usually runs with sudo.
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

	log.Println("starting resistive-touch producer")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunTouchProducer(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
