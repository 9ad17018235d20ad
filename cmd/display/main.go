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

	log.Println("starting resistive-touch display")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunDisplay(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
