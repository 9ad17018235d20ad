package app

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/resistive_touch/internal/config"
	"github.com/relabs-tech/resistive_touch/internal/event"
)

func formatTouch(ev event.Touch) string {
	if !ev.Touched {
		return fmt.Sprintf("[TOUCH] released            state=%s", ev.State)
	}
	return fmt.Sprintf("[TOUCH] X=%4d  Y=%4d       state=%s", ev.X, ev.Y, ev.State)
}

func formatStats(st event.Stats) string {
	c := st.Counts
	return fmt.Sprintf(
		"[STATS] reads=%d accepted=%d unreliable=%d jumps=%d resets=%d  cal=[%d..%d]x[%d..%d]",
		c.Reads, c.Accepted, c.Unreliable, c.Jumps, c.Resets,
		st.Profile.XMin, st.Profile.XMax, st.Profile.YMin, st.Profile.YMax,
	)
}

func RunConsoleMQTT() error {
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}

	if err := subscribeJSON(client, cfg.TopicTouch, "console", func(ev event.Touch) {
		fmt.Println(formatTouch(ev))
	}); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicTouchStats, "console", func(st event.Stats) {
		fmt.Println(formatStats(st))
	}); err != nil {
		return err
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
