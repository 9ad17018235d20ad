package app

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/relabs-tech/resistive_touch/internal/config"
	"github.com/relabs-tech/resistive_touch/internal/display"
	"github.com/relabs-tech/resistive_touch/internal/event"
	"github.com/relabs-tech/resistive_touch/internal/touch"
)

// touchDrawer is the panel-side view of the touch test.
type touchDrawer interface {
	Touch(p touch.Point) error
	Release() error
}

// DisplayData holds the latest data for the status page.
type DisplayData struct {
	mu sync.RWMutex

	lastTouch event.Touch
	haveTouch bool
	stats     event.Stats
	haveStats bool
}

func (d *DisplayData) setTouch(ev event.Touch) {
	d.mu.Lock()
	d.lastTouch, d.haveTouch = ev, true
	d.mu.Unlock()
}

func (d *DisplayData) setStats(st event.Stats) {
	d.mu.Lock()
	d.stats, d.haveStats = st, true
	d.mu.Unlock()
}

// statusLines formats the status page.
func (d *DisplayData) statusLines() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	lines := []string{"TOUCH"}
	if d.haveTouch && d.lastTouch.Touched {
		lines = append(lines, fmt.Sprintf("X:%d Y:%d", d.lastTouch.X, d.lastTouch.Y))
	} else {
		lines = append(lines, "released")
	}
	if !d.haveStats {
		return append(lines, "waiting for stats")
	}
	c := d.stats.Counts
	return append(lines,
		fmt.Sprintf("%s ok:%d", d.stats.State, c.Accepted),
		fmt.Sprintf("var:%d jmp:%d rst:%d", c.Unreliable, c.Jumps, c.Resets),
	)
}

// drawTouch renders one touch message on the panel.
func drawTouch(dr touchDrawer, ev event.Touch) error {
	if ev.Touched {
		return dr.Touch(ev.Point())
	}
	return dr.Release()
}

// RunDisplay draws received touch points on the ST7789 panel and, when a
// status bus is configured, pipeline state on the SSD1306 OLED.
func RunDisplay() error {
	cfg := config.Get()

	panel, err := display.NewST7789(cfg.DisplaySPIDevice, cfg.DisplaySPISpeedHz,
		cfg.DisplayDCPin, cfg.DisplayRSTPin, cfg.ScreenWidth, cfg.ScreenHeight)
	if err != nil {
		return fmt.Errorf("failed to open panel: %w", err)
	}
	defer panel.Close()

	if err := panel.Init(0); err != nil {
		return fmt.Errorf("failed to initialize panel: %w", err)
	}
	sketch, err := display.NewSketch(panel, display.Red)
	if err != nil {
		return err
	}
	log.Printf("display: panel %dx%d initialized", cfg.ScreenWidth, cfg.ScreenHeight)

	var status *display.Status
	if cfg.StatusI2CBus != "" {
		status, err = display.NewStatus(cfg.StatusI2CBus)
		if err != nil {
			return err
		}
		defer status.Close()
		if err := status.Show("TOUCH", "starting"); err != nil {
			log.Printf("display: error showing splash: %v", err)
		}
		log.Printf("display: status OLED on I2C bus %s", cfg.StatusI2CBus)
	}

	data := &DisplayData{}
	touches := make(chan event.Touch, 64)

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDisplay)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	if err := subscribeJSON(client, cfg.TopicTouch, "display", func(ev event.Touch) {
		data.setTouch(ev)
		select {
		case touches <- ev:
		default:
			log.Printf("display: dropping touch event, panel busy")
		}
	}); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicTouchStats, "display", data.setStats); err != nil {
		return err
	}

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for {
		select {
		case ev := <-touches:
			if err := drawTouch(sketch, ev); err != nil {
				log.Printf("display: draw error: %v", err)
			}
		case <-ticker.C:
			if status == nil {
				continue
			}
			if err := status.Show(data.statusLines()...); err != nil {
				log.Printf("display: status error: %v", err)
			}
		}
	}
}
