package app

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/relabs-tech/resistive_touch/internal/config"
	"github.com/relabs-tech/resistive_touch/internal/event"
	"github.com/relabs-tech/resistive_touch/internal/sensors"
	"github.com/relabs-tech/resistive_touch/internal/touch"
	"github.com/relabs-tech/resistive_touch/internal/uinput"
)

const statsInterval = time.Second

// pollSource is the controller surface the producer needs.
type pollSource interface {
	Read() (touch.Point, bool, error)
	State() touch.State
	Stats() touch.Stats
	Profile() touch.Profile
}

type publisher interface {
	Publish(topic string, retained bool, v any) error
}

// touchSink receives accepted points, e.g. a virtual input device.
type touchSink interface {
	Touch(x, y int) error
	Release() error
}

// producer turns controller reads into published events. Points are
// published on every accepted read; a release is published once.
type producer struct {
	src        pollSource
	pub        publisher
	sink       touchSink // may be nil
	topic      string
	statsTopic string

	touched   bool
	lastStats time.Time
}

func (p *producer) tick(t time.Time) error {
	pt, ok, err := p.src.Read()
	if err != nil {
		return err
	}
	state := p.src.State()

	// A rejected frame with the finger still down is not a lift.
	release := p.touched && !ok && state != touch.Rejecting

	if ok || release {
		ev := event.NewTouch(t, pt, ok, state)
		if err := p.pub.Publish(p.topic, false, ev); err != nil {
			log.Printf("producer: %v", err)
		}
	}
	if p.sink != nil {
		var serr error
		if ok {
			serr = p.sink.Touch(pt.X, pt.Y)
		} else if release {
			serr = p.sink.Release()
		}
		if serr != nil {
			log.Printf("producer: virtual input: %v", serr)
		}
	}
	if ok {
		p.touched = true
	} else if release {
		p.touched = false
	}

	if p.statsTopic != "" && t.Sub(p.lastStats) >= statsInterval {
		p.lastStats = t
		st := event.Stats{
			Time:    t,
			State:   state.String(),
			Counts:  p.src.Stats(),
			Profile: p.src.Profile(),
		}
		if err := p.pub.Publish(p.statsTopic, true, st); err != nil {
			log.Printf("producer: %v", err)
		}
	}
	return nil
}

// RunTouchProducer polls the touch controller and publishes filtered
// points to MQTT, optionally mirroring them to a virtual touchscreen.
func RunTouchProducer() error {
	cfg := config.Get()

	dev, err := sensors.NewTouchDevice(cfg)
	if err != nil {
		return fmt.Errorf("touch device: %w", err)
	}
	defer dev.Close()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDProducer)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	p := &producer{
		src:        dev,
		pub:        mqttPublisher{client: client},
		topic:      cfg.TopicTouch,
		statsTopic: cfg.TopicTouchStats,
	}

	if cfg.UinputEnabled {
		vdev, err := uinput.New(cfg.UinputDeviceName, cfg.ScreenWidth, cfg.ScreenHeight)
		if err != nil {
			return fmt.Errorf("virtual input: %w", err)
		}
		defer vdev.Close()
		p.sink = vdev
		log.Printf("producer: virtual touchscreen %q created", cfg.UinputDeviceName)
	}

	log.Printf("producer: polling every %s, publishing to %s", cfg.PollInterval(), cfg.TopicTouch)

	ticker := time.NewTicker(cfg.PollInterval())
	defer ticker.Stop()

	for t := range ticker.C {
		if err := p.tick(t); err != nil {
			if errors.Is(err, touch.ErrTransport) {
				log.Printf("producer: %v", err)
				continue
			}
			return err
		}
	}
	return nil
}
