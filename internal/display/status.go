package display

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"
)

// statusLines is how many 13px rows fit on a 128x64 OLED.
const statusLines = 4

// Status is the small SSD1306 OLED showing pipeline state next to the
// touch panel.
type Status struct {
	bus i2c.BusCloser
	dev *ssd1306.Dev
}

// NewStatus opens the OLED on I2C bus busName ("" for the default bus).
func NewStatus(busName string) (*Status, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus: %w", err)
	}

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("failed to initialize status display: %w", err)
	}
	return &Status{bus: bus, dev: dev}, nil
}

// Show replaces the screen contents with up to four lines of text.
func (s *Status) Show(lines ...string) error {
	img := RenderStatus(lines...)
	return s.dev.Draw(s.dev.Bounds(), img, image.Point{})
}

// Close blanks the OLED and releases the bus.
func (s *Status) Close() error {
	if err := s.dev.Halt(); err != nil {
		s.bus.Close()
		return err
	}
	return s.bus.Close()
}

// RenderStatus lays out lines on a 128x64 monochrome frame.
func RenderStatus(lines ...string) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: face,
	}

	for i, line := range lines {
		if i == statusLines {
			break
		}
		drawer.Dot = fixed.P(0, 13*(i+1))
		drawer.DrawBytes([]byte(line))
	}
	return img
}
