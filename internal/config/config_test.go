package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/resistive_touch/internal/touch"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "touch.conf")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "# only comments\n\n"))
	require.NoError(t, err)

	assert.Equal(t, TransportSPI, cfg.TouchTransport)
	assert.Equal(t, 30*time.Millisecond, cfg.PollInterval())
	assert.False(t, cfg.HasTouchLine())

	tc := cfg.TouchConfig()
	def := touch.DefaultConfig()
	assert.Equal(t, def.Profile, tc.Profile)
	assert.Equal(t, def.Samples, tc.Samples)
	assert.Equal(t, def.ExchangeGap, tc.ExchangeGap)
	assert.Equal(t, def.BatchSettle, tc.BatchSettle)
	assert.NoError(t, tc.Validate())
}

func TestLoadOverrides(t *testing.T) {
	body := `
TOUCH_TRANSPORT = serial
TOUCH_SERIAL_PORT=/dev/ttyUSB0
TOUCH_SAMPLES=9
TOUCH_SWAP_XY=true
TOUCH_INVERT_Y=1
TOUCH_X_MIN=200
TOUCH_X_MAX=3800
TOUCH_IRQ_CHIP=gpiochip0
TOUCH_IRQ_LINE=17
SCREEN_WIDTH=320
SCREEN_HEIGHT=240
TOUCH_EXCHANGE_GAP_US=0
`
	cfg, err := Load(writeConfig(t, body))
	require.NoError(t, err)

	assert.Equal(t, TransportSerial, cfg.TouchTransport)
	assert.Equal(t, "/dev/ttyUSB0", cfg.TouchSerialPort)
	assert.True(t, cfg.HasTouchLine())

	tc := cfg.TouchConfig()
	assert.Equal(t, 9, tc.Samples)
	assert.True(t, tc.SwapXY)
	assert.False(t, tc.InvertX)
	assert.True(t, tc.InvertY)
	assert.True(t, tc.UseTouchLine)
	assert.Equal(t, touch.Profile{XMin: 200, XMax: 3800, YMin: 215, YMax: 3910}, tc.Profile)
	assert.Equal(t, 320, tc.Width)
	assert.Equal(t, 240, tc.Height)
	assert.Zero(t, tc.ExchangeGap)
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "NOPE=1\n", "unknown config key"},
		{"missing equals", "TOUCH_SAMPLES\n", "invalid config line 1"},
		{"even samples", "TOUCH_SAMPLES=8\n", "must be odd"},
		{"not a number", "TOUCH_JUMP_THRESHOLD=far\n", "invalid TOUCH_JUMP_THRESHOLD"},
		{"out of range", "TOUCH_X_MIN=5000\n", "TOUCH_X_MIN must be 0-4095"},
		{"bad bool", "TOUCH_SWAP_XY=maybe\n", "invalid TOUCH_SWAP_XY"},
		{"bad transport", "TOUCH_TRANSPORT=usb\n", "TOUCH_TRANSPORT must be"},
		{"serial without port", "TOUCH_TRANSPORT=serial\n", "TOUCH_SERIAL_PORT is required"},
		{"both irq sources", "TOUCH_IRQ_PIN=GPIO17\nTOUCH_IRQ_CHIP=gpiochip0\n", "mutually exclusive"},
		{"inverted calibration", "TOUCH_X_MIN=3000\nTOUCH_X_MAX=100\n", "x_min 3000 >= x_max 100"},
		{"empty broker", "MQTT_BROKER=\n", "MQTT_BROKER is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.conf"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestCalibrationErrorIsTyped(t *testing.T) {
	_, err := Load(writeConfig(t, "TOUCH_Y_MIN=4000\n"))
	assert.ErrorIs(t, err, touch.ErrCalibration)
}
