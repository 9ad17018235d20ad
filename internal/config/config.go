package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/relabs-tech/resistive_touch/internal/touch"
)

// Transport kinds accepted by TOUCH_TRANSPORT.
const (
	TransportSPI    = "spi"
	TransportSerial = "serial"
	TransportMock   = "mock"
)

// Config holds all application configuration values.
type Config struct {
	// Touch transport
	TouchTransport  string // "spi", "serial" or "mock"
	TouchSPIDevice  string
	TouchSPISpeedHz int
	TouchCSPin      string // optional manual chip select (GPIO name)
	TouchIRQPin     string // optional pen interrupt via periph gpioreg
	TouchIRQChip    string // optional pen interrupt via GPIO character device
	TouchIRQLine    int
	TouchSerialPort string
	TouchSerialBaud int

	// Touch filtering
	TouchSamples           int
	TouchAvgWindow         int
	TouchJumpThreshold     int
	TouchMaxInvalid        int
	TouchPressureThreshold int
	TouchVarianceLimit     int64
	TouchSwapXY            bool
	TouchInvertX           bool
	TouchInvertY           bool

	// Calibration (raw units)
	TouchXMin int
	TouchXMax int
	TouchYMin int
	TouchYMax int

	// Timing
	TouchExchangeGapUs int
	TouchBatchSettleMs int
	TouchPollInterval  int // milliseconds

	// Screen
	ScreenWidth  int
	ScreenHeight int

	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDDisplay  string

	// Topics
	TopicTouch      string
	TopicTouchStats string

	// Servers
	WebServerPort         int
	CalibrationServerPort int

	// Virtual input device
	UinputEnabled    bool
	UinputDeviceName string

	// Display
	DisplaySPIDevice      string
	DisplayDCPin          string
	DisplayRSTPin         string
	DisplaySPISpeedHz     int
	StatusI2CBus          string // empty disables the status OLED
	DisplayUpdateInterval int    // milliseconds
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: only reachable through InitGlobal and Get.
//   - configOnce: ensures InitGlobal() only runs once.
//   - configMu: write lock for initialization, read lock for Get().
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns a Config populated with the values the reference board
// runs with. Load starts from these so a config file only needs to list
// what differs.
func Default() *Config {
	tc := touch.DefaultConfig()
	return &Config{
		TouchTransport:         TransportSPI,
		TouchSPIDevice:         "/dev/spidev0.1",
		TouchSPISpeedHz:        2_000_000,
		TouchSerialBaud:        115200,
		TouchSamples:           tc.Samples,
		TouchAvgWindow:         tc.AverageWindow,
		TouchJumpThreshold:     tc.JumpThreshold,
		TouchMaxInvalid:        tc.MaxInvalid,
		TouchPressureThreshold: tc.PressureThreshold,
		TouchVarianceLimit:     tc.VarianceLimit,
		TouchXMin:              tc.Profile.XMin,
		TouchXMax:              tc.Profile.XMax,
		TouchYMin:              tc.Profile.YMin,
		TouchYMax:              tc.Profile.YMax,
		TouchExchangeGapUs:     int(tc.ExchangeGap / time.Microsecond),
		TouchBatchSettleMs:     int(tc.BatchSettle / time.Millisecond),
		TouchPollInterval:      30,
		ScreenWidth:            tc.Width,
		ScreenHeight:           tc.Height,
		MQTTBroker:             "tcp://localhost:1883",
		MQTTClientIDProducer:   "touch-producer",
		MQTTClientIDConsole:    "touch-console",
		MQTTClientIDWeb:        "touch-web",
		MQTTClientIDDisplay:    "touch-display",
		TopicTouch:             "touch/point",
		TopicTouchStats:        "touch/stats",
		WebServerPort:          8080,
		CalibrationServerPort:  8081,
		UinputDeviceName:       "resistive-touch",
		DisplaySPIDevice:       "/dev/spidev0.0",
		DisplayDCPin:           "GPIO25",
		DisplayRSTPin:          "GPIO27",
		DisplaySPISpeedHz:      32_000_000,
		DisplayUpdateInterval:  200,
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseInt(key, value string, lo, hi int) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%s must be %d-%d, got %d", key, lo, hi, v)
	}
	return v, nil
}

func parseBool(key, value string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return b, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// Touch transport
	case "TOUCH_TRANSPORT":
		switch value {
		case TransportSPI, TransportSerial, TransportMock:
			c.TouchTransport = value
		default:
			return fmt.Errorf("TOUCH_TRANSPORT must be spi, serial or mock, got %q", value)
		}
	case "TOUCH_SPI_DEVICE":
		c.TouchSPIDevice = value
	case "TOUCH_SPI_SPEED_HZ":
		c.TouchSPISpeedHz, err = parseInt(key, value, 10_000, 2_500_000)
	case "TOUCH_CS_PIN":
		c.TouchCSPin = value
	case "TOUCH_IRQ_PIN":
		c.TouchIRQPin = value
	case "TOUCH_IRQ_CHIP":
		c.TouchIRQChip = value
	case "TOUCH_IRQ_LINE":
		c.TouchIRQLine, err = parseInt(key, value, 0, 1023)
	case "TOUCH_SERIAL_PORT":
		c.TouchSerialPort = value
	case "TOUCH_SERIAL_BAUD":
		c.TouchSerialBaud, err = parseInt(key, value, 1200, 4_000_000)

	// Touch filtering
	case "TOUCH_SAMPLES":
		c.TouchSamples, err = parseInt(key, value, 3, 63)
		if err == nil && c.TouchSamples%2 == 0 {
			return fmt.Errorf("TOUCH_SAMPLES must be odd, got %d", c.TouchSamples)
		}
	case "TOUCH_AVG_WINDOW":
		c.TouchAvgWindow, err = parseInt(key, value, 1, 100)
	case "TOUCH_JUMP_THRESHOLD":
		c.TouchJumpThreshold, err = parseInt(key, value, 1, 4096)
	case "TOUCH_MAX_INVALID":
		c.TouchMaxInvalid, err = parseInt(key, value, 1, 100)
	case "TOUCH_PRESSURE_THRESHOLD":
		c.TouchPressureThreshold, err = parseInt(key, value, 0, 4095)
	case "TOUCH_VARIANCE_LIMIT":
		v, perr := strconv.ParseInt(value, 10, 64)
		if perr != nil {
			return fmt.Errorf("invalid TOUCH_VARIANCE_LIMIT %q: %w", value, perr)
		}
		if v <= 0 {
			return fmt.Errorf("TOUCH_VARIANCE_LIMIT must be positive, got %d", v)
		}
		c.TouchVarianceLimit = v
	case "TOUCH_SWAP_XY":
		c.TouchSwapXY, err = parseBool(key, value)
	case "TOUCH_INVERT_X":
		c.TouchInvertX, err = parseBool(key, value)
	case "TOUCH_INVERT_Y":
		c.TouchInvertY, err = parseBool(key, value)

	// Calibration
	case "TOUCH_X_MIN":
		c.TouchXMin, err = parseInt(key, value, 0, 4095)
	case "TOUCH_X_MAX":
		c.TouchXMax, err = parseInt(key, value, 0, 4095)
	case "TOUCH_Y_MIN":
		c.TouchYMin, err = parseInt(key, value, 0, 4095)
	case "TOUCH_Y_MAX":
		c.TouchYMax, err = parseInt(key, value, 0, 4095)

	// Timing
	case "TOUCH_EXCHANGE_GAP_US":
		c.TouchExchangeGapUs, err = parseInt(key, value, 0, 100_000)
	case "TOUCH_BATCH_SETTLE_MS":
		c.TouchBatchSettleMs, err = parseInt(key, value, 0, 1000)
	case "TOUCH_POLL_INTERVAL":
		c.TouchPollInterval, err = parseInt(key, value, 1, 10_000)

	// Screen
	case "SCREEN_WIDTH":
		c.ScreenWidth, err = parseInt(key, value, 1, 4096)
	case "SCREEN_HEIGHT":
		c.ScreenHeight, err = parseInt(key, value, 1, 4096)

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_TOUCH":
		c.TopicTouch = value
	case "TOPIC_TOUCH_STATS":
		c.TopicTouchStats = value

	// Servers
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = parseInt(key, value, 1, 65535)
	case "CALIBRATION_SERVER_PORT":
		c.CalibrationServerPort, err = parseInt(key, value, 1, 65535)

	// Virtual input device
	case "UINPUT_ENABLED":
		c.UinputEnabled, err = parseBool(key, value)
	case "UINPUT_DEVICE_NAME":
		c.UinputDeviceName = value

	// Display
	case "DISPLAY_SPI_DEVICE":
		c.DisplaySPIDevice = value
	case "DISPLAY_DC_PIN":
		c.DisplayDCPin = value
	case "DISPLAY_RST_PIN":
		c.DisplayRSTPin = value
	case "DISPLAY_SPI_SPEED_HZ":
		c.DisplaySPISpeedHz, err = parseInt(key, value, 100_000, 80_000_000)
	case "STATUS_I2C_BUS":
		c.StatusI2CBus = value
	case "DISPLAY_UPDATE_INTERVAL":
		c.DisplayUpdateInterval, err = parseInt(key, value, 10, 60_000)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

// validate checks cross-field constraints once the whole file is read.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.TopicTouch == "" {
		return fmt.Errorf("TOPIC_TOUCH is required")
	}
	switch c.TouchTransport {
	case TransportSPI:
		if c.TouchSPIDevice == "" {
			return fmt.Errorf("TOUCH_SPI_DEVICE is required for the spi transport")
		}
	case TransportSerial:
		if c.TouchSerialPort == "" {
			return fmt.Errorf("TOUCH_SERIAL_PORT is required for the serial transport")
		}
	}
	if c.TouchIRQPin != "" && c.TouchIRQChip != "" {
		return fmt.Errorf("TOUCH_IRQ_PIN and TOUCH_IRQ_CHIP are mutually exclusive")
	}
	if len(c.UinputDeviceName) >= 80 {
		return fmt.Errorf("UINPUT_DEVICE_NAME must be shorter than 80 bytes")
	}
	return c.TouchConfig().Validate()
}

// HasTouchLine reports whether a pen interrupt line is configured.
func (c *Config) HasTouchLine() bool {
	return c.TouchIRQPin != "" || c.TouchIRQChip != ""
}

// TouchConfig builds the filter pipeline configuration.
func (c *Config) TouchConfig() touch.Config {
	tc := touch.DefaultConfig()
	tc.Samples = c.TouchSamples
	tc.AverageWindow = c.TouchAvgWindow
	tc.JumpThreshold = c.TouchJumpThreshold
	tc.MaxInvalid = c.TouchMaxInvalid
	tc.PressureThreshold = c.TouchPressureThreshold
	tc.VarianceLimit = c.TouchVarianceLimit
	tc.SwapXY = c.TouchSwapXY
	tc.InvertX = c.TouchInvertX
	tc.InvertY = c.TouchInvertY
	tc.UseTouchLine = c.HasTouchLine()
	tc.Width = c.ScreenWidth
	tc.Height = c.ScreenHeight
	tc.Profile = touch.Profile{
		XMin: c.TouchXMin,
		XMax: c.TouchXMax,
		YMin: c.TouchYMin,
		YMax: c.TouchYMax,
	}
	tc.ExchangeGap = time.Duration(c.TouchExchangeGapUs) * time.Microsecond
	tc.BatchSettle = time.Duration(c.TouchBatchSettleMs) * time.Millisecond
	return tc
}

// PollInterval returns the producer tick period.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.TouchPollInterval) * time.Millisecond
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
