package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Sensor sources.
const (
	SensorsHardware = "hardware"
	SensorsMock     = "mock"
)

// Display types.
const (
	DisplayST7735   = "st7735"
	DisplayTerminal = "terminal"
)

// CPU temperature sources.
const (
	CPUTempVcgencmd = "vcgencmd"
	CPUTempSysfs    = "sysfs"
)

// Config holds the device wiring and loop timing. Plant thresholds live in
// the separate settings document (see plant.LoadSettings).
type Config struct {
	// Plant settings document, re-read every pass
	SettingsPath string

	// Timing
	LoopInterval time.Duration

	SensorSource string // "hardware" or "mock"
	DisplayType  string // "st7735" or "terminal"

	// I2C sensors
	I2CBus        string // periph bus name, "" = first available
	BME280I2CAddr uint16
	LTR559I2CAddr uint16

	// Gas sensor (MICS6814 behind an ADS1015)
	GasEnabled    bool
	GasADCI2CAddr uint16
	GasHeaterPin  string

	// Display
	DisplaySPIDevice    string
	DisplaySPISpeedHz   int64
	DisplayDCPin        string
	DisplayBacklightPin string
	DisplayRotation     int // counter-clockwise degrees: 0, 90, 180, 270
	DisplayFontPath     string
	DisplayFontSize     float64

	// CPU temperature
	CPUTempSource  string // "vcgencmd" or "sysfs"
	CPUTempCommand string
	CPUTempPath    string

	// Compensation
	CompensationFactor float64

	// Error policy
	TolerateSensorErrors bool

	LogLevel zerolog.Level
}

// Default returns the wiring of a Pimoroni Enviro+ on a Raspberry Pi.
func Default() *Config {
	return &Config{
		SettingsPath:        "settings.json",
		LoopInterval:        2 * time.Second,
		SensorSource:        SensorsHardware,
		DisplayType:         DisplayST7735,
		BME280I2CAddr:       0x76,
		LTR559I2CAddr:       0x23,
		GasEnabled:          true,
		GasADCI2CAddr:       0x49,
		GasHeaterPin:        "GPIO24",
		DisplaySPIDevice:    "SPI0.1",
		DisplaySPISpeedHz:   10000000,
		DisplayDCPin:        "GPIO9",
		DisplayBacklightPin: "GPIO12",
		DisplayRotation:     270,
		DisplayFontSize:     20,
		CPUTempSource:       CPUTempVcgencmd,
		CPUTempCommand:      "vcgencmd measure_temp",
		CPUTempPath:         "/sys/class/thermal/thermal_zone0/temp",
		CompensationFactor:  1,
		LogLevel:            zerolog.InfoLevel,
	}
}

// Load reads the configuration file and returns a Config struct. Keys not
// present in the file keep their Default value.
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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	case "SETTINGS_PATH":
		c.SettingsPath = value

	// Timing
	case "LOOP_INTERVAL":
		ms, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid LOOP_INTERVAL %q: %w", value, err)
		}
		c.LoopInterval = time.Duration(ms) * time.Millisecond

	case "SENSOR_SOURCE":
		c.SensorSource = value
	case "DISPLAY_TYPE":
		c.DisplayType = value

	// I2C sensors
	case "I2C_BUS":
		c.I2CBus = value
	case "BME280_I2C_ADDR":
		addr, err := parseAddr(key, value)
		if err != nil {
			return err
		}
		c.BME280I2CAddr = addr
	case "LTR559_I2C_ADDR":
		addr, err := parseAddr(key, value)
		if err != nil {
			return err
		}
		c.LTR559I2CAddr = addr

	// Gas
	case "GAS_ENABLED":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid GAS_ENABLED %q: %w", value, err)
		}
		c.GasEnabled = b
	case "GAS_ADC_I2C_ADDR":
		addr, err := parseAddr(key, value)
		if err != nil {
			return err
		}
		c.GasADCI2CAddr = addr
	case "GAS_HEATER_PIN":
		c.GasHeaterPin = value

	// Display
	case "DISPLAY_SPI_DEVICE":
		c.DisplaySPIDevice = value
	case "DISPLAY_SPI_SPEED_HZ":
		hz, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_SPI_SPEED_HZ %q: %w", value, err)
		}
		c.DisplaySPISpeedHz = hz
	case "DISPLAY_DC_PIN":
		c.DisplayDCPin = value
	case "DISPLAY_BACKLIGHT_PIN":
		c.DisplayBacklightPin = value
	case "DISPLAY_ROTATION":
		rot, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_ROTATION %q: %w", value, err)
		}
		if rot != 0 && rot != 90 && rot != 180 && rot != 270 {
			return fmt.Errorf("DISPLAY_ROTATION must be 0, 90, 180 or 270, got %d", rot)
		}
		c.DisplayRotation = rot
	case "DISPLAY_FONT_PATH":
		c.DisplayFontPath = value
	case "DISPLAY_FONT_SIZE":
		size, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_FONT_SIZE %q: %w", value, err)
		}
		c.DisplayFontSize = size

	// CPU temperature
	case "CPU_TEMP_SOURCE":
		c.CPUTempSource = value
	case "CPU_TEMP_COMMAND":
		c.CPUTempCommand = value
	case "CPU_TEMP_PATH":
		c.CPUTempPath = value

	case "COMPENSATION_FACTOR":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid COMPENSATION_FACTOR %q: %w", value, err)
		}
		c.CompensationFactor = f

	case "TOLERATE_SENSOR_ERRORS":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid TOLERATE_SENSOR_ERRORS %q: %w", value, err)
		}
		c.TolerateSensorErrors = b

	case "LOG_LEVEL":
		lvl, err := zerolog.ParseLevel(value)
		if err != nil {
			return fmt.Errorf("invalid LOG_LEVEL %q: %w", value, err)
		}
		c.LogLevel = lvl

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

func parseAddr(key, value string) (uint16, error) {
	addr, err := strconv.ParseUint(value, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return uint16(addr), nil
}

// Validate checks that the values are usable. It is exported so command
// line overrides can be re-checked after Load.
func (c *Config) Validate() error {
	if c.SettingsPath == "" {
		return fmt.Errorf("SETTINGS_PATH is required")
	}
	if c.LoopInterval <= 0 {
		return fmt.Errorf("LOOP_INTERVAL must be positive")
	}
	switch c.SensorSource {
	case SensorsHardware, SensorsMock:
	default:
		return fmt.Errorf("SENSOR_SOURCE must be %q or %q, got %q", SensorsHardware, SensorsMock, c.SensorSource)
	}
	switch c.DisplayType {
	case DisplayST7735:
		if c.DisplaySPIDevice == "" {
			return fmt.Errorf("DISPLAY_SPI_DEVICE is required")
		}
		if c.DisplayDCPin == "" {
			return fmt.Errorf("DISPLAY_DC_PIN is required")
		}
	case DisplayTerminal:
	default:
		return fmt.Errorf("DISPLAY_TYPE must be %q or %q, got %q", DisplayST7735, DisplayTerminal, c.DisplayType)
	}
	switch c.CPUTempSource {
	case CPUTempVcgencmd:
		if strings.TrimSpace(c.CPUTempCommand) == "" {
			return fmt.Errorf("CPU_TEMP_COMMAND is required")
		}
	case CPUTempSysfs:
		if c.CPUTempPath == "" {
			return fmt.Errorf("CPU_TEMP_PATH is required")
		}
	default:
		return fmt.Errorf("CPU_TEMP_SOURCE must be %q or %q, got %q", CPUTempVcgencmd, CPUTempSysfs, c.CPUTempSource)
	}
	if c.DisplayFontSize <= 0 {
		return fmt.Errorf("DISPLAY_FONT_SIZE must be positive")
	}
	if c.CompensationFactor <= 0 {
		return fmt.Errorf("COMPENSATION_FACTOR must be positive")
	}
	return nil
}
