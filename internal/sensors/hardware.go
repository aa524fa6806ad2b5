package sensors

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/plant_monitor/internal/config"
)

// Open builds the sensor set selected by cfg.SensorSource.
func Open(cfg *config.Config) (*Set, error) {
	if cfg.SensorSource == config.SensorsMock {
		log.Info().Msg("sensors: using mock sensor board")
		set := NewMockSet()
		if !cfg.GasEnabled {
			set.Gas = nil
		}
		return set, nil
	}
	return OpenHardware(cfg)
}

// OpenHardware initializes periph and every sensor on the I²C bus.
func OpenHardware(cfg *config.Config) (*Set, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%w: periph host init: %w", ErrSensor, err)
	}

	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return nil, fmt.Errorf("%w: I2C open %q: %w", ErrSensor, cfg.I2CBus, err)
	}

	set := &Set{}
	set.closers = append(set.closers, bus.Close)
	fail := func(err error) (*Set, error) {
		_ = set.Close()
		return nil, err
	}

	bme, err := NewBME280(bus, cfg.BME280I2CAddr)
	if err != nil {
		return fail(err)
	}
	set.Weather = bme
	set.closers = append(set.closers, bme.Close)
	log.Info().Str("addr", fmt.Sprintf("0x%02X", cfg.BME280I2CAddr)).Msg("sensors: BME280 initialized")

	ltr, err := NewLTR559(bus, cfg.LTR559I2CAddr)
	if err != nil {
		return fail(err)
	}
	set.Light = ltr
	set.closers = append(set.closers, ltr.Close)
	log.Info().Str("addr", fmt.Sprintf("0x%02X", cfg.LTR559I2CAddr)).Msg("sensors: LTR559 initialized")

	if cfg.GasEnabled {
		var heater gpio.PinOut
		if cfg.GasHeaterPin != "" {
			p := gpioreg.ByName(cfg.GasHeaterPin)
			if p == nil {
				return fail(fmt.Errorf("%w: gas heater pin %q not found", ErrSensor, cfg.GasHeaterPin))
			}
			heater = p
		}
		gas, err := NewMICS6814(bus, cfg.GasADCI2CAddr, heater)
		if err != nil {
			return fail(err)
		}
		set.Gas = gas
		set.closers = append(set.closers, gas.Close)
		log.Info().Str("addr", fmt.Sprintf("0x%02X", cfg.GasADCI2CAddr)).Msg("sensors: MICS6814 initialized")
	}

	thermal, err := NewThermal(cfg)
	if err != nil {
		return fail(err)
	}
	set.Thermal = thermal

	return set, nil
}

// NewThermal returns the CPU temperature source selected by cfg.CPUTempSource.
func NewThermal(cfg *config.Config) (Thermal, error) {
	switch cfg.CPUTempSource {
	case config.CPUTempSysfs:
		log.Info().Str("path", cfg.CPUTempPath).Msg("sensors: cpu temperature from sysfs")
		return SysfsThermal{Path: cfg.CPUTempPath}, nil
	case config.CPUTempVcgencmd:
		log.Info().Str("command", cfg.CPUTempCommand).Msg("sensors: cpu temperature from command")
		c, err := NewCommandThermal(cfg.CPUTempCommand)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown cpu temperature source %q", cfg.CPUTempSource)
	}
}
