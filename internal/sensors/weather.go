package sensors

import (
	"context"
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
)

// BME280 reads temperature and humidity from a Bosch BME280 over I²C.
type BME280 struct {
	dev *bmxx80.Dev
}

// NewBME280 initializes the sensor at addr on bus.
func NewBME280(bus i2c.Bus, addr uint16) (*BME280, error) {
	dev, err := bmxx80.NewI2C(bus, addr, &bmxx80.DefaultOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: BME280 init at 0x%02X: %w", ErrSensor, addr, err)
	}
	return &BME280{dev: dev}, nil
}

func (b *BME280) sense() (physic.Env, error) {
	var e physic.Env
	if err := b.dev.Sense(&e); err != nil {
		return physic.Env{}, fmt.Errorf("%w: BME280 sense: %w", ErrSensor, err)
	}
	return e, nil
}

// ReadTemperature takes a fresh measurement and returns °C.
func (b *BME280) ReadTemperature(ctx context.Context) (float64, error) {
	e, err := b.sense()
	if err != nil {
		return 0, err
	}
	return e.Temperature.Celsius(), nil
}

// ReadHumidity takes a fresh measurement and returns %RH.
func (b *BME280) ReadHumidity(ctx context.Context) (float64, error) {
	e, err := b.sense()
	if err != nil {
		return 0, err
	}
	return float64(e.Humidity) / float64(physic.PercentRH), nil
}

// Close stops the device.
func (b *BME280) Close() error {
	return b.dev.Halt()
}
