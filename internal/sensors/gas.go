package sensors

import (
	"context"
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"

	"github.com/relabs-tech/plant_monitor/internal/env"
)

// MICS6814 load resistor and supply used to convert ADC volts to ohms.
const (
	gasLoadOhms   = 56000
	gasSupplyVolt = 3.3
)

// MICS6814 reads the three MICS6814 channels through an ADS1015.
type MICS6814 struct {
	adc    *ads1x15.Dev
	ox     ads1x15.PinADC
	red    ads1x15.PinADC
	nh3    ads1x15.PinADC
	heater gpio.PinOut
}

// NewMICS6814 opens the ADC at addr and turns the heater on. heater may be nil
// when the board drives it permanently.
func NewMICS6814(bus i2c.Bus, addr uint16, heater gpio.PinOut) (*MICS6814, error) {
	adc, err := ads1x15.NewADS1015(bus, &ads1x15.Opts{I2cAddress: addr})
	if err != nil {
		return nil, fmt.Errorf("%w: ADS1015 init at 0x%02X: %w", ErrSensor, addr, err)
	}

	m := &MICS6814{adc: adc, heater: heater}
	for _, ch := range []struct {
		c   ads1x15.Channel
		dst *ads1x15.PinADC
	}{
		{ads1x15.Channel0, &m.ox},
		{ads1x15.Channel1, &m.red},
		{ads1x15.Channel2, &m.nh3},
	} {
		p, err := adc.PinForChannel(ch.c, 4096*physic.MilliVolt, 1600*physic.Hertz, ads1x15.SaveEnergy)
		if err != nil {
			return nil, fmt.Errorf("%w: ADS1015 channel %v: %w", ErrSensor, ch.c, err)
		}
		*ch.dst = p
	}

	if heater != nil {
		if err := heater.Out(gpio.High); err != nil {
			return nil, fmt.Errorf("%w: gas heater on: %w", ErrSensor, err)
		}
	}
	return m, nil
}

// ReadGas samples all three channels.
func (m *MICS6814) ReadGas(ctx context.Context) (env.GasSample, error) {
	ox, err := m.resistance(m.ox)
	if err != nil {
		return env.GasSample{}, err
	}
	red, err := m.resistance(m.red)
	if err != nil {
		return env.GasSample{}, err
	}
	nh3, err := m.resistance(m.nh3)
	if err != nil {
		return env.GasSample{}, err
	}
	return env.GasSample{Oxidising: ox, Reducing: red, NH3: nh3}, nil
}

func (m *MICS6814) resistance(p ads1x15.PinADC) (float64, error) {
	s, err := p.Read()
	if err != nil {
		return 0, fmt.Errorf("%w: gas read %s: %w", ErrSensor, p, err)
	}
	return gasResistance(float64(s.V) / float64(physic.Volt)), nil
}

// gasResistance converts the divider voltage into sensor ohms.
func gasResistance(v float64) float64 {
	if v >= gasSupplyVolt {
		return 0
	}
	return v * gasLoadOhms / (gasSupplyVolt - v)
}

// Close halts the ADC pins and turns the heater off.
func (m *MICS6814) Close() error {
	for _, p := range []ads1x15.PinADC{m.ox, m.red, m.nh3} {
		if p != nil {
			_ = p.Halt()
		}
	}
	if m.heater != nil {
		return m.heater.Out(gpio.Low)
	}
	return nil
}
