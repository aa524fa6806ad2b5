package sensors

import (
	"context"
	"math/rand"

	"github.com/relabs-tech/plant_monitor/internal/env"
)

// Mock simulates the whole sensor board for development. Each read returns
// base ± variation.
type Mock struct {
	Temp      float64
	Humidity  float64
	Lux       float64
	CPUTemp   float64
	Proximity int
	Variation float64 // fraction of the base value, e.g. 0.05 for ±5%
}

// NewMock returns a mock tuned for an indoor plant next to a warm Pi.
func NewMock() *Mock {
	return &Mock{
		Temp:      32,
		Humidity:  45,
		Lux:       220,
		CPUTemp:   48,
		Proximity: 3,
		Variation: 0.05,
	}
}

// NewMockSet wires a Mock into every slot of a Set.
func NewMockSet() *Set {
	m := NewMock()
	return &Set{Weather: m, Light: m, Thermal: m, Gas: m}
}

func (m *Mock) jitter(base float64) float64 {
	return base + (rand.Float64()-0.5)*2*base*m.Variation
}

func (m *Mock) ReadTemperature(ctx context.Context) (float64, error) {
	return m.jitter(m.Temp), nil
}

func (m *Mock) ReadHumidity(ctx context.Context) (float64, error) {
	return m.jitter(m.Humidity), nil
}

func (m *Mock) ReadLux(ctx context.Context) (float64, error) {
	lux := m.jitter(m.Lux)
	if lux < 0 {
		lux = 0
	}
	return lux, nil
}

func (m *Mock) ReadProximity(ctx context.Context) (int, error) {
	return m.Proximity, nil
}

func (m *Mock) ReadCPUTemperature(ctx context.Context) (float64, error) {
	return m.jitter(m.CPUTemp), nil
}

func (m *Mock) ReadGas(ctx context.Context) (env.GasSample, error) {
	return env.GasSample{
		Oxidising: m.jitter(20000),
		Reducing:  m.jitter(400000),
		NH3:       m.jitter(80000),
	}, nil
}
