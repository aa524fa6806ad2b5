// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package sensors reads the plant monitor's environmental inputs.
// Hardware implementations sit on periph.io; mock implementations allow
// running without the sensor board.
package sensors

import (
	"context"
	"errors"

	"github.com/relabs-tech/plant_monitor/internal/env"
)

// ErrSensor marks an unreachable sensor or unparsable sensor output.
var ErrSensor = errors.New("sensor error")

// Weather reads ambient temperature and humidity.
type Weather interface {
	// ReadTemperature returns the uncompensated temperature in °C.
	ReadTemperature(ctx context.Context) (float64, error)

	// ReadHumidity returns relative humidity in %.
	ReadHumidity(ctx context.Context) (float64, error)
}

// LightProximity reads ambient light and proximity.
type LightProximity interface {
	ReadProximity(ctx context.Context) (int, error)
	ReadLux(ctx context.Context) (float64, error)
}

// Thermal reads the CPU temperature in °C.
type Thermal interface {
	ReadCPUTemperature(ctx context.Context) (float64, error)
}

// Gas reads the gas sensor.
type Gas interface {
	ReadGas(ctx context.Context) (env.GasSample, error)
}

// Set groups the sensors the monitor polls. Gas may be nil.
type Set struct {
	Weather Weather
	Light   LightProximity
	Thermal Thermal
	Gas     Gas

	closers []func() error
}

// Close releases every underlying device.
func (s *Set) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
