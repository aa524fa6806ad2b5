// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/plant_monitor/internal/config"
	"github.com/relabs-tech/plant_monitor/internal/display"
	"github.com/relabs-tech/plant_monitor/internal/env"
	"github.com/relabs-tech/plant_monitor/internal/plant"
	"github.com/relabs-tech/plant_monitor/internal/sensors"
)

// Monitor runs the read / compensate / evaluate / render cycle.
// It is driven from a single goroutine.
type Monitor struct {
	SettingsPath string
	Interval     time.Duration

	Sensors *sensors.Set
	Panel   display.Panel

	CompensationFactor float64

	// TolerateSensorErrors skips a pass that fails with sensors.ErrSensor
	// instead of stopping.
	TolerateSensorErrors bool

	comp *plant.Compensator
}

// NewMonitor wires a Monitor from the device configuration.
func NewMonitor(cfg *config.Config, set *sensors.Set, panel display.Panel) *Monitor {
	return &Monitor{
		SettingsPath:         cfg.SettingsPath,
		Interval:             cfg.LoopInterval,
		Sensors:              set,
		Panel:                panel,
		CompensationFactor:   cfg.CompensationFactor,
		TolerateSensorErrors: cfg.TolerateSensorErrors,
	}
}

// Run loops until ctx is cancelled, then returns nil. A pass is never
// interrupted half way through rendering; cancellation is checked between
// passes and during the wait.
func (m *Monitor) Run(ctx context.Context) error {
	log.Info().Dur("interval", m.Interval).Str("settings", m.SettingsPath).Msg("monitor: starting loop")

	passes := 0
	for {
		if ctx.Err() != nil {
			log.Info().Int("passes", passes).Msg("monitor: stopped")
			return nil
		}

		if _, _, err := m.Step(ctx); err != nil {
			switch {
			case ctx.Err() != nil:
				// a read was cut short by shutdown
				log.Info().Int("passes", passes).Msg("monitor: stopped")
				return nil
			case m.TolerateSensorErrors && errors.Is(err, sensors.ErrSensor):
				log.Warn().Err(err).Msg("monitor: skipping pass")
			default:
				return err
			}
		}
		passes++

		if !sleepCtx(ctx, m.Interval) {
			log.Info().Int("passes", passes).Msg("monitor: stopped")
			return nil
		}
	}
}

// sleepCtx waits for d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Step performs one pass. The first call seeds the CPU history.
func (m *Monitor) Step(ctx context.Context) (env.Reading, plant.DisplayState, error) {
	var r env.Reading

	if m.comp == nil {
		first, err := m.Sensors.Thermal.ReadCPUTemperature(ctx)
		if err != nil {
			return r, plant.DisplayState{}, fmt.Errorf("seed cpu history: %w", err)
		}
		m.comp = plant.NewCompensator(first, m.CompensationFactor)
		log.Debug().Float64("cpu_temp", first).Msg("monitor: cpu history seeded")
	}

	settings, err := plant.LoadSettings(m.SettingsPath)
	if err != nil {
		return r, plant.DisplayState{}, err
	}

	if r, err = m.read(ctx); err != nil {
		return r, plant.DisplayState{}, err
	}
	logReading(r)

	state := plant.Evaluate(r.CompensatedTemp, r.Lux, settings)
	if err := display.Show(m.Panel, state); err != nil {
		return r, state, err
	}
	return r, state, nil
}

func (m *Monitor) read(ctx context.Context) (env.Reading, error) {
	var (
		r   env.Reading
		err error
	)

	if r.Proximity, err = m.Sensors.Light.ReadProximity(ctx); err != nil {
		return r, err
	}
	if r.CPUTemp, err = m.Sensors.Thermal.ReadCPUTemperature(ctx); err != nil {
		return r, err
	}
	if r.RawTemp, err = m.Sensors.Weather.ReadTemperature(ctx); err != nil {
		return r, err
	}
	r.CompensatedTemp, r.AvgCPUTemp = m.comp.Compensate(r.RawTemp, r.CPUTemp)

	if r.Humidity, err = m.Sensors.Weather.ReadHumidity(ctx); err != nil {
		return r, err
	}
	if r.Lux, err = m.Sensors.Light.ReadLux(ctx); err != nil {
		return r, err
	}

	if m.Sensors.Gas != nil {
		g, err := m.Sensors.Gas.ReadGas(ctx)
		if err != nil {
			return r, err
		}
		r.Gas = &g
	}
	return r, nil
}

func logReading(r env.Reading) {
	ev := log.Info().
		Int("proximity", r.Proximity).
		Float64("cpu_temp", r.CPUTemp).
		Float64("avg_cpu_temp", r.AvgCPUTemp).
		Float64("raw_temp", r.RawTemp).
		Float64("temp", r.CompensatedTemp).
		Float64("humidity", r.Humidity).
		Float64("lux", r.Lux)
	if r.Gas != nil {
		ev = ev.
			Float64("oxidising", r.Gas.Oxidising).
			Float64("reducing", r.Gas.Reducing).
			Float64("nh3", r.Gas.NH3)
	}
	ev.Msg("readings")
}
