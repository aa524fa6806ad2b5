package app

import (
	"context"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/plant_monitor/internal/config"
	"github.com/relabs-tech/plant_monitor/internal/plant"
	"github.com/relabs-tech/plant_monitor/internal/sensors"
)

// RunPlantMonitor opens the sensors and the display described by cfg and
// runs the monitor until ctx is cancelled.
func RunPlantMonitor(ctx context.Context, cfg *config.Config, out io.Writer) error {
	log.Info().Msg("starting plant monitor")

	// Fail early on a bad settings document, before touching hardware.
	s, err := plant.LoadSettings(cfg.SettingsPath)
	if err != nil {
		return err
	}
	log.Info().Str("plant", s.Name).Msg("monitoring plant")

	set, err := sensors.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := set.Close(); err != nil {
			log.Warn().Err(err).Msg("sensors: close")
		}
	}()

	panel, err := OpenPanel(cfg, out)
	if err != nil {
		return err
	}
	defer func() {
		if err := panel.Close(); err != nil {
			log.Warn().Err(err).Msg("display: close")
		}
	}()

	return NewMonitor(cfg, set, panel).Run(ctx)
}
