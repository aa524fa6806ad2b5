// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/relabs-tech/plant_monitor/internal/app"
	"github.com/relabs-tech/plant_monitor/internal/config"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	configPath := pflag.StringP("config", "c", "./plant_config.txt", "path to device configuration file")
	settingsPath := pflag.StringP("settings", "s", "", "path to plant settings JSON (overrides SETTINGS_PATH)")
	sensorSource := pflag.String("sensors", "", "sensor source: hardware or mock (overrides SENSOR_SOURCE)")
	displayType := pflag.String("display", "", "display: st7735 or terminal (overrides DISPLAY_TYPE)")
	debug := pflag.BoolP("debug", "d", false, "enable debug logging")
	pflag.Parse()

	// Initialize logger
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05.000"})

	cfg, err := config.Load(*configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !pflag.CommandLine.Changed("config"):
		log.Warn().Str("path", *configPath).Msg("config file not found, using defaults")
		cfg = config.Default()
	case err != nil:
		log.Fatal().Err(err).Str("path", *configPath).Msg("failed to load config")
	}

	if *settingsPath != "" {
		cfg.SettingsPath = *settingsPath
	}
	if *sensorSource != "" {
		cfg.SensorSource = *sensorSource
	}
	if *displayType != "" {
		cfg.DisplayType = *displayType
	}
	if *debug {
		cfg.LogLevel = zerolog.DebugLevel
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	log.Info().
		Str("version", version).
		Str("commit", commit).
		Str("sensors", cfg.SensorSource).
		Str("display", cfg.DisplayType).
		Msg("plant monitor")

	if err := app.RunPlantMonitor(ctx, cfg, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
	log.Info().Msg("interrupted, exiting")
}
