// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package plant

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

// ErrConfig marks a missing, unreadable or malformed settings document.
var ErrConfig = errors.New("config error")

// Settings holds the thresholds and display name for the monitored plant.
// A Settings value is never modified after LoadSettings returns it; a new
// document replaces it as a whole.
type Settings struct {
	Name    string
	TempMin float64
	TempMax float64
	LuxMin  float64
	LuxMax  float64
}

// settingsDoc mirrors the on-disk layout:
//
//	{"settings": {"temp": {"min": 10, "max": 25}, "lux": {"min": 150, "max": 300}, "name": "Basil"}}
//
// Pointers distinguish an absent field from a zero value.
type settingsDoc struct {
	Settings *struct {
		Temp *bounds         `json:"temp"`
		Lux  *bounds         `json:"lux"`
		Name json.RawMessage `json:"name"`
	} `json:"settings"`
}

type bounds struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// LoadSettings reads and validates the settings document at path.
// Every failure wraps ErrConfig.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("%w: read settings: %w", ErrConfig, err)
	}

	s, err := ParseSettings(data)
	if err != nil {
		return Settings{}, err
	}

	log.Info().
		Str("path", path).
		Float64("temp_min", s.TempMin).
		Float64("temp_max", s.TempMax).
		Float64("lux_min", s.LuxMin).
		Float64("lux_max", s.LuxMax).
		Msg("loaded plant settings")

	return s, nil
}

// ParseSettings decodes a settings document.
func ParseSettings(data []byte) (Settings, error) {
	var doc settingsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return Settings{}, fmt.Errorf("%w: decode settings: %w", ErrConfig, err)
	}
	if doc.Settings == nil {
		return Settings{}, fmt.Errorf("%w: missing \"settings\" object", ErrConfig)
	}
	st := doc.Settings

	if err := st.Temp.check("temp"); err != nil {
		return Settings{}, err
	}
	if err := st.Lux.check("lux"); err != nil {
		return Settings{}, err
	}

	name, err := decodeName(st.Name)
	if err != nil {
		return Settings{}, err
	}

	return Settings{
		Name:    name,
		TempMin: *st.Temp.Min,
		TempMax: *st.Temp.Max,
		LuxMin:  *st.Lux.Min,
		LuxMax:  *st.Lux.Max,
	}, nil
}

func (b *bounds) check(field string) error {
	if b == nil {
		return fmt.Errorf("%w: missing settings.%s", ErrConfig, field)
	}
	if b.Min == nil {
		return fmt.Errorf("%w: missing settings.%s.min", ErrConfig, field)
	}
	if b.Max == nil {
		return fmt.Errorf("%w: missing settings.%s.max", ErrConfig, field)
	}
	return nil
}

// decodeName accepts any JSON scalar; non-string values keep their JSON text.
func decodeName(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", fmt.Errorf("%w: missing settings.name", ErrConfig)
	}
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return name, nil
	}
	return string(raw), nil
}
