package app

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/plant_monitor/internal/config"
	"github.com/relabs-tech/plant_monitor/internal/display"
)

// OpenPanel builds the panel selected by cfg.DisplayType. The terminal panel
// writes to out.
func OpenPanel(cfg *config.Config, out io.Writer) (display.Panel, error) {
	if cfg.DisplayType == config.DisplayTerminal {
		log.Info().Msg("display: rendering to terminal")
		return display.NewTerminal(out), nil
	}

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%w: periph host init: %w", display.ErrDisplay, err)
	}

	port, err := spireg.Open(cfg.DisplaySPIDevice)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", display.ErrDisplay, cfg.DisplaySPIDevice, err)
	}

	dc := gpioreg.ByName(cfg.DisplayDCPin)
	if dc == nil {
		port.Close()
		return nil, fmt.Errorf("%w: dc pin %q not found", display.ErrDisplay, cfg.DisplayDCPin)
	}
	var bl gpio.PinOut
	if cfg.DisplayBacklightPin != "" {
		p := gpioreg.ByName(cfg.DisplayBacklightPin)
		if p == nil {
			port.Close()
			return nil, fmt.Errorf("%w: backlight pin %q not found", display.ErrDisplay, cfg.DisplayBacklightPin)
		}
		bl = p
	}

	opts := display.DefaultOpts
	opts.Rotation = cfg.DisplayRotation
	opts.Speed = physic.Frequency(cfg.DisplaySPISpeedHz) * physic.Hertz

	dev, err := display.NewSPI(port, dc, bl, &opts)
	if err != nil {
		port.Close()
		return nil, err
	}
	log.Info().
		Str("spi", cfg.DisplaySPIDevice).
		Int("rotation", cfg.DisplayRotation).
		Msgf("display: %s initialized", dev)

	return display.NewLCD(dev, loadFace(cfg)), nil
}

// loadFace falls back to the built-in bitmap font when the TrueType face
// cannot be loaded.
func loadFace(cfg *config.Config) font.Face {
	face, err := display.LoadFace(cfg.DisplayFontPath, cfg.DisplayFontSize)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.DisplayFontPath).Msg("display: using fallback bitmap font")
		return basicfont.Face7x13
	}
	return face
}
