// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package display renders the plant status panel, either on the Enviro+
// ST7735 LCD or on a terminal.
package display

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	conndisplay "periph.io/x/conn/v3/display"

	"github.com/relabs-tech/plant_monitor/internal/plant"
)

// ErrDisplay marks a failure to draw or flush a frame.
var ErrDisplay = errors.New("display error")

// Panel colours.
var (
	Teal  = color.RGBA{R: 0, G: 170, B: 170, A: 255}
	Red   = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Black = color.RGBA{A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Top-left corners of the two text lines.
var (
	line1 = image.Pt(0, 0)
	line2 = image.Pt(0, 30)
)

// Panel shows one plant status at a time. Each call replaces the whole
// previous frame.
type Panel interface {
	RenderNormal(name, message string) error
	RenderWarning(label string, value float64, unit, message string) error
	Close() error
}

// Show dispatches s to the matching Panel method.
func Show(p Panel, s plant.DisplayState) error {
	if s.Kind == plant.Warning {
		return p.RenderWarning(s.Label, s.Value, s.Unit, s.Message)
	}
	return p.RenderNormal(s.Name, s.Message)
}

func normalLine(name string) string {
	return "Name: " + name
}

func warningLine(label string, value float64, unit string) string {
	r := []rune(label)
	if len(r) > 4 {
		r = r[:4]
	}
	return fmt.Sprintf("%s: %.1f %s", string(r), value, unit)
}

// LoadFace returns an OpenType face at size points. An empty path selects
// the embedded Go Bold font.
func LoadFace(path string, size float64) (font.Face, error) {
	data := gobold.TTF
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read font: %w", err)
		}
		data = b
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	return face, nil
}

// LCD draws the status panel into an RGBA canvas and flushes it to a periph
// display.
type LCD struct {
	dev    conndisplay.Drawer
	face   font.Face
	canvas *image.RGBA
}

// NewLCD sizes the canvas to dev.Bounds().
func NewLCD(dev conndisplay.Drawer, face font.Face) *LCD {
	return &LCD{
		dev:    dev,
		face:   face,
		canvas: image.NewRGBA(dev.Bounds()),
	}
}

// RenderNormal draws "Name: <name>" and message in black on teal.
func (l *LCD) RenderNormal(name, message string) error {
	return l.render(Teal, Black, normalLine(name), message)
}

// RenderWarning draws the offending reading and message in white on red.
func (l *LCD) RenderWarning(label string, value float64, unit, message string) error {
	text := warningLine(label, value, unit)
	log.Warn().Str("reading", text).Msg(message)
	return l.render(Red, White, text, message)
}

func (l *LCD) render(bg, fg color.RGBA, first, second string) error {
	draw.Draw(l.canvas, l.canvas.Bounds(), &image.Uniform{bg}, image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  l.canvas,
		Src:  &image.Uniform{fg},
		Face: l.face,
	}
	ascent := l.face.Metrics().Ascent.Ceil()

	drawer.Dot = fixed.P(line1.X, line1.Y+ascent)
	drawer.DrawString(first)

	drawer.Dot = fixed.P(line2.X, line2.Y+ascent)
	drawer.DrawString(second)

	if err := l.dev.Draw(l.dev.Bounds(), l.canvas, l.canvas.Bounds().Min); err != nil {
		return fmt.Errorf("%w: flush %s: %w", ErrDisplay, l.dev, err)
	}
	return nil
}

// Close halts the underlying display.
func (l *LCD) Close() error {
	if err := l.dev.Halt(); err != nil {
		return fmt.Errorf("%w: halt: %w", ErrDisplay, err)
	}
	return nil
}
