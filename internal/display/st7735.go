// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// ST7735 commands.
const (
	cmdSWRESET = 0x01
	cmdSLPOUT  = 0x11
	cmdNORON   = 0x13
	cmdINVOFF  = 0x20
	cmdINVON   = 0x21
	cmdDISPON  = 0x29
	cmdCASET   = 0x2A
	cmdRASET   = 0x2B
	cmdRAMWR   = 0x2C
	cmdMADCTL  = 0x36
	cmdCOLMOD  = 0x3A
	cmdFRMCTR1 = 0xB1
	cmdFRMCTR2 = 0xB2
	cmdFRMCTR3 = 0xB3
	cmdINVCTR  = 0xB4
	cmdPWCTR1  = 0xC0
	cmdPWCTR2  = 0xC1
	cmdPWCTR3  = 0xC2
	cmdPWCTR4  = 0xC3
	cmdPWCTR5  = 0xC4
	cmdVMCTR1  = 0xC5
	cmdGMCTRP1 = 0xE0
	cmdGMCTRN1 = 0xE1
)

// maxChunk bounds a single SPI transfer; spidev rejects larger writes by default.
const maxChunk = 4096

// Opts describes the panel geometry and orientation.
type Opts struct {
	// Native panel size in pixels, portrait.
	Width  int
	Height int

	// Offset of the visible area inside controller RAM.
	OffsetLeft int
	OffsetTop  int

	// Rotation is applied in software, counter-clockwise degrees (0, 90, 180, 270).
	Rotation int

	Invert bool
	BGR    bool

	Speed physic.Frequency
}

// DefaultOpts is the 0.96" 160x80 panel on the Enviro+ in landscape.
var DefaultOpts = Opts{
	Width:      80,
	Height:     160,
	OffsetLeft: 26,
	OffsetTop:  1,
	Rotation:   270,
	Invert:     true,
	BGR:        true,
	Speed:      10 * physic.MegaHertz,
}

// sleep is replaced in tests.
var sleep = time.Sleep

// ST7735 is a periph display.Drawer for a Sitronix ST7735 LCD driven over
// SPI with a separate data/command pin.
type ST7735 struct {
	c    spi.Conn
	dc   gpio.PinOut
	bl   gpio.PinOut
	opts Opts

	rect  image.Rectangle // logical, after rotation
	frame *image.RGBA
	buf   []byte // native RGB565
}

// NewSPI connects to p and initializes the panel. bl may be nil.
func NewSPI(p spi.Port, dc, bl gpio.PinOut, opts *Opts) (*ST7735, error) {
	c, err := p.Connect(opts.Speed, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("%w: spi connect: %w", ErrDisplay, err)
	}
	return New(c, dc, bl, opts)
}

// New initializes the panel on an already connected SPI conn.
func New(c spi.Conn, dc, bl gpio.PinOut, opts *Opts) (*ST7735, error) {
	if dc == nil {
		return nil, fmt.Errorf("%w: data/command pin is required", ErrDisplay)
	}
	switch opts.Rotation {
	case 0, 90, 180, 270:
	default:
		return nil, fmt.Errorf("%w: invalid rotation %d", ErrDisplay, opts.Rotation)
	}

	w, h := opts.Width, opts.Height
	if opts.Rotation == 90 || opts.Rotation == 270 {
		w, h = h, w
	}
	d := &ST7735{
		c:     c,
		dc:    dc,
		bl:    bl,
		opts:  *opts,
		rect:  image.Rect(0, 0, w, h),
		frame: image.NewRGBA(image.Rect(0, 0, w, h)),
		buf:   make([]byte, opts.Width*opts.Height*2),
	}
	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *ST7735) String() string {
	return fmt.Sprintf("ST7735{%s, %dx%d}", d.c, d.rect.Dx(), d.rect.Dy())
}

// ColorModel implements display.Drawer. Pixels are reduced to RGB565 on flush.
func (d *ST7735) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements display.Drawer.
func (d *ST7735) Bounds() image.Rectangle {
	return d.rect
}

// Draw implements display.Drawer. The whole frame is pushed on every call.
func (d *ST7735) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	draw.Draw(d.frame, r, src, sp, draw.Src)
	d.pack()
	if err := d.setWindow(); err != nil {
		return err
	}
	if err := d.command(cmdRAMWR); err != nil {
		return err
	}
	return d.data(d.buf)
}

// Halt turns the backlight off.
func (d *ST7735) Halt() error {
	if d.bl == nil {
		return nil
	}
	if err := d.bl.Out(gpio.Low); err != nil {
		return fmt.Errorf("%w: backlight off: %w", ErrDisplay, err)
	}
	return nil
}

func (d *ST7735) init() error {
	invert := byte(cmdINVOFF)
	if d.opts.Invert {
		invert = cmdINVON
	}
	madctl := byte(0xC0)
	if d.opts.BGR {
		madctl |= 0x08
	}

	seq := []struct {
		cmd   byte
		data  []byte
		delay time.Duration
	}{
		{cmdSWRESET, nil, 150 * time.Millisecond},
		{cmdSLPOUT, nil, 500 * time.Millisecond},
		{cmdFRMCTR1, []byte{0x01, 0x2C, 0x2D}, 0},
		{cmdFRMCTR2, []byte{0x01, 0x2C, 0x2D}, 0},
		{cmdFRMCTR3, []byte{0x01, 0x2C, 0x2D, 0x01, 0x2C, 0x2D}, 0},
		{cmdINVCTR, []byte{0x07}, 0},
		{cmdPWCTR1, []byte{0xA2, 0x02, 0x84}, 0},
		{cmdPWCTR2, []byte{0xC5}, 0},
		{cmdPWCTR3, []byte{0x0A, 0x00}, 0},
		{cmdPWCTR4, []byte{0x8A, 0x2A}, 0},
		{cmdPWCTR5, []byte{0x8A, 0xEE}, 0},
		{cmdVMCTR1, []byte{0x0E}, 0},
		{invert, nil, 0},
		{cmdMADCTL, []byte{madctl}, 0},
		{cmdCOLMOD, []byte{0x05}, 0}, // 16 bit
	}
	for _, s := range seq {
		if err := d.command(s.cmd, s.data...); err != nil {
			return err
		}
		if s.delay > 0 {
			sleep(s.delay)
		}
	}

	if err := d.setWindow(); err != nil {
		return err
	}

	tail := []struct {
		cmd   byte
		data  []byte
		delay time.Duration
	}{
		{cmdGMCTRP1, []byte{0x02, 0x1c, 0x07, 0x12, 0x37, 0x32, 0x29, 0x2d, 0x29, 0x25, 0x2B, 0x39, 0x00, 0x01, 0x03, 0x10}, 0},
		{cmdGMCTRN1, []byte{0x03, 0x1d, 0x07, 0x06, 0x2E, 0x2C, 0x29, 0x2D, 0x2E, 0x2E, 0x37, 0x3F, 0x00, 0x00, 0x02, 0x10}, 0},
		{cmdNORON, nil, 10 * time.Millisecond},
		{cmdDISPON, nil, 100 * time.Millisecond},
	}
	for _, s := range tail {
		if err := d.command(s.cmd, s.data...); err != nil {
			return err
		}
		if s.delay > 0 {
			sleep(s.delay)
		}
	}

	if d.bl != nil {
		if err := d.bl.Out(gpio.High); err != nil {
			return fmt.Errorf("%w: backlight on: %w", ErrDisplay, err)
		}
	}
	return nil
}

// setWindow addresses the full visible area.
func (d *ST7735) setWindow() error {
	x0 := d.opts.OffsetLeft
	x1 := x0 + d.opts.Width - 1
	y0 := d.opts.OffsetTop
	y1 := y0 + d.opts.Height - 1
	if err := d.command(cmdCASET, byte(x0>>8), byte(x0), byte(x1>>8), byte(x1)); err != nil {
		return err
	}
	return d.command(cmdRASET, byte(y0>>8), byte(y0), byte(y1>>8), byte(y1))
}

// pack converts the logical frame into native-orientation RGB565.
func (d *ST7735) pack() {
	lw, lh := d.rect.Dx(), d.rect.Dy()
	nw := d.opts.Width
	for y := 0; y < lh; y++ {
		for x := 0; x < lw; x++ {
			var nx, ny int
			switch d.opts.Rotation {
			case 90:
				nx, ny = y, lw-1-x
			case 180:
				nx, ny = lw-1-x, lh-1-y
			case 270:
				nx, ny = lh-1-y, x
			default:
				nx, ny = x, y
			}
			off := d.frame.PixOffset(x, y)
			v := rgb565(d.frame.Pix[off], d.frame.Pix[off+1], d.frame.Pix[off+2])
			i := (ny*nw + nx) * 2
			d.buf[i] = byte(v >> 8)
			d.buf[i+1] = byte(v)
		}
	}
}

func rgb565(r, g, b uint8) uint16 {
	return uint16(r&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(b>>3)
}

func (d *ST7735) command(cmd byte, data ...byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return fmt.Errorf("%w: dc low: %w", ErrDisplay, err)
	}
	if err := d.c.Tx([]byte{cmd}, nil); err != nil {
		return fmt.Errorf("%w: command 0x%02X: %w", ErrDisplay, cmd, err)
	}
	if len(data) == 0 {
		return nil
	}
	return d.data(data)
}

func (d *ST7735) data(b []byte) error {
	if err := d.dc.Out(gpio.High); err != nil {
		return fmt.Errorf("%w: dc high: %w", ErrDisplay, err)
	}
	for len(b) > 0 {
		n := min(len(b), maxChunk)
		if err := d.c.Tx(b[:n], nil); err != nil {
			return fmt.Errorf("%w: write data: %w", ErrDisplay, err)
		}
		b = b[n:]
	}
	return nil
}
