package display

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/spi"
)

type txOp struct {
	dc gpio.Level
	w  []byte
}

// recordConn captures every SPI write together with the DC level at the time.
type recordConn struct {
	dc   *gpiotest.Pin
	ops  []txOp
	fail error
}

func (c *recordConn) String() string { return "recordConn" }
func (c *recordConn) Duplex() conn.Duplex { return conn.Half }
func (c *recordConn) TxPackets([]spi.Packet) error { return errors.New("not supported") }

func (c *recordConn) Tx(w, r []byte) error {
	if c.fail != nil {
		return c.fail
	}
	c.ops = append(c.ops, txOp{dc: c.dc.Read(), w: append([]byte(nil), w...)})
	return nil
}

// commands returns each command byte followed by the data sent with it.
func (c *recordConn) commands() []txOp {
	var out []txOp
	for _, op := range c.ops {
		if op.dc == gpio.Low {
			out = append(out, txOp{dc: gpio.Low, w: []byte{op.w[0]}})
			continue
		}
		last := &out[len(out)-1]
		last.w = append(last.w, op.w...)
	}
	return out
}

func newTestST7735(t *testing.T, opts Opts) (*ST7735, *recordConn, *gpiotest.Pin) {
	t.Helper()
	sleep = func(time.Duration) {}
	t.Cleanup(func() { sleep = time.Sleep })

	dc := &gpiotest.Pin{N: "DC"}
	bl := &gpiotest.Pin{N: "BL"}
	c := &recordConn{dc: dc}
	d, err := New(c, dc, bl, &opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d, c, bl
}

func TestST7735InitSequence(t *testing.T) {
	_, c, bl := newTestST7735(t, DefaultOpts)

	want := []struct {
		cmd  byte
		data []byte
	}{
		{cmdSWRESET, nil},
		{cmdSLPOUT, nil},
		{cmdFRMCTR1, []byte{0x01, 0x2C, 0x2D}},
		{cmdFRMCTR2, []byte{0x01, 0x2C, 0x2D}},
		{cmdFRMCTR3, []byte{0x01, 0x2C, 0x2D, 0x01, 0x2C, 0x2D}},
		{cmdINVCTR, []byte{0x07}},
		{cmdPWCTR1, []byte{0xA2, 0x02, 0x84}},
		{cmdPWCTR2, []byte{0xC5}},
		{cmdPWCTR3, []byte{0x0A, 0x00}},
		{cmdPWCTR4, []byte{0x8A, 0x2A}},
		{cmdPWCTR5, []byte{0x8A, 0xEE}},
		{cmdVMCTR1, []byte{0x0E}},
		{cmdINVON, nil},
		{cmdMADCTL, []byte{0xC8}},
		{cmdCOLMOD, []byte{0x05}},
		{cmdCASET, []byte{0x00, 26, 0x00, 105}},
		{cmdRASET, []byte{0x00, 1, 0x00, 160}},
		{cmdGMCTRP1, []byte{0x02, 0x1c, 0x07, 0x12, 0x37, 0x32, 0x29, 0x2d, 0x29, 0x25, 0x2B, 0x39, 0x00, 0x01, 0x03, 0x10}},
		{cmdGMCTRN1, []byte{0x03, 0x1d, 0x07, 0x06, 0x2E, 0x2C, 0x29, 0x2D, 0x2E, 0x2E, 0x37, 0x3F, 0x00, 0x00, 0x02, 0x10}},
		{cmdNORON, nil},
		{cmdDISPON, nil},
	}

	got := c.commands()
	if len(got) != len(want) {
		t.Fatalf("got %d commands, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].w[0] != w.cmd {
			t.Errorf("command %d: got 0x%02X, want 0x%02X", i, got[i].w[0], w.cmd)
			continue
		}
		if !bytes.Equal(got[i].w[1:], w.data) {
			t.Errorf("command 0x%02X data: got % X, want % X", w.cmd, got[i].w[1:], w.data)
		}
	}
	if bl.Read() != gpio.High {
		t.Error("backlight not turned on")
	}
}

func TestST7735Bounds(t *testing.T) {
	tests := []struct {
		rotation int
		want     image.Rectangle
	}{
		{0, image.Rect(0, 0, 80, 160)},
		{90, image.Rect(0, 0, 160, 80)},
		{180, image.Rect(0, 0, 80, 160)},
		{270, image.Rect(0, 0, 160, 80)},
	}
	for _, tt := range tests {
		opts := DefaultOpts
		opts.Rotation = tt.rotation
		d, _, _ := newTestST7735(t, opts)
		if d.Bounds() != tt.want {
			t.Errorf("rotation %d: got %v, want %v", tt.rotation, d.Bounds(), tt.want)
		}
	}
}

func TestST7735InvalidRotation(t *testing.T) {
	opts := DefaultOpts
	opts.Rotation = 45
	dc := &gpiotest.Pin{N: "DC"}
	if _, err := New(&recordConn{dc: dc}, dc, nil, &opts); !errors.Is(err, ErrDisplay) {
		t.Fatalf("expected ErrDisplay, got %v", err)
	}
}

// frameData returns the pixel bytes sent after the last RAMWR.
func frameData(t *testing.T, c *recordConn) []byte {
	t.Helper()
	cmds := c.commands()
	for i := len(cmds) - 1; i >= 0; i-- {
		if cmds[i].w[0] == cmdRAMWR {
			return cmds[i].w[1:]
		}
	}
	t.Fatal("no RAMWR sent")
	return nil
}

func TestST7735DrawChunksFrame(t *testing.T) {
	d, c, _ := newTestST7735(t, DefaultOpts)
	c.ops = nil

	if err := d.Draw(d.Bounds(), &image.Uniform{Red}, image.Point{}); err != nil {
		t.Fatalf("Draw: %v", err)
	}

	cmds := c.commands()
	if len(cmds) != 3 || cmds[0].w[0] != cmdCASET || cmds[1].w[0] != cmdRASET || cmds[2].w[0] != cmdRAMWR {
		t.Fatalf("unexpected command sequence: %d commands", len(cmds))
	}

	var chunks int
	for _, op := range c.ops {
		if len(op.w) > maxChunk {
			t.Errorf("transfer of %d bytes exceeds %d", len(op.w), maxChunk)
		}
		if op.dc == gpio.High && len(op.w) > 4 {
			chunks++
		}
	}
	if chunks != 7 {
		t.Errorf("got %d pixel chunks, want 7", chunks)
	}

	data := frameData(t, c)
	if len(data) != 80*160*2 {
		t.Fatalf("frame size %d", len(data))
	}
	for i := 0; i < len(data); i += 2 {
		if data[i] != 0xF8 || data[i+1] != 0x00 {
			t.Fatalf("pixel %d: got %02X%02X, want F800", i/2, data[i], data[i+1])
		}
	}
}

func TestST7735Rotation(t *testing.T) {
	tests := []struct {
		rotation int
		logical  image.Point
		native   image.Point
	}{
		{0, image.Pt(3, 5), image.Pt(3, 5)},
		{90, image.Pt(0, 0), image.Pt(0, 159)},
		{90, image.Pt(159, 79), image.Pt(79, 0)},
		{180, image.Pt(0, 0), image.Pt(79, 159)},
		{270, image.Pt(0, 0), image.Pt(79, 0)},
		{270, image.Pt(10, 2), image.Pt(77, 10)},
	}

	for _, tt := range tests {
		opts := DefaultOpts
		opts.Rotation = tt.rotation
		d, c, _ := newTestST7735(t, opts)

		img := image.NewRGBA(d.Bounds())
		img.Set(tt.logical.X, tt.logical.Y, color.White)
		if err := d.Draw(d.Bounds(), img, image.Point{}); err != nil {
			t.Fatalf("Draw: %v", err)
		}

		data := frameData(t, c)
		want := (tt.native.Y*opts.Width + tt.native.X) * 2
		for i := 0; i < len(data); i += 2 {
			lit := data[i] != 0 || data[i+1] != 0
			if lit != (i == want) {
				t.Errorf("rotation %d, logical %v: byte %d lit=%v, want lit pixel at byte %d",
					tt.rotation, tt.logical, i, lit, want)
				break
			}
		}
	}
}

func TestRGB565(t *testing.T) {
	tests := []struct {
		c    color.RGBA
		want uint16
	}{
		{Teal, 0x0555},
		{Red, 0xF800},
		{White, 0xFFFF},
		{Black, 0x0000},
	}
	for _, tt := range tests {
		if got := rgb565(tt.c.R, tt.c.G, tt.c.B); got != tt.want {
			t.Errorf("rgb565(%v) = %04X, want %04X", tt.c, got, tt.want)
		}
	}
}

func TestST7735DrawError(t *testing.T) {
	d, c, _ := newTestST7735(t, DefaultOpts)
	c.fail = errors.New("spi: bus gone")
	if err := d.Draw(d.Bounds(), &image.Uniform{Teal}, image.Point{}); !errors.Is(err, ErrDisplay) {
		t.Fatalf("expected ErrDisplay, got %v", err)
	}
}

func TestST7735Halt(t *testing.T) {
	d, _, bl := newTestST7735(t, DefaultOpts)
	if err := d.Halt(); err != nil {
		t.Fatalf("Halt: %v", err)
	}
	if bl.Read() != gpio.Low {
		t.Error("backlight still on")
	}
}
