package sensors

import (
	"context"
	"errors"
	"math"
	"testing"

	"periph.io/x/conn/v3/i2c/i2ctest"
)

func ltrInitOps() []i2ctest.IO {
	return []i2ctest.IO{
		{Addr: DefaultLTR559Addr, W: []byte{0x86}, R: []byte{0x92}},
		{Addr: DefaultLTR559Addr, W: []byte{0x80, 0x09}},
		{Addr: DefaultLTR559Addr, W: []byte{0x81, 0x03}},
		{Addr: DefaultLTR559Addr, W: []byte{0x82, 0x7B}},
		{Addr: DefaultLTR559Addr, W: []byte{0x83, 0x01}},
		{Addr: DefaultLTR559Addr, W: []byte{0x84, 0x02}},
		{Addr: DefaultLTR559Addr, W: []byte{0x85, 0x08}},
	}
}

func TestLTR559ReadLux(t *testing.T) {
	tests := []struct {
		name string
		als  []byte // ch1 lo, ch1 hi, ch0 lo, ch0 hi
		want float64
	}{
		{"visible only", []byte{0x00, 0x00, 0xE8, 0x03}, 887.15},
		{"mixed ir", []byte{0xF4, 0x01, 0xE8, 0x03}, 1163.625},
		{"dark", []byte{0x00, 0x00, 0x00, 0x00}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops := append(ltrInitOps(), i2ctest.IO{Addr: DefaultLTR559Addr, W: []byte{0x88}, R: tt.als})
			bus := &i2ctest.Playback{Ops: ops}
			defer bus.Close()

			l, err := NewLTR559(bus, DefaultLTR559Addr)
			if err != nil {
				t.Fatalf("NewLTR559: %v", err)
			}
			got, err := l.ReadLux(context.Background())
			if err != nil {
				t.Fatalf("ReadLux: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("lux: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLTR559ReadProximity(t *testing.T) {
	ops := append(ltrInitOps(), i2ctest.IO{Addr: DefaultLTR559Addr, W: []byte{0x8D}, R: []byte{0x34, 0x82}})
	bus := &i2ctest.Playback{Ops: ops}
	defer bus.Close()

	l, err := NewLTR559(bus, DefaultLTR559Addr)
	if err != nil {
		t.Fatalf("NewLTR559: %v", err)
	}
	got, err := l.ReadProximity(context.Background())
	if err != nil {
		t.Fatalf("ReadProximity: %v", err)
	}
	// saturation bit ignored, 3 high bits kept
	if got != 0x234 {
		t.Errorf("proximity: got %d, want %d", got, 0x234)
	}
}

func TestLTR559WrongPartID(t *testing.T) {
	bus := &i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: DefaultLTR559Addr, W: []byte{0x86}, R: []byte{0x55}},
	}}
	defer bus.Close()

	_, err := NewLTR559(bus, DefaultLTR559Addr)
	if !errors.Is(err, ErrSensor) {
		t.Fatalf("expected ErrSensor, got %v", err)
	}
}

func TestLTRLuxBuckets(t *testing.T) {
	tests := []struct {
		ch0, ch1 float64
		want     float64
	}{
		{100, 100, 116.185}, // ratio 50
		{25, 75, 11.85125},  // ratio 75
		{10, 90, 0},         // ratio 90
		{1000, 0, 887.15},   // ratio 0
	}
	for _, tt := range tests {
		if got := ltrLux(tt.ch0, tt.ch1); math.Abs(got-tt.want) > 1e-6 {
			t.Errorf("ltrLux(%v, %v) = %v, want %v", tt.ch0, tt.ch1, got, tt.want)
		}
	}
}
