package sensors

import (
	"context"
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

// LTR-559 registers.
const (
	ltrALSControl  = 0x80
	ltrPSControl   = 0x81
	ltrPSLED       = 0x82
	ltrPSNPulses   = 0x83
	ltrPSMeasRate  = 0x84
	ltrALSMeasRate = 0x85
	ltrPartID      = 0x86
	ltrALSDataCh1  = 0x88 // ch1 lo, ch1 hi, ch0 lo, ch0 hi
	ltrPSData      = 0x8D // lo, hi (bits 2:0)

	ltrPartIDValue = 0x92 // part 0x9, revision 0x2
)

// DefaultLTR559Addr is the fixed I²C address of the LTR-559.
const DefaultLTR559Addr = 0x23

// Acquisition settings written at init. Lux maths depends on them.
const (
	ltrGain          = 4
	ltrIntegrationMs = 50
)

// Lux coefficients indexed by the ch1/(ch0+ch1) ratio bucket.
var (
	ltrCh0Coeff = [4]float64{17743, 42785, 5926, 0}
	ltrCh1Coeff = [4]float64{-11059, 19548, -1185, 0}
)

// LTR559 drives a Lite-On LTR-559 light and proximity sensor.
type LTR559 struct {
	dev i2c.Dev
}

// NewLTR559 checks the part ID and enables both ALS and PS in active mode.
func NewLTR559(bus i2c.Bus, addr uint16) (*LTR559, error) {
	l := &LTR559{dev: i2c.Dev{Bus: bus, Addr: addr}}

	var id [1]byte
	if err := l.dev.Tx([]byte{ltrPartID}, id[:]); err != nil {
		return nil, fmt.Errorf("%w: LTR559 read part id: %w", ErrSensor, err)
	}
	if id[0] != ltrPartIDValue {
		return nil, fmt.Errorf("%w: LTR559 unexpected part id 0x%02X", ErrSensor, id[0])
	}

	regs := [][2]byte{
		{ltrALSControl, 0x09},  // gain 4x, active
		{ltrPSControl, 0x03},   // active
		{ltrPSLED, 0x7B},       // 30kHz, 100% duty, 50mA
		{ltrPSNPulses, 0x01},   // 1 pulse
		{ltrPSMeasRate, 0x02},  // 100ms
		{ltrALSMeasRate, 0x08}, // 50ms integration, 50ms repeat
	}
	for _, w := range regs {
		if _, err := l.dev.Write(w[:]); err != nil {
			return nil, fmt.Errorf("%w: LTR559 write reg 0x%02X: %w", ErrSensor, w[0], err)
		}
	}
	return l, nil
}

// ReadProximity returns the 11-bit proximity count; larger is closer.
func (l *LTR559) ReadProximity(ctx context.Context) (int, error) {
	var b [2]byte
	if err := l.dev.Tx([]byte{ltrPSData}, b[:]); err != nil {
		return 0, fmt.Errorf("%w: LTR559 read proximity: %w", ErrSensor, err)
	}
	return int(b[0]) | int(b[1]&0x07)<<8, nil
}

// ReadLux returns the ambient light level.
func (l *LTR559) ReadLux(ctx context.Context) (float64, error) {
	var b [4]byte
	if err := l.dev.Tx([]byte{ltrALSDataCh1}, b[:]); err != nil {
		return 0, fmt.Errorf("%w: LTR559 read als: %w", ErrSensor, err)
	}
	ch1 := float64(uint16(b[0]) | uint16(b[1])<<8)
	ch0 := float64(uint16(b[2]) | uint16(b[3])<<8)
	return ltrLux(ch0, ch1), nil
}

func ltrLux(ch0, ch1 float64) float64 {
	ratio := 101.0
	if ch0+ch1 > 0 {
		ratio = ch1 * 100 / (ch0 + ch1)
	}

	var idx int
	switch {
	case ratio < 45:
		idx = 0
	case ratio < 64:
		idx = 1
	case ratio < 85:
		idx = 2
	default:
		idx = 3
	}

	lux := ch0*ltrCh0Coeff[idx] - ch1*ltrCh1Coeff[idx]
	lux /= ltrIntegrationMs / 100.0
	lux /= ltrGain
	return lux / 10000
}

// Close puts both channels in standby.
func (l *LTR559) Close() error {
	if _, err := l.dev.Write([]byte{ltrALSControl, 0x00}); err != nil {
		return err
	}
	_, err := l.dev.Write([]byte{ltrPSControl, 0x00})
	return err
}
