package plant

import (
	"math"
	"testing"
)

func TestCPUHistorySeeded(t *testing.T) {
	h := NewCPUHistory(42.5)

	if h.Len() != HistorySize {
		t.Fatalf("Len: got %d, want %d", h.Len(), HistorySize)
	}
	for i, v := range h.Values() {
		if v != 42.5 {
			t.Errorf("slot %d: got %v, want 42.5", i, v)
		}
	}
	if h.Mean() != 42.5 {
		t.Errorf("Mean: got %v, want 42.5", h.Mean())
	}
}

func TestCPUHistoryPushEvictsOldest(t *testing.T) {
	h := NewCPUHistory(0)
	for i := 1; i <= 5; i++ {
		h.Push(float64(i))
	}
	// [1 2 3 4 5]
	prev := h.Values()

	for _, s := range []float64{6, -3.5, 100, 7, 8, 9, 10} {
		h.Push(s)
		got := h.Values()

		if len(got) != HistorySize {
			t.Fatalf("after push %v: len %d, want %d", s, len(got), HistorySize)
		}
		if got[len(got)-1] != s {
			t.Errorf("after push %v: newest is %v", s, got[len(got)-1])
		}
		for i := 0; i < HistorySize-1; i++ {
			if got[i] != prev[i+1] {
				t.Errorf("after push %v: slot %d got %v, want %v", s, i, got[i], prev[i+1])
			}
		}
		prev = got
	}
}

func TestCompensateExact(t *testing.T) {
	tests := []struct {
		name  string
		seed  float64
		cpu   []float64
		raw   float64
		wantC float64
		wantA float64
	}{
		{
			name:  "steady cpu",
			seed:  50,
			cpu:   []float64{50},
			raw:   25,
			wantC: 0, // 25 - (50 - 25)
			wantA: 50,
		},
		{
			name:  "rising cpu",
			seed:  40,
			cpu:   []float64{45, 50},
			raw:   22,
			wantC: 22 - (43 - 22), // mean(40,40,40,45,50) = 43
			wantA: 43,
		},
		{
			name:  "negative temperatures",
			seed:  -5,
			cpu:   []float64{-10},
			raw:   -20,
			wantC: -20 - (-6 - -20), // mean(-5,-5,-5,-5,-10) = -6
			wantA: -6,
		},
		{
			name:  "cpu cooler than ambient",
			seed:  10,
			cpu:   []float64{10},
			raw:   15,
			wantC: 20,
			wantA: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCompensator(tt.seed, 1)
			var got, avg float64
			for _, cpu := range tt.cpu {
				got, avg = c.Compensate(tt.raw, cpu)
			}
			if math.Abs(avg-tt.wantA) > 1e-9 {
				t.Errorf("avg: got %v, want %v", avg, tt.wantA)
			}
			if math.Abs(got-tt.wantC) > 1e-9 {
				t.Errorf("compensated: got %v, want %v", got, tt.wantC)
			}
			// direct substitution against the updated window
			mean := c.History().Mean()
			if want := tt.raw - (mean - tt.raw); math.Abs(got-want) > 1e-9 {
				t.Errorf("compensated %v != raw - (mean - raw) = %v", got, want)
			}
		})
	}
}

func TestCompensateFactor(t *testing.T) {
	c := NewCompensator(50, 0.8)
	got, _ := c.Compensate(30, 50)
	want := 30 - (50-30)/0.8
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCompensatorNonPositiveFactorDefaultsToOne(t *testing.T) {
	for _, f := range []float64{0, -2} {
		c := NewCompensator(30, f)
		if c.Factor != 1 {
			t.Errorf("factor %v: got %v, want 1", f, c.Factor)
		}
	}
}
