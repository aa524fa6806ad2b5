package plant

// HistorySize is the number of CPU temperature samples averaged for compensation.
const HistorySize = 5

// CPUHistory is a fixed-size ring of the most recent CPU temperatures.
// It always holds exactly HistorySize entries.
// Not safe for concurrent use.
type CPUHistory struct {
	buf  [HistorySize]float64
	head int // oldest entry, next to be overwritten
}

// NewCPUHistory returns a history with every slot seeded with first.
func NewCPUHistory(first float64) *CPUHistory {
	h := &CPUHistory{}
	for i := range h.buf {
		h.buf[i] = first
	}
	return h
}

// Push appends v and evicts the oldest sample.
func (h *CPUHistory) Push(v float64) {
	h.buf[h.head] = v
	h.head = (h.head + 1) % HistorySize
}

// Mean returns the arithmetic mean of the stored samples.
func (h *CPUHistory) Mean() float64 {
	sum := 0.0
	for _, v := range h.buf {
		sum += v
	}
	return sum / HistorySize
}

// Values returns the samples ordered oldest first.
func (h *CPUHistory) Values() []float64 {
	out := make([]float64, 0, HistorySize)
	for i := 0; i < HistorySize; i++ {
		out = append(out, h.buf[(h.head+i)%HistorySize])
	}
	return out
}

// Len is always HistorySize.
func (h *CPUHistory) Len() int {
	return len(h.buf)
}

// Compensator removes the enclosure self-heating bias from the ambient
// temperature using a smoothed CPU temperature.
type Compensator struct {
	history *CPUHistory

	// Factor divides the CPU/ambient delta. 1 reproduces
	// raw - (avg - raw) exactly.
	Factor float64
}

// NewCompensator seeds the history with the first CPU sample.
func NewCompensator(firstCPU, factor float64) *Compensator {
	if factor <= 0 {
		factor = 1
	}
	return &Compensator{history: NewCPUHistory(firstCPU), Factor: factor}
}

// Compensate records cpu and returns the compensated temperature along with
// the CPU average it was derived from.
func (c *Compensator) Compensate(raw, cpu float64) (compensated, avgCPU float64) {
	c.history.Push(cpu)
	avgCPU = c.history.Mean()
	return raw - (avgCPU-raw)/c.Factor, avgCPU
}

// History exposes the underlying sample window.
func (c *Compensator) History() *CPUHistory {
	return c.history
}
