package env

// GasSample is one MICS6814 measurement, expressed as sensor resistance.
type GasSample struct {
	Oxidising float64 `json:"oxidising_ohms"`
	Reducing  float64 `json:"reducing_ohms"`
	NH3       float64 `json:"nh3_ohms"`
}

// Reading is the per-pass bundle of sensor values. It is not retained
// between passes.
type Reading struct {
	Proximity       int        `json:"proximity"`      // raw 11-bit count
	RawTemp         float64    `json:"raw_temp_c"`     // °C, uncompensated
	CompensatedTemp float64    `json:"temp_c"`         // °C
	CPUTemp         float64    `json:"cpu_temp_c"`     // °C, latest sample
	AvgCPUTemp      float64    `json:"avg_cpu_temp_c"` // °C, window mean
	Humidity        float64    `json:"humidity_pct"`   // %RH
	Lux             float64    `json:"lux"`            // lx
	Gas             *GasSample `json:"gas,omitempty"`  // nil when disabled
}
