package plant

import "fmt"

// Kind selects which panel the display renders.
type Kind int

const (
	Normal Kind = iota
	Warning
)

func (k Kind) String() string {
	switch k {
	case Normal:
		return "normal"
	case Warning:
		return "warning"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Status messages shown on the second display line.
const (
	MsgHappy    = "Happy Plant"
	MsgTooCold  = "Too cold"
	MsgTooHot   = "Too hot"
	MsgTooDark  = "Too dark"
	MsgTooLight = "Too light"
	LabelTemp   = "Temp"
	LabelLight  = "Light"
	UnitCelsius = "C"
	UnitLux     = "Lux"
)

// DisplayState is the outcome of one threshold evaluation.
// Name is set for Normal; Label, Value and Unit for Warning.
type DisplayState struct {
	Kind    Kind
	Name    string
	Label   string
	Value   float64
	Unit    string
	Message string
}

// NormalState builds a Normal state.
func NormalState(name, message string) DisplayState {
	return DisplayState{Kind: Normal, Name: name, Message: message}
}

// WarningState builds a Warning state.
func WarningState(label string, value float64, unit, message string) DisplayState {
	return DisplayState{Kind: Warning, Label: label, Value: value, Unit: unit, Message: message}
}

// Evaluate compares the compensated temperature and light level against s.
// Temperature is checked before light and only the first violation is
// reported. The lower temperature bound is inclusive; all others are
// exclusive.
func Evaluate(temp, lux float64, s Settings) DisplayState {
	switch {
	case temp <= s.TempMin:
		return WarningState(LabelTemp, temp, UnitCelsius, MsgTooCold)
	case temp > s.TempMax:
		return WarningState(LabelTemp, temp, UnitCelsius, MsgTooHot)
	case lux < s.LuxMin:
		return WarningState(LabelLight, lux, UnitLux, MsgTooDark)
	case lux > s.LuxMax:
		return WarningState(LabelLight, lux, UnitLux, MsgTooLight)
	default:
		return NormalState(s.Name, MsgHappy)
	}
}
