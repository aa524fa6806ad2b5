package sensors

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// DefaultThermalZone is the Linux sysfs CPU temperature file.
const DefaultThermalZone = "/sys/class/thermal/thermal_zone0/temp"

// CommandThermal runs a platform utility (vcgencmd measure_temp) and parses
// its "temp=48.3'C" output.
type CommandThermal struct {
	Name string
	Args []string

	// run defaults to exec.CommandContext(...).Output.
	run func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewCommandThermal splits cmdline on whitespace into program and arguments.
func NewCommandThermal(cmdline string) (*CommandThermal, error) {
	fields := strings.Fields(cmdline)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty cpu temperature command")
	}
	return &CommandThermal{Name: fields[0], Args: fields[1:]}, nil
}

// ReadCPUTemperature spawns the utility and parses its output.
func (c *CommandThermal) ReadCPUTemperature(ctx context.Context) (float64, error) {
	run := c.run
	if run == nil {
		run = runCommand
	}
	out, err := run(ctx, c.Name, c.Args...)
	if err != nil {
		return 0, fmt.Errorf("%w: run %s: %w", ErrSensor, c.Name, err)
	}
	return ParseMeasureTemp(string(out))
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// ParseMeasureTemp extracts the value between the first '=' and the last '\''.
func ParseMeasureTemp(out string) (float64, error) {
	start := strings.Index(out, "=")
	end := strings.LastIndex(out, "'")
	if start < 0 || end < 0 || end <= start {
		return 0, fmt.Errorf("%w: unexpected cpu temperature output %q", ErrSensor, strings.TrimSpace(out))
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(out[start+1:end]), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: parse cpu temperature: %w", ErrSensor, err)
	}
	return v, nil
}

// SysfsThermal reads a thermal-zone file.
type SysfsThermal struct {
	Path string
}

// ReadCPUTemperature returns °C. Values above 1000 are taken as milli-degrees.
func (s SysfsThermal) ReadCPUTemperature(ctx context.Context) (float64, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return 0, fmt.Errorf("%w: read %s: %w", ErrSensor, s.Path, err)
	}
	return parseThermalZone(string(b))
}

func parseThermalZone(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: cpu temperature empty", ErrSensor)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: parse cpu temperature %q: %w", ErrSensor, s, err)
	}
	if n > 1000 {
		return float64(n) / 1000.0, nil
	}
	return float64(n), nil
}
