package cmd

import (
	"github.com/spf13/pflag"

	"github.com/mj1618/uiarec/internal/output"
)

// DefaultScenario is used when --scenario is not given.
const DefaultScenario = "scenario.yaml"

// formatValue is a pflag.Value accepting only supported output formats.
type formatValue struct {
	f output.Format
}

func newFormatValue() *formatValue { return &formatValue{f: output.FormatYAML} }

func (v *formatValue) String() string { return string(v.f) }

func (v *formatValue) Set(s string) error {
	f, err := output.ParseFormat(s)
	if err != nil {
		return err
	}
	v.f = f
	return nil
}

func (v *formatValue) Type() string { return "format" }

func (v *formatValue) Format() output.Format { return v.f }

func addGlobalFlags(fs *pflag.FlagSet) {
	fs.StringP("config", "c", "", "Config file (default $UIAREC_CONFIG or ./uiarec.yaml)")
	fs.StringP("scenario", "s", DefaultScenario, "Scenario file (.yaml or .json)")
	fs.Var(newFormatValue(), "format", "Output format: yaml, json")
	fs.Bool("pretty", false, "Pretty-print JSON output")
	fs.String("log-level", "", "Override the configured log level: debug, info, warn, error")
}

// addStepsFlag registers a repeatable --step selector.
func addStepsFlag(fs *pflag.FlagSet, usage string) {
	fs.StringSlice("step", nil, usage)
}

// addModeFlags registers --debug and --plain. Neither set means the
// configured default.
func addModeFlags(fs *pflag.FlagSet) {
	fs.Bool("debug", false, "Instrument the script for fault correlation")
	fs.Bool("plain", false, "Compile without fault correlation")
}

// modeFlag returns the explicit mode choice, or nil when neither flag is set.
func modeFlag(fs *pflag.FlagSet) *bool {
	var v bool
	switch {
	case fs.Changed("debug"):
		v, _ = fs.GetBool("debug")
	case fs.Changed("plain"):
		plain, _ := fs.GetBool("plain")
		v = !plain
	default:
		return nil
	}
	return &v
}
