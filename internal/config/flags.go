package config

// This file holds the global CLI options shared by `sub` and `dl`, the log
// level enum, and the known-args splitter used by `dl`, which forwards every
// token it does not recognize to the argument translator.

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/backmassage/ytsub/internal/failure"
)

// LogLevel selects console verbosity. The debug log file always receives
// every level.
type LogLevel string

const (
	LogQuiet   LogLevel = "quiet"   // Errors and warnings only.
	LogInfo    LogLevel = "info"    // Default.
	LogVerbose LogLevel = "verbose" // Per-job detail.
	LogDebug   LogLevel = "debug"   // Everything, including engine progress and traces.
)

// LogLevelNames lists the accepted --log-level values in increasing verbosity.
var LogLevelNames = []string{string(LogQuiet), string(LogInfo), string(LogVerbose), string(LogDebug)}

// ParseLogLevel validates a --log-level value.
func ParseLogLevel(s string) (LogLevel, error) {
	switch LogLevel(strings.ToLower(strings.TrimSpace(s))) {
	case LogQuiet:
		return LogQuiet, nil
	case LogInfo:
		return LogInfo, nil
	case LogVerbose:
		return LogVerbose, nil
	case LogDebug:
		return LogDebug, nil
	}
	return "", failure.Newf(failure.KindValidation,
		"invalid log level %q (use %s)", s, strings.Join(LogLevelNames, ", "))
}

// Options holds the global flags. Populated by cobra persistent flags for
// `sub`, and by [SplitKnownArgs] for `dl`.
type Options struct {
	ConfigPath     string
	ConfigExplicit bool // --config was given; a missing file is then an error.
	LogLevel       LogLevel
	DryRun         bool
	Help           bool
}

// DefaultOptions returns the options in effect when no global flag is given.
func DefaultOptions() Options {
	return Options{
		ConfigPath: DefaultConfigPath,
		LogLevel:   LogInfo,
	}
}

// SplitKnownArgs pulls the global flags out of args and returns the rest in
// their original order. Both `--flag value` and `--flag=value` forms are
// accepted, as are the short forms -c, -l, -d and -h.
func SplitKnownArgs(opts *Options, args []string) ([]string, error) {
	var extra []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, value, hasValue := strings.Cut(arg, "=")

		switch name {
		case "--config", "-c", "--log-level", "-l":
			if !hasValue {
				if i+1 >= len(args) {
					return nil, failure.Newf(failure.KindValidation, "flag %s needs a value", name)
				}
				i++
				value = args[i]
			}
			if name == "--config" || name == "-c" {
				opts.ConfigPath = value
				opts.ConfigExplicit = true
				continue
			}
			level, err := ParseLogLevel(value)
			if err != nil {
				return nil, err
			}
			opts.LogLevel = level
		case "--dry-run", "-d":
			if hasValue {
				b, err := parseBool(value)
				if err != nil {
					return nil, failure.Newf(failure.KindValidation, "flag %s: %v", name, err)
				}
				opts.DryRun = b
				continue
			}
			opts.DryRun = true
		case "--help", "-h":
			opts.Help = true
		default:
			extra = append(extra, arg)
		}
	}
	return extra, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

// logLevelValue adapts LogLevel to pflag.Value so cobra validates it at parse time.
type logLevelValue struct{ p *LogLevel }

var _ pflag.Value = (*logLevelValue)(nil)

// NewLogLevelValue returns a pflag.Value bound to p.
func NewLogLevelValue(p *LogLevel) *logLevelValue { return &logLevelValue{p} }

func (v *logLevelValue) String() string { return string(*v.p) }
func (v *logLevelValue) Type() string   { return "level" }
func (v *logLevelValue) Set(s string) error {
	level, err := ParseLogLevel(s)
	if err != nil {
		return err
	}
	*v.p = level
	return nil
}
