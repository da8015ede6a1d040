// Package term holds ytsub's console color state.
//
// The logger tags each console line with a color and the usage banner is
// tinted cyan; both read the variables below at write time, so the colors
// can be switched after the config file sets `configuration.color`. The
// debug log file never contains escape sequences.
package term

import (
	"os"
	"strings"

	"github.com/backmassage/ytsub/internal/config"
)

// Escape sequences, empty while colors are off.
var (
	Red    = "" // ERROR
	Green  = "" // SUCCESS
	Yellow = "" // WARN
	Blue   = "" // INFO
	Cyan   = "" // VERBOSE, banner
	Gray   = "" // DEBUG
	NC     = "" // Reset.
)

// palette is the full set of escape sequences, in the order of the
// variables above.
var palette = [...]string{"\033[1;91m", "\033[1;92m", "\033[1;93m", "\033[1;94m", "\033[1;96m", "\033[0;90m", "\033[0m"}

// Configure switches colors on or off for mode. It runs once when the
// logger is created and again after the config file is loaded.
func Configure(mode config.ColorMode) {
	targets := [...]*string{&Red, &Green, &Yellow, &Blue, &Cyan, &Gray, &NC}
	on := resolve(mode)
	for i, v := range targets {
		*v = ""
		if on {
			*v = palette[i]
		}
	}
}

// Enabled reports whether ANSI colors are currently active.
func Enabled() bool { return NC != "" }

// resolve decides auto mode from stdout being a TTY, NO_COLOR
// (https://no-color.org) and TERM=dumb.
func resolve(mode config.ColorMode) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default: // ColorAuto
		return IsTerminal(os.Stdout) &&
			os.Getenv("NO_COLOR") == "" &&
			strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
}

// IsTerminal reports whether f is a character device.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
