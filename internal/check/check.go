// Package check validates the external tools a download run depends on
// before any subscription is built.
package check

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/backmassage/ytsub/internal/failure"
)

// Tool names looked up on PATH.
const (
	YtDlp  = "yt-dlp"
	Ffmpeg = "ffmpeg"
)

// Logger is the minimal logging interface needed by CheckDeps.
type Logger interface {
	Verbose(string, ...any)
	Warn(string, ...any)
}

// Indirection for tests.
var (
	lookPath = exec.LookPath
	version  = toolVersion
)

// CheckDeps verifies yt-dlp is on PATH and warns when ffmpeg is not: yt-dlp
// can still download single-stream formats without it, but merging and
// remuxing will fail.
func CheckDeps(log Logger) error {
	path, err := lookPath(YtDlp)
	if err != nil {
		return failure.Wrapf(failure.KindFileNotFound, err,
			"%s not found on PATH. Install it (https://github.com/yt-dlp/yt-dlp) and try again", YtDlp)
	}
	log.Verbose("%s: %s (%s)", YtDlp, path, version(path, "--version"))

	path, err = lookPath(Ffmpeg)
	if err != nil {
		log.Warn("%s not found on PATH; formats that need merging will fail", Ffmpeg)
		return nil
	}
	log.Verbose("%s: %s (%s)", Ffmpeg, path, version(path, "-version"))
	return nil
}

// toolVersion returns the first line of the tool's version output, or
// "unknown version" if it cannot be run.
func toolVersion(path, flag string) string {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, path, flag).Output()
	if err != nil {
		return "unknown version"
	}
	first := strings.TrimSpace(string(out))
	if idx := strings.Index(first, "\n"); idx > 0 {
		first = first[:idx]
	}
	return first
}
