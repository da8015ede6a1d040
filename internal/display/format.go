package display

import (
	"fmt"
	"time"
)

// FormatBytes returns a human-readable size (B, KiB, MiB, GiB, TiB, PiB).
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	suffixes := []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}
	if exp >= len(suffixes) {
		exp = len(suffixes) - 1
		div = 1
		for i := 0; i <= exp; i++ {
			div *= unit
		}
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), suffixes[exp])
}

// FormatProgress renders one download progress line, e.g.
// "12.0 MiB / 48.0 MiB (25.0%) ETA 1m05s". Unknown totals print only the
// downloaded size.
func FormatProgress(downloaded, total int64, eta time.Duration) string {
	if total <= 0 {
		return FormatBytes(downloaded)
	}
	pct := float64(downloaded) / float64(total) * 100
	s := fmt.Sprintf("%s / %s (%.1f%%)", FormatBytes(downloaded), FormatBytes(total), pct)
	if eta > 0 {
		s += " ETA " + eta.Round(time.Second).String()
	}
	return s
}
