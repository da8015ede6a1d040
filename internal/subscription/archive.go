package subscription

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/backmassage/ytsub/internal/failure"
)

// archiveFileName is the per-subscription download archive kept next to the
// downloaded files. yt-dlp appends one "<extractor> <id>" line per download.
func archiveFileName(subscriptionName string) string {
	return ".ytsub-" + subscriptionName + "-download-archive.txt"
}

// archivePath returns the archive location for a subscription.
func archivePath(outputDir, subscriptionName string) string {
	return filepath.Join(outputDir, archiveFileName(subscriptionName))
}

// loadArchive reads and validates an archive. A missing archive is empty.
// The returned count is the number of recorded downloads.
func loadArchive(path string) (int, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, failure.Wrapf(failure.KindDownloadArchive, err, "cannot open download archive '%s': %v", path, err)
	}
	defer f.Close()

	count := 0
	lineNo := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if len(strings.Fields(line)) != 2 {
			return 0, failure.Newf(failure.KindDownloadArchive,
				"download archive '%s' is malformed at line %d: expected '<extractor> <id>', got %q. "+
					"Fix or delete the file to continue", path, lineNo, line)
		}
		count++
	}
	if err := sc.Err(); err != nil {
		return 0, failure.Wrapf(failure.KindDownloadArchive, err, "cannot read download archive '%s': %v", path, err)
	}
	return count, nil
}
