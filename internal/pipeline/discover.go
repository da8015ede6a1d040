package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/backmassage/ytsub/internal/failure"
)

// Subscription file extensions (lowercase, with leading dot).
var subscriptionExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
}

// ExpandPaths returns the subscription files named by paths, in argument
// order. A directory expands to the YAML files directly inside it, sorted
// lexicographically for deterministic run order; files are kept as given
// whatever their extension. A missing path is a KindFileNotFound failure.
func ExpandPaths(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		fi, err := os.Stat(p)
		if errors.Is(err, os.ErrNotExist) {
			return nil, failure.Wrapf(failure.KindFileNotFound, err, "subscription path '%s' does not exist", p)
		}
		if err != nil {
			return nil, failure.Wrapf(failure.KindFileNotFound, err, "cannot access subscription path '%s': %v", p, err)
		}
		if !fi.IsDir() {
			files = append(files, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, failure.Wrapf(failure.KindFileNotFound, err, "cannot read subscription directory '%s': %v", p, err)
		}
		var found []string
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if subscriptionExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
				found = append(found, filepath.Join(p, e.Name()))
			}
		}
		if len(found) == 0 {
			return nil, failure.Newf(failure.KindFileNotFound, "subscription directory '%s' contains no .yaml files", p)
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}
