// Package subscription is the job runtime: it turns a resolved preset
// definition into a runnable Subscription and runs it through a download
// engine.
package subscription

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/backmassage/ytsub/internal/config"
	"github.com/backmassage/ytsub/internal/failure"
	"github.com/backmassage/ytsub/internal/preset"
)

// DefaultFileName is the yt-dlp output template used when file_name is unset.
const DefaultFileName = "%(title)s.%(ext)s"

// Logger is the subset of the logging package the runtime writes to.
type Logger interface {
	Info(string, ...any)
	Success(string, ...any)
	Verbose(string, ...any)
	Debug(string, ...any)
}

// Known sub-options per mapping root.
var knownOptions = map[string][]string{
	"download":       {"url"},
	"output_options": {"output_directory", "file_name", "maintain_download_archive"},
	"ytdl_options":   {"format"},
}

// Runtime builds Subscriptions bound to one engine.
type Runtime struct {
	engine Engine
	log    Logger
}

// NewRuntime returns a Runtime that downloads through engine.
func NewRuntime(engine Engine, log Logger) *Runtime {
	return &Runtime{engine: engine, log: log}
}

// Subscription is one executable job.
type Subscription struct {
	name            string
	urls            []string
	outputDir       string
	fileName        string
	format          string
	maintainArchive bool
	workDir         string

	engine Engine
	log    Logger
}

// FromDefinition validates def and binds it to the runtime's engine. The
// config's working_directory holds yt-dlp's intermediate files; cfg is never
// modified.
func (r *Runtime) FromDefinition(def preset.Definition, cfg *config.Config) (*Subscription, error) {
	name := def.Name()
	opts := def.Options()

	for root, allowed := range knownOptions {
		m, _ := opts[root].(map[string]any)
		if err := checkKnown(name, root, m, allowed); err != nil {
			return nil, err
		}
	}

	vars, err := overrideVars(name, opts["overrides"])
	if err != nil {
		return nil, err
	}

	s := &Subscription{
		name:            name,
		fileName:        DefaultFileName,
		maintainArchive: true,
		workDir:         cfg.Configuration.WorkingDirectory,
		engine:          r.engine,
		log:             r.log,
	}

	rawURLs, ok := def.Get("download.url")
	if !ok {
		return nil, failure.Newf(failure.KindValidation, "subscription '%s' is missing 'download.url'", name)
	}
	urls, err := stringList(rawURLs)
	if err != nil {
		return nil, failure.Newf(failure.KindValidation, "subscription '%s': download.url %v", name, err)
	}
	for _, u := range urls {
		formatted, err := formatOverrides("download.url", u, vars)
		if err != nil {
			return nil, err
		}
		s.urls = append(s.urls, formatted)
	}

	rawDir, ok := def.Get("output_options.output_directory")
	if !ok {
		return nil, failure.Newf(failure.KindValidation,
			"subscription '%s' is missing 'output_options.output_directory'", name)
	}
	dir, ok := rawDir.(string)
	if !ok || strings.TrimSpace(dir) == "" {
		return nil, failure.Newf(failure.KindValidation,
			"subscription '%s': output_options.output_directory must be a non-empty string", name)
	}
	if s.outputDir, err = formatOverrides("output_options.output_directory", dir, vars); err != nil {
		return nil, err
	}

	if raw, ok := def.Get("output_options.file_name"); ok {
		fn, isString := raw.(string)
		if !isString || fn == "" {
			return nil, failure.Newf(failure.KindValidation,
				"subscription '%s': output_options.file_name must be a non-empty string", name)
		}
		if s.fileName, err = formatOverrides("output_options.file_name", fn, vars); err != nil {
			return nil, err
		}
	}

	if raw, ok := def.Get("output_options.maintain_download_archive"); ok {
		b, isBool := raw.(bool)
		if !isBool {
			return nil, failure.Newf(failure.KindValidation,
				"subscription '%s': output_options.maintain_download_archive must be true or false", name)
		}
		s.maintainArchive = b
	}

	if raw, ok := def.Get("ytdl_options.format"); ok {
		f, isString := raw.(string)
		if !isString {
			return nil, failure.Newf(failure.KindValidation, "subscription '%s': ytdl_options.format must be a string", name)
		}
		s.format = f
	}

	return s, nil
}

// Name returns the subscription name.
func (s *Subscription) Name() string { return s.name }

// URLs returns the resolved download URLs.
func (s *Subscription) URLs() []string { return append([]string(nil), s.urls...) }

// OutputDirectory returns the resolved output directory.
func (s *Subscription) OutputDirectory() string { return s.outputDir }

// ArchivePath returns where the download archive lives, or "" when the
// subscription does not keep one.
func (s *Subscription) ArchivePath() string {
	if !s.maintainArchive {
		return ""
	}
	return archivePath(s.outputDir, s.name)
}

// Run downloads every URL in order. With dryRun set, all validation still
// happens but nothing is written: no directory is created, the archive is
// not handed to the engine, and the engine only simulates.
func (s *Subscription) Run(ctx context.Context, dryRun bool) error {
	engineArchive := ""
	if s.maintainArchive {
		path := archivePath(s.outputDir, s.name)
		recorded, err := loadArchive(path)
		if err != nil {
			return err
		}
		s.log.Verbose("%s: download archive %s holds %d entries", s.name, path, recorded)
		if !dryRun {
			engineArchive = path
		}
	}

	if dryRun {
		s.log.Info("[DRY] %s: simulating %d url(s) into %s", s.name, len(s.urls), s.outputDir)
	} else if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return failure.Wrapf(failure.KindValidation, err, "cannot create output directory '%s': %v", s.outputDir, err)
	}

	entries := 0
	for _, url := range s.urls {
		s.log.Verbose("%s: downloading %s", s.name, url)
		res, err := s.engine.Download(ctx, Request{
			URL:            url,
			OutputTemplate: filepath.Join(s.outputDir, s.fileName),
			Format:         s.format,
			ArchivePath:    engineArchive,
			TempDir:        s.workDir,
			Simulate:       dryRun,
		})
		if err != nil {
			if ctx.Err() != nil {
				return failure.Wrapf(failure.KindValidation, ctx.Err(),
					"interrupted while downloading '%s' for subscription '%s'", url, s.name)
			}
			return failure.Internal(err, fmt.Sprintf("download of '%s' failed for subscription '%s'", url, s.name))
		}
		entries += res.Entries
	}

	if dryRun {
		s.log.Success("[DRY] %s: %d entries resolved", s.name, entries)
	} else {
		s.log.Success("%s: %d entries downloaded", s.name, entries)
	}
	return nil
}

func checkKnown(name, root string, opts map[string]any, allowed []string) error {
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		found := false
		for _, a := range allowed {
			if a == k {
				found = true
				break
			}
		}
		if !found {
			return failure.Newf(failure.KindValidation,
				"'%s.%s' is not a valid option for subscription '%s'. Allowed %s options: %s",
				root, k, name, root, strings.Join(allowed, ", "))
		}
	}
	return nil
}

// overrideVars flattens the overrides mapping into template variables and
// adds the built-in subscription_name.
func overrideVars(name string, raw any) (map[string]string, error) {
	vars := map[string]string{"subscription_name": name}
	overrides, _ := raw.(map[string]any)
	for k, v := range overrides {
		if k == "subscription_name" {
			return nil, failure.Newf(failure.KindValidation,
				"subscription '%s': override 'subscription_name' is built in and cannot be set", name)
		}
		switch v.(type) {
		case string, bool, int, int64, float64:
			vars[k] = fmt.Sprint(v)
		default:
			return nil, failure.Newf(failure.KindValidation,
				"subscription '%s': override '%s' must be a string, number or boolean", name, k)
		}
	}
	return vars, nil
}

func stringList(v any) ([]string, error) {
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil, fmt.Errorf("must not be empty")
		}
		return []string{t}, nil
	case []any:
		if len(t) == 0 {
			return nil, fmt.Errorf("must not be an empty list")
		}
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok || s == "" {
				return nil, fmt.Errorf("entries must be non-empty strings")
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("must be a string or a list of strings")
}
