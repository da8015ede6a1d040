package pipeline

import (
	"context"
	"time"

	"github.com/backmassage/ytsub/internal/config"
	"github.com/backmassage/ytsub/internal/dlargs"
	"github.com/backmassage/ytsub/internal/failure"
	"github.com/backmassage/ytsub/internal/preset"
)

// Job is one executable unit of work built from a definition.
type Job interface {
	Name() string
	Run(ctx context.Context, dryRun bool) error
}

// Source produces definitions from subscription files or a nested dict.
type Source interface {
	FromFilePath(cfg *config.Config, path string) ([]preset.Definition, error)
	FromDict(cfg *config.Config, name string, dict map[string]any) (preset.Definition, error)
}

// BuildFunc turns a resolved definition into a Job.
type BuildFunc func(def preset.Definition, cfg *config.Config) (Job, error)

// Logger is the minimal logging interface needed by the pipeline.
type Logger interface {
	Info(string, ...any)
	Success(string, ...any)
	Verbose(string, ...any)
}

// Pipeline wires a definition source to a job builder.
type Pipeline struct {
	Source Source
	Build  BuildFunc
	Log    Logger
}

// RunBatch resolves every subscription in paths, then builds and runs each
// one in order (path order, then declaration order within a file). The first
// error aborts the batch and is returned as-is.
func (p *Pipeline) RunBatch(ctx context.Context, paths []string, cfg *config.Config, dryRun bool) (RunStats, error) {
	var stats RunStats

	files, err := ExpandPaths(paths)
	if err != nil {
		return stats, err
	}

	var defs []preset.Definition
	for _, path := range files {
		fileDefs, err := p.Source.FromFilePath(cfg, path)
		if err != nil {
			return stats, err
		}
		p.Log.Verbose("%s: %d subscription(s)", path, len(fileDefs))
		defs = append(defs, fileDefs...)
	}
	stats.Total = len(defs)

	err = p.run(ctx, defs, cfg, dryRun, &stats)
	return stats, err
}

// RunOneOff translates dl tokens into a single definition named
// cli-dl-<hash> and runs it.
func (p *Pipeline) RunOneOff(ctx context.Context, tokens []string, cfg *config.Config, dryRun bool) (RunStats, error) {
	var stats RunStats

	schema := dlargs.NewSchema(preset.OptionRoots, cfg.Configuration.DLAliases)
	res, err := dlargs.Translate(tokens, schema)
	if err != nil {
		return stats, err
	}
	p.Log.Verbose("dl arguments: %s", res.Args)

	def, err := p.Source.FromDict(cfg, res.JobName(), res.Args.Nested())
	if err != nil {
		return stats, err
	}
	stats.Total = 1

	err = p.run(ctx, []preset.Definition{def}, cfg, dryRun, &stats)
	return stats, err
}

func (p *Pipeline) run(ctx context.Context, defs []preset.Definition, cfg *config.Config, dryRun bool, stats *RunStats) error {
	start := time.Now()
	defer func() { stats.Elapsed = time.Since(start) }()

	for i, def := range defs {
		stats.Current = i + 1
		if err := ctx.Err(); err != nil {
			return failure.Wrap(failure.KindValidation, err,
				"interrupted before subscription '"+def.Name()+"' started")
		}

		job, err := p.Build(def, cfg)
		if err != nil {
			return err
		}

		p.Log.Info("Beginning subscription download for %s", job.Name())
		if err := job.Run(ctx, dryRun); err != nil {
			return err
		}
		stats.Completed++
	}

	stats.Elapsed = time.Since(start)
	logSummary(p.Log, stats, dryRun)
	return nil
}

func logSummary(log Logger, stats *RunStats, dryRun bool) {
	prefix := ""
	if dryRun {
		prefix = "[DRY] "
	}
	log.Success("%sFinished %d subscription(s) in %s", prefix, stats.Completed, stats.Elapsed.Round(time.Millisecond))
}
