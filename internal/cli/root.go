// Package cli is the ytsub command surface: `sub` runs subscription files,
// `dl` runs one subscription described entirely by command-line options.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/backmassage/ytsub/internal/config"
	"github.com/backmassage/ytsub/internal/display"
	"github.com/backmassage/ytsub/internal/failure"
	"github.com/backmassage/ytsub/internal/pipeline"
	"github.com/backmassage/ytsub/internal/preset"
	"github.com/backmassage/ytsub/internal/subscription"
	"github.com/backmassage/ytsub/internal/term"
)

// DefaultSubscriptionPath is used by `sub` when no path is given.
const DefaultSubscriptionPath = "subscriptions.yaml"

// Logger is the logging surface the commands need.
type Logger interface {
	Info(string, ...any)
	Success(string, ...any)
	Warn(string, ...any)
	Verbose(string, ...any)
	Debug(string, ...any)
	SetLevel(config.LogLevel)
}

// App holds the collaborators shared by every command.
type App struct {
	Log       Logger
	Engine    subscription.Engine
	Preflight func() error // Run after the config loads; nil skips it.
	Stdout    io.Writer    // Usage and help output. Default: os.Stdout.
	Version   string
}

// Execute parses args (without the program name) and runs the selected
// command. Errors from the pipeline are returned unchanged; argument and
// flag errors are validation failures.
func (a *App) Execute(ctx context.Context, args []string) error {
	root := a.newRootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (a *App) newRootCommand() *cobra.Command {
	opts := config.DefaultOptions()
	out := a.Stdout
	if out == nil {
		out = os.Stdout
	}

	root := &cobra.Command{
		Use:           "ytsub",
		Short:         "Download and keep media subscriptions up to date with yt-dlp",
		Version:       a.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return failure.Newf(failure.KindValidation,
					"unknown command %q. Use 'sub' or 'dl' (see 'ytsub --help')", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			display.PrintBanner(cmd.OutOrStdout())
			return cmd.Usage()
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(out)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return failure.Wrap(failure.KindValidation, err, err.Error())
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", opts.ConfigPath, "path to the config file")
	pf.VarP(config.NewLogLevelValue(&opts.LogLevel), "log-level", "l", "console verbosity: quiet, info, verbose, debug")
	pf.BoolVarP(&opts.DryRun, "dry-run", "d", false, "resolve and validate everything without downloading or writing files")

	root.AddCommand(a.newSubCommand(&opts), a.newDLCommand(&opts))
	return root
}

func (a *App) newSubCommand(opts *config.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "sub [paths...]",
		Short: "Run every subscription in the given files or directories",
		Long: "Run every subscription in the given YAML files, in order. A directory runs\n" +
			"each .yaml file inside it. With no path, ./" + DefaultSubscriptionPath + " is used.",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ConfigExplicit = cmd.Flags().Changed("config")
			if len(args) == 0 {
				args = []string{DefaultSubscriptionPath}
			}
			p, cfg, err := a.prepare(*opts)
			if err != nil {
				return err
			}
			_, err = p.RunBatch(cmd.Context(), args, cfg, opts.DryRun)
			return err
		},
	}
}

func (a *App) newDLCommand(opts *config.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "dl [--option.path value ...]",
		Short: "Run one subscription described by command-line options",
		Long: "Every option not consumed by ytsub itself becomes a subscription option,\n" +
			"e.g. --download.url URL --output_options.output_directory DIR.\n" +
			"The subscription is named cli-dl-<hash of the options>.",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := config.SplitKnownArgs(opts, args)
			if err != nil {
				return err
			}
			if opts.Help {
				return cmd.Help()
			}
			p, cfg, err := a.prepare(*opts)
			if err != nil {
				return err
			}
			_, err = p.RunOneOff(cmd.Context(), tokens, cfg, opts.DryRun)
			return err
		},
	}
}

// prepare applies the global options, loads the config and runs preflight.
func (a *App) prepare(opts config.Options) (*pipeline.Pipeline, *config.Config, error) {
	a.Log.SetLevel(opts.LogLevel)

	cfg, err := config.Load(opts.ConfigPath, opts.ConfigExplicit)
	if err != nil {
		return nil, nil, err
	}
	term.Configure(cfg.Configuration.Color)
	a.Log.Debug("config: %s (%d preset(s))", opts.ConfigPath, len(cfg.Presets))

	if opts.DryRun {
		a.Log.Warn("DRY RUN: nothing will be downloaded or written")
	}
	if a.Preflight != nil {
		if err := a.Preflight(); err != nil {
			return nil, nil, err
		}
	}

	runtime := subscription.NewRuntime(a.Engine, a.Log)
	p := &pipeline.Pipeline{
		Source: preset.Source{},
		Build: func(def preset.Definition, cfg *config.Config) (pipeline.Job, error) {
			sub, err := runtime.FromDefinition(def, cfg)
			if err != nil {
				return nil, err
			}
			return sub, nil
		},
		Log: a.Log,
	}
	return p, cfg, nil
}
