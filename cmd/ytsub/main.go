// Command ytsub downloads and maintains media subscriptions with yt-dlp.
//
// `ytsub sub [paths...]` runs every subscription in the given YAML files;
// `ytsub dl --option.path value ...` runs one subscription built from the
// command line. Every run writes a debug log that is kept only on failure.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/backmassage/ytsub/internal/boundary"
	"github.com/backmassage/ytsub/internal/check"
	"github.com/backmassage/ytsub/internal/cli"
	"github.com/backmassage/ytsub/internal/display"
	"github.com/backmassage/ytsub/internal/logging"
	"github.com/backmassage/ytsub/internal/subscription"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "0.1.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: Bootstrap. The logger doesn't exist yet, so errors go
	// directly to stderr via fmt.
	log, err := logging.NewLogger(logging.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ytsub: cannot create debug log: %v\n", err)
		return boundary.ExitFailure
	}

	// Phase 2: Signal handling. Cancelling the context stops the running
	// yt-dlp process and fails the current subscription.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Phase 3: Everything from here on is classified and reported by the
	// boundary, which also owns the debug log's lifetime.
	app := &cli.App{
		Log:       log,
		Engine:    subscription.NewYtdlpEngine(progressLogger(log)),
		Preflight: func() error { return check.CheckDeps(log) },
		Version:   version + " (" + commit + ")",
	}
	return boundary.New(log).Run(func() error {
		return app.Execute(ctx, os.Args[1:])
	})
}

// progressLogger reports engine progress at debug level, at most once per
// second per URL.
func progressLogger(log *logging.Logger) subscription.Progress {
	last := map[string]time.Time{}
	return func(url string, downloaded, total int64, eta time.Duration) {
		if time.Since(last[url]) < time.Second {
			return
		}
		last[url] = time.Now()
		log.Debug("%s: %s", url, display.FormatProgress(downloaded, total, eta))
	}
}
