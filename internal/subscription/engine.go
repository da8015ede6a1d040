package subscription

import (
	"context"
	"time"

	"github.com/lrstanley/go-ytdlp"
)

// Request is one engine invocation: a single URL into a single output template.
type Request struct {
	URL            string
	OutputTemplate string // yt-dlp -o template, already joined with the output directory.
	Format         string // yt-dlp -f; empty keeps yt-dlp's default.
	ArchivePath    string // --download-archive; empty disables the archive.
	TempDir        string // --paths temp:; intermediate files. Empty keeps them beside the output.
	Simulate       bool   // --simulate: resolve everything, write nothing.
}

// Result summarizes one engine invocation.
type Result struct {
	Entries int // Number of entries yt-dlp extracted.
}

// Engine performs downloads. The production implementation is [YtdlpEngine];
// tests substitute fakes.
type Engine interface {
	Download(ctx context.Context, req Request) (Result, error)
}

// Progress receives engine progress for logging. total is 0 when yt-dlp
// does not know the size yet.
type Progress func(url string, downloaded, total int64, eta time.Duration)

// YtdlpEngine downloads through the yt-dlp binary via go-ytdlp.
type YtdlpEngine struct {
	progress Progress
}

// NewYtdlpEngine returns an engine that reports progress to fn (may be nil).
func NewYtdlpEngine(fn Progress) *YtdlpEngine {
	return &YtdlpEngine{progress: fn}
}

// command builds the yt-dlp invocation for req.
func (e *YtdlpEngine) command(req Request) *ytdlp.Command {
	dl := ytdlp.New().
		RestrictFilenames().
		Output(req.OutputTemplate)
	if req.Format != "" {
		dl.Format(req.Format)
	}
	if req.ArchivePath != "" {
		dl.DownloadArchive(req.ArchivePath)
	}
	if req.TempDir != "" {
		dl.Paths("temp:" + req.TempDir)
	}
	if req.Simulate {
		dl.Simulate()
	} else {
		// --print-json implies --simulate unless told otherwise.
		dl.NoSimulate()
	}
	dl.PrintJSON()
	if e.progress != nil {
		dl.ProgressFunc(500*time.Millisecond, func(update ytdlp.ProgressUpdate) {
			e.progress(req.URL, int64(update.DownloadedBytes), int64(update.TotalBytes), update.ETA())
		})
	}
	return dl
}

// Download runs yt-dlp for one request.
func (e *YtdlpEngine) Download(ctx context.Context, req Request) (Result, error) {
	res, err := e.command(req).Run(ctx, req.URL)
	if err != nil {
		return Result{}, err
	}
	return entriesFrom(res.GetExtractedInfo())
}

// entriesFrom counts the info JSON objects yt-dlp printed, one per entry.
func entriesFrom(info []*ytdlp.ExtractedInfo, err error) (Result, error) {
	if err != nil {
		return Result{}, err
	}
	return Result{Entries: len(info)}, nil
}
