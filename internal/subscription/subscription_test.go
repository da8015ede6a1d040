package subscription

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/ytsub/internal/config"
	"github.com/backmassage/ytsub/internal/failure"
	"github.com/backmassage/ytsub/internal/preset"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any)    {}
func (nopLogger) Success(string, ...any) {}
func (nopLogger) Verbose(string, ...any) {}
func (nopLogger) Debug(string, ...any)   {}

type fakeEngine struct {
	requests []Request
	err      error
	cancel   context.CancelFunc
}

func (f *fakeEngine) Download(_ context.Context, req Request) (Result, error) {
	f.requests = append(f.requests, req)
	if f.cancel != nil {
		f.cancel()
	}
	if f.err != nil {
		return Result{}, f.err
	}
	return Result{Entries: 1}, nil
}

func build(t *testing.T, engine Engine, name string, opts map[string]any) (*Subscription, error) {
	t.Helper()
	cfg := config.DefaultConfig()
	return NewRuntime(engine, nopLogger{}).FromDefinition(preset.NewDefinition(name, opts), &cfg)
}

func TestFromDefinition(t *testing.T) {
	sub, err := build(t, &fakeEngine{}, "chan", map[string]any{
		"download": map[string]any{"url": []any{"https://example.com/{id}", "https://example.com/b"}},
		"output_options": map[string]any{
			"output_directory": "/media/{subscription_name}",
			"file_name":        "{id}-%(title)s.%(ext)s",
		},
		"overrides": map[string]any{"id": int64(7)},
	})
	require.NoError(t, err)

	assert.Equal(t, "chan", sub.Name())
	assert.Equal(t, []string{"https://example.com/7", "https://example.com/b"}, sub.URLs())
	assert.Equal(t, "/media/chan", sub.OutputDirectory())
	assert.Equal(t, filepath.Join("/media/chan", ".ytsub-chan-download-archive.txt"), sub.ArchivePath())
}

func TestFromDefinition_Errors(t *testing.T) {
	base := func() map[string]any {
		return map[string]any{
			"download":       map[string]any{"url": "https://example.com"},
			"output_options": map[string]any{"output_directory": "/out"},
		}
	}
	tests := []struct {
		name   string
		mutate func(map[string]any)
		kind   failure.Kind
	}{
		{"missing url", func(m map[string]any) { delete(m, "download") }, failure.KindValidation},
		{"empty url list", func(m map[string]any) { m["download"] = map[string]any{"url": []any{}} }, failure.KindValidation},
		{"url wrong type", func(m map[string]any) { m["download"] = map[string]any{"url": int64(3)} }, failure.KindValidation},
		{"missing output directory", func(m map[string]any) { delete(m, "output_options") }, failure.KindValidation},
		{"unknown download option", func(m map[string]any) {
			m["download"].(map[string]any)["urls"] = "x"
		}, failure.KindValidation},
		{"archive flag not bool", func(m map[string]any) {
			m["output_options"].(map[string]any)["maintain_download_archive"] = "yes"
		}, failure.KindValidation},
		{"format not string", func(m map[string]any) {
			m["ytdl_options"] = map[string]any{"format": int64(1)}
		}, failure.KindValidation},
		{"nested override", func(m map[string]any) {
			m["overrides"] = map[string]any{"x": map[string]any{}}
		}, failure.KindValidation},
		{"builtin override", func(m map[string]any) {
			m["overrides"] = map[string]any{"subscription_name": "x"}
		}, failure.KindValidation},
		{"unknown variable", func(m map[string]any) {
			m["output_options"].(map[string]any)["output_directory"] = "/out/{nope}"
		}, failure.KindVariableNotFound},
		{"unbalanced braces", func(m map[string]any) {
			m["download"] = map[string]any{"url": "https://example.com/{"}
		}, failure.KindStringFormatting},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := base()
			tt.mutate(opts)
			_, err := build(t, &fakeEngine{}, "s", opts)
			require.Error(t, err)
			assert.Equal(t, tt.kind, failure.KindOf(err), err.Error())
		})
	}
}

func TestRun_DownloadsEachURL(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	engine := &fakeEngine{}
	sub, err := build(t, engine, "chan", map[string]any{
		"download":       map[string]any{"url": []any{"u1", "u2"}},
		"output_options": map[string]any{"output_directory": out},
		"ytdl_options":   map[string]any{"format": "best"},
	})
	require.NoError(t, err)

	require.NoError(t, sub.Run(context.Background(), false))

	assert.DirExists(t, out)
	require.Len(t, engine.requests, 2)
	assert.Equal(t, "u1", engine.requests[0].URL)
	assert.Equal(t, "u2", engine.requests[1].URL)
	for _, req := range engine.requests {
		assert.Equal(t, filepath.Join(out, DefaultFileName), req.OutputTemplate)
		assert.Equal(t, "best", req.Format)
		assert.Equal(t, sub.ArchivePath(), req.ArchivePath)
		assert.Equal(t, ".ytsub-working-directory", req.TempDir)
		assert.False(t, req.Simulate)
	}
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	engine := &fakeEngine{}
	sub, err := build(t, engine, "chan", map[string]any{
		"download":       map[string]any{"url": "u1"},
		"output_options": map[string]any{"output_directory": out},
	})
	require.NoError(t, err)

	require.NoError(t, sub.Run(context.Background(), true))

	assert.NoDirExists(t, out)
	require.Len(t, engine.requests, 1)
	assert.True(t, engine.requests[0].Simulate)
	assert.Empty(t, engine.requests[0].ArchivePath)
}

func TestRun_ArchiveDisabled(t *testing.T) {
	engine := &fakeEngine{}
	sub, err := build(t, engine, "chan", map[string]any{
		"download":       map[string]any{"url": "u1"},
		"output_options": map[string]any{"output_directory": t.TempDir(), "maintain_download_archive": false},
	})
	require.NoError(t, err)
	assert.Empty(t, sub.ArchivePath())

	require.NoError(t, sub.Run(context.Background(), false))
	assert.Empty(t, engine.requests[0].ArchivePath)
}

func TestRun_MalformedArchive(t *testing.T) {
	for _, dryRun := range []bool{false, true} {
		t.Run(fmt.Sprintf("dryRun=%v", dryRun), func(t *testing.T) {
			out := t.TempDir()
			require.NoError(t, os.WriteFile(archivePath(out, "chan"), []byte("one-field\n"), 0o644))
			engine := &fakeEngine{}
			sub, err := build(t, engine, "chan", map[string]any{
				"download":       map[string]any{"url": "u1"},
				"output_options": map[string]any{"output_directory": out},
			})
			require.NoError(t, err)

			err = sub.Run(context.Background(), dryRun)
			require.Error(t, err)
			assert.Equal(t, failure.KindDownloadArchive, failure.KindOf(err))
			assert.Contains(t, err.Error(), "line 1")
			assert.Empty(t, engine.requests)
		})
	}
}

func TestRun_EngineFailureIsInternal(t *testing.T) {
	engine := &fakeEngine{err: errors.New("yt-dlp exited 1")}
	sub, err := build(t, engine, "chan", map[string]any{
		"download":       map[string]any{"url": []any{"u1", "u2"}},
		"output_options": map[string]any{"output_directory": t.TempDir()},
	})
	require.NoError(t, err)

	err = sub.Run(context.Background(), false)
	require.Error(t, err)
	assert.Equal(t, failure.KindInternal, failure.KindOf(err))
	assert.Contains(t, err.Error(), "yt-dlp exited 1")
	assert.Len(t, engine.requests, 1)
}

func TestRun_Interrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	engine := &fakeEngine{err: errors.New("signal: killed"), cancel: cancel}
	sub, err := build(t, engine, "chan", map[string]any{
		"download":       map[string]any{"url": "u1"},
		"output_options": map[string]any{"output_directory": t.TempDir()},
	})
	require.NoError(t, err)

	err = sub.Run(ctx, false)
	require.Error(t, err)
	assert.True(t, failure.IsValidation(err))
	assert.Contains(t, err.Error(), "interrupted")
}
