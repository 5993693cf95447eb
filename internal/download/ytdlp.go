package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/ytget/ytd/internal/model"
)

// DefaultProgressInterval is how often yt-dlp progress is forwarded
const DefaultProgressInterval = 500 * time.Millisecond

// stderrTailLines bounds how much yt-dlp stderr ends up in an error
const stderrTailLines = 5

// YTDLPExtractor is the Extractor backed by the yt-dlp executable
type YTDLPExtractor struct {
	progressInterval time.Duration
	executable       string
	logger           *slog.Logger
}

// NewYTDLPExtractor creates a new yt-dlp backed extractor
func NewYTDLPExtractor(logger *slog.Logger) *YTDLPExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &YTDLPExtractor{
		progressInterval: DefaultProgressInterval,
		logger:           logger,
	}
}

// SetProgressInterval sets how often progress updates are forwarded
func (e *YTDLPExtractor) SetProgressInterval(d time.Duration) {
	if d > 0 {
		e.progressInterval = d
	}
}

// SetExecutable runs path instead of the yt-dlp found on PATH or in the
// go-ytdlp cache
func (e *YTDLPExtractor) SetExecutable(path string) {
	e.executable = path
}

// EnsureInstalled makes sure a usable yt-dlp executable is available,
// downloading one into the user cache when needed, and returns its path
func EnsureInstalled(ctx context.Context) (string, error) {
	resolved, err := ytdlp.Install(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to install yt-dlp: %w", err)
	}
	return resolved.Executable, nil
}

// command builds the yt-dlp invocation for req. PrintJSON makes yt-dlp print
// the info dict after the download, which is where the merged output name
// comes from; progress filenames only name the individual streams.
func (e *YTDLPExtractor) command(req ExtractRequest) *ytdlp.Command {
	dl := ytdlp.New().
		NoWarnings().
		PrintJSON().
		Format(req.Selector).
		Output(req.OutputTemplate)

	if e.executable != "" {
		dl = dl.SetExecutable(e.executable)
	}

	if req.NoPlaylist {
		dl = dl.NoPlaylist()
	}

	if req.Format == model.FormatAudio {
		dl = dl.
			ExtractAudio().
			AudioFormat(req.AudioCodec).
			AudioQuality(req.AudioQuality)
	}
	return dl
}

// Extract downloads req.URL. Progress is forwarded to hook as RawProgress.
func (e *YTDLPExtractor) Extract(ctx context.Context, req ExtractRequest, hook func(RawProgress)) (*ExtractionInfo, error) {
	dl := e.command(req)

	var (
		mu    sync.Mutex
		track progressTracker
	)

	dl.ProgressFunc(e.progressInterval, func(update ytdlp.ProgressUpdate) {
		mu.Lock()
		raw := track.observe(&update)
		mu.Unlock()

		if hook != nil {
			hook(raw)
		}
	})

	result, err := dl.Run(ctx, req.URL)
	if err != nil {
		return nil, runError(result, err)
	}

	mu.Lock()
	info := &ExtractionInfo{
		Title:            track.title,
		PreparedFilename: track.filename,
	}
	mu.Unlock()

	if result != nil {
		extracted, err := result.GetExtractedInfo()
		if err != nil {
			e.logger.Debug("no extracted info in yt-dlp output", "url", req.URL, "err", err)
		} else if len(extracted) > 0 && extracted[0] != nil {
			if name := extractedFilename(extracted[0]); name != "" {
				info.PreparedFilename = name
			}
			if extracted[0].Title != nil && *extracted[0].Title != "" {
				info.Title = *extracted[0].Title
			}
		} else {
			e.logger.Debug("yt-dlp printed no info json, using progress filename",
				"url", req.URL,
				"filename", info.PreparedFilename,
			)
		}
	}

	return info, nil
}

// extractedFilename prefers the final "filename" over the legacy "_filename"
func extractedFilename(info *ytdlp.ExtractedInfo) string {
	if info.Filename != nil && *info.Filename != "" {
		return *info.Filename
	}
	if info.AltFilename != nil {
		return *info.AltFilename
	}
	return ""
}

// progressTracker remembers what progress updates revealed about the job
type progressTracker struct {
	title    string
	filename string
}

// observe converts update to the raw payload shape and records metadata
func (t *progressTracker) observe(update *ytdlp.ProgressUpdate) RawProgress {
	raw := RawProgress{
		RawKeyStatus: string(update.Status),
		RawKeyETA:    -1,
	}

	if update.Filename != "" {
		raw[RawKeyFilename] = update.Filename
		if t.filename == "" {
			t.filename = update.Filename
		}
	}

	if update.TotalBytes > 0 {
		percent := float64(update.DownloadedBytes) / float64(update.TotalBytes) * 100
		raw[RawKeyPercentStr] = fmt.Sprintf("%5.1f%%", percent)
	}

	if !update.Started.IsZero() {
		elapsed := time.Since(update.Started)
		if elapsed.Seconds() > 0 {
			bytesPerSecond := float64(update.DownloadedBytes) / elapsed.Seconds()
			raw[RawKeySpeedStr] = fmt.Sprintf("%.1fMB/s", bytesPerSecond/1024/1024)
		}
	}

	if eta := update.ETA(); eta > 0 {
		raw[RawKeyETA] = int(eta.Seconds())
	}

	if update.Info != nil && update.Info.Title != nil && *update.Info.Title != "" {
		t.title = *update.Info.Title
		raw[RawKeyTitle] = t.title
	}

	return raw
}

// runError builds the error for a failed run, preferring yt-dlp's own stderr
// over the exit status
func runError(result *ytdlp.Result, err error) error {
	if result == nil || strings.TrimSpace(result.Stderr) == "" {
		return err
	}

	lines := strings.Split(strings.TrimSpace(result.Stderr), "\n")
	if len(lines) > stderrTailLines {
		lines = lines[len(lines)-stderrTailLines:]
	}
	return errors.Join(errors.New(strings.Join(lines, "\n")), err)
}
