package download

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/lrstanley/go-ytdlp"

	"github.com/ytget/ytd/internal/model"
)

// mergedDownloadScript behaves like yt-dlp fetching two streams and merging
// them: progress names the per-stream files, the merged file is the only one
// left on disk and the info json printed at the end names it.
const mergedDownloadScript = `printf '%s\n' "$@" > '@ARGS@'
cat <<'JSON'
progress:{"info":{"id":"abc","title":"Artist: Song | Live"},"progress":{"status":"downloading","downloaded_bytes":50,"total_bytes":100,"filename":"@DIR@/Artist： Song ｜ Live.f137.mp4"}}
progress:{"info":{"id":"abc","title":"Artist: Song | Live"},"progress":{"status":"finished","downloaded_bytes":100,"total_bytes":100,"filename":"@DIR@/Artist： Song ｜ Live.f137.mp4"}}
progress:{"info":{"id":"abc","title":"Artist: Song | Live"},"progress":{"status":"finished","downloaded_bytes":40,"total_bytes":40,"filename":"@DIR@/Artist： Song ｜ Live.f251.webm"}}
JSON
: > '@DIR@/Artist： Song ｜ Live.mp4'
cat <<'JSON'
{"_type":"video","id":"abc","title":"Artist: Song | Live","filename":"@DIR@/Artist： Song ｜ Live.mp4"}
JSON
`

const failingScript = `echo 'ERROR: [youtube] abc: Video unavailable' >&2
exit 1
`

// fakeYTDLP writes an executable shell script standing in for yt-dlp and
// returns its path and the file it records its arguments in
func fakeYTDLP(t *testing.T, dir, script string) (string, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake yt-dlp is a shell script")
	}

	bin := t.TempDir()
	args := filepath.Join(bin, "args.txt")
	script = strings.NewReplacer("@DIR@", dir, "@ARGS@", args).Replace(script)

	path := filepath.Join(bin, "yt-dlp")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatalf("failed to write fake yt-dlp: %v", err)
	}
	return path, args
}

func TestProgressTracker_Observe(t *testing.T) {
	title := "Some Video"
	var track progressTracker

	raw := track.observe(&ytdlp.ProgressUpdate{
		Status:          ytdlp.ProgressStatusDownloading,
		TotalBytes:      200,
		DownloadedBytes: 50,
		Filename:        "/d/Some Video.f137.mp4",
		Info:            &ytdlp.ExtractedInfo{Title: &title},
	})

	if raw[RawKeyStatus] != RawStatusDownloading {
		t.Errorf("status = %v", raw[RawKeyStatus])
	}
	percent, ok := parsePercent(raw[RawKeyPercentStr])
	if !ok || percent != 25 {
		t.Errorf("percent = %v (%v), want 25", raw[RawKeyPercentStr], ok)
	}
	if raw[RawKeyTitle] != title || track.title != title {
		t.Errorf("title = %v / %q", raw[RawKeyTitle], track.title)
	}
	if track.filename != "/d/Some Video.f137.mp4" {
		t.Errorf("filename = %q", track.filename)
	}

	// The first filename is the prepared one
	raw = track.observe(&ytdlp.ProgressUpdate{
		Status:   ytdlp.ProgressStatusFinished,
		Filename: "/d/Some Video.f140.m4a",
	})
	if raw[RawKeyStatus] != RawStatusFinished {
		t.Errorf("status = %v", raw[RawKeyStatus])
	}
	if _, ok := raw[RawKeyPercentStr]; ok {
		t.Error("percent reported without total bytes")
	}
	if raw[RawKeyFilename] != "/d/Some Video.f140.m4a" {
		t.Errorf("raw filename = %v", raw[RawKeyFilename])
	}
	if track.filename != "/d/Some Video.f137.mp4" {
		t.Errorf("filename = %q, want first seen", track.filename)
	}
}

func TestRunError(t *testing.T) {
	base := errors.New("exit status 1")

	if got := runError(nil, base); got != base {
		t.Errorf("runError(nil) = %v, want base error", got)
	}

	result := &ytdlp.Result{Stderr: "WARNING: a\nline1\nline2\nline3\nline4\nline5\nERROR: [youtube] x: Video unavailable\n"}
	err := runError(result, base)
	if !errors.Is(err, base) {
		t.Error("runError() does not wrap the run error")
	}
	if strings.Contains(err.Error(), "WARNING: a") {
		t.Errorf("runError() kept more than the stderr tail: %q", err)
	}
	if got := SanitizeMessage(err.Error()); got != "Video unavailable" {
		t.Errorf("SanitizeMessage(runError()) = %q", got)
	}
}

func TestYTDLPExtractor_MergedVideo(t *testing.T) {
	dir := t.TempDir()
	bin, argsFile := fakeYTDLP(t, dir, mergedDownloadScript)

	extractor := NewYTDLPExtractor(nil)
	extractor.SetExecutable(bin)

	var raws []RawProgress
	req := DefaultPolicy().buildRequest(model.DownloadRequest{URL: "https://example/watch?v=abc", Format: model.FormatVideo}, dir)
	info, err := extractor.Extract(context.Background(), req, func(raw RawProgress) {
		raws = append(raws, raw)
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	merged := filepath.Join(dir, "Artist： Song ｜ Live.mp4")
	if info.PreparedFilename != merged {
		t.Errorf("PreparedFilename = %q, want %q", info.PreparedFilename, merged)
	}
	if info.Title != "Artist: Song | Live" {
		t.Errorf("Title = %q", info.Title)
	}
	if len(raws) != 3 {
		t.Fatalf("got %d progress updates, want 3", len(raws))
	}
	if raws[0][RawKeyStatus] != RawStatusDownloading {
		t.Errorf("first status = %v", raws[0][RawKeyStatus])
	}

	data, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	args := strings.Split(strings.TrimSpace(string(data)), "\n")
	for _, want := range []string{"--print-json", "--no-playlist", "https://example/watch?v=abc"} {
		found := false
		for _, arg := range args {
			if arg == want {
				found = true
			}
		}
		if !found {
			t.Errorf("yt-dlp args %q missing %q", args, want)
		}
	}
}

func TestYTDLPExtractor_MergedVideoThroughService(t *testing.T) {
	dir := t.TempDir()
	bin, _ := fakeYTDLP(t, dir, mergedDownloadScript)

	extractor := NewYTDLPExtractor(nil)
	extractor.SetExecutable(bin)
	s := NewService(extractor, fakePaths{dir: dir})

	result := s.Run(context.Background(), model.DownloadRequest{URL: "https://example/watch?v=abc"}, nil)
	if !result.IsSuccess() {
		t.Fatalf("Run() = %+v, want success", result)
	}
	if want := filepath.Join(dir, "Artist： Song ｜ Live.mp4"); result.Path != want {
		t.Errorf("Path = %q, want %q", result.Path, want)
	}
}

func TestYTDLPExtractor_Failure(t *testing.T) {
	dir := t.TempDir()
	bin, _ := fakeYTDLP(t, dir, failingScript)

	extractor := NewYTDLPExtractor(nil)
	extractor.SetExecutable(bin)

	req := DefaultPolicy().buildRequest(model.DownloadRequest{URL: "https://example/watch?v=abc", Format: model.FormatVideo}, dir)
	_, err := extractor.Extract(context.Background(), req, nil)
	if err == nil {
		t.Fatal("Extract() error = nil, want failure")
	}
	if !strings.Contains(err.Error(), "Video unavailable") {
		t.Errorf("error %q does not carry yt-dlp stderr", err)
	}

	result := FailureFromError(extractionError(err))
	if result.ErrorKind != model.ErrorKindExtraction || result.ErrorMessage == "" {
		t.Errorf("FailureFromError = %+v", result)
	}
}
