package download

// Package download implements the download orchestrator built on top of
// yt-dlp (via github.com/lrstanley/go-ytdlp). It owns a single job slot, runs
// the extractor off the caller's goroutine, normalizes raw progress into
// model.ProgressEvent values and resolves the final file after
// post-processing renamed it.
