package download

import (
	"context"

	"github.com/ytget/ytd/internal/model"
)

// PathResolver provides the output directory used when a request has none
type PathResolver interface {
	DefaultDownloadPath() (string, error)
}

// Downloader is what front ends depend on.
type Downloader interface {
	// Start validates req and dispatches the job. It never blocks on the
	// extractor.
	Start(ctx context.Context, req model.DownloadRequest) (*Job, error)

	// Run starts a job, hands every event to onEvent on the caller's
	// goroutine and returns the terminal result. Rejections are returned as
	// failure results.
	Run(ctx context.Context, req model.DownloadRequest, onEvent func(model.ProgressEvent)) model.DownloadResult

	State() model.JobState
	LastResult() (model.DownloadResult, bool)
	DefaultOutputDir() (string, error)
}
