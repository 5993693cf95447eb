package download

import (
	"context"

	"github.com/ytget/ytd/internal/model"
)

// Raw progress keys understood by the orchestrator. Extractors may send more.
const (
	RawKeyStatus     = "status"
	RawKeyPercentStr = "_percent_str"
	RawKeySpeedStr   = "_speed_str"
	RawKeyETA        = "eta"
	RawKeyFilename   = "filename"
	RawKeyTitle      = "title"
)

// Raw status values
const (
	RawStatusDownloading = "downloading"
	RawStatusFinished    = "finished"
)

// RawProgress is an untyped progress payload as emitted by the extractor.
// Its shape is not contractually stable and it never leaves this package.
type RawProgress map[string]any

// ExtractRequest is the fully resolved input handed to an Extractor
type ExtractRequest struct {
	URL            string
	Format         model.Format
	Selector       string // yt-dlp format selector
	OutputDir      string
	OutputTemplate string // absolute output template
	AudioCodec     string // audio only
	AudioQuality   string // audio only, kbps
	NoPlaylist     bool
}

// ExtractionInfo is the metadata an extractor returns on success
type ExtractionInfo struct {
	Title string

	// PreparedFilename is the file name the extractor chose before any
	// post-processing (audio transcode) ran.
	PreparedFilename string
}

// Extractor performs URL resolution, download and optional transcode.
// Implementations call hook synchronously from any goroutine while Extract
// runs and must not call it after Extract returns.
type Extractor interface {
	Extract(ctx context.Context, req ExtractRequest, hook func(RawProgress)) (*ExtractionInfo, error)
}
