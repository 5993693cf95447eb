package model

import (
	"fmt"
	"strings"
	"time"
)

// DownloadRequest is what a front end submits. It is not modified after Start.
type DownloadRequest struct {
	URL       string `json:"url"`
	Format    Format `json:"format"`
	OutputDir string `json:"output_dir,omitempty"`
}

// ProgressEvent is an intermediate, non-authoritative update about a job
type ProgressEvent struct {
	JobID     string  `json:"job_id"`
	Phase     Phase   `json:"phase"`
	Percent   float64 `json:"percent"`         // 0 to 100, meaningful while downloading
	RawStatus string  `json:"raw_status"`      // status reported by the extractor
	Speed     string  `json:"speed,omitempty"` // human readable speed (e.g., "1.2MiB/s")
	ETASec    int     `json:"eta_sec"`         // ETA in seconds, -1 if unknown
	Title     string  `json:"title,omitempty"` // media title once known
}

// DownloadResult is produced exactly once per job
type DownloadResult struct {
	JobID        string    `json:"job_id,omitempty"`
	Outcome      Outcome   `json:"outcome"`
	Path         string    `json:"path,omitempty"`
	ErrorKind    ErrorKind `json:"error_kind,omitempty"`
	ErrorMessage string    `json:"error,omitempty"`
	StartedAt    time.Time `json:"started_at,omitempty"`
	FinishedAt   time.Time `json:"finished_at,omitempty"`
}

// JobState is the orchestrator's view of its single job slot
type JobState struct {
	Status     JobStatus       `json:"status"`
	Current    string          `json:"current,omitempty"`
	LastResult *DownloadResult `json:"last_result,omitempty"`
}

// Succeeded builds a success result for path
func Succeeded(path string) DownloadResult {
	return DownloadResult{Outcome: OutcomeSuccess, Path: path}
}

// Failed builds a failure result
func Failed(kind ErrorKind, msg string) DownloadResult {
	return DownloadResult{Outcome: OutcomeFailure, ErrorKind: kind, ErrorMessage: msg}
}

// IsSuccess reports whether the job produced a file
func (r DownloadResult) IsSuccess() bool {
	return r.Outcome == OutcomeSuccess
}

// Duration returns how long the job ran, or zero if timestamps are missing
func (r DownloadResult) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// GetETAString returns ETA formatted as hh:mm:ss, or "—" if unknown
func (e ProgressEvent) GetETAString() string {
	if e.ETASec <= 0 {
		return "—"
	}

	hours := e.ETASec / 3600
	minutes := (e.ETASec % 3600) / 60
	seconds := e.ETASec % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// GetDisplayName returns the file name of a successful result without its
// directory, falling back to the job id
func (r DownloadResult) GetDisplayName() string {
	if r.Path != "" {
		parts := strings.FieldsFunc(r.Path, func(r rune) bool {
			return r == '/' || r == '\\'
		})
		if len(parts) > 0 {
			return parts[len(parts)-1]
		}
	}
	return r.JobID
}
