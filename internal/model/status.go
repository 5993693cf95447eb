package model

import (
	"fmt"
	"strings"
)

// Format selects what the extractor should produce
type Format string

const (
	// FormatVideo keeps the original or muxed container
	FormatVideo Format = "video"

	// FormatAudio transcodes to a compressed audio file
	FormatAudio Format = "audio"
)

// String returns the string representation of Format
func (f Format) String() string {
	return string(f)
}

// IsValid reports whether f is one of the known formats
func (f Format) IsValid() bool {
	return f == FormatVideo || f == FormatAudio
}

// ParseFormat converts user input into a Format. Empty input means video.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "video", "vid", "mp4":
		return FormatVideo, nil
	case "audio", "aud", "mp3":
		return FormatAudio, nil
	default:
		return "", fmt.Errorf("unknown format: %q", s)
	}
}

// Phase is the stage a progress event belongs to
type Phase string

const (
	PhaseDownloading    Phase = "downloading"
	PhasePostprocessing Phase = "postprocessing"
	PhaseFinished       Phase = "finished"
)

// String returns the string representation of Phase
func (p Phase) String() string {
	return string(p)
}

// Outcome is the terminal state of a job
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// ErrorKind classifies failures reported in a DownloadResult
type ErrorKind string

const (
	ErrorKindInvalidRequest ErrorKind = "invalid_request"
	ErrorKindAlreadyRunning ErrorKind = "already_running"
	ErrorKindDirectory      ErrorKind = "directory_error"
	ErrorKindExtraction     ErrorKind = "extraction_error"
	ErrorKindResolution     ErrorKind = "resolution_error"
)

// JobStatus represents the orchestrator's job slot
type JobStatus string

const (
	// JobStatusIdle means no job is in flight
	JobStatusIdle JobStatus = "idle"

	// JobStatusRunning means the extractor is working on a job
	JobStatusRunning JobStatus = "running"
)

// String returns the string representation of JobStatus
func (js JobStatus) String() string {
	return string(js)
}

// IsActive returns true if a job is in flight
func (js JobStatus) IsActive() bool {
	return js == JobStatusRunning
}
