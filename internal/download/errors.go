package download

import (
	"errors"
	"regexp"
	"strings"

	"github.com/ytget/ytd/internal/model"
)

// GenericFailureMessage is shown when nothing useful survives sanitizing
const GenericFailureMessage = "Download failed. Please check the URL and try again."

// Error is returned or reported by the orchestrator. Kind decides how front
// ends present it; Msg is safe to show to users.
type Error struct {
	Kind model.ErrorKind
	Msg  string
	Err  error
}

var (
	// ErrInvalidRequest is returned by Start for an empty URL or unknown format
	ErrInvalidRequest = &Error{Kind: model.ErrorKindInvalidRequest, Msg: "no URL provided"}

	// ErrAlreadyRunning is returned by Start while a job is in flight
	ErrAlreadyRunning = &Error{Kind: model.ErrorKindAlreadyRunning, Msg: "a download is already running"}
)

func (e *Error) Error() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrAlreadyRunning)
// works for wrapped and freshly built values alike.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func directoryError(err error) *Error {
	return &Error{
		Kind: model.ErrorKindDirectory,
		Msg:  "failed to create directory: " + err.Error(),
		Err:  err,
	}
}

func extractionError(err error) *Error {
	return &Error{
		Kind: model.ErrorKindExtraction,
		Msg:  SanitizeMessage(err.Error()),
		Err:  err,
	}
}

func resolutionError(dir string, err error) *Error {
	return &Error{
		Kind: model.ErrorKindResolution,
		Msg:  "download completed but file not found in " + dir,
		Err:  err,
	}
}

// FailureFromError converts any error into a failure result. Errors that are
// not *Error are treated as extraction failures.
func FailureFromError(err error) model.DownloadResult {
	var e *Error
	if errors.As(err, &e) {
		return model.Failed(e.Kind, e.Error())
	}
	return model.Failed(model.ErrorKindExtraction, SanitizeMessage(err.Error()))
}

var (
	ansiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)

	// "[youtube] dQw4w9WgXcQ: " or "[generic] "
	extractorTagPattern = regexp.MustCompile(`^\[[^\]]+\]\s*(?:[^\s:]+:\s+)?`)

	// Text produced by the runtime or our own goroutine plumbing rather than
	// by the extractor.
	internalMarkers = []string{
		"call_from_thread",
		"goroutine ",
		"panic:",
		"runtime.",
		"runtime/",
		".go:",
		"exit status",
		"exit code",
		"Traceback (most recent call last)",
		"File \"",
	}
)

// StripANSI removes terminal colour sequences
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// SanitizeMessage turns raw extractor error text into a single line fit for
// users. Error lines reported by yt-dlp win over other lines; internal
// plumbing text is dropped. The result is never empty.
func SanitizeMessage(msg string) string {
	var lastError, lastOther string

	for _, line := range strings.Split(StripANSI(msg), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "WARNING:") {
			continue
		}

		isError := false
		if idx := strings.Index(line, "ERROR:"); idx >= 0 {
			line = strings.TrimSpace(line[idx+len("ERROR:"):])
			isError = true
		}

		if isInternal(line) {
			continue
		}

		line = strings.TrimSpace(extractorTagPattern.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}

		if isError {
			lastError = line
		} else {
			lastOther = line
		}
	}

	switch {
	case lastError != "":
		return lastError
	case lastOther != "":
		return lastOther
	default:
		return GenericFailureMessage
	}
}

func isInternal(line string) bool {
	for _, marker := range internalMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}
