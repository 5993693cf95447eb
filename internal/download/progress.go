package download

import (
	"math"
	"strconv"
	"strings"

	"github.com/ytget/ytd/internal/model"
)

// normalizer turns raw extractor payloads into ProgressEvents for one job.
// It is only used from the extractor's hook, one call at a time.
type normalizer struct {
	jobID  string
	format model.Format

	processing   bool   // postprocessing event already emitted
	finishedFile string // last filename reported by a finished event
	title        string
}

func newNormalizer(jobID string, format model.Format) *normalizer {
	return &normalizer{jobID: jobID, format: format}
}

// Normalize returns the event for raw, or false when raw is dropped.
// Malformed payloads are dropped, never reported.
func (n *normalizer) Normalize(raw RawProgress) (model.ProgressEvent, bool) {
	if raw == nil {
		return model.ProgressEvent{}, false
	}

	if title, ok := raw[RawKeyTitle].(string); ok && title != "" {
		n.title = title
	}

	status, _ := raw[RawKeyStatus].(string)
	switch status {
	case RawStatusDownloading:
		percent, ok := parsePercent(raw[RawKeyPercentStr])
		if !ok {
			return model.ProgressEvent{}, false
		}
		return model.ProgressEvent{
			JobID:     n.jobID,
			Phase:     model.PhaseDownloading,
			Percent:   percent,
			RawStatus: status,
			Speed:     parseSpeed(raw[RawKeySpeedStr]),
			ETASec:    parseETA(raw[RawKeyETA]),
			Title:     n.title,
		}, true

	case RawStatusFinished:
		if name, ok := raw[RawKeyFilename].(string); ok && name != "" {
			n.finishedFile = name
		}
		// Separate video and audio streams each report finished
		if n.processing {
			return model.ProgressEvent{}, false
		}
		n.processing = true
		return model.ProgressEvent{
			JobID:     n.jobID,
			Phase:     model.PhasePostprocessing,
			Percent:   100,
			RawStatus: status,
			ETASec:    -1,
			Title:     n.title,
		}, true

	default:
		return model.ProgressEvent{}, false
	}
}

// finishedEvent is emitted right before a success result
func (n *normalizer) finishedEvent() model.ProgressEvent {
	return model.ProgressEvent{
		JobID:     n.jobID,
		Phase:     model.PhaseFinished,
		Percent:   100,
		RawStatus: RawStatusFinished,
		ETASec:    -1,
		Title:     n.title,
	}
}

// parsePercent accepts "  55.3%" style strings, possibly colourized, and
// plain numbers
func parsePercent(v any) (float64, bool) {
	var f float64
	switch p := v.(type) {
	case string:
		s := strings.TrimSpace(StripANSI(p))
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = p
	case float32:
		f = float64(p)
	case int:
		f = float64(p)
	case int64:
		f = float64(p)
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return math.Max(0, math.Min(100, f)), true
}

func parseSpeed(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(StripANSI(s))
	if strings.HasPrefix(s, "Unknown") {
		return ""
	}
	return s
}

func parseETA(v any) int {
	switch eta := v.(type) {
	case int:
		return eta
	case int64:
		return int(eta)
	case float64:
		if math.IsNaN(eta) || math.IsInf(eta, 0) {
			return -1
		}
		return int(eta)
	default:
		return -1
	}
}
