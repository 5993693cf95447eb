package download

import (
	"math"
	"testing"

	"github.com/ytget/ytd/internal/model"
)

func TestParsePercent(t *testing.T) {
	tests := []struct {
		name   string
		input  any
		want   float64
		wantOK bool
	}{
		{"plain", "10%", 10, true},
		{"padded", "  55.3%", 55.3, true},
		{"colourized", "\x1b[0;94m 42.0%\x1b[0m", 42, true},
		{"no percent sign", "12.5", 12.5, true},
		{"float", 33.0, 33, true},
		{"int", 7, 7, true},
		{"over 100", "150%", 100, true},
		{"negative", "-3%", 0, true},
		{"empty", "", 0, false},
		{"only sign", "%", 0, false},
		{"text", "abc%", 0, false},
		{"nan string", "NaN%", 0, false},
		{"nan float", math.NaN(), 0, false},
		{"inf", math.Inf(1), 0, false},
		{"nil", nil, 0, false},
		{"wrong type", []string{"10%"}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parsePercent(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("parsePercent(%v) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("parsePercent(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseETA(t *testing.T) {
	tests := []struct {
		input any
		want  int
	}{
		{30, 30},
		{int64(12), 12},
		{61.9, 61},
		{math.NaN(), -1},
		{nil, -1},
		{"10", -1},
	}

	for _, tt := range tests {
		if got := parseETA(tt.input); got != tt.want {
			t.Errorf("parseETA(%v) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestParseSpeed(t *testing.T) {
	if got := parseSpeed(" 1.5MiB/s "); got != "1.5MiB/s" {
		t.Errorf("parseSpeed() = %q", got)
	}
	if got := parseSpeed("Unknown B/s"); got != "" {
		t.Errorf("parseSpeed(Unknown) = %q, want empty", got)
	}
	if got := parseSpeed(3); got != "" {
		t.Errorf("parseSpeed(3) = %q, want empty", got)
	}
}

func TestNormalizer(t *testing.T) {
	n := newNormalizer("job-1", model.FormatAudio)

	event, ok := n.Normalize(RawProgress{
		RawKeyStatus:     "downloading",
		RawKeyPercentStr: "25%",
		RawKeySpeedStr:   "2.0MB/s",
		RawKeyETA:        40,
		RawKeyTitle:      "Song",
	})
	if !ok {
		t.Fatal("downloading event dropped")
	}
	if event.JobID != "job-1" || event.Phase != model.PhaseDownloading || event.Percent != 25 {
		t.Errorf("event = %+v", event)
	}
	if event.Speed != "2.0MB/s" || event.ETASec != 40 || event.Title != "Song" {
		t.Errorf("telemetry = %q/%d/%q", event.Speed, event.ETASec, event.Title)
	}

	// Video and audio streams each finish; only one postprocessing event
	event, ok = n.Normalize(RawProgress{RawKeyStatus: "finished", RawKeyFilename: "/d/Song.f251.webm"})
	if !ok || event.Phase != model.PhasePostprocessing || event.Percent != 100 {
		t.Errorf("first finished = %+v, %v", event, ok)
	}
	if _, ok := n.Normalize(RawProgress{RawKeyStatus: "finished", RawKeyFilename: "/d/Song.webm"}); ok {
		t.Error("second finished emitted an event")
	}
	if n.finishedFile != "/d/Song.webm" {
		t.Errorf("finishedFile = %q, want last reported", n.finishedFile)
	}

	// A finished event without a filename keeps the previous one
	n.Normalize(RawProgress{RawKeyStatus: "finished"})
	if n.finishedFile != "/d/Song.webm" {
		t.Errorf("finishedFile = %q after empty finished", n.finishedFile)
	}

	for _, raw := range []RawProgress{
		{RawKeyStatus: "error"},
		{RawKeyStatus: "started"},
		{},
		nil,
	} {
		if _, ok := n.Normalize(raw); ok {
			t.Errorf("Normalize(%v) emitted an event", raw)
		}
	}

	final := n.finishedEvent()
	if final.Phase != model.PhaseFinished || final.Percent != 100 || final.Title != "Song" {
		t.Errorf("finishedEvent() = %+v", final)
	}
}
