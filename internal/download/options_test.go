package download

import (
	"path/filepath"
	"testing"

	"github.com/ytget/ytd/internal/model"
)

func TestPolicy_Selector(t *testing.T) {
	tests := []struct {
		name      string
		container string
		format    model.Format
		want      string
	}{
		{"audio ignores container", "mp4", model.FormatAudio, SelectorAudio},
		{"video any container", "", model.FormatVideo, SelectorVideo},
		{"video mp4", "mp4", model.FormatVideo, SelectorVideoMP4},
		{"video mp4 with dot", ".MP4", model.FormatVideo, SelectorVideoMP4},
		{"video webm", "webm", model.FormatVideo, "bestvideo[ext=webm]+bestaudio/best[ext=webm]/best"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Policy{Container: tt.container}
			if got := p.Selector(tt.format); got != tt.want {
				t.Errorf("Selector() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPolicy_AudioExtension(t *testing.T) {
	tests := []struct {
		codec string
		want  string
	}{
		{"", "mp3"},
		{"mp3", "mp3"},
		{"aac", "m4a"},
		{"vorbis", "ogg"},
		{"opus", "opus"},
	}

	for _, tt := range tests {
		if got := (Policy{AudioCodec: tt.codec}).AudioExtension(); got != tt.want {
			t.Errorf("AudioExtension(%q) = %q, want %q", tt.codec, got, tt.want)
		}
	}
}

func TestPolicy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		policy  Policy
		wantErr bool
	}{
		{"defaults", DefaultPolicy(), false},
		{"zero value", Policy{}, false},
		{"flac", Policy{AudioCodec: "flac"}, false},
		{"unknown codec", Policy{AudioCodec: "midi"}, true},
		{"absolute template", Policy{FilenameTemplate: "/tmp/%(title)s.%(ext)s"}, true},
		{"selector in container", Policy{Container: "mp4]+best"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPolicy_BuildRequest(t *testing.T) {
	dir := t.TempDir()
	p := Policy{AudioQuality: "320"}

	video := p.buildRequest(model.DownloadRequest{URL: " https://example/v ", Format: model.FormatVideo}, dir)
	if video.URL != "https://example/v" {
		t.Errorf("URL = %q", video.URL)
	}
	if video.AudioCodec != "" || video.AudioQuality != "" {
		t.Errorf("video request carries audio options: %+v", video)
	}
	if video.OutputTemplate != filepath.Join(dir, DefaultFilenameTemplate) {
		t.Errorf("OutputTemplate = %q", video.OutputTemplate)
	}

	audio := p.buildRequest(model.DownloadRequest{URL: "u", Format: model.FormatAudio}, dir)
	if audio.AudioCodec != DefaultAudioCodec || audio.AudioQuality != "320" {
		t.Errorf("audio options = %q/%q", audio.AudioCodec, audio.AudioQuality)
	}
	if audio.OutputDir != dir {
		t.Errorf("OutputDir = %q, want %q", audio.OutputDir, dir)
	}
}
