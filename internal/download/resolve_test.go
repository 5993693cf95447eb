package download

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ytget/ytd/internal/model"
)

func TestResolveFinalPath(t *testing.T) {
	tests := []struct {
		name     string
		format   model.Format
		files    []string
		dirs     []string
		prepared string
		reported string
		title    string
		want     string
		wantErr  bool
	}{
		{
			name:     "video exact match",
			format:   model.FormatVideo,
			files:    []string{"Title.mp4", "Title.webm"},
			prepared: "Title.mp4",
			reported: "Title.webm",
			title:    "Title",
			want:     "Title.mp4",
		},
		{
			name:     "video relative prepared name",
			format:   model.FormatVideo,
			files:    []string{"Clip.mkv"},
			prepared: "Clip.mkv",
			want:     "Clip.mkv",
		},
		{
			name:     "audio exact match swaps extension",
			format:   model.FormatAudio,
			files:    []string{"Song.mp3", "Song.webm"},
			prepared: "Song.webm",
			want:     "Song.mp3",
		},
		{
			name:     "video falls back to reported file",
			format:   model.FormatVideo,
			files:    []string{"Title.f137.mp4"},
			prepared: "Title.mkv",
			reported: "Title.f137.mp4",
			title:    "Title",
			want:     "Title.f137.mp4",
		},
		{
			name:     "audio reported file gets audio extension",
			format:   model.FormatAudio,
			files:    []string{"Renamed.mp3", "Renamed.m4a"},
			prepared: "Song.webm",
			reported: "Renamed.m4a",
			want:     "Renamed.mp3",
		},
		{
			name:     "audio reported source is not accepted",
			format:   model.FormatAudio,
			files:    []string{"Renamed.m4a"},
			prepared: "Song.webm",
			reported: "Renamed.m4a",
			wantErr:  true,
		},
		{
			name:     "title substring match",
			format:   model.FormatVideo,
			files:    []string{"b My Title.mp4", "a My Title.mkv", "other.mp4"},
			prepared: "gone.mp4",
			title:    "My Title",
			want:     "a My Title.mkv",
		},
		{
			name:   "title scan skips partial files and dirs",
			format: model.FormatVideo,
			files:  []string{"Talk.mp4.part", "Talk.ytdl", "Talk.temp", "zz Talk.mp4"},
			dirs:   []string{"Talk dir"},
			title:  "Talk",
			want:   "zz Talk.mp4",
		},
		{
			name:   "audio title scan only accepts mp3",
			format: model.FormatAudio,
			files:  []string{"a Song.webm", "b Song.mp3"},
			title:  "Song",
			want:   "b Song.mp3",
		},
		{
			name:    "audio title scan without mp3 fails",
			format:  model.FormatAudio,
			files:   []string{"Song.webm"},
			title:   "Song",
			wantErr: true,
		},
		{
			name:     "no match",
			format:   model.FormatVideo,
			files:    []string{"unrelated.mp4"},
			prepared: "Title.mp4",
			reported: "Title.f1.mp4",
			title:    "Title",
			wantErr:  true,
		},
		{
			name:    "no title no files",
			format:  model.FormatVideo,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, name := range tt.files {
				writeFile(t, filepath.Join(dir, name))
			}
			for _, name := range tt.dirs {
				if err := os.Mkdir(filepath.Join(dir, name), 0755); err != nil {
					t.Fatal(err)
				}
			}

			info := &ExtractionInfo{Title: tt.title}
			if tt.prepared != "" {
				info.PreparedFilename = filepath.Join(dir, tt.prepared)
			}
			reported := ""
			if tt.reported != "" {
				reported = filepath.Join(dir, tt.reported)
			}

			// The chain only reads the directory, so repeated calls agree
			var first string
			for i := 0; i < 3; i++ {
				got, err := ResolveFinalPath(tt.format, dir, info, reported, DefaultAudioCodec)
				if tt.wantErr {
					var rerr *Error
					if !errors.As(err, &rerr) || rerr.Kind != model.ErrorKindResolution {
						t.Fatalf("ResolveFinalPath() error = %v, want resolution error", err)
					}
					if !strings.Contains(err.Error(), dir) {
						t.Errorf("error %q does not name %s", err, dir)
					}
					return
				}
				if err != nil {
					t.Fatalf("ResolveFinalPath() error = %v", err)
				}
				if i == 0 {
					first = got
				} else if got != first {
					t.Fatalf("ResolveFinalPath() not deterministic: %q then %q", first, got)
				}
			}

			if want := filepath.Join(dir, tt.want); first != want {
				t.Errorf("ResolveFinalPath() = %q, want %q", first, want)
			}
		})
	}
}

func TestResolveFinalPath_RelativePreparedName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Song.mp3"))

	got, err := ResolveFinalPath(model.FormatAudio, dir, &ExtractionInfo{PreparedFilename: "Song.opus"}, "", "mp3")
	if err != nil {
		t.Fatalf("ResolveFinalPath() error = %v", err)
	}
	if want := filepath.Join(dir, "Song.mp3"); got != want {
		t.Errorf("ResolveFinalPath() = %q, want %q", got, want)
	}
}

func TestResolveFinalPath_ConfiguredAudioExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Song.mp3"))
	writeFile(t, filepath.Join(dir, "Song.m4a"))

	info := &ExtractionInfo{Title: "Song", PreparedFilename: filepath.Join(dir, "Song.webm")}
	got, err := ResolveFinalPath(model.FormatAudio, dir, info, "", "m4a")
	if err != nil {
		t.Fatalf("ResolveFinalPath() error = %v", err)
	}
	if want := filepath.Join(dir, "Song.m4a"); got != want {
		t.Errorf("ResolveFinalPath() = %q, want %q", got, want)
	}
}

func TestResolveFinalPath_NilInfo(t *testing.T) {
	dir := t.TempDir()
	reported := filepath.Join(dir, "Only.mp4")
	writeFile(t, reported)

	got, err := ResolveFinalPath(model.FormatVideo, dir, nil, reported, "mp3")
	if err != nil || got != reported {
		t.Errorf("ResolveFinalPath() = %q, %v; want %q", got, err, reported)
	}
}
