package config

import (
	"fyne.io/fyne/v2"

	"github.com/ytget/ytd/internal/model"
	"github.com/ytget/ytd/internal/platform"
)

// Settings keys for Fyne preferences
const (
	KeyDownloadDir        = "download_directory"
	KeyFormat             = "download_format"
	KeyLastFile           = "last_downloaded_file"
	KeyAutoRevealComplete = "auto_reveal_on_complete"
)

// Default values
const (
	DefaultFormat             = model.FormatVideo
	DefaultAutoRevealComplete = false
)

// Settings persists the desktop front end's choices between runs
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// GetDownloadDirectory returns the configured download directory, falling
// back to the platform default
func (s *Settings) GetDownloadDirectory() string {
	dir := s.app.Preferences().String(KeyDownloadDir)
	if dir == "" {
		defaultDir, err := platform.DefaultDownloadPath()
		if err != nil {
			return ""
		}
		s.SetDownloadDirectory(defaultDir)
		return defaultDir
	}
	return dir
}

// SetDownloadDirectory sets the download directory
func (s *Settings) SetDownloadDirectory(dir string) {
	s.app.Preferences().SetString(KeyDownloadDir, dir)
}

// GetFormat returns the last chosen format
func (s *Settings) GetFormat() model.Format {
	format, err := model.ParseFormat(s.app.Preferences().String(KeyFormat))
	if err != nil {
		s.SetFormat(DefaultFormat)
		return DefaultFormat
	}
	return format
}

// SetFormat sets the download format
func (s *Settings) SetFormat(format model.Format) {
	if !format.IsValid() {
		format = DefaultFormat
	}
	s.app.Preferences().SetString(KeyFormat, string(format))
}

// GetLastFile returns the path of the last successful download, if it still
// exists
func (s *Settings) GetLastFile() (string, bool) {
	path := s.app.Preferences().String(KeyLastFile)
	if path == "" || !platform.FileExists(path) {
		return "", false
	}
	return path, true
}

// SetLastFile remembers the last successful download
func (s *Settings) SetLastFile(path string) {
	s.app.Preferences().SetString(KeyLastFile, path)
}

// GetAutoRevealOnComplete returns whether to open completed downloads
func (s *Settings) GetAutoRevealOnComplete() bool {
	return s.app.Preferences().BoolWithFallback(KeyAutoRevealComplete, DefaultAutoRevealComplete)
}

// SetAutoRevealOnComplete sets whether to open completed downloads
func (s *Settings) SetAutoRevealOnComplete(autoReveal bool) {
	s.app.Preferences().SetBool(KeyAutoRevealComplete, autoReveal)
}

// GetFormatOptions returns the formats offered by the desktop front end
func (s *Settings) GetFormatOptions() []model.Format {
	return []model.Format{model.FormatVideo, model.FormatAudio}
}
