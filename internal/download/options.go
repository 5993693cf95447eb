package download

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ytget/ytd/internal/model"
)

// Default policy values
const (
	DefaultAudioCodec       = "mp3"
	DefaultAudioQuality     = "192"
	DefaultFilenameTemplate = "%(title)s.%(ext)s"
	DefaultEventBuffer      = 64
)

// Format selectors
const (
	SelectorAudio        = "bestaudio/best"
	SelectorVideo        = "bestvideo+bestaudio/best"
	SelectorVideoMP4     = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"
	selectorVideoCustom  = "bestvideo[ext=%[1]s]+bestaudio/best[ext=%[1]s]/best"
	containerUnspecified = ""
)

// audioExtensions maps extract-audio codecs to the extension yt-dlp writes
var audioExtensions = map[string]string{
	"mp3":    "mp3",
	"aac":    "m4a",
	"m4a":    "m4a",
	"alac":   "m4a",
	"opus":   "opus",
	"vorbis": "ogg",
	"flac":   "flac",
	"wav":    "wav",
}

// Policy holds the extractor options that are configuration rather than
// part of a request
type Policy struct {
	// Container constrains video downloads to a container, "" leaves it to
	// the extractor.
	Container string

	AudioCodec       string
	AudioQuality     string
	FilenameTemplate string

	// AllowPlaylist lets a watch URL carrying a list= parameter expand into
	// the whole playlist. Off means only the single video is fetched.
	AllowPlaylist bool
}

// DefaultPolicy returns mp3 at 192kbps for audio and an unconstrained
// container for video
func DefaultPolicy() Policy {
	return Policy{
		Container:        containerUnspecified,
		AudioCodec:       DefaultAudioCodec,
		AudioQuality:     DefaultAudioQuality,
		FilenameTemplate: DefaultFilenameTemplate,
	}
}

// withDefaults fills blank fields from DefaultPolicy
func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	p.Container = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(p.Container), "."))
	if p.AudioCodec == "" {
		p.AudioCodec = d.AudioCodec
	}
	if p.AudioQuality == "" {
		p.AudioQuality = d.AudioQuality
	}
	if p.FilenameTemplate == "" {
		p.FilenameTemplate = d.FilenameTemplate
	}
	return p
}

// Validate checks the policy for values the extractor would reject
func (p Policy) Validate() error {
	p = p.withDefaults()
	if _, ok := audioExtensions[p.AudioCodec]; !ok {
		return fmt.Errorf("unsupported audio codec: %s", p.AudioCodec)
	}
	if filepath.IsAbs(p.FilenameTemplate) {
		return fmt.Errorf("filename template must be relative: %s", p.FilenameTemplate)
	}
	if strings.ContainsAny(p.Container, "[]/+") {
		return fmt.Errorf("invalid container: %s", p.Container)
	}
	return nil
}

// Selector returns the yt-dlp format selector for f
func (p Policy) Selector(f model.Format) string {
	p = p.withDefaults()
	if f == model.FormatAudio {
		return SelectorAudio
	}

	switch p.Container {
	case containerUnspecified:
		return SelectorVideo
	case "mp4":
		return SelectorVideoMP4
	default:
		return fmt.Sprintf(selectorVideoCustom, p.Container)
	}
}

// AudioExtension returns the extension audio post-processing produces,
// without the leading dot
func (p Policy) AudioExtension() string {
	p = p.withDefaults()
	if ext, ok := audioExtensions[p.AudioCodec]; ok {
		return ext
	}
	return p.AudioCodec
}

// buildRequest maps a validated request and its resolved directory to
// extractor input
func (p Policy) buildRequest(req model.DownloadRequest, dir string) ExtractRequest {
	p = p.withDefaults()
	er := ExtractRequest{
		URL:            strings.TrimSpace(req.URL),
		Format:         req.Format,
		Selector:       p.Selector(req.Format),
		OutputDir:      dir,
		OutputTemplate: filepath.Join(dir, p.FilenameTemplate),
		NoPlaylist:     !p.AllowPlaylist,
	}
	if req.Format == model.FormatAudio {
		er.AudioCodec = p.AudioCodec
		er.AudioQuality = p.AudioQuality
	}
	return er
}
