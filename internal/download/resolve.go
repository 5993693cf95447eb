package download

import (
	"path/filepath"

	"github.com/ytget/ytd/internal/model"
	"github.com/ytget/ytd/internal/platform"
)

// ResolveFinalPath locates the file a finished job produced. Post-processing
// can rename the download without reporting it, so several sources are tried
// in order:
//
//  1. audio: the prepared filename with its extension replaced by audioExt
//  2. video: the prepared filename as is
//  3. (1) or (2) when it exists
//  4. the filename reported by the finished progress event (audio: with
//     audioExt), when it exists
//  5. the first entry of outputDir, by name, whose name contains the title
//     (audio: only audioExt files)
//  6. otherwise a ResolutionError naming outputDir
//
// The result only depends on its arguments and the directory contents.
func ResolveFinalPath(format model.Format, outputDir string, info *ExtractionInfo, reported, audioExt string) (string, error) {
	audio := format == model.FormatAudio

	candidate := func(name string) string {
		if name == "" {
			return ""
		}
		if !filepath.IsAbs(name) {
			name = filepath.Join(outputDir, name)
		}
		if audio {
			name = platform.ReplaceExtension(name, audioExt)
		}
		return name
	}

	var title string
	if info != nil {
		title = info.Title
		if expected := candidate(info.PreparedFilename); platform.FileExists(expected) {
			return expected, nil
		}
	}

	if fallback := candidate(reported); platform.FileExists(fallback) {
		return fallback, nil
	}

	var ext string
	if audio {
		ext = audioExt
	}
	found, ok, err := platform.FindByTitle(outputDir, title, ext)
	if err != nil {
		return "", resolutionError(outputDir, err)
	}
	if ok {
		return found, nil
	}

	return "", resolutionError(outputDir, nil)
}
