package platform

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// Command constants
const (
	OpenCommand       = "open"
	XDGOpenCommand    = "xdg-open"
	TermuxOpenCommand = "termux-open"
	CmdCommand        = "cmd"
	StartCommand      = "start"
	WindowsCmdFlag    = "/c"
)

// File extensions left behind by an unfinished download
var (
	SkippedExtensions = []string{".part", ".ytdl", ".temp"}
)

// PathExists reports whether anything exists at path
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// FileExists reports whether path names an existing regular file
func FileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// EnsureDir normalizes dirPath to an absolute path, creates it when absent
// and checks that it is a directory
func EnsureDir(dirPath string) (string, error) {
	if strings.TrimSpace(dirPath) == "" {
		return "", errors.New("directory path is empty")
	}

	abs, err := filepath.Abs(dirPath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	if err := CreateDirectoryIfNotExists(abs); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", abs, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("failed to stat directory %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}

// IsPartialFile reports whether name looks like an unfinished download
func IsPartialFile(name string) bool {
	for _, ext := range SkippedExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// ReplaceExtension swaps the extension of path for ext (with or without the
// leading dot)
func ReplaceExtension(path, ext string) string {
	ext = "." + strings.TrimPrefix(ext, ".")
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// SanitizeTitle renders title the way yt-dlp writes it into a file name
// without --restrict-filenames: characters that are illegal in file names
// become their full-width look-alikes and control characters are dropped.
func SanitizeTitle(title string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '/':
			return '\u29F8'
		case r == '\\':
			return '\u29F9'
		case strings.ContainsRune(`"*:<>?|`, r):
			return r + 0xFEE0
		case r < 32 || r == 127:
			return -1
		}
		return r
	}, title)
}

// FindByTitle scans the immediate entries of dir in name order and returns
// the first regular file whose name contains title, either verbatim or as
// SanitizeTitle renders it. When ext is not empty only files with that
// extension are considered.
func FindByTitle(dir, title, ext string) (string, bool, error) {
	if title == "" {
		return "", false, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	// os.ReadDir already sorts, keep it explicit since order decides the match
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	if ext != "" {
		ext = "." + strings.TrimPrefix(ext, ".")
	}
	sanitized := SanitizeTitle(title)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if IsPartialFile(name) {
			continue
		}
		if ext != "" && !strings.EqualFold(filepath.Ext(name), ext) {
			continue
		}
		if strings.Contains(name, title) || (sanitized != "" && strings.Contains(name, sanitized)) {
			return filepath.Join(dir, name), true, nil
		}
	}

	return "", false, nil
}

// OpenFileWithDefaultApp opens the file with the default system application
func OpenFileWithDefaultApp(filePath string) error {
	if !FileExists(filePath) {
		return fmt.Errorf("file does not exist: %s", filePath)
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	cmd, err := openCommand(runtime.GOOS, absPath)
	if err != nil {
		return err
	}
	return cmd.Run()
}

// openCommand builds the command that opens path on goos
func openCommand(goos, path string) (*exec.Cmd, error) {
	switch goos {
	case OSDarwin:
		return exec.Command(OpenCommand, path), nil
	case OSWindows:
		return exec.Command(CmdCommand, WindowsCmdFlag, StartCommand, "", path), nil
	case OSAndroid:
		return exec.Command(TermuxOpenCommand, path), nil
	case OSLinux:
		if PathExists(TermuxMarker) {
			return exec.Command(TermuxOpenCommand, path), nil
		}
		return exec.Command(XDGOpenCommand, path), nil
	default:
		return nil, fmt.Errorf("unsupported operating system: %s", goos)
	}
}

// NotifyMediaScanner notifies the Android media scanner about a new file so
// it shows up in gallery and music apps. It is a no-op elsewhere.
func NotifyMediaScanner(filePath string) error {
	if !IsAndroid() {
		return nil
	}

	cmd := exec.Command("am", "broadcast", "-a", "android.intent.action.MEDIA_SCANNER_SCAN_FILE", "-d", "file://"+filePath)

	// Don't block the caller on the broadcast
	go func() {
		_ = cmd.Run()
	}()
	return nil
}
