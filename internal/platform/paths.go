package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Operating system constants
const (
	OSDarwin  = "darwin"
	OSWindows = "windows"
	OSLinux   = "linux"
	OSAndroid = "android"
)

// Download location constants
const (
	// DefaultFolderName is created under the user's home directory
	DefaultFolderName = "ytd"

	// TermuxMarker exists when running inside the Termux sandbox on Android
	TermuxMarker = "/data/data/com.termux"

	// AndroidSharedStorage is the root of the shared, user-visible storage
	AndroidSharedStorage = "/storage/emulated/0"

	// AndroidSharedDownloads is the public Download folder on shared storage
	AndroidSharedDownloads = AndroidSharedStorage + "/Download"
)

// PathResolver computes the platform default output directory. The probes
// are fields so tests can simulate other hosts.
type PathResolver struct {
	GOOS    string
	HomeDir func() (string, error)
	Exists  func(path string) bool
}

// NewPathResolver returns a resolver probing the current host
func NewPathResolver() *PathResolver {
	return &PathResolver{
		GOOS:    runtime.GOOS,
		HomeDir: os.UserHomeDir,
		Exists:  PathExists,
	}
}

// DefaultDownloadPath returns the platform default output directory for the
// current host. It does not create the directory.
func DefaultDownloadPath() (string, error) {
	return NewPathResolver().DefaultDownloadPath()
}

// DefaultDownloadPath returns an absolute path:
//   - Windows, macOS, Linux and anything unknown: <home>/ytd
//   - Termux/Android: the shared Download folder when shared storage is
//     mounted, else <home>/storage/downloads
func (r *PathResolver) DefaultDownloadPath() (string, error) {
	home, err := r.HomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	var dir string
	if r.isSandboxed() {
		if r.Exists(AndroidSharedStorage) {
			dir = AndroidSharedDownloads
		} else {
			dir = filepath.Join(home, "storage", "downloads")
		}
	} else {
		dir = filepath.Join(home, DefaultFolderName)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return abs, nil
}

// isSandboxed reports whether we run in the mobile Linux variant
func (r *PathResolver) isSandboxed() bool {
	switch r.GOOS {
	case OSAndroid:
		return true
	case OSLinux:
		return r.Exists(TermuxMarker)
	default:
		return false
	}
}

// IsAndroid reports whether the current host is Android or Termux
func IsAndroid() bool {
	return NewPathResolver().isSandboxed() ||
		os.Getenv("ANDROID_DATA") != "" ||
		os.Getenv("ANDROID_ROOT") != ""
}
