package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/ytget/ytd/internal/download"
	"github.com/ytget/ytd/internal/model"
	"github.com/ytget/ytd/internal/platform"
)

const (
	title     = "ytd (terminal)"
	prompt    = "ytd> "
	barWidth  = 30
	cmdPrefix = ":"
)

const helpText = `Paste a URL to download it. Commands:
  :video          download video (default)
  :audio          download audio only
  :dir [path]     set the output folder, empty for the default
  :open           open the last downloaded file
  :status         show the current state
  :help           show this help
  :quit           exit`

// Option configures a Session
type Option func(*Session)

// WithFormat sets the initial format
func WithFormat(f model.Format) Option {
	return func(s *Session) {
		if f.IsValid() {
			s.format = f
		}
	}
}

// WithOutputDir sets the initial output folder
func WithOutputDir(dir string) Option {
	return func(s *Session) {
		s.outputDir = strings.TrimSpace(dir)
	}
}

// WithOpener replaces the function used by :open
func WithOpener(open func(path string) error) Option {
	return func(s *Session) {
		if open != nil {
			s.open = open
		}
	}
}

// WithLogger sets the logger, slog.Default() otherwise
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Session is one interactive terminal front end. It is not safe for
// concurrent use; everything happens on the goroutine calling Run.
type Session struct {
	downloader download.Downloader
	in         io.Reader
	out        io.Writer
	logger     *slog.Logger

	format    model.Format
	outputDir string
	lastFile  string
	open      func(path string) error
}

// NewSession creates a session reading from in and writing to out
func NewSession(d download.Downloader, in io.Reader, out io.Writer, opts ...Option) *Session {
	s := &Session{
		downloader: d,
		in:         in,
		out:        out,
		logger:     slog.Default(),
		format:     model.FormatVideo,
		open:       platform.OpenFileWithDefaultApp,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LastFile returns the path of the last successful download
func (s *Session) LastFile() string {
	return s.lastFile
}

// Run reads lines until EOF, :quit or ctx is done
func (s *Session) Run(ctx context.Context) error {
	s.printf("%s\n", title)
	if dir, err := s.downloader.DefaultOutputDir(); err == nil {
		s.printf("Default output folder: %s\n", dir)
	}
	s.printf("Type :help for commands.\n")

	scanner := bufio.NewScanner(s.in)
	for {
		if ctx.Err() != nil {
			return nil
		}

		s.printf("%s", prompt)
		if !scanner.Scan() {
			s.printf("\n")
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, cmdPrefix) {
			if quit := s.command(line); quit {
				return nil
			}
			continue
		}

		s.Download(ctx, line)
	}
}

// command handles a :command line and reports whether the session ends
func (s *Session) command(line string) bool {
	name, arg, _ := strings.Cut(strings.TrimPrefix(line, cmdPrefix), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "q", "quit", "exit":
		return true
	case "h", "help":
		s.printf("%s\n", helpText)
	case "v", "video":
		s.format = model.FormatVideo
		s.printf("Format: video\n")
	case "a", "audio":
		s.format = model.FormatAudio
		s.printf("Format: audio\n")
	case "f", "format":
		format, err := model.ParseFormat(arg)
		if err != nil {
			s.printf("Error: %v\n", err)
			return false
		}
		s.format = format
		s.printf("Format: %s\n", format)
	case "d", "dir":
		s.outputDir = arg
		if arg == "" {
			s.printf("Output folder: default\n")
		} else {
			s.printf("Output folder: %s\n", arg)
		}
	case "o", "open":
		s.openLastFile()
	case "s", "status":
		s.printStatus()
	default:
		s.printf("Unknown command %q, type :help\n", name)
	}
	return false
}

// Download runs one job for url and renders it until its result arrives
func (s *Session) Download(ctx context.Context, url string) model.DownloadResult {
	url = strings.TrimSpace(url)
	if url == "" {
		s.printf("Error: No URL provided.\n")
		return download.FailureFromError(download.ErrInvalidRequest)
	}

	outputDir := s.outputDir
	if outputDir == "" {
		if dir, err := s.downloader.DefaultOutputDir(); err == nil {
			outputDir = dir
		}
	}
	s.printf("Starting %s download...\n", s.format)
	s.printf("Output directory: %s\n", outputDir)

	job, err := s.downloader.Start(ctx, model.DownloadRequest{
		URL:       url,
		Format:    s.format,
		OutputDir: s.outputDir,
	})
	if err != nil {
		result := download.FailureFromError(err)
		s.finish(result)
		return result
	}

	var bar progressLine
	for event := range job.Events() {
		switch event.Phase {
		case model.PhaseDownloading:
			s.printf("\r%s", bar.render(event))
		case model.PhasePostprocessing:
			s.printf("\r%s\n", bar.render(event))
			s.printf("Download complete. Processing...\n")
		}
	}
	bar.clear(s.out)

	result := job.Result()
	s.finish(result)
	return result
}

func (s *Session) finish(result model.DownloadResult) {
	if result.IsSuccess() {
		s.lastFile = result.Path
		s.printf("SUCCESS: Saved to %s\n", result.Path)
		return
	}
	if result.ErrorKind != model.ErrorKindAlreadyRunning {
		s.lastFile = ""
	}
	s.printf("ERROR: %s\n", result.ErrorMessage)
}

func (s *Session) openLastFile() {
	if s.lastFile == "" || !platform.FileExists(s.lastFile) {
		s.printf("Error: No file available to open.\n")
		return
	}

	s.printf("Opening: %s\n", s.lastFile)
	if err := s.open(s.lastFile); err != nil {
		s.logger.Warn("open file failed", "path", s.lastFile, "err", err)
		s.printf("Failed to open file automatically.\n")
	}
}

func (s *Session) printStatus() {
	state := s.downloader.State()
	s.printf("State: %s", state.Status)
	if state.Status.IsActive() && state.Current != "" {
		s.printf(" (%s)", state.Current)
	}
	s.printf("\n")
	if last := state.LastResult; last != nil {
		if last.IsSuccess() {
			s.printf("Last: %s in %s\n", last.Path, last.Duration().Round(time.Second))
		} else {
			s.printf("Last: failed, %s\n", last.ErrorMessage)
		}
	}
	s.printf("Format: %s\n", s.format)
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}
