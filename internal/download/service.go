package download

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ytget/ytd/internal/model"
	"github.com/ytget/ytd/internal/platform"
)

// TaskIDPrefix prefixes every job id
const TaskIDPrefix = "job-"

// Option configures a Service
type Option func(*Service)

// WithPolicy sets the extractor policy
func WithPolicy(p Policy) Option {
	return func(s *Service) {
		s.policy = p.withDefaults()
	}
}

// WithLogger sets the logger, slog.Default() otherwise
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithResultHook registers a callback invoked with every terminal result,
// on the job's goroutine after the result has been published
func WithResultHook(hook func(model.DownloadResult)) Option {
	return func(s *Service) {
		if hook != nil {
			s.hooks = append(s.hooks, hook)
		}
	}
}

// WithEventBuffer sets the capacity of each job's event channel
func WithEventBuffer(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.eventBuffer = n
		}
	}
}

// Service runs at most one download job at a time
type Service struct {
	extractor   Extractor
	paths       PathResolver
	policy      Policy
	logger      *slog.Logger
	hooks       []func(model.DownloadResult)
	eventBuffer int

	mu      sync.Mutex
	running bool
	current *Job
	last    *model.DownloadResult
}

var _ Downloader = (*Service)(nil)

// NewService creates a new orchestrator. paths may be nil, in which case the
// platform default resolver is used.
func NewService(extractor Extractor, paths PathResolver, opts ...Option) *Service {
	if paths == nil {
		paths = platform.NewPathResolver()
	}
	s := &Service{
		extractor:   extractor,
		paths:       paths,
		policy:      DefaultPolicy(),
		logger:      slog.Default(),
		eventBuffer: DefaultEventBuffer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the active extractor policy
func (s *Service) Policy() Policy {
	return s.policy
}

// DefaultOutputDir returns where requests without OutputDir are saved
func (s *Service) DefaultOutputDir() (string, error) {
	return s.paths.DefaultDownloadPath()
}

// State returns a snapshot of the job slot
func (s *Service) State() model.JobState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := model.JobState{Status: model.JobStatusIdle}
	if s.running {
		state.Status = model.JobStatusRunning
		if s.current != nil {
			state.Current = s.current.ID
		}
	}
	if s.last != nil {
		last := *s.last
		state.LastResult = &last
	}
	return state
}

// LastResult returns the result of the most recent finished job
func (s *Service) LastResult() (model.DownloadResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last == nil {
		return model.DownloadResult{}, false
	}
	return *s.last, true
}

// Start validates req, prepares the output directory and dispatches the
// extractor on its own goroutine. Rejections leave the running job, if any,
// untouched. The job keeps running when ctx is cancelled; cancellation is
// not supported.
func (s *Service) Start(ctx context.Context, req model.DownloadRequest) (*Job, error) {
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		return nil, ErrInvalidRequest
	}
	if req.Format == "" {
		req.Format = model.FormatVideo
	}
	if !req.Format.IsValid() {
		return nil, &Error{
			Kind: model.ErrorKindInvalidRequest,
			Msg:  fmt.Sprintf("unknown format: %s", req.Format),
		}
	}

	// Reserve the slot before touching the filesystem
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	s.running = true
	s.mu.Unlock()

	dir, err := s.prepareDir(req.OutputDir)
	if err != nil {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return nil, directoryError(err)
	}
	req.OutputDir = dir

	job := newJob(generateTaskID(), req, s.eventBuffer)

	s.mu.Lock()
	s.current = job
	s.mu.Unlock()

	s.logger.Info("download started",
		"job", job.ID,
		"url", req.URL,
		"format", req.Format,
		"dir", dir,
	)

	go s.run(context.WithoutCancel(ctx), job, s.policy.buildRequest(req, dir))

	return job, nil
}

// Run starts a job and drains it on the caller's goroutine
func (s *Service) Run(ctx context.Context, req model.DownloadRequest, onEvent func(model.ProgressEvent)) model.DownloadResult {
	job, err := s.Start(ctx, req)
	if err != nil {
		return FailureFromError(err)
	}

	for event := range job.Events() {
		if onEvent != nil {
			onEvent(event)
		}
	}
	<-job.Done()
	return job.Result()
}

// prepareDir resolves an empty dir to the platform default and makes sure
// the directory exists
func (s *Service) prepareDir(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		var err error
		dir, err = s.paths.DefaultDownloadPath()
		if err != nil {
			return "", err
		}
	}
	return platform.EnsureDir(dir)
}

// run executes one job. It is the only writer of the job's events and result.
func (s *Service) run(ctx context.Context, job *Job, req ExtractRequest) {
	norm := newNormalizer(job.ID, job.Request.Format)

	info, err := s.extract(ctx, req, func(raw RawProgress) {
		if event, ok := norm.Normalize(raw); ok {
			job.emit(event)
		}
	})

	var result model.DownloadResult
	if err != nil {
		result = FailureFromError(extractionError(err))
		s.logger.Warn("download failed",
			"job", job.ID,
			"url", req.URL,
			"err", err,
		)
	} else {
		path, rerr := ResolveFinalPath(job.Request.Format, req.OutputDir, info, norm.finishedFile, s.policy.AudioExtension())
		if rerr != nil {
			result = FailureFromError(rerr)
			s.logger.Warn("download finished but file not found",
				"job", job.ID,
				"dir", req.OutputDir,
				"prepared", preparedName(info),
				"reported", norm.finishedFile,
			)
		} else {
			job.emit(norm.finishedEvent())
			result = model.Succeeded(path)
			s.logger.Info("download completed",
				"job", job.ID,
				"path", path,
				"elapsed", time.Since(job.StartedAt).Round(time.Millisecond),
			)
		}
	}

	result.JobID = job.ID
	result.StartedAt = job.StartedAt
	result.FinishedAt = time.Now()

	job.closeEvents()

	s.mu.Lock()
	s.running = false
	s.current = nil
	s.last = &result
	s.mu.Unlock()

	job.finish(result)

	for _, hook := range s.hooks {
		hook(result)
	}
}

// extract calls the extractor and turns a panic into an error so nothing
// escapes the job goroutine
func (s *Service) extract(ctx context.Context, req ExtractRequest, hook func(RawProgress)) (info *ExtractionInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("extractor panicked", "url", req.URL, "panic", r)
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if s.extractor == nil {
		return nil, fmt.Errorf("no extractor configured")
	}
	return s.extractor.Extract(ctx, req, hook)
}

func preparedName(info *ExtractionInfo) string {
	if info == nil {
		return ""
	}
	return info.PreparedFilename
}

// generateTaskID generates a unique job ID
func generateTaskID() string {
	return TaskIDPrefix + uuid.NewString()
}

// Job is one in-flight request. Consumers drain Events until it is closed,
// then read Result.
type Job struct {
	ID        string
	Request   model.DownloadRequest
	StartedAt time.Time

	mu     sync.Mutex
	events chan model.ProgressEvent
	closed bool

	done   chan struct{}
	result model.DownloadResult
}

func newJob(id string, req model.DownloadRequest, buffer int) *Job {
	return &Job{
		ID:        id,
		Request:   req,
		StartedAt: time.Now(),
		events:    make(chan model.ProgressEvent, buffer),
		done:      make(chan struct{}),
	}
}

// Events delivers progress in extractor order. It is closed before the
// result is published.
func (j *Job) Events() <-chan model.ProgressEvent {
	return j.events
}

// Done is closed once Result is valid
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Result blocks until the job finishes and returns its terminal result
func (j *Job) Result() model.DownloadResult {
	<-j.done
	return j.result
}

// Wait blocks until the job finishes or ctx is done. The job itself keeps
// running in the latter case.
func (j *Job) Wait(ctx context.Context) (model.DownloadResult, error) {
	select {
	case <-j.done:
		return j.result, nil
	case <-ctx.Done():
		return model.DownloadResult{}, ctx.Err()
	}
}

// emit never blocks the extractor. Downloading updates are dropped when the
// consumer falls behind; phase changes evict the oldest queued event instead.
func (j *Job) emit(event model.ProgressEvent) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return
	}

	select {
	case j.events <- event:
		return
	default:
	}

	if event.Phase == model.PhaseDownloading {
		return
	}

	select {
	case <-j.events:
	default:
	}
	select {
	case j.events <- event:
	default:
	}
}

func (j *Job) closeEvents() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.closed {
		j.closed = true
		close(j.events)
	}
}

func (j *Job) finish(result model.DownloadResult) {
	j.result = result
	close(j.done)
}
