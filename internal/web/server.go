package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	pz "github.com/weberc2/httpeasy"

	"github.com/ytget/ytd/internal/download"
	"github.com/ytget/ytd/internal/model"
	"github.com/ytget/ytd/internal/platform"
)

// DefaultAddr is the listen address when none is configured
const DefaultAddr = "127.0.0.1:8000"

const (
	writeWait       = 10 * time.Second
	shutdownTimeout = 5 * time.Second
	playlistTimeout = 60 * time.Second
)

//go:embed static/index.html
var staticFS embed.FS

var indexTemplate = template.Must(template.ParseFS(staticFS, "static/index.html"))

// PlaylistLister lists the entries of a playlist URL
type PlaylistLister interface {
	List(ctx context.Context, url string) (*model.Playlist, error)
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the logger, slog.Default() otherwise
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAccessLog sets where JSON access logs are written, os.Stderr otherwise
func WithAccessLog(w io.Writer) Option {
	return func(s *Server) {
		if w != nil {
			s.accessLog = w
		}
	}
}

// WithPlaylists enables the /playlist route
func WithPlaylists(p PlaylistLister) Option {
	return func(s *Server) {
		s.playlists = p
	}
}

// Server serves the page, the JSON routes and the job channel. Every
// connection shares the one orchestrator, so a second concurrent job is
// rejected rather than queued.
type Server struct {
	downloader download.Downloader
	playlists  PlaylistLister
	logger     *slog.Logger
	accessLog  io.Writer
	upgrader   websocket.Upgrader
}

// NewServer creates a web front end for d
func NewServer(d download.Downloader, opts ...Option) *Server {
	s := &Server{
		downloader: d,
		logger:     slog.Default(),
		accessLog:  os.Stderr,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routes. The websocket endpoint is mounted on the
// router directly since it takes over the connection.
func (s *Server) Handler() http.Handler {
	routes := []pz.Route{
		{Method: "GET", Path: "/", Handler: s.Index},
		{Method: "GET", Path: "/info", Handler: s.Info},
		{Method: "GET", Path: "/status", Handler: s.Status},
	}
	if s.playlists != nil {
		routes = append(routes, pz.Route{Method: "GET", Path: "/playlist", Handler: s.Playlist})
	}

	r := mux.NewRouter()
	r.HandleFunc("/ws", s.ServeJob)
	r.PathPrefix("/").Handler(pz.Register(pz.JSONLog(s.accessLog), routes...))
	return r
}

// ListenAndServe serves on addr until ctx is done
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	s.logger.Info("web server listening", "addr", addr, "default_path", s.defaultPath())

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) defaultPath() string {
	dir, err := s.downloader.DefaultOutputDir()
	if err != nil {
		s.logger.Warn("default output dir unavailable", "err", err)
		return ""
	}
	return dir
}

// Index serves the page
func (s *Server) Index(r pz.Request) pz.Response {
	return pz.Ok(pz.HTMLTemplate(indexTemplate, struct {
		DefaultPath string
	}{
		DefaultPath: s.defaultPath(),
	}))
}

// Info reports the default output folder
func (s *Server) Info(r pz.Request) pz.Response {
	return pz.Ok(pz.JSON(InfoResponse{DefaultPath: s.defaultPath()}))
}

// Status reports the orchestrator's job slot
func (s *Server) Status(r pz.Request) pz.Response {
	return pz.Ok(pz.JSON(s.downloader.State()))
}

// Playlist lists the entries of the playlist named by the url parameter
func (s *Server) Playlist(r pz.Request) pz.Response {
	url := strings.TrimSpace(r.URL.Query().Get("url"))
	if url == "" {
		return pz.BadRequest(pz.JSON(ErrorResponse{Error: MsgNoURL}))
	}
	if !platform.IsPlaylistURL(url) {
		return pz.BadRequest(
			pz.JSON(ErrorResponse{Error: "not a playlist URL"}),
			struct {
				URL string `json:"url"`
			}{url},
		)
	}

	ctx, cancel := context.WithTimeout(context.Background(), playlistTimeout)
	defer cancel()

	playlist, err := s.playlists.List(ctx, url)
	if err != nil {
		s.logger.Warn("listing playlist failed", "url", url, "err", err)
		return pz.Response{
			Status: http.StatusBadGateway,
			Data:   pz.JSON(ErrorResponse{Error: download.SanitizeMessage(err.Error())}),
		}
	}
	return pz.Ok(pz.JSON(playlist))
}

// ServeJob runs one job per connection: read one JobRequest, stream
// progress, send exactly one done or error message and close.
func (s *Server) ServeJob(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer conn.Close()

	ch := &channel{conn: conn, logger: s.logger}
	defer ch.close()

	_, data, err := conn.ReadMessage()
	if err != nil {
		s.logger.Debug("client left before sending a request", "remote", r.RemoteAddr, "err", err)
		return
	}

	var req JobRequest
	if err := json.Unmarshal(data, &req); err != nil {
		ch.send(errorMessage(MsgInvalidRequest))
		return
	}

	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		ch.send(errorMessage(MsgNoURL))
		return
	}

	format, err := model.ParseFormat(req.Format)
	if err != nil {
		ch.send(errorMessage(err.Error()))
		return
	}

	job, err := s.downloader.Start(r.Context(), model.DownloadRequest{URL: req.URL, Format: format})
	if err != nil {
		ch.send(errorMessage(download.FailureFromError(err).ErrorMessage))
		return
	}

	// Keep draining when the client is gone; the job runs to completion
	for event := range job.Events() {
		switch event.Phase {
		case model.PhaseDownloading:
			ch.send(progressMessage(event.Percent, StatusDownloading))
		case model.PhasePostprocessing:
			ch.send(progressMessage(100, StatusProcessing))
			ch.send(logMessage(MsgProcessing))
		}
	}

	result := job.Result()
	if result.IsSuccess() {
		ch.send(doneMessage(result.Path))
	} else {
		ch.send(errorMessage(result.ErrorMessage))
	}
}

// channel writes messages to one connection from a single goroutine and
// gives up silently after the first write error
type channel struct {
	conn   *websocket.Conn
	logger *slog.Logger
	broken bool
}

func (c *channel) send(msg Message) {
	if c.broken {
		return
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(msg); err != nil {
		c.broken = true
		c.logger.Debug("websocket write failed", "type", msg.Type, "err", err)
	}
}

func (c *channel) close() {
	if c.broken {
		return
	}
	_ = c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait),
	)
}
