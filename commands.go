package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"github.com/urfave/cli/v2"

	"github.com/ytget/ytd/internal/config"
	"github.com/ytget/ytd/internal/download"
	"github.com/ytget/ytd/internal/logging"
	"github.com/ytget/ytd/internal/model"
	"github.com/ytget/ytd/internal/notify"
	"github.com/ytget/ytd/internal/platform"
	"github.com/ytget/ytd/internal/terminal"
	"github.com/ytget/ytd/internal/ui"
	"github.com/ytget/ytd/internal/web"
)

const (
	flagWeb      = "web"
	flagAddr     = "addr"
	flagOutput   = "output"
	flagConfig   = "config"
	flagLogLevel = "log-level"
	flagAudio    = "audio"
	flagURLs     = "urls"
	flagLang     = "lang"
)

// services is everything a command needs once configuration is settled
type services struct {
	cfg     *config.Config
	logger  *slog.Logger
	service *download.Service
	closers []func()
}

func (rt *services) close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
}

// withRuntime loads configuration, builds the orchestrator and hands both to
// action. Errors become cli exit errors.
func withRuntime(action func(*services, *cli.Context) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		rt, err := newRuntime(c)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		defer rt.close()

		if err := action(rt, c); err != nil {
			var exit cli.ExitCoder
			if errors.As(err, &exit) {
				return err
			}
			return cli.Exit(err.Error(), 1)
		}
		return nil
	}
}

func newRuntime(c *cli.Context) (*services, error) {
	cfg, err := config.Load(c.String(flagConfig))
	if err != nil {
		return nil, err
	}
	applyFlags(cfg, c)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.Setup(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	rt := &services{cfg: cfg, logger: logger}
	opts := []download.Option{
		download.WithPolicy(cfg.Policy()),
		download.WithLogger(logger),
		download.WithEventBuffer(cfg.EventBuffer),
	}

	if cfg.NATSURL != "" {
		pub, err := notify.Connect(cfg.NATSURL, cfg.NATSSubject, logger)
		if err != nil {
			// downloads still work without the bus
			logger.Warn("result publishing disabled", "url", cfg.NATSURL, "err", err)
		} else {
			opts = append(opts, download.WithResultHook(pub.Hook()))
			rt.closers = append(rt.closers, pub.Close)
		}
	}

	if platform.IsAndroid() {
		opts = append(opts, download.WithResultHook(mediaScanHook(logger)))
	}

	var paths download.PathResolver = platform.NewPathResolver()
	if cfg.OutputDir != "" {
		paths = fixedPath(cfg.OutputDir)
	}

	extractor := download.NewYTDLPExtractor(logger)
	if cfg.Executable != "" {
		extractor.SetExecutable(cfg.Executable)
	}

	rt.service = download.NewService(extractor, paths, opts...)
	return rt, nil
}

// applyFlags lets explicitly set flags win over file and environment
func applyFlags(cfg *config.Config, c *cli.Context) {
	if c.IsSet(flagOutput) {
		cfg.OutputDir = c.String(flagOutput)
	}
	if c.IsSet(flagAddr) {
		cfg.Addr = c.String(flagAddr)
	}
	if c.IsSet(flagLogLevel) {
		cfg.LogLevel = c.String(flagLogLevel)
	}
}

// fixedPath resolves every default output directory to one configured path
type fixedPath string

func (p fixedPath) DefaultDownloadPath() (string, error) {
	return string(p), nil
}

func mediaScanHook(logger *slog.Logger) func(model.DownloadResult) {
	return func(r model.DownloadResult) {
		if !r.IsSuccess() {
			return
		}
		if err := platform.NotifyMediaScanner(r.Path); err != nil {
			logger.Debug("media scan failed", "path", r.Path, "err", err)
		}
	}
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runRoot(rt *services, c *cli.Context) error {
	ctx, stop := signalContext(c.Context)
	defer stop()

	if c.Bool(flagWeb) {
		server := web.NewServer(rt.service,
			web.WithLogger(rt.logger),
			web.WithPlaylists(platform.NewPlaylistService()),
		)
		return server.ListenAndServe(ctx, rt.cfg.Addr)
	}

	session := terminal.NewSession(rt.service, os.Stdin, c.App.Writer,
		terminal.WithLogger(rt.logger),
	)
	return session.Run(ctx)
}

func runGet(rt *services, c *cli.Context) error {
	url := c.Args().First()
	if url == "" {
		return cli.Exit("usage: ytd get [--audio] URL", 2)
	}

	format := model.FormatVideo
	if c.Bool(flagAudio) {
		format = model.FormatAudio
	}

	out := c.App.Writer
	result := rt.service.Run(c.Context, model.DownloadRequest{URL: url, Format: format}, func(e model.ProgressEvent) {
		switch e.Phase {
		case model.PhaseDownloading:
			fmt.Fprintf(out, "\r%5.1f%% %s %s", e.Percent, e.Speed, e.GetETAString())
		case model.PhasePostprocessing:
			fmt.Fprintln(out, "\nDownload complete. Processing...")
		}
	})

	if !result.IsSuccess() {
		return cli.Exit("ERROR: "+result.ErrorMessage, 1)
	}
	fmt.Fprintf(out, "\nSUCCESS: Saved to %s\n", result.Path)
	return nil
}

func runPlaylist(rt *services, c *cli.Context) error {
	url := c.Args().First()
	if !platform.IsPlaylistURL(url) {
		return cli.Exit("usage: ytd playlist URL (the URL must carry a list= id)", 2)
	}

	playlist, err := platform.NewPlaylistService().List(c.Context, url)
	if err != nil {
		return err
	}

	if c.Bool(flagURLs) {
		for _, u := range playlist.URLs() {
			fmt.Fprintln(c.App.Writer, u)
		}
		return nil
	}

	rt.logger.Debug("playlist listed", "id", playlist.ID, "entries", playlist.Len())
	data, err := json.MarshalIndent(playlist, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.App.Writer, "%s\n", data)
	return err
}

func runDesktop(rt *services, c *cli.Context) error {
	app := fyneapp.NewWithID(AppID)
	app.Settings().SetTheme(ui.NewTheme())

	window := app.NewWindow(fmt.Sprintf("%s v%s", AppName, version))
	window.Resize(fyne.NewSize(ui.WindowWidth, ui.WindowHeight))

	ui.NewDesktop(window, app, rt.service,
		ui.WithLogger(rt.logger),
		ui.WithLanguage(c.String(flagLang)),
	)

	window.ShowAndRun()
	return nil
}
