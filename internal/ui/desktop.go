package ui

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/ytd/internal/config"
	"github.com/ytget/ytd/internal/download"
	"github.com/ytget/ytd/internal/model"
	"github.com/ytget/ytd/internal/platform"
)

// Option configures a Desktop
type Option func(*Desktop)

// WithLogger sets the logger, slog.Default() otherwise
func WithLogger(logger *slog.Logger) Option {
	return func(d *Desktop) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithOpener replaces the function used to open finished files
func WithOpener(open func(path string) error) Option {
	return func(d *Desktop) {
		if open != nil {
			d.open = open
		}
	}
}

// WithLanguage selects the interface language, "en" or "ru"
func WithLanguage(lang string) Option {
	return func(d *Desktop) {
		d.texts.SetLanguage(lang)
	}
}

// Desktop is the single-window front end. Widgets are only touched on the
// Fyne thread; job events are handed over with fyne.Do.
type Desktop struct {
	app        fyne.App
	window     fyne.Window
	downloader download.Downloader
	settings   *config.Settings
	texts      *Localization
	logger     *slog.Logger
	open       func(path string) error

	dirEntry    *widget.Entry
	urlEntry    *widget.Entry
	formatRadio *widget.RadioGroup
	autoOpen    *widget.Check
	startBtn    *widget.Button
	openBtn     *widget.Button
	progress    *widget.ProgressBar
	status      *widget.Label
	logLabel    *widget.Label
	logScroll   *container.Scroll
	logLines    []string

	// finished receives every result once the window reflects it
	finished chan model.DownloadResult
}

// NewDesktop builds the window content for downloader
func NewDesktop(window fyne.Window, app fyne.App, downloader download.Downloader, opts ...Option) *Desktop {
	d := &Desktop{
		app:        app,
		window:     window,
		downloader: downloader,
		settings:   config.NewSettings(app),
		texts:      NewLocalization(),
		logger:     slog.Default(),
		open:       platform.OpenFileWithDefaultApp,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.setupUI()
	return d
}

// setupUI creates and arranges all widgets
func (d *Desktop) setupUI() {
	d.dirEntry = widget.NewEntry()
	if dir, err := d.downloader.DefaultOutputDir(); err == nil {
		d.dirEntry.SetPlaceHolder(fmt.Sprintf(d.texts.GetText(KeyDefaultFolder), dir))
	}
	if dir := d.settings.GetDownloadDirectory(); dir != "" {
		d.dirEntry.SetText(dir)
	}
	browseBtn := widget.NewButton(d.texts.GetText(KeyBrowse), d.onBrowse)
	dirRow := container.NewBorder(nil, nil, widget.NewLabel(d.texts.GetText(KeyOutputFolder)), browseBtn, d.dirEntry)

	d.urlEntry = widget.NewEntry()
	d.urlEntry.SetPlaceHolder(d.texts.GetText(KeyEnterURL))
	d.urlEntry.Validator = validateURL
	d.urlEntry.OnSubmitted = func(string) {
		d.onStart()
	}

	var formats []string
	for _, f := range d.settings.GetFormatOptions() {
		formats = append(formats, d.formatLabel(f))
	}
	d.formatRadio = widget.NewRadioGroup(formats, nil)
	d.formatRadio.Horizontal = true
	d.formatRadio.Required = true
	d.setFormat(d.settings.GetFormat())

	d.autoOpen = widget.NewCheck(d.texts.GetText(KeyAutoOpen), d.settings.SetAutoRevealOnComplete)
	d.autoOpen.SetChecked(d.settings.GetAutoRevealOnComplete())

	d.startBtn = widget.NewButton(d.texts.GetText(KeyStart), d.onStart)
	d.startBtn.Importance = widget.HighImportance

	d.progress = widget.NewProgressBar()
	d.status = widget.NewLabel(d.texts.GetText(KeyReady))

	d.logLabel = widget.NewLabel("")
	d.logLabel.Wrapping = fyne.TextWrapWord
	d.logScroll = container.NewVScroll(d.logLabel)
	d.logScroll.SetMinSize(fyne.NewSize(0, LogMinHeight))

	d.openBtn = widget.NewButton(d.texts.GetText(KeyOpenLast), d.onOpenLast)
	if _, ok := d.settings.GetLastFile(); !ok {
		d.openBtn.Disable()
	}

	title := widget.NewLabelWithStyle(d.texts.GetText(KeyAppTitle), fyne.TextAlignCenter, fyne.TextStyle{Bold: true})

	top := container.NewVBox(
		title,
		dirRow,
		d.urlEntry,
		container.NewHBox(d.formatRadio, d.autoOpen),
		d.startBtn,
		d.progress,
		d.status,
	)
	d.window.SetContent(container.NewBorder(top, d.openBtn, nil, nil, d.logScroll))
}

// validateURL accepts empty input so the entry is not flagged while typing
func validateURL(input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}

	parsedURL, err := url.Parse(input)
	if err != nil {
		return err
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("URL must start with http:// or https://")
	}
	return nil
}

func (d *Desktop) formatLabel(f model.Format) string {
	if f == model.FormatAudio {
		return d.texts.GetText(KeyAudio)
	}
	return d.texts.GetText(KeyVideo)
}

func (d *Desktop) selectedFormat() model.Format {
	for _, f := range d.settings.GetFormatOptions() {
		if d.formatRadio.Selected == d.formatLabel(f) {
			return f
		}
	}
	return model.FormatVideo
}

func (d *Desktop) setFormat(f model.Format) {
	d.formatRadio.SetSelected(d.formatLabel(f))
}

func (d *Desktop) onBrowse() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			d.appendLog("Error: " + err.Error())
			return
		}
		if uri != nil {
			d.dirEntry.SetText(uri.Path())
		}
	}, d.window)
}

// onStart handles the start button. It runs on the Fyne thread.
func (d *Desktop) onStart() {
	rawURL := strings.TrimSpace(d.urlEntry.Text)
	if rawURL == "" {
		d.appendLog(d.texts.GetText(KeyNoURL))
		return
	}
	if err := validateURL(rawURL); err != nil {
		d.appendLog(d.texts.GetText(KeyInvalidURL))
		return
	}

	format := d.selectedFormat()
	dir := strings.TrimSpace(d.dirEntry.Text)

	job, err := d.downloader.Start(context.Background(), model.DownloadRequest{
		URL:       rawURL,
		Format:    format,
		OutputDir: dir,
	})
	if err != nil {
		d.appendLog("ERROR: " + download.FailureFromError(err).ErrorMessage)
		return
	}

	d.settings.SetFormat(format)
	if dir != "" {
		d.settings.SetDownloadDirectory(dir)
	}

	d.appendLog(fmt.Sprintf("Starting %s download...", format))
	d.appendLog("Output directory: " + job.Request.OutputDir)
	d.startBtn.Disable()
	d.openBtn.Disable()
	d.progress.SetValue(0)
	d.status.SetText(d.texts.GetText(KeyDownloading))

	go d.follow(job)
}

// follow drains job on a worker goroutine
func (d *Desktop) follow(job *download.Job) {
	for event := range job.Events() {
		event := event
		fyne.Do(func() {
			d.applyEvent(event)
		})
	}

	result := job.Result()
	fyne.Do(func() {
		d.finish(result)
	})
}

func (d *Desktop) applyEvent(event model.ProgressEvent) {
	switch event.Phase {
	case model.PhaseDownloading:
		d.progress.SetValue(event.Percent / 100)
		status := fmt.Sprintf(StatusPercentFormat, d.texts.GetText(KeyDownloading), event.Percent)
		if event.Speed != "" {
			status += MiddleDotSeparator + event.Speed
		}
		if event.ETASec > 0 {
			status += MiddleDotSeparator + event.GetETAString()
		}
		d.status.SetText(status)
	case model.PhasePostprocessing:
		d.progress.SetValue(1)
		d.status.SetText(d.texts.GetText(KeyProcessing))
		d.appendLog("Download complete. Processing...")
	case model.PhaseFinished:
		d.progress.SetValue(1)
	}
}

func (d *Desktop) finish(result model.DownloadResult) {
	if result.IsSuccess() {
		d.settings.SetLastFile(result.Path)
		d.appendLog("SUCCESS: Saved to " + result.Path)
		d.openBtn.Enable()
		d.notify(d.texts.GetText(KeyDownloadDone), result.GetDisplayName())
		if d.settings.GetAutoRevealOnComplete() {
			d.openFile(result.Path)
		}
	} else {
		d.settings.SetLastFile("")
		d.appendLog("ERROR: " + result.ErrorMessage)
		d.notify(d.texts.GetText(KeyDownloadFailed), result.ErrorMessage)
	}

	d.startBtn.Enable()
	d.progress.SetValue(0)
	d.status.SetText(d.texts.GetText(KeyReady))

	if d.finished != nil {
		d.finished <- result
	}
}

func (d *Desktop) notify(title, content string) {
	if d.app == nil {
		return
	}
	d.app.SendNotification(fyne.NewNotification(title, content))
}

func (d *Desktop) onOpenLast() {
	path, ok := d.settings.GetLastFile()
	if !ok {
		d.appendLog(d.texts.GetText(KeyNoFileToOpen))
		d.openBtn.Disable()
		return
	}
	d.openFile(path)
}

func (d *Desktop) openFile(path string) {
	d.appendLog("Opening: " + path)
	if err := d.open(path); err != nil {
		d.logger.Warn("open file failed", "path", path, "err", err)
		d.appendLog(d.texts.GetText(KeyOpenFailed))
	}
}

// appendLog adds a line to the log pane, dropping the oldest past LogMaxLines
func (d *Desktop) appendLog(line string) {
	d.logLines = append(d.logLines, line)
	if n := len(d.logLines); n > LogMaxLines {
		d.logLines = d.logLines[n-LogMaxLines:]
	}
	d.logLabel.SetText(strings.Join(d.logLines, "\n"))
	d.logScroll.ScrollToBottom()
}
