package ui

// Localization holds the desktop front end's texts
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle       = "app_title"
	KeyOutputFolder   = "output_folder"
	KeyBrowse         = "browse"
	KeyEnterURL       = "enter_url"
	KeyVideo          = "video"
	KeyAudio          = "audio"
	KeyStart          = "start"
	KeyOpenLast       = "open_last"
	KeyAutoOpen       = "auto_open"
	KeyReady          = "ready"
	KeyDownloading    = "downloading"
	KeyProcessing     = "processing"
	KeyNoURL          = "no_url"
	KeyInvalidURL     = "invalid_url"
	KeyNoFileToOpen   = "no_file_to_open"
	KeyOpenFailed     = "open_failed"
	KeyDefaultFolder  = "default_folder"
	KeyDownloadDone   = "download_done"
	KeyDownloadFailed = "download_failed"
)

// NewLocalization creates a localization set to English
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: "en",
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language; unknown languages are ignored
func (l *Localization) SetLanguage(lang string) {
	if lang == "system" || lang == "" {
		lang = "en"
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if text, found := l.texts["en"][key]; found {
		return text
	}

	return key
}

func (l *Localization) initializeTexts() {
	l.texts["en"] = map[string]string{
		KeyAppTitle:       "ytd",
		KeyOutputFolder:   "Output folder",
		KeyBrowse:         "Browse",
		KeyEnterURL:       "Paste URL (video or playlist item)...",
		KeyVideo:          "Video",
		KeyAudio:          "Audio (MP3)",
		KeyStart:          "Start download",
		KeyOpenLast:       "Open last downloaded file",
		KeyAutoOpen:       "Open when finished",
		KeyReady:          "Ready",
		KeyDownloading:    "Downloading...",
		KeyProcessing:     "Processing...",
		KeyNoURL:          "Error: No URL provided.",
		KeyInvalidURL:     "Error: URL must start with http:// or https://",
		KeyNoFileToOpen:   "Error: No file available to open.",
		KeyOpenFailed:     "Failed to open file automatically.",
		KeyDefaultFolder:  "default: %s",
		KeyDownloadDone:   "Download completed",
		KeyDownloadFailed: "Download failed",
	}

	l.texts["ru"] = map[string]string{
		KeyAppTitle:       "ytd",
		KeyOutputFolder:   "Папка загрузки",
		KeyBrowse:         "Обзор",
		KeyEnterURL:       "Вставьте ссылку...",
		KeyVideo:          "Видео",
		KeyAudio:          "Аудио (MP3)",
		KeyStart:          "Скачать",
		KeyOpenLast:       "Открыть последний файл",
		KeyAutoOpen:       "Открыть по завершении",
		KeyReady:          "Готово к работе",
		KeyDownloading:    "Загрузка...",
		KeyProcessing:     "Обработка...",
		KeyNoURL:          "Ошибка: ссылка не указана.",
		KeyInvalidURL:     "Ошибка: ссылка должна начинаться с http:// или https://",
		KeyNoFileToOpen:   "Ошибка: нет файла для открытия.",
		KeyOpenFailed:     "Не удалось открыть файл.",
		KeyDefaultFolder:  "по умолчанию: %s",
		KeyDownloadDone:   "Загрузка завершена",
		KeyDownloadFailed: "Ошибка загрузки",
	}
}
