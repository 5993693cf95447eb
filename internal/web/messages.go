package web

// Message types sent over the job channel
const (
	TypeProgress = "progress"
	TypeLog      = "log"
	TypeDone     = "done"
	TypeError    = "error"
)

// Status texts carried by progress messages
const (
	StatusDownloading = "Downloading..."
	StatusProcessing  = "Processing..."
)

// User-facing texts for rejected requests
const (
	MsgInvalidRequest = "Invalid request format"
	MsgNoURL          = "No URL provided"
	MsgProcessing     = "Download complete. Processing..."
)

// JobRequest is the single message a client sends on the job channel
type JobRequest struct {
	URL    string `json:"url"`
	Format string `json:"format"`
}

// Message is any server to client message on the job channel. Unused fields
// are omitted; percent is always present on progress messages.
type Message struct {
	Type    string   `json:"type"`
	Percent *float64 `json:"percent,omitempty"`
	Status  string   `json:"status,omitempty"`
	Msg     string   `json:"msg,omitempty"`
	Path    string   `json:"path,omitempty"`
}

func progressMessage(percent float64, status string) Message {
	return Message{Type: TypeProgress, Percent: &percent, Status: status}
}

func logMessage(msg string) Message {
	return Message{Type: TypeLog, Msg: msg}
}

func doneMessage(path string) Message {
	return Message{Type: TypeDone, Path: path}
}

func errorMessage(msg string) Message {
	return Message{Type: TypeError, Msg: msg}
}

// InfoResponse is returned by /info
type InfoResponse struct {
	DefaultPath string `json:"default_path"`
}

// ErrorResponse is the body of failed JSON routes
type ErrorResponse struct {
	Error string `json:"error"`
}
