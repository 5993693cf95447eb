package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/ytget/ytd/internal/model"
)

// Message is the payload published for every finished job
type Message struct {
	JobID      string          `json:"job_id"`
	Outcome    model.Outcome   `json:"outcome"`
	Path       string          `json:"path,omitempty"`
	ErrorKind  model.ErrorKind `json:"error_kind,omitempty"`
	Error      string          `json:"error,omitempty"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
}

// NewMessage converts a result into its published form
func NewMessage(r model.DownloadResult) Message {
	return Message{
		JobID:      r.JobID,
		Outcome:    r.Outcome,
		Path:       r.Path,
		ErrorKind:  r.ErrorKind,
		Error:      r.ErrorMessage,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}

// Publisher sends results to a NATS subject
type Publisher struct {
	nc      *nats.Conn
	subject string
	logger  *slog.Logger
}

// Connect dials url and keeps reconnecting in the background
func Connect(url, subject string, logger *slog.Logger) (*Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	nc, err := nats.Connect(url,
		nats.Name("ytd"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats at %s: %w", url, err)
	}
	return &Publisher{nc: nc, subject: subject, logger: logger}, nil
}

// Close flushes pending messages and closes the connection
func (p *Publisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
	}
}

// Publish sends the result as JSON
func (p *Publisher) Publish(r model.DownloadResult) error {
	b, err := json.Marshal(NewMessage(r))
	if err != nil {
		return err
	}
	return p.nc.Publish(p.subject, b)
}

// Hook adapts Publish to a result callback. Failures are logged, a missing
// broker never fails a download.
func (p *Publisher) Hook() func(model.DownloadResult) {
	return func(r model.DownloadResult) {
		if err := p.Publish(r); err != nil {
			p.logger.Error("publish result failed", "subject", p.subject, "job", r.JobID, "err", err)
		}
	}
}
