package processing

import (
	"io"
	"log/slog"
)

// APICallEvent records metadata about a single call to the processing service.
type APICallEvent struct {
	Endpoint  string
	Method    string
	Status    int
	LatencyMs int64
	Success   bool
	ErrorCode string
}

// Observer receives events about service calls for logging and metrics.
type Observer interface {
	OnCallComplete(event APICallEvent)
}

// LogObserver writes call events to a structured logger.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates an Observer that logs events to w.
func NewLogObserver(w io.Writer) *LogObserver {
	return &LogObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (o *LogObserver) OnCallComplete(event APICallEvent) {
	attrs := []any{
		"method", event.Method,
		"endpoint", event.Endpoint,
		"status", event.Status,
		"latency_ms", event.LatencyMs,
	}
	if !event.Success {
		attrs = append(attrs, "error_code", event.ErrorCode)
		o.logger.Warn("api_call", attrs...)
		return
	}
	o.logger.Info("api_call", attrs...)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(APICallEvent) {}
