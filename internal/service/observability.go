package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/JeevithaAnandhan/marksheetpro/internal/processing"
)

// UseCaseEvent describes one finished service call.
type UseCaseEvent struct {
	Name      string
	StartedAt time.Time
	Duration  time.Duration
	Err       error
	Fields    map[string]any
}

// Success reports whether the use case returned without error.
func (e UseCaseEvent) Success() bool { return e.Err == nil }

// UseCaseObserver receives an event after every service use case.
type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

// NoopUseCaseObserver ignores all events.
type NoopUseCaseObserver struct{}

func (NoopUseCaseObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

// fanout forwards each event to every observer in order.
type fanout []UseCaseObserver

func (f fanout) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	for _, o := range f {
		o.ObserveUseCase(ctx, event)
	}
}

// combineObservers drops nil entries and collapses the rest into one observer.
func combineObservers(observers []UseCaseObserver) UseCaseObserver {
	var live fanout
	for _, o := range observers {
		if o != nil {
			live = append(live, o)
		}
	}
	switch len(live) {
	case 0:
		return NoopUseCaseObserver{}
	case 1:
		return live[0]
	default:
		return live
	}
}

type logUseCaseObserver struct {
	logger *slog.Logger
}

// NewLogUseCaseObserver writes use-case events to w as slog text records.
// Rejections reported by the processing service log at WARN; anything else
// that fails logs at ERROR. A nil writer disables logging.
func NewLogUseCaseObserver(w io.Writer) UseCaseObserver {
	if w == nil {
		return NoopUseCaseObserver{}
	}
	return &logUseCaseObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (o *logUseCaseObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	attrs := []slog.Attr{
		slog.String("use_case", event.Name),
		slog.Int64("duration_ms", event.Duration.Milliseconds()),
		slog.Bool("success", event.Success()),
	}
	for k, v := range event.Fields {
		attrs = append(attrs, slog.Any(k, v))
	}

	level := slog.LevelInfo
	if event.Err != nil {
		attrs = append(attrs, slog.String("error", event.Err.Error()))
		level = slog.LevelError
		if errors.Is(event.Err, processing.ErrServiceFailure) {
			level = slog.LevelWarn
		}
	}
	o.logger.LogAttrs(ctx, level, "service_use_case", attrs...)
}

// track starts timing a use case. Call the returned func with the final
// error, typically from a defer over a named result. fields may be filled in
// until then.
func track(ctx context.Context, obs UseCaseObserver, name string, fields map[string]any) func(error) {
	startedAt := time.Now().UTC()
	return func(err error) {
		obs.ObserveUseCase(ctx, UseCaseEvent{
			Name:      name,
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Err:       err,
			Fields:    fields,
		})
	}
}
