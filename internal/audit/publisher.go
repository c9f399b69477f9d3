package audit

import (
	"context"
	"log/slog"

	"gangland/pkg/requestcontext"
)

// Sink persists or forwards events.
type Sink interface {
	Append(ctx context.Context, event Event) error
	Close() error
}

// Observer counts delivered and failed events.
type Observer interface {
	IncrementAuditPublished(action, result string)
}

// Publisher stamps events with request metadata and hands them to the sink.
// A failing sink never fails the operation being audited.
type Publisher struct {
	sink     Sink
	logger   *slog.Logger
	observer Observer
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithObserver(o Observer) Option {
	return func(p *Publisher) {
		p.observer = o
	}
}

func NewPublisher(sink Sink, opts ...Option) *Publisher {
	p := &Publisher{sink: sink, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit fills Timestamp, RequestID and ClientIP from ctx when unset and appends
// the event.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}

	if err := p.sink.Append(ctx, event); err != nil {
		p.logger.WarnContext(ctx, "audit event dropped",
			"action", event.Action,
			"error", err,
			"request_id", event.RequestID,
		)
		p.observe(event.Action, "error")
		return
	}
	p.observe(event.Action, "ok")
}

func (p *Publisher) Close() error {
	return p.sink.Close()
}

func (p *Publisher) observe(action Action, result string) {
	if p.observer != nil {
		p.observer.IncrementAuditPublished(string(action), result)
	}
}
