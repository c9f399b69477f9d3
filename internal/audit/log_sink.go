package audit

import (
	"context"
	"log/slog"
)

// LogSink writes events to the structured log. It is the default when no
// broker is configured.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Append(ctx context.Context, e Event) error {
	attrs := []any{
		"action", e.Action,
		"timestamp", e.Timestamp,
		"user_uuid", e.UserUUID,
		"request_id", e.RequestID,
	}
	if e.ConsoleID != "" {
		attrs = append(attrs, "console_id", e.ConsoleID)
	}
	if e.ClientIP != "" {
		attrs = append(attrs, "client_ip", e.ClientIP)
	}
	for k, v := range e.Detail {
		attrs = append(attrs, "detail."+k, v)
	}
	s.logger.InfoContext(ctx, "audit", attrs...)
	return nil
}

func (s *LogSink) Close() error {
	return nil
}
