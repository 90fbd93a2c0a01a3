package goRecover

import (
	"context"
	"log/slog"
	"slices"
	"time"
)

// Audit event types.
const (
	AuditEventChallengeSelect    = "challenge_select"
	AuditEventChallengeVerify    = "challenge_verify"
	AuditEventTokenRedeem        = "token_redeem"
	AuditEventCredentialChange   = "credential_change"
	AuditEventRateLimitTriggered = "rate_limit_triggered"
)

// AuditEvent is one recovery-flow outcome. Tokens, answers and credentials
// are never recorded.
type AuditEvent struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	Identity  string            `json:"identity,omitempty"`
	IP        string            `json:"ip,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// LogValue renders the event as a slog group. Empty fields are omitted.
func (e AuditEvent) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("id", e.ID),
		slog.Time("timestamp", e.Timestamp),
		slog.String("event_type", e.EventType),
		slog.Bool("success", e.Success),
	}
	if e.Identity != "" {
		attrs = append(attrs, slog.String("identity", e.Identity))
	}
	if e.IP != "" {
		attrs = append(attrs, slog.String("ip", e.IP))
	}
	if e.Error != "" {
		attrs = append(attrs, slog.String("error", e.Error))
	}
	if len(e.Metadata) > 0 {
		keys := make([]string, 0, len(e.Metadata))
		for k := range e.Metadata {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		meta := make([]any, 0, len(keys))
		for _, k := range keys {
			meta = append(meta, slog.String(k, e.Metadata[k]))
		}
		attrs = append(attrs, slog.Group("metadata", meta...))
	}
	return slog.GroupValue(attrs...)
}

// AuditSink receives events from the dispatcher goroutine.
type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

// NoOpSink discards every event.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, AuditEvent) {}

// ChannelSink forwards events to a buffered channel for in-process consumers.
// When built with event types, every other type is dropped before it reaches
// the channel.
type ChannelSink struct {
	events chan AuditEvent
	types  []string
}

func NewChannelSink(buffer int, eventTypes ...string) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan AuditEvent, buffer),
		types:  eventTypes,
	}
}

func (s *ChannelSink) Emit(ctx context.Context, event AuditEvent) {
	if len(s.types) > 0 && !slices.Contains(s.types, event.EventType) {
		return
	}
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan AuditEvent {
	return s.events
}

// SlogSink writes each event as one structured log record. Successful
// outcomes log at Info. Failures and throttling log at Warn.
type SlogSink struct {
	logger *slog.Logger
}

func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

func (s *SlogSink) Emit(ctx context.Context, event AuditEvent) {
	if s == nil {
		return
	}
	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	s.logger.LogAttrs(ctx, level, "recovery audit", slog.Any("audit", event))
}
