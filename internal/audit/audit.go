// Package audit emits funnel lifecycle events (entries, advancements,
// submissions) to an append-only sink. Emission is fire-and-forget: a slow
// or down sink never blocks a visitor request.
package audit

import (
	"context"
	"log/slog"
	"time"
)

// Event is one audit record. Key fields stay flat so sinks can partition on
// them.
type Event struct {
	Kind       string            `json:"kind"`
	Introducer string            `json:"introducer"`
	SessionID  string            `json:"session_id,omitempty"`
	Reference  string            `json:"reference,omitempty"`
	Detail     map[string]string `json:"detail,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// Event kinds.
const (
	KindFunnelEntered  = "funnel.entered"
	KindStepAdvanced   = "funnel.step_advanced"
	KindStepReversed   = "funnel.step_reversed"
	KindSignatureSaved = "funnel.signature_saved"
	KindClaimSubmitted = "claim.submitted"
)

// Sink receives events in order. Implementations own their delivery
// guarantees.
type Sink interface {
	Write(ctx context.Context, event Event) error
}

const bufferSize = 256

// Publisher decouples request handlers from the sink through a bounded
// buffer. Events are dropped, with a log line, when the buffer is full.
type Publisher struct {
	events chan Event
	logger *slog.Logger
	now    func() time.Time
}

func NewPublisher(logger *slog.Logger) *Publisher {
	return &Publisher{
		events: make(chan Event, bufferSize),
		logger: logger,
		now:    time.Now,
	}
}

// Emit queues an event without blocking. The event's OccurredAt is stamped
// here so drops don't skew timestamps.
func (p *Publisher) Emit(event Event) {
	event.OccurredAt = p.now()
	select {
	case p.events <- event:
	default:
		p.logger.Warn("audit buffer full, dropping event", "kind", event.Kind)
	}
}

// Run drains the buffer into the sink until ctx is cancelled, then flushes
// whatever is still queued.
func (p *Publisher) Run(ctx context.Context, sink Sink) {
	for {
		select {
		case event := <-p.events:
			p.write(ctx, sink, event)
		case <-ctx.Done():
			for {
				select {
				case event := <-p.events:
					p.write(context.Background(), sink, event)
				default:
					return
				}
			}
		}
	}
}

func (p *Publisher) write(ctx context.Context, sink Sink, event Event) {
	if err := sink.Write(ctx, event); err != nil {
		p.logger.ErrorContext(ctx, "audit sink write failed",
			"error", err,
			"kind", event.Kind,
		)
	}
}
