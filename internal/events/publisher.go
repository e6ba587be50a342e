// Package events delivers committed domain events to external consumers
// (indexers, dashboards). Delivery is best-effort and happens after the
// state transition has committed; the engine never rolls back on a
// publishing failure.
package events

import (
	"context"
	"log/slog"

	"stagefund/internal/core/domain"
)

// Publisher emits domain events. Implementations log their own delivery
// failures.
type Publisher interface {
	Publish(ctx context.Context, ev domain.Event)
}

// LogPublisher writes events to the structured log. It is the fallback
// when no broker is configured.
type LogPublisher struct {
	Logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{Logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, ev domain.Event) {
	p.Logger.Info("domain event",
		slog.String("type", string(ev.Type)),
		slog.String("campaign_id", ev.CampaignID.String()),
		slog.String("party", ev.Party),
		slog.Int64("amount", ev.Amount),
	)
}
