// Package events announces committed order transitions.
package events

import (
	"context"
	"log/slog"

	"github.com/polkiloo/ticketmart/internal/domain/model"
)

// Publisher delivers order events. Implementations are called after the ticket lock is gone.
type Publisher interface {
	Publish(ctx context.Context, event model.OrderEvent) error
}

// LogPublisher writes events to the application log.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a publisher that only logs.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event model.OrderEvent) error {
	p.logger.InfoContext(ctx, "order event",
		slog.String("type", string(event.Type)),
		slog.String("order_id", event.OrderID),
		slog.String("ticket_id", event.TicketID),
		slog.String("status", string(event.Status)),
		slog.String("ticket_status", string(event.TicketStatus)),
	)
	return nil
}
