package repository

import (
	"context"
	"time"

	"github.com/polkiloo/ticketmart/internal/domain/model"
)

// TicketRepository describes persistence operations with tickets.
type TicketRepository interface {
	Create(ctx context.Context, ticket *model.Ticket) error
	Get(ctx context.Context, id string) (*model.Ticket, error)
	// ConditionalUpdate stores next only if the stored status still equals expected.
	// A mismatch yields errors.ErrConflict.
	ConditionalUpdate(ctx context.Context, id string, expected model.TicketStatus, next *model.Ticket) error
	ListAvailable(ctx context.Context, limit int) ([]model.Ticket, error)
	ListBySeller(ctx context.Context, sellerID string) ([]model.Ticket, error)
	// Search matches event names case-insensitively, newest listing first.
	Search(ctx context.Context, query string, limit int) ([]model.Ticket, error)
	// HappeningBetween returns tickets whose event date lies in [from, to], soonest first.
	HappeningBetween(ctx context.Context, from, to time.Time, limit int) ([]model.Ticket, error)
}
