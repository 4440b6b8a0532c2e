package repository

import (
	"context"
	"time"

	"github.com/polkiloo/ticketmart/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	Get(ctx context.Context, id string) (*model.Order, error)
	// ConditionalUpdate stores next only if the stored status still equals expected.
	// A mismatch yields errors.ErrConflict.
	ConditionalUpdate(ctx context.Context, id string, expected model.OrderStatus, next *model.Order) error
	// ListPendingBefore returns non-terminal orders whose deadline is at or before ts,
	// oldest deadline first.
	ListPendingBefore(ctx context.Context, ts time.Time, limit int) ([]model.Order, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]model.Order, error)
	ListBySeller(ctx context.Context, sellerID string) ([]model.Order, error)
	CountActiveByTicket(ctx context.Context, ticketID string) (int, error)
	GetByPaymentRef(ctx context.Context, ref string) (*model.Order, error)
}
