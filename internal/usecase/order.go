package usecase

import (
	"context"

	domainErrors "github.com/polkiloo/ticketmart/internal/domain/errors"
	"github.com/polkiloo/ticketmart/internal/domain/model"
	"github.com/polkiloo/ticketmart/internal/domain/repository"
)

// OrderUseCase answers read-only questions about orders. Only parties to an order may see it.
type OrderUseCase struct {
	orders repository.OrderRepository
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository) *OrderUseCase {
	return &OrderUseCase{orders: orders}
}

// Get returns the order if actorID is its buyer or seller.
func (u *OrderUseCase) Get(ctx context.Context, orderID, actorID string) (*model.Order, error) {
	order, err := u.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return visibleTo(order, actorID)
}

// FindByPaymentRef resolves a payment reference back to its order.
func (u *OrderUseCase) FindByPaymentRef(ctx context.Context, ref, actorID string) (*model.Order, error) {
	if ref == "" {
		return nil, domainErrors.ErrNotFound
	}
	order, err := u.orders.GetByPaymentRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	return visibleTo(order, actorID)
}

// ListByBuyer returns the buyer's orders, newest first.
func (u *OrderUseCase) ListByBuyer(ctx context.Context, buyerID string) ([]model.Order, error) {
	return u.orders.ListByBuyer(ctx, buyerID)
}

// ListBySeller returns orders placed on the seller's tickets, newest first.
func (u *OrderUseCase) ListBySeller(ctx context.Context, sellerID string) ([]model.Order, error) {
	return u.orders.ListBySeller(ctx, sellerID)
}

// CountActive reports how many non-terminal orders reference ticketID. It is 0 or 1.
func (u *OrderUseCase) CountActive(ctx context.Context, ticketID string) (int, error) {
	return u.orders.CountActiveByTicket(ctx, ticketID)
}

func visibleTo(order *model.Order, actorID string) (*model.Order, error) {
	if actorID == "" || (order.BuyerID != actorID && order.SellerID != actorID) {
		return nil, domainErrors.ErrForbidden
	}
	return order, nil
}
