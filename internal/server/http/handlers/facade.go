package handlers

import (
	"context"
	"time"

	"github.com/polkiloo/ticketmart/internal/domain/model"
	"github.com/polkiloo/ticketmart/internal/usecase"
)

// TicketFacade covers listing endpoints.
type TicketFacade interface {
	CreateTicket(ctx context.Context, sellerID string, draft usecase.TicketDraft) (*model.Ticket, error)
	Ticket(ctx context.Context, id string) (*model.Ticket, error)
	AvailableTickets(ctx context.Context, limit int) ([]model.Ticket, error)
	SellerTickets(ctx context.Context, sellerID string) ([]model.Ticket, error)
	UpdateTicket(ctx context.Context, ticketID, sellerID string, patch usecase.TicketPatch) (*model.Ticket, error)
	SearchTickets(ctx context.Context, query string, limit int) ([]model.Ticket, error)
	TicketsBetween(ctx context.Context, from, to time.Time, limit int) ([]model.Ticket, error)
	ActiveOrders(ctx context.Context, ticketID string) (int, error)
}

// OrderFacade covers reservation and order endpoints.
type OrderFacade interface {
	PlaceOrder(ctx context.Context, buyerID, ticketID string, quantity int) (*model.Order, error)
	ApproveOrder(ctx context.Context, orderID, sellerID string) (*model.Order, error)
	RejectOrder(ctx context.Context, orderID, sellerID, reason string) (*model.Order, error)
	PayOrder(ctx context.Context, orderID, buyerID, paymentRef string) (*model.Order, error)
	Order(ctx context.Context, orderID, actorID string) (*model.Order, error)
	OrderByPaymentRef(ctx context.Context, ref, actorID string) (*model.Order, error)
	BuyerOrders(ctx context.Context, buyerID string) ([]model.Order, error)
	SellerOrders(ctx context.Context, sellerID string) ([]model.Order, error)
}

// HealthFacade reports storage health.
type HealthFacade interface {
	Health(ctx context.Context) error
}

// Marketplace aggregates the full set of operations used across handlers.
type Marketplace interface {
	TicketFacade
	OrderFacade
	HealthFacade
	ParseToken(token string) (string, error)
}
