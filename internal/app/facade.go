package app

import (
	"context"
	"strings"
	"time"

	"github.com/polkiloo/ticketmart/internal/domain/model"
	"github.com/polkiloo/ticketmart/internal/pkg/auth"
	"github.com/polkiloo/ticketmart/internal/reservation"
	"github.com/polkiloo/ticketmart/internal/usecase"
)

// HealthChecker reports whether the backing store answers.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type MarketplaceFacade struct {
	coordinator *reservation.Coordinator
	tickets     *usecase.TicketUseCase
	orders      *usecase.OrderUseCase
	tokens      auth.Strategy
	health      HealthChecker
}

func NewMarketplaceFacade(coordinator *reservation.Coordinator, tickets *usecase.TicketUseCase, orders *usecase.OrderUseCase, tokens auth.Strategy, health HealthChecker) *MarketplaceFacade {
	return &MarketplaceFacade{coordinator: coordinator, tickets: tickets, orders: orders, tokens: tokens, health: health}
}

func (f *MarketplaceFacade) ParseToken(token string) (string, error) {
	return f.tokens.ParseToken(token)
}

func (f *MarketplaceFacade) Health(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}

func (f *MarketplaceFacade) CreateTicket(ctx context.Context, sellerID string, draft usecase.TicketDraft) (*model.Ticket, error) {
	return f.tickets.Create(ctx, sellerID, draft)
}

func (f *MarketplaceFacade) Ticket(ctx context.Context, id string) (*model.Ticket, error) {
	return f.tickets.Get(ctx, id)
}

func (f *MarketplaceFacade) AvailableTickets(ctx context.Context, limit int) ([]model.Ticket, error) {
	return f.tickets.ListAvailable(ctx, limit)
}

func (f *MarketplaceFacade) SellerTickets(ctx context.Context, sellerID string) ([]model.Ticket, error) {
	return f.tickets.ListBySeller(ctx, sellerID)
}

func (f *MarketplaceFacade) UpdateTicket(ctx context.Context, ticketID, sellerID string, patch usecase.TicketPatch) (*model.Ticket, error) {
	return f.tickets.Update(ctx, ticketID, sellerID, patch)
}

func (f *MarketplaceFacade) SearchTickets(ctx context.Context, query string, limit int) ([]model.Ticket, error) {
	return f.tickets.Search(ctx, query, limit)
}

func (f *MarketplaceFacade) TicketsBetween(ctx context.Context, from, to time.Time, limit int) ([]model.Ticket, error) {
	return f.tickets.HappeningBetween(ctx, from, to, limit)
}

func (f *MarketplaceFacade) ActiveOrders(ctx context.Context, ticketID string) (int, error) {
	return f.orders.CountActive(ctx, ticketID)
}

// PlaceOrder reserves ticketID for buyerID. Only single-seat orders are accepted.
func (f *MarketplaceFacade) PlaceOrder(ctx context.Context, buyerID, ticketID string, quantity int) (*model.Order, error) {
	if err := usecase.ValidateQuantity(quantity); err != nil {
		return nil, err
	}
	return f.coordinator.CreateOrder(ctx, ticketID, buyerID)
}

func (f *MarketplaceFacade) ApproveOrder(ctx context.Context, orderID, sellerID string) (*model.Order, error) {
	return f.coordinator.ApproveOrder(ctx, orderID, sellerID)
}

func (f *MarketplaceFacade) RejectOrder(ctx context.Context, orderID, sellerID, reason string) (*model.Order, error) {
	return f.coordinator.RejectOrder(ctx, orderID, sellerID, strings.TrimSpace(reason))
}

func (f *MarketplaceFacade) PayOrder(ctx context.Context, orderID, buyerID, paymentRef string) (*model.Order, error) {
	return f.coordinator.PayOrder(ctx, orderID, buyerID, strings.TrimSpace(paymentRef))
}

func (f *MarketplaceFacade) Order(ctx context.Context, orderID, actorID string) (*model.Order, error) {
	return f.orders.Get(ctx, orderID, actorID)
}

func (f *MarketplaceFacade) OrderByPaymentRef(ctx context.Context, ref, actorID string) (*model.Order, error) {
	return f.orders.FindByPaymentRef(ctx, ref, actorID)
}

func (f *MarketplaceFacade) BuyerOrders(ctx context.Context, buyerID string) ([]model.Order, error) {
	return f.orders.ListByBuyer(ctx, buyerID)
}

func (f *MarketplaceFacade) SellerOrders(ctx context.Context, sellerID string) ([]model.Order, error) {
	return f.orders.ListBySeller(ctx, sellerID)
}
