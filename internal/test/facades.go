package test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/ticketmart/internal/domain/model"
	"github.com/polkiloo/ticketmart/internal/usecase"
)

// TicketFacadeStub implements handlers.TicketFacade.
type TicketFacadeStub struct {
	CreateTicketFn     func(context.Context, string, usecase.TicketDraft) (*model.Ticket, error)
	TicketFn           func(context.Context, string) (*model.Ticket, error)
	AvailableTicketsFn func(context.Context, int) ([]model.Ticket, error)
	SellerTicketsFn    func(context.Context, string) ([]model.Ticket, error)
	UpdateTicketFn     func(context.Context, string, string, usecase.TicketPatch) (*model.Ticket, error)
	SearchTicketsFn    func(context.Context, string, int) ([]model.Ticket, error)
	TicketsBetweenFn   func(context.Context, time.Time, time.Time, int) ([]model.Ticket, error)
	ActiveOrdersFn     func(context.Context, string) (int, error)
}

func (s TicketFacadeStub) CreateTicket(ctx context.Context, sellerID string, draft usecase.TicketDraft) (*model.Ticket, error) {
	if s.CreateTicketFn != nil {
		return s.CreateTicketFn(ctx, sellerID, draft)
	}
	return &model.Ticket{ID: "ticket-1", SellerID: sellerID, EventName: draft.EventName, Price: draft.Price, Status: model.TicketStatusAvailable}, nil
}

func (s TicketFacadeStub) Ticket(ctx context.Context, id string) (*model.Ticket, error) {
	if s.TicketFn != nil {
		return s.TicketFn(ctx, id)
	}
	return &model.Ticket{ID: id, SellerID: "seller", EventName: "Concert", Price: decimal.NewFromInt(10), Status: model.TicketStatusAvailable}, nil
}

func (s TicketFacadeStub) AvailableTickets(ctx context.Context, limit int) ([]model.Ticket, error) {
	if s.AvailableTicketsFn != nil {
		return s.AvailableTicketsFn(ctx, limit)
	}
	return nil, nil
}

func (s TicketFacadeStub) SellerTickets(ctx context.Context, sellerID string) ([]model.Ticket, error) {
	if s.SellerTicketsFn != nil {
		return s.SellerTicketsFn(ctx, sellerID)
	}
	return nil, nil
}

func (s TicketFacadeStub) UpdateTicket(ctx context.Context, ticketID, sellerID string, patch usecase.TicketPatch) (*model.Ticket, error) {
	if s.UpdateTicketFn != nil {
		return s.UpdateTicketFn(ctx, ticketID, sellerID, patch)
	}
	return &model.Ticket{ID: ticketID, SellerID: sellerID, EventName: "Concert", Price: decimal.NewFromInt(10), Status: model.TicketStatusAvailable}, nil
}

func (s TicketFacadeStub) SearchTickets(ctx context.Context, query string, limit int) ([]model.Ticket, error) {
	if s.SearchTicketsFn != nil {
		return s.SearchTicketsFn(ctx, query, limit)
	}
	return nil, nil
}

func (s TicketFacadeStub) TicketsBetween(ctx context.Context, from, to time.Time, limit int) ([]model.Ticket, error) {
	if s.TicketsBetweenFn != nil {
		return s.TicketsBetweenFn(ctx, from, to, limit)
	}
	return nil, nil
}

func (s TicketFacadeStub) ActiveOrders(ctx context.Context, ticketID string) (int, error) {
	if s.ActiveOrdersFn != nil {
		return s.ActiveOrdersFn(ctx, ticketID)
	}
	return 0, nil
}

// OrderFacadeStub implements handlers.OrderFacade.
type OrderFacadeStub struct {
	PlaceOrderFn        func(context.Context, string, string, int) (*model.Order, error)
	ApproveOrderFn      func(context.Context, string, string) (*model.Order, error)
	RejectOrderFn       func(context.Context, string, string, string) (*model.Order, error)
	PayOrderFn          func(context.Context, string, string, string) (*model.Order, error)
	OrderFn             func(context.Context, string, string) (*model.Order, error)
	OrderByPaymentRefFn func(context.Context, string, string) (*model.Order, error)
	BuyerOrdersFn       func(context.Context, string) ([]model.Order, error)
	SellerOrdersFn      func(context.Context, string) ([]model.Order, error)
}

func (s OrderFacadeStub) PlaceOrder(ctx context.Context, buyerID, ticketID string, quantity int) (*model.Order, error) {
	if s.PlaceOrderFn != nil {
		return s.PlaceOrderFn(ctx, buyerID, ticketID, quantity)
	}
	return &model.Order{ID: "order-1", TicketID: ticketID, BuyerID: buyerID, Quantity: quantity, Status: model.OrderStatusPending}, nil
}

func (s OrderFacadeStub) ApproveOrder(ctx context.Context, orderID, sellerID string) (*model.Order, error) {
	if s.ApproveOrderFn != nil {
		return s.ApproveOrderFn(ctx, orderID, sellerID)
	}
	return &model.Order{ID: orderID, SellerID: sellerID, Status: model.OrderStatusApproved}, nil
}

func (s OrderFacadeStub) RejectOrder(ctx context.Context, orderID, sellerID, reason string) (*model.Order, error) {
	if s.RejectOrderFn != nil {
		return s.RejectOrderFn(ctx, orderID, sellerID, reason)
	}
	return &model.Order{ID: orderID, SellerID: sellerID, Status: model.OrderStatusRejected, Reason: reason}, nil
}

func (s OrderFacadeStub) PayOrder(ctx context.Context, orderID, buyerID, paymentRef string) (*model.Order, error) {
	if s.PayOrderFn != nil {
		return s.PayOrderFn(ctx, orderID, buyerID, paymentRef)
	}
	return &model.Order{ID: orderID, BuyerID: buyerID, Status: model.OrderStatusPaid, PaymentRef: paymentRef}, nil
}

func (s OrderFacadeStub) Order(ctx context.Context, orderID, actorID string) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, orderID, actorID)
	}
	return &model.Order{ID: orderID, BuyerID: actorID, Status: model.OrderStatusPending}, nil
}

func (s OrderFacadeStub) OrderByPaymentRef(ctx context.Context, ref, actorID string) (*model.Order, error) {
	if s.OrderByPaymentRefFn != nil {
		return s.OrderByPaymentRefFn(ctx, ref, actorID)
	}
	return &model.Order{ID: "order-1", BuyerID: actorID, Status: model.OrderStatusPaid, PaymentRef: ref}, nil
}

func (s OrderFacadeStub) BuyerOrders(ctx context.Context, buyerID string) ([]model.Order, error) {
	if s.BuyerOrdersFn != nil {
		return s.BuyerOrdersFn(ctx, buyerID)
	}
	return nil, nil
}

func (s OrderFacadeStub) SellerOrders(ctx context.Context, sellerID string) ([]model.Order, error) {
	if s.SellerOrdersFn != nil {
		return s.SellerOrdersFn(ctx, sellerID)
	}
	return nil, nil
}

// HealthFacadeStub implements handlers.HealthFacade.
type HealthFacadeStub struct {
	Err error
}

func (s HealthFacadeStub) Health(context.Context) error {
	return s.Err
}

// MarketplaceFacadeStub aggregates facade stubs for router tests.
type MarketplaceFacadeStub struct {
	TicketFacadeStub
	OrderFacadeStub
	HealthFacadeStub
	TokenParserStub
}
