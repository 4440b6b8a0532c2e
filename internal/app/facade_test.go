package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/ticketmart/internal/domain/errors"
	"github.com/polkiloo/ticketmart/internal/domain/model"
	"github.com/polkiloo/ticketmart/internal/events"
	"github.com/polkiloo/ticketmart/internal/lock"
	"github.com/polkiloo/ticketmart/internal/pkg/auth"
	"github.com/polkiloo/ticketmart/internal/reservation"
	testhelpers "github.com/polkiloo/ticketmart/internal/test"
	"github.com/polkiloo/ticketmart/internal/usecase"
)

type facadeFixture struct {
	facade *MarketplaceFacade
	store  *testhelpers.StoreStub
	clock  *testhelpers.ManualClock
	tokens *auth.HMACStrategy
}

func newFacade(t *testing.T) facadeFixture {
	t.Helper()
	store := &testhelpers.StoreStub{}
	clk := testhelpers.NewManualClock(time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC))
	locks := lock.NewKeyed()
	coord := reservation.NewCoordinator(reservation.Deps{
		Store:  store,
		Locks:  locks,
		Clock:  clk,
		Events: events.NewLogPublisher(discardLogger()),
		Logger: discardLogger(),
	})
	tokens := auth.NewHMACStrategy("secret", auth.Options{})
	facade := NewMarketplaceFacade(
		coord,
		usecase.NewTicketUseCase(store.Tickets(), clk, locks),
		usecase.NewOrderUseCase(store.Orders()),
		tokens,
		store,
	)
	return facadeFixture{facade: facade, store: store, clock: clk, tokens: tokens}
}

func (f facadeFixture) listTicket(t *testing.T, sellerID string) *model.Ticket {
	t.Helper()
	ticket, err := f.facade.CreateTicket(context.Background(), sellerID, usecase.TicketDraft{
		EventName: "Theatre",
		Price:     decimal.RequireFromString("75.25"),
	})
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	return ticket
}

func TestMarketplaceFacadeParseToken(t *testing.T) {
	f := newFacade(t)
	actor := testhelpers.RandomActorID("buyer")
	token, err := f.tokens.IssueToken(actor)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	subject, err := f.facade.ParseToken(token)
	if err != nil || subject != actor {
		t.Fatalf("unexpected subject %q err=%v", subject, err)
	}
	if _, err := f.facade.ParseToken("garbage"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestMarketplaceFacadePlaceOrderValidatesQuantity(t *testing.T) {
	f := newFacade(t)
	ticket := f.listTicket(t, "seller")

	for _, q := range []int{0, 2} {
		if _, err := f.facade.PlaceOrder(context.Background(), "buyer", ticket.ID, q); !errors.Is(err, domainErrors.ErrInvalidQuantity) {
			t.Fatalf("quantity %d: expected invalid quantity, got %v", q, err)
		}
	}
	if n, _ := f.facade.ActiveOrders(context.Background(), ticket.ID); n != 0 {
		t.Fatalf("expected no active orders, got %d", n)
	}
}

func TestMarketplaceFacadePurchaseFlow(t *testing.T) {
	f := newFacade(t)
	ctx := context.Background()
	ticket := f.listTicket(t, "seller")

	if list, _ := f.facade.AvailableTickets(ctx, 0); len(list) != 1 {
		t.Fatalf("expected one available ticket, got %d", len(list))
	}

	order, err := f.facade.PlaceOrder(ctx, "buyer", ticket.ID, 1)
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if n, _ := f.facade.ActiveOrders(ctx, ticket.ID); n != 1 {
		t.Fatalf("expected one active order, got %d", n)
	}
	if list, _ := f.facade.AvailableTickets(ctx, 0); len(list) != 0 {
		t.Fatalf("reserved ticket must not be listed, got %d", len(list))
	}

	if _, err := f.facade.ApproveOrder(ctx, order.ID, "seller"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := f.facade.PayOrder(ctx, order.ID, "buyer", "  pay-9  "); err != nil {
		t.Fatalf("pay: %v", err)
	}

	byRef, err := f.facade.OrderByPaymentRef(ctx, "pay-9", "seller")
	if err != nil || byRef.ID != order.ID || byRef.Status != model.OrderStatusPaid {
		t.Fatalf("unexpected payment lookup %+v err=%v", byRef, err)
	}
	if _, err := f.facade.Order(ctx, order.ID, "stranger"); !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	bought, _ := f.facade.BuyerOrders(ctx, "buyer")
	sold, _ := f.facade.SellerOrders(ctx, "seller")
	if len(bought) != 1 || len(sold) != 1 {
		t.Fatalf("expected order on both sides, got %d/%d", len(bought), len(sold))
	}
	mine, _ := f.facade.SellerTickets(ctx, "seller")
	if len(mine) != 1 || mine[0].Status != model.TicketStatusSold {
		t.Fatalf("expected sold listing, got %+v", mine)
	}
}

func TestMarketplaceFacadeRejectTrimsReason(t *testing.T) {
	f := newFacade(t)
	ctx := context.Background()
	ticket := f.listTicket(t, "seller")
	order, err := f.facade.PlaceOrder(ctx, "buyer", ticket.ID, 1)
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	rejected, err := f.facade.RejectOrder(ctx, order.ID, "seller", "  sold elsewhere \n")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Reason != "sold elsewhere" {
		t.Fatalf("unexpected reason %q", rejected.Reason)
	}
	got, err := f.facade.Ticket(ctx, ticket.ID)
	if err != nil || got.Status != model.TicketStatusAvailable {
		t.Fatalf("expected released ticket, got %+v err=%v", got, err)
	}
}

func TestMarketplaceFacadeHealth(t *testing.T) {
	f := newFacade(t)
	if err := f.facade.Health(context.Background()); err != nil {
		t.Fatalf("unexpected health error: %v", err)
	}
	f.store.HealthErr = domainErrors.ErrStorageUnavailable
	if err := f.facade.Health(context.Background()); !errors.Is(err, domainErrors.ErrStorageUnavailable) {
		t.Fatalf("expected storage unavailable, got %v", err)
	}
}

func TestMarketplaceFacadePriceChangeBeforeReservationOnly(t *testing.T) {
	f := newFacade(t)
	ctx := context.Background()
	ticket := f.listTicket(t, "seller")

	price := decimal.RequireFromString("80.00")
	if _, err := f.facade.UpdateTicket(ctx, ticket.ID, "seller", usecase.TicketPatch{Price: &price}); err != nil {
		t.Fatalf("update: %v", err)
	}
	order, err := f.facade.PlaceOrder(ctx, "buyer", ticket.ID, 1)
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if !order.TotalAmount.Equal(price) {
		t.Fatalf("expected total %s, got %s", price, order.TotalAmount)
	}

	raised := decimal.RequireFromString("500.00")
	if _, err := f.facade.UpdateTicket(ctx, ticket.ID, "seller", usecase.TicketPatch{Price: &raised}); !errors.Is(err, domainErrors.ErrWrongState) {
		t.Fatalf("expected reserved ticket to be frozen, got %v", err)
	}
	stored, _ := f.facade.Ticket(ctx, ticket.ID)
	if !stored.Price.Equal(price) {
		t.Fatalf("expected price %s to survive, got %s", price, stored.Price)
	}

	found, err := f.facade.SearchTickets(ctx, "theat", 0)
	if err != nil || len(found) != 1 {
		t.Fatalf("expected search to find the listing, got %+v err=%v", found, err)
	}
}
