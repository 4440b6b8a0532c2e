package memory

import (
	"context"
	"time"

	domainErrors "github.com/polkiloo/ticketmart/internal/domain/errors"
	"github.com/polkiloo/ticketmart/internal/domain/model"
	"github.com/polkiloo/ticketmart/internal/domain/repository"
)

type checkKind int

const (
	ticketAbsent checkKind = iota
	ticketStatus
	orderAbsent
	orderStatus
)

// check is a precondition re-validated against committed state at commit.
type check struct {
	kind         checkKind
	id           string
	ticketStatus model.TicketStatus
	orderStatus  model.OrderStatus
}

type txn struct {
	s       *Store
	tickets map[string]model.Ticket
	orders  map[string]model.Order
	checks  []check
}

func newTxn(s *Store) *txn {
	return &txn{
		s:       s,
		tickets: make(map[string]model.Ticket),
		orders:  make(map[string]model.Order),
	}
}

func (t *txn) Tickets() repository.TicketRepository {
	return txTickets{t: t}
}

func (t *txn) Orders() repository.OrderRepository {
	return txOrders{t: t}
}

func (t *txn) ticket(id string) (model.Ticket, bool) {
	if staged, ok := t.tickets[id]; ok {
		return staged, true
	}
	return t.s.ticket(id)
}

func (t *txn) order(id string) (model.Order, bool) {
	if staged, ok := t.orders[id]; ok {
		return staged, true
	}
	return t.s.order(id)
}

func (t *txn) createTicket(next *model.Ticket) error {
	if _, ok := t.ticket(next.ID); ok {
		return domainErrors.ErrConflict
	}
	t.tickets[next.ID] = *next
	t.checks = append(t.checks, check{kind: ticketAbsent, id: next.ID})
	return nil
}

func (t *txn) updateTicket(id string, expected model.TicketStatus, next *model.Ticket) error {
	cur, ok := t.ticket(id)
	if !ok {
		return domainErrors.ErrNotFound
	}
	if cur.Status != expected {
		return domainErrors.ErrConflict
	}
	if _, staged := t.tickets[id]; !staged {
		t.checks = append(t.checks, check{kind: ticketStatus, id: id, ticketStatus: expected})
	}
	updated := *next
	updated.ID = cur.ID
	updated.SellerID = cur.SellerID
	updated.CreatedAt = cur.CreatedAt
	t.tickets[id] = updated
	return nil
}

func (t *txn) createOrder(next *model.Order) error {
	if _, ok := t.order(next.ID); ok {
		return domainErrors.ErrConflict
	}
	if next.Status.Active() && t.activeOrders(next.TicketID) > 0 {
		return domainErrors.ErrConflict
	}
	if next.PaymentRef != "" && t.paymentRefTaken(next.ID, next.PaymentRef) {
		return domainErrors.ErrDuplicatePayment
	}
	t.orders[next.ID] = *next
	t.checks = append(t.checks, check{kind: orderAbsent, id: next.ID})
	return nil
}

func (t *txn) updateOrder(id string, expected model.OrderStatus, next *model.Order) error {
	cur, ok := t.order(id)
	if !ok {
		return domainErrors.ErrNotFound
	}
	if cur.Status != expected {
		return domainErrors.ErrConflict
	}
	if next.PaymentRef != "" && next.PaymentRef != cur.PaymentRef && t.paymentRefTaken(id, next.PaymentRef) {
		return domainErrors.ErrDuplicatePayment
	}
	if _, staged := t.orders[id]; !staged {
		t.checks = append(t.checks, check{kind: orderStatus, id: id, orderStatus: expected})
	}
	updated := cur
	updated.Status = next.Status
	updated.Reason = next.Reason
	updated.PaymentRef = next.PaymentRef
	updated.UpdatedAt = next.UpdatedAt
	t.orders[id] = updated
	return nil
}

// activeOrders counts non-terminal orders for ticketID as this transaction sees them.
func (t *txn) activeOrders(ticketID string) int {
	n := 0
	for _, o := range t.s.filterOrders(func(o model.Order) bool { return o.TicketID == ticketID }) {
		if _, staged := t.orders[o.ID]; staged {
			continue
		}
		if o.Status.Active() {
			n++
		}
	}
	for _, o := range t.orders {
		if o.TicketID == ticketID && o.Status.Active() {
			n++
		}
	}
	return n
}

// paymentRefTaken reports whether an order other than id carries ref as this transaction sees it.
func (t *txn) paymentRefTaken(id, ref string) bool {
	for _, o := range t.s.filterOrders(func(o model.Order) bool { return o.PaymentRef == ref }) {
		if _, staged := t.orders[o.ID]; !staged && o.ID != id {
			return true
		}
	}
	for _, o := range t.orders {
		if o.ID != id && o.PaymentRef == ref {
			return true
		}
	}
	return false
}

func (t *txn) commit() error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	for _, c := range t.checks {
		switch c.kind {
		case ticketAbsent:
			if _, ok := t.s.tickets[c.id]; ok {
				return domainErrors.ErrConflict
			}
		case ticketStatus:
			cur, ok := t.s.tickets[c.id]
			if !ok || cur.Status != c.ticketStatus {
				return domainErrors.ErrConflict
			}
		case orderAbsent:
			if _, ok := t.s.orders[c.id]; ok {
				return domainErrors.ErrConflict
			}
		case orderStatus:
			cur, ok := t.s.orders[c.id]
			if !ok || cur.Status != c.orderStatus {
				return domainErrors.ErrConflict
			}
		}
	}

	for _, staged := range t.orders {
		if !staged.Status.Active() {
			continue
		}
		for id, committed := range t.s.orders {
			if id == staged.ID || committed.TicketID != staged.TicketID {
				continue
			}
			if override, ok := t.orders[id]; ok {
				committed = override
			}
			if committed.Status.Active() {
				return domainErrors.ErrConflict
			}
		}
	}

	for _, staged := range t.orders {
		if staged.PaymentRef == "" {
			continue
		}
		for id, committed := range t.s.orders {
			if id == staged.ID {
				continue
			}
			if override, ok := t.orders[id]; ok {
				committed = override
			}
			if committed.PaymentRef == staged.PaymentRef {
				return domainErrors.ErrDuplicatePayment
			}
		}
	}

	for id, ticket := range t.tickets {
		t.s.tickets[id] = ticket
	}
	for id, order := range t.orders {
		t.s.orders[id] = order
	}
	return nil
}

type txTickets struct {
	t *txn
}

func (r txTickets) Create(_ context.Context, next *model.Ticket) error {
	return r.t.createTicket(next)
}

func (r txTickets) Get(_ context.Context, id string) (*model.Ticket, error) {
	cur, ok := r.t.ticket(id)
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &cur, nil
}

func (r txTickets) ConditionalUpdate(_ context.Context, id string, expected model.TicketStatus, next *model.Ticket) error {
	return r.t.updateTicket(id, expected, next)
}

func (r txTickets) ListAvailable(ctx context.Context, limit int) ([]model.Ticket, error) {
	return r.t.s.Tickets().ListAvailable(ctx, limit)
}

func (r txTickets) ListBySeller(ctx context.Context, sellerID string) ([]model.Ticket, error) {
	return r.t.s.Tickets().ListBySeller(ctx, sellerID)
}

func (r txTickets) Search(ctx context.Context, query string, limit int) ([]model.Ticket, error) {
	return r.t.s.Tickets().Search(ctx, query, limit)
}

func (r txTickets) HappeningBetween(ctx context.Context, from, to time.Time, limit int) ([]model.Ticket, error) {
	return r.t.s.Tickets().HappeningBetween(ctx, from, to, limit)
}

type txOrders struct {
	t *txn
}

func (r txOrders) Create(_ context.Context, next *model.Order) error {
	return r.t.createOrder(next)
}

func (r txOrders) Get(_ context.Context, id string) (*model.Order, error) {
	cur, ok := r.t.order(id)
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &cur, nil
}

func (r txOrders) ConditionalUpdate(_ context.Context, id string, expected model.OrderStatus, next *model.Order) error {
	return r.t.updateOrder(id, expected, next)
}

func (r txOrders) CountActiveByTicket(_ context.Context, ticketID string) (int, error) {
	return r.t.activeOrders(ticketID), nil
}

// Listing inside a transaction reads committed state only.
func (r txOrders) ListPendingBefore(ctx context.Context, ts time.Time, limit int) ([]model.Order, error) {
	return r.t.s.Orders().ListPendingBefore(ctx, ts, limit)
}

func (r txOrders) ListByBuyer(ctx context.Context, buyerID string) ([]model.Order, error) {
	return r.t.s.Orders().ListByBuyer(ctx, buyerID)
}

func (r txOrders) ListBySeller(ctx context.Context, sellerID string) ([]model.Order, error) {
	return r.t.s.Orders().ListBySeller(ctx, sellerID)
}

func (r txOrders) GetByPaymentRef(ctx context.Context, ref string) (*model.Order, error) {
	return r.t.s.Orders().GetByPaymentRef(ctx, ref)
}
