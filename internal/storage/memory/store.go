// Package memory keeps tickets and orders in process memory. Transactions stage their writes and
// validate every compare-and-set precondition again at commit, so a commit is all-or-nothing.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/ticketmart/internal/domain/errors"
	"github.com/polkiloo/ticketmart/internal/domain/model"
	"github.com/polkiloo/ticketmart/internal/domain/repository"
)

// Store is an in-memory repository.Store.
type Store struct {
	mu      sync.RWMutex
	tickets map[string]model.Ticket
	orders  map[string]model.Order
}

var _ repository.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		tickets: make(map[string]model.Ticket),
		orders:  make(map[string]model.Order),
	}
}

func (s *Store) Tickets() repository.TicketRepository {
	return ticketRepository{s: s}
}

func (s *Store) Orders() repository.OrderRepository {
	return orderRepository{s: s}
}

// WithinTransaction runs fn against a staging area and applies it atomically when fn succeeds.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Factory) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t := newTxn(s)
	if err := fn(ctx, t); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.commit()
}

// HealthCheck always succeeds.
func (s *Store) HealthCheck(context.Context) error {
	return nil
}

// Close is a no-op.
func (s *Store) Close() {}

// autocommit runs a single write as its own transaction.
func (s *Store) autocommit(fn func(t *txn) error) error {
	t := newTxn(s)
	if err := fn(t); err != nil {
		return err
	}
	return t.commit()
}

func (s *Store) ticket(id string) (model.Ticket, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickets[id]
	return t, ok
}

func (s *Store) order(id string) (model.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	return o, ok
}

func (s *Store) filterOrders(keep func(model.Order) bool) []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []model.Order
	for _, o := range s.orders {
		if keep(o) {
			result = append(result, o)
		}
	}
	return result
}

func (s *Store) filterTickets(keep func(model.Ticket) bool) []model.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []model.Ticket
	for _, t := range s.tickets {
		if keep(t) {
			result = append(result, t)
		}
	}
	return result
}

type ticketRepository struct {
	s *Store
}

func (r ticketRepository) Create(_ context.Context, t *model.Ticket) error {
	return r.s.autocommit(func(tx *txn) error { return tx.createTicket(t) })
}

func (r ticketRepository) Get(_ context.Context, id string) (*model.Ticket, error) {
	t, ok := r.s.ticket(id)
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &t, nil
}

func (r ticketRepository) ConditionalUpdate(_ context.Context, id string, expected model.TicketStatus, next *model.Ticket) error {
	return r.s.autocommit(func(tx *txn) error { return tx.updateTicket(id, expected, next) })
}

func (r ticketRepository) ListAvailable(_ context.Context, limit int) ([]model.Ticket, error) {
	list := r.s.filterTickets(func(t model.Ticket) bool { return t.Status == model.TicketStatusAvailable })
	sortTicketsNewestFirst(list)
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r ticketRepository) ListBySeller(_ context.Context, sellerID string) ([]model.Ticket, error) {
	list := r.s.filterTickets(func(t model.Ticket) bool { return t.SellerID == sellerID })
	sortTicketsNewestFirst(list)
	return list, nil
}

func (r ticketRepository) Search(_ context.Context, query string, limit int) ([]model.Ticket, error) {
	needle := strings.ToLower(query)
	list := r.s.filterTickets(func(t model.Ticket) bool { return strings.Contains(strings.ToLower(t.EventName), needle) })
	sortTicketsNewestFirst(list)
	return truncate(list, limit), nil
}

func (r ticketRepository) HappeningBetween(_ context.Context, from, to time.Time, limit int) ([]model.Ticket, error) {
	list := r.s.filterTickets(func(t model.Ticket) bool {
		return !t.EventDate.Before(from) && !t.EventDate.After(to)
	})
	sort.Slice(list, func(i, j int) bool {
		if list[i].EventDate.Equal(list[j].EventDate) {
			return list[i].ID < list[j].ID
		}
		return list[i].EventDate.Before(list[j].EventDate)
	})
	return truncate(list, limit), nil
}

func truncate(list []model.Ticket, limit int) []model.Ticket {
	if limit > 0 && len(list) > limit {
		return list[:limit]
	}
	return list
}

type orderRepository struct {
	s *Store
}

func (r orderRepository) Create(_ context.Context, o *model.Order) error {
	return r.s.autocommit(func(tx *txn) error { return tx.createOrder(o) })
}

func (r orderRepository) Get(_ context.Context, id string) (*model.Order, error) {
	o, ok := r.s.order(id)
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &o, nil
}

func (r orderRepository) GetByPaymentRef(_ context.Context, ref string) (*model.Order, error) {
	if ref == "" {
		return nil, domainErrors.ErrNotFound
	}
	list := r.s.filterOrders(func(o model.Order) bool { return o.PaymentRef == ref })
	if len(list) == 0 {
		return nil, domainErrors.ErrNotFound
	}
	return &list[0], nil
}

func (r orderRepository) ConditionalUpdate(_ context.Context, id string, expected model.OrderStatus, next *model.Order) error {
	return r.s.autocommit(func(tx *txn) error { return tx.updateOrder(id, expected, next) })
}

func (r orderRepository) ListPendingBefore(_ context.Context, ts time.Time, limit int) ([]model.Order, error) {
	list := r.s.filterOrders(func(o model.Order) bool {
		return o.Status.Active() && !o.ExpiresAt.After(ts)
	})
	sort.Slice(list, func(i, j int) bool { return list[i].ExpiresAt.Before(list[j].ExpiresAt) })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r orderRepository) ListByBuyer(_ context.Context, buyerID string) ([]model.Order, error) {
	list := r.s.filterOrders(func(o model.Order) bool { return o.BuyerID == buyerID })
	sortOrdersNewestFirst(list)
	return list, nil
}

func (r orderRepository) ListBySeller(_ context.Context, sellerID string) ([]model.Order, error) {
	list := r.s.filterOrders(func(o model.Order) bool { return o.SellerID == sellerID })
	sortOrdersNewestFirst(list)
	return list, nil
}

func (r orderRepository) CountActiveByTicket(_ context.Context, ticketID string) (int, error) {
	list := r.s.filterOrders(func(o model.Order) bool { return o.TicketID == ticketID && o.Status.Active() })
	return len(list), nil
}

func sortTicketsNewestFirst(list []model.Ticket) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}

func sortOrdersNewestFirst(list []model.Order) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
