// Package reservation moves tickets and orders through their lifecycle. Every transition runs under
// the ticket's exclusion scope and inside one storage transaction covering both records.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/ticketmart/internal/clock"
	domainErrors "github.com/polkiloo/ticketmart/internal/domain/errors"
	"github.com/polkiloo/ticketmart/internal/domain/model"
	"github.com/polkiloo/ticketmart/internal/domain/repository"
	"github.com/polkiloo/ticketmart/internal/events"
	"github.com/polkiloo/ticketmart/internal/lock"
	"github.com/polkiloo/ticketmart/internal/metrics"
)

// DefaultTTL is the reservation window.
const DefaultTTL = 15 * time.Minute

const (
	defaultTimeout = 5 * time.Second
	reasonExpired  = "reservation expired"
)

const (
	opCreate  = "create"
	opApprove = "approve"
	opReject  = "reject"
	opExpire  = "expire"
	opPay     = "pay"
)

// Store is the storage the coordinator needs.
type Store interface {
	repository.Transactor
	Orders() repository.OrderRepository
}

// Deps configures a Coordinator. Events and Metrics are optional.
type Deps struct {
	Store   Store
	Locks   lock.Locker
	Clock   clock.Clock
	Events  events.Publisher
	Metrics *metrics.Metrics
	Logger  *slog.Logger
	TTL     time.Duration
	Timeout time.Duration
}

// Coordinator is the only writer of ticket and order status.
type Coordinator struct {
	store   Store
	locks   lock.Locker
	clock   clock.Clock
	events  events.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	ttl     time.Duration
	timeout time.Duration
	newID   func() string
}

// NewCoordinator builds a coordinator, defaulting TTL and Timeout when non-positive.
func NewCoordinator(d Deps) *Coordinator {
	if d.TTL <= 0 {
		d.TTL = DefaultTTL
	}
	if d.Timeout <= 0 {
		d.Timeout = defaultTimeout
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Coordinator{
		store:   d.Store,
		locks:   d.Locks,
		clock:   d.Clock,
		events:  d.Events,
		metrics: d.Metrics,
		logger:  d.Logger,
		ttl:     d.TTL,
		timeout: d.Timeout,
		newID:   uuid.NewString,
	}
}

// change is what a committed transition produced. result is handed to the caller after commit.
type change struct {
	order    *model.Order
	event    model.EventType
	previous model.OrderStatus
	ticket   model.TicketStatus
	result   error
}

// CreateOrder reserves an available ticket for buyerID.
func (c *Coordinator) CreateOrder(ctx context.Context, ticketID, buyerID string) (*model.Order, error) {
	started := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if buyerID == "" {
		return nil, c.finish(ctx, opCreate, started, nil, domainErrors.ErrForbidden)
	}

	var ch *change
	err := c.withTicket(ctx, ticketID, func(ctx context.Context, tx repository.Factory, now time.Time) error {
		ticket, err := tx.Tickets().Get(ctx, ticketID)
		if err != nil {
			return err
		}
		if ticket.SellerID == buyerID {
			return domainErrors.ErrSelfTrade
		}
		if ticket.Status != model.TicketStatusAvailable {
			return fmt.Errorf("%w: ticket is %s", domainErrors.ErrNotAvailable, ticket.Status)
		}

		reserved := *ticket
		reserved.Status = model.TicketStatusReserved
		reserved.UpdatedAt = now
		if err := tx.Tickets().ConditionalUpdate(ctx, ticket.ID, model.TicketStatusAvailable, &reserved); err != nil {
			return err
		}

		order := &model.Order{
			ID:          c.newID(),
			TicketID:    ticket.ID,
			BuyerID:     buyerID,
			SellerID:    ticket.SellerID,
			Quantity:    1,
			TotalAmount: ticket.Price,
			Status:      model.OrderStatusPending,
			ExpiresAt:   clock.Storable(now.Add(c.ttl)),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}

		ch = &change{order: order, event: model.EventOrderCreated, ticket: model.TicketStatusReserved}
		return nil
	})

	return c.complete(ctx, opCreate, started, ch, err)
}

// ApproveOrder accepts a pending order on behalf of its seller. Past the deadline the order is
// expired instead and ErrExpired is returned.
func (c *Coordinator) ApproveOrder(ctx context.Context, orderID, actorID string) (*model.Order, error) {
	return c.transition(ctx, opApprove, orderID, func(ctx context.Context, tx repository.Factory, order *model.Order, now time.Time) (*change, error) {
		if order.SellerID != actorID {
			return nil, domainErrors.ErrForbidden
		}
		if order.Status != model.OrderStatusPending {
			return nil, wrongState(order)
		}
		if order.ExpiredAt(now) {
			return c.expireLate(ctx, tx, order, now)
		}

		next := *order
		next.Status = model.OrderStatusApproved
		next.UpdatedAt = now
		if err := tx.Orders().ConditionalUpdate(ctx, order.ID, model.OrderStatusPending, &next); err != nil {
			return nil, err
		}
		return &change{order: &next, event: model.EventOrderApproved, previous: order.Status, ticket: model.TicketStatusReserved}, nil
	})
}

// RejectOrder declines a pending order on behalf of its seller and releases the ticket.
func (c *Coordinator) RejectOrder(ctx context.Context, orderID, actorID, reason string) (*model.Order, error) {
	return c.transition(ctx, opReject, orderID, func(ctx context.Context, tx repository.Factory, order *model.Order, now time.Time) (*change, error) {
		if order.SellerID != actorID {
			return nil, domainErrors.ErrForbidden
		}
		if order.Status != model.OrderStatusPending {
			return nil, wrongState(order)
		}

		next := *order
		next.Status = model.OrderStatusRejected
		next.Reason = reason
		next.UpdatedAt = now
		if err := tx.Orders().ConditionalUpdate(ctx, order.ID, model.OrderStatusPending, &next); err != nil {
			return nil, err
		}
		if err := moveTicket(ctx, tx, order.TicketID, model.TicketStatusReserved, model.TicketStatusAvailable, now); err != nil {
			return nil, err
		}
		return &change{order: &next, event: model.EventOrderRejected, previous: order.Status, ticket: model.TicketStatusAvailable}, nil
	})
}

// ExpireOrder ends an unpaid order whose deadline has passed and releases the ticket.
// Calling it on a terminal order is a no-op that returns the stored snapshot.
func (c *Coordinator) ExpireOrder(ctx context.Context, orderID string) (*model.Order, error) {
	return c.transition(ctx, opExpire, orderID, func(ctx context.Context, tx repository.Factory, order *model.Order, now time.Time) (*change, error) {
		if order.Status.Terminal() {
			return &change{order: order}, nil
		}
		if !order.ExpiredAt(now) {
			return nil, fmt.Errorf("%w: order %s is live until %s", domainErrors.ErrWrongState, order.ID, order.ExpiresAt.Format(time.RFC3339))
		}
		return c.expire(ctx, tx, order, now)
	})
}

// PayOrder records the buyer's successful payment of an approved order and sells the ticket.
func (c *Coordinator) PayOrder(ctx context.Context, orderID, actorID, paymentRef string) (*model.Order, error) {
	return c.transition(ctx, opPay, orderID, func(ctx context.Context, tx repository.Factory, order *model.Order, now time.Time) (*change, error) {
		if order.BuyerID != actorID {
			return nil, domainErrors.ErrForbidden
		}
		if order.Status != model.OrderStatusApproved {
			return nil, wrongState(order)
		}
		if order.ExpiredAt(now) {
			return c.expireLate(ctx, tx, order, now)
		}

		next := *order
		next.Status = model.OrderStatusPaid
		next.PaymentRef = paymentRef
		next.UpdatedAt = now
		if err := tx.Orders().ConditionalUpdate(ctx, order.ID, model.OrderStatusApproved, &next); err != nil {
			return nil, err
		}
		if err := moveTicket(ctx, tx, order.TicketID, model.TicketStatusReserved, model.TicketStatusSold, now); err != nil {
			return nil, err
		}
		return &change{order: &next, event: model.EventOrderPaid, previous: order.Status, ticket: model.TicketStatusSold}, nil
	})
}

type decideFunc func(ctx context.Context, tx repository.Factory, order *model.Order, now time.Time) (*change, error)

// transition resolves the order's ticket, then re-reads the order under that ticket's scope.
func (c *Coordinator) transition(ctx context.Context, op, orderID string, decide decideFunc) (*model.Order, error) {
	started := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	current, err := c.store.Orders().Get(ctx, orderID)
	if err != nil {
		return nil, c.finish(ctx, op, started, nil, err)
	}

	var ch *change
	err = c.withTicket(ctx, current.TicketID, func(ctx context.Context, tx repository.Factory, now time.Time) error {
		order, err := tx.Orders().Get(ctx, orderID)
		if err != nil {
			return err
		}
		ch, err = decide(ctx, tx, order, now)
		return err
	})

	return c.complete(ctx, op, started, ch, err)
}

// withTicket holds the ticket's exclusion scope for one transaction.
func (c *Coordinator) withTicket(ctx context.Context, ticketID string, fn func(ctx context.Context, tx repository.Factory, now time.Time) error) error {
	unlock, err := c.locks.Acquire(ctx, ticketID)
	if err != nil {
		return err
	}
	defer unlock()

	now := clock.Storable(c.clock.Now())
	return c.store.WithinTransaction(ctx, func(ctx context.Context, tx repository.Factory) error {
		return fn(ctx, tx, now)
	})
}

func (c *Coordinator) expire(ctx context.Context, tx repository.Factory, order *model.Order, now time.Time) (*change, error) {
	next := *order
	next.Status = model.OrderStatusExpired
	next.Reason = reasonExpired
	next.UpdatedAt = now
	if err := tx.Orders().ConditionalUpdate(ctx, order.ID, order.Status, &next); err != nil {
		return nil, err
	}
	if err := moveTicket(ctx, tx, order.TicketID, model.TicketStatusReserved, model.TicketStatusAvailable, now); err != nil {
		return nil, err
	}
	return &change{order: &next, event: model.EventOrderExpired, previous: order.Status, ticket: model.TicketStatusAvailable}, nil
}

// expireLate commits the expiry a late approve or pay ran into, then reports ErrExpired.
func (c *Coordinator) expireLate(ctx context.Context, tx repository.Factory, order *model.Order, now time.Time) (*change, error) {
	ch, err := c.expire(ctx, tx, order, now)
	if err != nil {
		return nil, err
	}
	ch.result = domainErrors.ErrExpired
	return ch, nil
}

func moveTicket(ctx context.Context, tx repository.Factory, ticketID string, from, to model.TicketStatus, now time.Time) error {
	ticket, err := tx.Tickets().Get(ctx, ticketID)
	if err != nil {
		return err
	}
	next := *ticket
	next.Status = to
	next.UpdatedAt = now
	return tx.Tickets().ConditionalUpdate(ctx, ticketID, from, &next)
}

func wrongState(order *model.Order) error {
	return fmt.Errorf("%w: order %s is %s", domainErrors.ErrWrongState, order.ID, order.Status)
}

// complete publishes what was committed and maps the outcome for the caller.
func (c *Coordinator) complete(ctx context.Context, op string, started time.Time, ch *change, err error) (*model.Order, error) {
	if err != nil {
		return nil, c.finish(ctx, op, started, nil, err)
	}
	if ch.event != "" {
		c.publish(ctx, ch)
	}
	if ch.result != nil {
		return nil, c.finish(ctx, op, started, ch, ch.result)
	}
	return ch.order, c.finish(ctx, op, started, ch, nil)
}

func (c *Coordinator) finish(ctx context.Context, op string, started time.Time, ch *change, err error) error {
	err = classify(err)
	if c.metrics != nil {
		c.metrics.ObserveOperation(op, started, err)
	}

	switch {
	case err == nil && ch.event != "":
		c.logger.InfoContext(ctx, "order transition",
			slog.String("op", op),
			slog.String("order_id", ch.order.ID),
			slog.String("ticket_id", ch.order.TicketID),
			slog.String("status", string(ch.order.Status)),
		)
	case domainErrors.Retryable(err), errors.Is(err, domainErrors.ErrTimeout):
		c.logger.WarnContext(ctx, "order transition failed", slog.String("op", op), slog.String("error", err.Error()))
	}
	return err
}

func (c *Coordinator) publish(ctx context.Context, ch *change) {
	if c.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	event := model.OrderEvent{
		Type:           ch.event,
		OrderID:        ch.order.ID,
		TicketID:       ch.order.TicketID,
		BuyerID:        ch.order.BuyerID,
		SellerID:       ch.order.SellerID,
		Status:         ch.order.Status,
		PreviousStatus: ch.previous,
		TicketStatus:   ch.ticket,
		TotalAmount:    ch.order.TotalAmount,
		Reason:         ch.order.Reason,
		Timestamp:      ch.order.UpdatedAt,
	}
	if err := c.events.Publish(ctx, event); err != nil {
		c.logger.WarnContext(ctx, "publish order event failed",
			slog.String("order_id", event.OrderID),
			slog.String("type", string(event.Type)),
			slog.String("error", err.Error()),
		)
	}
}

// classify turns an exhausted deadline into ErrTimeout.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, domainErrors.ErrTimeout) {
		return fmt.Errorf("%w: %v", domainErrors.ErrTimeout, err)
	}
	return err
}
