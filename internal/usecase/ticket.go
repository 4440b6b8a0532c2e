package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/ticketmart/internal/clock"
	domainErrors "github.com/polkiloo/ticketmart/internal/domain/errors"
	"github.com/polkiloo/ticketmart/internal/domain/model"
	"github.com/polkiloo/ticketmart/internal/domain/repository"
	"github.com/polkiloo/ticketmart/internal/lock"
)

const defaultListLimit = 100

// TicketDraft carries the seller supplied fields of a new listing.
type TicketDraft struct {
	EventName string
	Category  string
	Venue     string
	EventDate time.Time
	SeatInfo  string
	Price     decimal.Decimal
}

// TicketPatch carries the listing fields a seller may change. Nil fields stay as stored.
type TicketPatch struct {
	Venue    *string
	SeatInfo *string
	Price    *decimal.Decimal
}

// TicketUseCase manages listings. Status changes after creation belong to the coordinator.
type TicketUseCase struct {
	tickets repository.TicketRepository
	clock   clock.Clock
	locks   lock.Locker
	newID   func() string
}

// NewTicketUseCase constructs TicketUseCase. locks must be the scope the coordinator reserves under.
func NewTicketUseCase(tickets repository.TicketRepository, clk clock.Clock, locks lock.Locker) *TicketUseCase {
	return &TicketUseCase{tickets: tickets, clock: clk, locks: locks, newID: uuid.NewString}
}

// Create lists a new available ticket owned by sellerID.
func (u *TicketUseCase) Create(ctx context.Context, sellerID string, draft TicketDraft) (*model.Ticket, error) {
	if sellerID == "" {
		return nil, domainErrors.ErrForbidden
	}
	if err := ValidateTicketDraft(draft); err != nil {
		return nil, err
	}

	now := clock.Storable(u.clock.Now())
	ticket := &model.Ticket{
		ID:        u.newID(),
		SellerID:  sellerID,
		EventName: strings.TrimSpace(draft.EventName),
		Category:  strings.TrimSpace(draft.Category),
		Venue:     strings.TrimSpace(draft.Venue),
		SeatInfo:  strings.TrimSpace(draft.SeatInfo),
		Price:     draft.Price,
		Status:    model.TicketStatusAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if !draft.EventDate.IsZero() {
		ticket.EventDate = clock.Storable(draft.EventDate)
	}

	if err := u.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// Get returns a single ticket.
func (u *TicketUseCase) Get(ctx context.Context, id string) (*model.Ticket, error) {
	return u.tickets.Get(ctx, id)
}

// ListAvailable returns reservable tickets, newest first.
func (u *TicketUseCase) ListAvailable(ctx context.Context, limit int) ([]model.Ticket, error) {
	return u.tickets.ListAvailable(ctx, clampLimit(limit))
}

// ListBySeller returns every listing of sellerID regardless of status.
func (u *TicketUseCase) ListBySeller(ctx context.Context, sellerID string) ([]model.Ticket, error) {
	return u.tickets.ListBySeller(ctx, sellerID)
}

// Update applies patch to an AVAILABLE listing of sellerID. Reserved and sold tickets are frozen.
func (u *TicketUseCase) Update(ctx context.Context, ticketID, sellerID string, patch TicketPatch) (*model.Ticket, error) {
	unlock, err := u.locks.Acquire(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	cur, err := u.tickets.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if cur.SellerID != sellerID {
		return nil, domainErrors.ErrForbidden
	}
	if cur.Status != model.TicketStatusAvailable {
		return nil, fmt.Errorf("%w: ticket is %s", domainErrors.ErrWrongState, cur.Status)
	}

	next := *cur
	if patch.Venue != nil {
		next.Venue = strings.TrimSpace(*patch.Venue)
	}
	if patch.SeatInfo != nil {
		next.SeatInfo = strings.TrimSpace(*patch.SeatInfo)
	}
	if patch.Price != nil {
		next.Price = *patch.Price
	}
	if err := ValidateTicketDraft(TicketDraft{
		EventName: next.EventName,
		Category:  next.Category,
		Venue:     next.Venue,
		SeatInfo:  next.SeatInfo,
		Price:     next.Price,
	}); err != nil {
		return nil, err
	}
	next.UpdatedAt = clock.Storable(u.clock.Now())

	if err := u.tickets.ConditionalUpdate(ctx, ticketID, model.TicketStatusAvailable, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

// Search finds listings whose event name contains query, ignoring case.
func (u *TicketUseCase) Search(ctx context.Context, query string, limit int) ([]model.Ticket, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", domainErrors.ErrInvalidTicket)
	}
	return u.tickets.Search(ctx, query, clampLimit(limit))
}

// HappeningBetween lists tickets for events dated within [from, to].
func (u *TicketUseCase) HappeningBetween(ctx context.Context, from, to time.Time, limit int) ([]model.Ticket, error) {
	if from.IsZero() || to.IsZero() {
		return nil, fmt.Errorf("%w: both ends of the date range are required", domainErrors.ErrInvalidTicket)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: date range ends before it starts", domainErrors.ErrInvalidTicket)
	}
	return u.tickets.HappeningBetween(ctx, from, to, clampLimit(limit))
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > defaultListLimit {
		return defaultListLimit
	}
	return limit
}
