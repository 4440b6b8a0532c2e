package test

import (
	"context"
	"sync"

	"github.com/polkiloo/ticketmart/internal/domain/model"
	"github.com/polkiloo/ticketmart/internal/domain/repository"
	"github.com/polkiloo/ticketmart/internal/storage/memory"
)

// StoreStub wraps an in-memory store and lets tests inject failures.
type StoreStub struct {
	Backend   repository.Store
	TxErr     error
	HealthErr error
	Closed    bool

	once sync.Once
}

func (s *StoreStub) backend() repository.Store {
	s.once.Do(func() {
		if s.Backend == nil {
			s.Backend = memory.New()
		}
	})
	return s.Backend
}

// Tickets returns the backend ticket repository.
func (s *StoreStub) Tickets() repository.TicketRepository {
	return s.backend().Tickets()
}

// Orders returns the backend order repository.
func (s *StoreStub) Orders() repository.OrderRepository {
	return s.backend().Orders()
}

// WithinTransaction fails with TxErr when set and delegates otherwise.
func (s *StoreStub) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Factory) error) error {
	if s.TxErr != nil {
		return s.TxErr
	}
	return s.backend().WithinTransaction(ctx, fn)
}

// HealthCheck returns HealthErr.
func (s *StoreStub) HealthCheck(context.Context) error {
	return s.HealthErr
}

// Close records the call.
func (s *StoreStub) Close() {
	s.Closed = true
}

// PublisherRecorder captures published events.
type PublisherRecorder struct {
	Err error

	mu     sync.Mutex
	events []model.OrderEvent
}

// Publish records the event and returns Err.
func (p *PublisherRecorder) Publish(_ context.Context, event model.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.Err
}

// Events returns a copy of everything published so far.
func (p *PublisherRecorder) Events() []model.OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.OrderEvent(nil), p.events...)
}

// Types lists the recorded event types in order.
func (p *PublisherRecorder) Types() []model.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]model.EventType, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

var _ repository.Store = (*StoreStub)(nil)
