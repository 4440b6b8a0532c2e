// Package worker runs background order maintenance.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/polkiloo/ticketmart/internal/clock"
	domainErrors "github.com/polkiloo/ticketmart/internal/domain/errors"
	"github.com/polkiloo/ticketmart/internal/domain/model"
)

// Expirer drives a single order expiry.
type Expirer interface {
	ExpireOrder(ctx context.Context, orderID string) (*model.Order, error)
}

// DueOrders lists unpaid orders whose deadline is at or before ts.
type DueOrders interface {
	ListPendingBefore(ctx context.Context, ts time.Time, limit int) ([]model.Order, error)
}

// SweepObserver receives per-pass results.
type SweepObserver interface {
	ObserveSweep(expired int, err error)
}

// SweeperOptions tunes the sweeper. Non-positive values fall back to 1.
type SweeperOptions struct {
	Interval  time.Duration
	BatchSize int
	Workers   int
}

// Sweeper expires overdue orders on a fixed interval using a pool of workers.
type Sweeper struct {
	expirer  Expirer
	orders   DueOrders
	clock    clock.Clock
	observer SweepObserver
	logger   *slog.Logger

	interval  time.Duration
	batchSize int
	workers   int

	jobs   chan job
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

type job struct {
	order model.Order
	pass  *pass
}

// pass aggregates the outcome of one sweep.
type pass struct {
	wg      sync.WaitGroup
	expired atomic.Int64
	mu      sync.Mutex
	err     error
}

func (p *pass) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err == nil {
		p.err = err
	}
}

// NewSweeper constructs the sweeper. observer may be nil.
func NewSweeper(expirer Expirer, orders DueOrders, clk clock.Clock, observer SweepObserver, opts SweeperOptions, logger *slog.Logger) *Sweeper {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	return &Sweeper{
		expirer:   expirer,
		orders:    orders,
		clock:     clk,
		observer:  observer,
		logger:    logger,
		interval:  opts.Interval,
		batchSize: opts.BatchSize,
		workers:   opts.Workers,
		jobs:      make(chan job, opts.BatchSize),
	}
}

// Start launches the workers and runs a first pass immediately.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(runCtx)
	}

	s.wg.Add(1)
	go s.dispatch(runCtx)
}

// Stop cancels the current pass and waits for every worker to exit.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Sweeper) dispatch(ctx context.Context) {
	defer s.wg.Done()
	defer close(s.jobs)
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			s.sweep(ctx)
		}
	}
}

// sweep runs one pass. Passes never overlap, so an order is handed to at most one worker.
func (s *Sweeper) sweep(ctx context.Context) {
	orders, err := s.orders.ListPendingBefore(ctx, clock.Storable(s.clock.Now()), s.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("list overdue orders failed", slog.String("error", err.Error()))
		s.observe(0, err)
		return
	}

	p := &pass{}
send:
	for _, order := range orders {
		p.wg.Add(1)
		select {
		case <-ctx.Done():
			p.wg.Done()
			break send
		case s.jobs <- job{order: order, pass: p}:
		}
	}
	p.wg.Wait()

	expired := int(p.expired.Load())
	if expired > 0 || p.err != nil {
		s.logger.Info("sweep finished", slog.Int("due", len(orders)), slog.Int("expired", expired))
	}
	s.observe(expired, p.err)
}

// worker drains jobs until the dispatcher closes the channel.
func (s *Sweeper) worker(ctx context.Context) {
	defer s.wg.Done()
	for j := range s.jobs {
		s.handle(ctx, j)
		j.pass.wg.Done()
	}
}

func (s *Sweeper) handle(ctx context.Context, j job) {
	if ctx.Err() != nil {
		return
	}

	_, err := s.expirer.ExpireOrder(ctx, j.order.ID)
	switch {
	case err == nil:
		j.pass.expired.Add(1)
	case errors.Is(err, domainErrors.ErrWrongState), errors.Is(err, domainErrors.ErrNotFound):
		// settled or extended by someone else since it was listed
		s.logger.Debug("order no longer due", slog.String("order_id", j.order.ID), slog.String("reason", err.Error()))
	case errors.Is(err, domainErrors.ErrConflict):
		s.logger.Warn("expire order lost a race, retrying next pass", slog.String("order_id", j.order.ID))
	case errors.Is(err, domainErrors.ErrStorageUnavailable):
		s.logger.Error("storage unavailable during sweep", slog.String("order_id", j.order.ID), slog.String("error", err.Error()))
		j.pass.fail(err)
	default:
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("expire order failed", slog.String("order_id", j.order.ID), slog.String("error", err.Error()))
		j.pass.fail(err)
	}
}

func (s *Sweeper) observe(expired int, err error) {
	if s.observer != nil {
		s.observer.ObserveSweep(expired, err)
	}
}
