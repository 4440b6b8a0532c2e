package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/polkiloo/ticketmart/internal/domain/errors"
	"github.com/polkiloo/ticketmart/internal/domain/repository"
)

// querier is satisfied by both the pool and an open transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxPool interface {
	querier
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

var _ repository.Store = (*Storage)(nil)

// txFactory exposes repositories bound to one transaction. Reads through it take row locks.
type txFactory struct {
	tx pgx.Tx
}

func (f txFactory) Tickets() repository.TicketRepository {
	return &ticketRepository{q: f.tx, forUpdate: true}
}

func (f txFactory) Orders() repository.OrderRepository {
	return &orderRepository{q: f.tx, forUpdate: true}
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Storage) Tickets() repository.TicketRepository {
	return &ticketRepository{q: s.pool}
}

func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{q: s.pool}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS tickets (
            id TEXT PRIMARY KEY,
            seller_id TEXT NOT NULL,
            event_name TEXT NOT NULL,
            category TEXT NOT NULL DEFAULT '',
            venue TEXT NOT NULL DEFAULT '',
            event_date TIMESTAMPTZ NOT NULL,
            seat_info TEXT NOT NULL DEFAULT '',
            price NUMERIC(12,2) NOT NULL CHECK (price > 0),
            status TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id TEXT PRIMARY KEY,
            ticket_id TEXT NOT NULL REFERENCES tickets(id),
            buyer_id TEXT NOT NULL,
            seller_id TEXT NOT NULL,
            quantity INT NOT NULL DEFAULT 1,
            total_amount NUMERIC(12,2) NOT NULL,
            status TEXT NOT NULL,
            reason TEXT NOT NULL DEFAULT '',
            payment_ref TEXT NOT NULL DEFAULT '',
            expires_at TIMESTAMPTZ NOT NULL,
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL,
            CHECK (buyer_id <> seller_id)
        )`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_active_ticket ON orders(ticket_id) WHERE status IN ('PENDING', 'APPROVED')`,
		`CREATE INDEX IF NOT EXISTS idx_orders_active_expiry ON orders(expires_at) WHERE status IN ('PENDING', 'APPROVED')`,
		`CREATE INDEX IF NOT EXISTS idx_orders_buyer ON orders(buyer_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_seller ON orders(seller_id, created_at DESC)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ` + paymentRefIndex + ` ON orders(payment_ref) WHERE payment_ref <> ''`,
		`CREATE INDEX IF NOT EXISTS idx_tickets_status ON tickets(status, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_tickets_event_date ON tickets(event_date)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// WithinTransaction executes fn inside one transaction. Repositories handed to fn lock the rows they read.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Factory) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return classify("begin", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.Warn("rollback failed", slog.String("error", rbErr.Error()))
			}
		} else if cErr := tx.Commit(ctx); cErr != nil {
			err = classify("commit", cErr)
		}
	}()

	err = fn(ctx, txFactory{tx: tx})
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.pool.Ping(ctx); err != nil {
		return classify("ping", err)
	}
	return nil
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}

const paymentRefIndex = "idx_orders_payment_ref"

// classify maps driver errors onto the domain taxonomy. Context errors pass through untouched.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domainErrors.ErrNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("postgres: %s: %w", op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505" && pgErr.ConstraintName == paymentRefIndex:
			return fmt.Errorf("postgres: %s: %w", op, domainErrors.ErrDuplicatePayment)
		case pgErr.Code == "23505", pgErr.Code == "40001", pgErr.Code == "40P01":
			return fmt.Errorf("postgres: %s: %w: %s", op, domainErrors.ErrConflict, pgErr.Message)
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "53"), strings.HasPrefix(pgErr.Code, "57P"):
			return fmt.Errorf("postgres: %s: %w: %s", op, domainErrors.ErrStorageUnavailable, pgErr.Message)
		}
		return fmt.Errorf("postgres: %s: %w", op, err)
	}

	var connErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connErr) || errors.As(err, &netErr) || pgconn.SafeToRetry(err) {
		return fmt.Errorf("postgres: %s: %w: %v", op, domainErrors.ErrStorageUnavailable, err)
	}

	return fmt.Errorf("postgres: %s: %w", op, err)
}
