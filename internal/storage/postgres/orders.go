package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/ticketmart/internal/domain/errors"
	"github.com/polkiloo/ticketmart/internal/domain/model"
)

const orderColumns = `id, ticket_id, buyer_id, seller_id, quantity, total_amount, status, reason, payment_ref, expires_at, created_at, updated_at`

type orderRepository struct {
	q         querier
	forUpdate bool
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.TicketID, &o.BuyerID, &o.SellerID, &o.Quantity, &o.TotalAmount, &o.Status,
		&o.Reason, &o.PaymentRef, &o.ExpiresAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) Create(ctx context.Context, o *model.Order) error {
	const query = `INSERT INTO orders (` + orderColumns + `)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query, o.ID, o.TicketID, o.BuyerID, o.SellerID, o.Quantity, o.TotalAmount, o.Status,
		o.Reason, o.PaymentRef, o.ExpiresAt, o.CreatedAt, o.UpdatedAt)
	return classify("create order", err)
}

func (r *orderRepository) Get(ctx context.Context, id string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	if r.forUpdate {
		query += ` FOR UPDATE`
	}
	o, err := scanOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, classify("get order", err)
	}
	return o, nil
}

func (r *orderRepository) GetByPaymentRef(ctx context.Context, ref string) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE payment_ref=$1 AND payment_ref <> ''`
	o, err := scanOrder(r.q.QueryRow(ctx, query, ref))
	if err != nil {
		return nil, classify("get order by payment", err)
	}
	return o, nil
}

// ConditionalUpdate only touches mutable columns; ticket, parties, amount and deadline never change.
func (r *orderRepository) ConditionalUpdate(ctx context.Context, id string, expected model.OrderStatus, next *model.Order) error {
	const query = `UPDATE orders SET status=$2, reason=$3, payment_ref=$4, updated_at=$5 WHERE id=$1 AND status=$6`
	tag, err := r.q.Exec(ctx, query, id, next.Status, next.Reason, next.PaymentRef, next.UpdatedAt, expected)
	if err != nil {
		return classify("update order", err)
	}
	if tag.RowsAffected() == 0 {
		var one int
		err := r.q.QueryRow(ctx, `SELECT 1 FROM orders WHERE id=$1`, id).Scan(&one)
		if errors.Is(err, pgx.ErrNoRows) {
			return domainErrors.ErrNotFound
		}
		if err != nil {
			return classify("update order", err)
		}
		return domainErrors.ErrConflict
	}
	return nil
}

func (r *orderRepository) ListPendingBefore(ctx context.Context, ts time.Time, limit int) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders
                   WHERE status IN ('PENDING', 'APPROVED') AND expires_at <= $1
                   ORDER BY expires_at
                   LIMIT $2`
	return r.list(ctx, "list expired orders", query, ts, limit)
}

func (r *orderRepository) ListByBuyer(ctx context.Context, buyerID string) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE buyer_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, "list buyer orders", query, buyerID)
}

func (r *orderRepository) ListBySeller(ctx context.Context, sellerID string) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE seller_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, "list seller orders", query, sellerID)
}

func (r *orderRepository) CountActiveByTicket(ctx context.Context, ticketID string) (int, error) {
	const query = `SELECT COUNT(*) FROM orders WHERE ticket_id=$1 AND status IN ('PENDING', 'APPROVED')`
	var n int
	if err := r.q.QueryRow(ctx, query, ticketID).Scan(&n); err != nil {
		return 0, classify("count active orders", err)
	}
	return n, nil
}

func (r *orderRepository) list(ctx context.Context, op, query string, args ...any) ([]model.Order, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, classify(op, err)
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return result, nil
}
