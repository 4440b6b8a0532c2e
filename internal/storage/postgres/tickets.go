package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/ticketmart/internal/domain/errors"
	"github.com/polkiloo/ticketmart/internal/domain/model"
)

const ticketColumns = `id, seller_id, event_name, category, venue, event_date, seat_info, price, status, created_at, updated_at`

type ticketRepository struct {
	q         querier
	forUpdate bool
}

func scanTicket(row pgx.Row) (*model.Ticket, error) {
	var t model.Ticket
	err := row.Scan(&t.ID, &t.SellerID, &t.EventName, &t.Category, &t.Venue, &t.EventDate, &t.SeatInfo,
		&t.Price, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *ticketRepository) Create(ctx context.Context, t *model.Ticket) error {
	const query = `INSERT INTO tickets (` + ticketColumns + `)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query, t.ID, t.SellerID, t.EventName, t.Category, t.Venue, t.EventDate, t.SeatInfo,
		t.Price, t.Status, t.CreatedAt, t.UpdatedAt)
	return classify("create ticket", err)
}

func (r *ticketRepository) Get(ctx context.Context, id string) (*model.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	if r.forUpdate {
		query += ` FOR UPDATE`
	}
	t, err := scanTicket(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, classify("get ticket", err)
	}
	return t, nil
}

func (r *ticketRepository) ConditionalUpdate(ctx context.Context, id string, expected model.TicketStatus, next *model.Ticket) error {
	const query = `UPDATE tickets
                   SET event_name=$2, category=$3, venue=$4, event_date=$5, seat_info=$6, price=$7, status=$8, updated_at=$9
                   WHERE id=$1 AND status=$10`
	tag, err := r.q.Exec(ctx, query, id, next.EventName, next.Category, next.Venue, next.EventDate, next.SeatInfo,
		next.Price, next.Status, next.UpdatedAt, expected)
	if err != nil {
		return classify("update ticket", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missOrConflict(ctx, id)
	}
	return nil
}

func (r *ticketRepository) missOrConflict(ctx context.Context, id string) error {
	var one int
	err := r.q.QueryRow(ctx, `SELECT 1 FROM tickets WHERE id=$1`, id).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return domainErrors.ErrNotFound
	}
	if err != nil {
		return classify("update ticket", err)
	}
	return domainErrors.ErrConflict
}

func (r *ticketRepository) ListAvailable(ctx context.Context, limit int) ([]model.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE status=$1 ORDER BY created_at DESC LIMIT $2`
	return r.list(ctx, "list available tickets", query, model.TicketStatusAvailable, limit)
}

func (r *ticketRepository) ListBySeller(ctx context.Context, sellerID string) ([]model.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE seller_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, "list seller tickets", query, sellerID)
}

func (r *ticketRepository) Search(ctx context.Context, query string, limit int) ([]model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets WHERE event_name ILIKE $1 ESCAPE '\' ORDER BY created_at DESC LIMIT $2`
	return r.list(ctx, "search tickets", q, "%"+likeEscaper.Replace(query)+"%", limit)
}

func (r *ticketRepository) HappeningBetween(ctx context.Context, from, to time.Time, limit int) ([]model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets WHERE event_date BETWEEN $1 AND $2 ORDER BY event_date, id LIMIT $3`
	return r.list(ctx, "list tickets by event date", q, from, to, limit)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *ticketRepository) list(ctx context.Context, op, query string, args ...any) ([]model.Ticket, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	var result []model.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, classify(op, err)
		}
		result = append(result, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return result, nil
}
