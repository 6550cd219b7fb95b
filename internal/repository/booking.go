// Package repository wraps all SQL used by the API and worker.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tripdeskhq/tripdesk/internal/model"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// BookingRepository persists bookings.
type BookingRepository struct {
	pool *pgxpool.Pool
}

// NewBookingRepository constructs a repository.
func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

// Create inserts a booking.
func (r *BookingRepository) Create(ctx context.Context, b *model.Booking) error {
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	if b.Status == "" {
		b.Status = model.BookingPending
	}
	docs, err := json.Marshal(b.Documents)
	if err != nil {
		return fmt.Errorf("encode documents: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO bookings (id, service, reference, customer_name, amount, status, documents, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, b.ID, b.Service, b.Reference, b.CustomerName, b.Amount, b.Status, docs, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

// Get returns a booking by id.
func (r *BookingRepository) Get(ctx context.Context, id string) (*model.Booking, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, service, reference, customer_name, amount, status, documents, created_at, updated_at
		FROM bookings WHERE id=$1
	`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select booking: %w", err)
	}
	return b, nil
}

// List returns all bookings, newest first. The API layer runs the result
// through the table engine for search, filters, sort and paging.
func (r *BookingRepository) List(ctx context.Context) ([]model.Booking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, service, reference, customer_name, amount, status, documents, created_at, updated_at
		FROM bookings ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("select bookings: %w", err)
	}
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}
	return out, nil
}

// UpdateStatus transitions a booking.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, status model.BookingStatus) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE bookings SET status=$1, updated_at=$2 WHERE id=$3
	`, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Summary aggregates bookings per service and status for the dashboard.
func (r *BookingRepository) Summary(ctx context.Context) ([]model.SummaryRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT service, status, COUNT(*), COALESCE(SUM(amount),0)
		FROM bookings GROUP BY service, status ORDER BY service, status
	`)
	if err != nil {
		return nil, fmt.Errorf("select summary: %w", err)
	}
	defer rows.Close()
	var out []model.SummaryRow
	for rows.Next() {
		var s model.SummaryRow
		if err := rows.Scan(&s.Service, &s.Status, &s.Count, &s.Amount); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary: %w", err)
	}
	return out, nil
}

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var (
		b    model.Booking
		docs []byte
	)
	if err := row.Scan(&b.ID, &b.Service, &b.Reference, &b.CustomerName, &b.Amount, &b.Status, &docs, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if len(docs) > 0 {
		if err := json.Unmarshal(docs, &b.Documents); err != nil {
			return nil, fmt.Errorf("decode documents: %w", err)
		}
	}
	return &b, nil
}
