package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tripdeskhq/tripdesk/internal/model"
)

// NotificationRepository persists feed notifications.
type NotificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository constructs a repository.
func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// Insert stores a dispatched notification.
func (r *NotificationRepository) Insert(ctx context.Context, n *model.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (id, topic, title, body, created_at, read_at)
		VALUES ($1,$2,$3,$4,$5,NULL)
	`, n.ID, n.Topic, n.Title, n.Body, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListRecent returns the newest notifications, most recent first.
func (r *NotificationRepository) ListRecent(ctx context.Context, limit int) ([]model.Notification, error) {
	if limit < 1 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, topic, title, COALESCE(body,''), created_at, read_at
		FROM notifications ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("select notifications: %w", err)
	}
	defer rows.Close()
	var out []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.Topic, &n.Title, &n.Body, &n.CreatedAt, &n.ReadAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}

// MarkRead stamps a notification as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications SET read_at=$1 WHERE id=$2 AND read_at IS NULL
	`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
