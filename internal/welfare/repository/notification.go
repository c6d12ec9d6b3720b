package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/mesias/mswdo-backend/internal/welfare/domain"
	"github.com/mesias/mswdo-backend/pkg/database"
)

const notificationColumns = `id, user_id, title, message, type, related_application_id, is_read, created_at`

// NotificationRepository handles notification persistence
type NotificationRepository struct {
	db *database.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *database.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.Type == "" {
		n.Type = domain.NotificationInfo
	}

	query := `
		INSERT INTO notifications (id, user_id, title, message, type, related_application_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING is_read, created_at
	`
	err := r.db.Conn(ctx).QueryRowxContext(ctx, query,
		n.ID, n.UserID, n.Title, n.Message, n.Type, n.RelatedApplicationID,
	).Scan(&n.IsRead, &n.CreatedAt)
	return database.MapError(err)
}

// ListByUser returns a user's notifications, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND NOT is_read`
	}
	query += ` ORDER BY created_at DESC`

	out := []*domain.Notification{}
	err := r.db.Conn(ctx).SelectContext(ctx, &out, query, userID)
	return out, err
}

// MarkRead flags a notification owned by userID as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string) (*domain.Notification, error) {
	var n domain.Notification
	err := r.db.Conn(ctx).GetContext(ctx, &n, `
		UPDATE notifications SET is_read = TRUE
		WHERE id = $1 AND user_id = $2
		RETURNING `+notificationColumns, id, userID)
	if err != nil {
		return nil, notFound(err, "notification")
	}
	return &n, nil
}

// Delete removes a notification owned by userID.
func (r *NotificationRepository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.Conn(ctx).ExecContext(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return database.MapError(err)
	}
	return affected(res, "notification")
}
