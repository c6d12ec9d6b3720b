package service

import (
	"context"

	"github.com/mesias/mswdo-backend/internal/welfare/domain"
	"github.com/mesias/mswdo-backend/pkg/actor"
	"github.com/mesias/mswdo-backend/pkg/errors"
)

// CreateNotificationInput is a manual notification written by staff.
type CreateNotificationInput struct {
	UserID               string                  `json:"user_id" validate:"required,uuid"`
	Title                string                  `json:"title" validate:"required,max=200"`
	Message              string                  `json:"message" validate:"required,max=2000"`
	Type                 domain.NotificationType `json:"type" validate:"omitempty,oneof=info success warning error"`
	RelatedApplicationID *string                 `json:"related_application_id" validate:"omitempty,uuid"`
}

// NotificationService serves a user's own notifications.
type NotificationService struct {
	store NotificationStore
}

func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{store: store}
}

func (s *NotificationService) List(ctx context.Context, a *actor.Actor, unreadOnly bool) ([]*domain.Notification, error) {
	if a == nil {
		return nil, errors.Unauthorized("authentication required")
	}
	return s.store.ListByUser(ctx, a.ID, unreadOnly)
}

// Create lets staff address a notification to any user.
func (s *NotificationService) Create(ctx context.Context, a *actor.Actor, in CreateNotificationInput) (*domain.Notification, error) {
	if err := requireRole(a, domain.Staff...); err != nil {
		return nil, err
	}
	n := &domain.Notification{
		UserID:               in.UserID,
		Title:                in.Title,
		Message:              in.Message,
		Type:                 in.Type,
		RelatedApplicationID: in.RelatedApplicationID,
	}
	if err := s.store.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// MarkRead flags one of the caller's notifications as read. Someone
// else's notification is reported as not found.
func (s *NotificationService) MarkRead(ctx context.Context, a *actor.Actor, id string) (*domain.Notification, error) {
	if a == nil {
		return nil, errors.Unauthorized("authentication required")
	}
	return s.store.MarkRead(ctx, id, a.ID)
}

func (s *NotificationService) Delete(ctx context.Context, a *actor.Actor, id string) error {
	if a == nil {
		return errors.Unauthorized("authentication required")
	}
	return s.store.Delete(ctx, id, a.ID)
}
