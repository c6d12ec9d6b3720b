package service

import (
	"context"

	"github.com/mesias/mswdo-backend/internal/welfare/domain"
	"github.com/mesias/mswdo-backend/pkg/logger"
	"github.com/mesias/mswdo-backend/pkg/metrics"
)

// Message is the content of one notification before it is addressed.
type Message struct {
	Title         string
	Body          string
	Type          domain.NotificationType
	ApplicationID *string
}

// Notifier writes user-facing notifications. Every method is
// best-effort: failures are logged and counted, never returned.
type Notifier struct {
	store       NotificationStore
	users       UserStore
	assignments AssignmentStore
	logger      *logger.Logger
}

func NewNotifier(store NotificationStore, users UserStore, assignments AssignmentStore, log *logger.Logger) *Notifier {
	return &Notifier{
		store:       store,
		users:       users,
		assignments: assignments,
		logger:      log.WithComponent("notifier"),
	}
}

// Send delivers msg to each distinct non-empty recipient.
func (n *Notifier) Send(ctx context.Context, msg Message, recipients ...string) {
	seen := make(map[string]bool, len(recipients))
	for _, userID := range recipients {
		if userID == "" || seen[userID] {
			continue
		}
		seen[userID] = true

		err := n.store.Create(ctx, &domain.Notification{
			UserID:               userID,
			Title:                msg.Title,
			Message:              msg.Body,
			Type:                 msg.Type,
			RelatedApplicationID: msg.ApplicationID,
		})
		if err != nil {
			metrics.RecordNotificationFailure()
			n.logger.Error().Err(err).
				Str("recipient", userID).
				Str("title", msg.Title).
				Msg("failed to create notification")
		}
	}
}

// Office returns the ids of every MSWDO user.
func (n *Notifier) Office(ctx context.Context) []string {
	ids, err := n.users.IDsByRole(ctx, domain.RoleMSWDO)
	if err != nil {
		n.logger.Error().Err(err).Msg("failed to look up office recipients")
		return nil
	}
	return ids
}

// Workers returns the health workers assigned to barangay.
func (n *Notifier) Workers(ctx context.Context, barangay string) []string {
	ids, err := n.assignments.UserIDsForBarangay(ctx, barangay)
	if err != nil {
		n.logger.Error().Err(err).Str("barangay", barangay).Msg("failed to look up barangay health workers")
		return nil
	}
	return ids
}
