package domain

import "time"

// NotificationType sets how a client renders a notification.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationInfo, NotificationSuccess, NotificationWarning, NotificationError:
		return true
	}
	return false
}

type Notification struct {
	ID                   string           `json:"id" db:"id"`
	UserID               string           `json:"user_id" db:"user_id"`
	Title                string           `json:"title" db:"title"`
	Message              string           `json:"message" db:"message"`
	Type                 NotificationType `json:"type" db:"type"`
	RelatedApplicationID *string          `json:"related_application_id,omitempty" db:"related_application_id"`
	IsRead               bool             `json:"is_read" db:"is_read"`
	CreatedAt            time.Time        `json:"created_at" db:"created_at"`
}
