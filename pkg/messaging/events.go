package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventApplicationSubmitted     = "application.submitted"
	EventApplicationStatusChanged = "application.status_changed"
	EventDeceasedReportConfirmed  = "deceased_report.confirmed"
	EventUserRegistered           = "user.registered"
)

// ExchangeWelfareEvents is the default topic exchange for workflow events.
const ExchangeWelfareEvents = "welfare.events"

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// ApplicationStatusChangedEvent is published after every committed workflow transition.
type ApplicationStatusChangedEvent struct {
	ApplicationID string    `json:"application_id"`
	BeneficiaryID string    `json:"beneficiary_id"`
	ProgramID     string    `json:"program_id"`
	Operation     string    `json:"operation"`
	FromStatus    string    `json:"from_status,omitempty"`
	ToStatus      string    `json:"to_status"`
	ActorID       string    `json:"actor_id"`
	ActorRole     string    `json:"actor_role"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// UserRegisteredEvent is published when a self-service signup completes.
type UserRegisteredEvent struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	UserType string `json:"user_type"`
	Address  string `json:"address"`
}

// DeceasedReportConfirmedEvent is published when staff confirm a death report.
type DeceasedReportConfirmedEvent struct {
	ReportID            string   `json:"report_id"`
	ConfirmedBy         string   `json:"confirmed_by"`
	BeneficiaryIDs      []string `json:"beneficiary_ids"`
	DeletedApplications int64    `json:"deleted_applications"`
}
