package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WorkflowEntity is the database row shape for workflow_entities.
type WorkflowEntity struct {
	EntityID         string          `db:"entity_id"`
	Kind             string          `db:"kind"`
	State            string          `db:"state"`
	OwnerID          string          `db:"owner_id"`
	CounterpartyID   *string         `db:"counterparty_id"` // Nullable
	SubjectRef       string          `db:"subject_ref"`
	Quantity         int64           `db:"quantity"`
	QuantityIssued   int64           `db:"quantity_issued"`
	QuantityReturned int64           `db:"quantity_returned"`
	Amount           decimal.Decimal `db:"amount"`
	Reference        string          `db:"reference"`
	Title            string          `db:"title"`
	Note             string          `db:"note"`
	Capacity         int             `db:"capacity"`
	ScheduledAt      time.Time       `db:"scheduled_at"`
	Version          int64           `db:"version"`
	AuditFields
}

// Participant is the database row shape for duty_participants.
type Participant struct {
	EntityID string    `db:"entity_id"`
	YouthID  string    `db:"youth_id"`
	Status   string    `db:"status"`
	JoinedAt time.Time `db:"joined_at"`
}

// HistoryEntry is the database row shape for workflow_history.
// Rows are insert-only; there is no update path.
type HistoryEntry struct {
	EntityID   string    `db:"entity_id"`
	Seq        int64     `db:"seq"`
	ActorID    string    `db:"actor_id"`
	ActorRole  string    `db:"actor_role"`
	FromState  string    `db:"from_state"`
	ToState    string    `db:"to_state"`
	Note       string    `db:"note"`
	RecordedAt time.Time `db:"recorded_at"`
}
