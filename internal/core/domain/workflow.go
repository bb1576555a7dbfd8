package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntityKind identifies which lifecycle a workflow entity follows.
type EntityKind string

const (
	KindSupplyRequest   EntityKind = "supply_request"
	KindMaterialRequest EntityKind = "material_request"
	KindDonation        EntityKind = "donation"
	KindBooking         EntityKind = "booking"
	KindDuty            EntityKind = "duty"
)

// ParseEntityKind converts a raw string into an EntityKind.
func ParseEntityKind(s string) (EntityKind, bool) {
	k := EntityKind(s)
	_, ok := ruleTable[k]
	return k, ok
}

// State is a named lifecycle state. Valid values depend on the entity kind;
// the rule table in rules.go is the single source of truth.
type State string

const (
	// Shared initial / terminal states
	StatePending  State = "pending"
	StateRejected State = "rejected"

	// Supply request
	StateAcceptedBySupplier State = "accepted_by_supplier"
	StateRejectedBySupplier State = "rejected_by_supplier"
	StateDelivered          State = "delivered"
	StateInventoryAccepted  State = "inventory_accepted"
	StateInventoryRejected  State = "inventory_rejected"
	StatePaid               State = "paid"

	// Material request
	StateReleased          State = "released"
	StatePartiallyReturned State = "partially_returned"
	StateReturned          State = "returned"

	// Donation
	StateApproved State = "approved"

	// Booking
	StateCreated             State = "created"
	StatePaymentApproved     State = "payment_approved"
	StateAssignedSupervisor  State = "assigned_supervisor"
	StateAssignedCoach       State = "assigned_coach"
	StateRendered            State = "rendered"
	StateSupervisorConfirmed State = "supervisor_confirmed"
	StateManagerApproved     State = "manager_approved"

	// Duty
	StateOpen       State = "open"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

// ParticipantStatus tracks a youth's progress within a duty.
type ParticipantStatus string

const (
	ParticipantEnrolled  ParticipantStatus = "enrolled"
	ParticipantPresent   ParticipantStatus = "present"
	ParticipantAbsent    ParticipantStatus = "absent"
	ParticipantCompleted ParticipantStatus = "completed"
)

// IsTerminal reports whether a participant has reached a final attendance state.
func (s ParticipantStatus) IsTerminal() bool {
	return s == ParticipantCompleted || s == ParticipantAbsent
}

// Participant is a youth enrolled into a duty.
type Participant struct {
	YouthID  string            `json:"youthID"`
	Status   ParticipantStatus `json:"status"`
	JoinedAt time.Time         `json:"joinedAt"`
}

// WorkflowEntity is any record whose business meaning is defined by a finite
// lifecycle of named states: supply requests, material requests, donations,
// bookings and community-service duties.
type WorkflowEntity struct {
	EntityID string     `json:"entityID"` // Primary key (UUID)
	Kind     EntityKind `json:"kind"`
	State    State      `json:"state"`

	// OwnerID is the actor who created the entity; CounterpartyID is the actor
	// expected to act next where the workflow pins one (e.g. the supplier who
	// accepted a supply request).
	OwnerID        string  `json:"ownerID"`
	CounterpartyID *string `json:"counterpartyID,omitempty"`

	// SubjectRef names the ledger subject touched by this entity's effects:
	// a training material ID for stock movements, the organization ID for money.
	SubjectRef string `json:"subjectRef,omitempty"`

	// Quantity payloads (material + supply requests).
	Quantity         int64 `json:"quantity,omitempty"`
	QuantityIssued   int64 `json:"quantityIssued,omitempty"`
	QuantityReturned int64 `json:"quantityReturned,omitempty"`

	// Amount is the monetary value (donation amount, supply total price,
	// booking price) in KES.
	Amount decimal.Decimal `json:"amount"`

	// Reference carries an external payment reference (M-PESA code).
	Reference string `json:"reference,omitempty"`

	Title string `json:"title,omitempty"` // duty name / service title
	Note  string `json:"note,omitempty"`

	// Capacity, ScheduledAt and Participants apply to duties only.
	Capacity     int           `json:"capacity,omitempty"`
	ScheduledAt  time.Time     `json:"scheduledAt,omitzero"`
	Participants []Participant `json:"participants,omitempty"`

	// Version supports optimistic concurrency: every committed transition
	// increments it, and writes re-check it.
	Version int64 `json:"version"`

	AuditFields
}

// HistoryEntry is one immutable audit record of a transition. Ordering is by
// Seq (monotonic per entity), not wall clock, so clock skew across processes
// cannot reorder the trail.
type HistoryEntry struct {
	EntityID   string    `json:"entityID"`
	Seq        int64     `json:"seq"`
	ActorID    string    `json:"actorID"`
	ActorRole  Role      `json:"actorRole"`
	FromState  State     `json:"fromState"`
	ToState    State     `json:"toState"`
	Note       string    `json:"note,omitempty"`
	RecordedAt time.Time `json:"recordedAt"`
}

// TransitionEvent is published to the notification collaborator after a
// transition commits. Delivery is fire-and-forget.
type TransitionEvent struct {
	Kind      EntityKind `json:"kind"`
	EntityID  string     `json:"entityID"`
	FromState State      `json:"fromState"`
	ToState   State      `json:"toState"`
}
