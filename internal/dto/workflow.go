package dto

import (
	"time"

	"github.com/matbus-aora/aora-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateSupplyRequestRequest opens a procurement request for a material.
type CreateSupplyRequestRequest struct {
	MaterialID string `json:"materialID" binding:"required,uuid"`
	Quantity   int64  `json:"quantity" binding:"required,gt=0"`
	Note       string `json:"note"`
}

// CreateMaterialRequestRequest is a trainer asking for stock to be released.
type CreateMaterialRequestRequest struct {
	MaterialID string `json:"materialID" binding:"required,uuid"`
	Quantity   int64  `json:"quantity" binding:"required,gt=0"`
	Note       string `json:"note"`
}

// CreateDonationRequest records an M-PESA donation awaiting verification.
type CreateDonationRequest struct {
	MpesaCode string          `json:"mpesaCode" binding:"required,mpesacode"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
}

// CreateBookingRequest opens a gym/service booking.
type CreateBookingRequest struct {
	ServiceTitle string          `json:"serviceTitle" binding:"required"`
	Hours        int64           `json:"hours" binding:"required,gt=0"`
	TotalPrice   decimal.Decimal `json:"totalPrice" binding:"required"`
	PaymentCode  string          `json:"paymentCode" binding:"required,mpesacode"`
}

// CreateDutyRequest opens a community-service duty for enrollment.
type CreateDutyRequest struct {
	DutyName    string    `json:"dutyName" binding:"required"`
	Description string    `json:"description"`
	Location    string    `json:"location" binding:"required"`
	Date        time.Time `json:"date" binding:"required"`
	Capacity    int       `json:"capacity"`
}

// AttendanceRequest marks a duty participant's attendance sub-state.
type AttendanceRequest struct {
	YouthID string `json:"youthID" binding:"required,uuid"`
	Status  string `json:"status" binding:"required,oneof=present absent completed"`
}

// ListEntitiesParams filters and pages a kind's entity list.
type ListEntitiesParams struct {
	State     *string `form:"state"`
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ParticipantResponse is one enrolled youth.
type ParticipantResponse struct {
	YouthID  string    `json:"youthID"`
	Status   string    `json:"status"`
	JoinedAt time.Time `json:"joinedAt"`
}

// WorkflowEntityResponse is the wire shape of a workflow entity.
type WorkflowEntityResponse struct {
	EntityID         string                `json:"entityID"`
	Kind             string                `json:"kind"`
	State            string                `json:"state"`
	OwnerID          string                `json:"ownerID"`
	CounterpartyID   *string               `json:"counterpartyID,omitempty"`
	SubjectRef       string                `json:"subjectRef,omitempty"`
	Quantity         int64                 `json:"quantity,omitempty"`
	QuantityIssued   int64                 `json:"quantityIssued,omitempty"`
	QuantityReturned int64                 `json:"quantityReturned,omitempty"`
	Amount           decimal.Decimal       `json:"amount"`
	Reference        string                `json:"reference,omitempty"`
	Title            string                `json:"title,omitempty"`
	Note             string                `json:"note,omitempty"`
	Capacity         int                   `json:"capacity,omitempty"`
	ScheduledAt      time.Time             `json:"scheduledAt,omitzero"`
	Participants     []ParticipantResponse `json:"participants,omitempty"`
	CreatedAt        time.Time             `json:"createdAt"`
	LastUpdatedAt    time.Time             `json:"lastUpdatedAt"`
}

// ListEntitiesResponse pages entities with a cursor token.
type ListEntitiesResponse struct {
	Entities  []WorkflowEntityResponse `json:"entities"`
	NextToken *string                  `json:"nextToken,omitempty"`
}

// HistoryEntryResponse is one immutable audit record.
type HistoryEntryResponse struct {
	Seq        int64     `json:"seq"`
	ActorID    string    `json:"actorID"`
	ActorRole  string    `json:"actorRole"`
	FromState  string    `json:"fromState"`
	ToState    string    `json:"toState"`
	Note       string    `json:"note,omitempty"`
	RecordedAt time.Time `json:"recordedAt"`
}

// ToWorkflowEntityResponse converts a domain entity to its wire shape.
func ToWorkflowEntityResponse(e *domain.WorkflowEntity) WorkflowEntityResponse {
	resp := WorkflowEntityResponse{
		EntityID:         e.EntityID,
		Kind:             string(e.Kind),
		State:            string(e.State),
		OwnerID:          e.OwnerID,
		CounterpartyID:   e.CounterpartyID,
		SubjectRef:       e.SubjectRef,
		Quantity:         e.Quantity,
		QuantityIssued:   e.QuantityIssued,
		QuantityReturned: e.QuantityReturned,
		Amount:           e.Amount,
		Reference:        e.Reference,
		Title:            e.Title,
		Note:             e.Note,
		Capacity:         e.Capacity,
		ScheduledAt:      e.ScheduledAt,
		CreatedAt:        e.CreatedAt,
		LastUpdatedAt:    e.LastUpdatedAt,
	}
	if len(e.Participants) > 0 {
		resp.Participants = make([]ParticipantResponse, len(e.Participants))
		for i, p := range e.Participants {
			resp.Participants[i] = ParticipantResponse{
				YouthID:  p.YouthID,
				Status:   string(p.Status),
				JoinedAt: p.JoinedAt,
			}
		}
	}
	return resp
}

// ToHistoryEntryResponses converts an audit trail to its wire shape.
func ToHistoryEntryResponses(entries []domain.HistoryEntry) []HistoryEntryResponse {
	out := make([]HistoryEntryResponse, len(entries))
	for i, h := range entries {
		out[i] = HistoryEntryResponse{
			Seq:        h.Seq,
			ActorID:    h.ActorID,
			ActorRole:  string(h.ActorRole),
			FromState:  string(h.FromState),
			ToState:    string(h.ToState),
			Note:       h.Note,
			RecordedAt: h.RecordedAt,
		}
	}
	return out
}
