package domain

import (
	"fmt"

	"github.com/matbus-aora/aora-backend/internal/apperrors"
	"github.com/matbus-aora/aora-backend/internal/utils/mpesa"
	"github.com/shopspring/decimal"
)

// EffectDirection says which way a ledger effect moves the balance.
type EffectDirection string

const (
	EffectCredit EffectDirection = "CREDIT"
	EffectDebit  EffectDirection = "DEBIT"
)

// AmountSource says where a ledger effect takes its magnitude from.
type AmountSource string

const (
	// AmountFromQuantity uses the entity's requested/supplied quantity.
	AmountFromQuantity AmountSource = "ENTITY_QUANTITY"
	// AmountFromPayloadQuantity uses the quantity carried by the command
	// payload (partial material returns).
	AmountFromPayloadQuantity AmountSource = "PAYLOAD_QUANTITY"
	// AmountFromEntityAmount uses the entity's monetary amount.
	AmountFromEntityAmount AmountSource = "ENTITY_AMOUNT"
)

// EffectSubject selects which ledger account a transition effect touches.
// The zero value resolves to the account named by the entity's SubjectRef;
// OnOrgFinance resolves to the organization's money account. A supply request
// needs both: its stock credit lands on the material account, its payment
// debit on the organization account.
type EffectSubject string

const (
	OnEntitySubject EffectSubject = ""
	OnOrgFinance    EffectSubject = "ORG_FINANCE"
)

// LedgerEffect is the declarative stock/money side effect of a transition.
type LedgerEffect struct {
	Direction EffectDirection
	Source    AmountSource
	Subject   EffectSubject
}

// Amount resolves the effect's magnitude for a concrete entity and payload.
func (le LedgerEffect) Amount(e *WorkflowEntity, p TransitionPayload) decimal.Decimal {
	switch le.Source {
	case AmountFromQuantity:
		return decimal.NewFromInt(e.Quantity)
	case AmountFromPayloadQuantity:
		return decimal.NewFromInt(p.Quantity)
	default:
		return e.Amount
	}
}

// AccountRef resolves which ledger account the effect touches.
func (le LedgerEffect) AccountRef(e *WorkflowEntity, orgSubjectRef string) string {
	if le.Subject == OnOrgFinance {
		return orgSubjectRef
	}
	return e.SubjectRef
}

// TransitionPayload carries the caller-supplied data a transition may need.
type TransitionPayload struct {
	Quantity  int64           `json:"quantity,omitempty"`  // units returned, etc.
	UnitPrice decimal.Decimal `json:"unitPrice,omitempty"` // supplier quote per unit
	Reference string          `json:"reference,omitempty"` // M-PESA code
	Note      string          `json:"note,omitempty"`
}

// GuardFunc is a precondition beyond state matching. Guard failures surface
// as ErrInvalidTransition or ErrValidation and abort before any write.
type GuardFunc func(e *WorkflowEntity, p TransitionPayload) error

// ApplyFunc mutates entity fields alongside the state change (quantities
// issued, counterparty assignment). Runs inside the same transaction.
type ApplyFunc func(e *WorkflowEntity, p TransitionPayload, actorID string)

// TransitionRule maps (kind, from, to) to the role allowed to perform it and
// the side effects it carries. The rule table below is the single place every
// state machine in the system is declared; there is no per-route transition
// logic anywhere else.
type TransitionRule struct {
	From                State
	To                  State
	RequiredRole        Role
	RequireOwner        bool // actor must be the entity owner (e.g. returning trainer)
	RequireCounterparty bool // actor must be the pinned counterparty (e.g. accepting supplier)
	Effect              *LedgerEffect
	Guard               GuardFunc
	Apply               ApplyFunc
}

// --- Guards ---

func guardUnitPricePositive(_ *WorkflowEntity, p TransitionPayload) error {
	if p.UnitPrice.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: unit price must be positive", apperrors.ErrValidation)
	}
	return nil
}

func guardValidMpesaReference(_ *WorkflowEntity, p TransitionPayload) error {
	if !mpesa.ValidateCode(p.Reference) {
		return fmt.Errorf("%w: invalid M-PESA code", apperrors.ErrValidation)
	}
	return nil
}

func guardEntityMpesaReference(e *WorkflowEntity, _ TransitionPayload) error {
	if !mpesa.ValidateCode(e.Reference) {
		return fmt.Errorf("%w: invalid M-PESA code on record", apperrors.ErrValidation)
	}
	return nil
}

func outstandingReturn(e *WorkflowEntity) int64 {
	return e.QuantityIssued - e.QuantityReturned
}

func guardPartialReturn(e *WorkflowEntity, p TransitionPayload) error {
	out := outstandingReturn(e)
	if p.Quantity <= 0 || p.Quantity >= out {
		return fmt.Errorf("%w: partial return quantity must be >0 and < %d", apperrors.ErrValidation, out)
	}
	return nil
}

func guardFullReturn(e *WorkflowEntity, p TransitionPayload) error {
	out := outstandingReturn(e)
	if out <= 0 || p.Quantity != out {
		return fmt.Errorf("%w: full return must cover the outstanding %d units", apperrors.ErrValidation, out)
	}
	return nil
}

func guardAllParticipantsTerminal(e *WorkflowEntity, _ TransitionPayload) error {
	for _, part := range e.Participants {
		if !part.Status.IsTerminal() {
			return fmt.Errorf("%w: participant %s has not completed the duty", apperrors.ErrInvalidTransition, part.YouthID)
		}
	}
	return nil
}

// --- Applies ---

func applySupplierQuote(e *WorkflowEntity, p TransitionPayload, actorID string) {
	e.CounterpartyID = &actorID
	e.Amount = p.UnitPrice.Mul(decimal.NewFromInt(e.Quantity))
}

func applyCounterparty(e *WorkflowEntity, _ TransitionPayload, actorID string) {
	e.CounterpartyID = &actorID
}

func applyIssueRequested(e *WorkflowEntity, _ TransitionPayload, _ string) {
	e.QuantityIssued = e.Quantity
}

func applyReturn(e *WorkflowEntity, p TransitionPayload, _ string) {
	e.QuantityReturned += p.Quantity
}

func applyPaymentReference(e *WorkflowEntity, p TransitionPayload, _ string) {
	e.Reference = p.Reference
}

// --- Rule table ---

var ruleTable = map[EntityKind][]TransitionRule{
	KindSupplyRequest: {
		{From: StatePending, To: StateAcceptedBySupplier, RequiredRole: RoleSupplier,
			Guard: guardUnitPricePositive, Apply: applySupplierQuote},
		{From: StatePending, To: StateRejectedBySupplier, RequiredRole: RoleSupplier,
			Apply: applyCounterparty},
		{From: StateAcceptedBySupplier, To: StateDelivered, RequiredRole: RoleSupplier,
			RequireCounterparty: true},
		{From: StateDelivered, To: StateInventoryAccepted, RequiredRole: RoleInventory,
			Effect: &LedgerEffect{Direction: EffectCredit, Source: AmountFromQuantity}},
		{From: StateDelivered, To: StateInventoryRejected, RequiredRole: RoleInventory},
		{From: StateInventoryAccepted, To: StatePaid, RequiredRole: RoleFinanceManager,
			Guard: guardValidMpesaReference, Apply: applyPaymentReference,
			Effect: &LedgerEffect{Direction: EffectDebit, Source: AmountFromEntityAmount, Subject: OnOrgFinance}},
	},
	KindMaterialRequest: {
		{From: StatePending, To: StateReleased, RequiredRole: RoleInventory,
			Apply: applyIssueRequested,
			Effect: &LedgerEffect{Direction: EffectDebit, Source: AmountFromQuantity}},
		{From: StatePending, To: StateRejected, RequiredRole: RoleInventory},
		{From: StateReleased, To: StatePartiallyReturned, RequiredRole: RoleTrainer,
			RequireOwner: true, Guard: guardPartialReturn, Apply: applyReturn,
			Effect: &LedgerEffect{Direction: EffectCredit, Source: AmountFromPayloadQuantity}},
		{From: StateReleased, To: StateReturned, RequiredRole: RoleTrainer,
			RequireOwner: true, Guard: guardFullReturn, Apply: applyReturn,
			Effect: &LedgerEffect{Direction: EffectCredit, Source: AmountFromPayloadQuantity}},
		{From: StatePartiallyReturned, To: StatePartiallyReturned, RequiredRole: RoleTrainer,
			RequireOwner: true, Guard: guardPartialReturn, Apply: applyReturn,
			Effect: &LedgerEffect{Direction: EffectCredit, Source: AmountFromPayloadQuantity}},
		{From: StatePartiallyReturned, To: StateReturned, RequiredRole: RoleTrainer,
			RequireOwner: true, Guard: guardFullReturn, Apply: applyReturn,
			Effect: &LedgerEffect{Direction: EffectCredit, Source: AmountFromPayloadQuantity}},
	},
	KindDonation: {
		{From: StatePending, To: StateApproved, RequiredRole: RoleFinanceManager,
			Guard:  guardEntityMpesaReference,
			Effect: &LedgerEffect{Direction: EffectCredit, Source: AmountFromEntityAmount, Subject: OnOrgFinance}},
		{From: StatePending, To: StateRejected, RequiredRole: RoleFinanceManager},
	},
	KindBooking: {
		{From: StateCreated, To: StatePaymentApproved, RequiredRole: RoleFinanceManager,
			Guard: guardEntityMpesaReference},
		{From: StatePaymentApproved, To: StateAssignedSupervisor, RequiredRole: RoleServiceManager},
		{From: StateAssignedSupervisor, To: StateAssignedCoach, RequiredRole: RoleServiceManager},
		{From: StateAssignedCoach, To: StateRendered, RequiredRole: RoleMentor},
		{From: StateRendered, To: StateSupervisorConfirmed, RequiredRole: RoleCoordinator},
		{From: StateSupervisorConfirmed, To: StateManagerApproved, RequiredRole: RoleServiceManager},
	},
	KindDuty: {
		{From: StateOpen, To: StateInProgress, RequiredRole: RoleCoordinator},
		{From: StateInProgress, To: StateCompleted, RequiredRole: RoleCoordinator},
		{From: StateCompleted, To: StateApproved, RequiredRole: RoleDutiesManager,
			Guard: guardAllParticipantsTerminal},
	},
}

// stateSets declares the full state set per kind. Every rule endpoint must be
// a member; the invariant is enforced by tests.
var stateSets = map[EntityKind][]State{
	KindSupplyRequest: {StatePending, StateAcceptedBySupplier, StateRejectedBySupplier,
		StateDelivered, StateInventoryAccepted, StateInventoryRejected, StatePaid},
	KindMaterialRequest: {StatePending, StateRejected, StateReleased,
		StatePartiallyReturned, StateReturned},
	KindDonation: {StatePending, StateApproved, StateRejected},
	KindBooking: {StateCreated, StatePaymentApproved, StateAssignedSupervisor,
		StateAssignedCoach, StateRendered, StateSupervisorConfirmed, StateManagerApproved},
	KindDuty: {StateOpen, StateInProgress, StateCompleted, StateApproved},
}

var initialStates = map[EntityKind]State{
	KindSupplyRequest:   StatePending,
	KindMaterialRequest: StatePending,
	KindDonation:        StatePending,
	KindBooking:         StateCreated,
	KindDuty:            StateOpen,
}

// KnownKinds returns every entity kind with a declared state machine.
func KnownKinds() []EntityKind {
	kinds := make([]EntityKind, 0, len(ruleTable))
	for k := range ruleTable {
		kinds = append(kinds, k)
	}
	return kinds
}

// RulesFor returns the transition rules declared for a kind.
func RulesFor(kind EntityKind) []TransitionRule {
	return ruleTable[kind]
}

// StatesFor returns the declared state set for a kind.
func StatesFor(kind EntityKind) []State {
	return stateSets[kind]
}

// InitialState returns the state a freshly created entity of the kind starts in.
func InitialState(kind EntityKind) State {
	return initialStates[kind]
}

// FindRule looks up the rule for (kind, from, to). Absence of a rule is the
// general form of every "request already processed" guard.
func FindRule(kind EntityKind, from, to State) (*TransitionRule, bool) {
	for i := range ruleTable[kind] {
		r := &ruleTable[kind][i]
		if r.From == from && r.To == to {
			return r, true
		}
	}
	return nil, false
}

// RolesForTarget returns the distinct roles that any rule of the kind names
// for reaching toState, regardless of source state. The command dispatcher
// uses this as its coarse pre-check before the engine runs the exact match.
func RolesForTarget(kind EntityKind, to State) []Role {
	seen := make(map[Role]struct{})
	roles := make([]Role, 0, 2)
	for _, r := range ruleTable[kind] {
		if r.To != to {
			continue
		}
		if _, ok := seen[r.RequiredRole]; !ok {
			seen[r.RequiredRole] = struct{}{}
			roles = append(roles, r.RequiredRole)
		}
	}
	return roles
}

// IsTerminal reports whether a state admits no further transitions for the kind.
func IsTerminal(kind EntityKind, state State) bool {
	for _, r := range ruleTable[kind] {
		if r.From == state {
			return false
		}
	}
	return true
}
