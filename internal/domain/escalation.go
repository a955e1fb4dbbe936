package domain

import (
	"time"
)

// EscalationStatus is the lifecycle state of a hand-off record.
type EscalationStatus string

const (
	EscalationPending   EscalationStatus = "pending"
	EscalationContacted EscalationStatus = "contacted"
	EscalationResolved  EscalationStatus = "resolved"
)

// Escalation reason codes used by the conversational core.
const (
	ReasonUserRequest  = "user_request"
	ReasonNotFound     = "not_found"
	ReasonComplexQuery = "complex_query"
)

// ValidEscalationStatus reports whether s is a known status value.
func ValidEscalationStatus(s EscalationStatus) bool {
	switch s {
	case EscalationPending, EscalationContacted, EscalationResolved:
		return true
	}
	return false
}

// Escalation is a hand-off record requesting human follow-up. Records are
// created by the orchestrator (or an explicit user request) and mutated only
// through the escalation manager's transition operation; the core never
// deletes them.
type Escalation struct {
	ID         string           `json:"id"`
	TenantID   string           `json:"tenant_id"`
	Channel    string           `json:"channel"`
	UserID     string           `json:"user_id"`
	UserName   string           `json:"user_name,omitempty"`
	ProductSKU string           `json:"product_sku,omitempty"`
	Reason     string           `json:"reason"`
	Excerpt    string           `json:"conversation_excerpt,omitempty"`
	Status     EscalationStatus `json:"status"`
	AssignedTo string           `json:"assigned_to,omitempty"`
	Notes      string           `json:"notes,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	// ResolvedAt is nil until the record enters resolved, after which it
	// is immutable.
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// CanTransition reports whether moving from the record's current status to
// next is permitted. Resolved is terminal: the only transition allowed out
// of it is the idempotent resolved -> resolved. Contacted is an optional
// intermediate, so pending -> resolved is also permitted.
func (e *Escalation) CanTransition(next EscalationStatus) bool {
	if !ValidEscalationStatus(next) {
		return false
	}
	if e.Status == EscalationResolved {
		return next == EscalationResolved
	}
	if e.Status == EscalationContacted && next == EscalationPending {
		return false
	}
	return true
}
