// Package orchestrator sequences rate limiting, session state, preference
// tracking, and product resolution for each inbound message, and decides
// the outbound action.
package orchestrator

import (
	"github.com/zetalabs/convo/internal/domain"
	"github.com/zetalabs/convo/internal/resolve"
)

// ActionKind classifies the outbound action. Channel adapters render each
// kind as channel-native UI; the core never formats markup.
type ActionKind string

const (
	ActionReplyText     ActionKind = "reply_text"
	ActionCandidateList ActionKind = "candidate_list"
	ActionClarification ActionKind = "clarification"
	ActionEscalationAck ActionKind = "escalation_ack"
)

// Action is the orchestrator's outbound decision for one inbound message.
type Action struct {
	Kind ActionKind `json:"kind"`

	// Text is the user-facing copy for reply_text and escalation_ack, and
	// the lead-in line for the other kinds.
	Text string `json:"text,omitempty"`

	Candidates []domain.Product       `json:"candidates,omitempty"`
	Filters    []resolve.FilterOption `json:"filters,omitempty"`

	EscalationID string `json:"escalation_id,omitempty"`
}

// Inbound is one normalized message from a channel adapter.
type Inbound struct {
	TenantID string `json:"tenant_id"`
	Channel  string `json:"channel"`
	UserID   string `json:"user_id"`
	UserName string `json:"user_name,omitempty"`

	Text string `json:"text,omitempty"`

	// Image carries the raw photo bytes when the user sent a picture.
	Image     []byte `json:"image,omitempty"`
	ImageMIME string `json:"image_mime,omitempty"`

	// FilterID is set when the user picked a clarification option in a
	// prior turn; the stashed query is then re-searched with the filter's
	// modifier.
	FilterID string `json:"filter_id,omitempty"`
}

// Key returns the session key for the message.
func (in Inbound) Key() domain.SessionKey {
	return domain.SessionKey{TenantID: in.TenantID, Channel: in.Channel, UserID: in.UserID}
}
