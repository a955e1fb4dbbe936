// Package domain contains core domain types for the conversational engine.
package domain

import (
	"time"
)

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single message in a conversation, either from the user or
// from the assistant.
type Turn struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionKey identifies one user's conversation within a tenant and channel.
// Rate windows, history and pending state are all scoped by this key so
// concurrent users never contend.
type SessionKey struct {
	TenantID string `json:"tenant_id"`
	Channel  string `json:"channel"`
	UserID   string `json:"user_id"`
}

// String renders the key in "tenant:channel:user" form for storage backends.
func (k SessionKey) String() string {
	return k.TenantID + ":" + k.Channel + ":" + k.UserID
}
