package domain

import "time"

// AuthEventType classifies an entry in the authentication audit trail.
type AuthEventType string

const (
	EventRegistered           AuthEventType = "registered"
	EventRegistrationRejected AuthEventType = "registration_rejected"
	EventLoginSucceeded       AuthEventType = "login_succeeded"
	EventLoginFailed          AuthEventType = "login_failed"
	EventTokenRejected        AuthEventType = "token_rejected"
	EventAccessDenied         AuthEventType = "access_denied"
)

// AuthEvent is a single audit record. Reason carries the server-side detail
// that is deliberately hidden from the client (e.g. "unknown username").
type AuthEvent struct {
	ID         string        `json:"id"`
	Type       AuthEventType `json:"type"`
	Username   string        `json:"username,omitempty"`
	Reason     string        `json:"reason,omitempty"`
	Method     string        `json:"method,omitempty"`
	Path       string        `json:"path,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}
