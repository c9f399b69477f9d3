// Package audit records account and economy events: console links, issued
// tokens, granted items and saved profiles.
package audit

import "time"

// Action names an audited event.
type Action string

const (
	ActionUserLinked   Action = "user_linked"
	ActionTokenIssued  Action = "token_issued"
	ActionItemsGranted Action = "items_granted"
	ActionProfileSaved Action = "profile_saved"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Action    Action            `json:"action"`
	Timestamp time.Time         `json:"timestamp"`
	UserUUID  string            `json:"user_uuid,omitempty"`
	ConsoleID string            `json:"console_id,omitempty"`
	ClientIP  string            `json:"client_ip,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Detail    map[string]string `json:"detail,omitempty"`
}
