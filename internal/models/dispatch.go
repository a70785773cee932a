package models

// Dispatch statuses reported per onboarding message.
const (
	DispatchSent   = "sent"
	DispatchFailed = "failed"
)

// DispatchOutcome is the result of sending one onboarding message.
type DispatchOutcome struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Status    string `json:"status"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}
