package models

import (
	"encoding/json"
	"time"
)

// WebhookStatus tracks the outcome of the CRM dispatch for a submission
type WebhookStatus string

const (
	WebhookStatusPending WebhookStatus = "pending"
	WebhookStatusSuccess WebhookStatus = "success"
	WebhookStatusFailed  WebhookStatus = "failed"
)

// Submission is the persisted lead record. It is created once per
// successful submit; only the webhook status and response are mutated
// afterwards, once the async CRM dispatch resolves.
type Submission struct {
	ID              int64           `json:"id"`
	PublicID        string          `json:"public_id"`
	FinderType      FinderType      `json:"finder_type"`
	Payload         json.RawMessage `json:"payload"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	ContactHash     string          `json:"contact_hash"`
	SubmittedAt     time.Time       `json:"submitted_at"`
	WebhookStatus   WebhookStatus   `json:"webhook_status"`
	WebhookResponse string          `json:"webhook_response,omitempty"`
}

// Progress is an in-flight, unsubmitted wizard session keyed by the
// embedding page's session identifier, used for save/resume.
type Progress struct {
	ID          int64           `json:"id"`
	PublicID    string          `json:"public_id"`
	SessionID   string          `json:"session_id"`
	FinderType  FinderType      `json:"finder_type"`
	CurrentStep int             `json:"current_step"`
	PartialData json.RawMessage `json:"partial_data"`
	Completed   bool            `json:"completed"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
