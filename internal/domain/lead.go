package domain

import (
	"encoding/json"
	"time"
)

// LeadCaptureForm is an embeddable opt-in form attached to a forum
type LeadCaptureForm struct {
	ID         int64     `json:"id"`
	ForumID    int64     `json:"forum_id"`
	Name       string    `json:"name"`
	Headline   string    `json:"headline,omitempty"`
	ButtonText string    `json:"button_text,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// LeadFormView is one render of a form; Converted marks views that
// ended in a submission
type LeadFormView struct {
	ID        int64     `json:"id"`
	FormID    int64     `json:"form_id"`
	Converted bool      `json:"converted"`
	ViewedAt  time.Time `json:"viewed_at"`
}

// LeadSubmission is a captured lead. Payload carries the submitted
// fields verbatim.
type LeadSubmission struct {
	ID        int64           `json:"id"`
	FormID    int64           `json:"form_id"`
	Email     string          `json:"email"`
	Name      string          `json:"name,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
