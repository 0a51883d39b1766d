package nats

import (
	"time"

	"github.com/google/uuid"
)

// FetchTimeout is the default timeout for batch fetching messages from consumers.
const FetchTimeout = 2 * time.Second

// Stream names.
const (
	StreamEvents = "RESUMEFORGE_EVENTS"
)

// Subject constants.
const (
	SubjectAIRequest   = "resumeforge.events.ai"
	SubjectQuotaDenied = "resumeforge.events.quota"
	SubjectAuditEvent  = "resumeforge.events.audit"
)

// AIRequestEvent is published after an AI generation request completes.
type AIRequestEvent struct {
	RequestID        string    `json:"request_id"`
	UserID           uuid.UUID `json:"user_id"`
	ResumeID         uuid.UUID `json:"resume_id"`
	Feature          string    `json:"feature"`
	Model            string    `json:"model"`
	PromptTokens     int64     `json:"prompt_tokens"`
	CompletionTokens int64     `json:"completion_tokens"`
	Cost             float64   `json:"cost"`
	Timestamp        time.Time `json:"timestamp"`
}

// QuotaDeniedEvent is published when a request is rejected by quota checks.
type QuotaDeniedEvent struct {
	UserID          uuid.UUID `json:"user_id"`
	Feature         string    `json:"feature"`
	Reason          string    `json:"reason"`
	RequestedTokens int64     `json:"requested_tokens"`
	ResetAt         time.Time `json:"reset_at"`
	Timestamp       time.Time `json:"timestamp"`
}

// AuditEvent is published for compliance/audit logging.
type AuditEvent struct {
	UserID       uuid.UUID `json:"user_id"`
	EventType    string    `json:"event_type"`
	Severity     string    `json:"severity"` // info, warn, error
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id"`
	Details      string    `json:"details"`
	Timestamp    time.Time `json:"timestamp"`
}
