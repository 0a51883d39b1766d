package audit

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inats "github.com/resumeforge/resumeforge/internal/nats"
)

func TestConvertAuditEvent_ValidResourceID(t *testing.T) {
	resumeID := uuid.New()
	event := inats.AuditEvent{
		UserID:       uuid.New(),
		EventType:    "resume.deleted",
		Severity:     "info",
		ResourceType: "resume",
		ResourceID:   resumeID.String(),
		Details:      "Deleted by owner",
		Timestamp:    time.Now().UTC(),
	}

	log := convertAuditEvent(event)

	assert.Equal(t, event.UserID, log.UserID)
	assert.Equal(t, "resume.deleted", log.EventType)
	assert.Equal(t, "info", log.Severity)
	assert.Equal(t, "resume", log.ResourceType)
	require.NotNil(t, log.ResourceID)
	assert.Equal(t, resumeID, *log.ResourceID)

	var details map[string]string
	require.NoError(t, json.Unmarshal(log.Details, &details))
	assert.Equal(t, "Deleted by owner", details["message"])
}

func TestConvertAuditEvent_InvalidResourceID(t *testing.T) {
	event := inats.AuditEvent{
		UserID:     uuid.New(),
		EventType:  "user.login",
		Severity:   "info",
		ResourceID: "not-a-uuid",
		Timestamp:  time.Now().UTC(),
	}

	log := convertAuditEvent(event)
	assert.Nil(t, log.ResourceID)
}

func TestConvertAIEvent(t *testing.T) {
	userID := uuid.New()
	resumeID := uuid.New()
	event := inats.AIRequestEvent{
		RequestID:        "req-1",
		UserID:           userID,
		ResumeID:         resumeID,
		Feature:          "ats_analysis",
		Model:            "gpt-4o-mini",
		PromptTokens:     120,
		CompletionTokens: 30,
		Cost:             0.0023,
		Timestamp:        time.Now().UTC(),
	}

	log := convertAIEvent(event)

	assert.Equal(t, userID, log.UserID)
	assert.Equal(t, "ai.request.completed", log.EventType)
	assert.Equal(t, "info", log.Severity)
	assert.Equal(t, "resume", log.ResourceType)
	require.NotNil(t, log.ResourceID)
	assert.Equal(t, resumeID, *log.ResourceID)

	var details map[string]any
	require.NoError(t, json.Unmarshal(log.Details, &details))
	assert.Equal(t, "ats_analysis", details["feature"])
	assert.Equal(t, float64(120), details["prompt_tokens"])
}

func TestConvertQuotaEvent(t *testing.T) {
	event := inats.QuotaDeniedEvent{
		UserID:          uuid.New(),
		Feature:         "rewrite",
		Reason:          "Daily token limit exceeded",
		RequestedTokens: 600,
		ResetAt:         time.Now().UTC().Add(6 * time.Hour),
		Timestamp:       time.Now().UTC(),
	}

	log := convertQuotaEvent(event)

	assert.Equal(t, "quota.denied", log.EventType)
	assert.Equal(t, "warn", log.Severity)
	assert.Nil(t, log.ResourceID)

	var details map[string]any
	require.NoError(t, json.Unmarshal(log.Details, &details))
	assert.Equal(t, "Daily token limit exceeded", details["reason"])
}

func TestConvertMessage_UnknownSubject(t *testing.T) {
	_, err := convertMessage("resumeforge.events.bogus", []byte(`{}`))
	assert.Error(t, err)
}
