package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	inats "github.com/resumeforge/resumeforge/internal/nats"
)

// Consumer listens on the event stream and persists entries to the database.
// All event types end up in audit_logs so a user's activity trail is complete.
type Consumer struct {
	repo        *Repository
	consumerMgr *inats.ConsumerManager
}

// NewConsumer creates a new audit event Consumer.
func NewConsumer(repo *Repository, consumerMgr *inats.ConsumerManager) *Consumer {
	return &Consumer{
		repo:        repo,
		consumerMgr: consumerMgr,
	}
}

// Start begins the consume loop. Blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	consumer, err := c.consumerMgr.EnsureConsumer(ctx, inats.StreamEvents, "audit-persister", "resumeforge.events.>")
	if err != nil {
		return err
	}

	slog.Info("audit consumer started", "consumer", "audit-persister")

	for {
		msgs, err := consumer.Fetch(10, jetstream.FetchMaxWait(inats.FetchTimeout))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Debug("audit consumer: fetching events", "error", err)
			continue
		}

		for msg := range msgs.Messages() {
			c.handleEvent(ctx, msg)
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *Consumer) handleEvent(ctx context.Context, msg jetstream.Msg) {
	log, err := convertMessage(msg.Subject(), msg.Data())
	if err != nil {
		slog.Error("audit consumer: converting event", "subject", msg.Subject(), "error", err)
		_ = msg.Nak()
		return
	}

	if err := c.repo.Insert(ctx, log); err != nil {
		slog.Error("audit consumer: persisting audit log", "error", err, "event_type", log.EventType)
		_ = msg.Nak()
		return
	}

	_ = msg.Ack()

	slog.Debug("audit consumer: persisted event",
		"event_type", log.EventType,
		"user_id", log.UserID,
	)
}

func convertMessage(subject string, data []byte) (*AuditLog, error) {
	switch subject {
	case inats.SubjectAuditEvent:
		var event inats.AuditEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, err
		}
		return convertAuditEvent(event), nil
	case inats.SubjectAIRequest:
		var event inats.AIRequestEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, err
		}
		return convertAIEvent(event), nil
	case inats.SubjectQuotaDenied:
		var event inats.QuotaDeniedEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, err
		}
		return convertQuotaEvent(event), nil
	default:
		return nil, fmt.Errorf("unknown event subject %s", subject)
	}
}

func convertAuditEvent(event inats.AuditEvent) *AuditLog {
	log := &AuditLog{
		ID:           uuid.New(),
		UserID:       event.UserID,
		EventType:    event.EventType,
		Severity:     event.Severity,
		ResourceType: event.ResourceType,
		CreatedAt:    event.Timestamp,
	}

	// ResourceID may be a non-UUID string; use nil on failure
	if event.ResourceID != "" {
		if parsed, err := uuid.Parse(event.ResourceID); err == nil {
			log.ResourceID = &parsed
		}
	}

	detailsMap := map[string]string{"message": event.Details}
	if data, err := json.Marshal(detailsMap); err == nil {
		log.Details = data
	}

	return log
}

func convertAIEvent(event inats.AIRequestEvent) *AuditLog {
	log := &AuditLog{
		ID:           uuid.New(),
		UserID:       event.UserID,
		EventType:    "ai.request.completed",
		Severity:     "info",
		ResourceType: "resume",
		CreatedAt:    event.Timestamp,
	}
	if event.ResumeID != uuid.Nil {
		id := event.ResumeID
		log.ResourceID = &id
	}

	details := map[string]any{
		"request_id":        event.RequestID,
		"feature":           event.Feature,
		"model":             event.Model,
		"prompt_tokens":     event.PromptTokens,
		"completion_tokens": event.CompletionTokens,
		"cost":              event.Cost,
	}
	if data, err := json.Marshal(details); err == nil {
		log.Details = data
	}

	return log
}

func convertQuotaEvent(event inats.QuotaDeniedEvent) *AuditLog {
	log := &AuditLog{
		ID:           uuid.New(),
		UserID:       event.UserID,
		EventType:    "quota.denied",
		Severity:     "warn",
		ResourceType: "quota",
		CreatedAt:    event.Timestamp,
	}

	details := map[string]any{
		"feature":          event.Feature,
		"reason":           event.Reason,
		"requested_tokens": event.RequestedTokens,
		"reset_at":         event.ResetAt,
	}
	if data, err := json.Marshal(details); err == nil {
		log.Details = data
	}

	return log
}
