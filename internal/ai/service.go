package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/resumeforge/resumeforge/internal/metrics"
	"github.com/resumeforge/resumeforge/internal/nats"
	"github.com/resumeforge/resumeforge/internal/resumes"
	"github.com/resumeforge/resumeforge/internal/usage"
)

// QuotaError carries a denied quota decision up to the handler, which turns
// it into a 429 response.
type QuotaError struct {
	Decision usage.Decision
}

func (e *QuotaError) Error() string {
	return e.Decision.Reason
}

// GenerateResult is the outcome of a successful AI generation.
type GenerateResult struct {
	RequestID string           `json:"request_id"`
	Feature   Feature          `json:"feature"`
	Model     string           `json:"model"`
	Output    string           `json:"output"`
	Usage     usage.TokenUsage `json:"usage"`
}

// Service runs AI features against resumes with quota accounting around
// every call.
type Service struct {
	completer Completer
	tracker   *usage.Tracker
	plan      usage.PlanResolver
	publisher *nats.Publisher
}

func NewService(completer Completer, tracker *usage.Tracker, plan usage.PlanResolver, publisher *nats.Publisher) *Service {
	return &Service{
		completer: completer,
		tracker:   tracker,
		plan:      plan,
		publisher: publisher,
	}
}

// Generate checks quota, runs the completion, and records the actual spend
// exactly once. A denied quota returns *QuotaError; provider failures record
// nothing.
func (s *Service) Generate(ctx context.Context, userID uuid.UUID, resume *resumes.Resume, feature Feature, instructions string) (*GenerateResult, error) {
	systemPrompt, userPrompt := promptsFor(feature, resume.PlainText(), instructions)

	estimated := usage.EstimateTokens(systemPrompt + userPrompt)
	tier := s.plan(ctx, userID)

	decision := s.tracker.CheckRequest(ctx, userID, estimated, tier)
	if !decision.Allowed() {
		window := "daily"
		if strings.HasPrefix(decision.Reason, "Monthly") {
			window = "monthly"
		}
		metrics.QuotaDenialsTotal.WithLabelValues(window).Inc()
		metrics.AIRequestsTotal.WithLabelValues(string(feature), "denied").Inc()
		s.publishQuotaDenied(ctx, userID, feature, estimated, decision)
		return nil, &QuotaError{Decision: decision}
	}
	if decision.Verdict == usage.VerdictDegraded {
		slog.Warn("quota check degraded, allowing request", "user_id", userID, "feature", feature)
	}

	completion, err := s.completer.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		metrics.AIRequestsTotal.WithLabelValues(string(feature), "error").Inc()
		return nil, fmt.Errorf("running %s: %w", feature, err)
	}

	metrics.AIRequestsTotal.WithLabelValues(string(feature), "success").Inc()
	metrics.TokensConsumedTotal.WithLabelValues("prompt").Add(float64(completion.PromptTokens))
	metrics.TokensConsumedTotal.WithLabelValues("completion").Add(float64(completion.CompletionTokens))

	requestID := uuid.New().String()
	tokenUsage := usage.NewTokenUsage(completion.Model, completion.PromptTokens, completion.CompletionTokens)

	s.tracker.Record(ctx, userID, tokenUsage, usage.Metadata{
		Model:     completion.Model,
		Feature:   string(feature),
		RequestID: requestID,
	})

	s.publishCompleted(ctx, userID, resume.ID, feature, requestID, completion, tokenUsage)

	return &GenerateResult{
		RequestID: requestID,
		Feature:   feature,
		Model:     completion.Model,
		Output:    completion.Text,
		Usage:     tokenUsage,
	}, nil
}

func (s *Service) publishQuotaDenied(ctx context.Context, userID uuid.UUID, feature Feature, requested int64, decision usage.Decision) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishQuotaDenied(ctx, nats.QuotaDeniedEvent{
		UserID:          userID,
		Feature:         string(feature),
		Reason:          decision.Reason,
		RequestedTokens: requested,
		ResetAt:         decision.ResetAt,
		Timestamp:       time.Now().UTC(),
	})
	if err != nil {
		slog.Warn("publishing quota denied event", "error", err)
	}
}

func (s *Service) publishCompleted(ctx context.Context, userID, resumeID uuid.UUID, feature Feature, requestID string, completion *Completion, tokenUsage usage.TokenUsage) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishAIRequest(ctx, nats.AIRequestEvent{
		RequestID:        requestID,
		UserID:           userID,
		ResumeID:         resumeID,
		Feature:          string(feature),
		Model:            completion.Model,
		PromptTokens:     completion.PromptTokens,
		CompletionTokens: completion.CompletionTokens,
		Cost:             tokenUsage.Cost,
		Timestamp:        time.Now().UTC(),
	})
	if err != nil {
		slog.Warn("publishing ai request event", "error", err)
	}
}
