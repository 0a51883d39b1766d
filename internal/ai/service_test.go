package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resumeforge/resumeforge/internal/resumes"
	"github.com/resumeforge/resumeforge/internal/usage"
)

type fakeCompleter struct {
	completion *Completion
	err        error
	calls      int
}

func (f *fakeCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (*Completion, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.completion, nil
}

func freePlan(ctx context.Context, userID uuid.UUID) usage.PlanTier {
	return usage.PlanFree
}

func testResume() *resumes.Resume {
	return &resumes.Resume{
		ID:    uuid.New(),
		Title: "Backend Engineer",
		Basics: resumes.Basics{
			FullName: "Jamie Doe",
			Summary:  "Seven years building Go services.",
		},
	}
}

func setupService(t *testing.T, completer Completer) (*Service, *usage.Tracker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	tracker := usage.NewTracker(client)
	return NewService(completer, tracker, freePlan, nil), tracker, mr
}

func TestGenerate_RecordsActualUsage(t *testing.T) {
	completer := &fakeCompleter{completion: &Completion{
		Text:             "Rewritten content.",
		Model:            "gpt-4o-mini",
		PromptTokens:     120,
		CompletionTokens: 30,
	}}
	svc, tracker, _ := setupService(t, completer)
	userID := uuid.New()

	result, err := svc.Generate(context.Background(), userID, testResume(), FeatureRewrite, "")
	require.NoError(t, err)

	assert.Equal(t, FeatureRewrite, result.Feature)
	assert.Equal(t, "Rewritten content.", result.Output)
	assert.Equal(t, "gpt-4o-mini", result.Model)
	assert.NotEmpty(t, result.RequestID)
	assert.Equal(t, int64(150), result.Usage.TotalTokens)
	assert.Equal(t, 1, completer.calls)

	current := tracker.CurrentUsage(context.Background(), userID)
	assert.Equal(t, int64(150), current.DailyUsed)
}

func TestGenerate_QuotaDenied(t *testing.T) {
	completer := &fakeCompleter{completion: &Completion{Model: "gpt-4o-mini"}}
	svc, tracker, _ := setupService(t, completer)
	userID := uuid.New()

	// Exhaust the free daily limit first.
	tracker.Record(context.Background(), userID, usage.NewTokenUsage("gpt-4o-mini", 10_000, 0), usage.Metadata{Feature: "rewrite"})

	_, err := svc.Generate(context.Background(), userID, testResume(), FeatureSummary, "")
	require.Error(t, err)

	var quotaErr *QuotaError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, usage.VerdictDenied, quotaErr.Decision.Verdict)
	assert.False(t, quotaErr.Decision.ResetAt.IsZero())

	// The provider must never be called for a denied request.
	assert.Equal(t, 0, completer.calls)
}

func TestGenerate_ProviderFailureRecordsNothing(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("upstream timeout")}
	svc, tracker, _ := setupService(t, completer)
	userID := uuid.New()

	_, err := svc.Generate(context.Background(), userID, testResume(), FeatureATSAnalysis, "")
	require.Error(t, err)

	var quotaErr *QuotaError
	assert.False(t, errors.As(err, &quotaErr))

	current := tracker.CurrentUsage(context.Background(), userID)
	assert.Zero(t, current.DailyUsed)
}

func TestGenerate_StoreDownStillServes(t *testing.T) {
	completer := &fakeCompleter{completion: &Completion{
		Text:             "Summary.",
		Model:            "gpt-4o-mini",
		PromptTokens:     50,
		CompletionTokens: 20,
	}}
	svc, _, mr := setupService(t, completer)
	mr.Close()

	result, err := svc.Generate(context.Background(), uuid.New(), testResume(), FeatureSummary, "")
	require.NoError(t, err)
	assert.Equal(t, "Summary.", result.Output)
}

func TestParseFeature(t *testing.T) {
	for _, name := range []string{"rewrite", "summary", "ats_analysis"} {
		feature, ok := ParseFeature(name)
		assert.True(t, ok)
		assert.Equal(t, Feature(name), feature)
	}

	_, ok := ParseFeature("translate")
	assert.False(t, ok)
}
