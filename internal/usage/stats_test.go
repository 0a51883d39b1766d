package usage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats_SingleRecordScenario(t *testing.T) {
	tracker, _ := setupTracker(t)
	ctx := context.Background()
	userID := uuid.New()

	tracker.Record(ctx, userID, TokenUsage{
		PromptTokens:     100,
		CompletionTokens: 50,
		TotalTokens:      150,
		Cost:             0.0023,
	}, Metadata{Model: "gpt-4o-mini", Feature: "ats_analysis"})

	report := tracker.Stats(ctx, userID, RangeDay)
	assert.Equal(t, int64(150), report.TotalTokens)
	assert.Equal(t, int64(1), report.TotalRequests)
	assert.InDelta(t, 0.0023, report.TotalCost, 1e-9)
	assert.InDelta(t, 0.0023, report.AvgCostPerRequest, 1e-9)

	require.Len(t, report.TopFeatures, 1)
	assert.Equal(t, "ats_analysis", report.TopFeatures[0].Feature)
	assert.Equal(t, int64(150), report.TopFeatures[0].Tokens)
	assert.InDelta(t, 0.0023, report.TopFeatures[0].Cost, 1e-9)

	require.Len(t, report.DailyBreakdown, 1)
	assert.Equal(t, int64(1), report.DailyBreakdown[0].Requests)
}

func TestStats_EmptyHistory(t *testing.T) {
	tracker, _ := setupTracker(t)

	report := tracker.Stats(context.Background(), uuid.New(), RangeMonth)
	assert.Zero(t, report.TotalTokens)
	assert.Zero(t, report.TotalRequests)
	assert.Zero(t, report.TotalCost)
	assert.Zero(t, report.AvgCostPerRequest)
	assert.Empty(t, report.TopFeatures)
	assert.Empty(t, report.DailyBreakdown)
}

func TestStats_DayRangeExcludesOldRecords(t *testing.T) {
	tracker, _ := setupTracker(t)
	ctx := context.Background()
	userID := uuid.New()

	base := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tracker.now = fixedNow(base.Add(-25 * time.Hour))
	tracker.Record(ctx, userID, TokenUsage{TotalTokens: 100}, Metadata{Feature: "rewrite"})

	tracker.now = fixedNow(base.Add(-time.Hour))
	tracker.Record(ctx, userID, TokenUsage{TotalTokens: 50}, Metadata{Feature: "summary"})

	tracker.now = fixedNow(base)
	report := tracker.Stats(ctx, userID, RangeDay)
	assert.Equal(t, int64(50), report.TotalTokens)
	assert.Equal(t, int64(1), report.TotalRequests)

	// The week range still sees both.
	report = tracker.Stats(ctx, userID, RangeWeek)
	assert.Equal(t, int64(150), report.TotalTokens)
}

func TestStats_RecordExactlyAtCutoffIncluded(t *testing.T) {
	tracker, _ := setupTracker(t)
	ctx := context.Background()
	userID := uuid.New()

	base := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tracker.now = fixedNow(base.Add(-24 * time.Hour))
	tracker.Record(ctx, userID, TokenUsage{TotalTokens: 75}, Metadata{Feature: "rewrite"})

	tracker.now = fixedNow(base)
	report := tracker.Stats(ctx, userID, RangeDay)
	assert.Equal(t, int64(75), report.TotalTokens, "record exactly at the cutoff instant is included")
}

func TestStats_MonthRangeExcludesOlderThanCalendarMonth(t *testing.T) {
	tracker, _ := setupTracker(t)
	ctx := context.Background()
	userID := uuid.New()

	base := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tracker.now = fixedNow(base.AddDate(0, -1, -1))
	tracker.Record(ctx, userID, TokenUsage{TotalTokens: 999}, Metadata{Feature: "rewrite"})

	tracker.now = fixedNow(base.AddDate(0, 0, -10))
	tracker.Record(ctx, userID, TokenUsage{TotalTokens: 30}, Metadata{Feature: "rewrite"})

	tracker.now = fixedNow(base)
	report := tracker.Stats(ctx, userID, RangeMonth)
	assert.Equal(t, int64(30), report.TotalTokens)
}

func TestStats_TopFeaturesSortedAndCapped(t *testing.T) {
	tracker, _ := setupTracker(t)
	ctx := context.Background()
	userID := uuid.New()

	features := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"}
	for i, f := range features {
		tracker.Record(ctx, userID, TokenUsage{TotalTokens: int64((i + 1) * 10)}, Metadata{Feature: f})
	}

	report := tracker.Stats(ctx, userID, RangeDay)
	require.Len(t, report.TopFeatures, 10)
	assert.Equal(t, "l", report.TopFeatures[0].Feature)
	assert.Equal(t, int64(120), report.TopFeatures[0].Tokens)
	for i := 1; i < len(report.TopFeatures); i++ {
		assert.GreaterOrEqual(t, report.TopFeatures[i-1].Tokens, report.TopFeatures[i].Tokens)
	}
}

func TestStats_DailyBreakdownAscendingByDate(t *testing.T) {
	tracker, _ := setupTracker(t)
	ctx := context.Background()
	userID := uuid.New()

	base := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	// Record newest first; the breakdown must still come back ascending.
	tracker.now = fixedNow(base)
	tracker.Record(ctx, userID, TokenUsage{TotalTokens: 30, Cost: 0.003}, Metadata{Feature: "rewrite"})

	tracker.now = fixedNow(base.AddDate(0, 0, -2))
	tracker.Record(ctx, userID, TokenUsage{TotalTokens: 10, Cost: 0.001}, Metadata{Feature: "rewrite"})

	tracker.now = fixedNow(base.AddDate(0, 0, -1))
	tracker.Record(ctx, userID, TokenUsage{TotalTokens: 20, Cost: 0.002}, Metadata{Feature: "rewrite"})

	tracker.now = fixedNow(base)
	report := tracker.Stats(ctx, userID, RangeWeek)
	require.Len(t, report.DailyBreakdown, 3)
	assert.Equal(t, "2025-06-13", report.DailyBreakdown[0].Date)
	assert.Equal(t, "2025-06-14", report.DailyBreakdown[1].Date)
	assert.Equal(t, "2025-06-15", report.DailyBreakdown[2].Date)
	assert.Equal(t, int64(10), report.DailyBreakdown[0].Tokens)
}

func TestStats_AverageCostZeroWhenNoRequests(t *testing.T) {
	tracker, _ := setupTracker(t)
	ctx := context.Background()
	userID := uuid.New()

	// Only an old record; the day window is empty.
	tracker.now = fixedNow(time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))
	tracker.Record(ctx, userID, TokenUsage{TotalTokens: 100, Cost: 0.01}, Metadata{Feature: "rewrite"})

	tracker.now = fixedNow(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	report := tracker.Stats(ctx, userID, RangeDay)
	assert.Zero(t, report.TotalRequests)
	assert.Zero(t, report.AvgCostPerRequest)
}

func TestStats_SkipsMalformedEntries(t *testing.T) {
	tracker, mr := setupTracker(t)
	ctx := context.Background()
	userID := uuid.New()

	mr.Lpush(historyKey(userID), "{not json")
	tracker.Record(ctx, userID, TokenUsage{TotalTokens: 40}, Metadata{Feature: "rewrite"})

	report := tracker.Stats(ctx, userID, RangeDay)
	assert.Equal(t, int64(40), report.TotalTokens)
	assert.Equal(t, int64(1), report.TotalRequests)
}
