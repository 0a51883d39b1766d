package usage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCost_KnownModel(t *testing.T) {
	// gpt-4o: $2.50/M input, $10.00/M output.
	assert.InDelta(t, 0.0125, Cost("gpt-4o", 1000, 1000), 1e-9)
	assert.InDelta(t, 0.0025, Cost("gpt-4o", 1000, 0), 1e-9)
}

func TestCost_RoundedToFourDecimals(t *testing.T) {
	// 123*0.15/1M + 456*0.60/1M = 0.00001845 + 0.0002736 rounds to 0.0003.
	assert.InDelta(t, 0.0003, Cost("gpt-4o-mini", 123, 456), 1e-9)
}

func TestCost_UnknownModelUsesDefaultRate(t *testing.T) {
	assert.Equal(t, Cost("gpt-4o-mini", 10000, 10000), Cost("some-new-model", 10000, 10000))
}

func TestCost_ZeroTokens(t *testing.T) {
	assert.Zero(t, Cost("gpt-4o", 0, 0))
}

func TestNewTokenUsage(t *testing.T) {
	u := NewTokenUsage("gpt-4o", 100, 50)
	assert.Equal(t, int64(100), u.PromptTokens)
	assert.Equal(t, int64(50), u.CompletionTokens)
	assert.Equal(t, int64(150), u.TotalTokens)
	assert.InDelta(t, Cost("gpt-4o", 100, 50), u.Cost, 1e-9)
}

func TestLimitsFor_UnknownTierFallsBackToFree(t *testing.T) {
	assert.Equal(t, LimitsFor(PlanFree), LimitsFor(PlanTier("ENTERPRISE")))
	assert.Equal(t, int64(10_000), LimitsFor(PlanFree).DailyTokens)
	assert.Greater(t, LimitsFor(PlanPro).DailyTokens, LimitsFor(PlanPremium).DailyTokens)
}
