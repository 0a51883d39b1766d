// Package usage meters per-user AI token spend against daily and monthly
// plan quotas, backed by Redis counters with time-bounded keys.
//
// The tracker is deliberately soft: quota checks fail open when Redis is
// unreachable, and recording never surfaces an error into the request path.
// A lost usage record or a transient over-limit spend is acceptable;
// blocking the product on the accounting substrate is not.
package usage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// Counter buckets outlive their nominal window to tolerate clock skew
	// and late reads.
	dailyTTL    = 48 * time.Hour
	monthlyTTL  = 35 * 24 * time.Hour
	lifetimeTTL = 90 * 24 * time.Hour

	historyLimit = 1000

	warningThreshold = 80.0
)

// Hash fields shared by the daily, monthly and lifetime buckets.
const (
	fieldTokens   = "tokens"
	fieldCost     = "cost"
	fieldRequests = "requests"
)

// Tracker decides whether a user may spend more tokens and records actual
// spend after a request completes. All methods are safe for concurrent use;
// correctness under concurrency rests on Redis's atomic increments.
type Tracker struct {
	rdb redis.Cmdable
	now func() time.Time
}

// NewTracker creates a Tracker on the given Redis client.
func NewTracker(rdb redis.Cmdable) *Tracker {
	return &Tracker{rdb: rdb, now: time.Now}
}

// CheckRequest reports whether userID may spend requestedTokens more tokens
// right now under the given plan. The daily window is checked before the
// monthly one. Read-only; a passing check reserves nothing, so two
// concurrent requests can both pass and overshoot the limit slightly.
func (t *Tracker) CheckRequest(ctx context.Context, userID uuid.UUID, requestedTokens int64, tier PlanTier) Decision {
	now := t.now().UTC()
	limits := LimitsFor(tier)

	pipe := t.rdb.Pipeline()
	dailyCmd := pipe.HGet(ctx, dailyKey(userID, now), fieldTokens)
	monthlyCmd := pipe.HGet(ctx, monthlyKey(userID, now), fieldTokens)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		slog.Warn("usage: quota check failed, failing open", "error", err, "user_id", userID)
		return Decision{Verdict: VerdictDegraded, Reason: "usage store unavailable"}
	}

	dailyUsed := counterValue(dailyCmd)
	monthlyUsed := counterValue(monthlyCmd)

	if dailyUsed+requestedTokens > limits.DailyTokens {
		return Decision{
			Verdict: VerdictDenied,
			Reason:  "Daily token limit exceeded",
			ResetAt: nextDailyReset(now),
		}
	}
	if monthlyUsed+requestedTokens > limits.MonthlyTokens {
		return Decision{
			Verdict: VerdictDenied,
			Reason:  "Monthly token limit exceeded",
			ResetAt: nextMonthlyReset(now),
		}
	}
	return Decision{Verdict: VerdictAllowed}
}

// Record persists the actual spend of one completed AI call: daily and
// monthly counter buckets, the bounded history list, and lifetime stats with
// per-model and per-feature breakdowns. All writes go out as one pipelined
// batch. Failures are logged and dropped; Record must never fail the
// caller's request, so it returns nothing. Callers must invoke it exactly
// once per completed call, there is no deduplication.
func (t *Tracker) Record(ctx context.Context, userID uuid.UUID, u TokenUsage, meta Metadata) {
	now := t.now().UTC()

	payload, err := json.Marshal(UsageRecord{
		UserID:    userID,
		Timestamp: now,
		Usage:     u,
		Metadata:  meta,
	})
	if err != nil {
		slog.Error("usage: marshaling usage record", "error", err, "user_id", userID)
		return
	}

	dKey := dailyKey(userID, now)
	mKey := monthlyKey(userID, now)
	hKey := historyKey(userID)
	lKey := lifetimeKey(userID)

	pipe := t.rdb.Pipeline()

	pipe.HIncrBy(ctx, dKey, fieldTokens, u.TotalTokens)
	pipe.HIncrByFloat(ctx, dKey, fieldCost, u.Cost)
	pipe.HIncrBy(ctx, dKey, fieldRequests, 1)
	pipe.Expire(ctx, dKey, dailyTTL)

	pipe.HIncrBy(ctx, mKey, fieldTokens, u.TotalTokens)
	pipe.HIncrByFloat(ctx, mKey, fieldCost, u.Cost)
	pipe.HIncrBy(ctx, mKey, fieldRequests, 1)
	pipe.Expire(ctx, mKey, monthlyTTL)

	pipe.LPush(ctx, hKey, payload)
	pipe.LTrim(ctx, hKey, 0, historyLimit-1)

	pipe.HIncrBy(ctx, lKey, fieldTokens, u.TotalTokens)
	pipe.HIncrByFloat(ctx, lKey, fieldCost, u.Cost)
	pipe.HIncrBy(ctx, lKey, fieldRequests, 1)
	if meta.Model != "" {
		pipe.HIncrBy(ctx, lKey, "model:"+meta.Model+":"+fieldTokens, u.TotalTokens)
		pipe.HIncrByFloat(ctx, lKey, "model:"+meta.Model+":"+fieldCost, u.Cost)
	}
	if meta.Feature != "" {
		pipe.HIncrBy(ctx, lKey, "feature:"+meta.Feature+":"+fieldTokens, u.TotalTokens)
		pipe.HIncrByFloat(ctx, lKey, "feature:"+meta.Feature+":"+fieldCost, u.Cost)
	}
	pipe.Expire(ctx, lKey, lifetimeTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		slog.Error("usage: recording usage failed, record dropped", "error", err, "user_id", userID)
	}
}

// CurrentUsage returns today's and this month's totals for userID. Missing
// buckets read as zero. The limit fields carry FREE defaults; enforcement
// against the real plan happens in CheckRequest. On store errors it returns
// a zeroed view rather than an error.
func (t *Tracker) CurrentUsage(ctx context.Context, userID uuid.UUID) UsageLimit {
	now := t.now().UTC()
	free := LimitsFor(PlanFree)

	limit := UsageLimit{
		UserID:       userID,
		DailyLimit:   free.DailyTokens,
		MonthlyLimit: free.MonthlyTokens,
		ResetTime:    nextDailyReset(now),
	}

	pipe := t.rdb.Pipeline()
	dailyCmd := pipe.HGet(ctx, dailyKey(userID, now), fieldTokens)
	monthlyCmd := pipe.HGet(ctx, monthlyKey(userID, now), fieldTokens)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		slog.Warn("usage: reading current usage failed, returning zeroed view", "error", err, "user_id", userID)
		return limit
	}

	limit.DailyUsed = counterValue(dailyCmd)
	limit.MonthlyUsed = counterValue(monthlyCmd)
	return limit
}

// Warnings computes usage percentages against the plan's limits. A window
// is flagged once usage reaches 80% of its limit.
func (t *Tracker) Warnings(ctx context.Context, userID uuid.UUID, tier PlanTier) LimitWarnings {
	cur := t.CurrentUsage(ctx, userID)
	limits := LimitsFor(tier)

	w := LimitWarnings{
		DailyPercent:   percentage(cur.DailyUsed, limits.DailyTokens),
		MonthlyPercent: percentage(cur.MonthlyUsed, limits.MonthlyTokens),
	}
	w.DailyWarning = w.DailyPercent >= warningThreshold
	w.MonthlyWarning = w.MonthlyPercent >= warningThreshold
	return w
}

// Reset deletes the user's counter buckets for the given scope; ResetAll
// additionally clears history and lifetime stats. Administrative operation,
// not exposed to end users; unlike the metered path it surfaces store
// errors so the operator knows the reset did not happen.
func (t *Tracker) Reset(ctx context.Context, userID uuid.UUID, scope ResetScope) error {
	now := t.now().UTC()

	var keys []string
	switch scope {
	case ResetDaily:
		keys = []string{dailyKey(userID, now)}
	case ResetMonthly:
		keys = []string{monthlyKey(userID, now)}
	case ResetAll:
		keys = []string{
			dailyKey(userID, now),
			monthlyKey(userID, now),
			historyKey(userID),
			lifetimeKey(userID),
		}
	default:
		return nil
	}

	return t.rdb.Del(ctx, keys...).Err()
}

// RateLimitHeaders formats the user's current quota state as conventional
// rate-limit response headers. Remaining values are clamped to zero.
func (t *Tracker) RateLimitHeaders(ctx context.Context, userID uuid.UUID, tier PlanTier) map[string]string {
	cur := t.CurrentUsage(ctx, userID)
	limits := LimitsFor(tier)
	now := t.now().UTC()

	return map[string]string{
		"X-RateLimit-Limit-Daily":       strconv.FormatInt(limits.DailyTokens, 10),
		"X-RateLimit-Remaining-Daily":   strconv.FormatInt(clampZero(limits.DailyTokens-cur.DailyUsed), 10),
		"X-RateLimit-Reset-Daily":       strconv.FormatInt(nextDailyReset(now).Unix(), 10),
		"X-RateLimit-Limit-Monthly":     strconv.FormatInt(limits.MonthlyTokens, 10),
		"X-RateLimit-Remaining-Monthly": strconv.FormatInt(clampZero(limits.MonthlyTokens-cur.MonthlyUsed), 10),
		"X-RateLimit-Reset-Monthly":     strconv.FormatInt(nextMonthlyReset(now).Unix(), 10),
	}
}

// EstimateTokens approximates the token count of text as ceil(len/4). A
// crude pre-flight estimate by design: the provider's reported counts are
// what gets recorded, and a real tokenizer here would shift accept/reject
// outcomes at the margin.
func EstimateTokens(text string) int64 {
	return int64((len(text) + 3) / 4)
}

// counterValue reads an integer hash field, treating missing or malformed
// values as zero.
func counterValue(cmd *redis.StringCmd) int64 {
	v, err := cmd.Result()
	if err != nil {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func percentage(used, limit int64) float64 {
	if limit <= 0 {
		return 0
	}
	return float64(used) / float64(limit) * 100
}

func clampZero(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}
