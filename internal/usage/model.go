package usage

import (
	"time"

	"github.com/google/uuid"
)

// TokenUsage is the actual spend of a single completed AI call.
type TokenUsage struct {
	PromptTokens     int64   `json:"prompt_tokens"`
	CompletionTokens int64   `json:"completion_tokens"`
	TotalTokens      int64   `json:"total_tokens"`
	Cost             float64 `json:"cost"`
}

// Metadata describes which model and product feature produced a usage record.
type Metadata struct {
	Model     string `json:"model"`
	Feature   string `json:"feature"`
	RequestID string `json:"request_id,omitempty"`
}

// UsageRecord is one append-only history entry. Created once per completed
// AI call, never mutated.
type UsageRecord struct {
	UserID    uuid.UUID  `json:"user_id"`
	Timestamp time.Time  `json:"timestamp"`
	Usage     TokenUsage `json:"usage"`
	Metadata  Metadata   `json:"metadata"`
}

// UsageLimit is the per-user quota view, reconstructed from the counter
// store on every read.
type UsageLimit struct {
	UserID       uuid.UUID `json:"user_id"`
	DailyLimit   int64     `json:"daily_limit"`
	MonthlyLimit int64     `json:"monthly_limit"`
	DailyUsed    int64     `json:"daily_used"`
	MonthlyUsed  int64     `json:"monthly_used"`
	ResetTime    time.Time `json:"reset_time"`
}

// Verdict distinguishes a genuine allow from a degraded (store down) allow,
// so callers and tests can tell the two apart.
type Verdict int

const (
	VerdictAllowed Verdict = iota
	VerdictDenied
	VerdictDegraded
)

func (v Verdict) String() string {
	switch v {
	case VerdictAllowed:
		return "allowed"
	case VerdictDenied:
		return "denied"
	case VerdictDegraded:
		return "degraded"
	}
	return "unknown"
}

// Decision is the result of a quota check. Quota exhaustion is data, not an
// error: handlers turn a denied Decision into a 429 response.
type Decision struct {
	Verdict Verdict   `json:"verdict"`
	Reason  string    `json:"reason,omitempty"`
	ResetAt time.Time `json:"reset_at,omitzero"`
}

// Allowed reports whether the request may proceed. Degraded counts as
// allowed: an outage in the accounting store must not block AI features.
func (d Decision) Allowed() bool {
	return d.Verdict != VerdictDenied
}

// LimitWarnings flags usage approaching plan limits.
type LimitWarnings struct {
	DailyWarning   bool    `json:"daily_warning"`
	MonthlyWarning bool    `json:"monthly_warning"`
	DailyPercent   float64 `json:"daily_percentage"`
	MonthlyPercent float64 `json:"monthly_percentage"`
}

// TimeRange selects the window for Stats.
type TimeRange string

const (
	RangeDay   TimeRange = "day"
	RangeWeek  TimeRange = "week"
	RangeMonth TimeRange = "month"
)

// FeatureUsage is one row of the per-feature breakdown.
type FeatureUsage struct {
	Feature string  `json:"feature"`
	Tokens  int64   `json:"tokens"`
	Cost    float64 `json:"cost"`
}

// DayUsage is one row of the per-day breakdown, keyed by UTC calendar date.
type DayUsage struct {
	Date     string  `json:"date"`
	Tokens   int64   `json:"tokens"`
	Cost     float64 `json:"cost"`
	Requests int64   `json:"requests"`
}

// Report aggregates history records over a time range.
type Report struct {
	TotalTokens       int64          `json:"total_tokens"`
	TotalCost         float64        `json:"total_cost"`
	TotalRequests     int64          `json:"total_requests"`
	AvgCostPerRequest float64        `json:"average_cost_per_request"`
	TopFeatures       []FeatureUsage `json:"top_features"`
	DailyBreakdown    []DayUsage     `json:"daily_breakdown"`
}

// ResetScope selects which counters an administrative reset clears.
type ResetScope string

const (
	ResetDaily   ResetScope = "daily"
	ResetMonthly ResetScope = "monthly"
	ResetAll     ResetScope = "all"
)
