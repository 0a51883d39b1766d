package usage

// PlanTier identifies a subscription plan. Tiers and their limits are fixed
// configuration, not user data.
type PlanTier string

const (
	PlanFree    PlanTier = "FREE"
	PlanPremium PlanTier = "PREMIUM"
	PlanPro     PlanTier = "PRO"
)

// PlanLimits holds the token ceilings for one tier.
type PlanLimits struct {
	DailyTokens   int64 `json:"daily_tokens"`
	MonthlyTokens int64 `json:"monthly_tokens"`
}

var planLimits = map[PlanTier]PlanLimits{
	PlanFree:    {DailyTokens: 10_000, MonthlyTokens: 100_000},
	PlanPremium: {DailyTokens: 100_000, MonthlyTokens: 2_000_000},
	PlanPro:     {DailyTokens: 500_000, MonthlyTokens: 10_000_000},
}

// LimitsFor returns the limits for a tier. Unknown tiers get FREE limits.
func LimitsFor(tier PlanTier) PlanLimits {
	if limits, ok := planLimits[tier]; ok {
		return limits
	}
	return planLimits[PlanFree]
}
