package usage

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const topFeatureCount = 10

// Stats aggregates the user's history records over the given time range:
// totals, top features by tokens, and a per-day breakdown. Records exactly
// at the cutoff instant are included. Returns an all-zero report on store
// errors.
func (t *Tracker) Stats(ctx context.Context, userID uuid.UUID, rng TimeRange) Report {
	report := Report{
		TopFeatures:    []FeatureUsage{},
		DailyBreakdown: []DayUsage{},
	}

	vals, err := t.rdb.LRange(ctx, historyKey(userID), 0, -1).Result()
	if err != nil {
		slog.Warn("usage: loading history failed, returning empty report", "error", err, "user_id", userID)
		return report
	}

	now := t.now().UTC()
	cutoff := cutoffFor(now, rng)

	totalCost := decimal.Zero
	featureTokens := map[string]int64{}
	featureCost := map[string]decimal.Decimal{}
	days := map[string]*DayUsage{}
	dayCost := map[string]decimal.Decimal{}

	for _, v := range vals {
		var rec UsageRecord
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			continue // skip malformed entries
		}
		if rec.Timestamp.Before(cutoff) {
			continue
		}

		cost := decimal.NewFromFloat(rec.Usage.Cost)
		report.TotalTokens += rec.Usage.TotalTokens
		report.TotalRequests++
		totalCost = totalCost.Add(cost)

		if f := rec.Metadata.Feature; f != "" {
			featureTokens[f] += rec.Usage.TotalTokens
			featureCost[f] = featureCost[f].Add(cost)
		}

		date := rec.Timestamp.UTC().Format(dayFormat)
		day, ok := days[date]
		if !ok {
			day = &DayUsage{Date: date}
			days[date] = day
		}
		day.Tokens += rec.Usage.TotalTokens
		day.Requests++
		dayCost[date] = dayCost[date].Add(cost)
	}

	report.TotalCost = totalCost.Round(4).InexactFloat64()
	if report.TotalRequests > 0 {
		report.AvgCostPerRequest = totalCost.
			Div(decimal.NewFromInt(report.TotalRequests)).
			Round(4).InexactFloat64()
	}

	for f, tokens := range featureTokens {
		report.TopFeatures = append(report.TopFeatures, FeatureUsage{
			Feature: f,
			Tokens:  tokens,
			Cost:    featureCost[f].Round(4).InexactFloat64(),
		})
	}
	sort.Slice(report.TopFeatures, func(i, j int) bool {
		if report.TopFeatures[i].Tokens != report.TopFeatures[j].Tokens {
			return report.TopFeatures[i].Tokens > report.TopFeatures[j].Tokens
		}
		return report.TopFeatures[i].Feature < report.TopFeatures[j].Feature
	})
	if len(report.TopFeatures) > topFeatureCount {
		report.TopFeatures = report.TopFeatures[:topFeatureCount]
	}

	for date, day := range days {
		day.Cost = dayCost[date].Round(4).InexactFloat64()
		report.DailyBreakdown = append(report.DailyBreakdown, *day)
	}
	sort.Slice(report.DailyBreakdown, func(i, j int) bool {
		return report.DailyBreakdown[i].Date < report.DailyBreakdown[j].Date
	})

	return report
}

func cutoffFor(now time.Time, rng TimeRange) time.Time {
	switch rng {
	case RangeWeek:
		return now.AddDate(0, 0, -7)
	case RangeMonth:
		return now.AddDate(0, -1, 0)
	default:
		return now.Add(-24 * time.Hour)
	}
}
