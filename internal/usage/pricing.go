package usage

import "github.com/shopspring/decimal"

// modelRate holds per-million-token prices in USD.
type modelRate struct {
	input  decimal.Decimal
	output decimal.Decimal
}

var (
	million = decimal.NewFromInt(1_000_000)

	modelRates = map[string]modelRate{
		"gpt-4o":        {input: decimal.RequireFromString("2.50"), output: decimal.RequireFromString("10.00")},
		"gpt-4o-mini":   {input: decimal.RequireFromString("0.15"), output: decimal.RequireFromString("0.60")},
		"gpt-4.1":       {input: decimal.RequireFromString("2.00"), output: decimal.RequireFromString("8.00")},
		"gpt-4.1-mini":  {input: decimal.RequireFromString("0.40"), output: decimal.RequireFromString("1.60")},
		"gpt-3.5-turbo": {input: decimal.RequireFromString("0.50"), output: decimal.RequireFromString("1.50")},
	}

	// Models missing from the table are billed at gpt-4o-mini rates rather
	// than silently costing zero.
	defaultRate = modelRate{
		input:  decimal.RequireFromString("0.15"),
		output: decimal.RequireFromString("0.60"),
	}
)

// Cost computes promptTokens*inputRate + completionTokens*outputRate for the
// given model, rounded to 4 decimal places.
func Cost(model string, promptTokens, completionTokens int64) float64 {
	rate, ok := modelRates[model]
	if !ok {
		rate = defaultRate
	}

	prompt := decimal.NewFromInt(promptTokens).Mul(rate.input).Div(million)
	completion := decimal.NewFromInt(completionTokens).Mul(rate.output).Div(million)
	return prompt.Add(completion).Round(4).InexactFloat64()
}

// NewTokenUsage builds a TokenUsage from provider-reported token counts.
func NewTokenUsage(model string, promptTokens, completionTokens int64) TokenUsage {
	return TokenUsage{
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
		Cost:             Cost(model, promptTokens, completionTokens),
	}
}
