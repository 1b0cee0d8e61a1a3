package llm

import "github.com/bmatcuk/doublestar/v4"

// modelPricing holds per-model pricing in USD per 1M tokens.
type modelPricing struct {
	Pattern          string
	InputPerMillion  float64
	OutputPerMillion float64
}

// priceTable is matched in order; the first glob that matches the model wins.
// Globs absorb dated snapshots and provider prefixes (e.g. "openai/gpt-4o").
var priceTable = []modelPricing{
	// Anthropic models
	{Pattern: "claude-sonnet-4*", InputPerMillion: 3.00, OutputPerMillion: 15.00},
	{Pattern: "claude-haiku-4*", InputPerMillion: 0.80, OutputPerMillion: 4.00},
	{Pattern: "claude-opus-4*", InputPerMillion: 15.00, OutputPerMillion: 75.00},
	{Pattern: "claude-3-7-sonnet*", InputPerMillion: 3.00, OutputPerMillion: 15.00},

	// OpenAI models
	{Pattern: "gpt-4o-mini*", InputPerMillion: 0.15, OutputPerMillion: 0.60},
	{Pattern: "openai/gpt-4o-mini*", InputPerMillion: 0.15, OutputPerMillion: 0.60},
	{Pattern: "gpt-4o*", InputPerMillion: 2.50, OutputPerMillion: 10.00},
	{Pattern: "openai/gpt-4o*", InputPerMillion: 2.50, OutputPerMillion: 10.00},

	// Google models
	{Pattern: "gemini-2.0-flash*", InputPerMillion: 0.10, OutputPerMillion: 0.40},
	{Pattern: "gemini-1.5-pro*", InputPerMillion: 1.25, OutputPerMillion: 5.00},

	// Local models are free.
	{Pattern: "llama*", InputPerMillion: 0, OutputPerMillion: 0},
}

func lookupPricing(model string) (modelPricing, bool) {
	for _, p := range priceTable {
		if ok, err := doublestar.Match(p.Pattern, model); err == nil && ok {
			return p, true
		}
	}
	return modelPricing{}, false
}

// HasPricing reports whether the model matches an entry in the price table.
func HasPricing(model string) bool {
	_, ok := lookupPricing(model)
	return ok
}

// EstimateCost returns the estimated cost in USD for the given model and token counts.
// Returns 0 if the model is not found in the price table.
func EstimateCost(model string, inputTokens, outputTokens int) float64 {
	pricing, ok := lookupPricing(model)
	if !ok {
		return 0
	}

	inputCost := float64(inputTokens) / 1_000_000.0 * pricing.InputPerMillion
	outputCost := float64(outputTokens) / 1_000_000.0 * pricing.OutputPerMillion
	return inputCost + outputCost
}

// EstimateTokens provides a rough token count estimation for the given text.
// Uses the approximation of 1 token per 4 characters.
func EstimateTokens(text string) int {
	n := len(text) / 4
	if n == 0 && len(text) > 0 {
		return 1
	}
	return n
}
