package model

import (
	"strings"

	"github.com/cloudwego/eino/schema"
)

// Pricing is the USD price per million tokens.
type Pricing struct {
	InputPerM  float64
	OutputPerM float64
}

// Cost is the USD price of one model call.
type Cost struct {
	Input  float64
	Output float64
}

func (c Cost) Total() float64 { return c.Input + c.Output }

// Gemini paid-tier text prices.
var defaultPricing = map[string]Pricing{
	"gemini-2.5-pro":        {InputPerM: 1.25, OutputPerM: 10.00},
	"gemini-2.5-flash":      {InputPerM: 0.30, OutputPerM: 2.50},
	"gemini-2.5-flash-lite": {InputPerM: 0.10, OutputPerM: 0.40},
	"gemini-2.0-flash":      {InputPerM: 0.10, OutputPerM: 0.40},
	"gemini-2.0-flash-lite": {InputPerM: 0.075, OutputPerM: 0.30},
}

// ResolvePricing finds the price of a model by the longest known name that
// prefixes it, so versioned names like gemini-2.5-flash-001 resolve.
// Unknown models cost zero.
func ResolvePricing(modelName string) Pricing {
	name := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(modelName)), "models/")
	var (
		best    Pricing
		bestLen int
	)
	for known, p := range defaultPricing {
		if strings.HasPrefix(name, known) && len(known) > bestLen {
			best, bestLen = p, len(known)
		}
	}
	return best
}

// Of prices the token usage of one call.
func (p Pricing) Of(usage *schema.TokenUsage) Cost {
	if usage == nil {
		return Cost{}
	}
	return Cost{
		Input:  p.InputPerM * float64(usage.PromptTokens) / 1e6,
		Output: p.OutputPerM * float64(usage.CompletionTokens) / 1e6,
	}
}
