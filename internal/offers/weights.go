package offers

import "strings"

type StrategyMode string

const (
	StrategyBalanced   StrategyMode = "balanced"
	StrategyConversion StrategyMode = "conversion"
	StrategyRevenue    StrategyMode = "revenue"
)

// ParseStrategy maps a configured mode to a known one, defaulting to balanced.
func ParseStrategy(s string) StrategyMode {
	switch m := StrategyMode(strings.ToLower(strings.TrimSpace(s))); m {
	case StrategyConversion, StrategyRevenue:
		return m
	}
	return StrategyBalanced
}

type Weights struct {
	Value      float64 `json:"value"`
	Conversion float64 `json:"conversion"`
	Experience float64 `json:"experience"`
	Margin     float64 `json:"margin"`
	Risk       float64 `json:"risk"`
}

var baseWeights = map[StrategyMode]Weights{
	StrategyBalanced:   {Value: 0.30, Conversion: 0.30, Experience: 0.15, Margin: 0.15, Risk: 0.10},
	StrategyConversion: {Value: 0.25, Conversion: 0.40, Experience: 0.10, Margin: 0.10, Risk: 0.15},
	StrategyRevenue:    {Value: 0.20, Conversion: 0.25, Experience: 0.20, Margin: 0.25, Risk: 0.10},
}

// WeightsFor starts from the strategy's base set and shifts it by posture and
// trip type. Price posture zeroes the margin weight; urgent posture always
// weighs conversion above value.
func WeightsFor(trip TripType, posture Posture, mode StrategyMode) Weights {
	w, ok := baseWeights[mode]
	if !ok {
		w = baseWeights[StrategyBalanced]
	}

	switch posture {
	case PosturePrice:
		w.Value += 0.15
		w.Margin = 0
	case PostureUrgent:
		w.Conversion += 0.15
		w.Value -= 0.05
	case PostureCertainty:
		w.Conversion += 0.10
		w.Risk += 0.05
	case PostureExperience:
		w.Experience += 0.15
	}

	switch trip {
	case TripFamily:
		w.Experience += 0.05
		w.Risk += 0.05
	case TripBusiness:
		w.Conversion += 0.05
	case TripGroupLite:
		w.Value += 0.05
	}
	return w
}
