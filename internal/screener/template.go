package screener

import (
	"fmt"

	"stock-hunter/internal/dto"
)

// MaxTemplateScore is the number of counted trend-template rules.
const MaxTemplateScore = 7

// Stable failure-reason texts, one per counted rule. Tests and downstream
// consumers match on these exactly.
const (
	ReasonPriceBelowLongMAs  = "Price below 150-day or 200-day average"
	ReasonMA150BelowMA200    = "150-day average below 200-day average"
	ReasonMA200NotTrendingUp = "200-day average not trending up"
	ReasonMA50BelowLongMAs   = "50-day average below longer-term averages"
	ReasonPriceNearLow       = "Price less than 30% above 52-week low"
	ReasonPriceAboveHigh     = "Price more than 25% above 52-week high"
	ReasonWeakRSRating       = "RS rating below 70"
)

const (
	minAboveLowRatio  = 1.30
	maxAboveHighRatio = 1.25
	minRSRating       = 70
)

// EvaluateTemplate applies the eight trend-template rules. Rules 1-7 are
// evaluated independently, without short-circuit, so every applicable failure
// reason is reported. Rule 8 (volume confirmation) is informational only and
// never counts toward pass/fail.
func EvaluateTemplate(ind *dto.Indicators, rs *dto.RSResult) (*dto.CriteriaResult, error) {
	if ind == nil {
		return nil, fmt.Errorf("%w: indicators undefined", ErrComputation)
	}
	if rs == nil {
		return nil, fmt.Errorf("%w: rs rating undefined", ErrComputation)
	}

	checks := []struct {
		pass   bool
		reason string
	}{
		{ind.Price > ind.MA150 && ind.Price > ind.MA200, ReasonPriceBelowLongMAs},
		{ind.MA150 > ind.MA200, ReasonMA150BelowMA200},
		{ind.MA200TrendingUp, ReasonMA200NotTrendingUp},
		{ind.MA50 > ind.MA150 && ind.MA50 > ind.MA200, ReasonMA50BelowLongMAs},
		{ind.Price >= minAboveLowRatio*ind.Week52Low, ReasonPriceNearLow},
		{ind.Price <= maxAboveHighRatio*ind.Week52High, ReasonPriceAboveHigh},
		{rs.Rating >= minRSRating, ReasonWeakRSRating},
	}

	result := &dto.CriteriaResult{
		MaxScore:    MaxTemplateScore,
		FailReasons: []string{},
	}

	for _, c := range checks {
		if c.pass {
			result.Score++
		} else {
			result.FailReasons = append(result.FailReasons, c.reason)
		}
	}
	result.Passed = result.Score == MaxTemplateScore

	// Rule 8: volume confirmation, reserved for a counted rule later.
	if ind.AvgVolume50 > 0 && ind.Volume > ind.AvgVolume50 {
		result.VolumeNote = fmt.Sprintf("Volume %.1fx above 50-day average", float64(ind.Volume)/float64(ind.AvgVolume50))
	}

	return result, nil
}
