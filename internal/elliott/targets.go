package elliott

// PriceTargets holds three tiers of potential price objectives for the
// current trend reading, with their percent distance from the reference
// price.
type PriceTargets struct {
	Target1    float64 `json:"target_1"`
	Target2    float64 `json:"target_2"`
	Target3    float64 `json:"target_3"`
	Target1Pct float64 `json:"target_1_percentage"`
	Target2Pct float64 `json:"target_2_percentage"`
	Target3Pct float64 `json:"target_3_percentage"`
	Trend      string  `json:"trend"`
}

// Default target multipliers per trend reading. Confirmed trends project
// full-swing objectives; corrections project the shallower counter-move.
var targetMultipliers = map[TrendClass][3]float64{
	TrendConfirmedUp:    {1.05, 1.10, 1.20},
	TrendConfirmedDown:  {0.95, 0.90, 0.80},
	TrendCorrectionDown: {0.98, 0.95, 0.90},
	TrendCorrectionUp:   {1.02, 1.05, 1.10},
	TrendUnknown:        {1.03, 0.97, 1.10},
}

// PotentialTargets derives the three-tier price objectives from the current
// wave state and price.
func PotentialTargets(state CurrentWaveState, currentPrice float64) *PriceTargets {
	trend := state.Trend()
	m := targetMultipliers[trend]

	t := &PriceTargets{
		Target1: currentPrice * m[0],
		Target2: currentPrice * m[1],
		Target3: currentPrice * m[2],
		Trend:   trendText(trend),
	}
	if currentPrice != 0 {
		t.Target1Pct = (t.Target1/currentPrice - 1) * 100
		t.Target2Pct = (t.Target2/currentPrice - 1) * 100
		t.Target3Pct = (t.Target3/currentPrice - 1) * 100
	}
	return t
}
