package elliott

import (
	"math"
	"testing"
)

func targetsNear(got *PriceTargets, t1, t2, t3 float64) bool {
	return math.Abs(got.Target1-t1) < 1e-9 &&
		math.Abs(got.Target2-t2) < 1e-9 &&
		math.Abs(got.Target3-t3) < 1e-9
}

func TestPotentialTargetsConfirmedUp(t *testing.T) {
	state := CurrentWaveState{TrendConfirmed: true, TrendDirection: DirectionUp}

	targets := PotentialTargets(state, 100)

	if !targetsNear(targets, 105, 110, 120) {
		t.Errorf("targets = %v/%v/%v, want 105/110/120", targets.Target1, targets.Target2, targets.Target3)
	}
	if math.Abs(targets.Target1Pct-5) > 1e-9 || math.Abs(targets.Target3Pct-20) > 1e-9 {
		t.Errorf("percentages = %v/%v/%v, want 5/10/20", targets.Target1Pct, targets.Target2Pct, targets.Target3Pct)
	}
	if targets.Trend != "confirmed uptrend" {
		t.Errorf("trend = %q, want confirmed uptrend", targets.Trend)
	}
}

func TestPotentialTargetsConfirmedDown(t *testing.T) {
	state := CurrentWaveState{TrendConfirmed: true, TrendDirection: DirectionDown}

	targets := PotentialTargets(state, 200)

	if !targetsNear(targets, 190, 180, 160) {
		t.Errorf("targets = %v/%v/%v, want 190/180/160", targets.Target1, targets.Target2, targets.Target3)
	}
	if math.Abs(targets.Target1Pct-(-5)) > 1e-9 {
		t.Errorf("target 1 pct = %v, want -5", targets.Target1Pct)
	}
}

func TestPotentialTargetsCorrectionDown(t *testing.T) {
	state := CurrentWaveState{CorrectionPhase: true, CorrectionDirection: DirectionDown}

	targets := PotentialTargets(state, 100)

	if !targetsNear(targets, 98, 95, 90) {
		t.Errorf("targets = %v/%v/%v, want 98/95/90", targets.Target1, targets.Target2, targets.Target3)
	}
	if targets.Trend != "downward correction - wait" {
		t.Errorf("trend = %q, want downward correction", targets.Trend)
	}
}

func TestPotentialTargetsUnknownTrend(t *testing.T) {
	targets := PotentialTargets(CurrentWaveState{}, 100)

	if !targetsNear(targets, 103, 97, 110) {
		t.Errorf("targets = %v/%v/%v, want 103/97/110", targets.Target1, targets.Target2, targets.Target3)
	}
	if targets.Trend != "unknown" {
		t.Errorf("trend = %q, want unknown", targets.Trend)
	}
}

func TestPotentialTargetsZeroPrice(t *testing.T) {
	targets := PotentialTargets(CurrentWaveState{}, 0)

	if targets.Target1Pct != 0 || targets.Target2Pct != 0 || targets.Target3Pct != 0 {
		t.Errorf("percentages = %v/%v/%v, want zeros", targets.Target1Pct, targets.Target2Pct, targets.Target3Pct)
	}
}
