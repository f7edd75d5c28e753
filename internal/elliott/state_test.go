package elliott

import (
	"math"
	"strings"
	"testing"
)

func formingImpulse(direction Direction, labels []string, prices []float64) *ImpulseWave {
	w := &ImpulseWave{Direction: direction}
	for i, label := range labels {
		w.Legs = append(w.Legs, WaveLeg{Label: label, Index: i * 10, Price: prices[i]})
	}
	return w
}

func formingCorrective(direction Direction, labels []string, prices []float64) *CorrectiveWave {
	w := &CorrectiveWave{Direction: direction}
	for i, label := range labels {
		w.Legs = append(w.Legs, WaveLeg{Label: label, Index: i * 10, Price: prices[i]})
	}
	return w
}

func TestCurrentStateUnknownDefaults(t *testing.T) {
	m := NewWaveStateMachine()

	state := m.CurrentState(WaveCollection{})
	if state.CurrentWave != "unknown" || state.NextWave != "unknown" {
		t.Errorf("waves = %s/%s, want unknown/unknown", state.CurrentWave, state.NextWave)
	}
	if state.Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", state.Confidence)
	}
	if state.Phase != PhaseUnknown {
		t.Errorf("phase = %v, want unknown", state.Phase)
	}
	if state.EntrySignal || state.TrendConfirmed || state.CorrectionPhase {
		t.Error("unknown state must not raise any flag")
	}
}

func TestCurrentStateWave5Setup(t *testing.T) {
	m := NewWaveStateMachine()
	wave := formingImpulse(DirectionUp, []string{"0", "1", "2", "3", "4"},
		[]float64{100, 110, 104, 130, 120})

	state := m.CurrentState(WaveCollection{"Impulse_Up_0": wave})

	if state.Phase != PhaseImpulseWave5Setup {
		t.Fatalf("phase = %v, want wave 5 setup", state.Phase)
	}
	if state.CurrentWave != "4" || state.NextWave != "5" {
		t.Errorf("waves = %s/%s, want 4/5", state.CurrentWave, state.NextWave)
	}
	if state.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", state.Confidence)
	}
	if !state.TrendConfirmed || !state.EntrySignal {
		t.Error("wave 5 setup must confirm the trend and raise the entry signal")
	}
	if state.WaveStatus != StatusForming {
		t.Errorf("status = %v, want forming", state.WaveStatus)
	}
	if state.TrendDirection != DirectionUp {
		t.Errorf("trend direction = %v, want up", state.TrendDirection)
	}
	if !strings.Contains(state.Position, "wave 5") {
		t.Errorf("position %q should mention wave 5", state.Position)
	}
}

func TestCurrentStateWave3Setup(t *testing.T) {
	m := NewWaveStateMachine()
	wave := formingImpulse(DirectionUp, []string{"0", "1", "2"}, []float64{100, 110, 104})

	state := m.CurrentState(WaveCollection{"Impulse_Up_0": wave})

	if state.Phase != PhaseImpulseWave3Setup {
		t.Fatalf("phase = %v, want wave 3 setup", state.Phase)
	}
	if state.CurrentWave != "2" || state.NextWave != "3" {
		t.Errorf("waves = %s/%s, want 2/3", state.CurrentWave, state.NextWave)
	}
	if !state.EntrySignal {
		t.Error("wave 3 setup must raise the entry signal")
	}
}

func TestCurrentStateCorrectiveProgress(t *testing.T) {
	m := NewWaveStateMachine()
	wave := formingCorrective(DirectionDown, []string{"0", "A", "B"}, []float64{140, 120, 130})

	state := m.CurrentState(WaveCollection{"Corrective_Down_0": wave})

	if state.Phase != PhaseCorrectiveB {
		t.Fatalf("phase = %v, want corrective B", state.Phase)
	}
	if state.CorrectionProgress != 67 {
		t.Errorf("progress = %d, want 67", state.CorrectionProgress)
	}
	if !state.CorrectionPhase {
		t.Error("corrective B is a correction phase")
	}
	if state.CorrectionDirection != DirectionDown {
		t.Errorf("correction direction = %v, want down", state.CorrectionDirection)
	}
	if state.EntrySignal {
		t.Error("mid-correction must not raise the entry signal")
	}
}

func TestCurrentStateImpulseCompletePublishesTargets(t *testing.T) {
	m := NewWaveStateMachine()
	wave := impulseFromPrices(DirectionUp, [6]float64{100, 110, 104, 130, 120, 140})

	state := m.CurrentState(WaveCollection{"Impulse_Up_0": wave})

	if state.Phase != PhaseImpulseComplete {
		t.Fatalf("phase = %v, want impulse complete", state.Phase)
	}
	if state.CurrentWave != "5" || state.NextWave != "A" {
		t.Errorf("waves = %s/%s, want 5/A", state.CurrentWave, state.NextWave)
	}
	if state.Confidence != 0.95 {
		t.Errorf("confidence = %v, want 0.95", state.Confidence)
	}
	if state.CorrectionDirection != DirectionDown {
		t.Errorf("correction direction = %v, want down", state.CorrectionDirection)
	}
	if len(state.CorrectionTargets) != 5 {
		t.Fatalf("target count = %d, want 5", len(state.CorrectionTargets))
	}
	// Retracements of the 40-point range measured back from 140.
	want := []float64{130.56, 124.72, 120, 115.28, 108.56}
	for i, target := range state.CorrectionTargets {
		if math.Abs(target-want[i]) > 1e-9 {
			t.Errorf("target %d = %v, want %v", i, target, want[i])
		}
	}
}

func TestCurrentStateCorrectiveCompleteFlipsTrend(t *testing.T) {
	m := NewWaveStateMachine()
	wave := correctiveFromPrices(DirectionDown, [4]float64{140, 120, 130, 110})

	state := m.CurrentState(WaveCollection{"Corrective_Down_0": wave})

	if state.Phase != PhaseCorrectiveComplete {
		t.Fatalf("phase = %v, want corrective complete", state.Phase)
	}
	if state.CurrentWave != "C" || state.NextWave != "1" {
		t.Errorf("waves = %s/%s, want C/1", state.CurrentWave, state.NextWave)
	}
	if state.TrendDirection != DirectionUp {
		t.Errorf("trend direction = %v, want up after a down correction", state.TrendDirection)
	}
	if !state.EntrySignal || !state.TrendConfirmed {
		t.Error("completed correction must confirm the trend and raise the entry signal")
	}
}

func TestSelectWavePrefersRecentForming(t *testing.T) {
	m := NewWaveStateMachine()

	completed := impulseFromPrices(DirectionUp, [6]float64{100, 110, 104, 130, 120, 140})
	forming := &CorrectiveWave{Direction: DirectionDown}
	forming.Legs = append(forming.Legs,
		WaveLeg{Label: "0", Index: 25, Price: 140},
		WaveLeg{Label: "A", Index: 30, Price: 120},
	)

	key, status := m.selectWave(WaveCollection{
		"Impulse_Up_0":      completed,
		"Corrective_Down_0": forming,
	})
	if key != "Corrective_Down_0" || status != StatusForming {
		t.Errorf("selected %s (%v), want forming Corrective_Down_0", key, status)
	}
}

func TestSelectWaveKeepsCompletedWhenFormingIsStale(t *testing.T) {
	m := NewWaveStateMachine()

	completed := &ImpulseWave{Direction: DirectionUp}
	for i, label := range []string{"0", "1", "2", "3", "4", "5"} {
		completed.Legs = append(completed.Legs, WaveLeg{Label: label, Index: 80 + i*10, Price: 100 + float64(i)})
	}
	stale := &CorrectiveWave{Direction: DirectionDown}
	stale.Legs = append(stale.Legs,
		WaveLeg{Label: "0", Index: 10, Price: 140},
		WaveLeg{Label: "A", Index: 20, Price: 120},
	)

	key, status := m.selectWave(WaveCollection{
		"Impulse_Up_0":      completed,
		"Corrective_Down_0": stale,
	})
	if key != "Impulse_Up_0" || status != StatusCompleted {
		t.Errorf("selected %s (%v), want completed Impulse_Up_0", key, status)
	}
}
