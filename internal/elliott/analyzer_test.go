package elliott

import (
	"errors"
	"reflect"
	"testing"
)

func TestAnalyzeRejectsShortSeries(t *testing.T) {
	a := NewAnalyzer()

	_, err := a.Analyze(linearSeries(MinDataPoints-1, 100, 120), 0.5)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("err = %v, want ErrInsufficientData", err)
	}
}

func TestAnalyzeMonotonicSeriesYieldsSyntheticImpulse(t *testing.T) {
	a := NewAnalyzer()

	result, err := a.Analyze(linearSeries(60, 100, 130), 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wave, ok := result.Waves["Impulse_Up_0"]
	if !ok {
		t.Fatalf("missing Impulse_Up_0, got keys %v", result.Waves.SortedKeys())
	}
	if wave.Score() != 0.9 {
		t.Errorf("synthetic confidence = %v, want 0.9", wave.Score())
	}
	if wave.Dir() != DirectionUp {
		t.Errorf("direction = %v, want up", wave.Dir())
	}
	if len(result.Patterns) == 0 {
		t.Error("patterns must never be empty")
	}
	if result.TradingSignal.Entry != 130 {
		t.Errorf("signal entry = %v, want the last price 130", result.TradingSignal.Entry)
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	a := NewAnalyzer()
	prices := sineSeries(120, 100, 8, 30)

	first, err := a.Analyze(prices, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := a.Analyze(prices, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs produced different analyses")
	}
}

func TestAnalyzeClampsSensitivity(t *testing.T) {
	a := NewAnalyzer()
	prices := sineSeries(120, 100, 8, 30)

	high, err := a.Analyze(prices, 5.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	capped, err := a.Analyze(prices, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(high, capped) {
		t.Error("sensitivity above 1.0 must clamp to 1.0")
	}

	if _, err := a.Analyze(prices, -3); err != nil {
		t.Fatalf("unexpected error at clamped low sensitivity: %v", err)
	}
}

func TestAnalyzeDoesNotMutateInput(t *testing.T) {
	a := NewAnalyzer()
	prices := sineSeries(100, 50, 5, 20)
	original := make([]float64, len(prices))
	copy(original, prices)

	if _, err := a.Analyze(prices, 0.7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(prices, original) {
		t.Error("input series was mutated")
	}
}

func TestAnalyzeWithIndicatorsAttachesNotes(t *testing.T) {
	a := NewAnalyzer()
	prices := linearSeries(60, 100, 130)
	indicators := &IndicatorSnapshot{RSI: 25, HasRSI: true}

	result, err := a.AnalyzeWithIndicators(prices, 0.5, indicators)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The synthetic wave completes an impulse, so the signal stays neutral
	// and the oversold RSI adds no buy confirmation.
	if result.TradingSignal.Direction != SignalNeutral {
		t.Errorf("direction = %s, want neutral", result.TradingSignal.Direction)
	}
}
