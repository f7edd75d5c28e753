package elliott

import "errors"

// MinDataPoints is the smallest series the analyzer accepts
const MinDataPoints = 50

// ErrInsufficientData is returned when the series is too short to analyze
var ErrInsufficientData = errors.New("insufficient data for Elliott Wave analysis")

// Analyzer wires the pipeline stages together: pivots, structure,
// validation, state, patterns and signal. One Analyzer is safe for
// concurrent use; every call owns its own intermediate data.
type Analyzer struct {
	pivots     *PivotExtractor
	builder    *WaveStructureBuilder
	validator  *FibonacciValidator
	stateModel *WaveStateMachine
	signals    *SignalGenerator
	classifier *PatternClassifier
}

// NewAnalyzer creates an analyzer with default components
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		pivots:     NewPivotExtractor(),
		builder:    NewWaveStructureBuilder(),
		validator:  NewFibonacciValidator(DefaultConfidenceWeights),
		stateModel: NewWaveStateMachine(),
		signals:    NewSignalGenerator(),
		classifier: NewPatternClassifier(),
	}
}

// Analyze runs the full pipeline over a series of closing prices.
// Sensitivity is clamped to [0.1, 1.0]. Identical inputs always produce a
// structurally identical result.
func (a *Analyzer) Analyze(prices []float64, sensitivity float64) (*Analysis, error) {
	return a.AnalyzeWithIndicators(prices, sensitivity, nil)
}

// AnalyzeWithIndicators runs the pipeline with optional confirmation
// indicators attached to the final trade signal. indicators may be nil.
func (a *Analyzer) AnalyzeWithIndicators(prices []float64, sensitivity float64, indicators *IndicatorSnapshot) (*Analysis, error) {
	if len(prices) < MinDataPoints {
		return nil, ErrInsufficientData
	}
	sensitivity = clampSensitivity(sensitivity)

	peaks, valleys := a.pivots.Extract(prices, sensitivity)

	candidates, synthetic := a.builder.Build(prices, peaks, valleys)
	waves := candidates
	if !synthetic {
		waves = a.validator.Apply(candidates)
	}

	state := a.stateModel.CurrentState(waves)

	patterns := a.classifier.Classify(waves)
	if len(patterns) == 0 {
		patterns[PatternBaseline] = BaselinePattern()
	}

	currentPrice := prices[len(prices)-1]
	signal := a.signals.Generate(currentPrice, waves, state, indicators)

	return &Analysis{
		Waves:         waves,
		CurrentWave:   state,
		Patterns:      patterns,
		TradingSignal: signal,
		PeaksIdx:      peaks,
		ValleysIdx:    valleys,
	}, nil
}

func clampSensitivity(s float64) float64 {
	if s < 0.1 {
		return 0.1
	}
	if s > 1.0 {
		return 1.0
	}
	return s
}
