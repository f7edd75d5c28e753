package elliott

import "math"

// Fibonacci retracement bounds shared by impulse wave 2 and corrective
// wave B, plus the C-extension window.
const (
	retraceMin    = 0.236
	retraceMax    = 0.886
	cExtensionMin = 0.618
	cExtensionMax = 2.618
)

// ConfidenceWeights holds the scoring increments used when grading a
// validated wave. The values are empirical heuristics carried over from
// live use, not calibrated statistics; treat them as tunable defaults and
// do not tighten them without fresh validation data.
type ConfidenceWeights struct {
	Base            float64 // starting score for any wave
	Wave3Longest    float64 // impulse: wave 3 is the longest of 1/3/5
	Wave4NoOverlap  float64 // impulse: wave 4 stays out of wave 1 territory
	Wave2AboveStart float64 // impulse: wave 2 holds above the wave 0 origin
	TypicalB        float64 // corrective: B retraces inside [0.382, 0.786]
	TypicalC        float64 // corrective: C extends inside [0.618, 1.618]
	Floor           float64 // final clamp lower bound
	Ceiling         float64 // final clamp upper bound
}

// DefaultConfidenceWeights are the stock scoring increments
var DefaultConfidenceWeights = ConfidenceWeights{
	Base:            0.5,
	Wave3Longest:    0.15,
	Wave4NoOverlap:  0.10,
	Wave2AboveStart: 0.05,
	TypicalB:        0.10,
	TypicalC:        0.10,
	Floor:           0.5,
	Ceiling:         1.0,
}

// Default confidences assigned when no candidate survives validation and
// the unvalidated set is passed through as-is.
const (
	fallbackImpulseConfidence    = 0.85
	fallbackCorrectiveConfidence = 0.75
)

// FibonacciValidator checks wave candidates against ratio rules, scores
// confidence for the ones that pass and projects their Fibonacci level
// table.
type FibonacciValidator struct {
	weights ConfidenceWeights
}

// NewFibonacciValidator creates a validator with the given weights; zero
// weights fall back to the defaults.
func NewFibonacciValidator(weights ConfidenceWeights) *FibonacciValidator {
	if weights == (ConfidenceWeights{}) {
		weights = DefaultConfidenceWeights
	}
	return &FibonacciValidator{weights: weights}
}

// Validate dispatches to the rule set matching the wave variant.
// Incomplete waves never validate.
func (v *FibonacciValidator) Validate(w Wave) bool {
	switch wave := w.(type) {
	case *ImpulseWave:
		return v.validateImpulse(wave)
	case *CorrectiveWave:
		return v.validateCorrective(wave)
	default:
		return false
	}
}

// validateImpulse applies the impulse rules: wave 2 may not retrace past
// the origin, wave 3 must reach at least 90% of wave 1's length, wave 4 may
// not overlap wave 1's price zone, and the wave 2 retracement ratio must
// sit inside [0.236, 0.886]. A zero-length wave 1 is a validation failure,
// not a fault.
func (v *FibonacciValidator) validateImpulse(w *ImpulseWave) bool {
	if !w.Complete() {
		return false
	}
	p := legPrices(w)

	if w.Direction == DirectionUp {
		if p[2] < p[0] {
			return false
		}
		wave1 := p[1] - p[0]
		wave3 := p[3] - p[2]
		if wave3 < 0.9*wave1 {
			return false
		}
		if p[4] <= p[1] {
			return false
		}
		if wave1 == 0 {
			return false
		}
		retrace := (p[1] - p[2]) / wave1
		return retrace >= retraceMin && retrace <= retraceMax
	}

	if p[2] > p[0] {
		return false
	}
	wave1 := p[0] - p[1]
	wave3 := p[2] - p[3]
	if wave3 < 0.9*wave1 {
		return false
	}
	if p[4] >= p[1] {
		return false
	}
	if wave1 == 0 {
		return false
	}
	retrace := (p[2] - p[1]) / wave1
	return retrace >= retraceMin && retrace <= retraceMax
}

// validateCorrective applies the A-B-C rules: B may not retrace past the
// wave origin, its retracement of A must sit in [0.236, 0.886], and C must
// extend the 0-A leg by a ratio in [0.618, 2.618].
func (v *FibonacciValidator) validateCorrective(w *CorrectiveWave) bool {
	if !w.Complete() {
		return false
	}
	p0, _ := w.Leg("0")
	pa, _ := w.Leg("A")
	pb, _ := w.Leg("B")
	pc, _ := w.Leg("C")

	if w.Direction == DirectionDown {
		if pb.Price > p0.Price {
			return false
		}
		legA := p0.Price - pa.Price
		if legA == 0 {
			return false
		}
		fibB := (pb.Price - pa.Price) / legA
		if fibB < retraceMin || fibB > retraceMax {
			return false
		}
		fibC := (pb.Price - pc.Price) / legA
		return fibC >= cExtensionMin && fibC <= cExtensionMax
	}

	if pb.Price < p0.Price {
		return false
	}
	legA := pa.Price - p0.Price
	if legA == 0 {
		return false
	}
	fibB := (pa.Price - pb.Price) / legA
	if fibB < retraceMin || fibB > retraceMax {
		return false
	}
	fibC := (pc.Price - pb.Price) / legA
	return fibC >= cExtensionMin && fibC <= cExtensionMax
}

// Confidence grades a wave from the base score upward using the weight
// table, clamped to [Floor, Ceiling].
func (v *FibonacciValidator) Confidence(w Wave) float64 {
	confidence := v.weights.Base

	switch wave := w.(type) {
	case *ImpulseWave:
		if !wave.Complete() {
			break
		}
		p := legPrices(wave)
		var wave1, wave3, wave5 float64
		var noOverlap, holdsOrigin bool
		if wave.Direction == DirectionUp {
			wave1, wave3, wave5 = p[1]-p[0], p[3]-p[2], p[5]-p[4]
			noOverlap = p[4] > p[1]
			holdsOrigin = p[2] > p[0]
		} else {
			wave1, wave3, wave5 = p[0]-p[1], p[2]-p[3], p[4]-p[5]
			noOverlap = p[4] < p[1]
			holdsOrigin = p[2] < p[0]
		}
		if wave3 > wave1 && wave3 > wave5 {
			confidence += v.weights.Wave3Longest
		}
		if noOverlap {
			confidence += v.weights.Wave4NoOverlap
		}
		if holdsOrigin {
			confidence += v.weights.Wave2AboveStart
		}

	case *CorrectiveWave:
		if !wave.Complete() {
			break
		}
		p0, _ := wave.Leg("0")
		pa, _ := wave.Leg("A")
		pb, _ := wave.Leg("B")
		pc, _ := wave.Leg("C")

		var legA, retraceB, extendC float64
		if wave.Direction == DirectionDown {
			legA = p0.Price - pa.Price
			retraceB = pb.Price - pa.Price
			extendC = pb.Price - pc.Price
		} else {
			legA = pa.Price - p0.Price
			retraceB = pa.Price - pb.Price
			extendC = pc.Price - pb.Price
		}
		if legA != 0 {
			fibB := retraceB / legA
			if fibB >= 0.382 && fibB <= 0.786 {
				confidence += v.weights.TypicalB
			}
			fibC := extendC / legA
			if fibC >= 0.618 && fibC <= 1.618 {
				confidence += v.weights.TypicalC
			}
		}
	}

	return math.Max(v.weights.Floor, math.Min(v.weights.Ceiling, confidence))
}

var fibonacciRatios = []struct {
	label string
	ratio float64
}{
	{"0.236", 0.236},
	{"0.382", 0.382},
	{"0.5", 0.5},
	{"0.618", 0.618},
	{"0.786", 0.786},
	{"1.0", 1.0},
	{"1.272", 1.272},
	{"1.618", 1.618},
}

// Levels projects the standard Fibonacci ratios from the wave's start price
// in its direction. The 1.0 level pins to the wave's end price.
func (v *FibonacciValidator) Levels(startPrice, endPrice float64, direction Direction) map[string]float64 {
	priceRange := math.Abs(endPrice - startPrice)
	levels := make(map[string]float64, len(fibonacciRatios))
	for _, r := range fibonacciRatios {
		if r.ratio == 1.0 {
			levels[r.label] = endPrice
			continue
		}
		if direction == DirectionUp {
			levels[r.label] = startPrice + r.ratio*priceRange
		} else {
			levels[r.label] = startPrice - r.ratio*priceRange
		}
	}
	return levels
}

// Apply runs the validation pass over a candidate collection: validated
// waves get a confidence score and Fibonacci levels. If nothing validates,
// the unvalidated candidates pass through with default confidences so
// downstream stages always see a wave when any structural candidate exists.
func (v *FibonacciValidator) Apply(candidates WaveCollection) WaveCollection {
	validated := make(WaveCollection)
	for _, key := range candidates.SortedKeys() {
		w := candidates[key]
		if !v.Validate(w) {
			continue
		}
		v.decorate(w)
		validated[key] = w
	}
	if len(validated) > 0 {
		return validated
	}

	for _, key := range candidates.SortedKeys() {
		switch w := candidates[key].(type) {
		case *ImpulseWave:
			if w.Confidence == 0 {
				w.Confidence = fallbackImpulseConfidence
			}
		case *CorrectiveWave:
			if w.Confidence == 0 {
				w.Confidence = fallbackCorrectiveConfidence
			}
		}
	}
	return candidates
}

// decorate attaches the confidence score and level table to a validated wave
func (v *FibonacciValidator) decorate(w Wave) {
	switch wave := w.(type) {
	case *ImpulseWave:
		start, _ := wave.Leg("0")
		end, _ := wave.Leg("5")
		wave.Fibonacci = v.Levels(start.Price, end.Price, wave.Direction)
		wave.Confidence = v.Confidence(wave)
	case *CorrectiveWave:
		start, _ := wave.Leg("0")
		end, _ := wave.Leg("C")
		wave.Fibonacci = v.Levels(start.Price, end.Price, wave.Direction)
		wave.Confidence = v.Confidence(wave)
	}
}

// legPrices flattens a complete impulse wave's leg prices into positional
// order 0..5.
func legPrices(w *ImpulseWave) [6]float64 {
	var p [6]float64
	for i, label := range impulseLabels {
		leg, _ := w.Leg(label)
		p[i] = leg.Price
	}
	return p
}
