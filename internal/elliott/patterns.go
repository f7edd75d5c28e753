package elliott

import "math"

// Pattern names emitted by the classifier
const (
	PatternElliottCycle = "elliott_cycle"
	PatternTriangle     = "symmetrical_triangle"
	PatternWedge        = "wedge"
	PatternRectangle    = "rectangle"
	PatternBaseline     = "market_structure"
)

// Reliability grades
const (
	ReliabilityHigh   = "high"
	ReliabilityMedium = "medium"
)

// PatternClassifier labels higher-level chart patterns from the validated
// wave set. The labels are presentation-only; nothing downstream branches
// on them.
type PatternClassifier struct{}

// NewPatternClassifier creates a new pattern classifier
func NewPatternClassifier() *PatternClassifier {
	return &PatternClassifier{}
}

// Classify scans wave pairs and singles for known formations. It may
// return an empty map; the caller supplies a generic neutral label then.
func (c *PatternClassifier) Classify(waves WaveCollection) map[string]PatternInfo {
	patterns := make(map[string]PatternInfo)
	keys := waves.SortedKeys()

	c.findElliottCycle(waves, keys, patterns)
	c.findTriangle(waves, keys, patterns)
	c.findWedge(waves, keys, patterns)
	c.findRectangle(waves, keys, patterns)

	return patterns
}

// BaselinePattern is the generic neutral label used when nothing matched
func BaselinePattern() PatternInfo {
	return PatternInfo{
		Reliability:       ReliabilityMedium,
		Description:       "market structure under Elliott Wave analysis; more data needed for a specific formation",
		ExpectedDirection: "neutral",
	}
}

// findElliottCycle looks for a completed impulse immediately followed by an
// opposite-direction corrective sharing its end index: the full 5-3 cycle.
func (c *PatternClassifier) findElliottCycle(waves WaveCollection, keys []string, patterns map[string]PatternInfo) {
	for _, impulseKey := range keys {
		impulse, ok := waves[impulseKey].(*ImpulseWave)
		if !ok || !impulse.Complete() {
			continue
		}
		end, _ := impulse.Leg("5")
		for _, correctiveKey := range keys {
			corrective, isCorrective := waves[correctiveKey].(*CorrectiveWave)
			if !isCorrective || !corrective.Complete() {
				continue
			}
			start, _ := corrective.Leg("0")
			if start.Index == end.Index && impulse.Direction != corrective.Direction {
				patterns[PatternElliottCycle] = PatternInfo{
					Reliability:       ReliabilityHigh,
					Description:       "complete Elliott 5-3 cycle with a direction change",
					ExpectedDirection: string(corrective.Direction),
					WaveKeys:          []string{impulseKey, correctiveKey},
				}
			}
		}
	}
}

// findTriangle flags corrective waves whose leg sizes shrink monotonically
func (c *PatternClassifier) findTriangle(waves WaveCollection, keys []string, patterns map[string]PatternInfo) {
	for _, key := range keys {
		w, ok := waves[key].(*CorrectiveWave)
		if !ok || !w.Complete() {
			continue
		}
		p0, _ := w.Leg("0")
		pa, _ := w.Leg("A")
		pb, _ := w.Leg("B")
		pc, _ := w.Leg("C")

		aSize := math.Abs(pa.Price - p0.Price)
		bSize := math.Abs(pb.Price - pa.Price)
		cSize := math.Abs(pc.Price - pb.Price)

		if aSize > bSize && bSize > cSize {
			patterns[PatternTriangle] = PatternInfo{
				Reliability:       ReliabilityMedium,
				Description:       "symmetrical triangle: corrective legs contract",
				ExpectedDirection: "neutral",
				WaveKeys:          []string{key},
			}
		}
	}
}

// findWedge flags impulse waves whose successive odd-leg and even-leg
// slopes converge.
func (c *PatternClassifier) findWedge(waves WaveCollection, keys []string, patterns map[string]PatternInfo) {
	for _, key := range keys {
		w, ok := waves[key].(*ImpulseWave)
		if !ok || !w.Complete() {
			continue
		}
		slopes, ok := legSlopes(w)
		if !ok {
			continue
		}

		if math.Abs(slopes[0]) > math.Abs(slopes[2]) && math.Abs(slopes[2]) > math.Abs(slopes[4]) &&
			math.Abs(slopes[1]) > math.Abs(slopes[3]) {
			patterns[PatternWedge] = PatternInfo{
				Reliability:       ReliabilityHigh,
				Description:       "wedge: impulse leg slopes converge",
				ExpectedDirection: string(w.Direction.Opposite()),
				WaveKeys:          []string{key},
			}
		}
	}
}

// legSlopes computes the five leg slopes of a complete impulse wave,
// ordered 0-1, 1-2, 2-3, 3-4, 4-5. Zero-width legs make the wave
// unusable for slope analysis.
func legSlopes(w *ImpulseWave) ([5]float64, bool) {
	var slopes [5]float64
	for i := 0; i < 5; i++ {
		from, _ := w.Leg(impulseLabels[i])
		to, _ := w.Leg(impulseLabels[i+1])
		if to.Index == from.Index {
			return slopes, false
		}
		slopes[i] = (to.Price - from.Price) / float64(to.Index-from.Index)
	}
	return slopes, true
}

// findRectangle flags corrective waves whose 0/B and A/C price pairs sit
// within 5% of each other.
func (c *PatternClassifier) findRectangle(waves WaveCollection, keys []string, patterns map[string]PatternInfo) {
	const tolerance = 0.05
	for _, key := range keys {
		w, ok := waves[key].(*CorrectiveWave)
		if !ok || !w.Complete() {
			continue
		}
		p0, _ := w.Leg("0")
		pa, _ := w.Leg("A")
		pb, _ := w.Leg("B")
		pc, _ := w.Leg("C")
		if p0.Price == 0 || pa.Price == 0 {
			continue
		}

		if math.Abs(p0.Price-pb.Price)/math.Abs(p0.Price) < tolerance &&
			math.Abs(pa.Price-pc.Price)/math.Abs(pa.Price) < tolerance {
			patterns[PatternRectangle] = PatternInfo{
				Reliability:       ReliabilityMedium,
				Description:       "rectangle: highs and lows hold near equal levels",
				ExpectedDirection: "neutral",
				WaveKeys:          []string{key},
			}
		}
	}
}
