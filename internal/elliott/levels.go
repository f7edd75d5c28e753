package elliott

import "math"

// Extended ratio table used for the standalone level snapshot; wider than
// the per-wave table attached during validation.
var snapshotRatios = []struct {
	label string
	ratio float64
}{
	{"0", 0.0},
	{"0.236", 0.236},
	{"0.382", 0.382},
	{"0.5", 0.5},
	{"0.618", 0.618},
	{"0.786", 0.786},
	{"1", 1.0},
	{"1.272", 1.272},
	{"1.618", 1.618},
	{"2.618", 2.618},
}

// FibonacciSnapshot holds the level tables of the most recent completed
// waves: retracements of the latest impulse and extensions of the latest
// corrective.
type FibonacciSnapshot struct {
	Impulse    map[string]float64 `json:"impulse,omitempty"`
	Corrective map[string]float64 `json:"corrective,omitempty"`
}

// LatestFibonacci locates the latest completed impulse and corrective waves
// by end index and projects their full ratio tables. Either side may be
// absent.
func LatestFibonacci(waves WaveCollection) *FibonacciSnapshot {
	snapshot := &FibonacciSnapshot{}

	var lastImpulse *ImpulseWave
	var lastCorrective *CorrectiveWave
	impulseEnd, correctiveEnd := -1, -1

	for _, key := range waves.SortedKeys() {
		switch w := waves[key].(type) {
		case *ImpulseWave:
			if end, ok := w.Leg("5"); ok && end.Index > impulseEnd {
				lastImpulse = w
				impulseEnd = end.Index
			}
		case *CorrectiveWave:
			if end, ok := w.Leg("C"); ok && end.Index > correctiveEnd {
				lastCorrective = w
				correctiveEnd = end.Index
			}
		}
	}

	if lastImpulse != nil {
		start, _ := lastImpulse.Leg("0")
		end, _ := lastImpulse.Leg("5")
		snapshot.Impulse = retracementTable(start.Price, end.Price, lastImpulse.Direction)
	}
	if lastCorrective != nil {
		start, _ := lastCorrective.Leg("0")
		end, _ := lastCorrective.Leg("C")
		snapshot.Corrective = extensionTable(start.Price, end.Price, lastCorrective.Direction)
	}
	return snapshot
}

// retracementTable projects levels back from the end of a finished move:
// how far a correction of it could reach.
func retracementTable(startPrice, endPrice float64, direction Direction) map[string]float64 {
	size := math.Abs(endPrice - startPrice)
	levels := make(map[string]float64, len(snapshotRatios))
	for _, r := range snapshotRatios {
		if direction == DirectionUp {
			levels[r.label] = endPrice - size*r.ratio
		} else {
			levels[r.label] = endPrice + size*r.ratio
		}
	}
	return levels
}

// extensionTable projects levels beyond the end of a finished corrective:
// how far a follow-through move could extend.
func extensionTable(startPrice, endPrice float64, direction Direction) map[string]float64 {
	size := math.Abs(endPrice - startPrice)
	levels := make(map[string]float64, len(snapshotRatios))
	for _, r := range snapshotRatios {
		if direction == DirectionUp {
			levels[r.label] = endPrice + size*r.ratio
		} else {
			levels[r.label] = endPrice - size*r.ratio
		}
	}
	return levels
}
