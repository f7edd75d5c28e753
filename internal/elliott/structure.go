package elliott

import (
	"fmt"
	"sort"
)

// WaveStructureBuilder scans an ordered pivot sequence for candidate
// impulse (0-1-2-3-4-5) and corrective (0-A-B-C) patterns in both
// directions. When the pivot structure is too thin to scan, a deterministic
// segmentation fallback produces a single synthetic impulse wave instead.
type WaveStructureBuilder struct {
	maxPivotsPerSide int
}

// NewWaveStructureBuilder creates a builder with the default pivot cap
func NewWaveStructureBuilder() *WaveStructureBuilder {
	return &WaveStructureBuilder{maxPivotsPerSide: 20}
}

// Build returns all unvalidated wave candidates found in the pivot
// sequence. synthetic reports that the fallback builder produced the result;
// synthetic waves carry a fixed confidence and skip Fibonacci validation.
func (b *WaveStructureBuilder) Build(prices []float64, peaks, valleys []int) (waves WaveCollection, synthetic bool) {
	if len(peaks) < 3 || len(valleys) < 3 {
		return b.buildAlternative(prices), true
	}

	peaks = topByImportance(peaks, prices, b.maxPivotsPerSide, false)
	valleys = topByImportance(valleys, prices, b.maxPivotsPerSide, true)

	merged := mergePivots(peaks, valleys)
	if len(merged) < 6 {
		return b.buildAlternative(prices), true
	}

	pivots := alternatePivots(merged)
	if len(pivots) < 6 {
		return b.buildAlternative(prices), true
	}
	for i := range pivots {
		pivots[i].Price = prices[pivots[i].Index]
	}

	waves = make(WaveCollection)
	b.scanImpulse(pivots, waves)
	b.scanCorrective(pivots, waves)

	if len(waves) == 0 {
		// No structural candidate anywhere: the segmentation fallback keeps
		// downstream stages supplied with a wave.
		return b.buildAlternative(prices), true
	}
	return waves, false
}

// topByImportance keeps the limit most significant pivots of a side:
// highest prices for peaks, lowest for valleys.
func topByImportance(pivots []int, prices []float64, limit int, valley bool) []int {
	if len(pivots) <= limit {
		return pivots
	}
	sorted := make([]int, len(pivots))
	copy(sorted, pivots)
	sort.Slice(sorted, func(a, b int) bool {
		if valley {
			return prices[sorted[a]] < prices[sorted[b]]
		}
		return prices[sorted[a]] > prices[sorted[b]]
	})
	kept := sorted[:limit]
	sort.Ints(kept)
	return kept
}

// alternatePivots re-runs the alternation filter over a merged pivot
// sequence, keeping the first pivot and dropping later same-kind repeats.
func alternatePivots(merged []Pivot) []Pivot {
	if len(merged) == 0 {
		return nil
	}
	valid := []Pivot{merged[0]}
	for _, p := range merged[1:] {
		if p.Kind != valid[len(valid)-1].Kind {
			valid = append(valid, p)
		}
	}
	return valid
}

// scanImpulse slides a 6-pivot window over the sequence looking for the
// valley/peak kind pattern and price ordering of an impulse in either
// direction.
func (b *WaveStructureBuilder) scanImpulse(pivots []Pivot, waves WaveCollection) {
	found := 0

	// Up impulse: valley-peak-valley-peak-valley-peak with rising structure.
	for start := 0; start+5 < len(pivots); start++ {
		w := [6]Pivot{pivots[start], pivots[start+1], pivots[start+2], pivots[start+3], pivots[start+4], pivots[start+5]}
		if !kindsMatch(w[:], PivotValley) {
			continue
		}
		if w[1].Price > w[0].Price &&
			w[2].Price < w[1].Price &&
			w[3].Price > w[1].Price &&
			w[4].Price < w[3].Price && w[4].Price > w[2].Price &&
			w[5].Price > w[3].Price {
			waves[fmt.Sprintf("Impulse_Up_%d", found)] = NewImpulseWave(DirectionUp, w)
			found++
		}
	}

	// Down impulse is the price mirror starting from a peak.
	for start := 0; start+5 < len(pivots); start++ {
		w := [6]Pivot{pivots[start], pivots[start+1], pivots[start+2], pivots[start+3], pivots[start+4], pivots[start+5]}
		if !kindsMatch(w[:], PivotPeak) {
			continue
		}
		if w[1].Price < w[0].Price &&
			w[2].Price > w[1].Price &&
			w[3].Price < w[1].Price &&
			w[4].Price > w[3].Price && w[4].Price < w[2].Price &&
			w[5].Price < w[3].Price {
			waves[fmt.Sprintf("Impulse_Down_%d", found)] = NewImpulseWave(DirectionDown, w)
			found++
		}
	}
}

// scanCorrective slides a 4-pivot window looking for 0-A-B-C corrections.
// A down correction follows an up move and starts from a peak; the up case
// is mirrored.
func (b *WaveStructureBuilder) scanCorrective(pivots []Pivot, waves WaveCollection) {
	found := 0

	for start := 0; start+3 < len(pivots); start++ {
		w := [4]Pivot{pivots[start], pivots[start+1], pivots[start+2], pivots[start+3]}
		if !kindsMatch(w[:], PivotPeak) {
			continue
		}
		if w[1].Price < w[0].Price &&
			w[2].Price > w[1].Price && w[2].Price < w[0].Price &&
			w[3].Price < w[1].Price {
			waves[fmt.Sprintf("Corrective_Down_%d", found)] = NewCorrectiveWave(DirectionDown, w)
			found++
		}
	}

	for start := 0; start+3 < len(pivots); start++ {
		w := [4]Pivot{pivots[start], pivots[start+1], pivots[start+2], pivots[start+3]}
		if !kindsMatch(w[:], PivotValley) {
			continue
		}
		if w[1].Price > w[0].Price &&
			w[2].Price < w[1].Price && w[2].Price > w[0].Price &&
			w[3].Price > w[1].Price {
			waves[fmt.Sprintf("Corrective_Up_%d", found)] = NewCorrectiveWave(DirectionUp, w)
			found++
		}
	}
}

// kindsMatch checks the strict kind alternation of a window given the kind
// of its first pivot.
func kindsMatch(window []Pivot, first PivotKind) bool {
	kind := first
	for _, p := range window {
		if p.Kind != kind {
			return false
		}
		if kind == PivotPeak {
			kind = PivotValley
		} else {
			kind = PivotPeak
		}
	}
	return true
}

// buildAlternative emits a single synthetic impulse wave by splitting the
// series into six equal segments, using the overall trend for direction and
// nudging the 2nd and 4th boundaries onto nearby local extrema.
func (b *WaveStructureBuilder) buildAlternative(prices []float64) WaveCollection {
	waves := make(WaveCollection)
	n := len(prices)
	if n == 0 {
		return waves
	}

	direction := DirectionDown
	if prices[n-1] > prices[0] {
		direction = DirectionUp
	}

	step := n / 6
	idx := [6]int{0,
		minInt(n-1, step),
		minInt(n-1, 2*step),
		minInt(n-1, 3*step),
		minInt(n-1, 4*step),
		minInt(n-1, 5*step),
	}

	if direction == DirectionUp {
		idx[2] = localMinIndex(prices, idx[1]-step/2, idx[1]+step/2)
		idx[4] = localMinIndex(prices, idx[3]-step/2, idx[3]+step/2)
	} else {
		idx[2] = localMaxIndex(prices, idx[1]-step/2, idx[1]+step/2)
		idx[4] = localMaxIndex(prices, idx[3]-step/2, idx[3]+step/2)
	}

	var points [6]Pivot
	for i, ix := range idx {
		points[i] = Pivot{Index: ix, Price: prices[ix]}
	}
	wave := NewImpulseWave(direction, points)
	wave.Confidence = 0.9

	key := "Impulse_Up_0"
	if direction == DirectionDown {
		key = "Impulse_Down_0"
	}
	waves[key] = wave
	return waves
}

func localMinIndex(prices []float64, start, end int) int {
	start = maxInt(0, start)
	end = minInt(len(prices)-1, end)
	if start >= end {
		return start
	}
	return start + argMin(prices[start:end+1])
}

func localMaxIndex(prices []float64, start, end int) int {
	start = maxInt(0, start)
	end = minInt(len(prices)-1, end)
	if start >= end {
		return start
	}
	return start + argMax(prices[start:end+1])
}
