package elliott

import (
	"errors"
	"math"
	"sort"
)

// PivotExtractor cleans and smooths a price series, then extracts
// alternating local maxima (peaks) and minima (valleys). Detection
// parameters adapt to the sensitivity: higher sensitivity means a smaller
// smoothing window and spacing, so more pivots survive.
type PivotExtractor struct{}

// NewPivotExtractor creates a new pivot extractor
func NewPivotExtractor() *PivotExtractor {
	return &PivotExtractor{}
}

var errDegenerateSeries = errors.New("degenerate series for extrema detection")

// Extract returns peak and valley indexes for the series, both ascending by
// index with no duplicates across the two sets. Sensitivity must already be
// clamped to [0.1, 1.0] by the caller.
func (e *PivotExtractor) Extract(prices []float64, sensitivity float64) (peaks, valleys []int) {
	clean := imputeMissing(prices)

	window := maxInt(3, int(math.Round(10*(1-sensitivity))))
	smoothed := smooth(clean, window)

	distance := maxInt(3, int(math.Round(15*(1-sensitivity))))
	priceRange := maxFloat(clean) - minFloat(clean)
	priceStd := stddev(clean)

	prominence := priceStd * (0.05 + 0.5*sensitivity)
	if prominence < 0.001*priceRange {
		prominence = 0.001 * priceRange
	}
	width := maxInt(1, int(math.Round(5*(1-sensitivity))))

	negated := negate(smoothed)

	var err error
	peaks, err = findPeaks(smoothed, distance, prominence, width)
	if err == nil {
		valleys, err = findPeaks(negated, distance, prominence, width)
	}
	if err != nil {
		// Relaxed retry with fixed fallback parameters.
		distance = maxInt(2, int(math.Round(5*(1-sensitivity))))
		prominence = priceStd * 0.1
		peaks, _ = findPeaks(smoothed, distance, prominence, 0)
		valleys, _ = findPeaks(negated, distance, prominence, 0)
	}

	peaks = filterByImportance(peaks, smoothed, false)
	valleys = filterByImportance(valleys, smoothed, true)

	if len(peaks) > 0 && len(valleys) > 0 {
		peaks, valleys = enforceAlternation(peaks, valleys)
	}

	if len(peaks) == 0 || len(valleys) == 0 {
		peaks, valleys = coarsePivots(clean)
		if len(peaks) > 0 && len(valleys) > 0 {
			peaks, valleys = enforceAlternation(peaks, valleys)
		}
	}

	sort.Ints(peaks)
	sort.Ints(valleys)
	return peaks, valleys
}

// imputeMissing replaces NaN values with the nearest valid neighbor so that
// detection never sees holes. The input is left untouched.
func imputeMissing(prices []float64) []float64 {
	out := make([]float64, len(prices))
	copy(out, prices)

	var valid []int
	for i, p := range out {
		if !math.IsNaN(p) {
			valid = append(valid, i)
		}
	}
	if len(valid) == 0 || len(valid) == len(out) {
		return out
	}
	for i := range out {
		if !math.IsNaN(out[i]) {
			continue
		}
		nearest := valid[0]
		for _, v := range valid[1:] {
			if absInt(v-i) < absInt(nearest-i) {
				nearest = v
			}
		}
		out[i] = out[nearest]
	}
	return out
}

// smooth averages each interior point with a symmetric window; the edges
// keep their raw values.
func smooth(prices []float64, window int) []float64 {
	out := make([]float64, len(prices))
	copy(out, prices)
	for i := window; i < len(prices)-window; i++ {
		sum := 0.0
		for j := i - window; j <= i+window; j++ {
			sum += prices[j]
		}
		out[i] = sum / float64(2*window+1)
	}
	return out
}

// findPeaks locates local maxima subject to a minimum spacing, a prominence
// floor and a minimum width at half prominence. Plateaus resolve to their
// midpoint. It reports an error on degenerate input so the caller can retry
// with relaxed parameters.
func findPeaks(series []float64, distance int, prominence float64, width int) ([]int, error) {
	if len(series) < 3 {
		return nil, errDegenerateSeries
	}
	if prominence <= 0 || math.IsNaN(prominence) {
		return nil, errDegenerateSeries
	}

	candidates := localMaxima(series)
	candidates = spaceOut(candidates, series, distance)

	var peaks []int
	for _, p := range candidates {
		prom, leftBase, rightBase := peakProminence(series, p)
		if prom < prominence {
			continue
		}
		if width > 0 && peakWidth(series, p, prom, leftBase, rightBase) < float64(width) {
			continue
		}
		peaks = append(peaks, p)
	}
	sort.Ints(peaks)
	return peaks, nil
}

func localMaxima(series []float64) []int {
	var maxima []int
	i := 1
	for i < len(series)-1 {
		if series[i] <= series[i-1] {
			i++
			continue
		}
		// Walk any plateau to its right edge.
		ahead := i
		for ahead < len(series)-1 && series[ahead+1] == series[ahead] {
			ahead++
		}
		if ahead < len(series)-1 && series[ahead+1] < series[ahead] {
			maxima = append(maxima, (i+ahead)/2)
		}
		i = ahead + 1
	}
	return maxima
}

// spaceOut drops maxima closer than distance to a higher one, keeping the
// highest first.
func spaceOut(candidates []int, series []float64, distance int) []int {
	if distance <= 1 || len(candidates) < 2 {
		return candidates
	}
	order := make([]int, len(candidates))
	copy(order, candidates)
	sort.Slice(order, func(a, b int) bool { return series[order[a]] > series[order[b]] })

	removed := make(map[int]bool)
	for _, p := range order {
		if removed[p] {
			continue
		}
		for _, q := range candidates {
			if q != p && !removed[q] && absInt(q-p) < distance {
				removed[q] = true
			}
		}
	}

	var kept []int
	for _, p := range candidates {
		if !removed[p] {
			kept = append(kept, p)
		}
	}
	return kept
}

// peakProminence measures how much a peak stands out from the surrounding
// signal: its height above the higher of the two bases found by walking
// left and right until a taller sample or the series edge.
func peakProminence(series []float64, peak int) (prom float64, leftBase, rightBase int) {
	h := series[peak]

	leftBase = peak
	leftMin := h
	for i := peak - 1; i >= 0 && series[i] <= h; i-- {
		if series[i] < leftMin {
			leftMin = series[i]
			leftBase = i
		}
	}

	rightBase = peak
	rightMin := h
	for i := peak + 1; i < len(series) && series[i] <= h; i++ {
		if series[i] < rightMin {
			rightMin = series[i]
			rightBase = i
		}
	}

	prom = h - math.Max(leftMin, rightMin)
	return prom, leftBase, rightBase
}

// peakWidth measures the interpolated width of a peak at half its
// prominence.
func peakWidth(series []float64, peak int, prom float64, leftBase, rightBase int) float64 {
	ref := series[peak] - prom*0.5

	leftIP := float64(leftBase)
	for i := peak; i > leftBase; i-- {
		if series[i-1] < ref {
			leftIP = float64(i-1) + (ref-series[i-1])/(series[i]-series[i-1])
			break
		}
	}

	rightIP := float64(rightBase)
	for i := peak; i < rightBase; i++ {
		if series[i+1] < ref {
			rightIP = float64(i+1) - (ref-series[i+1])/(series[i]-series[i+1])
			break
		}
	}

	return rightIP - leftIP
}

// filterByImportance drops the least important pivots once more than three
// exist. Importance of a peak is its price, of a valley its negated price;
// pivots at or above 0.8 of the median importance survive.
func filterByImportance(pivots []int, smoothed []float64, valley bool) []int {
	if len(pivots) <= 3 {
		return pivots
	}
	importance := make([]float64, len(pivots))
	for i, idx := range pivots {
		if valley {
			importance[i] = -smoothed[idx]
		} else {
			importance[i] = smoothed[idx]
		}
	}
	med := median(importance)

	var kept []int
	for i, idx := range pivots {
		if importance[i] >= med*0.8 {
			kept = append(kept, idx)
		}
	}
	return kept
}

// enforceAlternation merges peaks and valleys by index order and drops the
// later pivot whenever two consecutive pivots share a kind. The first pivot
// is always kept.
func enforceAlternation(peaks, valleys []int) ([]int, []int) {
	merged := mergePivots(peaks, valleys)
	if len(merged) == 0 {
		return nil, nil
	}

	valid := []Pivot{merged[0]}
	for _, p := range merged[1:] {
		if p.Kind != valid[len(valid)-1].Kind {
			valid = append(valid, p)
		}
	}

	var outPeaks, outValleys []int
	for _, p := range valid {
		if p.Kind == PivotPeak {
			outPeaks = append(outPeaks, p.Index)
		} else {
			outValleys = append(outValleys, p.Index)
		}
	}
	return outPeaks, outValleys
}

// mergePivots interleaves peak and valley indexes into one ascending pivot
// sequence. Prices are not resolved here; callers fill them as needed.
func mergePivots(peaks, valleys []int) []Pivot {
	var merged []Pivot
	for _, i := range peaks {
		merged = append(merged, Pivot{Index: i, Kind: PivotPeak})
	}
	for _, i := range valleys {
		merged = append(merged, Pivot{Index: i, Kind: PivotValley})
	}
	sort.Slice(merged, func(a, b int) bool { return merged[a].Index < merged[b].Index })
	return merged
}

// coarsePivots is the fallback when adaptive detection finds nothing on a
// side: split the series into ten equal segments and take each segment's
// local max and min, deduplicating indexes.
func coarsePivots(prices []float64) (peaks, valleys []int) {
	const segments = 10
	size := len(prices) / segments
	if size == 0 {
		return nil, nil
	}

	seenPeak := make(map[int]bool)
	seenValley := make(map[int]bool)
	for i := 1; i < segments; i++ {
		start, end := i*size, (i+1)*size
		if end > len(prices) {
			end = len(prices)
		}
		if start >= end {
			break
		}
		maxIdx := start + argMax(prices[start:end])
		minIdx := start + argMin(prices[start:end])
		if !seenPeak[maxIdx] && !seenValley[maxIdx] {
			seenPeak[maxIdx] = true
			peaks = append(peaks, maxIdx)
		}
		if !seenValley[minIdx] && !seenPeak[minIdx] {
			seenValley[minIdx] = true
			valleys = append(valleys, minIdx)
		}
	}
	return peaks, valleys
}

// ---- numeric helpers ----

func negate(series []float64) []float64 {
	out := make([]float64, len(series))
	for i, v := range series {
		out[i] = -v
	}
	return out
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stddev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func argMax(xs []float64) int {
	best := 0
	for i, x := range xs {
		if x > xs[best] {
			best = i
		}
	}
	return best
}

func argMin(xs []float64) int {
	best := 0
	for i, x := range xs {
		if x < xs[best] {
			best = i
		}
	}
	return best
}

func maxFloat(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

func minFloat(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
