// Package elliott implements Elliott Wave structure detection over a price
// series: adaptive pivot extraction, impulse/corrective candidate search,
// Fibonacci-rule validation with confidence scoring, current-wave state
// derivation and trade signal generation. The whole pipeline is a pure
// function of the input series and sensitivity; it performs no I/O and keeps
// no state between calls.
package elliott

import (
	"encoding/json"
	"sort"
	"strings"
)

// Direction represents the price direction of a wave or trend
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Opposite returns the mirrored direction
func (d Direction) Opposite() Direction {
	if d == DirectionUp {
		return DirectionDown
	}
	return DirectionUp
}

// PivotKind classifies a pivot as a local maximum or minimum
type PivotKind string

const (
	PivotPeak   PivotKind = "peak"
	PivotValley PivotKind = "valley"
)

// Pivot is a structural anchor point in the price series
type Pivot struct {
	Index int
	Price float64
	Kind  PivotKind
}

// WaveLeg is a single labeled point inside a wave ("0".."5" or "0","A","B","C")
type WaveLeg struct {
	Label string  `json:"label"`
	Index int     `json:"idx"`
	Price float64 `json:"price"`
}

// WaveKind distinguishes the two wave variants
type WaveKind string

const (
	KindImpulse    WaveKind = "impulse"
	KindCorrective WaveKind = "corrective"
)

// Wave is the common view over impulse and corrective waves
type Wave interface {
	Kind() WaveKind
	Dir() Direction
	Score() float64
	Points() []WaveLeg
	LastIndex() int
	Complete() bool
}

// ImpulseWave is a 5-leg move in the dominant trend direction, labeled 0-5.
// Legs holds the points detected so far; a complete wave has all six.
type ImpulseWave struct {
	Legs       []WaveLeg          `json:"legs"`
	Direction  Direction          `json:"direction"`
	Confidence float64            `json:"confidence"`
	Fibonacci  map[string]float64 `json:"fibonacci_levels,omitempty"`
}

var impulseLabels = []string{"0", "1", "2", "3", "4", "5"}

// NewImpulseWave builds a complete impulse wave from six pivot points
func NewImpulseWave(direction Direction, points [6]Pivot) *ImpulseWave {
	w := &ImpulseWave{Direction: direction}
	for i, p := range points {
		w.Legs = append(w.Legs, WaveLeg{Label: impulseLabels[i], Index: p.Index, Price: p.Price})
	}
	return w
}

func (w *ImpulseWave) Kind() WaveKind   { return KindImpulse }
func (w *ImpulseWave) Dir() Direction   { return w.Direction }
func (w *ImpulseWave) Score() float64   { return w.Confidence }
func (w *ImpulseWave) Points() []WaveLeg { return w.Legs }

// Leg returns the leg with the given label, if present
func (w *ImpulseWave) Leg(label string) (WaveLeg, bool) {
	for _, l := range w.Legs {
		if l.Label == label {
			return l, true
		}
	}
	return WaveLeg{}, false
}

// LastIndex returns the series index of the last known leg
func (w *ImpulseWave) LastIndex() int {
	if len(w.Legs) == 0 {
		return -1
	}
	return w.Legs[len(w.Legs)-1].Index
}

// Complete reports whether all six legs 0-5 are present
func (w *ImpulseWave) Complete() bool {
	for _, label := range impulseLabels {
		if _, ok := w.Leg(label); !ok {
			return false
		}
	}
	return true
}

// CorrectiveWave is a 3-leg counter-trend move, labeled 0-A-B-C
type CorrectiveWave struct {
	Legs       []WaveLeg          `json:"legs"`
	Direction  Direction          `json:"direction"`
	Confidence float64            `json:"confidence"`
	Fibonacci  map[string]float64 `json:"fibonacci_levels,omitempty"`
}

var correctiveLabels = []string{"0", "A", "B", "C"}

// NewCorrectiveWave builds a complete corrective wave from four pivot points
func NewCorrectiveWave(direction Direction, points [4]Pivot) *CorrectiveWave {
	w := &CorrectiveWave{Direction: direction}
	for i, p := range points {
		w.Legs = append(w.Legs, WaveLeg{Label: correctiveLabels[i], Index: p.Index, Price: p.Price})
	}
	return w
}

func (w *CorrectiveWave) Kind() WaveKind    { return KindCorrective }
func (w *CorrectiveWave) Dir() Direction    { return w.Direction }
func (w *CorrectiveWave) Score() float64    { return w.Confidence }
func (w *CorrectiveWave) Points() []WaveLeg { return w.Legs }

// Leg returns the leg with the given label, if present
func (w *CorrectiveWave) Leg(label string) (WaveLeg, bool) {
	for _, l := range w.Legs {
		if l.Label == label {
			return l, true
		}
	}
	return WaveLeg{}, false
}

// LastIndex returns the series index of the last known leg
func (w *CorrectiveWave) LastIndex() int {
	if len(w.Legs) == 0 {
		return -1
	}
	return w.Legs[len(w.Legs)-1].Index
}

// Complete reports whether all four legs 0-A-B-C are present
func (w *CorrectiveWave) Complete() bool {
	for _, label := range correctiveLabels {
		if _, ok := w.Leg(label); !ok {
			return false
		}
	}
	return true
}

// WaveCollection maps a unique wave key (kind, direction and discovery
// ordinal, e.g. "Impulse_Up_0") to the wave it names
type WaveCollection map[string]Wave

// SortedKeys returns the collection keys in lexical order. Every scan over
// the collection iterates in this order so that results never depend on map
// iteration order.
func (wc WaveCollection) SortedKeys() []string {
	keys := make([]string, 0, len(wc))
	for k := range wc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UnmarshalJSON restores the concrete wave types behind the Wave interface.
// The key prefix carries the variant, so no extra discriminator field is
// serialized.
func (wc *WaveCollection) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(WaveCollection, len(raw))
	for key, msg := range raw {
		if strings.HasPrefix(key, "Corrective") {
			w := &CorrectiveWave{}
			if err := json.Unmarshal(msg, w); err != nil {
				return err
			}
			out[key] = w
			continue
		}
		w := &ImpulseWave{}
		if err := json.Unmarshal(msg, w); err != nil {
			return err
		}
		out[key] = w
	}
	*wc = out
	return nil
}

// WaveStatus tells whether the selected wave is finished or still developing
type WaveStatus string

const (
	StatusCompleted WaveStatus = "completed"
	StatusForming   WaveStatus = "forming"
)

// WavePhase is the single finite state behind the current-wave flags. The
// individual booleans on CurrentWaveState are derived from it, so the
// transition table lives in one place.
type WavePhase int

const (
	PhaseUnknown WavePhase = iota
	PhaseImpulseStart         // only legs 0/1 present
	PhaseImpulseWave3Setup    // legs through 2 present
	PhaseImpulseWave5Setup    // legs through 4 present
	PhaseImpulseComplete      // all legs through 5 present
	PhaseCorrectiveStart      // only leg 0 present
	PhaseCorrectiveA          // legs through A present
	PhaseCorrectiveB          // legs through B present
	PhaseCorrectiveComplete   // all legs through C present
)

// TrendClass is the directional reading the signal generator acts on
type TrendClass int

const (
	TrendUnknown TrendClass = iota
	TrendConfirmedUp
	TrendConfirmedDown
	TrendCorrectionUp
	TrendCorrectionDown
)

// CurrentWaveState describes where the market sits inside the wave cycle
type CurrentWaveState struct {
	CurrentWave        string     `json:"current_wave"`
	NextWave           string     `json:"next_wave"`
	Position           string     `json:"position"`
	Confidence         float64    `json:"confidence"`
	WaveStatus         WaveStatus `json:"wave_status"`
	Phase              WavePhase  `json:"-"`
	CorrectionPhase    bool       `json:"correction_phase"`
	TrendConfirmed     bool       `json:"trend_confirmed"`
	EntrySignal        bool       `json:"entry_signal"`
	CorrectionTargets  []float64  `json:"correction_targets,omitempty"`
	CorrectionProgress int        `json:"correction_progress"`

	// TrendDirection is the direction a confirmed trend points in; for a
	// completed corrective wave this is the opposite of the corrective's own
	// direction, since a fresh impulse is expected against the correction.
	TrendDirection Direction `json:"trend_direction,omitempty"`
	// CorrectionDirection is the direction of the running or expected
	// correction while the trend is not confirmed.
	CorrectionDirection Direction `json:"correction_direction,omitempty"`
}

// Trend classifies the state into the reading the signal generator uses
func (s *CurrentWaveState) Trend() TrendClass {
	switch {
	case s.TrendConfirmed && s.TrendDirection == DirectionUp:
		return TrendConfirmedUp
	case s.TrendConfirmed && s.TrendDirection == DirectionDown:
		return TrendConfirmedDown
	case s.CorrectionPhase && s.CorrectionDirection == DirectionUp:
		return TrendCorrectionUp
	case s.CorrectionPhase && s.CorrectionDirection == DirectionDown:
		return TrendCorrectionDown
	default:
		return TrendUnknown
	}
}

// SignalDirection is the actionable side of a trade signal
type SignalDirection string

const (
	SignalBuy     SignalDirection = "buy"
	SignalSell    SignalDirection = "sell"
	SignalNeutral SignalDirection = "neutral"
)

// TradeSignal is the directional suggestion derived from the wave state.
// It carries no timestamp: persistence layers attach one when recording, so
// identical inputs always produce an identical signal.
type TradeSignal struct {
	Direction  SignalDirection `json:"direction"`
	Entry      float64         `json:"entry"`
	StopLoss   float64         `json:"stop_loss"`
	TakeProfit float64         `json:"take_profit"`
	Trend      string          `json:"trend"`
	Confidence float64         `json:"confidence"`
	Notes      string          `json:"notes"`
}

// IndicatorSnapshot carries optional confirmation inputs computed outside
// the core. Absent indicators are skipped, never an error.
type IndicatorSnapshot struct {
	RSI        float64
	HasRSI     bool
	MACD       float64
	MACDSignal float64
	HasMACD    bool
	ATR        float64
	HasATR     bool
}

// PatternInfo describes a detected higher-level chart pattern
type PatternInfo struct {
	Reliability       string   `json:"reliability"`
	Description       string   `json:"description"`
	ExpectedDirection string   `json:"expected_direction"`
	WaveKeys          []string `json:"wave_keys,omitempty"`
}

// Analysis is the full result of one pipeline run
type Analysis struct {
	Waves         WaveCollection         `json:"waves"`
	CurrentWave   CurrentWaveState       `json:"current_wave"`
	Patterns      map[string]PatternInfo `json:"patterns"`
	TradingSignal TradeSignal            `json:"trading_signal"`
	PeaksIdx      []int                  `json:"peaks_idx"`
	ValleysIdx    []int                  `json:"valleys_idx"`
}
