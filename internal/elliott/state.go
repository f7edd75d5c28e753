package elliott

import "fmt"

// WaveStateMachine selects the most relevant wave from a collection and
// maps its phase to the current/next wave labels, trend confirmation and
// entry flags. The transition table in phaseRows is the single source of
// truth; every boolean on CurrentWaveState derives from the phase.
type WaveStateMachine struct{}

// NewWaveStateMachine creates a new state machine
func NewWaveStateMachine() *WaveStateMachine {
	return &WaveStateMachine{}
}

// phaseRow is one row of the transition table
type phaseRow struct {
	currentWave     string
	nextWave        string
	confidence      float64
	correctionPhase bool
	trendConfirmed  bool
	entrySignal     bool
	progress        int
}

var phaseRows = map[WavePhase]phaseRow{
	PhaseImpulseStart:       {currentWave: "0/1", nextWave: "1/2", confidence: 0.7},
	PhaseImpulseWave3Setup:  {currentWave: "2", nextWave: "3", confidence: 1.0, trendConfirmed: true, entrySignal: true},
	PhaseImpulseWave5Setup:  {currentWave: "4", nextWave: "5", confidence: 1.0, trendConfirmed: true, entrySignal: true},
	PhaseImpulseComplete:    {currentWave: "5", nextWave: "A", confidence: 0.95, correctionPhase: true},
	PhaseCorrectiveStart:    {currentWave: "0", nextWave: "A", confidence: 0.6, correctionPhase: true, progress: 0},
	PhaseCorrectiveA:        {currentWave: "A", nextWave: "B", confidence: 0.7, correctionPhase: true, progress: 33},
	PhaseCorrectiveB:        {currentWave: "B", nextWave: "C", confidence: 0.8, correctionPhase: true, progress: 67},
	PhaseCorrectiveComplete: {currentWave: "C", nextWave: "1", confidence: 1.0, trendConfirmed: true, entrySignal: true},
}

// Ratios for the correction targets published when an impulse completes.
var correctionRatios = []float64{0.236, 0.382, 0.5, 0.618, 0.786}

// CurrentState determines the current position inside the wave cycle. With
// no usable wave it returns the unknown state: confidence 0.9, every flag
// false.
func (m *WaveStateMachine) CurrentState(waves WaveCollection) CurrentWaveState {
	state := CurrentWaveState{
		CurrentWave: "unknown",
		NextWave:    "unknown",
		Position:    "unknown",
		Confidence:  0.9,
		WaveStatus:  StatusCompleted,
		Phase:       PhaseUnknown,
	}
	if len(waves) == 0 {
		return state
	}

	selectedKey, status := m.selectWave(waves)
	if selectedKey == "" {
		return state
	}

	wave := waves[selectedKey]
	state.WaveStatus = status
	state.Phase = wavePhase(wave)

	row, ok := phaseRows[state.Phase]
	if !ok {
		return state
	}

	state.CurrentWave = row.currentWave
	state.NextWave = row.nextWave
	state.Confidence = row.confidence
	state.CorrectionPhase = row.correctionPhase
	state.TrendConfirmed = row.trendConfirmed
	state.EntrySignal = row.entrySignal
	state.CorrectionProgress = row.progress

	direction := wave.Dir()
	switch state.Phase {
	case PhaseCorrectiveComplete:
		// A fresh impulse is expected against the finished correction.
		state.TrendDirection = direction.Opposite()
	case PhaseImpulseComplete:
		state.CorrectionDirection = direction.Opposite()
		if impulse, isImpulse := wave.(*ImpulseWave); isImpulse {
			state.CorrectionTargets = correctionTargets(impulse)
		}
	default:
		if row.trendConfirmed {
			state.TrendDirection = direction
		}
		if row.correctionPhase {
			state.CorrectionDirection = direction
		}
	}

	state.Position = positionText(state.Phase, direction)
	return state
}

// selectWave finds the latest completed wave (highest end index, ties to
// the higher confidence) and the latest forming wave, preferring the
// forming one when its last leg lands within 5 bars of the completed end.
func (m *WaveStateMachine) selectWave(waves WaveCollection) (string, WaveStatus) {
	completedKey, formingKey := "", ""
	completedEnd, formingLast := -1, -1
	highestConfidence := 0.0

	for _, key := range waves.SortedKeys() {
		w := waves[key]
		if w.Complete() {
			end := w.LastIndex()
			if end > completedEnd && w.Score() >= highestConfidence {
				completedKey = key
				completedEnd = end
				highestConfidence = w.Score()
			}
			continue
		}
		if last := w.LastIndex(); last > formingLast {
			formingKey = key
			formingLast = last
		}
	}

	if formingKey != "" && formingLast > completedEnd-5 {
		return formingKey, StatusForming
	}
	if completedKey != "" {
		return completedKey, StatusCompleted
	}
	return "", StatusCompleted
}

// wavePhase maps the legs present on a wave to its phase. Presence checks
// run from the latest label downward, mirroring how the wave grows.
func wavePhase(w Wave) WavePhase {
	switch wave := w.(type) {
	case *ImpulseWave:
		switch {
		case hasLeg(wave.Legs, "5"):
			return PhaseImpulseComplete
		case hasLeg(wave.Legs, "4"):
			return PhaseImpulseWave5Setup
		case hasLeg(wave.Legs, "2"):
			return PhaseImpulseWave3Setup
		default:
			return PhaseImpulseStart
		}
	case *CorrectiveWave:
		switch {
		case hasLeg(wave.Legs, "C"):
			return PhaseCorrectiveComplete
		case hasLeg(wave.Legs, "B"):
			return PhaseCorrectiveB
		case hasLeg(wave.Legs, "A"):
			return PhaseCorrectiveA
		default:
			return PhaseCorrectiveStart
		}
	}
	return PhaseUnknown
}

func hasLeg(legs []WaveLeg, label string) bool {
	for _, l := range legs {
		if l.Label == label {
			return true
		}
	}
	return false
}

// correctionTargets publishes the five retracement levels (23.6% to 78.6%)
// of the completed impulse range, measured back from its end.
func correctionTargets(w *ImpulseWave) []float64 {
	start, ok0 := w.Leg("0")
	end, ok5 := w.Leg("5")
	if !ok0 || !ok5 {
		return nil
	}
	waveRange := end.Price - start.Price
	if w.Direction == DirectionDown {
		waveRange = start.Price - end.Price
	}

	targets := make([]float64, 0, len(correctionRatios))
	for _, r := range correctionRatios {
		if w.Direction == DirectionUp {
			targets = append(targets, end.Price-waveRange*r)
		} else {
			targets = append(targets, end.Price+waveRange*r)
		}
	}
	return targets
}

// positionText renders the descriptive position. The direction words
// ("up"/"down") are part of the contract: collaborators parse them as trend
// tags.
func positionText(phase WavePhase, direction Direction) string {
	other := direction.Opposite()
	switch phase {
	case PhaseImpulseStart:
		return fmt.Sprintf("possible %s impulse forming, wait for confirmation", direction)
	case PhaseImpulseWave3Setup:
		return fmt.Sprintf("wave 2 %s complete, expecting wave 3 %s (strongest wave)", other, direction)
	case PhaseImpulseWave5Setup:
		return fmt.Sprintf("wave 4 %s complete, expecting wave 5 %s", other, direction)
	case PhaseImpulseComplete:
		return fmt.Sprintf("%s impulse complete, expecting %s correction", direction, other)
	case PhaseCorrectiveStart:
		return fmt.Sprintf("possible %s correction forming, wait", direction)
	case PhaseCorrectiveA:
		return fmt.Sprintf("wave A %s complete, expecting wave B %s (mid correction)", direction, other)
	case PhaseCorrectiveB:
		return fmt.Sprintf("wave B %s complete, expecting wave C %s (last corrective wave)", other, direction)
	case PhaseCorrectiveComplete:
		return fmt.Sprintf("%s correction complete, expecting new %s impulse", direction, other)
	default:
		return "unknown"
	}
}
