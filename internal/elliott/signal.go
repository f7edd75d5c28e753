package elliott

import (
	"fmt"
	"math"
)

// Default protective bands used when no wave-based override applies.
const (
	neutralStopRatio   = 0.90
	neutralTargetRatio = 1.10
	stopBufferBuy      = 0.98
	stopBufferSell     = 1.02
	flatProjection     = 0.20
	fibProjection      = 1.618
)

// RSI extreme zones used for optional confirmation notes.
const (
	rsiOversold   = 30.0
	rsiOverbought = 70.0
)

var correctionTargetLabels = []string{"23.6%", "38.2%", "50%", "61.8%", "78.6%"}

// SignalGenerator turns the wave state and current price into a directional
// trade suggestion. A firm direction only comes out when the state machine
// confirmed the trend and flagged an entry; everything else stays neutral.
type SignalGenerator struct{}

// NewSignalGenerator creates a new signal generator
func NewSignalGenerator() *SignalGenerator {
	return &SignalGenerator{}
}

// Generate produces the trade signal. indicators may be nil; confirmation
// notes are simply skipped then.
func (g *SignalGenerator) Generate(currentPrice float64, waves WaveCollection, state CurrentWaveState, indicators *IndicatorSnapshot) TradeSignal {
	signal := TradeSignal{
		Direction:  SignalNeutral,
		Entry:      currentPrice,
		StopLoss:   currentPrice * neutralStopRatio,
		TakeProfit: currentPrice * neutralTargetRatio,
		Trend:      trendText(state.Trend()),
		Confidence: state.Confidence,
	}

	if state.CorrectionPhase {
		signal.Notes = g.correctionNotes(currentPrice, state)
	} else {
		signal.Notes = "no clear signal, waiting recommended"
	}

	if state.TrendConfirmed && state.EntrySignal {
		switch state.Trend() {
		case TrendConfirmedUp:
			g.fillBuy(&signal, currentPrice, waves)
		case TrendConfirmedDown:
			g.fillSell(&signal, currentPrice, waves)
		}
	}

	g.appendConfirmations(&signal, indicators)
	return signal
}

// correctionNotes describes the running correction and its nearest
// Fibonacci target.
func (g *SignalGenerator) correctionNotes(currentPrice float64, state CurrentWaveState) string {
	notes := fmt.Sprintf("correction phase in progress (%d%% complete)", state.CorrectionProgress)
	if len(state.CorrectionTargets) == 0 {
		return notes + " | wait for the correction to complete"
	}

	nearestIdx := 0
	for i, t := range state.CorrectionTargets {
		if math.Abs(t-currentPrice) < math.Abs(state.CorrectionTargets[nearestIdx]-currentPrice) {
			nearestIdx = i
		}
	}
	label := ""
	if nearestIdx < len(correctionTargetLabels) {
		label = " (" + correctionTargetLabels[nearestIdx] + " retracement)"
	}
	notes += fmt.Sprintf(" | nearest correction target: %.2f%s", state.CorrectionTargets[nearestIdx], label)
	return notes + " | wait for the correction to complete"
}

// fillBuy sets the long side: stop under the lowest known up-corrective
// origin, target at the nearer of a flat 20% move and a 1.618 extension of
// the most conservative impulse wave 1.
func (g *SignalGenerator) fillBuy(signal *TradeSignal, currentPrice float64, waves WaveCollection) {
	signal.Direction = SignalBuy

	minOrigin := currentPrice
	for _, key := range waves.SortedKeys() {
		corrective, ok := waves[key].(*CorrectiveWave)
		if !ok || corrective.Direction != DirectionUp {
			continue
		}
		if origin, found := corrective.Leg("0"); found && origin.Price < minOrigin {
			minOrigin = origin.Price
		}
	}
	signal.StopLoss = minOrigin * stopBufferBuy

	target := currentPrice * (1 + flatProjection)
	for _, key := range waves.SortedKeys() {
		impulse, ok := waves[key].(*ImpulseWave)
		if !ok || impulse.Direction != DirectionUp {
			continue
		}
		leg0, ok0 := impulse.Leg("0")
		leg1, ok1 := impulse.Leg("1")
		_, ok3 := impulse.Leg("3")
		if !ok0 || !ok1 || !ok3 {
			continue
		}
		projection := currentPrice + (leg1.Price-leg0.Price)*fibProjection
		if projection < target {
			target = projection
		}
	}
	signal.TakeProfit = target
	signal.Notes = "confirmed buy signal: correction complete, new impulse wave starting"
}

// fillSell mirrors fillBuy for the short side.
func (g *SignalGenerator) fillSell(signal *TradeSignal, currentPrice float64, waves WaveCollection) {
	signal.Direction = SignalSell

	maxOrigin := currentPrice
	for _, key := range waves.SortedKeys() {
		corrective, ok := waves[key].(*CorrectiveWave)
		if !ok || corrective.Direction != DirectionDown {
			continue
		}
		if origin, found := corrective.Leg("0"); found && origin.Price > maxOrigin {
			maxOrigin = origin.Price
		}
	}
	signal.StopLoss = maxOrigin * stopBufferSell

	target := currentPrice * (1 - flatProjection)
	for _, key := range waves.SortedKeys() {
		impulse, ok := waves[key].(*ImpulseWave)
		if !ok || impulse.Direction != DirectionDown {
			continue
		}
		leg0, ok0 := impulse.Leg("0")
		leg1, ok1 := impulse.Leg("1")
		_, ok3 := impulse.Leg("3")
		if !ok0 || !ok1 || !ok3 {
			continue
		}
		projection := currentPrice - (leg0.Price-leg1.Price)*fibProjection
		if projection > target {
			target = projection
		}
	}
	signal.TakeProfit = target
	signal.Notes = "confirmed sell signal: correction complete, new impulse wave starting"
}

// appendConfirmations adds RSI and MACD confirmation notes when the
// optional indicator snapshot agrees with the signal direction.
func (g *SignalGenerator) appendConfirmations(signal *TradeSignal, indicators *IndicatorSnapshot) {
	if indicators == nil {
		return
	}
	if indicators.HasRSI {
		if signal.Direction == SignalBuy && indicators.RSI < rsiOversold {
			signal.Notes += " | extra confirmation: RSI in oversold territory"
		} else if signal.Direction == SignalSell && indicators.RSI > rsiOverbought {
			signal.Notes += " | extra confirmation: RSI in overbought territory"
		}
	}
	if indicators.HasMACD {
		if signal.Direction == SignalBuy && indicators.MACD > indicators.MACDSignal {
			signal.Notes += " | extra confirmation: bullish MACD crossover"
		} else if signal.Direction == SignalSell && indicators.MACD < indicators.MACDSignal {
			signal.Notes += " | extra confirmation: bearish MACD crossover"
		}
	}
}

// trendText renders the trend reading for the signal payload
func trendText(trend TrendClass) string {
	switch trend {
	case TrendConfirmedUp:
		return "confirmed uptrend"
	case TrendConfirmedDown:
		return "confirmed downtrend"
	case TrendCorrectionUp:
		return "upward correction - wait"
	case TrendCorrectionDown:
		return "downward correction - wait"
	default:
		return "unknown"
	}
}
