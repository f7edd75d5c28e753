// Package indicators computes the optional confirmation indicators
// attached to trade signals: RSI, MACD and ATR.
package indicators

import (
	"github.com/markcheno/go-talib"

	"elliott-wave-analyzer/internal/elliott"
)

// Default lookback periods
const (
	RSIPeriod        = 14
	MACDFastPeriod   = 12
	MACDSlowPeriod   = 26
	MACDSignalPeriod = 9
	ATRPeriod        = 14
)

// Snapshot computes indicators from closing prices alone. ATR needs high
// and low series and is left unset here; use SnapshotOHLC when candles are
// available. Series too short for a lookback leave that indicator unset.
func Snapshot(closes []float64) *elliott.IndicatorSnapshot {
	snapshot := &elliott.IndicatorSnapshot{}

	if len(closes) > RSIPeriod {
		rsi := talib.Rsi(closes, RSIPeriod)
		snapshot.RSI = rsi[len(rsi)-1]
		snapshot.HasRSI = true
	}

	if len(closes) > MACDSlowPeriod+MACDSignalPeriod {
		macdLine, signalLine, _ := talib.Macd(closes, MACDFastPeriod, MACDSlowPeriod, MACDSignalPeriod)
		snapshot.MACD = macdLine[len(macdLine)-1]
		snapshot.MACDSignal = signalLine[len(signalLine)-1]
		snapshot.HasMACD = true
	}

	return snapshot
}

// SnapshotOHLC computes the full indicator set from candle series. The
// three slices must have equal length.
func SnapshotOHLC(highs, lows, closes []float64) *elliott.IndicatorSnapshot {
	snapshot := Snapshot(closes)

	if len(closes) > ATRPeriod && len(highs) == len(closes) && len(lows) == len(closes) {
		atr := talib.Atr(highs, lows, closes, ATRPeriod)
		snapshot.ATR = atr[len(atr)-1]
		snapshot.HasATR = true
	}

	return snapshot
}
