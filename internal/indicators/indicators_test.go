package indicators

import (
	"math"
	"testing"
)

func closes(n int) []float64 {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = 100 + 10*math.Sin(2*math.Pi*float64(i)/20)
	}
	return prices
}

func TestSnapshotComputesRSIAndMACD(t *testing.T) {
	snapshot := Snapshot(closes(100))

	if !snapshot.HasRSI {
		t.Fatal("RSI missing on a 100-point series")
	}
	if snapshot.RSI < 0 || snapshot.RSI > 100 {
		t.Errorf("RSI = %v, want a value in [0, 100]", snapshot.RSI)
	}
	if !snapshot.HasMACD {
		t.Fatal("MACD missing on a 100-point series")
	}
	if snapshot.HasATR {
		t.Error("ATR must stay unset without high/low series")
	}
}

func TestSnapshotSkipsShortSeries(t *testing.T) {
	snapshot := Snapshot(closes(10))

	if snapshot.HasRSI || snapshot.HasMACD {
		t.Errorf("snapshot = %+v, want no indicators on a 10-point series", snapshot)
	}
}

func TestSnapshotOHLCComputesATR(t *testing.T) {
	c := closes(100)
	highs := make([]float64, len(c))
	lows := make([]float64, len(c))
	for i, price := range c {
		highs[i] = price + 1
		lows[i] = price - 1
	}

	snapshot := SnapshotOHLC(highs, lows, c)

	if !snapshot.HasATR {
		t.Fatal("ATR missing with full candle series")
	}
	if snapshot.ATR <= 0 {
		t.Errorf("ATR = %v, want a positive range", snapshot.ATR)
	}
}

func TestSnapshotOHLCMismatchedSeries(t *testing.T) {
	c := closes(100)
	snapshot := SnapshotOHLC(c[:50], c[:50], c)

	if snapshot.HasATR {
		t.Error("ATR must stay unset when series lengths differ")
	}
}
