package database

import "time"

// AnalysisRecord is one persisted analysis run. The price series itself is
// not stored; the digest identifies it for cache correlation.
type AnalysisRecord struct {
	ID               string    `json:"id"`
	SeriesDigest     string    `json:"series_digest"`
	SeriesLength     int       `json:"series_length"`
	Sensitivity      float64   `json:"sensitivity"`
	CurrentWave      string    `json:"current_wave"`
	NextWave         string    `json:"next_wave"`
	WaveCount        int       `json:"wave_count"`
	SignalDirection  string    `json:"signal_direction"`
	SignalConfidence float64   `json:"signal_confidence"`
	EntryPrice       float64   `json:"entry_price"`
	StopLoss         float64   `json:"stop_loss"`
	TakeProfit       float64   `json:"take_profit"`
	CreatedAt        time.Time `json:"created_at"`
}
