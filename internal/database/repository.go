package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository provides data access for analysis history
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// SaveAnalysis persists one analysis run. A missing ID or timestamp is
// filled in here, not by the caller.
func (r *Repository) SaveAnalysis(ctx context.Context, record *AnalysisRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO analyses (
			id, series_digest, series_length, sensitivity,
			current_wave, next_wave, wave_count,
			signal_direction, signal_confidence,
			entry_price, stop_loss, take_profit, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.Pool.Exec(ctx, query,
		record.ID, record.SeriesDigest, record.SeriesLength, record.Sensitivity,
		record.CurrentWave, record.NextWave, record.WaveCount,
		record.SignalDirection, record.SignalConfidence,
		record.EntryPrice, record.StopLoss, record.TakeProfit, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

// GetRecentAnalyses returns the latest analysis runs, newest first
func (r *Repository) GetRecentAnalyses(ctx context.Context, limit int) ([]*AnalysisRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, series_digest, series_length, sensitivity,
			current_wave, next_wave, wave_count,
			signal_direction, signal_confidence,
			entry_price, stop_loss, take_profit, created_at
		FROM analyses
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	var records []*AnalysisRecord
	for rows.Next() {
		record := &AnalysisRecord{}
		if err := rows.Scan(
			&record.ID, &record.SeriesDigest, &record.SeriesLength, &record.Sensitivity,
			&record.CurrentWave, &record.NextWave, &record.WaveCount,
			&record.SignalDirection, &record.SignalConfidence,
			&record.EntryPrice, &record.StopLoss, &record.TakeProfit, &record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// GetAnalysesByDigest returns runs over the same price series, newest first
func (r *Repository) GetAnalysesByDigest(ctx context.Context, digest string, limit int) ([]*AnalysisRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, series_digest, series_length, sensitivity,
			current_wave, next_wave, wave_count,
			signal_direction, signal_confidence,
			entry_price, stop_loss, take_profit, created_at
		FROM analyses
		WHERE series_digest = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Pool.Query(ctx, query, digest, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses by digest: %w", err)
	}
	defer rows.Close()

	var records []*AnalysisRecord
	for rows.Next() {
		record := &AnalysisRecord{}
		if err := rows.Scan(
			&record.ID, &record.SeriesDigest, &record.SeriesLength, &record.Sensitivity,
			&record.CurrentWave, &record.NextWave, &record.WaveCount,
			&record.SignalDirection, &record.SignalConfidence,
			&record.EntryPrice, &record.StopLoss, &record.TakeProfit, &record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
