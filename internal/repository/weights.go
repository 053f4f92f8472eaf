package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/team3-dev/auto-shift/backend/internal/domain"
)

// GetWeightsByLocationID 地点没有配置权重时返回默认值
func (r *Repository) GetWeightsByLocationID(locationID int64) (*domain.Weights, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT target_shifts, rest_gap, max_nights, max_mornings, max_evenings,
			min_nights, min_mornings, min_evenings, consecutive_nights, preference
		FROM location_weights WHERE location_id = $1
	`

	w := &domain.Weights{LocationID: locationID}
	dst := []any{&w.TargetShifts, &w.RestGap, &w.MaxNights, &w.MaxMornings, &w.MaxEvenings, &w.MinNights, &w.MinMornings, &w.MinEvenings, &w.ConsecutiveNights, &w.Preference}
	if err := r.dbpool.QueryRowContext(ctx, query, locationID).Scan(dst...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.DefaultWeights(locationID), nil
		}
		return nil, err
	}

	return w, nil
}

func (r *Repository) UpsertWeights(w *domain.Weights) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO location_weights (
			location_id, target_shifts, rest_gap, max_nights, max_mornings, max_evenings,
			min_nights, min_mornings, min_evenings, consecutive_nights, preference
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (location_id) DO UPDATE SET
			target_shifts = EXCLUDED.target_shifts,
			rest_gap = EXCLUDED.rest_gap,
			max_nights = EXCLUDED.max_nights,
			max_mornings = EXCLUDED.max_mornings,
			max_evenings = EXCLUDED.max_evenings,
			min_nights = EXCLUDED.min_nights,
			min_mornings = EXCLUDED.min_mornings,
			min_evenings = EXCLUDED.min_evenings,
			consecutive_nights = EXCLUDED.consecutive_nights,
			preference = EXCLUDED.preference
	`

	args := []any{w.LocationID, w.TargetShifts, w.RestGap, w.MaxNights, w.MaxMornings, w.MaxEvenings, w.MinNights, w.MinMornings, w.MinEvenings, w.ConsecutiveNights, w.Preference}
	_, err := r.dbpool.ExecContext(ctx, query, args...)
	return err
}
