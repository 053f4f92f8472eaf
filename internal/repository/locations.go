package repository

import (
	"context"
	"time"

	"github.com/team3-dev/auto-shift/backend/internal/domain"
)

func (r *Repository) CreateLocation(location *domain.Location) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO locations (client_id, name, cycle_length, shifts_per_day, cycle_start_weekday)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`

	args := []any{location.ClientID, location.Name, location.CycleLength, location.ShiftsPerDay, int32(location.CycleStartWeekday)}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&location.ID, &location.CreatedAt, &location.Version)
}

func (r *Repository) GetLocationByID(id int64) (*domain.Location, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT client_id, name, cycle_length, shifts_per_day, cycle_start_weekday, created_at, version
		FROM locations WHERE id = $1
	`

	location := &domain.Location{ID: id}
	var weekday int32
	dst := []any{&location.ClientID, &location.Name, &location.CycleLength, &location.ShiftsPerDay, &weekday, &location.CreatedAt, &location.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}
	location.CycleStartWeekday = time.Weekday(weekday)

	return location, nil
}

func (r *Repository) GetAllLocations() ([]*domain.Location, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, client_id, name, cycle_length, shifts_per_day, cycle_start_weekday, created_at, version
		FROM locations ORDER BY id
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := make([]*domain.Location, 0)
	for rows.Next() {
		location := &domain.Location{}
		var weekday int32
		dst := []any{&location.ID, &location.ClientID, &location.Name, &location.CycleLength, &location.ShiftsPerDay, &weekday, &location.CreatedAt, &location.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		location.CycleStartWeekday = time.Weekday(weekday)
		locations = append(locations, location)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return locations, nil
}
