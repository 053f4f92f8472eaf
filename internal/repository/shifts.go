package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/team3-dev/auto-shift/backend/internal/domain"
)

func (r *Repository) CreateShiftDefinition(shift *domain.ShiftDefinition) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO shift_definitions (location_id, name, category, position, default_staff_count)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	args := []any{shift.LocationID, shift.Name, string(shift.Category), shift.Position, shift.DefaultStaffCount}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&shift.ID); err != nil {
		return err
	}

	for i := range shift.Demands {
		shift.Demands[i].ShiftDefinitionID = shift.ID
		query := `
			INSERT INTO shift_demands (shift_definition_id, day_of_week, staff_needed)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.ExecContext(ctx, query, shift.ID, shift.Demands[i].DayOfWeek, shift.Demands[i].StaffNeeded); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetShiftDefinitionsByLocationID 返回按 position 排序的班次及其每日需求覆盖
func (r *Repository) GetShiftDefinitionsByLocationID(locationID int64) ([]*domain.ShiftDefinition, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT sd.id, sd.name, sd.category, sd.position, sd.default_staff_count, d.day_of_week, d.staff_needed
		FROM shift_definitions sd
		LEFT JOIN shift_demands d ON d.shift_definition_id = sd.id
		WHERE sd.location_id = $1
		ORDER BY sd.position, sd.id, d.day_of_week
	`

	rows, err := r.dbpool.QueryContext(ctx, query, locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := make([]*domain.ShiftDefinition, 0)
	shiftsMap := make(map[int64]*domain.ShiftDefinition)

	for rows.Next() {
		var (
			id          int64
			name        string
			category    domain.ShiftCategory
			position    int32
			staffCount  int32
			dayOfWeek   sql.NullInt32
			staffNeeded sql.NullInt32
		)
		if err := rows.Scan(&id, &name, &category, &position, &staffCount, &dayOfWeek, &staffNeeded); err != nil {
			return nil, err
		}

		shift, exists := shiftsMap[id]
		if !exists {
			shift = &domain.ShiftDefinition{
				ID:                id,
				LocationID:        locationID,
				Name:              name,
				Category:          category,
				Position:          position,
				DefaultStaffCount: staffCount,
				Demands:           make([]domain.ShiftDemand, 0),
			}
			shiftsMap[id] = shift
			shifts = append(shifts, shift)
		}

		if !dayOfWeek.Valid {
			// 这个班次没有任何覆盖
			continue
		}
		shift.Demands = append(shift.Demands, domain.ShiftDemand{
			ShiftDefinitionID: id,
			DayOfWeek:         dayOfWeek.Int32,
			StaffNeeded:       staffNeeded.Int32,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}
