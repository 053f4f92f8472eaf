package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/team3-dev/auto-shift/backend/internal/domain"
)

const employeeColumns = `
	e.id, e.location_id, e.name, e.color, e.is_active,
	e.history_streak, e.worked_last_friday_night, e.worked_last_noon, e.worked_last_night,
	e.created_at, e.version,
	s.min_shifts_per_week, s.max_shifts_per_week,
	s.min_mornings, s.max_mornings, s.min_evenings, s.max_evenings, s.min_nights, s.max_nights
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*domain.Employee, error) {
	e := &domain.Employee{}
	var (
		minShifts, maxShifts sql.NullInt32
		bounds               [6]sql.NullInt32
	)

	dst := []any{
		&e.ID, &e.LocationID, &e.Name, &e.Color, &e.IsActive,
		&e.HistoryStreak, &e.WorkedLastFridayNight, &e.WorkedLastNoon, &e.WorkedLastNight,
		&e.CreatedAt, &e.Version,
		&minShifts, &maxShifts,
		&bounds[0], &bounds[1], &bounds[2], &bounds[3], &bounds[4], &bounds[5],
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	// 没有设置记录时使用默认值
	e.Settings = domain.DefaultEmployeeSettings()
	if minShifts.Valid {
		e.Settings.MinShiftsPerWeek = minShifts.Int32
	}
	if maxShifts.Valid {
		e.Settings.MaxShiftsPerWeek = maxShifts.Int32
	}
	for i, c := range domain.BoundedCategories {
		b := domain.CategoryBounds{Min: int32Ptr(bounds[2*i]), Max: int32Ptr(bounds[2*i+1])}
		if b.Min != nil || b.Max != nil {
			e.Settings.Categories[c] = b
		}
	}

	return e, nil
}

func (r *Repository) CreateEmployee(e *domain.Employee) error {
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
		INSERT INTO employees (location_id, name, color, is_active, history_streak, worked_last_friday_night, worked_last_noon, worked_last_night)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, version
	`

	args := []any{e.LocationID, e.Name, e.Color, e.IsActive, e.HistoryStreak, e.WorkedLastFridayNight, e.WorkedLastNoon, e.WorkedLastNight}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&e.ID, &e.CreatedAt, &e.Version); err != nil {
		return err
	}

	if e.Settings != nil {
		query = `
			INSERT INTO employee_settings (
				employee_id, min_shifts_per_week, max_shifts_per_week,
				min_mornings, max_mornings, min_evenings, max_evenings, min_nights, max_nights
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`

		c := e.Settings.Categories
		args = []any{
			e.ID, e.Settings.MinShiftsPerWeek, e.Settings.MaxShiftsPerWeek,
			nullableInt32(c[domain.CategoryMorning].Min), nullableInt32(c[domain.CategoryMorning].Max),
			nullableInt32(c[domain.CategoryEvening].Min), nullableInt32(c[domain.CategoryEvening].Max),
			nullableInt32(c[domain.CategoryNight].Min), nullableInt32(c[domain.CategoryNight].Max),
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *Repository) GetEmployeeByID(id int64) (*domain.Employee, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT ` + employeeColumns + `
		FROM employees e
		LEFT JOIN employee_settings s ON s.employee_id = e.id
		WHERE e.id = $1
	`

	return scanEmployee(r.dbpool.QueryRowContext(ctx, query, id))
}

// GetEmployeesByLocationID activeOnly 为 true 时只返回在职员工
func (r *Repository) GetEmployeesByLocationID(locationID int64, activeOnly bool) ([]*domain.Employee, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT ` + employeeColumns + `
		FROM employees e
		LEFT JOIN employee_settings s ON s.employee_id = e.id
		WHERE e.location_id = $1 AND (NOT $2 OR e.is_active)
		ORDER BY e.id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, locationID, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := make([]*domain.Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return employees, nil
}
