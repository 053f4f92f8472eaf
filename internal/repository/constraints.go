package repository

import (
	"context"
	"time"

	"github.com/team3-dev/auto-shift/backend/internal/domain"
)

func (r *Repository) CreateWeeklyConstraint(c *domain.WeeklyConstraint) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO weekly_constraints (employee_id, shift_id, date, constraint_type)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	return r.dbpool.QueryRowContext(ctx, query, c.EmployeeID, c.ShiftID, c.Date, string(c.Type)).Scan(&c.ID, &c.CreatedAt)
}

// GetWeeklyConstraints 返回某地点员工在 [from, to) 内的所有约束
func (r *Repository) GetWeeklyConstraints(locationID int64, from, to time.Time) ([]*domain.WeeklyConstraint, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT wc.id, wc.employee_id, wc.shift_id, wc.date, wc.constraint_type, wc.created_at
		FROM weekly_constraints wc
		JOIN employees e ON e.id = wc.employee_id
		WHERE e.location_id = $1 AND wc.date >= $2 AND wc.date < $3
		ORDER BY wc.date, wc.id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, locationID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	constraints := make([]*domain.WeeklyConstraint, 0)
	for rows.Next() {
		c := &domain.WeeklyConstraint{}
		if err := rows.Scan(&c.ID, &c.EmployeeID, &c.ShiftID, &c.Date, &c.Type, &c.CreatedAt); err != nil {
			return nil, err
		}
		constraints = append(constraints, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return constraints, nil
}

func (r *Repository) GetWeeklyConstraintByID(locationID, id int64) (*domain.WeeklyConstraint, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT wc.employee_id, wc.shift_id, wc.date, wc.constraint_type, wc.created_at
		FROM weekly_constraints wc
		JOIN employees e ON e.id = wc.employee_id
		WHERE e.location_id = $1 AND wc.id = $2
	`

	c := &domain.WeeklyConstraint{ID: id}
	if err := r.dbpool.QueryRowContext(ctx, query, locationID, id).Scan(&c.EmployeeID, &c.ShiftID, &c.Date, &c.Type, &c.CreatedAt); err != nil {
		return nil, err
	}

	return c, nil
}

func (r *Repository) DeleteWeeklyConstraint(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM weekly_constraints WHERE id = $1
	`

	_, err := r.dbpool.ExecContext(ctx, query, id)
	return err
}
