package repository

import (
	"context"
	"time"

	"github.com/team3-dev/auto-shift/backend/internal/domain"
)

// ReplaceAssignments 在同一个事务中删除 from 之后的排班并插入新的排班，失败时保留原有数据
func (r *Repository) ReplaceAssignments(locationID int64, from time.Time, assignments []domain.Assignment) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 先将之前的排班删除
	query := `DELETE FROM assignments WHERE location_id = $1 AND date >= $2`
	if _, err := tx.ExecContext(ctx, query, locationID, from); err != nil {
		return err
	}

	query = `
		INSERT INTO assignments (location_id, employee_id, shift_id, date)
		VALUES ($1, $2, $3, $4)
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range assignments {
		if _, err := stmt.ExecContext(ctx, locationID, a.EmployeeID, a.ShiftID, a.Date); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetAssignments 返回某地点在 [from, to) 内的排班
func (r *Repository) GetAssignments(locationID int64, from, to time.Time) ([]domain.Assignment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, employee_id, shift_id, date
		FROM assignments
		WHERE location_id = $1 AND date >= $2 AND date < $3
		ORDER BY date, shift_id, employee_id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, locationID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]domain.Assignment, 0)
	for rows.Next() {
		a := domain.Assignment{LocationID: locationID}
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.ShiftID, &a.Date); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return assignments, nil
}
