package domain

import "time"

type ConstraintType string

const (
	ConstraintCannotWork ConstraintType = "cannot_work"
	ConstraintMustWork   ConstraintType = "must_work"
	ConstraintPreferNot  ConstraintType = "prefer_not"
	ConstraintPreferTo   ConstraintType = "prefer_to"
)

// IsHard 返回该约束是否为硬约束
func (t ConstraintType) IsHard() bool {
	return t == ConstraintCannotWork || t == ConstraintMustWork
}

type WeeklyConstraint struct {
	ID         int64          `json:"id"`
	EmployeeID int64          `json:"employeeID"`
	ShiftID    int64          `json:"shiftID"`
	Date       time.Time      `json:"date"`
	Type       ConstraintType `json:"type"`
	CreatedAt  time.Time      `json:"createdAt"`
}
