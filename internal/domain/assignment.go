package domain

import "time"

type SolveStatus string

const (
	SolveStatusOptimal  SolveStatus = "OPTIMAL"
	SolveStatusFeasible SolveStatus = "FEASIBLE"
	SolveStatusFailed   SolveStatus = "FAILED"
)

// DayAssignment 求解器输出，Day 是相对于周期开始的天数
type DayAssignment struct {
	EmployeeID int64 `json:"employeeID"`
	ShiftID    int64 `json:"shiftID"`
	Day        int32 `json:"day"`
}

type Assignment struct {
	ID         int64     `json:"id"`
	LocationID int64     `json:"locationID"`
	EmployeeID int64     `json:"employeeID"`
	ShiftID    int64     `json:"shiftID"`
	Date       time.Time `json:"date"`
}

type SolveReport struct {
	LocationID       int64       `json:"locationID"`
	LocationName     string      `json:"locationName"`
	Status           SolveStatus `json:"status"`
	Objective        *int64      `json:"objective"`
	AssignmentsCount int         `json:"assignmentsCount"`
	CycleStart       time.Time   `json:"cycleStart"`
	Duration         string      `json:"duration"`
}
