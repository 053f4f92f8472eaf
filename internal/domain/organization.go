package domain

import "time"

type Organization struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Client struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organizationID"`
	Name           string    `json:"name"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Location 是排班的基本单位，每个地点独立求解
type Location struct {
	ID                int64        `json:"id"`
	ClientID          int64        `json:"clientID"`
	Name              string       `json:"name"`
	CycleLength       int32        `json:"cycleLength"`
	ShiftsPerDay      int32        `json:"shiftsPerDay"`
	CycleStartWeekday time.Weekday `json:"cycleStartWeekday"`
	CreatedAt         time.Time    `json:"createdAt"`
	Version           int32        `json:"-"`
}

const (
	DefaultCycleLength  = 7
	DefaultShiftsPerDay = 3
)
