package domain

import "time"

const (
	DefaultMinShiftsPerWeek = 0
	DefaultMaxShiftsPerWeek = 6
)

// CategoryBounds 某一类别班次的上下限，nil 表示不限制
type CategoryBounds struct {
	Min *int32 `json:"min"`
	Max *int32 `json:"max"`
}

type EmployeeSettings struct {
	MinShiftsPerWeek int32                            `json:"minShiftsPerWeek"`
	MaxShiftsPerWeek int32                            `json:"maxShiftsPerWeek"`
	Categories       map[ShiftCategory]CategoryBounds `json:"categories"`
}

func DefaultEmployeeSettings() *EmployeeSettings {
	return &EmployeeSettings{
		MinShiftsPerWeek: DefaultMinShiftsPerWeek,
		MaxShiftsPerWeek: DefaultMaxShiftsPerWeek,
		Categories:       map[ShiftCategory]CategoryBounds{},
	}
}

// HasCategoryBounds 判断是否配置了任何类别上下限
func (s *EmployeeSettings) HasCategoryBounds() bool {
	for _, b := range s.Categories {
		if b.Min != nil || b.Max != nil {
			return true
		}
	}
	return false
}

type Employee struct {
	ID         int64  `json:"id"`
	LocationID int64  `json:"locationID"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	IsActive   bool   `json:"isActive"`

	// 上一个周期末尾的状态，只用于跨周期的休息惩罚
	HistoryStreak         int32 `json:"historyStreak"`
	WorkedLastFridayNight bool  `json:"workedLastFridayNight"`
	WorkedLastNoon        bool  `json:"workedLastNoon"`
	WorkedLastNight       bool  `json:"workedLastNight"`

	Settings  *EmployeeSettings `json:"settings"`
	CreatedAt time.Time         `json:"createdAt"`
	Version   int32             `json:"-"`
}
