package domain

type ShiftCategory string

const (
	CategoryNone    ShiftCategory = "none"
	CategoryMorning ShiftCategory = "morning"
	CategoryEvening ShiftCategory = "evening"
	CategoryNight   ShiftCategory = "night"
)

// 参与上下限约束的班次类别
var BoundedCategories = []ShiftCategory{CategoryMorning, CategoryEvening, CategoryNight}

const DefaultStaffCount = 2

type ShiftDemand struct {
	ShiftDefinitionID int64 `json:"shiftDefinitionID"`
	DayOfWeek         int32 `json:"dayOfWeek"` // 0 表示周日
	StaffNeeded       int32 `json:"staffNeeded"`
}

type ShiftDefinition struct {
	ID                int64         `json:"id"`
	LocationID        int64         `json:"locationID"`
	Name              string        `json:"name"`
	Category          ShiftCategory `json:"category"`
	Position          int32         `json:"position"`
	DefaultStaffCount int32         `json:"defaultStaffCount"`
	Demands           []ShiftDemand `json:"demands"`
}
