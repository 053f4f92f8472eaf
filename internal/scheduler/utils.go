package scheduler

import (
	"time"

	"github.com/team3-dev/auto-shift/backend/internal/domain"
)

// ResolveDemand 返回某个班次在某个星期几需要的人数，有覆盖值时使用覆盖值
func ResolveDemand(shift *domain.ShiftDefinition, weekday time.Weekday) int32 {
	for _, d := range shift.Demands {
		if d.DayOfWeek == int32(weekday) {
			return d.StaffNeeded
		}
	}
	return shift.DefaultStaffCount
}

// NextCycleStart 返回今天之后（不含今天）第一个 weekday 的 UTC 零点，今天按 UTC 计算
func NextCycleStart(now time.Time, weekday time.Weekday) time.Time {
	today := truncateToDate(now.UTC())
	days := (int(weekday) - int(today.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return today.AddDate(0, 0, days)
}

// Materialize 将相对天数转换为具体日期
func Materialize(start time.Time, locationID int64, items []domain.DayAssignment) []domain.Assignment {
	start = truncateToDate(start)
	assignments := make([]domain.Assignment, 0, len(items))
	for _, item := range items {
		assignments = append(assignments, domain.Assignment{
			LocationID: locationID,
			EmployeeID: item.EmployeeID,
			ShiftID:    item.ShiftID,
			Date:       start.AddDate(0, 0, int(item.Day)),
		})
	}
	return assignments
}

// DayIndex 返回 date 相对于 start 的天数，按日历日计算
func DayIndex(start, date time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return int(d.Sub(s).Hours() / 24)
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
