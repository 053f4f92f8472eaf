package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/team3-dev/auto-shift/backend/internal/domain"
)

// ValidateEmployeeSettings 检查员工的排班设置是否自洽
func ValidateEmployeeSettings(s *domain.EmployeeSettings, cycleLength int32) error {
	if s.MinShiftsPerWeek < 0 || s.MaxShiftsPerWeek < 0 {
		return errors.New("每周班次数不能为负数")
	}
	if s.MinShiftsPerWeek > s.MaxShiftsPerWeek {
		return errors.New("每周最少班次数不能大于最多班次数")
	}
	if s.MinShiftsPerWeek > cycleLength {
		return fmt.Errorf("每周最少班次数不能超过周期天数 %d", cycleLength)
	}

	for c, b := range s.Categories {
		if c == domain.CategoryNone {
			return errors.New("不能为未分类的班次设置上下限")
		}
		if (b.Min != nil && *b.Min < 0) || (b.Max != nil && *b.Max < 0) {
			return fmt.Errorf("类别 %s 的上下限不能为负数", c)
		}
		if b.Min != nil && b.Max != nil && *b.Min > *b.Max {
			return fmt.Errorf("类别 %s 的下限不能大于上限", c)
		}
	}
	return nil
}

// ValidateConstraint 检查约束是否落在站点的下一个周期内，且员工与班次都属于该站点
func ValidateConstraint(c *domain.WeeklyConstraint, location *domain.Location, employee *domain.Employee, shift *domain.ShiftDefinition, cycleStart time.Time) error {
	if employee.LocationID != location.ID {
		return errors.New("员工不属于该站点")
	}
	if shift.LocationID != location.ID {
		return errors.New("班次不属于该站点")
	}

	switch c.Type {
	case domain.ConstraintCannotWork, domain.ConstraintMustWork, domain.ConstraintPreferNot, domain.ConstraintPreferTo:
	default:
		return fmt.Errorf("未知的约束类型 %s", c.Type)
	}

	cycleEnd := cycleStart.AddDate(0, 0, int(location.CycleLength))
	if c.Date.Before(cycleStart) || !c.Date.Before(cycleEnd) {
		return fmt.Errorf("日期必须在 %s 到 %s 之间", cycleStart.Format(time.DateOnly), cycleEnd.AddDate(0, 0, -1).Format(time.DateOnly))
	}
	return nil
}
