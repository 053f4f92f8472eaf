package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/team3-dev/auto-shift/backend/internal/domain"
)

func TestUsernameFromName(t *testing.T) {
	assert.Equal(t, "wangwei", UsernameFromName("王伟"))
	assert.Equal(t, "ira", UsernameFromName("Ira"))
	assert.Equal(t, "annmarie2", UsernameFromName("Ann-Marie 2"))
}

func TestGenerateUsernameFromChineseName(t *testing.T) {
	username := GenerateUsernameFromChineseName("李静")
	assert.Regexp(t, regexp.MustCompile(`^lijing[0-9]{1,3}$`), username)
}

func TestGenerateRandomSettingsIsValid(t *testing.T) {
	for i := 0; i < 200; i++ {
		s := GenerateRandomSettings(7)
		require.NoError(t, ValidateEmployeeSettings(s, 7))
		assert.LessOrEqual(t, s.MaxShiftsPerWeek, int32(7))
	}
}

func TestGenerateRandomColor(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^#[0-9a-f]{6}$`), GenerateRandomColor())
}

func TestValidateEmployeeSettings(t *testing.T) {
	one, two := int32(1), int32(2)

	tests := []struct {
		name     string
		settings *domain.EmployeeSettings
		wantErr  bool
	}{
		{"默认值", domain.DefaultEmployeeSettings(), false},
		{"下限大于上限", &domain.EmployeeSettings{MinShiftsPerWeek: 3, MaxShiftsPerWeek: 2}, true},
		{"负数", &domain.EmployeeSettings{MinShiftsPerWeek: -1, MaxShiftsPerWeek: 2}, true},
		{"下限超过周期", &domain.EmployeeSettings{MinShiftsPerWeek: 8, MaxShiftsPerWeek: 9}, true},
		{"类别合法", &domain.EmployeeSettings{MaxShiftsPerWeek: 5, Categories: map[domain.ShiftCategory]domain.CategoryBounds{
			domain.CategoryNight: {Min: &one, Max: &two},
		}}, false},
		{"类别下限大于上限", &domain.EmployeeSettings{MaxShiftsPerWeek: 5, Categories: map[domain.ShiftCategory]domain.CategoryBounds{
			domain.CategoryMorning: {Min: &two, Max: &one},
		}}, true},
		{"未分类", &domain.EmployeeSettings{MaxShiftsPerWeek: 5, Categories: map[domain.ShiftCategory]domain.CategoryBounds{
			domain.CategoryNone: {Max: &one},
		}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmployeeSettings(tt.settings, 7)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateConstraint(t *testing.T) {
	start := time.Date(2026, 10, 25, 0, 0, 0, 0, time.UTC)
	location := &domain.Location{ID: 1, CycleLength: 7}
	employee := &domain.Employee{ID: 10, LocationID: 1}
	shift := &domain.ShiftDefinition{ID: 100, LocationID: 1}

	c := &domain.WeeklyConstraint{EmployeeID: 10, ShiftID: 100, Date: start.AddDate(0, 0, 6), Type: domain.ConstraintMustWork}
	assert.NoError(t, ValidateConstraint(c, location, employee, shift, start))

	c.Date = start.AddDate(0, 0, 7)
	assert.Error(t, ValidateConstraint(c, location, employee, shift, start))

	c.Date = start.AddDate(0, 0, -1)
	assert.Error(t, ValidateConstraint(c, location, employee, shift, start))

	c.Date = start
	c.Type = "sometimes"
	assert.Error(t, ValidateConstraint(c, location, employee, shift, start))

	c.Type = domain.ConstraintPreferTo
	assert.Error(t, ValidateConstraint(c, location, &domain.Employee{ID: 11, LocationID: 2}, shift, start))
	assert.Error(t, ValidateConstraint(c, location, employee, &domain.ShiftDefinition{ID: 101, LocationID: 2}, start))
}

func TestGenerateRandomConstraintWithinCycle(t *testing.T) {
	start := time.Date(2026, 10, 25, 0, 0, 0, 0, time.UTC)
	employee := &domain.Employee{ID: 10, LocationID: 1}
	shifts := []*domain.ShiftDefinition{{ID: 100, LocationID: 1}, {ID: 101, LocationID: 1}}

	for i := 0; i < 100; i++ {
		c := GenerateRandomConstraint(employee, shifts, start, 7)
		require.NoError(t, ValidateConstraint(c, &domain.Location{ID: 1, CycleLength: 7}, employee, shifts[0], start))
		assert.Contains(t, []int64{100, 101}, c.ShiftID)
	}
}
