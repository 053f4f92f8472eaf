package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/team3-dev/auto-shift/backend/internal/domain"
)

// 2026-10-25 是周日
var sunday = time.Date(2026, 10, 25, 0, 0, 0, 0, time.UTC)

func i32(v int32) *int32 { return &v }

func newEmployee(id int64, min, max int32) *domain.Employee {
	return &domain.Employee{
		ID:       id,
		Name:     "emp",
		IsActive: true,
		Settings: &domain.EmployeeSettings{
			MinShiftsPerWeek: min,
			MaxShiftsPerWeek: max,
			Categories:       map[domain.ShiftCategory]domain.CategoryBounds{},
		},
	}
}

func threeShifts(staff int32) []*domain.ShiftDefinition {
	return []*domain.ShiftDefinition{
		{ID: 10, Name: "Morning", Category: domain.CategoryMorning, Position: 0, DefaultStaffCount: staff},
		{ID: 11, Name: "Evening", Category: domain.CategoryEvening, Position: 1, DefaultStaffCount: staff},
		{ID: 12, Name: "Night", Category: domain.CategoryNight, Position: 2, DefaultStaffCount: staff},
	}
}

func location(days int32) *domain.Location {
	return &domain.Location{ID: 1, Name: "Gate 1", CycleLength: days, ShiftsPerDay: 3, CycleStartWeekday: time.Sunday}
}

func params() *Parameters {
	return &Parameters{TimeLimit: 5 * time.Second, NodeLimit: 500000}
}

func schedule(t *testing.T, input *Input) *Result {
	t.Helper()
	s, err := New(params(), input)
	require.NoError(t, err)
	res, err := s.Schedule(context.Background())
	require.NoError(t, err)
	return res
}

func TestSingleSlotOnlyTargetPenalty(t *testing.T) {
	res := schedule(t, &Input{
		Location:   location(1),
		CycleStart: sunday,
		Employees:  []*domain.Employee{newEmployee(1, 0, 2), newEmployee(2, 0, 2)},
		Shifts:     []*domain.ShiftDefinition{{ID: 10, Name: "Day", Category: domain.CategoryNone, DefaultStaffCount: 1}},
	})

	require.Equal(t, domain.SolveStatusOptimal, res.Status)
	require.Len(t, res.Assignments, 1)
	require.NotNil(t, res.Objective)
	// 目标为 1，未被安排的员工偏差为 1
	assert.Equal(t, int64(40), *res.Objective)
}

func TestSingleSlotDefaultSettings(t *testing.T) {
	a := &domain.Employee{ID: 1, IsActive: true}
	b := &domain.Employee{ID: 2, IsActive: true}
	res := schedule(t, &Input{
		Location:   location(1),
		CycleStart: sunday,
		Employees:  []*domain.Employee{a, b},
		Shifts:     []*domain.ShiftDefinition{{ID: 10, Category: domain.CategoryNone, DefaultStaffCount: 1}},
	})

	require.Equal(t, domain.SolveStatusOptimal, res.Status)
	require.Len(t, res.Assignments, 1)
	// 默认 0~6，目标为 3：偏差 2 + 3
	assert.Equal(t, int64(5*40), *res.Objective)
}

func TestDemandExceedsEligibleStaff(t *testing.T) {
	res := schedule(t, &Input{
		Location:   location(1),
		CycleStart: sunday,
		Employees:  []*domain.Employee{newEmployee(1, 0, 6), newEmployee(2, 0, 6)},
		Shifts:     []*domain.ShiftDefinition{{ID: 10, Category: domain.CategoryNone, DefaultStaffCount: 2}},
		Constraints: []*domain.WeeklyConstraint{
			{ID: 1, EmployeeID: 2, ShiftID: 10, Date: sunday, Type: domain.ConstraintCannotWork},
		},
	})

	assert.Equal(t, domain.SolveStatusFailed, res.Status)
	assert.Empty(t, res.Assignments)
	assert.Nil(t, res.Objective)
	assert.False(t, res.Accepted())
}

func TestMustNightCannotMorning(t *testing.T) {
	res := schedule(t, &Input{
		Location:   location(1),
		CycleStart: sunday,
		Employees:  []*domain.Employee{newEmployee(1, 0, 6), newEmployee(2, 0, 6), newEmployee(3, 0, 6)},
		Shifts:     threeShifts(1),
		Constraints: []*domain.WeeklyConstraint{
			{ID: 1, EmployeeID: 1, ShiftID: 12, Date: sunday, Type: domain.ConstraintMustWork},
			{ID: 2, EmployeeID: 1, ShiftID: 10, Date: sunday, Type: domain.ConstraintCannotWork},
		},
	})

	require.True(t, res.Accepted())
	var shifts []int64
	for _, a := range res.Assignments {
		if a.EmployeeID == 1 {
			shifts = append(shifts, a.ShiftID)
		}
	}
	assert.Equal(t, []int64{12}, shifts)
}

func TestContradictoryPinsRejected(t *testing.T) {
	_, err := New(params(), &Input{
		Location:   location(7),
		CycleStart: sunday,
		Employees:  []*domain.Employee{newEmployee(1, 0, 6)},
		Shifts:     threeShifts(1),
		Constraints: []*domain.WeeklyConstraint{
			{ID: 1, EmployeeID: 1, ShiftID: 10, Date: sunday.AddDate(0, 0, 2), Type: domain.ConstraintMustWork},
			{ID: 2, EmployeeID: 1, ShiftID: 10, Date: sunday.AddDate(0, 0, 2), Type: domain.ConstraintCannotWork},
		},
	})
	assert.ErrorIs(t, err, ErrContradictoryPins)
}

func TestCategoryBoundsNeedThreeShiftTypes(t *testing.T) {
	e := newEmployee(1, 0, 6)
	e.Settings.Categories[domain.CategoryNight] = domain.CategoryBounds{Max: i32(1)}

	_, err := New(params(), &Input{
		Location:   location(7),
		CycleStart: sunday,
		Employees:  []*domain.Employee{e},
		Shifts: []*domain.ShiftDefinition{
			{ID: 10, Category: domain.CategoryMorning, DefaultStaffCount: 1},
			{ID: 12, Category: domain.CategoryNight, DefaultStaffCount: 1},
		},
	})
	assert.ErrorIs(t, err, ErrCategoryShiftTypes)
}

func TestCategoryWithoutShiftRejected(t *testing.T) {
	e := newEmployee(1, 0, 6)
	e.Settings.Categories[domain.CategoryNight] = domain.CategoryBounds{Min: i32(1)}
	shifts := threeShifts(1)
	shifts[2].Category = domain.CategoryNone

	_, err := New(params(), &Input{
		Location:   location(7),
		CycleStart: sunday,
		Employees:  []*domain.Employee{e},
		Shifts:     shifts,
	})
	assert.ErrorIs(t, err, ErrCategoryShiftTypes)
}

func TestInvalidInputs(t *testing.T) {
	_, err := New(params(), &Input{Location: location(0), Shifts: threeShifts(1)})
	assert.ErrorIs(t, err, ErrInvalidCycle)

	_, err = New(params(), &Input{Location: location(7), Employees: []*domain.Employee{newEmployee(1, 0, 6)}})
	assert.ErrorIs(t, err, ErrNoShiftTypes)

	inactive := newEmployee(1, 0, 6)
	inactive.IsActive = false
	_, err = New(params(), &Input{Location: location(7), Employees: []*domain.Employee{inactive}, Shifts: threeShifts(1)})
	assert.ErrorIs(t, err, ErrNoEmployees)

	_, err = New(params(), &Input{Location: location(7), Employees: []*domain.Employee{newEmployee(1, 4, 2)}, Shifts: threeShifts(1)})
	assert.ErrorIs(t, err, ErrInvalidBounds)
}

func TestInactiveEmployeesExcluded(t *testing.T) {
	inactive := newEmployee(2, 0, 6)
	inactive.IsActive = false

	res := schedule(t, &Input{
		Location:   location(1),
		CycleStart: sunday,
		Employees:  []*domain.Employee{newEmployee(1, 0, 6), inactive},
		Shifts:     []*domain.ShiftDefinition{{ID: 10, DefaultStaffCount: 1}},
	})

	require.True(t, res.Accepted())
	require.Len(t, res.Assignments, 1)
	assert.Equal(t, int64(1), res.Assignments[0].EmployeeID)
}

func TestRestGapRulesSteerDayZero(t *testing.T) {
	// 员工 1 上周期最后一个夜班上过班，第 0 天的晚班和夜班都会被惩罚
	tired := newEmployee(1, 0, 6)
	tired.WorkedLastNight = true

	res := schedule(t, &Input{
		Location:   location(1),
		CycleStart: sunday,
		Employees:  []*domain.Employee{tired, newEmployee(2, 0, 6), newEmployee(3, 0, 6)},
		Shifts:     threeShifts(1),
	})

	require.Equal(t, domain.SolveStatusOptimal, res.Status)
	for _, a := range res.Assignments {
		if a.EmployeeID == 1 {
			assert.Equal(t, int64(10), a.ShiftID)
		}
	}
}

func TestConsecutiveNightsPenalty(t *testing.T) {
	shifts := []*domain.ShiftDefinition{
		{ID: 10, Name: "Morning", Category: domain.CategoryMorning, Position: 0, DefaultStaffCount: 1},
		{ID: 12, Name: "Night", Category: domain.CategoryNight, Position: 1, DefaultStaffCount: 1},
	}

	// 两人每天都要上班，偏差各为 1；夜班可以错开
	res := schedule(t, &Input{
		Location:   location(2),
		CycleStart: sunday,
		Employees:  []*domain.Employee{newEmployee(1, 0, 2), newEmployee(2, 0, 2)},
		Shifts:     shifts,
	})
	require.Equal(t, domain.SolveStatusOptimal, res.Status)
	assert.Equal(t, int64(80), *res.Objective)
	nights := map[int64]int{}
	for _, a := range res.Assignments {
		if a.ShiftID == 12 {
			nights[a.EmployeeID]++
		}
	}
	assert.Equal(t, map[int64]int{1: 1, 2: 1}, nights)

	// 强制连续两个夜班
	res = schedule(t, &Input{
		Location:   location(2),
		CycleStart: sunday,
		Employees:  []*domain.Employee{newEmployee(1, 0, 2), newEmployee(2, 0, 2)},
		Shifts:     shifts,
		Constraints: []*domain.WeeklyConstraint{
			{ID: 1, EmployeeID: 1, ShiftID: 12, Date: sunday, Type: domain.ConstraintMustWork},
			{ID: 2, EmployeeID: 1, ShiftID: 12, Date: sunday.AddDate(0, 0, 1), Type: domain.ConstraintMustWork},
		},
	})
	require.Equal(t, domain.SolveStatusOptimal, res.Status)
	assert.Equal(t, int64(80+domain.DefaultWeights(1).ConsecutiveNights), *res.Objective)
}

func TestCategoryMaxExceeded(t *testing.T) {
	noNights := func(id int64) *domain.Employee {
		e := newEmployee(id, 0, 2)
		e.Settings.Categories[domain.CategoryNight] = domain.CategoryBounds{Max: i32(0)}
		return e
	}

	// 员工 3 没有限制，夜班交给他
	res := schedule(t, &Input{
		Location:   location(1),
		CycleStart: sunday,
		Employees:  []*domain.Employee{noNights(1), noNights(2), newEmployee(3, 0, 2)},
		Shifts:     threeShifts(1),
	})
	require.Equal(t, domain.SolveStatusOptimal, res.Status)
	assert.Equal(t, int64(0), *res.Objective)
	for _, a := range res.Assignments {
		if a.ShiftID == 12 {
			assert.Equal(t, int64(3), a.EmployeeID)
		}
	}

	// 所有人都不想上夜班，总有一人超出上限
	res = schedule(t, &Input{
		Location:   location(1),
		CycleStart: sunday,
		Employees:  []*domain.Employee{noNights(1), noNights(2), noNights(3)},
		Shifts:     threeShifts(1),
	})
	require.Equal(t, domain.SolveStatusOptimal, res.Status)
	assert.Equal(t, domain.DefaultWeights(1).MaxNights, *res.Objective)
}

func TestCategoryMinUnmet(t *testing.T) {
	wantsMorning := func(id int64) *domain.Employee {
		e := newEmployee(id, 0, 2)
		e.Settings.Categories[domain.CategoryMorning] = domain.CategoryBounds{Min: i32(1)}
		return e
	}

	// 只有一个早班，两人中必有一人达不到下限
	res := schedule(t, &Input{
		Location:   location(1),
		CycleStart: sunday,
		Employees:  []*domain.Employee{wantsMorning(1), wantsMorning(2), newEmployee(3, 0, 2)},
		Shifts:     threeShifts(1),
	})
	require.Equal(t, domain.SolveStatusOptimal, res.Status)
	assert.Equal(t, domain.DefaultWeights(1).MinMornings, *res.Objective)
	for _, a := range res.Assignments {
		if a.ShiftID == 10 {
			assert.NotEqual(t, int64(3), a.EmployeeID)
		}
	}
}

func TestSoftPreferences(t *testing.T) {
	res := schedule(t, &Input{
		Location:   location(1),
		CycleStart: sunday,
		Employees:  []*domain.Employee{newEmployee(1, 0, 2), newEmployee(2, 0, 2)},
		Shifts:     []*domain.ShiftDefinition{{ID: 10, DefaultStaffCount: 1}},
		Constraints: []*domain.WeeklyConstraint{
			{ID: 1, EmployeeID: 1, ShiftID: 10, Date: sunday, Type: domain.ConstraintPreferNot},
			{ID: 2, EmployeeID: 2, ShiftID: 10, Date: sunday, Type: domain.ConstraintPreferTo},
		},
	})

	require.Equal(t, domain.SolveStatusOptimal, res.Status)
	require.Len(t, res.Assignments, 1)
	assert.Equal(t, int64(2), res.Assignments[0].EmployeeID)
	assert.Equal(t, int64(40), *res.Objective)
}

func TestPinsOutsideCycleIgnored(t *testing.T) {
	res := schedule(t, &Input{
		Location:   location(1),
		CycleStart: sunday,
		Employees:  []*domain.Employee{newEmployee(1, 0, 6)},
		Shifts:     []*domain.ShiftDefinition{{ID: 10, DefaultStaffCount: 1}},
		Constraints: []*domain.WeeklyConstraint{
			{ID: 1, EmployeeID: 1, ShiftID: 10, Date: sunday.AddDate(0, 0, 3), Type: domain.ConstraintCannotWork},
			{ID: 2, EmployeeID: 1, ShiftID: 99, Date: sunday, Type: domain.ConstraintCannotWork},
			{ID: 3, EmployeeID: 42, ShiftID: 10, Date: sunday, Type: domain.ConstraintCannotWork},
		},
	})

	require.True(t, res.Accepted())
	assert.Len(t, res.Assignments, 1)
}

func TestWeekLongRosterHardConstraints(t *testing.T) {
	employees := make([]*domain.Employee, 0, 8)
	for id := int64(1); id <= 8; id++ {
		employees = append(employees, newEmployee(id, 3, 6))
	}
	employees[0].Settings.Categories[domain.CategoryNight] = domain.CategoryBounds{Min: i32(1), Max: i32(2)}
	employees[1].WorkedLastNoon = true

	shifts := threeShifts(2)
	// 周五早班只需要 1 人
	shifts[0].Demands = []domain.ShiftDemand{{ShiftDefinitionID: 10, DayOfWeek: int32(time.Friday), StaffNeeded: 1}}

	constraints := []*domain.WeeklyConstraint{
		{ID: 1, EmployeeID: 3, ShiftID: 12, Date: sunday.AddDate(0, 0, 1), Type: domain.ConstraintMustWork},
		{ID: 2, EmployeeID: 4, ShiftID: 10, Date: sunday.AddDate(0, 0, 2), Type: domain.ConstraintCannotWork},
		{ID: 3, EmployeeID: 4, ShiftID: 11, Date: sunday.AddDate(0, 0, 2), Type: domain.ConstraintCannotWork},
		{ID: 4, EmployeeID: 5, ShiftID: 11, Date: sunday.AddDate(0, 0, 4), Type: domain.ConstraintMustWork},
	}

	input := &Input{
		Location:    location(7),
		CycleStart:  sunday,
		Employees:   employees,
		Shifts:      shifts,
		Constraints: constraints,
	}
	res := schedule(t, input)
	require.True(t, res.Accepted(), "status %s", res.Status)

	perSlot := map[[2]int64]int32{}
	perDay := map[[2]int64]int{}
	total := map[int64]int32{}
	cells := map[[3]int64]bool{}
	for _, a := range res.Assignments {
		perSlot[[2]int64{int64(a.Day), a.ShiftID}]++
		perDay[[2]int64{a.EmployeeID, int64(a.Day)}]++
		total[a.EmployeeID]++
		cells[[3]int64{a.EmployeeID, int64(a.Day), a.ShiftID}] = true
	}

	for d := 0; d < 7; d++ {
		weekday := sunday.AddDate(0, 0, d).Weekday()
		for _, shift := range shifts {
			assert.Equal(t, ResolveDemand(shift, weekday), perSlot[[2]int64{int64(d), shift.ID}], "day %d shift %d", d, shift.ID)
		}
	}
	for key, n := range perDay {
		assert.LessOrEqual(t, n, 1, "employee %d day %d", key[0], key[1])
	}
	for _, e := range employees {
		assert.GreaterOrEqual(t, total[e.ID], e.Settings.MinShiftsPerWeek)
		assert.LessOrEqual(t, total[e.ID], e.Settings.MaxShiftsPerWeek)
	}
	assert.True(t, cells[[3]int64{3, 1, 12}])
	assert.True(t, cells[[3]int64{5, 4, 11}])
	assert.False(t, cells[[3]int64{4, 2, 10}])
	assert.False(t, cells[[3]int64{4, 2, 11}])
}

func TestResolveDemand(t *testing.T) {
	shift := &domain.ShiftDefinition{
		DefaultStaffCount: 2,
		Demands:           []domain.ShiftDemand{{DayOfWeek: int32(time.Friday), StaffNeeded: 1}},
	}
	assert.Equal(t, int32(2), ResolveDemand(shift, time.Monday))
	assert.Equal(t, int32(1), ResolveDemand(shift, time.Friday))

	shift.Demands[0].StaffNeeded = 5
	shift.DefaultStaffCount = 0
	assert.Equal(t, int32(5), ResolveDemand(shift, time.Friday))
	assert.Equal(t, int32(0), ResolveDemand(shift, time.Saturday))
}

func TestNextCycleStart(t *testing.T) {
	tests := []struct {
		now  time.Time
		want time.Time
	}{
		{time.Date(2026, 10, 19, 15, 30, 0, 0, time.UTC), time.Date(2026, 10, 25, 0, 0, 0, 0, time.UTC)}, // 周一
		{time.Date(2026, 10, 24, 23, 59, 0, 0, time.UTC), time.Date(2026, 10, 25, 0, 0, 0, 0, time.UTC)}, // 周六
		{time.Date(2026, 10, 25, 8, 0, 0, 0, time.UTC), time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)},    // 周日当天不算
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NextCycleStart(tt.now, time.Sunday))
	}

	assert.Equal(t, time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), NextCycleStart(tests[0].now, time.Tuesday))

	// 按 UTC 日期计算，与调用方所在时区无关
	tokyo := time.FixedZone("JST", 9*60*60)
	got := NextCycleStart(time.Date(2026, 10, 25, 8, 0, 0, 0, tokyo), time.Sunday)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, time.Date(2026, 10, 25, 0, 0, 0, 0, time.UTC), got)
	newYork := time.FixedZone("EDT", -4*60*60)
	assert.Equal(t, time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC), NextCycleStart(time.Date(2026, 10, 24, 22, 0, 0, 0, newYork), time.Sunday))
}

func TestMaterialize(t *testing.T) {
	items := []domain.DayAssignment{
		{EmployeeID: 1, ShiftID: 10, Day: 0},
		{EmployeeID: 2, ShiftID: 12, Day: 6},
	}
	got := Materialize(sunday, 7, items)
	require.Len(t, got, 2)
	assert.Equal(t, sunday, got[0].Date)
	assert.Equal(t, sunday.AddDate(0, 0, 6), got[1].Date)
	for _, a := range got {
		assert.Equal(t, int64(7), a.LocationID)
	}
}

func TestDayIndex(t *testing.T) {
	assert.Equal(t, 0, DayIndex(sunday, sunday.Add(13*time.Hour)))
	assert.Equal(t, 3, DayIndex(sunday, sunday.AddDate(0, 0, 3)))
	assert.Equal(t, -1, DayIndex(sunday, sunday.AddDate(0, 0, -1)))
}
