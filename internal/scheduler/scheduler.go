package scheduler

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/team3-dev/auto-shift/backend/internal/domain"
	"github.com/team3-dev/auto-shift/backend/internal/solver"
)

type Scheduler struct {
	parameters *Parameters
	locationID int64
	cycleStart time.Time

	days      int
	employees []*domain.Employee // 只包含在职员工
	settings  []*domain.EmployeeSettings
	shifts    []*domain.ShiftDefinition // 按 Position 排序
	weights   *domain.Weights

	demand         [][]int32                      // [day][shift]
	categoryShifts map[domain.ShiftCategory][]int // 类别 -> 班次下标
	pins           map[int]domain.ConstraintType  // 变量下标 -> 硬约束
	prefs          map[int]domain.ConstraintType  // 变量下标 -> 软偏好
}

func New(parameters *Parameters, input *Input) (*Scheduler, error) {
	if input.Location == nil || input.Location.CycleLength <= 0 {
		return nil, ErrInvalidCycle
	}
	if len(input.Shifts) == 0 {
		return nil, ErrNoShiftTypes
	}

	s := &Scheduler{
		parameters:     parameters,
		locationID:     input.Location.ID,
		cycleStart:     truncateToDate(input.CycleStart),
		days:           int(input.Location.CycleLength),
		employees:      make([]*domain.Employee, 0, len(input.Employees)),
		settings:       make([]*domain.EmployeeSettings, 0, len(input.Employees)),
		weights:        input.Weights,
		categoryShifts: make(map[domain.ShiftCategory][]int),
		pins:           make(map[int]domain.ConstraintType),
		prefs:          make(map[int]domain.ConstraintType),
	}
	if s.weights == nil {
		s.weights = domain.DefaultWeights(input.Location.ID)
	}

	s.shifts = slices.Clone(input.Shifts)
	slices.SortStableFunc(s.shifts, func(a, b *domain.ShiftDefinition) int {
		return cmp.Or(cmp.Compare(a.Position, b.Position), cmp.Compare(a.ID, b.ID))
	})
	for i, shift := range s.shifts {
		s.categoryShifts[shift.Category] = append(s.categoryShifts[shift.Category], i)
	}

	for _, e := range input.Employees {
		if !e.IsActive {
			continue
		}
		settings := e.Settings
		if settings == nil {
			settings = domain.DefaultEmployeeSettings()
		}
		if err := s.validateSettings(e, settings); err != nil {
			return nil, err
		}
		s.employees = append(s.employees, e)
		s.settings = append(s.settings, settings)
	}
	if len(s.employees) == 0 {
		return nil, ErrNoEmployees
	}

	// 计算每个 (day, shift) 的需求人数
	s.demand = make([][]int32, s.days)
	for d := 0; d < s.days; d++ {
		weekday := s.cycleStart.AddDate(0, 0, d).Weekday()
		s.demand[d] = make([]int32, len(s.shifts))
		for i, shift := range s.shifts {
			s.demand[d][i] = ResolveDemand(shift, weekday)
		}
	}

	if err := s.loadConstraints(input.Constraints); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Scheduler) validateSettings(e *domain.Employee, settings *domain.EmployeeSettings) error {
	if settings.MinShiftsPerWeek > settings.MaxShiftsPerWeek {
		return fmt.Errorf("%w: 员工 %d", ErrInvalidBounds, e.ID)
	}
	if !settings.HasCategoryBounds() {
		return nil
	}
	if len(s.shifts) < len(domain.BoundedCategories) {
		return fmt.Errorf("%w: 员工 %d 配置了类别上下限，但只有 %d 个班次", ErrCategoryShiftTypes, e.ID, len(s.shifts))
	}
	for c, b := range settings.Categories {
		if b.Min == nil && b.Max == nil {
			continue
		}
		if len(s.categoryShifts[c]) == 0 {
			return fmt.Errorf("%w: 没有班次属于类别 %s", ErrCategoryShiftTypes, c)
		}
		if b.Min != nil && b.Max != nil && *b.Min > *b.Max {
			return fmt.Errorf("%w: 员工 %d 的类别 %s", ErrInvalidBounds, e.ID, c)
		}
	}
	return nil
}

// loadConstraints 将按日期给出的约束映射到变量下标
func (s *Scheduler) loadConstraints(constraints []*domain.WeeklyConstraint) error {
	employeeIndex := make(map[int64]int, len(s.employees))
	for i, e := range s.employees {
		employeeIndex[e.ID] = i
	}
	shiftIndex := make(map[int64]int, len(s.shifts))
	for i, shift := range s.shifts {
		shiftIndex[shift.ID] = i
	}

	for _, c := range constraints {
		e, ok := employeeIndex[c.EmployeeID]
		if !ok {
			slog.Warn("忽略约束：员工不在本次排班中", "constraint", c.ID, "employee", c.EmployeeID)
			continue
		}
		sh, ok := shiftIndex[c.ShiftID]
		if !ok {
			slog.Warn("忽略约束：班次不存在", "constraint", c.ID, "shift", c.ShiftID)
			continue
		}
		d := DayIndex(s.cycleStart, c.Date)
		if d < 0 || d >= s.days {
			slog.Warn("忽略约束：日期不在本周期内", "constraint", c.ID, "date", c.Date.Format(time.DateOnly))
			continue
		}

		idx := s.index(e, d, sh)
		switch c.Type {
		case domain.ConstraintCannotWork, domain.ConstraintMustWork:
			if prev, exists := s.pins[idx]; exists && prev != c.Type {
				return fmt.Errorf("%w: 员工 %d 在 %s 的班次 %d", ErrContradictoryPins, c.EmployeeID, c.Date.Format(time.DateOnly), c.ShiftID)
			}
			s.pins[idx] = c.Type
		case domain.ConstraintPreferNot, domain.ConstraintPreferTo:
			s.prefs[idx] = c.Type
		default:
			slog.Warn("忽略约束：未知类型", "constraint", c.ID, "type", c.Type)
		}
	}

	// 硬约束覆盖同一格子上的偏好
	for idx := range s.pins {
		delete(s.prefs, idx)
	}
	return nil
}

// index 变量在密集数组中的下标，按天、班次、员工排列
func (s *Scheduler) index(e, d, sh int) int {
	return (d*len(s.shifts)+sh)*len(s.employees) + e
}

func (s *Scheduler) Schedule(ctx context.Context) (*Result, error) {
	start := time.Now()

	m := s.buildModel()
	s.warmStart(m)

	sol, err := solver.Solve(ctx, m.model, solver.Params{
		TimeLimit: s.parameters.TimeLimit,
		NodeLimit: s.parameters.NodeLimit,
	})
	if err != nil {
		return nil, err
	}

	result := &Result{
		Nodes:       sol.Nodes,
		Assignments: make([]domain.DayAssignment, 0),
	}

	switch sol.Status {
	case solver.StatusOptimal:
		result.Status = domain.SolveStatusOptimal
	case solver.StatusFeasible:
		result.Status = domain.SolveStatusFeasible
	default:
		result.Status = domain.SolveStatusFailed
	}

	if result.Accepted() {
		objective := sol.Objective
		result.Objective = &objective
		for d := 0; d < s.days; d++ {
			for sh, shift := range s.shifts {
				for e, emp := range s.employees {
					if sol.BoolValue(m.x[s.index(e, d, sh)]) {
						result.Assignments = append(result.Assignments, domain.DayAssignment{
							EmployeeID: emp.ID,
							ShiftID:    shift.ID,
							Day:        int32(d),
						})
					}
				}
			}
		}

		// 返回的结果必须满足全部硬约束
		if err := s.verify(result.Assignments); err != nil {
			return nil, err
		}
	}

	result.Duration = time.Since(start)
	slog.Info("排班求解完成",
		"location", s.locationID,
		"employees", len(s.employees),
		"slots", s.days*len(s.shifts),
		"status", result.Status,
		"objective", sol.Objective,
		"nodes", result.Nodes,
		"duration", result.Duration,
	)

	return result, nil
}
