package scheduler

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/team3-dev/auto-shift/backend/internal/domain"
	"github.com/team3-dev/auto-shift/backend/internal/solver"
)

type model struct {
	model *solver.Model
	x     []solver.VarID // 是否排班，下标见 Scheduler.index
}

func (s *Scheduler) buildModel() *model {
	nE, nS := len(s.employees), len(s.shifts)
	m := &model{
		model: solver.NewModel(),
		x:     make([]solver.VarID, s.days*nS*nE),
	}
	for d := 0; d < s.days; d++ {
		for sh := 0; sh < nS; sh++ {
			for e := 0; e < nE; e++ {
				m.x[s.index(e, d, sh)] = m.model.NewBoolVar(fmt.Sprintf("x_e%d_d%d_s%d", s.employees[e].ID, d, s.shifts[sh].ID))
			}
		}
	}

	s.addHardConstraints(m)
	s.addSoftConstraints(m)
	return m
}

func (s *Scheduler) addHardConstraints(m *model) {
	nE, nS := len(s.employees), len(s.shifts)

	// 每个 (day, shift) 的人数必须恰好等于需求
	for d := 0; d < s.days; d++ {
		for sh := 0; sh < nS; sh++ {
			terms := make([]solver.Term, nE)
			for e := 0; e < nE; e++ {
				terms[e] = solver.Term{Var: m.x[s.index(e, d, sh)], Coeff: 1}
			}
			m.model.AddEquality(terms, int64(s.demand[d][sh]))
		}
	}

	// 每人每天最多一个班
	for e := 0; e < nE; e++ {
		for d := 0; d < s.days; d++ {
			terms := make([]solver.Term, nS)
			for sh := 0; sh < nS; sh++ {
				terms[sh] = solver.Term{Var: m.x[s.index(e, d, sh)], Coeff: 1}
			}
			m.model.AddLessOrEqual(terms, 1)
		}
	}

	// 每周班次数量上下限
	for e := 0; e < nE; e++ {
		terms := s.employeeTerms(m, e, nil)
		m.model.AddGreaterOrEqual(terms, int64(s.settings[e].MinShiftsPerWeek))
		m.model.AddLessOrEqual(terms, int64(s.settings[e].MaxShiftsPerWeek))
	}

	for idx, t := range s.pins {
		if t == domain.ConstraintMustWork {
			m.model.Fix(m.x[idx], 1)
		} else {
			m.model.Fix(m.x[idx], 0)
		}
	}
}

func (s *Scheduler) addSoftConstraints(m *model) {
	w := s.weights
	days := int64(s.days)

	for e, emp := range s.employees {
		settings := s.settings[e]
		all := s.employeeTerms(m, e, nil)

		// 与目标班次数的偏差：delta >= |total - target|
		target := int64((settings.MinShiftsPerWeek + settings.MaxShiftsPerWeek) / 2)
		delta := m.model.NewIntVar(0, max(days, target), fmt.Sprintf("delta_e%d", emp.ID))
		m.model.AddLessOrEqual(withTerm(all, delta, -1), target)
		m.model.AddLessOrEqual(withTerm(negate(all), delta, -1), -target)
		m.model.Minimize(solver.Term{Var: delta, Coeff: w.TargetShifts})

		// 各类别的上下限
		for _, c := range domain.BoundedCategories {
			bounds, ok := settings.Categories[c]
			if !ok {
				continue
			}
			terms := s.employeeTerms(m, e, s.categoryShifts[c])
			if bounds.Max != nil {
				over := m.model.NewIntVar(0, days, fmt.Sprintf("over_%s_e%d", c, emp.ID))
				m.model.AddLessOrEqual(withTerm(terms, over, -1), int64(*bounds.Max))
				m.model.Minimize(solver.Term{Var: over, Coeff: w.MaxWeight(c)})
			}
			if bounds.Min != nil {
				under := m.model.NewIntVar(0, max(days, int64(*bounds.Min)), fmt.Sprintf("under_%s_e%d", c, emp.ID))
				m.model.AddLessOrEqual(withTerm(negate(terms), under, -1), -int64(*bounds.Min))
				m.model.Minimize(solver.Term{Var: under, Coeff: w.MinWeight(c)})
			}
		}

		// 连续两天夜班：y >= night(d) + night(d+1) - 1
		nights := s.categoryShifts[domain.CategoryNight]
		if len(nights) > 0 {
			for d := 0; d+1 < s.days; d++ {
				y := m.model.NewBoolVar(fmt.Sprintf("nights_e%d_d%d", emp.ID, d))
				terms := make([]solver.Term, 0, 2*len(nights)+1)
				for _, sh := range nights {
					terms = append(terms,
						solver.Term{Var: m.x[s.index(e, d, sh)], Coeff: 1},
						solver.Term{Var: m.x[s.index(e, d+1, sh)], Coeff: 1},
					)
				}
				m.model.AddLessOrEqual(withTerm(terms, y, -1), 1)
				m.model.Minimize(solver.Term{Var: y, Coeff: w.ConsecutiveNights})
			}
		}

		// 跨周期规则
		for _, rule := range boundaryRules {
			if !rule.flag(emp) || rule.day >= s.days {
				continue
			}
			for _, sh := range s.categoryShifts[rule.category] {
				m.model.Minimize(solver.Term{Var: m.x[s.index(e, rule.day, sh)], Coeff: rule.weight(w)})
			}
		}
	}

	// 软偏好
	for idx, t := range s.prefs {
		x := m.x[idx]
		switch t {
		case domain.ConstraintPreferNot:
			m.model.Minimize(solver.Term{Var: x, Coeff: w.Preference})
		case domain.ConstraintPreferTo:
			miss := m.model.NewBoolVar(fmt.Sprintf("miss_%d", idx))
			m.model.AddGreaterOrEqual([]solver.Term{{Var: x, Coeff: 1}, {Var: miss, Coeff: 1}}, 1)
			m.model.Minimize(solver.Term{Var: miss, Coeff: w.Preference})
		}
	}
}

// employeeTerms 返回某员工在 shifts 中所有班次上的变量，shifts 为 nil 时表示全部班次
func (s *Scheduler) employeeTerms(m *model, e int, shifts []int) []solver.Term {
	if shifts == nil {
		shifts = make([]int, len(s.shifts))
		for i := range shifts {
			shifts[i] = i
		}
	}
	terms := make([]solver.Term, 0, s.days*len(shifts))
	for d := 0; d < s.days; d++ {
		for _, sh := range shifts {
			terms = append(terms, solver.Term{Var: m.x[s.index(e, d, sh)], Coeff: 1})
		}
	}
	return terms
}

func withTerm(terms []solver.Term, v solver.VarID, coeff int64) []solver.Term {
	out := make([]solver.Term, 0, len(terms)+1)
	out = append(out, terms...)
	return append(out, solver.Term{Var: v, Coeff: coeff})
}

func negate(terms []solver.Term) []solver.Term {
	out := make([]solver.Term, len(terms))
	for i, t := range terms {
		out[i] = solver.Term{Var: t.Var, Coeff: -t.Coeff}
	}
	return out
}

// warmStart 用贪心法构造一个初始解作为分支提示
func (s *Scheduler) warmStart(m *model) {
	nE, nS := len(s.employees), len(s.shifts)
	count := make([]int32, nE)
	chosen := make([]bool, len(m.x))

	target := make([]int32, nE)
	for e, st := range s.settings {
		target[e] = (st.MinShiftsPerWeek + st.MaxShiftsPerWeek) / 2
	}

	for d := 0; d < s.days; d++ {
		busy := make([]bool, nE)
		filled := make([]int32, nS)

		// 必须上班的先占位
		for sh := 0; sh < nS; sh++ {
			for e := 0; e < nE; e++ {
				idx := s.index(e, d, sh)
				if s.pins[idx] == domain.ConstraintMustWork && !busy[e] {
					chosen[idx] = true
					busy[e] = true
					count[e]++
					filled[sh]++
				}
			}
		}

		for sh := 0; sh < nS; sh++ {
			candidates := make([]int, 0, nE)
			for e := 0; e < nE; e++ {
				idx := s.index(e, d, sh)
				if busy[e] || s.pins[idx] == domain.ConstraintCannotWork || count[e] >= s.settings[e].MaxShiftsPerWeek {
					continue
				}
				candidates = append(candidates, e)
			}
			// 离目标越远越优先，其次是有偏好的
			slices.SortStableFunc(candidates, func(a, b int) int {
				return cmp.Or(
					cmp.Compare(count[a]-target[a], count[b]-target[b]),
					cmp.Compare(s.prefCost(s.index(a, d, sh)), s.prefCost(s.index(b, d, sh))),
				)
			})
			for _, e := range candidates {
				if filled[sh] >= s.demand[d][sh] {
					break
				}
				idx := s.index(e, d, sh)
				chosen[idx] = true
				busy[e] = true
				count[e]++
				filled[sh]++
			}
		}
	}

	for idx, v := range m.x {
		if chosen[idx] {
			m.model.SetHint(v, 1)
		} else {
			m.model.SetHint(v, 0)
		}
	}
}

func (s *Scheduler) prefCost(idx int) int {
	switch s.prefs[idx] {
	case domain.ConstraintPreferTo:
		return -1
	case domain.ConstraintPreferNot:
		return 1
	}
	return 0
}

// verify 检查结果是否满足所有硬约束
func (s *Scheduler) verify(assignments []domain.DayAssignment) error {
	employeeIndex := make(map[int64]int, len(s.employees))
	for i, e := range s.employees {
		employeeIndex[e.ID] = i
	}
	shiftIndex := make(map[int64]int, len(s.shifts))
	for i, shift := range s.shifts {
		shiftIndex[shift.ID] = i
	}

	assigned := make([]bool, s.days*len(s.shifts)*len(s.employees))
	perSlot := make([][]int32, s.days)
	for d := range perSlot {
		perSlot[d] = make([]int32, len(s.shifts))
	}
	perDay := make(map[[2]int]int)
	total := make([]int32, len(s.employees))

	for _, a := range assignments {
		e, sh, d := employeeIndex[a.EmployeeID], shiftIndex[a.ShiftID], int(a.Day)
		assigned[s.index(e, d, sh)] = true
		perSlot[d][sh]++
		perDay[[2]int{e, d}]++
		total[e]++
	}

	for d := 0; d < s.days; d++ {
		for sh := range s.shifts {
			if perSlot[d][sh] != s.demand[d][sh] {
				return fmt.Errorf("第 %d 天班次 %d 的人数为 %d，需求为 %d", d, s.shifts[sh].ID, perSlot[d][sh], s.demand[d][sh])
			}
		}
	}
	for key, n := range perDay {
		if n > 1 {
			return fmt.Errorf("员工 %d 在第 %d 天被安排了 %d 个班次", s.employees[key[0]].ID, key[1], n)
		}
	}
	for e, n := range total {
		if n < s.settings[e].MinShiftsPerWeek || n > s.settings[e].MaxShiftsPerWeek {
			return fmt.Errorf("员工 %d 的班次数 %d 超出范围", s.employees[e].ID, n)
		}
	}
	for idx, t := range s.pins {
		if (t == domain.ConstraintMustWork) != assigned[idx] {
			return fmt.Errorf("变量 %d 违反了 %s 约束", idx, t)
		}
	}
	return nil
}
