package scheduler

import "github.com/team3-dev/auto-shift/backend/internal/domain"

// boundaryRule 上个周期末尾的状态对本周期某个班次的惩罚
type boundaryRule struct {
	name     string
	flag     func(e *domain.Employee) bool
	day      int
	category domain.ShiftCategory
	weight   func(w *domain.Weights) int64
}

// 新增跨周期规则只需要在这里加一行
var boundaryRules = []boundaryRule{
	{
		name:     "rest_after_last_noon",
		flag:     func(e *domain.Employee) bool { return e.WorkedLastNoon },
		day:      0,
		category: domain.CategoryMorning,
		weight:   func(w *domain.Weights) int64 { return w.RestGap },
	},
	{
		name:     "rest_after_last_night",
		flag:     func(e *domain.Employee) bool { return e.WorkedLastNight },
		day:      0,
		category: domain.CategoryEvening,
		weight:   func(w *domain.Weights) int64 { return w.RestGap },
	},
	{
		name:     "night_run_across_cycles",
		flag:     func(e *domain.Employee) bool { return e.WorkedLastNight },
		day:      0,
		category: domain.CategoryNight,
		weight:   func(w *domain.Weights) int64 { return w.ConsecutiveNights },
	},
}
