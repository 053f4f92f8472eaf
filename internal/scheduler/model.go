package scheduler

import (
	"errors"
	"time"

	"github.com/team3-dev/auto-shift/backend/internal/domain"
)

var (
	ErrInvalidCycle       = errors.New("排班周期长度必须大于 0")
	ErrNoEmployees        = errors.New("没有在职的员工")
	ErrNoShiftTypes       = errors.New("没有定义任何班次")
	ErrInvalidBounds      = errors.New("班次数量下限不能大于上限")
	ErrContradictoryPins  = errors.New("同一班次同时被标记为不可上班和必须上班")
	ErrCategoryShiftTypes = errors.New("配置了类别上下限，但班次类别不完整")
)

// 求解参数
type Parameters struct {
	TimeLimit time.Duration // 求解时间上限
	NodeLimit int64         // 搜索节点上限
}

// Input 一次求解所需的全部数据，求解过程中只读
type Input struct {
	Location    *domain.Location
	CycleStart  time.Time
	Employees   []*domain.Employee
	Shifts      []*domain.ShiftDefinition
	Weights     *domain.Weights
	Constraints []*domain.WeeklyConstraint
}

type Result struct {
	Status      domain.SolveStatus     `json:"status"`
	Objective   *int64                 `json:"objective"`
	Assignments []domain.DayAssignment `json:"assignments"`
	Nodes       int64                  `json:"nodes"`
	Duration    time.Duration          `json:"duration"`
}

// Accepted 只有 OPTIMAL 和 FEASIBLE 的结果会被保存
func (r *Result) Accepted() bool {
	return r.Status == domain.SolveStatusOptimal || r.Status == domain.SolveStatusFeasible
}
