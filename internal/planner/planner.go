// Package planner 负责一次完整的排班：加锁、加载数据、求解、保存、通知
package planner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/team3-dev/auto-shift/backend/internal/domain"
	"github.com/team3-dev/auto-shift/backend/internal/scheduler"
	"golang.org/x/sync/errgroup"
)

var ErrLocationNotFound = errors.New("地点不存在")

type Store interface {
	GetLocationByID(id int64) (*domain.Location, error)
	GetEmployeesByLocationID(locationID int64, activeOnly bool) ([]*domain.Employee, error)
	GetShiftDefinitionsByLocationID(locationID int64) ([]*domain.ShiftDefinition, error)
	GetWeightsByLocationID(locationID int64) (*domain.Weights, error)
	GetWeeklyConstraints(locationID int64, from, to time.Time) ([]*domain.WeeklyConstraint, error)
	ReplaceAssignments(locationID int64, from time.Time, assignments []domain.Assignment) error
}

type Locker interface {
	Acquire(ctx context.Context, locationID int64) (func(context.Context) error, error)
}

type Reporter interface {
	Report(ctx context.Context, report *domain.SolveReport) error
}

type Result struct {
	Report      *domain.SolveReport `json:"report"`
	Assignments []domain.Assignment `json:"assignments"`
}

type Planner struct {
	parameters  *scheduler.Parameters
	store       Store
	locker      Locker
	reporter    Reporter
	parallelism int

	now func() time.Time
}

func New(parameters *scheduler.Parameters, store Store, locker Locker, reporter Reporter, parallelism int) *Planner {
	if parallelism <= 0 {
		parallelism = 1
	}
	return &Planner{
		parameters:  parameters,
		store:       store,
		locker:      locker,
		reporter:    reporter,
		parallelism: parallelism,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Run 为一个地点生成下一个周期的排班，FAILED 或 ctx 结束时不会修改已保存的排班
func (p *Planner) Run(ctx context.Context, locationID int64) (*Result, error) {
	release, err := p.locker.Acquire(ctx, locationID)
	if err != nil {
		return nil, err
	}
	defer func() {
		// 释放锁不应该受请求取消的影响
		if err := release(context.WithoutCancel(ctx)); err != nil {
			slog.Error("释放排班锁失败", "location", locationID, "error", err)
		}
	}()

	location, err := p.store.GetLocationByID(locationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", ErrLocationNotFound, locationID)
		}
		return nil, err
	}

	start := scheduler.NextCycleStart(p.now(), location.CycleStartWeekday)
	end := start.AddDate(0, 0, int(location.CycleLength))

	input, err := p.load(location, start, end)
	if err != nil {
		return nil, err
	}

	s, err := scheduler.New(p.parameters, input)
	if err != nil {
		return nil, err
	}

	res, err := s.Schedule(ctx)
	if err != nil {
		return nil, err
	}
	// 调用方已经放弃等待，丢弃这次的结果
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{
		Report: &domain.SolveReport{
			LocationID:   location.ID,
			LocationName: location.Name,
			Status:       res.Status,
			Objective:    res.Objective,
			CycleStart:   start,
			Duration:     res.Duration.Round(time.Millisecond).String(),
		},
		Assignments: make([]domain.Assignment, 0),
	}

	if res.Accepted() {
		result.Assignments = scheduler.Materialize(start, location.ID, res.Assignments)
		if err := p.store.ReplaceAssignments(location.ID, start, result.Assignments); err != nil {
			return nil, err
		}
		result.Report.AssignmentsCount = len(result.Assignments)
	}

	if err := p.reporter.Report(ctx, result.Report); err != nil {
		slog.Error("无法发送排班报告", "location", location.ID, "error", err)
	}

	return result, nil
}

func (p *Planner) load(location *domain.Location, start, end time.Time) (*scheduler.Input, error) {
	employees, err := p.store.GetEmployeesByLocationID(location.ID, true)
	if err != nil {
		return nil, err
	}
	shifts, err := p.store.GetShiftDefinitionsByLocationID(location.ID)
	if err != nil {
		return nil, err
	}
	weights, err := p.store.GetWeightsByLocationID(location.ID)
	if err != nil {
		return nil, err
	}
	constraints, err := p.store.GetWeeklyConstraints(location.ID, start, end)
	if err != nil {
		return nil, err
	}

	return &scheduler.Input{
		Location:    location,
		CycleStart:  start,
		Employees:   employees,
		Shifts:      shifts,
		Weights:     weights,
		Constraints: constraints,
	}, nil
}

// RunAll 并行地为多个地点排班，单个地点失败不影响其他地点
func (p *Planner) RunAll(ctx context.Context, locationIDs []int64) ([]*Result, error) {
	var (
		mu      sync.Mutex
		results = make([]*Result, 0, len(locationIDs))
		errs    []error
	)

	g := errgroup.Group{}
	g.SetLimit(p.parallelism)

	for _, id := range locationIDs {
		g.Go(func() error {
			res, err := p.Run(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Error("地点排班失败", "location", id, "error", err)
				errs = append(errs, fmt.Errorf("地点 %d: %w", id, err))
				return nil
			}
			results = append(results, res)
			return nil
		})
	}

	_ = g.Wait()
	return results, errors.Join(errs...)
}
