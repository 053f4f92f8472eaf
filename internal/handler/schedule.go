package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/team3-dev/auto-shift/backend/internal/domain"
	"github.com/team3-dev/auto-shift/backend/internal/lock"
	"github.com/team3-dev/auto-shift/backend/internal/planner"
	"github.com/team3-dev/auto-shift/backend/internal/scheduler"
)

// 这些错误说明地点的数据配置有问题，可以直接告诉调用方
var inputErrors = []error{
	scheduler.ErrInvalidCycle,
	scheduler.ErrNoEmployees,
	scheduler.ErrNoShiftTypes,
	scheduler.ErrInvalidBounds,
	scheduler.ErrContradictoryPins,
	scheduler.ErrCategoryShiftTypes,
	planner.ErrLocationNotFound,
}

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	location := r.Context().Value(LocationCtx).(*domain.Location)

	from, to, err := h.cycleRange(r, location)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	assignments, err := h.repository.GetAssignments(location.ID, from, to)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取排班结果成功", assignments)
}

func (h *Handler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	location := r.Context().Value(LocationCtx).(*domain.Location)

	// 客户端断开不影响求解，求解时间由配置的预算限制
	result, err := h.planner.Run(context.WithoutCancel(r.Context()), location.ID)
	if err != nil {
		if errors.Is(err, lock.ErrLocked) {
			h.errorResponse(w, r, err.Error())
			return
		}
		for _, target := range inputErrors {
			if errors.Is(err, target) {
				h.errorResponse(w, r, err.Error())
				return
			}
		}
		h.internalServerError(w, r, err)
		return
	}

	if result.Report.Status == domain.SolveStatusFailed {
		h.writeJSON(w, r, http.StatusOK, Response{
			Success: false,
			Message: "在时间限制内没有找到可行的排班，已保留原有排班",
			Data:    result,
		})
		return
	}

	h.successResponse(w, r, "排班生成成功", result)
}
