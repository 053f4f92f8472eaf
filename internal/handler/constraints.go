package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/team3-dev/auto-shift/backend/internal/domain"
	"github.com/team3-dev/auto-shift/backend/internal/scheduler"
	"github.com/team3-dev/auto-shift/backend/internal/utils"
)

// cycleRange 返回查询区间，默认是地点的下一个周期
func (h *Handler) cycleRange(r *http.Request, location *domain.Location) (time.Time, time.Time, error) {
	start := scheduler.NextCycleStart(time.Now().UTC(), location.CycleStartWeekday)

	from, err := h.readDateQuery(r, "from", start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := h.readDateQuery(r, "to", from.AddDate(0, 0, int(location.CycleLength)))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, errors.New("开始日期必须早于结束日期")
	}
	return from, to, nil
}

func (h *Handler) GetConstraints(w http.ResponseWriter, r *http.Request) {
	location := r.Context().Value(LocationCtx).(*domain.Location)

	from, to, err := h.cycleRange(r, location)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	constraints, err := h.repository.GetWeeklyConstraints(location.ID, from, to)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取约束列表成功", constraints)
}

func (h *Handler) CreateConstraint(w http.ResponseWriter, r *http.Request) {
	location := r.Context().Value(LocationCtx).(*domain.Location)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		EmployeeID int64  `json:"employeeID" validate:"required,gt=0"`
		ShiftID    int64  `json:"shiftID" validate:"required,gt=0"`
		Date       string `json:"date" validate:"required,datetime=2006-01-02"`
		Type       string `json:"type" validate:"required,oneof=cannot_work must_work prefer_not prefer_to"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 普通员工只能为自己提交约束
	if myInfo.Role != domain.RoleAdmin && (myInfo.EmployeeID == nil || *myInfo.EmployeeID != req.EmployeeID) {
		h.errorResponse(w, r, "权限不足")
		return
	}

	employee, err := h.repository.GetEmployeeByID(req.EmployeeID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "员工不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	shifts, err := h.repository.GetShiftDefinitionsByLocationID(location.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	var shift *domain.ShiftDefinition
	for _, s := range shifts {
		if s.ID == req.ShiftID {
			shift = s
			break
		}
	}
	if shift == nil {
		h.errorResponse(w, r, "班次不存在")
		return
	}

	date, _ := time.Parse(time.DateOnly, req.Date)
	c := &domain.WeeklyConstraint{
		EmployeeID: req.EmployeeID,
		ShiftID:    req.ShiftID,
		Date:       date,
		Type:       domain.ConstraintType(req.Type),
	}

	start := scheduler.NextCycleStart(time.Now().UTC(), location.CycleStartWeekday)
	if err := utils.ValidateConstraint(c, location, employee, shift, start); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateWeeklyConstraint(c); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "weekly_constraints_cell_key":
			h.badRequest(w, r, errors.New("该员工在这一天的这个班次上已经有约束"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "约束创建成功", c)
}

func (h *Handler) DeleteConstraint(w http.ResponseWriter, r *http.Request) {
	location := r.Context().Value(LocationCtx).(*domain.Location)

	constraintID, err := h.readIDParam(r, "constraintID")
	if err != nil {
		h.errorResponse(w, r, "约束ID无效")
		return
	}

	if _, err := h.repository.GetWeeklyConstraintByID(location.ID, constraintID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "约束不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.repository.DeleteWeeklyConstraint(constraintID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除约束成功", nil)
}
