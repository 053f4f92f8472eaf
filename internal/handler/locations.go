package handler

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/team3-dev/auto-shift/backend/internal/domain"
	"github.com/team3-dev/auto-shift/backend/internal/utils"
)

func (h *Handler) GetAllLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.repository.GetAllLocations()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取地点列表成功", locations)
}

func (h *Handler) GetLocation(w http.ResponseWriter, r *http.Request) {
	location := r.Context().Value(LocationCtx).(*domain.Location)
	h.successResponse(w, r, "获取地点信息成功", location)
}

func (h *Handler) GetLocationEmployees(w http.ResponseWriter, r *http.Request) {
	location := r.Context().Value(LocationCtx).(*domain.Location)

	employees, err := h.repository.GetEmployeesByLocationID(location.ID, r.URL.Query().Get("active") == "true")
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取员工列表成功", employees)
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	location := r.Context().Value(LocationCtx).(*domain.Location)

	var req struct {
		Name                  string                   `json:"name" validate:"required,max=64"`
		Color                 string                   `json:"color" validate:"omitempty,hexcolor"`
		HistoryStreak         int32                    `json:"historyStreak" validate:"gte=0"`
		WorkedLastFridayNight bool                     `json:"workedLastFridayNight"`
		WorkedLastNoon        bool                     `json:"workedLastNoon"`
		WorkedLastNight       bool                     `json:"workedLastNight"`
		Settings              *domain.EmployeeSettings `json:"settings"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	settings := req.Settings
	if settings == nil {
		settings = domain.DefaultEmployeeSettings()
	}
	if err := utils.ValidateEmployeeSettings(settings, location.CycleLength); err != nil {
		h.badRequest(w, r, err)
		return
	}

	color := req.Color
	if color == "" {
		color = utils.GenerateRandomColor()
	}

	employee := &domain.Employee{
		LocationID:            location.ID,
		Name:                  req.Name,
		Color:                 color,
		IsActive:              true,
		HistoryStreak:         req.HistoryStreak,
		WorkedLastFridayNight: req.WorkedLastFridayNight,
		WorkedLastNoon:        req.WorkedLastNoon,
		WorkedLastNight:       req.WorkedLastNight,
		Settings:              settings,
	}

	if err := h.repository.CreateEmployee(employee); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "员工创建成功", employee)
}

func (h *Handler) GetLocationShifts(w http.ResponseWriter, r *http.Request) {
	location := r.Context().Value(LocationCtx).(*domain.Location)

	shifts, err := h.repository.GetShiftDefinitionsByLocationID(location.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取班次列表成功", shifts)
}

func (h *Handler) GetWeights(w http.ResponseWriter, r *http.Request) {
	location := r.Context().Value(LocationCtx).(*domain.Location)

	weights, err := h.repository.GetWeightsByLocationID(location.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取权重成功", weights)
}

func (h *Handler) UpdateWeights(w http.ResponseWriter, r *http.Request) {
	location := r.Context().Value(LocationCtx).(*domain.Location)

	var req struct {
		TargetShifts      *int64 `json:"targetShifts" validate:"omitempty,gte=0"`
		RestGap           *int64 `json:"restGap" validate:"omitempty,gte=0"`
		MaxNights         *int64 `json:"maxNights" validate:"omitempty,gte=0"`
		MaxMornings       *int64 `json:"maxMornings" validate:"omitempty,gte=0"`
		MaxEvenings       *int64 `json:"maxEvenings" validate:"omitempty,gte=0"`
		MinNights         *int64 `json:"minNights" validate:"omitempty,gte=0"`
		MinMornings       *int64 `json:"minMornings" validate:"omitempty,gte=0"`
		MinEvenings       *int64 `json:"minEvenings" validate:"omitempty,gte=0"`
		ConsecutiveNights *int64 `json:"consecutiveNights" validate:"omitempty,gte=0"`
		Preference        *int64 `json:"preference" validate:"omitempty,gte=0"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	weights, err := h.repository.GetWeightsByLocationID(location.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	patch := []struct {
		src *int64
		dst *int64
	}{
		{req.TargetShifts, &weights.TargetShifts},
		{req.RestGap, &weights.RestGap},
		{req.MaxNights, &weights.MaxNights},
		{req.MaxMornings, &weights.MaxMornings},
		{req.MaxEvenings, &weights.MaxEvenings},
		{req.MinNights, &weights.MinNights},
		{req.MinMornings, &weights.MinMornings},
		{req.MinEvenings, &weights.MinEvenings},
		{req.ConsecutiveNights, &weights.ConsecutiveNights},
		{req.Preference, &weights.Preference},
	}
	for _, p := range patch {
		if p.src != nil {
			*p.dst = *p.src
		}
	}

	if err := h.repository.UpsertWeights(weights); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "location_weights_location_id_fkey":
			h.errorResponse(w, r, "地点不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新权重成功", weights)
}
