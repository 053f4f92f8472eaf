package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/team3-dev/auto-shift/backend/internal/domain"
	"github.com/team3-dev/auto-shift/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

const generatedPasswordLength = 12

func (h *Handler) GetAllUserInfo(w http.ResponseWriter, r *http.Request) {
	users, err := h.repository.GetAllUsers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取用户列表成功", users)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username   string `json:"username" validate:"required,alphanum,max=32"`
		FullName   string `json:"fullName" validate:"required"`
		Password   string `json:"password" validate:"omitempty,min=8"`
		Role       string `json:"role" validate:"required,oneof=admin employee"`
		EmployeeID *int64 `json:"employeeID" validate:"required_if=Role employee,omitempty,gt=0"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.EmployeeID != nil {
		if _, err := h.repository.GetEmployeeByID(*req.EmployeeID); err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "关联的员工不存在")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}
	}

	// 未指定密码时生成随机密码，只在本次响应中返回
	password := req.Password
	if password == "" {
		password = utils.GenerateRandomPassword(generatedPasswordLength)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	user := &domain.User{
		Username:     req.Username,
		PasswordHash: string(hashedPassword),
		FullName:     req.FullName,
		Role:         domain.Role(req.Role),
		EmployeeID:   req.EmployeeID,
	}

	if err := h.repository.CreateUser(user); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "users_username_key":
			h.badRequest(w, r, errors.New("用户名已存在"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	resp := struct {
		*domain.User
		Password string `json:"password,omitempty"`
	}{User: user}
	if req.Password == "" {
		resp.Password = password
	}

	h.successResponse(w, r, "用户创建成功", resp)
}

func (h *Handler) GetUserInfo(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)
	h.successResponse(w, r, "获取用户信息成功", user)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role       *string `json:"role" validate:"omitempty,oneof=admin employee"`
		EmployeeID *int64  `json:"employeeID" validate:"omitempty,gt=0"`
		IsActive   *bool   `json:"isActive"`
		Password   *string `json:"password" validate:"omitempty,min=8"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	user := r.Context().Value(UserInfoCtx).(*domain.User)

	if req.Role != nil {
		user.Role = domain.Role(*req.Role)
	}
	if req.EmployeeID != nil {
		user.EmployeeID = req.EmployeeID
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		user.PasswordHash = string(hashedPassword)
	}

	if err := h.repository.UpdateUser(user); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "users_employee_id_fkey":
			h.errorResponse(w, r, "关联的员工不存在")
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新用户信息失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新用户信息成功", user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	if err := h.repository.DeleteUser(user.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除用户成功", nil)
}
