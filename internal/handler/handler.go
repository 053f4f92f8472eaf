package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/team3-dev/auto-shift/backend/internal/config"
	"github.com/team3-dev/auto-shift/backend/internal/domain"
	"github.com/team3-dev/auto-shift/backend/internal/planner"
	"github.com/team3-dev/auto-shift/backend/internal/repository"
)

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	repository *repository.Repository
	translator ut.Translator
	planner    *planner.Planner

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, p *planner.Planner) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		repository: repo,
		translator: trans,
		planner:    p,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	adminOnly := h.RequiredRole([]domain.Role{domain.RoleAdmin})

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Use(h.myInfo)

		r.Route("/my-info", func(r chi.Router) {
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/", h.GetAllUserInfo)
			r.Post("/", h.CreateUser)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).Delete("/", h.DeleteUser)
			})
		})

		r.Route("/locations", func(r chi.Router) {
			r.Get("/", h.GetAllLocations)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.location)
				r.Get("/", h.GetLocation)

				r.Get("/employees", h.GetLocationEmployees)
				r.With(adminOnly).Post("/employees", h.CreateEmployee)
				r.Get("/shifts", h.GetLocationShifts)

				r.Get("/weights", h.GetWeights)
				r.With(adminOnly).Patch("/weights", h.UpdateWeights)

				r.Route("/constraints", func(r chi.Router) {
					r.Get("/", h.GetConstraints)
					r.Post("/", h.CreateConstraint) // 员工本人也可以提交
					r.With(adminOnly).Delete("/{constraintID}", h.DeleteConstraint)
				})

				r.Get("/schedule", h.GetSchedule)
				r.With(adminOnly).Post("/schedule/generate", h.GenerateSchedule)
			})
		})
	})
}
