package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/team3-dev/auto-shift/backend/internal/config"
	"github.com/team3-dev/auto-shift/backend/internal/domain"
	"github.com/team3-dev/auto-shift/backend/internal/planner"
	"github.com/team3-dev/auto-shift/backend/internal/scheduler"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Expiration = 1
	cfg.InitialAdmin.Username = "admin"

	h, err := NewHandler(cfg, nil, nil)
	require.NoError(t, err)
	h.RegisterRoutes()
	return h
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestProtectedRouteRequiresLogin(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/locations", nil))

	resp := decode(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "用户未登录", resp.Message)
}

func TestProtectedRouteRejectsForgedToken(t *testing.T) {
	h := newTestHandler(t)

	other := newTestHandler(t)
	other.config.JWT.Secret = "another-secret"
	forged, _, err := other.signToken(&domain.User{ID: 1, Role: domain.RoleAdmin})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/locations", nil)
	req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: forged})
	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)

	assert.Equal(t, "无效的令牌", decode(t, rec).Message)
}

func TestAuthPutsClaimsInContext(t *testing.T) {
	h := newTestHandler(t)

	token, expiration, err := h.signToken(&domain.User{ID: 42, Role: domain.RoleEmployee})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiration, time.Minute)

	var sub, role string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub = r.Context().Value(SubCtxKey).(string)
		role = r.Context().Value(RoleCtxKey).(string)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: token})
	h.auth(next).ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "42", sub)
	assert.Equal(t, string(domain.RoleEmployee), role)
}

func TestRequiredRole(t *testing.T) {
	h := newTestHandler(t)
	called := false
	guarded := h.RequiredRole([]domain.Role{domain.RoleAdmin})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), RoleCtxKey, string(domain.RoleEmployee)))
	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	assert.False(t, called)
	assert.Equal(t, "权限不足", decode(t, rec).Message)

	req = req.WithContext(context.WithValue(req.Context(), RoleCtxKey, string(domain.RoleAdmin)))
	guarded.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, called)
}

func TestPreventOperateInitialAdmin(t *testing.T) {
	h := newTestHandler(t)
	guarded := h.preventOperateInitialAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("不应调用")
	}))

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), UserInfoCtx, &domain.User{Username: "admin"}))
	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	assert.Equal(t, "禁止操作初始管理员", decode(t, rec).Message)
}

func TestLogoutClearsCookie(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	assert.True(t, decode(t, rec).Success)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, tokenCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
}

func TestLoginValidationIsTranslated(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"ira"}`)))

	resp := decode(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "Password")
	assert.Contains(t, resp.Message, "必填字段")
}

func TestLoginRejectsUnknownFields(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"a","password":"b","x":1}`)))

	resp := decode(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "请求体格式错误")
}

func TestRecovererReturnsInternalServerError(t *testing.T) {
	h := newTestHandler(t)
	panicking := h.recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(errors.New("boom"))
	}))

	rec := httptest.NewRecorder()
	panicking.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "服务器内部错误", decode(t, rec).Message)
}

func TestCycleRange(t *testing.T) {
	h := newTestHandler(t)
	location := &domain.Location{CycleLength: 7, CycleStartWeekday: time.Sunday}

	req := httptest.NewRequest(http.MethodGet, "/?from=2026-10-25", nil)
	from, to, err := h.cycleRange(req, location)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 25, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC), to)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	from, to, err = h.cycleRange(req, location)
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, from.Weekday())
	assert.True(t, from.After(time.Now().UTC().Add(-24*time.Hour)))
	assert.Equal(t, 7*24*time.Hour, to.Sub(from))

	_, _, err = h.cycleRange(httptest.NewRequest(http.MethodGet, "/?from=2026-10-25&to=2026-10-25", nil), location)
	assert.Error(t, err)

	_, _, err = h.cycleRange(httptest.NewRequest(http.MethodGet, "/?from=25/10/2026", nil), location)
	assert.Error(t, err)
}

type scheduleStore struct {
	location *domain.Location
	replaced int
}

func (s *scheduleStore) GetLocationByID(id int64) (*domain.Location, error) {
	return s.location, nil
}

func (s *scheduleStore) GetEmployeesByLocationID(locationID int64, activeOnly bool) ([]*domain.Employee, error) {
	return []*domain.Employee{{ID: 1, LocationID: locationID, IsActive: true}}, nil
}

func (s *scheduleStore) GetShiftDefinitionsByLocationID(locationID int64) ([]*domain.ShiftDefinition, error) {
	return []*domain.ShiftDefinition{{ID: 10, LocationID: locationID, Name: "Day", DefaultStaffCount: 1}}, nil
}

func (s *scheduleStore) GetWeightsByLocationID(locationID int64) (*domain.Weights, error) {
	return domain.DefaultWeights(locationID), nil
}

func (s *scheduleStore) GetWeeklyConstraints(locationID int64, from, to time.Time) ([]*domain.WeeklyConstraint, error) {
	return nil, nil
}

func (s *scheduleStore) ReplaceAssignments(locationID int64, from time.Time, assignments []domain.Assignment) error {
	s.replaced++
	return nil
}

type noopLocker struct{}

func (noopLocker) Acquire(ctx context.Context, locationID int64) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}

type noopReporter struct{}

func (noopReporter) Report(ctx context.Context, report *domain.SolveReport) error {
	return nil
}

func TestGenerateScheduleSurvivesClientDisconnect(t *testing.T) {
	location := &domain.Location{ID: 1, Name: "Gate 1", CycleLength: 1, ShiftsPerDay: 1, CycleStartWeekday: time.Sunday}
	store := &scheduleStore{location: location}
	p := planner.New(&scheduler.Parameters{TimeLimit: 5 * time.Second}, store, noopLocker{}, noopReporter{}, 1)

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	h, err := NewHandler(cfg, nil, p)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), LocationCtx, location))
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	h.GenerateSchedule(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode(t, rec).Success)
	assert.Equal(t, 1, store.replaced)
}
