package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/swim-club-backend/internal/handler"
	"github.com/iliyamo/swim-club-backend/internal/model"
	"github.com/iliyamo/swim-club-backend/internal/repository"
	"github.com/iliyamo/swim-club-backend/internal/repository/memory"
	"github.com/iliyamo/swim-club-backend/internal/service"
	"github.com/iliyamo/swim-club-backend/internal/utils"
)

const testSecret = "router-test-secret"

type api struct {
	t     *testing.T
	e     *echo.Echo
	store *memory.Store
}

func newAPI(t *testing.T) *api {
	t.Helper()
	clock := func() time.Time { return time.Date(2024, time.September, 2, 10, 0, 0, 0, time.UTC) }
	store := memory.NewStore(memory.WithClock(clock))
	deps := service.Deps{Store: store, Now: clock, Location: time.UTC}

	users := service.NewUserService(deps, service.AuthConfig{
		JWTSecret:  testSecret,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
		BcryptCost: 4,
	})
	reporting := service.NewReportingService(deps)
	h := Handlers{
		Auth:       handler.NewAuthHandler(users, testSecret),
		Users:      handler.NewUserHandler(users),
		Schedules:  handler.NewScheduleHandler(service.NewScheduleService(deps), service.NewEnrollmentService(deps)),
		Attendance: handler.NewAttendanceHandler(service.NewAttendanceService(deps)),
		Members:    handler.NewMemberHandler(service.NewMemberService(deps)),
		Skills:     handler.NewSkillHandler(service.NewSkillService(deps), nil),
		Messages:   handler.NewMessageHandler(service.NewMessageService(deps)),
		Payments:   handler.NewPaymentHandler(service.NewPaymentService(deps), reporting),
		Dashboard:  handler.NewDashboardHandler(reporting),
	}

	e := echo.New()
	e.Validator = handler.Validator{}
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	noCache := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	Register(e, h, testSecret, noCache)
	return &api{t: t, e: e, store: store}
}

// account inserts a user with the given role and returns a bearer token.
func (a *api) account(role, email string) (uint64, string) {
	a.t.Helper()
	hash, err := utils.HashPassword("password123", 4)
	require.NoError(a.t, err)
	u := model.User{Email: email, PasswordHash: hash, FullName: "Test " + role, Role: role, IsActive: true}
	require.NoError(a.t, a.store.InTx(context.Background(), func(tx repository.Tx) error {
		return tx.Users().Create(context.Background(), &u)
	}))
	at, err := utils.NewAccessToken(testSecret, u.ID, role, time.Hour)
	require.NoError(a.t, err)
	return u.ID, at.Token
}

func (a *api) do(method, path, token, body string) (int, map[string]any) {
	a.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 && strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

func TestHealthAndUnknownRoute(t *testing.T) {
	a := newAPI(t)

	code, body := a.do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	code, body = a.do(http.MethodGet, "/v1/nope", "", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not found", body["error"])
}

func TestRoleGates(t *testing.T) {
	a := newAPI(t)
	_, owner := a.account(model.RoleOwner, "owner@example.com")
	_, coach := a.account(model.RoleCoach, "coach@example.com")
	_, parent := a.account(model.RoleParent, "parent@example.com")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"no token", http.MethodGet, "/v1/schedules", "", http.StatusUnauthorized},
		{"bad token", http.MethodGet, "/v1/schedules", "garbage", http.StatusUnauthorized},
		{"any role lists schedules", http.MethodGet, "/v1/schedules", parent, http.StatusOK},
		{"parent cannot create schedule", http.MethodPost, "/v1/schedules", parent, http.StatusForbidden},
		{"coach cannot create schedule", http.MethodPost, "/v1/schedules", coach, http.StatusForbidden},
		{"coach cannot read stats", http.MethodGet, "/v1/attendance/stats/1", coach, http.StatusForbidden},
		{"parent cannot read dashboard", http.MethodGet, "/v1/dashboard/stats", parent, http.StatusForbidden},
		{"coach reads dashboard", http.MethodGet, "/v1/dashboard/stats", coach, http.StatusOK},
		{"coach cannot enroll", http.MethodPost, "/v1/schedules/enrollments", coach, http.StatusForbidden},
		{"parent cannot list debtors", http.MethodGet, "/v1/payments/debtors", parent, http.StatusForbidden},
		{"owner lists debtors", http.MethodGet, "/v1/payments/debtors", owner, http.StatusOK},
		{"parent cannot list users", http.MethodGet, "/v1/users", parent, http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, _ := a.do(tc.method, tc.path, tc.token, "")
			assert.Equal(t, tc.want, code)
		})
	}
}

func TestValidationErrorShape(t *testing.T) {
	a := newAPI(t)
	_, owner := a.account(model.RoleOwner, "owner@example.com")

	code, body := a.do(http.MethodPost, "/v1/schedules", owner, `{"start_time":"17:00","end_time":"18:00","capacity":5}`)
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation failed", body["error"])
	fields, ok := body["fields"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, fields, "day_of_week")

	code, body = a.do(http.MethodPost, "/v1/schedules", owner, `{"day_of_week":`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid body", body["error"])

	code, body = a.do(http.MethodPut, "/v1/schedules/abc", owner, `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid id", body["error"])
}

func TestEnrollmentOverHTTP(t *testing.T) {
	a := newAPI(t)
	_, owner := a.account(model.RoleOwner, "owner@example.com")
	_, parent := a.account(model.RoleParent, "parent@example.com")

	code, sched := a.do(http.MethodPost, "/v1/schedules", owner,
		`{"day_of_week":"PON","start_time":"17:00","end_time":"18:00","capacity":2}`)
	require.Equal(t, http.StatusCreated, code)
	schedID := uint64(sched["id"].(float64))

	code, ana := a.do(http.MethodPost, "/v1/members", parent, `{"full_name":"Ana","date_of_birth":"2016-04-12"}`)
	require.Equal(t, http.StatusCreated, code)
	code, marko := a.do(http.MethodPost, "/v1/members", parent, `{"full_name":"Marko","date_of_birth":"2015-01-20"}`)
	require.Equal(t, http.StatusCreated, code)
	code, luka := a.do(http.MethodPost, "/v1/members", parent, `{"full_name":"Luka","date_of_birth":"2017-06-03"}`)
	require.Equal(t, http.StatusCreated, code)

	enroll := func(member map[string]any) (int, map[string]any) {
		body, err := json.Marshal(map[string]any{
			"member_id":   uint64(member["id"].(float64)),
			"schedule_id": schedID,
			"start_date":  "2024-09-02",
		})
		require.NoError(t, err)
		return a.do(http.MethodPost, "/v1/schedules/enrollments", parent, string(body))
	}

	code, _ = enroll(ana)
	assert.Equal(t, http.StatusCreated, code)

	code, body := enroll(ana)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "member is already enrolled in this slot", body["error"])

	code, _ = enroll(marko)
	assert.Equal(t, http.StatusCreated, code)

	code, body = enroll(luka)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "schedule is full", body["error"])
}

func TestRegisterLoginMe(t *testing.T) {
	a := newAPI(t)

	code, pair := a.do(http.MethodPost, "/v1/auth/register", "",
		`{"email":"new@example.com","password":"password123","full_name":"Nova Roditelj"}`)
	require.Equal(t, http.StatusCreated, code)
	assert.NotEmpty(t, pair["refresh_token"])

	code, body := a.do(http.MethodPost, "/v1/auth/login", "", `{"email":"new@example.com","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid credentials", body["error"])

	code, pair = a.do(http.MethodPost, "/v1/auth/login", "", `{"email":"new@example.com","password":"password123"}`)
	require.Equal(t, http.StatusOK, code)
	token, _ := pair["access_token"].(string)
	require.NotEmpty(t, token)

	code, me := a.do(http.MethodGet, "/v1/me", token, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, model.RoleParent, me["role"])
	assert.Equal(t, "new@example.com", me["email"])

	code, _ = a.do(http.MethodPost, "/v1/auth/logout", token, "")
	assert.Equal(t, http.StatusNoContent, code)

	code, _ = a.do(http.MethodPost, "/v1/auth/refresh", "", `{"refresh_token":"`+pair["refresh_token"].(string)+`"}`)
	assert.Equal(t, http.StatusUnauthorized, code)
}
