package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/swim-club-backend/internal/handler"
	"github.com/iliyamo/swim-club-backend/internal/middleware"
	"github.com/iliyamo/swim-club-backend/internal/model"
)

// Handlers bundles every HTTP handler the API exposes.
type Handlers struct {
	Auth       *handler.AuthHandler
	Users      *handler.UserHandler
	Schedules  *handler.ScheduleHandler
	Attendance *handler.AttendanceHandler
	Members    *handler.MemberHandler
	Skills     *handler.SkillHandler
	Messages   *handler.MessageHandler
	Payments   *handler.PaymentHandler
	Dashboard  *handler.DashboardHandler
}

// gates are the role checks shared by the route files. Each one includes
// JWTAuth, so a route lists a single gate.
type gates struct {
	any         echo.MiddlewareFunc
	owner       echo.MiddlewareFunc
	staff       echo.MiddlewareFunc
	ownerParent echo.MiddlewareFunc
}

func newGates(jwtSecret string) gates {
	auth := middleware.JWTAuth(jwtSecret)
	chain := func(roles ...string) echo.MiddlewareFunc {
		check := middleware.RequireRole(roles...)
		return func(next echo.HandlerFunc) echo.HandlerFunc { return auth(check(next)) }
	}
	return gates{
		any:         chain(model.RoleOwner, model.RoleCoach, model.RoleParent),
		owner:       chain(model.RoleOwner),
		staff:       chain(model.RoleOwner, model.RoleCoach),
		ownerParent: chain(model.RoleOwner, model.RoleParent),
	}
}

// RegisterRoutes registers routes that need no authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// Register mounts the whole API under /v1. skillsCache wraps the skills
// catalog listing.
func Register(e *echo.Echo, h Handlers, jwtSecret string, skillsCache echo.MiddlewareFunc) {
	RegisterRoutes(e)
	v1 := e.Group("/v1")
	g := newGates(jwtSecret)

	registerAuth(v1, h.Auth, g)
	registerUsers(v1, h.Users, g)
	registerSchedules(v1, h.Schedules, g)
	registerAttendance(v1, h.Attendance, g)
	registerMembers(v1, h.Members, g)
	registerSkills(v1, h.Skills, g, skillsCache)
	registerMessages(v1, h.Messages, g)
	registerPayments(v1, h.Payments, g)
	registerDashboard(v1, h.Dashboard, g)
}

// registerAuth keeps the session endpoints public; logout accepts either a
// refresh token in the body or a bearer token.
func registerAuth(v1 *echo.Group, a *handler.AuthHandler, g gates) {
	auth := v1.Group("/auth")
	auth.POST("/register", a.Register)
	auth.POST("/login", a.Login)
	auth.POST("/refresh", a.Refresh)
	auth.POST("/refresh-access", a.RefreshAccess)
	auth.POST("/logout", a.Logout)

	v1.GET("/me", a.Me, g.any)
	v1.PUT("/me/password", a.ChangePassword, g.any)
}

func registerUsers(v1 *echo.Group, u *handler.UserHandler, g gates) {
	v1.GET("/users", u.List, g.staff)
	v1.POST("/users", u.Create, g.owner)
	v1.DELETE("/users/:id", u.Delete, g.owner)
}
