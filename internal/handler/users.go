package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/swim-club-backend/internal/service"
)

// UserHandler is the staff view of accounts.
type UserHandler struct {
	Users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	if users == nil {
		panic("nil user service passed to NewUserHandler")
	}
	return &UserHandler{Users: users}
}

type createUserReq struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=8,max=72"`
	FullName    string  `json:"full_name" validate:"notblank,max=255"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=32"`
	Role        string  `json:"role" validate:"omitempty,oneof=OWNER COACH PARENT owner coach parent"`
}

// List handles GET /v1/users?role=&skip=&limit=.
func (h *UserHandler) List(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	skip, err := queryIntOr(c, "skip", 0)
	if err != nil {
		return writeError(c, err)
	}
	limit, err := queryIntOr(c, "limit", service.DefaultUserLimit)
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	users, err := h.Users.List(ctx, id, c.QueryParam("role"), skip, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Create(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	var req createUserReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.AdminCreate(ctx, id, service.UserInput{
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Role:        req.Role,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *UserHandler) Delete(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	userID, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.Delete(ctx, id, userID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
