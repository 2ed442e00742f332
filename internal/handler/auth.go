package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/swim-club-backend/internal/service"
	"github.com/iliyamo/swim-club-backend/internal/utils"
)

// AuthHandler serves sign-up, sessions and the caller's own profile.
type AuthHandler struct {
	Users     *service.UserService
	JWTSecret string
}

func NewAuthHandler(users *service.UserService, jwtSecret string) *AuthHandler {
	if users == nil {
		panic("nil user service passed to NewAuthHandler")
	}
	return &AuthHandler{Users: users, JWTSecret: jwtSecret}
}

type registerReq struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=8,max=72"`
	FullName    string  `json:"full_name" validate:"notblank,max=255"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=32"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type logoutReq struct {
	RefreshToken string `json:"refresh_token"`
}

type passwordReq struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// Register creates a PARENT account and signs it in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	pair, err := h.Users.Register(ctx, service.UserInput{
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, pair)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	pair, err := h.Users.Login(ctx, req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, pair)
}

// Refresh rotates the refresh token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	pair, err := h.Users.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, pair)
}

// RefreshAccess issues a new access token and keeps the refresh token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	var req refreshReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	at, err := h.Users.RefreshAccess(ctx, req.RefreshToken)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"access_token": at.Token, "token_type": "Bearer", "expires_at": at.Exp})
}

// Logout revokes the given refresh token, or every session of the bearer
// when no refresh token is sent.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req logoutReq
	if err := c.Bind(&req); err != nil {
		return writeError(c, errBadRequest("invalid body"))
	}
	var id service.Identity
	if req.RefreshToken == "" {
		raw, ok := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
		claims, err := utils.ParseAccessToken(h.JWTSecret, strings.TrimSpace(raw))
		if !ok || err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		id = service.Identity{UserID: claims.UserID, Role: claims.Role}
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.Logout(ctx, id, req.RefreshToken); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) Me(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.Me(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	var req passwordReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.ChangePassword(ctx, id, req.OldPassword, req.NewPassword); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
