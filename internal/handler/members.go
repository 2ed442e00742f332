package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/swim-club-backend/internal/model"
	"github.com/iliyamo/swim-club-backend/internal/service"
)

// MemberHandler serves the children registered under parent accounts.
type MemberHandler struct {
	Members *service.MemberService
}

func NewMemberHandler(members *service.MemberService) *MemberHandler {
	if members == nil {
		panic("nil member service passed to NewMemberHandler")
	}
	return &MemberHandler{Members: members}
}

type memberReq struct {
	FullName    string     `json:"full_name" validate:"notblank,max=255"`
	DateOfBirth model.Date `json:"date_of_birth"`
	Notes       *string    `json:"notes" validate:"omitempty,max=2000"`
}

func (r memberReq) input() service.MemberInput {
	return service.MemberInput{FullName: r.FullName, DateOfBirth: r.DateOfBirth, Notes: r.Notes}
}

type adminMemberReq struct {
	memberReq
	ParentID uint64 `json:"parent_id" validate:"required"`
}

func (h *MemberHandler) Mine(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Members.Mine(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *MemberHandler) Create(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	var req memberReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	m, err := h.Members.Create(ctx, id, req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *MemberHandler) AdminCreate(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	var req adminMemberReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	in := req.input()
	in.ParentID = req.ParentID
	m, err := h.Members.AdminCreate(ctx, id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *MemberHandler) Update(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	memberID, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req memberReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	m, err := h.Members.Update(ctx, id, memberID, req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *MemberHandler) ListAll(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Members.ListAll(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *MemberHandler) Deactivate(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	memberID, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Members.Deactivate(ctx, id, memberID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Purge hard-deletes the member, and the parent account when it is left
// without children.
func (h *MemberHandler) Purge(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	memberID, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Members.Purge(ctx, id, memberID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
