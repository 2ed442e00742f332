package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/swim-club-backend/internal/model"
	"github.com/iliyamo/swim-club-backend/internal/service"
)

// SkillHandler serves the skills catalog and member progress. Invalidate,
// when set, is called after the catalog changes so cached listings expire.
type SkillHandler struct {
	Skills     *service.SkillService
	Invalidate func(ctx context.Context) error
}

func NewSkillHandler(skills *service.SkillService, invalidate func(ctx context.Context) error) *SkillHandler {
	if skills == nil {
		panic("nil skill service passed to NewSkillHandler")
	}
	return &SkillHandler{Skills: skills, Invalidate: invalidate}
}

type skillReq struct {
	Name          string  `json:"name" validate:"notblank,max=100"`
	Description   *string `json:"description" validate:"omitempty,max=1000"`
	CategoryLabel *string `json:"category_label" validate:"omitempty,max=100"`
	DisplayOrder  int     `json:"display_order" validate:"gte=0"`
}

type awardReq struct {
	SkillID uint64 `json:"skill_id" validate:"required"`
}

type batchSkillsReq struct {
	MasteredSkillIDs []uint64 `json:"mastered_skill_ids"`
}

func (h *SkillHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Skills.List(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *SkillHandler) Create(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	var req skillReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	sk, err := h.Skills.Create(ctx, id, model.Skill{
		Name:          req.Name,
		Description:   req.Description,
		CategoryLabel: req.CategoryLabel,
		DisplayOrder:  req.DisplayOrder,
	})
	if err != nil {
		return writeError(c, err)
	}
	if h.Invalidate != nil {
		if err := h.Invalidate(ctx); err != nil {
			c.Logger().Warnf("skills: cache invalidation failed: %v", err)
		}
	}
	return c.JSON(http.StatusCreated, sk)
}

func (h *SkillHandler) Award(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	memberID, err := paramID(c, "member_id")
	if err != nil {
		return writeError(c, err)
	}
	var req awardReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	ms, err := h.Skills.Award(ctx, id, memberID, req.SkillID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, ms)
}

func (h *SkillHandler) Revoke(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	memberID, err := paramID(c, "member_id")
	if err != nil {
		return writeError(c, err)
	}
	skillID, err := paramID(c, "skill_id")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Skills.Revoke(ctx, id, memberID, skillID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *SkillHandler) MemberSkills(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	memberID, err := paramID(c, "member_id")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Skills.MemberSkills(ctx, id, memberID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *SkillHandler) Status(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	memberID, err := paramID(c, "member_id")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Skills.Status(ctx, id, memberID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// BatchReplace sets the member's mastered skills to exactly the given set.
func (h *SkillHandler) BatchReplace(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	memberID, err := paramID(c, "member_id")
	if err != nil {
		return writeError(c, err)
	}
	var req batchSkillsReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Skills.BatchReplace(ctx, id, memberID, req.MasteredSkillIDs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}
