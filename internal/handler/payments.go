package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/swim-club-backend/internal/model"
	"github.com/iliyamo/swim-club-backend/internal/service"
)

// PaymentHandler records fees and serves the payment reports.
type PaymentHandler struct {
	Payments  *service.PaymentService
	Reporting *service.ReportingService
}

func NewPaymentHandler(payments *service.PaymentService, reporting *service.ReportingService) *PaymentHandler {
	if payments == nil || reporting == nil {
		panic("nil service passed to NewPaymentHandler")
	}
	return &PaymentHandler{Payments: payments, Reporting: reporting}
}

type paymentReq struct {
	MemberID      uint64     `json:"member_id" validate:"required"`
	Amount        float64    `json:"amount" validate:"gt=0"`
	Currency      string     `json:"currency" validate:"omitempty,len=3"`
	PaymentDate   model.Date `json:"payment_date"`
	PaymentMethod string     `json:"payment_method"`
	Month         int        `json:"month" validate:"min=1,max=12"`
	Year          int        `json:"year" validate:"min=2000,max=2100"`
	Notes         *string    `json:"notes" validate:"omitempty,max=1000"`
}

func (h *PaymentHandler) Create(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	var req paymentReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Payments.Create(ctx, id, service.PaymentInput{
		MemberID:      req.MemberID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		PaymentDate:   req.PaymentDate,
		PaymentMethod: req.PaymentMethod,
		Month:         req.Month,
		Year:          req.Year,
		Notes:         req.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *PaymentHandler) History(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Payments.History(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// YearlySummary handles GET /v1/payments/yearly-summary?year=, defaulting
// to the current year.
func (h *PaymentHandler) YearlySummary(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	year, err := queryIntOr(c, "year", 0)
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Reporting.YearlySummary(ctx, id, year)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *PaymentHandler) Debtors(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	month, err := queryIntOr(c, "month", 0)
	if err != nil {
		return writeError(c, err)
	}
	year, err := queryIntOr(c, "year", 0)
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Reporting.Debtors(ctx, id, month, year)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *PaymentHandler) Status(c echo.Context) error {
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

	st, err := h.Reporting.PaymentStatus(ctx, id, memberID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}
