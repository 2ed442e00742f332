package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/swim-club-backend/internal/service"
)

// MessageHandler serves in-app messaging.
type MessageHandler struct {
	Messages *service.MessageService
}

func NewMessageHandler(messages *service.MessageService) *MessageHandler {
	if messages == nil {
		panic("nil message service passed to NewMessageHandler")
	}
	return &MessageHandler{Messages: messages}
}

type messageReq struct {
	Content          string  `json:"content" validate:"notblank,max=5000"`
	Scope            string  `json:"scope" validate:"omitempty,oneof=DIRECT GROUP_SCHEDULE BROADCAST_ALL INTERNAL_STAFF"`
	RecipientID      *uint64 `json:"recipient_id"`
	TargetScheduleID *uint64 `json:"target_schedule_id"`
	ImageURL         *string `json:"image_url" validate:"omitempty,url,max=500"`
}

func (h *MessageHandler) Send(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	var req messageReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	msg, err := h.Messages.Send(ctx, id, service.MessageInput{
		Content:          req.Content,
		Scope:            req.Scope,
		RecipientID:      req.RecipientID,
		TargetScheduleID: req.TargetScheduleID,
		ImageURL:         req.ImageURL,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, msg)
}

func (h *MessageHandler) Inbox(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Messages.Inbox(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}
