package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/runclubno/runclub-backend/internal/model"
	"github.com/runclubno/runclub-backend/internal/repository"
)

// PushHandler stores browser Web Push subscriptions per member.
type PushHandler struct {
	Subs *repository.PushRepo
}

func NewPushHandler(p *repository.PushRepo) *PushHandler {
	return &PushHandler{Subs: p}
}

// subscribeReq mirrors the browser PushSubscription JSON shape.
type subscribeReq struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// Subscribe stores (or refreshes) a push subscription.
func (h *PushHandler) Subscribe(c echo.Context) error {
	uid, err := memberID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req subscribeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Endpoint) == "" || req.Keys.P256dh == "" || req.Keys.Auth == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "endpoint and keys required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sub := model.PushSubscription{
		MemberID: uid,
		Endpoint: strings.TrimSpace(req.Endpoint),
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
	}
	if err := h.Subs.Upsert(ctx, &sub); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store subscription failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"subscribed": true})
}

type unsubscribeReq struct {
	Endpoint string `json:"endpoint"`
}

// Unsubscribe removes the member's subscription for an endpoint.
func (h *PushHandler) Unsubscribe(c echo.Context) error {
	uid, err := memberID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req unsubscribeReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Endpoint) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "endpoint required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Subs.DeleteByEndpoint(ctx, uid, strings.TrimSpace(req.Endpoint)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "remove subscription failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
