package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/runclubno/runclub-backend/internal/model"
	"github.com/runclubno/runclub-backend/internal/pricing"
	"github.com/runclubno/runclub-backend/internal/repository"
)

// AdminEventHandler implements the admin event CRUD. Price and date
// values arrive as free text from the legacy admin tooling and are
// normalized into typed columns here, at the write boundary.
type AdminEventHandler struct {
	Events *repository.EventRepo
}

func NewAdminEventHandler(e *repository.EventRepo) *AdminEventHandler {
	return &AdminEventHandler{Events: e}
}

type adminEventReq struct {
	Slug            string  `json:"slug"`
	Title           string  `json:"title"`
	Description     *string `json:"description"`
	Location        *string `json:"location"`
	StartsAt        string  `json:"starts_at"`
	Price           string  `json:"price"`
	MaxParticipants *uint32 `json:"max_participants"`
	Archived        bool    `json:"archived"`
}

var errBadDate = errors.New("unparseable date")

// eventDateLayouts are the formats the legacy admin tooling produced.
var eventDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"02.01.2006 15:04",
	"02.01.2006",
}

func parseEventDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errBadDate
}

func (h *AdminEventHandler) eventFromReq(req adminEventReq) (model.Event, error) {
	startsAt, err := parseEventDate(req.StartsAt)
	if err != nil {
		return model.Event{}, err
	}
	cents, isFree, err := pricing.ParsePrice(req.Price)
	if err != nil {
		return model.Event{}, err
	}
	return model.Event{
		Slug:            strings.ToLower(strings.TrimSpace(req.Slug)),
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		Location:        req.Location,
		StartsAt:        startsAt,
		PriceCents:      cents,
		IsFree:          isFree,
		MaxParticipants: req.MaxParticipants,
		Archived:        req.Archived,
	}, nil
}

// Create inserts a new event.
func (h *AdminEventHandler) Create(c echo.Context) error {
	var req adminEventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ev, err := h.eventFromReq(req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if ev.Slug == "" || ev.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slug/title required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Events.Create(ctx, &ev)
	if err == repository.ErrSlugExists {
		return c.JSON(http.StatusConflict, echo.Map{"error": "slug already exists"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create event failed"})
	}
	ev.ID = id
	return c.JSON(http.StatusCreated, toEventResp(ev))
}

// Update rewrites an event's mutable fields. The slug is immutable.
func (h *AdminEventHandler) Update(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req adminEventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ev, err := h.eventFromReq(req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ev.ID = id

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Events.Update(ctx, &ev); err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update event failed"})
	}
	return c.JSON(http.StatusOK, toEventResp(ev))
}

// List returns every event, archived included.
func (h *AdminEventHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	events, err := h.Events.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list events failed"})
	}
	out := make([]eventResp, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResp(e))
	}
	return c.JSON(http.StatusOK, echo.Map{"events": out})
}

// Archive hides an event from public listings; Unarchive restores it.
func (h *AdminEventHandler) Archive(c echo.Context) error   { return h.setArchived(c, true) }
func (h *AdminEventHandler) Unarchive(c echo.Context) error { return h.setArchived(c, false) }

func (h *AdminEventHandler) setArchived(c echo.Context, archived bool) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Events.SetArchived(ctx, id, archived); err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "archive event failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"archived": archived})
}
