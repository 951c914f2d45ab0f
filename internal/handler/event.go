package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/runclubno/runclub-backend/internal/capacity"
	"github.com/runclubno/runclub-backend/internal/model"
	"github.com/runclubno/runclub-backend/internal/repository"
)

// EventHandler serves the public event catalogue.
type EventHandler struct {
	Events        *repository.EventRepo
	Registrations *repository.RegistrationRepo
	Attendees     *repository.AttendeeRepo
}

func NewEventHandler(e *repository.EventRepo, r *repository.RegistrationRepo, a *repository.AttendeeRepo) *EventHandler {
	return &EventHandler{Events: e, Registrations: r, Attendees: a}
}

type eventResp struct {
	ID              uint64    `json:"id"`
	Slug            string    `json:"slug"`
	Title           string    `json:"title"`
	Description     *string   `json:"description,omitempty"`
	Location        *string   `json:"location,omitempty"`
	StartsAt        time.Time `json:"starts_at"`
	PriceCents      uint32    `json:"price_cents"`
	IsFree          bool      `json:"is_free"`
	MaxParticipants *uint32   `json:"max_participants"`
	Archived        bool      `json:"archived"`
}

func toEventResp(e model.Event) eventResp {
	return eventResp{
		ID: e.ID, Slug: e.Slug, Title: e.Title, Description: e.Description,
		Location: e.Location, StartsAt: e.StartsAt, PriceCents: e.PriceCents,
		IsFree: e.IsFree, MaxParticipants: e.MaxParticipants, Archived: e.Archived,
	}
}

// List returns upcoming non-archived events.
func (h *EventHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	events, err := h.Events.ListPublic(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list events failed"})
	}
	out := make([]eventResp, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResp(e))
	}
	return c.JSON(http.StatusOK, echo.Map{"events": out})
}

// Get returns one event by slug. Archived events are not public.
func (h *EventHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	e, err := h.Events.GetBySlug(ctx, c.Param("slug"))
	if err == repository.ErrEventNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load event failed"})
	}
	if e.Archived {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}
	return c.JSON(http.StatusOK, toEventResp(e))
}

// Availability returns the capacity summary for an event.
func (h *EventHandler) Availability(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	e, err := h.Events.GetBySlug(ctx, c.Param("slug"))
	if err == repository.ErrEventNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load event failed"})
	}
	if e.Archived {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}

	regs, err := h.Registrations.Countable(ctx, e.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "count registrations failed"})
	}
	guests, err := h.Attendees.Countable(ctx, e.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "count attendees failed"})
	}
	return c.JSON(http.StatusOK, capacity.Summarize(e, regs, guests))
}
