package handler

import (
	"context"
	"database/sql"
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/runclubno/runclub-backend/internal/config"
	"github.com/runclubno/runclub-backend/internal/model"
	"github.com/runclubno/runclub-backend/internal/payments"
	"github.com/runclubno/runclub-backend/internal/repository"
)

// AdminAttendeeHandler manages guest attendees: walk-ups, plus-ones and
// visiting runners added by an admin rather than self-registered.
type AdminAttendeeHandler struct {
	Cfg           config.Config
	Events        *repository.EventRepo
	Attendees     *repository.AttendeeRepo
	Registrations *repository.RegistrationRepo
	Stripe        *payments.StripeClient
}

func NewAdminAttendeeHandler(cfg config.Config, e *repository.EventRepo, a *repository.AttendeeRepo,
	r *repository.RegistrationRepo, s *payments.StripeClient) *AdminAttendeeHandler {
	return &AdminAttendeeHandler{Cfg: cfg, Events: e, Attendees: a, Registrations: r, Stripe: s}
}

type attendeeReq struct {
	Name          string  `json:"name"`
	Email         *string `json:"email"`
	PaymentStatus *string `json:"payment_status"`
	Role          string  `json:"role"`
	Notes         *string `json:"notes"`
}

type attendeeResp struct {
	ID            uint64  `json:"id"`
	EventID       uint64  `json:"event_id"`
	Name          string  `json:"name"`
	Email         *string `json:"email"`
	PaymentStatus *string `json:"payment_status"`
	Role          string  `json:"role"`
	Notes         *string `json:"notes"`
}

func toAttendeeResp(a model.Attendee) attendeeResp {
	return attendeeResp{ID: a.ID, EventID: a.EventID, Name: a.Name, Email: a.Email,
		PaymentStatus: a.PaymentStatus, Role: a.Role, Notes: a.Notes}
}

func attendeeFromReq(req attendeeReq) (model.Attendee, string) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.Attendee{}, "name required"
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = model.RoleGuest
	}
	if role != model.RoleGuest && role != model.RoleStaff {
		return model.Attendee{}, "role must be guest or staff"
	}
	if req.PaymentStatus != nil {
		switch *req.PaymentStatus {
		case model.PayStatusPaid, model.PayStatusPending, model.PayStatusFailed, model.PayStatusRefunded:
		default:
			return model.Attendee{}, "invalid payment_status"
		}
	}
	return model.Attendee{Name: name, Email: req.Email, PaymentStatus: req.PaymentStatus,
		Role: role, Notes: req.Notes}, ""
}

func (h *AdminAttendeeHandler) loadEvent(ctx context.Context, c echo.Context) (model.Event, bool) {
	id, err := paramID(c, "id")
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
		return model.Event{}, false
	}
	ev, err := h.Events.GetByID(ctx, id)
	if err == repository.ErrEventNotFound {
		_ = c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		return model.Event{}, false
	}
	if err != nil {
		_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "load event failed"})
		return model.Event{}, false
	}
	return ev, true
}

// List returns registered members and guest attendees for an event.
func (h *AdminAttendeeHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev, ok := h.loadEvent(ctx, c)
	if !ok {
		return nil
	}

	regs, err := h.Registrations.ListByEvent(ctx, ev.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list registrations failed"})
	}
	guests, err := h.Attendees.ListByEvent(ctx, ev.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list attendees failed"})
	}

	regOut := make([]echo.Map, 0, len(regs))
	for _, r := range regs {
		regOut = append(regOut, echo.Map{
			"registration_id": r.Registration.ID,
			"member_id":       r.Registration.MemberID,
			"name":            r.MemberName,
			"email":           r.MemberEmail,
			"status":          r.Registration.Status,
			"payment_status":  r.Registration.PaymentStatus,
			"role":            r.Registration.Role,
		})
	}
	guestOut := make([]attendeeResp, 0, len(guests))
	for _, g := range guests {
		guestOut = append(guestOut, toAttendeeResp(g))
	}
	return c.JSON(http.StatusOK, echo.Map{"registrations": regOut, "attendees": guestOut})
}

// Create adds a guest attendee to an event.
func (h *AdminAttendeeHandler) Create(c echo.Context) error {
	var req attendeeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	a, msg := attendeeFromReq(req)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev, ok := h.loadEvent(ctx, c)
	if !ok {
		return nil
	}
	a.EventID = ev.ID

	id, err := h.Attendees.Create(ctx, &a)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create attendee failed"})
	}
	a.ID = id
	return c.JSON(http.StatusCreated, toAttendeeResp(a))
}

// Update rewrites a guest attendee's fields.
func (h *AdminAttendeeHandler) Update(c echo.Context) error {
	aid, err := paramID(c, "attendee_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid attendee id"})
	}
	var req attendeeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	a, msg := attendeeFromReq(req)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	a.ID = aid

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Attendees.Update(ctx, &a); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "attendee not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update attendee failed"})
	}
	return c.JSON(http.StatusOK, toAttendeeResp(a))
}

// Delete removes a guest attendee.
func (h *AdminAttendeeHandler) Delete(c echo.Context) error {
	aid, err := paramID(c, "attendee_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid attendee id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Attendees.Delete(ctx, aid); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "attendee not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete attendee failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// PaymentLink creates a Stripe Checkout session for a guest on a paid
// event and returns the URL so the admin can send it to the guest.
func (h *AdminAttendeeHandler) PaymentLink(c echo.Context) error {
	aid, err := paramID(c, "attendee_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid attendee id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	ev, ok := h.loadEvent(ctx, c)
	if !ok {
		return nil
	}
	if ev.IsFree {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event is free"})
	}

	a, err := h.Attendees.GetByID(ctx, aid)
	if err == sql.ErrNoRows {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "attendee not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load attendee failed"})
	}
	if a.EventID != ev.ID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "attendee not found"})
	}

	email := ""
	if a.Email != nil {
		email = *a.Email
	}
	session, err := h.Stripe.CreateCheckoutSession(ctx, payments.CheckoutParams{
		AmountCents:   ev.PriceCents,
		Currency:      h.Cfg.Currency,
		ProductName:   ev.Title,
		Quantity:      1,
		CustomerEmail: email,
		SuccessURL:    h.Cfg.BaseURL + "/events/" + ev.Slug + "?checkout=success",
		CancelURL:     h.Cfg.BaseURL + "/events/" + ev.Slug + "?checkout=cancelled",
		Metadata:      map[string]string{"attendee_id": strconv.FormatUint(a.ID, 10)},
	})
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "create checkout session failed"})
	}
	if err := h.Attendees.SetCheckoutSession(ctx, a.ID, session.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store checkout session failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"checkout_url": session.URL})
}

// ExportCSV streams registered members and guest attendees as one CSV.
func (h *AdminAttendeeHandler) ExportCSV(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	ev, ok := h.loadEvent(ctx, c)
	if !ok {
		return nil
	}

	regs, err := h.Registrations.ListByEvent(ctx, ev.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list registrations failed"})
	}
	guests, err := h.Attendees.ListByEvent(ctx, ev.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list attendees failed"})
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="`+ev.Slug+`-attendees.csv"`)
	c.Response().WriteHeader(http.StatusOK)

	w := csv.NewWriter(c.Response())
	if err := w.Write(ExportCSVHeader); err != nil {
		return err
	}
	for _, r := range regs {
		if err := w.Write(registrationCSVRow(r)); err != nil {
			return err
		}
	}
	for _, g := range guests {
		if err := w.Write(attendeeCSVRow(g)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ExportCSVHeader is the column order of the attendee export.
var ExportCSVHeader = []string{"type", "name", "email", "status", "payment_status", "role", "notes"}

func registrationCSVRow(r repository.EventRegistrationRow) []string {
	return []string{
		"member",
		r.MemberName,
		r.MemberEmail,
		r.Registration.Status,
		derefOr(r.Registration.PaymentStatus, ""),
		r.Registration.Role,
		derefOr(r.Registration.Notes, ""),
	}
}

func attendeeCSVRow(a model.Attendee) []string {
	return []string{
		"guest",
		a.Name,
		derefOr(a.Email, ""),
		"",
		derefOr(a.PaymentStatus, ""),
		a.Role,
		derefOr(a.Notes, ""),
	}
}

func derefOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}
