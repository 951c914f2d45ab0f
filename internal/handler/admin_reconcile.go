package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/runclubno/runclub-backend/internal/model"
	"github.com/runclubno/runclub-backend/internal/reconcile"
	"github.com/runclubno/runclub-backend/internal/repository"
)

// AdminReconcileHandler finds and merges duplicate attendee rows for an
// event: guests duplicating a member registration, and guests entered
// twice.
type AdminReconcileHandler struct {
	Events        *repository.EventRepo
	Registrations *repository.RegistrationRepo
	Attendees     *repository.AttendeeRepo
}

func NewAdminReconcileHandler(e *repository.EventRepo, r *repository.RegistrationRepo, a *repository.AttendeeRepo) *AdminReconcileHandler {
	return &AdminReconcileHandler{Events: e, Registrations: r, Attendees: a}
}

func (h *AdminReconcileHandler) gather(ctx context.Context, eventID uint64) ([]reconcile.RegisteredMember, []reconcile.Guest, error) {
	regs, err := h.Registrations.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	attendees, err := h.Attendees.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}

	members := make([]reconcile.RegisteredMember, 0, len(regs))
	for _, r := range regs {
		if r.Registration.Status == model.RegStatusCancelled {
			continue
		}
		members = append(members, reconcile.RegisteredMember{
			RegistrationID: r.Registration.ID,
			MemberID:       r.Registration.MemberID,
			FullName:       r.MemberName,
			Email:          r.MemberEmail,
		})
	}
	guests := make([]reconcile.Guest, 0, len(attendees))
	for _, a := range attendees {
		guests = append(guests, reconcile.Guest{
			AttendeeID:    a.ID,
			Name:          a.Name,
			Email:         a.Email,
			PaymentStatus: a.PaymentStatus,
			Notes:         a.Notes,
			CreatedAt:     a.CreatedAt,
		})
	}
	return members, guests, nil
}

// Duplicates lists candidate duplicate pairs without changing anything.
func (h *AdminReconcileHandler) Duplicates(c echo.Context) error {
	eventID, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if _, err := h.Events.GetByID(ctx, eventID); err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load event failed"})
	}

	members, guests, err := h.gather(ctx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load attendees failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"member_duplicates": reconcile.FindDuplicates(members, guests),
		"guest_duplicates":  reconcile.FindGuestDuplicates(guests),
	})
}

type fixResult struct {
	Success bool   `json:"success"`
	Action  string `json:"action"`
	Detail  string `json:"detail"`
}

// Resolve applies the merges: guest rows duplicating a member
// registration are deleted, and of two duplicate guests only the
// survivor stays. Each step reports its own result; applied steps are
// not rolled back when a later one fails.
func (h *AdminReconcileHandler) Resolve(c echo.Context) error {
	eventID, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	if _, err := h.Events.GetByID(ctx, eventID); err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load event failed"})
	}

	members, guests, err := h.gather(ctx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load attendees failed"})
	}

	fixes := []fixResult{}
	deleted := map[uint64]bool{}

	for _, m := range reconcile.FindDuplicates(members, guests) {
		fix := fixResult{
			Action: "delete_guest",
			Detail: fmt.Sprintf("attendee %d duplicates registration %d (%s: %s)",
				m.AttendeeID, m.RegistrationID, m.Confidence, m.Reason),
		}
		if err := h.Attendees.Delete(ctx, m.AttendeeID); err != nil {
			fix.Detail += ": " + err.Error()
		} else {
			fix.Success = true
			deleted[m.AttendeeID] = true
		}
		fixes = append(fixes, fix)
	}

	for _, p := range reconcile.FindGuestDuplicates(guests) {
		if deleted[p.KeepID] || deleted[p.DropID] {
			continue
		}
		fix := fixResult{
			Action: "merge_guests",
			Detail: fmt.Sprintf("attendee %d merged into %d (%s: %s)",
				p.DropID, p.KeepID, p.Confidence, p.Reason),
		}
		if err := h.Attendees.Delete(ctx, p.DropID); err != nil {
			fix.Detail += ": " + err.Error()
		} else {
			fix.Success = true
			deleted[p.DropID] = true
		}
		fixes = append(fixes, fix)
	}

	return c.JSON(http.StatusOK, echo.Map{"fixes": fixes})
}
