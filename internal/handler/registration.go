package handler

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/runclubno/runclub-backend/internal/capacity"
	"github.com/runclubno/runclub-backend/internal/config"
	"github.com/runclubno/runclub-backend/internal/model"
	"github.com/runclubno/runclub-backend/internal/payments"
	"github.com/runclubno/runclub-backend/internal/pricing"
	"github.com/runclubno/runclub-backend/internal/queue"
	"github.com/runclubno/runclub-backend/internal/repository"
	queue_publisher "github.com/runclubno/runclub-backend/internal/service"
)

// RegistrationHandler implements member self-registration for events.
type RegistrationHandler struct {
	Cfg           config.Config
	Events        *repository.EventRepo
	Registrations *repository.RegistrationRepo
	Attendees     *repository.AttendeeRepo
	Members       *repository.MemberRepo
	Coupons       *repository.CouponRepo
	Stripe        *payments.StripeClient
}

func NewRegistrationHandler(cfg config.Config, e *repository.EventRepo, r *repository.RegistrationRepo,
	a *repository.AttendeeRepo, m *repository.MemberRepo, cp *repository.CouponRepo, s *payments.StripeClient) *RegistrationHandler {
	return &RegistrationHandler{Cfg: cfg, Events: e, Registrations: r, Attendees: a, Members: m, Coupons: cp, Stripe: s}
}

type registrationReq struct {
	CouponCode string `json:"coupon_code"`
}

type registrationResp struct {
	Reference     string  `json:"reference"`
	Status        string  `json:"status"`
	PaymentStatus *string `json:"payment_status"`
	AmountCents   uint32  `json:"amount_cents"`
	CheckoutURL   string  `json:"checkout_url,omitempty"`
}

// Register signs the authenticated member up for an event. The capacity
// recount and the insert run in one transaction holding the event row
// lock, so two concurrent requests for the last spot cannot both
// succeed. Free events confirm immediately; paid events get a pending
// row plus a Stripe Checkout session.
func (h *RegistrationHandler) Register(c echo.Context) error {
	uid, err := memberID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req registrationReq
	_ = c.Bind(&req)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	ev, err := h.Events.GetBySlug(ctx, c.Param("slug"))
	if err == repository.ErrEventNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load event failed"})
	}
	if ev.Archived {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}

	member, err := h.Members.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load member failed"})
	}

	// Resolve the price before touching the event lock; coupon errors
	// should not cost a transaction.
	amount := ev.PriceCents
	var coupon *model.Coupon
	if code := strings.TrimSpace(req.CouponCode); code != "" && !ev.IsFree {
		cp, err := h.Coupons.GetByCode(ctx, code)
		if err == repository.ErrCouponNotFound {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown coupon code"})
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load coupon failed"})
		}
		if err := pricing.ValidateCoupon(cp, time.Now().UTC()); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		discount, err := pricing.Discount(cp, amount)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		amount -= discount
		coupon = &cp
	}
	free := ev.IsFree || amount == 0

	tx, err := h.Events.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	ev, err = h.Events.GetForUpdateTx(ctx, tx, ev.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lock event failed"})
	}

	already, err := h.Registrations.ActiveByMemberAndEventTx(ctx, tx, uid, ev.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "check registration failed"})
	}
	if already {
		return c.JSON(http.StatusConflict, echo.Map{"error": "already registered"})
	}

	regs, err := h.Registrations.CountableTx(ctx, tx, ev.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "count registrations failed"})
	}
	guests, err := h.Attendees.CountableTx(ctx, tx, ev.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "count attendees failed"})
	}
	// Admission counting, not the public one: a pending checkout on a
	// paid event already holds its spot.
	if capacity.SummarizeAdmission(ev, regs, guests).IsFull {
		return c.JSON(http.StatusConflict, echo.Map{"error": "event is full"})
	}

	pending := model.PayStatusPending
	reg := model.Registration{
		MemberID:      uid,
		EventID:       ev.ID,
		Role:          model.RoleGuest,
		PaymentStatus: &pending,
		Reference:     uuid.NewString(),
	}
	if free {
		reg.Status = model.RegStatusConfirmed
	} else {
		reg.Status = model.RegStatusRegistered
	}
	if err := h.Registrations.CreateTx(ctx, tx, &reg); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create registration failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	if coupon != nil {
		if err := h.Coupons.Redeem(ctx, coupon.ID); err != nil {
			log.Printf("registration: redeem coupon %s: %v", coupon.Code, err)
		}
	}

	if free {
		h.publishConfirmed(reg, member, ev, 0)
		return c.JSON(http.StatusCreated, registrationResp{
			Reference:     reg.Reference,
			Status:        reg.Status,
			PaymentStatus: reg.PaymentStatus,
			AmountCents:   0,
		})
	}

	session, err := h.Stripe.CreateCheckoutSession(ctx, payments.CheckoutParams{
		AmountCents:   amount,
		Currency:      h.Cfg.Currency,
		ProductName:   ev.Title,
		Quantity:      1,
		CustomerEmail: member.Email,
		SuccessURL:    h.Cfg.BaseURL + "/events/" + ev.Slug + "?checkout=success",
		CancelURL:     h.Cfg.BaseURL + "/events/" + ev.Slug + "?checkout=cancelled",
		Metadata:      map[string]string{"reference": reg.Reference},
	})
	if err != nil {
		// The spot is not held without a session; release it.
		if _, cErr := h.Registrations.Cancel(ctx, uid, ev.ID); cErr != nil {
			log.Printf("registration: release after checkout failure: %v", cErr)
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "create checkout session failed"})
	}
	if err := h.Registrations.SetCheckoutSession(ctx, reg.ID, session.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store checkout session failed"})
	}

	return c.JSON(http.StatusCreated, registrationResp{
		Reference:     reg.Reference,
		Status:        reg.Status,
		PaymentStatus: reg.PaymentStatus,
		AmountCents:   amount,
		CheckoutURL:   session.URL,
	})
}

// Cancel cancels the member's own registration. Paid registrations keep
// their transaction rows so refunds stay traceable.
func (h *RegistrationHandler) Cancel(c echo.Context) error {
	uid, err := memberID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev, err := h.Events.GetBySlug(ctx, c.Param("slug"))
	if err == repository.ErrEventNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load event failed"})
	}

	reg, err := h.Registrations.Cancel(ctx, uid, ev.ID)
	if err == sql.ErrNoRows {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no active registration"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}

	// Abandon any open checkout session so the member is not charged
	// after cancelling.
	if reg.StripeSessionID != nil && reg.PaymentStatus != nil && *reg.PaymentStatus == model.PayStatusPending {
		if err := h.Stripe.ExpireCheckoutSession(ctx, *reg.StripeSessionID); err != nil {
			log.Printf("registration: expire checkout session: %v", err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"status": reg.Status})
}

// MyRegistrations lists the member's registrations with event context.
func (h *RegistrationHandler) MyRegistrations(c echo.Context) error {
	uid, err := memberID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Registrations.ListByMember(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list registrations failed"})
	}
	out := make([]echo.Map, 0, len(list))
	for _, d := range list {
		out = append(out, echo.Map{
			"reference":      d.Registration.Reference,
			"status":         d.Registration.Status,
			"payment_status": d.Registration.PaymentStatus,
			"amount_cents":   d.Registration.AmountPaidCents,
			"event_slug":     d.EventSlug,
			"event_title":    d.EventTitle,
			"event_starts":   d.EventStarts,
			"created_at":     d.Registration.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"registrations": out})
}

func (h *RegistrationHandler) publishConfirmed(reg model.Registration, m model.Member, ev model.Event, amountCents uint32) {
	evt := queue.RegistrationConfirmedEvent{
		RegistrationID: reg.ID,
		MemberID:       m.ID,
		MemberName:     m.FullName,
		MemberEmail:    m.Email,
		EventID:        ev.ID,
		EventSlug:      ev.Slug,
		EventTitle:     ev.Title,
		StartsAt:       ev.StartsAt.Format(time.RFC3339),
		AmountCents:    amountCents,
		ConfirmedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := queue_publisher.PublishRegistrationConfirmed(ctx, evt); err != nil {
			log.Printf("registration: publish confirmed event: %v", err)
		}
	}()
}
