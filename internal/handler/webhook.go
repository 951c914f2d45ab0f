package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/runclubno/runclub-backend/internal/config"
	"github.com/runclubno/runclub-backend/internal/model"
	"github.com/runclubno/runclub-backend/internal/payments"
	"github.com/runclubno/runclub-backend/internal/queue"
	"github.com/runclubno/runclub-backend/internal/repository"
	queue_publisher "github.com/runclubno/runclub-backend/internal/service"
)

// WebhookHandler processes Stripe webhook deliveries. Every delivery is
// stored keyed by the provider event id before processing, so replays
// are acknowledged without running side effects twice.
type WebhookHandler struct {
	Cfg           config.Config
	Events        *repository.EventRepo
	Registrations *repository.RegistrationRepo
	Attendees     *repository.AttendeeRepo
	Members       *repository.MemberRepo
	Payments      *repository.PaymentRepo
}

func NewWebhookHandler(cfg config.Config, e *repository.EventRepo, r *repository.RegistrationRepo,
	a *repository.AttendeeRepo, m *repository.MemberRepo, p *repository.PaymentRepo) *WebhookHandler {
	return &WebhookHandler{Cfg: cfg, Events: e, Registrations: r, Attendees: a, Members: m, Payments: p}
}

// Stripe handles POST /v1/stripe/webhook.
func (h *WebhookHandler) Stripe(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "read body failed"})
	}

	sig := c.Request().Header.Get("Stripe-Signature")
	if err := payments.VerifySignature(body, sig, h.Cfg.StripeWebhookSecret, payments.DefaultTolerance, time.Now()); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "signature verification failed"})
	}

	var event payments.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil || event.ID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	rowID, err := h.Payments.InsertWebhookEvent(ctx, event.ID, event.Type, string(body))
	if err == repository.ErrDuplicateWebhook {
		return c.JSON(http.StatusOK, echo.Map{"status": "duplicate"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store webhook failed"})
	}

	procErr := h.process(ctx, event)
	errText := ""
	if procErr != nil {
		errText = procErr.Error()
		log.Printf("webhook: process %s (%s): %v", event.ID, event.Type, procErr)
	}
	if err := h.Payments.MarkWebhookProcessed(ctx, rowID, errText); err != nil {
		log.Printf("webhook: mark processed %s: %v", event.ID, err)
	}
	if procErr != nil {
		// Stripe retries non-2xx deliveries; the dedup row remains so a
		// retry is treated as a duplicate.
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "processing failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"received": true})
}

func (h *WebhookHandler) process(ctx context.Context, event payments.WebhookEvent) error {
	switch event.Type {
	case "checkout.session.completed":
		var session payments.SessionObject
		if err := json.Unmarshal(event.Data.Object, &session); err != nil {
			return err
		}
		return h.settleSession(ctx, session)
	case "payment_intent.succeeded":
		var intent payments.IntentObject
		if err := json.Unmarshal(event.Data.Object, &intent); err != nil {
			return err
		}
		return h.Payments.SetStatusByIntent(ctx, intent.ID, model.TxnStatusSucceeded)
	case "payment_intent.payment_failed":
		var intent payments.IntentObject
		if err := json.Unmarshal(event.Data.Object, &intent); err != nil {
			return err
		}
		if err := h.Registrations.SetPaymentStatusByIntent(ctx, intent.ID, model.PayStatusFailed); err != nil {
			return err
		}
		return h.Payments.SetStatusByIntent(ctx, intent.ID, model.TxnStatusFailed)
	case "charge.refunded":
		var charge payments.ChargeObject
		if err := json.Unmarshal(event.Data.Object, &charge); err != nil {
			return err
		}
		if err := h.Registrations.SetPaymentStatusByIntent(ctx, charge.PaymentIntent, model.PayStatusRefunded); err != nil {
			return err
		}
		return h.Payments.SetStatusByIntent(ctx, charge.PaymentIntent, model.TxnStatusRefunded)
	default:
		// Unhandled event types are stored and acknowledged.
		return nil
	}
}

// settleSession marks whichever row carries the checkout session as
// paid: a member registration first, then a guest attendee.
func (h *WebhookHandler) settleSession(ctx context.Context, session payments.SessionObject) error {
	if session.AmountTotal < 0 || session.AmountTotal > math.MaxUint32 {
		return fmt.Errorf("checkout session %s: amount_total %d out of range", session.ID, session.AmountTotal)
	}
	amount := uint32(session.AmountTotal)

	reg, err := h.Registrations.MarkPaidBySession(ctx, session.ID, session.PaymentIntent, amount)
	if err == nil {
		memberID := reg.MemberID
		if _, err := h.Payments.InsertTransaction(ctx, &model.PaymentTransaction{
			EventID:               reg.EventID,
			MemberID:              &memberID,
			StripePaymentIntentID: &session.PaymentIntent,
			AmountCents:           amount,
			Currency:              session.Currency,
			Status:                model.TxnStatusSucceeded,
		}); err != nil {
			return err
		}
		h.publishConfirmed(ctx, reg, amount)
		return nil
	}
	if err != sql.ErrNoRows {
		return err
	}

	attendee, err := h.Attendees.MarkPaidBySession(ctx, session.ID)
	if err == sql.ErrNoRows {
		log.Printf("webhook: no row for checkout session %s", session.ID)
		return nil
	}
	if err != nil {
		return err
	}
	_, err = h.Payments.InsertTransaction(ctx, &model.PaymentTransaction{
		EventID:               attendee.EventID,
		StripePaymentIntentID: &session.PaymentIntent,
		AmountCents:           amount,
		Currency:              session.Currency,
		Status:                model.TxnStatusSucceeded,
	})
	return err
}

func (h *WebhookHandler) publishConfirmed(ctx context.Context, reg model.Registration, amountCents uint32) {
	m, err := h.Members.GetByID(ctx, reg.MemberID)
	if err != nil {
		log.Printf("webhook: load member %d: %v", reg.MemberID, err)
		return
	}
	ev, err := h.Events.GetByID(ctx, reg.EventID)
	if err != nil {
		log.Printf("webhook: load event %d: %v", reg.EventID, err)
		return
	}
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
	if err := queue_publisher.PublishRegistrationConfirmed(ctx, evt); err != nil {
		log.Printf("webhook: publish confirmed event: %v", err)
	}
}
