package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/runclubno/runclub-backend/internal/model"
	"github.com/runclubno/runclub-backend/internal/repository"
)

// AdminPaymentHandler lists payment transactions and records check-ins.
type AdminPaymentHandler struct {
	Payments      *repository.PaymentRepo
	Registrations *repository.RegistrationRepo
	Events        *repository.EventRepo
}

func NewAdminPaymentHandler(p *repository.PaymentRepo, r *repository.RegistrationRepo, e *repository.EventRepo) *AdminPaymentHandler {
	return &AdminPaymentHandler{Payments: p, Registrations: r, Events: e}
}

type transactionResp struct {
	ID                    uint64    `json:"id"`
	EventID               uint64    `json:"event_id"`
	MemberID              *uint64   `json:"member_id"`
	StripePaymentIntentID *string   `json:"stripe_payment_intent_id"`
	AmountCents           uint32    `json:"amount_cents"`
	Currency              string    `json:"currency"`
	Status                string    `json:"status"`
	Metadata              *string   `json:"metadata"`
	CreatedAt             time.Time `json:"created_at"`
}

func toTransactionResp(t model.PaymentTransaction) transactionResp {
	return transactionResp{ID: t.ID, EventID: t.EventID, MemberID: t.MemberID,
		StripePaymentIntentID: t.StripePaymentIntentID, AmountCents: t.AmountCents,
		Currency: t.Currency, Status: t.Status, Metadata: t.Metadata, CreatedAt: t.CreatedAt}
}

// ListByEvent returns all transactions for an event.
func (h *AdminPaymentHandler) ListByEvent(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	txns, err := h.Payments.ListByEvent(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list transactions failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"transactions": toTransactionResps(txns)})
}

// ListByMember returns all transactions for a member.
func (h *AdminPaymentHandler) ListByMember(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid member id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	txns, err := h.Payments.ListByMember(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list transactions failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"transactions": toTransactionResps(txns)})
}

func toTransactionResps(txns []model.PaymentTransaction) []transactionResp {
	out := make([]transactionResp, 0, len(txns))
	for _, t := range txns {
		out = append(out, toTransactionResp(t))
	}
	return out
}

type checkinReq struct {
	MemberID uint64 `json:"member_id"`
}

// CheckIn marks a member's registration as attended and records a
// zero-amount visit transaction for the club's attendance audit.
func (h *AdminPaymentHandler) CheckIn(c echo.Context) error {
	eventID, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req checkinReq
	if err := c.Bind(&req); err != nil || req.MemberID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "member_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Events.GetByID(ctx, eventID); err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load event failed"})
	}

	if err := h.Registrations.MarkAttended(ctx, req.MemberID, eventID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no active registration"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "check-in failed"})
	}

	meta, _ := json.Marshal(map[string]interface{}{"type": model.TxnTypeVisit, "member_id": req.MemberID})
	metaStr := string(meta)
	memberID := req.MemberID
	if _, err := h.Payments.InsertTransaction(ctx, &model.PaymentTransaction{
		EventID:     eventID,
		MemberID:    &memberID,
		AmountCents: 0,
		Currency:    "nok",
		Status:      model.TxnStatusSucceeded,
		Metadata:    &metaStr,
	}); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "record visit failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"status": model.RegStatusAttended})
}
