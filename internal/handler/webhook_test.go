package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/runclubno/runclub-backend/internal/config"
	"github.com/runclubno/runclub-backend/internal/model"
	"github.com/runclubno/runclub-backend/internal/payments"
	"github.com/runclubno/runclub-backend/internal/repository"
)

const webhookTestSecret = "whsec_test"

func newWebhookHandler(t *testing.T) (*WebhookHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	h := NewWebhookHandler(config.Config{StripeWebhookSecret: webhookTestSecret},
		repository.NewEventRepo(db), repository.NewRegistrationRepo(db),
		repository.NewAttendeeRepo(db), repository.NewMemberRepo(db),
		repository.NewPaymentRepo(db))
	return h, mock
}

func stripeEventBody(t *testing.T, id, typ string, object any) []byte {
	t.Helper()
	raw, err := json.Marshal(object)
	if err != nil {
		t.Fatalf("marshal object: %v", err)
	}
	body, err := json.Marshal(map[string]any{
		"id":   id,
		"type": typ,
		"data": map[string]any{"object": json.RawMessage(raw)},
	})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return body
}

func postStripeEvent(t *testing.T, h *WebhookHandler, secret string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/stripe/webhook", bytes.NewReader(body))
	req.Header.Set("Stripe-Signature", payments.SignPayload(body, secret, time.Now()))
	rec := httptest.NewRecorder()
	if err := h.Stripe(echo.New().NewContext(req, rec)); err != nil {
		t.Fatalf("Stripe() returned %v", err)
	}
	return rec
}

func settledRegRow(sessionID string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "member_id", "event_id", "status", "payment_status", "role",
		"stripe_session_id", "stripe_payment_intent_id", "amount_paid_cents",
		"reference", "notes", "created_at", "updated_at",
	}).AddRow(7, 3, 11, model.RegStatusConfirmed, model.PayStatusPaid, model.RoleGuest,
		sessionID, "pi_1", 15000, "ref-abc", nil, now, now)
}

func settledAttendeeRow(sessionID string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "event_id", "name", "email", "payment_status", "role",
		"stripe_session_id", "notes", "created_at", "updated_at",
	}).AddRow(4, 11, "Kari Hansen", "kari@example.no", model.PayStatusPaid, model.RoleGuest,
		sessionID, nil, now, now)
}

func TestStripeWebhookRouting(t *testing.T) {
	session := payments.SessionObject{
		ID:            "cs_test_1",
		PaymentIntent: "pi_1",
		PaymentStatus: "paid",
		AmountTotal:   15000,
		Currency:      "nok",
	}

	t.Run("session completed settles member registration", func(t *testing.T) {
		h, mock := newWebhookHandler(t)
		mock.ExpectExec("INSERT INTO webhook_events").WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("UPDATE event_registrations").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("FROM event_registrations").WillReturnRows(settledRegRow(session.ID))
		mock.ExpectExec("INSERT INTO payment_transactions").WillReturnResult(sqlmock.NewResult(1, 1))
		// Confirmation fan-out stops at the member lookup.
		mock.ExpectQuery("FROM members").WillReturnError(sql.ErrNoRows)
		mock.ExpectExec("UPDATE webhook_events").WillReturnResult(sqlmock.NewResult(0, 1))

		rec := postStripeEvent(t, h, webhookTestSecret,
			stripeEventBody(t, "evt_1", "checkout.session.completed", session))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body)
		}
		if !strings.Contains(rec.Body.String(), "received") {
			t.Fatalf("body = %s, want received ack", rec.Body)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("unknown session falls back to guest attendee", func(t *testing.T) {
		h, mock := newWebhookHandler(t)
		mock.ExpectExec("INSERT INTO webhook_events").WillReturnResult(sqlmock.NewResult(2, 1))
		mock.ExpectExec("UPDATE event_registrations").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("FROM event_registrations").WillReturnError(sql.ErrNoRows)
		mock.ExpectExec("UPDATE attendees").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("FROM attendees").WillReturnRows(settledAttendeeRow(session.ID))
		mock.ExpectExec("INSERT INTO payment_transactions").WillReturnResult(sqlmock.NewResult(2, 1))
		mock.ExpectExec("UPDATE webhook_events").WillReturnResult(sqlmock.NewResult(0, 1))

		rec := postStripeEvent(t, h, webhookTestSecret,
			stripeEventBody(t, "evt_2", "checkout.session.completed", session))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("replayed event id acknowledged as duplicate", func(t *testing.T) {
		h, mock := newWebhookHandler(t)
		mock.ExpectExec("INSERT INTO webhook_events").
			WillReturnError(&mysqlDupErr{})

		rec := postStripeEvent(t, h, webhookTestSecret,
			stripeEventBody(t, "evt_1", "checkout.session.completed", session))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body)
		}
		if !strings.Contains(rec.Body.String(), "duplicate") {
			t.Fatalf("body = %s, want duplicate ack", rec.Body)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("payment intent succeeded updates transaction", func(t *testing.T) {
		h, mock := newWebhookHandler(t)
		mock.ExpectExec("INSERT INTO webhook_events").WillReturnResult(sqlmock.NewResult(3, 1))
		mock.ExpectExec("UPDATE payment_transactions").
			WithArgs(model.TxnStatusSucceeded, "pi_5").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE webhook_events").WillReturnResult(sqlmock.NewResult(0, 1))

		rec := postStripeEvent(t, h, webhookTestSecret,
			stripeEventBody(t, "evt_3", "payment_intent.succeeded", payments.IntentObject{ID: "pi_5"}))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("payment failure flips registration and transaction", func(t *testing.T) {
		h, mock := newWebhookHandler(t)
		mock.ExpectExec("INSERT INTO webhook_events").WillReturnResult(sqlmock.NewResult(4, 1))
		mock.ExpectExec("UPDATE event_registrations").
			WithArgs(model.PayStatusFailed, "pi_7").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE payment_transactions").
			WithArgs(model.TxnStatusFailed, "pi_7").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE webhook_events").WillReturnResult(sqlmock.NewResult(0, 1))

		rec := postStripeEvent(t, h, webhookTestSecret,
			stripeEventBody(t, "evt_4", "payment_intent.payment_failed", payments.IntentObject{ID: "pi_7"}))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("charge refunded flips both to refunded", func(t *testing.T) {
		h, mock := newWebhookHandler(t)
		mock.ExpectExec("INSERT INTO webhook_events").WillReturnResult(sqlmock.NewResult(5, 1))
		mock.ExpectExec("UPDATE event_registrations").
			WithArgs(model.PayStatusRefunded, "pi_9").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE payment_transactions").
			WithArgs(model.TxnStatusRefunded, "pi_9").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE webhook_events").WillReturnResult(sqlmock.NewResult(0, 1))

		rec := postStripeEvent(t, h, webhookTestSecret,
			stripeEventBody(t, "evt_5", "charge.refunded",
				payments.ChargeObject{ID: "ch_1", PaymentIntent: "pi_9", Refunded: true}))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("unhandled event type stored and acknowledged", func(t *testing.T) {
		h, mock := newWebhookHandler(t)
		mock.ExpectExec("INSERT INTO webhook_events").WillReturnResult(sqlmock.NewResult(6, 1))
		mock.ExpectExec("UPDATE webhook_events").WillReturnResult(sqlmock.NewResult(0, 1))

		rec := postStripeEvent(t, h, webhookTestSecret,
			stripeEventBody(t, "evt_6", "customer.created", map[string]string{"id": "cus_1"}))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("out of range amount fails processing", func(t *testing.T) {
		bad := session
		bad.AmountTotal = -15000
		h, mock := newWebhookHandler(t)
		mock.ExpectExec("INSERT INTO webhook_events").WillReturnResult(sqlmock.NewResult(7, 1))
		mock.ExpectExec("UPDATE webhook_events").WillReturnResult(sqlmock.NewResult(0, 1))

		rec := postStripeEvent(t, h, webhookTestSecret,
			stripeEventBody(t, "evt_7", "checkout.session.completed", bad))
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500 for negative amount_total; body: %s", rec.Code, rec.Body)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("bad signature rejected before storage", func(t *testing.T) {
		h, mock := newWebhookHandler(t)
		rec := postStripeEvent(t, h, "whsec_wrong",
			stripeEventBody(t, "evt_8", "checkout.session.completed", session))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400 for bad signature", rec.Code)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatal(err)
		}
	})
}

// mysqlDupErr mimics the driver's duplicate-key error text.
type mysqlDupErr struct{}

func (*mysqlDupErr) Error() string {
	return "Error 1062 (23000): Duplicate entry 'evt_1' for key 'webhook_events.provider_event_id'"
}
