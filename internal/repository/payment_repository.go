package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/runclubno/runclub-backend/internal/model"
)

// PaymentRepo encapsulates database operations for payment
// transactions and stored webhook deliveries.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo constructs a PaymentRepo given a DB handle.
func NewPaymentRepo(db *sql.DB) *PaymentRepo {
	return &PaymentRepo{db: db}
}

const txnCols = "id,event_id,member_id,stripe_payment_intent_id,amount_cents,currency,status,metadata,created_at"

// InsertTransaction records a payment or check-in audit entry and
// returns its ID.
func (r *PaymentRepo) InsertTransaction(ctx context.Context, t *model.PaymentTransaction) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO payment_transactions (event_id, member_id, stripe_payment_intent_id, amount_cents, currency, status, metadata)
		 VALUES (?,?,?,?,?,?,?)`,
		t.EventID, t.MemberID, t.StripePaymentIntentID, t.AmountCents, t.Currency, t.Status, t.Metadata)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// SetStatusByIntent updates transaction status by payment intent id.
func (r *PaymentRepo) SetStatusByIntent(ctx context.Context, paymentIntentID, status string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE payment_transactions SET status=? WHERE stripe_payment_intent_id=?",
		status, paymentIntentID)
	return err
}

// ListByEvent returns all transactions for an event, newest first.
func (r *PaymentRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.PaymentTransaction, error) {
	return r.list(ctx, "SELECT "+txnCols+" FROM payment_transactions WHERE event_id=? ORDER BY created_at DESC", eventID)
}

// ListByMember returns all transactions for a member, newest first.
func (r *PaymentRepo) ListByMember(ctx context.Context, memberID uint64) ([]model.PaymentTransaction, error) {
	return r.list(ctx, "SELECT "+txnCols+" FROM payment_transactions WHERE member_id=? ORDER BY created_at DESC", memberID)
}

func (r *PaymentRepo) list(ctx context.Context, query string, arg uint64) ([]model.PaymentTransaction, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.PaymentTransaction
	for rows.Next() {
		var t model.PaymentTransaction
		if err := rows.Scan(&t.ID, &t.EventID, &t.MemberID, &t.StripePaymentIntentID,
			&t.AmountCents, &t.Currency, &t.Status, &t.Metadata, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// InsertWebhookEvent stores a webhook delivery keyed by the provider's
// event id. A duplicate id maps to ErrDuplicateWebhook so the handler
// can acknowledge replays without reprocessing.
func (r *PaymentRepo) InsertWebhookEvent(ctx context.Context, providerEventID, eventType, payload string) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO webhook_events (provider_event_id, event_type, payload) VALUES (?,?,?)",
		providerEventID, eventType, payload)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrDuplicateWebhook
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// MarkWebhookProcessed records the processing outcome of a stored
// delivery. processingErr is empty on success.
func (r *PaymentRepo) MarkWebhookProcessed(ctx context.Context, id uint64, processingErr string) error {
	var errText *string
	if processingErr != "" {
		errText = &processingErr
	}
	_, err := r.db.ExecContext(ctx,
		"UPDATE webhook_events SET processed_at=?, processing_error=? WHERE id=?",
		time.Now().UTC(), errText, id)
	return err
}
