package repository

import (
	"context"
	"database/sql"

	"github.com/runclubno/runclub-backend/internal/capacity"
	"github.com/runclubno/runclub-backend/internal/model"
)

// RegistrationRepo encapsulates database operations for member event
// registrations.
type RegistrationRepo struct {
	db *sql.DB
}

// NewRegistrationRepo constructs a RegistrationRepo given a DB handle.
func NewRegistrationRepo(db *sql.DB) *RegistrationRepo {
	return &RegistrationRepo{db: db}
}

const regCols = `r.id, r.member_id, r.event_id, r.status, r.payment_status, r.role,
	r.stripe_session_id, r.stripe_payment_intent_id, r.amount_paid_cents, r.reference, r.notes,
	r.created_at, r.updated_at`

func scanReg(s interface{ Scan(...interface{}) error }) (model.Registration, error) {
	var reg model.Registration
	err := s.Scan(&reg.ID, &reg.MemberID, &reg.EventID, &reg.Status, &reg.PaymentStatus, &reg.Role,
		&reg.StripeSessionID, &reg.StripePaymentIntentID, &reg.AmountPaidCents, &reg.Reference, &reg.Notes,
		&reg.CreatedAt, &reg.UpdatedAt)
	return reg, err
}

// CreateTx inserts a registration inside the caller's transaction.
// Callers must hold the event row lock (EventRepo.GetForUpdateTx) so
// the capacity recount and this insert are serialized per event.
func (r *RegistrationRepo) CreateTx(ctx context.Context, tx *sql.Tx, reg *model.Registration) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO event_registrations
		 (member_id, event_id, status, payment_status, role, stripe_session_id, amount_paid_cents, reference, notes)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		reg.MemberID, reg.EventID, reg.Status, reg.PaymentStatus, reg.Role,
		reg.StripeSessionID, reg.AmountPaidCents, reg.Reference, reg.Notes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	reg.ID = uint64(id)
	return nil
}

// ActiveByMemberAndEventTx reports whether the member already holds a
// non-cancelled registration for the event.
func (r *RegistrationRepo) ActiveByMemberAndEventTx(ctx context.Context, tx *sql.Tx, memberID, eventID uint64) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM event_registrations WHERE member_id=? AND event_id=? AND status <> ?",
		memberID, eventID, model.RegStatusCancelled).Scan(&n)
	return n > 0, err
}

// CountableTx returns the capacity-relevant slices of all registrations
// for an event, joined with the member email, inside the caller's
// transaction. This feeds capacity.Summarize during registration.
func (r *RegistrationRepo) CountableTx(ctx context.Context, tx *sql.Tx, eventID uint64) ([]capacity.MemberRegistration, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT m.email, r.status, r.payment_status, r.role, r.notes
		 FROM event_registrations r JOIN members m ON m.id = r.member_id
		 WHERE r.event_id=?`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCountableRegs(rows)
}

// Countable is the non-transactional variant used by the public
// availability endpoint.
func (r *RegistrationRepo) Countable(ctx context.Context, eventID uint64) ([]capacity.MemberRegistration, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.email, r.status, r.payment_status, r.role, r.notes
		 FROM event_registrations r JOIN members m ON m.id = r.member_id
		 WHERE r.event_id=?`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCountableRegs(rows)
}

func collectCountableRegs(rows *sql.Rows) ([]capacity.MemberRegistration, error) {
	var out []capacity.MemberRegistration
	for rows.Next() {
		var c capacity.MemberRegistration
		if err := rows.Scan(&c.Email, &c.Status, &c.PaymentStatus, &c.Role, &c.Notes); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByMemberAndEvent fetches the member's latest registration for an
// event, cancelled or not.
func (r *RegistrationRepo) GetByMemberAndEvent(ctx context.Context, memberID, eventID uint64) (model.Registration, error) {
	return scanReg(r.db.QueryRowContext(ctx,
		"SELECT "+regCols+" FROM event_registrations r WHERE r.member_id=? AND r.event_id=? ORDER BY r.id DESC LIMIT 1",
		memberID, eventID))
}

// GetByReference fetches a registration by its opaque reference.
func (r *RegistrationRepo) GetByReference(ctx context.Context, ref string) (model.Registration, error) {
	return scanReg(r.db.QueryRowContext(ctx,
		"SELECT "+regCols+" FROM event_registrations r WHERE r.reference=? LIMIT 1", ref))
}

// Cancel marks the member's active registration for an event as
// cancelled and returns the updated row. sql.ErrNoRows means there was
// nothing to cancel.
func (r *RegistrationRepo) Cancel(ctx context.Context, memberID, eventID uint64) (model.Registration, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE event_registrations SET status=? WHERE member_id=? AND event_id=? AND status <> ?",
		model.RegStatusCancelled, memberID, eventID, model.RegStatusCancelled)
	if err != nil {
		return model.Registration{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Registration{}, err
	}
	if n == 0 {
		return model.Registration{}, sql.ErrNoRows
	}
	return r.GetByMemberAndEvent(ctx, memberID, eventID)
}

// RegistrationDetail is a registration joined with its event, for the
// member-facing listing.
type RegistrationDetail struct {
	Registration model.Registration `json:"registration"`
	EventSlug    string             `json:"event_slug"`
	EventTitle   string             `json:"event_title"`
	EventStarts  string             `json:"event_starts_at"`
}

// ListByMember returns all of a member's registrations with event
// context, newest first.
func (r *RegistrationRepo) ListByMember(ctx context.Context, memberID uint64) ([]RegistrationDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+regCols+`, e.slug, e.title, e.starts_at
		 FROM event_registrations r JOIN events e ON e.id = r.event_id
		 WHERE r.member_id=? ORDER BY r.created_at DESC`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RegistrationDetail
	for rows.Next() {
		var d RegistrationDetail
		var reg model.Registration
		if err := rows.Scan(&reg.ID, &reg.MemberID, &reg.EventID, &reg.Status, &reg.PaymentStatus, &reg.Role,
			&reg.StripeSessionID, &reg.StripePaymentIntentID, &reg.AmountPaidCents, &reg.Reference, &reg.Notes,
			&reg.CreatedAt, &reg.UpdatedAt, &d.EventSlug, &d.EventTitle, &d.EventStarts); err != nil {
			return nil, err
		}
		d.Registration = reg
		out = append(out, d)
	}
	return out, rows.Err()
}

// EventRegistrationRow is a registration joined with member identity,
// for admin listings, CSV export and reconciliation.
type EventRegistrationRow struct {
	Registration model.Registration `json:"registration"`
	MemberName   string             `json:"member_name"`
	MemberEmail  string             `json:"member_email"`
}

// ListByEvent returns all registrations for an event with member
// identity attached.
func (r *RegistrationRepo) ListByEvent(ctx context.Context, eventID uint64) ([]EventRegistrationRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+regCols+`, m.full_name, m.email
		 FROM event_registrations r JOIN members m ON m.id = r.member_id
		 WHERE r.event_id=? ORDER BY r.created_at ASC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []EventRegistrationRow
	for rows.Next() {
		var row EventRegistrationRow
		var reg model.Registration
		if err := rows.Scan(&reg.ID, &reg.MemberID, &reg.EventID, &reg.Status, &reg.PaymentStatus, &reg.Role,
			&reg.StripeSessionID, &reg.StripePaymentIntentID, &reg.AmountPaidCents, &reg.Reference, &reg.Notes,
			&reg.CreatedAt, &reg.UpdatedAt, &row.MemberName, &row.MemberEmail); err != nil {
			return nil, err
		}
		row.Registration = reg
		out = append(out, row)
	}
	return out, rows.Err()
}

// SetCheckoutSession stores the checkout session id created for a paid
// registration.
func (r *RegistrationRepo) SetCheckoutSession(ctx context.Context, id uint64, sessionID string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE event_registrations SET stripe_session_id=? WHERE id=?", sessionID, id)
	return err
}

// MarkPaidBySession confirms the registration attached to a checkout
// session: status confirmed, payment paid, intent and amount recorded.
// The update is an idempotent assignment, so webhook replays are
// harmless even before the dedup check.
func (r *RegistrationRepo) MarkPaidBySession(ctx context.Context, sessionID, paymentIntentID string, amountCents uint32) (model.Registration, error) {
	_, err := r.db.ExecContext(ctx,
		`UPDATE event_registrations
		 SET status=?, payment_status=?, stripe_payment_intent_id=?, amount_paid_cents=?
		 WHERE stripe_session_id=?`,
		model.RegStatusConfirmed, model.PayStatusPaid, paymentIntentID, amountCents, sessionID)
	if err != nil {
		return model.Registration{}, err
	}
	return scanReg(r.db.QueryRowContext(ctx,
		"SELECT "+regCols+" FROM event_registrations r WHERE r.stripe_session_id=? LIMIT 1", sessionID))
}

// SetPaymentStatusByIntent updates payment status by payment intent id,
// used for payment_intent.payment_failed and charge.refunded events.
func (r *RegistrationRepo) SetPaymentStatusByIntent(ctx context.Context, paymentIntentID, status string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE event_registrations SET payment_status=? WHERE stripe_payment_intent_id=?",
		status, paymentIntentID)
	return err
}

// MarkAttended records a check-in for the member's registration.
func (r *RegistrationRepo) MarkAttended(ctx context.Context, memberID, eventID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE event_registrations SET status=? WHERE member_id=? AND event_id=? AND status <> ?",
		model.RegStatusAttended, memberID, eventID, model.RegStatusCancelled)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteByID removes a registration row outright. Only the
// reconciliation flow uses this.
func (r *RegistrationRepo) DeleteByID(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM event_registrations WHERE id=?", id)
	return err
}
