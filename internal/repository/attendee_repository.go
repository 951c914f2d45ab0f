package repository

import (
	"context"
	"database/sql"

	"github.com/runclubno/runclub-backend/internal/capacity"
	"github.com/runclubno/runclub-backend/internal/model"
)

// AttendeeRepo encapsulates database operations for guest attendees.
type AttendeeRepo struct {
	db *sql.DB
}

// NewAttendeeRepo constructs an AttendeeRepo given a DB handle.
func NewAttendeeRepo(db *sql.DB) *AttendeeRepo {
	return &AttendeeRepo{db: db}
}

const attendeeCols = "id,event_id,name,email,payment_status,role,stripe_session_id,notes,created_at,updated_at"

func scanAttendee(s interface{ Scan(...interface{}) error }) (model.Attendee, error) {
	var a model.Attendee
	err := s.Scan(&a.ID, &a.EventID, &a.Name, &a.Email, &a.PaymentStatus, &a.Role,
		&a.StripeSessionID, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// Create inserts a guest attendee and returns its ID.
func (r *AttendeeRepo) Create(ctx context.Context, a *model.Attendee) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO attendees (event_id, name, email, payment_status, role, notes) VALUES (?,?,?,?,?,?)",
		a.EventID, a.Name, a.Email, a.PaymentStatus, a.Role, a.Notes)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update rewrites the mutable columns of an attendee.
func (r *AttendeeRepo) Update(ctx context.Context, a *model.Attendee) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE attendees SET name=?, email=?, payment_status=?, role=?, notes=? WHERE id=?",
		a.Name, a.Email, a.PaymentStatus, a.Role, a.Notes, a.ID)
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

// GetByID fetches an attendee by id.
func (r *AttendeeRepo) GetByID(ctx context.Context, id uint64) (model.Attendee, error) {
	return scanAttendee(r.db.QueryRowContext(ctx,
		"SELECT "+attendeeCols+" FROM attendees WHERE id=? LIMIT 1", id))
}

// ListByEvent returns all attendees for an event, insertion order.
func (r *AttendeeRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Attendee, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+attendeeCols+" FROM attendees WHERE event_id=? ORDER BY id ASC", eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Attendee
	for rows.Next() {
		a, err := scanAttendee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CountableTx returns the capacity-relevant slices of all attendees for
// an event inside the caller's transaction.
func (r *AttendeeRepo) CountableTx(ctx context.Context, tx *sql.Tx, eventID uint64) ([]capacity.GuestAttendee, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT email, payment_status, role, notes FROM attendees WHERE event_id=?", eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCountableGuests(rows)
}

// Countable is the non-transactional variant for the availability
// endpoint.
func (r *AttendeeRepo) Countable(ctx context.Context, eventID uint64) ([]capacity.GuestAttendee, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT email, payment_status, role, notes FROM attendees WHERE event_id=?", eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCountableGuests(rows)
}

func collectCountableGuests(rows *sql.Rows) ([]capacity.GuestAttendee, error) {
	var out []capacity.GuestAttendee
	for rows.Next() {
		var g capacity.GuestAttendee
		if err := rows.Scan(&g.Email, &g.PaymentStatus, &g.Role, &g.Notes); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// SetCheckoutSession stores the checkout session id created for a
// guest payment link and flips the payment status to pending.
func (r *AttendeeRepo) SetCheckoutSession(ctx context.Context, id uint64, sessionID string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE attendees SET stripe_session_id=?, payment_status=? WHERE id=?",
		sessionID, model.PayStatusPending, id)
	return err
}

// MarkPaidBySession settles a guest payment when the checkout session
// completes. Returns sql.ErrNoRows when no attendee carries the session.
func (r *AttendeeRepo) MarkPaidBySession(ctx context.Context, sessionID string) (model.Attendee, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE attendees SET payment_status=? WHERE stripe_session_id=?",
		model.PayStatusPaid, sessionID)
	if err != nil {
		return model.Attendee{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Attendee{}, err
	}
	if n == 0 {
		return model.Attendee{}, sql.ErrNoRows
	}
	return scanAttendee(r.db.QueryRowContext(ctx,
		"SELECT "+attendeeCols+" FROM attendees WHERE stripe_session_id=? LIMIT 1", sessionID))
}

// Delete removes an attendee row.
func (r *AttendeeRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM attendees WHERE id=?", id)
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
