package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/runclubno/runclub-backend/internal/model"
)

// EventRepo encapsulates database operations for events.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo constructs an EventRepo given a DB handle.
func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

// DB exposes the underlying handle so handlers can open transactions
// that span events and registrations.
func (r *EventRepo) DB() *sql.DB { return r.db }

var ErrSlugExists = errors.New("event slug already exists")

const eventCols = "id,slug,title,description,location,starts_at,price_cents,is_free,max_participants,archived,created_at,updated_at"

func scanEvent(s interface{ Scan(...interface{}) error }) (model.Event, error) {
	var e model.Event
	err := s.Scan(&e.ID, &e.Slug, &e.Title, &e.Description, &e.Location, &e.StartsAt,
		&e.PriceCents, &e.IsFree, &e.MaxParticipants, &e.Archived, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

// Create inserts an event and returns its ID.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO events (slug, title, description, location, starts_at, price_cents, is_free, max_participants, archived)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		e.Slug, e.Title, e.Description, e.Location, e.StartsAt, e.PriceCents, e.IsFree, e.MaxParticipants, e.Archived)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrSlugExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update rewrites the mutable columns of an event.
func (r *EventRepo) Update(ctx context.Context, e *model.Event) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE events SET title=?, description=?, location=?, starts_at=?, price_cents=?, is_free=?, max_participants=?, archived=?
		 WHERE id=?`,
		e.Title, e.Description, e.Location, e.StartsAt, e.PriceCents, e.IsFree, e.MaxParticipants, e.Archived, e.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEventNotFound
	}
	return nil
}

// GetBySlug fetches an event by its slug.
func (r *EventRepo) GetBySlug(ctx context.Context, slug string) (model.Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx,
		"SELECT "+eventCols+" FROM events WHERE slug=? LIMIT 1", slug))
	if err == sql.ErrNoRows {
		return e, ErrEventNotFound
	}
	return e, err
}

// GetByID fetches an event by id.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (model.Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx,
		"SELECT "+eventCols+" FROM events WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return e, ErrEventNotFound
	}
	return e, err
}

// GetForUpdateTx locks the event row for the duration of the
// transaction. The registration flow relies on this lock to serialize
// concurrent capacity checks against the same event.
func (r *EventRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Event, error) {
	e, err := scanEvent(tx.QueryRowContext(ctx,
		"SELECT "+eventCols+" FROM events WHERE id=? FOR UPDATE", id))
	if err == sql.ErrNoRows {
		return e, ErrEventNotFound
	}
	return e, err
}

// ListPublic returns upcoming non-archived events, soonest first.
func (r *EventRepo) ListPublic(ctx context.Context) ([]model.Event, error) {
	return r.list(ctx, "SELECT "+eventCols+" FROM events WHERE archived=0 ORDER BY starts_at ASC")
}

// ListAll returns every event including archived ones, for admins.
func (r *EventRepo) ListAll(ctx context.Context) ([]model.Event, error) {
	return r.list(ctx, "SELECT "+eventCols+" FROM events ORDER BY starts_at DESC")
}

func (r *EventRepo) list(ctx context.Context, query string) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SetArchived flips the archived flag.
func (r *EventRepo) SetArchived(ctx context.Context, id uint64, archived bool) error {
	res, err := r.db.ExecContext(ctx, "UPDATE events SET archived=? WHERE id=?", archived, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEventNotFound
	}
	return nil
}
