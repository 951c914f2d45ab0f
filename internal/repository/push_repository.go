package repository

import (
	"context"
	"database/sql"

	"github.com/runclubno/runclub-backend/internal/model"
)

// PushRepo persists Web Push subscriptions.
type PushRepo struct {
	db *sql.DB
}

// NewPushRepo constructs a PushRepo given a DB handle.
func NewPushRepo(db *sql.DB) *PushRepo {
	return &PushRepo{db: db}
}

// Upsert stores a subscription, replacing the keys when the endpoint
// is already registered for the member.
func (r *PushRepo) Upsert(ctx context.Context, s *model.PushSubscription) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO push_subscriptions (member_id, endpoint, p256dh, auth) VALUES (?,?,?,?)
		 ON DUPLICATE KEY UPDATE p256dh=VALUES(p256dh), auth=VALUES(auth)`,
		s.MemberID, s.Endpoint, s.P256dh, s.Auth)
	return err
}

// DeleteByEndpoint removes a member's subscription for an endpoint.
func (r *PushRepo) DeleteByEndpoint(ctx context.Context, memberID uint64, endpoint string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM push_subscriptions WHERE member_id=? AND endpoint=?", memberID, endpoint)
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

// DeleteByID prunes a dead subscription (push service returned 404/410).
func (r *PushRepo) DeleteByID(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM push_subscriptions WHERE id=?", id)
	return err
}

// ListByMember returns all subscriptions of a member.
func (r *PushRepo) ListByMember(ctx context.Context, memberID uint64) ([]model.PushSubscription, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id,member_id,endpoint,p256dh,auth,created_at FROM push_subscriptions WHERE member_id=?", memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.PushSubscription
	for rows.Next() {
		var s model.PushSubscription
		if err := rows.Scan(&s.ID, &s.MemberID, &s.Endpoint, &s.P256dh, &s.Auth, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
