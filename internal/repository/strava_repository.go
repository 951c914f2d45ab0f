package repository

import (
	"context"
	"database/sql"

	"github.com/runclubno/runclub-backend/internal/model"
)

// StravaRepo persists Strava account links and synced activities.
type StravaRepo struct {
	db *sql.DB
}

// NewStravaRepo constructs a StravaRepo given a DB handle.
func NewStravaRepo(db *sql.DB) *StravaRepo {
	return &StravaRepo{db: db}
}

// UpsertLink stores or replaces the member's Strava connection.
func (r *StravaRepo) UpsertLink(ctx context.Context, l *model.StravaLink) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO strava_links (member_id, athlete_id, access_token, refresh_token, expires_at)
		 VALUES (?,?,?,?,?)
		 ON DUPLICATE KEY UPDATE athlete_id=VALUES(athlete_id), access_token=VALUES(access_token),
		   refresh_token=VALUES(refresh_token), expires_at=VALUES(expires_at)`,
		l.MemberID, l.AthleteID, l.AccessToken, l.RefreshToken, l.ExpiresAt)
	return err
}

// GetLink fetches the member's Strava connection.
func (r *StravaRepo) GetLink(ctx context.Context, memberID uint64) (model.StravaLink, error) {
	var l model.StravaLink
	err := r.db.QueryRowContext(ctx,
		`SELECT id,member_id,athlete_id,access_token,refresh_token,expires_at,created_at,updated_at
		 FROM strava_links WHERE member_id=? LIMIT 1`, memberID).
		Scan(&l.ID, &l.MemberID, &l.AthleteID, &l.AccessToken, &l.RefreshToken,
			&l.ExpiresAt, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

// UpsertActivities inserts synced activities, skipping ones already
// stored for the member (unique on member_id + strava_activity_id).
// Returns the number of new rows.
func (r *StravaRepo) UpsertActivities(ctx context.Context, memberID uint64, acts []model.StravaActivity) (int, error) {
	inserted := 0
	for _, a := range acts {
		res, err := r.db.ExecContext(ctx,
			`INSERT IGNORE INTO strava_activities
			 (member_id, strava_activity_id, name, distance_meters, moving_time_sec, started_at)
			 VALUES (?,?,?,?,?,?)`,
			memberID, a.StravaActivityID, a.Name, a.DistanceMeters, a.MovingTimeSec, a.StartedAt)
		if err != nil {
			return inserted, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, err
		}
		inserted += int(n)
	}
	return inserted, nil
}

// ListActivities returns the member's synced activities, newest first.
func (r *StravaRepo) ListActivities(ctx context.Context, memberID uint64, limit int) ([]model.StravaActivity, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id,member_id,strava_activity_id,name,distance_meters,moving_time_sec,started_at,synced_at
		 FROM strava_activities WHERE member_id=? ORDER BY started_at DESC LIMIT ?`, memberID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.StravaActivity
	for rows.Next() {
		var a model.StravaActivity
		if err := rows.Scan(&a.ID, &a.MemberID, &a.StravaActivityID, &a.Name,
			&a.DistanceMeters, &a.MovingTimeSec, &a.StartedAt, &a.SyncedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
