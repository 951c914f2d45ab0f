package model

import "time"

// StravaLink connects a member to a Strava athlete.  Tokens are stored
// as provided by the OAuth flow; the API client uses the access token
// until it expires and does not refresh it.
//
// Fields:
//  ID           – primary key identifier.
//  MemberID     – owning member (unique).
//  AthleteID    – Strava athlete id.
//  AccessToken  – bearer token for the Strava API.
//  RefreshToken – stored for completeness, unused by the sync flow.
//  ExpiresAt    – access token expiry.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type StravaLink struct {
	ID           uint64    // strava_links.id
	MemberID     uint64    // strava_links.member_id
	AthleteID    int64     // strava_links.athlete_id
	AccessToken  string    // strava_links.access_token
	RefreshToken string    // strava_links.refresh_token
	ExpiresAt    time.Time // strava_links.expires_at
	CreatedAt    time.Time // strava_links.created_at
	UpdatedAt    time.Time // strava_links.updated_at
}

// StravaActivity is a synced run.  Activities are deduplicated on the
// Strava activity id per member.
//
// Fields:
//  ID               – primary key identifier.
//  MemberID         – owning member.
//  StravaActivityID – Strava's activity id (unique per member).
//  Name             – activity title.
//  DistanceMeters   – distance in meters.
//  MovingTimeSec    – moving time in seconds.
//  StartedAt        – activity start time (UTC).
//  SyncedAt         – when the row was synced.
type StravaActivity struct {
	ID               uint64    // strava_activities.id
	MemberID         uint64    // strava_activities.member_id
	StravaActivityID int64     // strava_activities.strava_activity_id
	Name             string    // strava_activities.name
	DistanceMeters   float64   // strava_activities.distance_meters
	MovingTimeSec    uint32    // strava_activities.moving_time_sec
	StartedAt        time.Time // strava_activities.started_at
	SyncedAt         time.Time // strava_activities.synced_at
}
