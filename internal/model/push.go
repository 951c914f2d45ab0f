package model

import "time"

// PushSubscription stores a browser Web Push subscription for a
// member.  The endpoint plus the p256dh/auth keys are everything the
// VAPID sender needs.  This struct corresponds to a row in the
// `push_subscriptions` table.
//
// Fields:
//  ID        – primary key identifier.
//  MemberID  – owning member.
//  Endpoint  – push service URL (unique per member).
//  P256dh    – client public key.
//  Auth      – client auth secret.
//  CreatedAt – creation timestamp.
type PushSubscription struct {
	ID        uint64    // push_subscriptions.id
	MemberID  uint64    // push_subscriptions.member_id
	Endpoint  string    // push_subscriptions.endpoint
	P256dh    string    // push_subscriptions.p256dh
	Auth      string    // push_subscriptions.auth
	CreatedAt time.Time // push_subscriptions.created_at
}
