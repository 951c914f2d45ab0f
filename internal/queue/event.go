// Package queue defines message payloads exchanged over the message broker.
package queue

// RegistrationConfirmedEvent is published when a registration becomes
// confirmed, either immediately (free events) or when the checkout
// session completes. It carries enough information for downstream
// consumers to notify the member without querying the primary database.
type RegistrationConfirmedEvent struct {
	RegistrationID uint64 `json:"registration_id"`
	MemberID       uint64 `json:"member_id"`
	MemberName     string `json:"member_name"`
	MemberEmail    string `json:"member_email"`
	EventID        uint64 `json:"event_id"`
	EventSlug      string `json:"event_slug"`
	EventTitle     string `json:"event_title"`
	StartsAt       string `json:"starts_at"`
	AmountCents    uint32 `json:"amount_cents"`
	ConfirmedAt    string `json:"confirmed_at"`
}
