package model

import "time"

// Event represents a club run, training session or social event that
// members and guests can sign up for.  Price and date values arrive as
// free text from the legacy admin tooling and are normalized into typed
// columns on write; capacity is optional.  This struct corresponds to a
// row in the `events` table.
//
// Fields:
//  ID              – primary key identifier.
//  Slug            – unique URL-friendly identifier.
//  Title           – event title shown in listings.
//  Description     – optional long description.
//  Location        – optional meeting point.
//  StartsAt        – when the event starts (UTC).
//  PriceCents      – entry price in cents; 0 for free events.
//  IsFree          – true when no payment is required to register.
//  MaxParticipants – capacity cap; nil means unlimited.
//  Archived        – archived events are hidden from public listings.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Event struct {
	ID              uint64    // events.id
	Slug            string    // events.slug
	Title           string    // events.title
	Description     *string   // events.description (nullable)
	Location        *string   // events.location (nullable)
	StartsAt        time.Time // events.starts_at
	PriceCents      uint32    // events.price_cents
	IsFree          bool      // events.is_free
	MaxParticipants *uint32   // events.max_participants (nullable)
	Archived        bool      // events.archived
	CreatedAt       time.Time // events.created_at
	UpdatedAt       time.Time // events.updated_at
}
