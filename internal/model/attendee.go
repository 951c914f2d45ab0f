package model

import "time"

// Attendee is a guest participant without a member account, added by an
// admin (walk-ups, plus-ones, visiting runners).  Guests may share an
// email with a member, in which case capacity accounting counts the
// person only once.  This struct corresponds to a row in the
// `attendees` table.
//
// Fields:
//  ID            – primary key identifier.
//  EventID       – event the guest is attending.
//  Name          – guest name as entered by the admin.
//  Email         – optional contact email.
//  PaymentStatus – paid, pending, failed or refunded; nil when unknown.
//  Role          – guest or staff.
//  StripeSessionID – checkout session id when an admin sends the guest
//                  a payment link.
//  Notes         – free-text notes (legacy staff sentinel lives here).
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Attendee struct {
	ID              uint64    // attendees.id
	EventID         uint64    // attendees.event_id
	Name            string    // attendees.name
	Email           *string   // attendees.email (nullable)
	PaymentStatus   *string   // attendees.payment_status (nullable)
	Role            string    // attendees.role
	StripeSessionID *string   // attendees.stripe_session_id (nullable)
	Notes           *string   // attendees.notes (nullable)
	CreatedAt       time.Time // attendees.created_at
	UpdatedAt       time.Time // attendees.updated_at
}
