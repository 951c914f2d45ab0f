package model

import "time"

// Registration statuses.  `attended` is set by the admin check-in flow.
const (
	RegStatusRegistered = "registered"
	RegStatusConfirmed  = "confirmed"
	RegStatusCancelled  = "cancelled"
	RegStatusAttended   = "attended"
)

// Payment statuses shared by registrations, attendees and transactions.
const (
	PayStatusPaid     = "paid"
	PayStatusPending  = "pending"
	PayStatusFailed   = "failed"
	PayStatusRefunded = "refunded"
)

// Participant roles.  Staff do not count toward event capacity.  The
// legacy system marked staff with a "staff" substring in the notes
// field; rows imported from it may have an empty role, in which case
// the capacity package falls back to the notes sentinel.
const (
	RoleGuest = "guest"
	RoleStaff = "staff"
)

// Registration records a member's signup for an event.  Paid events
// carry Stripe checkout/payment references; free events are confirmed
// immediately.  This struct corresponds to a row in the
// `event_registrations` table.
//
// Fields:
//  ID                    – primary key identifier.
//  MemberID              – member who registered.
//  EventID               – event being registered for.
//  Status                – registered, confirmed, cancelled or attended.
//  PaymentStatus         – paid, pending, failed or refunded; nil when
//                          no payment is involved.
//  Role                  – guest or staff; staff never count toward capacity.
//  StripeSessionID       – checkout session id, if a session was created.
//  StripePaymentIntentID – payment intent id once payment completes.
//  AmountPaidCents       – amount actually paid, in cents.
//  Reference             – opaque reference returned to the client.
//  Notes                 – free-text notes (legacy staff sentinel lives here).
//  CreatedAt             – creation timestamp.
//  UpdatedAt             – last update timestamp.
type Registration struct {
	ID                    uint64    // event_registrations.id
	MemberID              uint64    // event_registrations.member_id
	EventID               uint64    // event_registrations.event_id
	Status                string    // event_registrations.status
	PaymentStatus         *string   // event_registrations.payment_status (nullable)
	Role                  string    // event_registrations.role
	StripeSessionID       *string   // event_registrations.stripe_session_id (nullable)
	StripePaymentIntentID *string   // event_registrations.stripe_payment_intent_id (nullable)
	AmountPaidCents       uint32    // event_registrations.amount_paid_cents
	Reference             string    // event_registrations.reference
	Notes                 *string   // event_registrations.notes (nullable)
	CreatedAt             time.Time // event_registrations.created_at
	UpdatedAt             time.Time // event_registrations.updated_at
}
