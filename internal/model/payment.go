package model

import "time"

// Transaction statuses mirror the Stripe payment lifecycle.
const (
	TxnStatusSucceeded = "succeeded"
	TxnStatusFailed    = "failed"
	TxnStatusRefunded  = "refunded"
	TxnStatusPending   = "pending"
)

// TxnTypeVisit marks a transaction row that records an admin check-in
// rather than a payment.  It is stored in the metadata JSON under
// "type", matching how the club previously audited visits.
const TxnTypeVisit = "visit"

// PaymentTransaction records a Stripe payment (or a check-in audit
// entry) tied to an event and optionally a member.  This struct
// corresponds to a row in the `payment_transactions` table.
//
// Fields:
//  ID                    – primary key identifier.
//  EventID               – event the payment relates to.
//  MemberID              – paying member; nil for guest payments.
//  StripePaymentIntentID – payment intent id; nil for audit entries.
//  AmountCents           – amount in cents (0 for audit entries).
//  Currency              – ISO currency code, e.g. "nok".
//  Status                – succeeded, failed, refunded or pending.
//  Metadata              – raw JSON metadata; audit entries carry
//                          {"type":"visit",...}.
//  CreatedAt             – creation timestamp.
type PaymentTransaction struct {
	ID                    uint64    // payment_transactions.id
	EventID               uint64    // payment_transactions.event_id
	MemberID              *uint64   // payment_transactions.member_id (nullable)
	StripePaymentIntentID *string   // payment_transactions.stripe_payment_intent_id (nullable)
	AmountCents           uint32    // payment_transactions.amount_cents
	Currency              string    // payment_transactions.currency
	Status                string    // payment_transactions.status
	Metadata              *string   // payment_transactions.metadata (nullable JSON)
	CreatedAt             time.Time // payment_transactions.created_at
}

// WebhookEvent stores every received Stripe webhook payload keyed by
// the provider's event id so replayed deliveries are processed exactly
// once.  This struct corresponds to a row in the `webhook_events`
// table.
//
// Fields:
//  ID              – primary key identifier.
//  ProviderEventID – Stripe event id (unique).
//  EventType       – e.g. "checkout.session.completed".
//  Payload         – raw JSON body as received.
//  ProcessedAt     – when processing finished; nil while pending.
//  ProcessingError – error text when processing failed.
//  CreatedAt       – when the delivery was received.
type WebhookEvent struct {
	ID              uint64     // webhook_events.id
	ProviderEventID string     // webhook_events.provider_event_id
	EventType       string     // webhook_events.event_type
	Payload         string     // webhook_events.payload
	ProcessedAt     *time.Time // webhook_events.processed_at (nullable)
	ProcessingError *string    // webhook_events.processing_error (nullable)
	CreatedAt       time.Time  // webhook_events.created_at
}
