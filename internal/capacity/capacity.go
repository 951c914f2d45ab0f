// Package capacity centralizes event capacity accounting.  The legacy
// system recomputed "spots remaining" with slight variations in every
// endpoint; this package is the single implementation all handlers and
// the registration transaction use.
package capacity

import (
	"strings"

	"github.com/runclubno/runclub-backend/internal/model"
)

// MemberRegistration is the slice of a registration row the accounting
// needs, joined with the member's email for guest deduplication.
type MemberRegistration struct {
	Email         string
	Status        string
	PaymentStatus *string
	Role          string
	Notes         *string
}

// GuestAttendee is the slice of an attendee row the accounting needs.
type GuestAttendee struct {
	Email         *string
	PaymentStatus *string
	Role          string
	Notes         *string
}

// Summary is the availability result for one event.  SpotsRemaining is
// nil when the event has no capacity cap.
type Summary struct {
	MaxParticipants *uint32 `json:"max_participants"`
	TotalRegistered int     `json:"total_registered"`
	SpotsRemaining  *int    `json:"spots_remaining"`
	IsFull          bool    `json:"is_full"`
}

// IsStaff reports whether a participant is staff and therefore excluded
// from capacity.  The typed role column wins when set; rows imported
// from the legacy system have an empty role and fall back to the old
// "staff" substring sentinel in the notes field.
func IsStaff(role string, notes *string) bool {
	switch role {
	case model.RoleStaff:
		return true
	case model.RoleGuest:
		return false
	}
	if notes == nil {
		return false
	}
	return strings.Contains(strings.ToLower(*notes), "staff")
}

// countsToward reports whether a row with the given status and payment
// status occupies a capacity spot.  Paid events require a completed
// payment; free events also count pending (and legacy null) rows since
// no payment will ever arrive for them.
func countsToward(status string, pay *string, isFree bool) bool {
	if status != model.RegStatusRegistered && status != model.RegStatusConfirmed {
		return false
	}
	if pay == nil {
		return isFree
	}
	switch *pay {
	case model.PayStatusPaid:
		return true
	case model.PayStatusPending:
		return isFree
	}
	return false
}

// holdsSpot is the admission-time counting rule: a registration keeps
// its spot from the moment it is inserted until it is cancelled or its
// payment fails or is refunded.  Unlike countsToward, a pending payment
// on a paid event still occupies the spot, otherwise the window between
// checkout creation and the webhook would admit more registrants than
// the cap allows.
func holdsSpot(status string, pay *string) bool {
	if status != model.RegStatusRegistered && status != model.RegStatusConfirmed {
		return false
	}
	if pay == nil {
		return true
	}
	switch *pay {
	case model.PayStatusFailed, model.PayStatusRefunded:
		return false
	}
	return true
}

// Summarize computes the availability summary for an event from its
// registrations and guest attendees:
//
//  1. staff rows are dropped,
//  2. rows without a counting status/payment state are dropped,
//  3. guests whose email case-insensitively matches a counted member's
//     email are dropped (one person, one spot),
//  4. the remainder is compared against max_participants.
//
// On paid events only settled payments count; this is the public
// availability shown to browsers.
func Summarize(ev model.Event, regs []MemberRegistration, guests []GuestAttendee) Summary {
	return summarize(ev, regs, guests, func(status string, pay *string) bool {
		return countsToward(status, pay, ev.IsFree)
	})
}

// SummarizeAdmission computes the summary the registration transaction
// checks before inserting a new row.  It applies the holdsSpot rule, so
// pending checkouts on paid events occupy their spots.
func SummarizeAdmission(ev model.Event, regs []MemberRegistration, guests []GuestAttendee) Summary {
	return summarize(ev, regs, guests, holdsSpot)
}

func summarize(ev model.Event, regs []MemberRegistration, guests []GuestAttendee, counts func(string, *string) bool) Summary {
	memberEmails := make(map[string]struct{}, len(regs))
	members := 0
	for _, r := range regs {
		if IsStaff(r.Role, r.Notes) {
			continue
		}
		if !counts(r.Status, r.PaymentStatus) {
			continue
		}
		members++
		memberEmails[strings.ToLower(strings.TrimSpace(r.Email))] = struct{}{}
	}

	unique := 0
	for _, g := range guests {
		if IsStaff(g.Role, g.Notes) {
			continue
		}
		// Guests have no registration status; treat them as registered.
		if !counts(model.RegStatusRegistered, g.PaymentStatus) {
			continue
		}
		if g.Email != nil {
			if _, dup := memberEmails[strings.ToLower(strings.TrimSpace(*g.Email))]; dup {
				continue
			}
		}
		unique++
	}

	total := members + unique
	s := Summary{MaxParticipants: ev.MaxParticipants, TotalRegistered: total}
	if ev.MaxParticipants == nil {
		return s
	}
	remaining := int(*ev.MaxParticipants) - total
	if remaining < 0 {
		remaining = 0
	}
	s.SpotsRemaining = &remaining
	s.IsFull = total >= int(*ev.MaxParticipants)
	return s
}
