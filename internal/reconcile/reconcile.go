// Package reconcile detects guest attendee rows that duplicate a
// member registration or another guest row, and decides which row
// survives a merge.  Matching is heuristic (exact email, fuzzy name)
// and only ever runs when an admin asks for it.
package reconcile

import (
	"strings"
	"time"
)

// Confidence labels attached to matches.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
)

// RegisteredMember is a counted member registration for an event.
type RegisteredMember struct {
	RegistrationID uint64
	MemberID       uint64
	FullName       string
	Email          string
}

// Guest is an attendee row as seen by the reconciler.
type Guest struct {
	AttendeeID    uint64
	Name          string
	Email         *string
	PaymentStatus *string
	Notes         *string
	CreatedAt     time.Time
}

// Match pairs a guest row with the member registration it duplicates.
type Match struct {
	AttendeeID     uint64 `json:"attendee_id"`
	RegistrationID uint64 `json:"registration_id"`
	MemberID       uint64 `json:"member_id"`
	Confidence     string `json:"confidence"`
	Reason         string `json:"reason"`
}

// GuestPair pairs two guest rows that look like the same person.
type GuestPair struct {
	KeepID     uint64 `json:"keep_id"`
	DropID     uint64 `json:"drop_id"`
	Confidence string `json:"confidence"`
	Reason     string `json:"reason"`
}

func normEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// normName lower-cases, trims and collapses inner whitespace.
func normName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// namesAlike reports a fuzzy name match: one normalized name contains
// the other, or the two share at least two name tokens.
func namesAlike(a, b string) bool {
	na, nb := normName(a), normName(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb || strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}
	tokens := make(map[string]struct{})
	for _, t := range strings.Fields(na) {
		tokens[t] = struct{}{}
	}
	shared := 0
	for _, t := range strings.Fields(nb) {
		if _, ok := tokens[t]; ok {
			shared++
		}
	}
	return shared >= 2
}

// FindDuplicates returns guests that appear to duplicate a member
// registration.  Exact email matches are high confidence; fuzzy name
// matches are medium.  A guest matches at most one registration, with
// email taking priority over name.
func FindDuplicates(regs []RegisteredMember, guests []Guest) []Match {
	byEmail := make(map[string]RegisteredMember, len(regs))
	for _, r := range regs {
		if e := normEmail(r.Email); e != "" {
			byEmail[e] = r
		}
	}

	var matches []Match
	for _, g := range guests {
		if g.Email != nil {
			if r, ok := byEmail[normEmail(*g.Email)]; ok {
				matches = append(matches, Match{
					AttendeeID:     g.AttendeeID,
					RegistrationID: r.RegistrationID,
					MemberID:       r.MemberID,
					Confidence:     ConfidenceHigh,
					Reason:         "email match",
				})
				continue
			}
		}
		for _, r := range regs {
			if namesAlike(g.Name, r.FullName) {
				matches = append(matches, Match{
					AttendeeID:     g.AttendeeID,
					RegistrationID: r.RegistrationID,
					MemberID:       r.MemberID,
					Confidence:     ConfidenceMedium,
					Reason:         "name match",
				})
				break
			}
		}
	}
	return matches
}

// FindGuestDuplicates returns pairs of guest rows that look like the
// same person (same email, or fuzzy-matching names).  The survivor of
// each pair is chosen by PickSurvivor.
func FindGuestDuplicates(guests []Guest) []GuestPair {
	var pairs []GuestPair
	for i := 0; i < len(guests); i++ {
		for j := i + 1; j < len(guests); j++ {
			a, b := guests[i], guests[j]
			var conf, reason string
			switch {
			case a.Email != nil && b.Email != nil && normEmail(*a.Email) == normEmail(*b.Email) && normEmail(*a.Email) != "":
				conf, reason = ConfidenceHigh, "email match"
			case namesAlike(a.Name, b.Name):
				conf, reason = ConfidenceMedium, "name match"
			default:
				continue
			}
			keep, drop := PickSurvivor(a, b)
			pairs = append(pairs, GuestPair{KeepID: keep.AttendeeID, DropID: drop.AttendeeID, Confidence: conf, Reason: reason})
		}
	}
	return pairs
}

// fieldScore counts the populated fields of a guest row.
func fieldScore(g Guest) int {
	n := 0
	if strings.TrimSpace(g.Name) != "" {
		n++
	}
	if g.Email != nil && *g.Email != "" {
		n++
	}
	if g.PaymentStatus != nil && *g.PaymentStatus != "" {
		n++
	}
	if g.Notes != nil && *g.Notes != "" {
		n++
	}
	return n
}

// PickSurvivor decides which of two duplicate guest rows to keep: the
// one with more populated fields, or the most recently created when
// the scores tie.
func PickSurvivor(a, b Guest) (keep, drop Guest) {
	sa, sb := fieldScore(a), fieldScore(b)
	if sa > sb {
		return a, b
	}
	if sb > sa {
		return b, a
	}
	if a.CreatedAt.After(b.CreatedAt) {
		return a, b
	}
	return b, a
}
