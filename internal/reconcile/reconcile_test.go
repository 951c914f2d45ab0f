package reconcile

import (
	"testing"
	"time"
)

func strptr(s string) *string { return &s }

func TestFindDuplicatesEmail(t *testing.T) {
	regs := []RegisteredMember{
		{RegistrationID: 10, MemberID: 1, FullName: "Kari Nordmann", Email: "kari@example.no"},
	}
	guests := []Guest{
		{AttendeeID: 100, Name: "K. Nordmann", Email: strptr("KARI@Example.NO")},
		{AttendeeID: 101, Name: "Someone Else", Email: strptr("other@example.com")},
	}

	matches := FindDuplicates(regs, guests)
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	m := matches[0]
	if m.AttendeeID != 100 || m.RegistrationID != 10 || m.Confidence != ConfidenceHigh {
		t.Fatalf("unexpected match: %+v", m)
	}
}

func TestFindDuplicatesFuzzyName(t *testing.T) {
	regs := []RegisteredMember{
		{RegistrationID: 11, MemberID: 2, FullName: "Ola Johan Hansen", Email: "ola@example.no"},
	}

	t.Run("substring", func(t *testing.T) {
		guests := []Guest{{AttendeeID: 200, Name: "ola johan hansen jr"}}
		matches := FindDuplicates(regs, guests)
		if len(matches) != 1 || matches[0].Confidence != ConfidenceMedium {
			t.Fatalf("unexpected matches: %+v", matches)
		}
	})

	t.Run("token overlap", func(t *testing.T) {
		matches := FindDuplicates(regs, []Guest{{AttendeeID: 201, Name: "Ola Hansen"}})
		if len(matches) != 1 {
			t.Fatalf("two shared tokens should match, got %+v", matches)
		}
	})

	t.Run("single shared token is not enough", func(t *testing.T) {
		matches := FindDuplicates(regs, []Guest{{AttendeeID: 202, Name: "Per Olsen Hansen Nilsen Bakken"}})
		if len(matches) != 0 {
			t.Fatalf("one shared token matched: %+v", matches)
		}
	})
}

func TestEmailBeatsName(t *testing.T) {
	regs := []RegisteredMember{
		{RegistrationID: 1, MemberID: 1, FullName: "Anne Berg", Email: "anne@x.no"},
		{RegistrationID: 2, MemberID: 2, FullName: "Anne Berg Larsen", Email: "abl@x.no"},
	}
	guests := []Guest{{AttendeeID: 300, Name: "Anne Berg Larsen", Email: strptr("anne@x.no")}}
	matches := FindDuplicates(regs, guests)
	if len(matches) != 1 || matches[0].RegistrationID != 1 || matches[0].Reason != "email match" {
		t.Fatalf("email should take priority, got %+v", matches)
	}
}

func TestPickSurvivor(t *testing.T) {
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(48 * time.Hour)

	t.Run("more fields wins", func(t *testing.T) {
		rich := Guest{AttendeeID: 1, Name: "Kari", Email: strptr("k@x.no"), Notes: strptr("vip"), CreatedAt: older}
		poor := Guest{AttendeeID: 2, Name: "Kari", CreatedAt: newer}
		keep, drop := PickSurvivor(rich, poor)
		if keep.AttendeeID != 1 || drop.AttendeeID != 2 {
			t.Fatalf("keep=%d drop=%d, want richer row kept", keep.AttendeeID, drop.AttendeeID)
		}
	})

	t.Run("tie falls back to most recent", func(t *testing.T) {
		a := Guest{AttendeeID: 1, Name: "Kari", CreatedAt: older}
		b := Guest{AttendeeID: 2, Name: "Kari", CreatedAt: newer}
		keep, _ := PickSurvivor(a, b)
		if keep.AttendeeID != 2 {
			t.Fatalf("keep=%d, want most recent row on tie", keep.AttendeeID)
		}
	})
}

func TestFindGuestDuplicates(t *testing.T) {
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	guests := []Guest{
		{AttendeeID: 1, Name: "Per Olsen", Email: strptr("per@x.no"), CreatedAt: older},
		{AttendeeID: 2, Name: "Per Olsen", Email: strptr("PER@X.NO"), Notes: strptr("paid cash"), CreatedAt: older.Add(time.Hour)},
		{AttendeeID: 3, Name: "Completely Different", CreatedAt: older},
	}
	pairs := FindGuestDuplicates(guests)
	if len(pairs) != 1 {
		t.Fatalf("got %d pairs, want 1", len(pairs))
	}
	p := pairs[0]
	if p.KeepID != 2 || p.DropID != 1 || p.Confidence != ConfidenceHigh {
		t.Fatalf("unexpected pair: %+v", p)
	}
}
