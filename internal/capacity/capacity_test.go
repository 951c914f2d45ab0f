package capacity

import (
	"testing"

	"github.com/runclubno/runclub-backend/internal/model"
)

func strptr(s string) *string { return &s }
func u32ptr(n uint32) *uint32 { return &n }

func paidEvent(max *uint32) model.Event {
	return model.Event{ID: 1, Slug: "tuesday-intervals", PriceCents: 15000, MaxParticipants: max}
}

func freeEvent(max *uint32) model.Event {
	return model.Event{ID: 2, Slug: "saturday-longrun", IsFree: true, MaxParticipants: max}
}

func paidReg(email string) MemberRegistration {
	return MemberRegistration{Email: email, Status: model.RegStatusConfirmed, PaymentStatus: strptr(model.PayStatusPaid), Role: model.RoleGuest}
}

func TestSummarizeWorkedExample(t *testing.T) {
	// max 10, 3 paid member registrations, 2 guests of which one shares
	// an email with a member: 3 + 1 = 4 counted, 6 remaining, not full.
	ev := paidEvent(u32ptr(10))
	regs := []MemberRegistration{
		paidReg("kari@example.no"),
		paidReg("ola@example.no"),
		paidReg("ingrid@example.no"),
	}
	guests := []GuestAttendee{
		{Email: strptr("KARI@example.no"), PaymentStatus: strptr(model.PayStatusPaid), Role: model.RoleGuest},
		{Email: strptr("visitor@example.com"), PaymentStatus: strptr(model.PayStatusPaid), Role: model.RoleGuest},
	}

	s := Summarize(ev, regs, guests)
	if s.TotalRegistered != 4 {
		t.Fatalf("total = %d, want 4", s.TotalRegistered)
	}
	if s.SpotsRemaining == nil || *s.SpotsRemaining != 6 {
		t.Fatalf("spots remaining = %v, want 6", s.SpotsRemaining)
	}
	if s.IsFull {
		t.Fatal("event should not be full")
	}
}

func TestSummarizeUnlimited(t *testing.T) {
	s := Summarize(paidEvent(nil), []MemberRegistration{paidReg("a@b.no")}, nil)
	if s.SpotsRemaining != nil {
		t.Fatalf("spots remaining = %v, want nil for unlimited event", *s.SpotsRemaining)
	}
	if s.IsFull {
		t.Fatal("unlimited event can never be full")
	}
	if s.TotalRegistered != 1 {
		t.Fatalf("total = %d, want 1", s.TotalRegistered)
	}
}

func TestSummarizeFullAndClamped(t *testing.T) {
	ev := paidEvent(u32ptr(2))
	regs := []MemberRegistration{paidReg("a@x.no"), paidReg("b@x.no"), paidReg("c@x.no")}
	s := Summarize(ev, regs, nil)
	if !s.IsFull {
		t.Fatal("overbooked event must report full")
	}
	if s.SpotsRemaining == nil || *s.SpotsRemaining != 0 {
		t.Fatalf("spots remaining = %v, want clamped to 0", s.SpotsRemaining)
	}
}

func TestStaffExcluded(t *testing.T) {
	ev := paidEvent(u32ptr(10))

	t.Run("typed role", func(t *testing.T) {
		r := paidReg("coach@club.no")
		r.Role = model.RoleStaff
		s := Summarize(ev, []MemberRegistration{r}, nil)
		if s.TotalRegistered != 0 {
			t.Fatalf("total = %d, want 0 with staff role", s.TotalRegistered)
		}
	})

	t.Run("legacy notes sentinel", func(t *testing.T) {
		r := paidReg("coach@club.no")
		r.Role = ""
		r.Notes = strptr("Event STAFF, no payment needed")
		g := GuestAttendee{Email: strptr("helper@club.no"), PaymentStatus: strptr(model.PayStatusPaid), Notes: strptr("staff")}
		s := Summarize(ev, []MemberRegistration{r}, []GuestAttendee{g})
		if s.TotalRegistered != 0 {
			t.Fatalf("total = %d, want 0 with notes sentinel", s.TotalRegistered)
		}
	})

	t.Run("typed guest role ignores sentinel", func(t *testing.T) {
		// A guest explicitly typed as guest counts even when the note
		// happens to mention staff ("no staff available" case).
		g := GuestAttendee{Email: strptr("s@x.no"), PaymentStatus: strptr(model.PayStatusPaid), Role: model.RoleGuest, Notes: strptr("no staff available that day")}
		s := Summarize(ev, nil, []GuestAttendee{g})
		if s.TotalRegistered != 1 {
			t.Fatalf("total = %d, want 1 for explicit guest role", s.TotalRegistered)
		}
	})
}

func TestPaymentFilters(t *testing.T) {
	t.Run("paid event drops pending", func(t *testing.T) {
		r := paidReg("a@x.no")
		r.PaymentStatus = strptr(model.PayStatusPending)
		s := Summarize(paidEvent(u32ptr(5)), []MemberRegistration{r}, nil)
		if s.TotalRegistered != 0 {
			t.Fatalf("total = %d, want 0 for pending payment on paid event", s.TotalRegistered)
		}
	})

	t.Run("free event counts pending and null", func(t *testing.T) {
		a := MemberRegistration{Email: "a@x.no", Status: model.RegStatusRegistered, PaymentStatus: strptr(model.PayStatusPending)}
		b := MemberRegistration{Email: "b@x.no", Status: model.RegStatusConfirmed}
		s := Summarize(freeEvent(u32ptr(5)), []MemberRegistration{a, b}, nil)
		if s.TotalRegistered != 2 {
			t.Fatalf("total = %d, want 2 on free event", s.TotalRegistered)
		}
	})

	t.Run("cancelled never counts", func(t *testing.T) {
		r := paidReg("a@x.no")
		r.Status = model.RegStatusCancelled
		s := Summarize(paidEvent(u32ptr(5)), []MemberRegistration{r}, nil)
		if s.TotalRegistered != 0 {
			t.Fatalf("total = %d, want 0 for cancelled registration", s.TotalRegistered)
		}
	})
}

func TestSummarizeAdmission(t *testing.T) {
	t.Run("pending checkout holds the last spot", func(t *testing.T) {
		// One spot, one registration whose checkout is still pending.
		// Public availability shows it open, but a second registrant
		// must not be admitted while the first can still pay.
		ev := paidEvent(u32ptr(1))
		r := paidReg("first@x.no")
		r.Status = model.RegStatusRegistered
		r.PaymentStatus = strptr(model.PayStatusPending)
		regs := []MemberRegistration{r}

		if s := Summarize(ev, regs, nil); s.TotalRegistered != 0 {
			t.Fatalf("public total = %d, want 0 for pending payment", s.TotalRegistered)
		}
		s := SummarizeAdmission(ev, regs, nil)
		if s.TotalRegistered != 1 {
			t.Fatalf("admission total = %d, want 1", s.TotalRegistered)
		}
		if !s.IsFull {
			t.Fatal("admission summary must report full while a checkout is pending")
		}
	})

	t.Run("failed and refunded release the spot", func(t *testing.T) {
		ev := paidEvent(u32ptr(1))
		a := paidReg("a@x.no")
		a.PaymentStatus = strptr(model.PayStatusFailed)
		b := paidReg("b@x.no")
		b.PaymentStatus = strptr(model.PayStatusRefunded)
		if s := SummarizeAdmission(ev, []MemberRegistration{a, b}, nil); s.IsFull {
			t.Fatal("failed/refunded rows must not hold spots")
		}
	})

	t.Run("cancelled never holds", func(t *testing.T) {
		ev := paidEvent(u32ptr(1))
		r := paidReg("a@x.no")
		r.Status = model.RegStatusCancelled
		r.PaymentStatus = strptr(model.PayStatusPending)
		if s := SummarizeAdmission(ev, []MemberRegistration{r}, nil); s.TotalRegistered != 0 {
			t.Fatalf("admission total = %d, want 0 for cancelled row", s.TotalRegistered)
		}
	})

	t.Run("pending guest holds on paid event", func(t *testing.T) {
		ev := paidEvent(u32ptr(1))
		g := GuestAttendee{Email: strptr("g@x.no"), PaymentStatus: strptr(model.PayStatusPending), Role: model.RoleGuest}
		if s := SummarizeAdmission(ev, nil, []GuestAttendee{g}); !s.IsFull {
			t.Fatal("guest with an open payment link must hold the spot")
		}
	})

	t.Run("staff still excluded", func(t *testing.T) {
		ev := paidEvent(u32ptr(1))
		r := paidReg("coach@club.no")
		r.Role = model.RoleStaff
		r.PaymentStatus = strptr(model.PayStatusPending)
		if s := SummarizeAdmission(ev, []MemberRegistration{r}, nil); s.IsFull {
			t.Fatal("staff must not hold spots")
		}
	})
}

func TestGuestDedupIsCaseInsensitive(t *testing.T) {
	ev := freeEvent(u32ptr(10))
	regs := []MemberRegistration{{Email: "Runner@Example.NO", Status: model.RegStatusConfirmed}}
	guests := []GuestAttendee{
		{Email: strptr(" runner@example.no "), PaymentStatus: strptr(model.PayStatusPending)},
		{Email: nil, PaymentStatus: strptr(model.PayStatusPending)}, // no email, cannot dedupe
	}
	s := Summarize(ev, regs, guests)
	if s.TotalRegistered != 2 {
		t.Fatalf("total = %d, want 2 (member + emailless guest)", s.TotalRegistered)
	}
}
