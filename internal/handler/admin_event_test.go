package handler

import (
	"testing"
	"time"
)

func TestParseEventDate(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2026-05-17T18:00:00Z", time.Date(2026, 5, 17, 18, 0, 0, 0, time.UTC)},
		{"2026-05-17T18:00", time.Date(2026, 5, 17, 18, 0, 0, 0, time.UTC)},
		{"2026-05-17 18:00", time.Date(2026, 5, 17, 18, 0, 0, 0, time.UTC)},
		{"2026-05-17", time.Date(2026, 5, 17, 0, 0, 0, 0, time.UTC)},
		{"17.05.2026 18:00", time.Date(2026, 5, 17, 18, 0, 0, 0, time.UTC)},
		{"17.05.2026", time.Date(2026, 5, 17, 0, 0, 0, 0, time.UTC)},
		{"  2026-05-17  ", time.Date(2026, 5, 17, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := parseEventDate(tc.in)
		if err != nil {
			t.Errorf("parseEventDate(%q): %v", tc.in, err)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("parseEventDate(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	if _, err := parseEventDate("next tuesday"); err == nil {
		t.Error("expected error for unparseable date")
	}
}

func TestEventFromReq(t *testing.T) {
	h := &AdminEventHandler{}

	t.Run("free text price", func(t *testing.T) {
		ev, err := h.eventFromReq(adminEventReq{
			Slug: " Saturday-Long-Run ", Title: " Saturday Long Run ",
			StartsAt: "2026-05-17 09:00", Price: "Gratis",
		})
		if err != nil {
			t.Fatalf("eventFromReq: %v", err)
		}
		if !ev.IsFree || ev.PriceCents != 0 {
			t.Errorf("got price=%d free=%v, want free", ev.PriceCents, ev.IsFree)
		}
		if ev.Slug != "saturday-long-run" {
			t.Errorf("slug = %q, want lower-cased trimmed", ev.Slug)
		}
	})

	t.Run("paid price", func(t *testing.T) {
		ev, err := h.eventFromReq(adminEventReq{
			Slug: "race", Title: "Race", StartsAt: "2026-06-01", Price: "kr 150",
		})
		if err != nil {
			t.Fatalf("eventFromReq: %v", err)
		}
		if ev.IsFree || ev.PriceCents != 15000 {
			t.Errorf("got price=%d free=%v, want 15000 paid", ev.PriceCents, ev.IsFree)
		}
	})

	t.Run("bad date", func(t *testing.T) {
		if _, err := h.eventFromReq(adminEventReq{Slug: "x", Title: "x", StartsAt: "soon", Price: "0"}); err == nil {
			t.Error("expected error for bad date")
		}
	})
}
