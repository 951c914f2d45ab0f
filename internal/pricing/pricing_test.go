package pricing

import (
	"errors"
	"testing"
	"time"

	"github.com/runclubno/runclub-backend/internal/model"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		raw   string
		cents uint32
		free  bool
	}{
		{"", 0, true},
		{"0", 0, true},
		{"Gratis", 0, true},
		{"free entry", 0, true},
		{"150", 15000, false},
		{"kr 150", 15000, false},
		{"150 kr", 15000, false},
		{"NOK 150.50", 15050, false},
		{"150,-", 15000, false},
		{"99,50", 9950, false},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			cents, free, err := ParsePrice(tc.raw)
			if err != nil {
				t.Fatalf("ParsePrice(%q) error: %v", tc.raw, err)
			}
			if cents != tc.cents || free != tc.free {
				t.Fatalf("ParsePrice(%q) = (%d, %v), want (%d, %v)", tc.raw, cents, free, tc.cents, tc.free)
			}
		})
	}

	if _, _, err := ParsePrice("ring oss"); !errors.Is(err, ErrBadPrice) {
		t.Fatalf("expected ErrBadPrice for garbage input, got %v", err)
	}
}

func TestValidateCouponWindow(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	from := now.Add(-24 * time.Hour)
	until := now.Add(24 * time.Hour)

	c := model.Coupon{Code: "SPRING", DiscountType: model.DiscountPercentage, DiscountValue: 10, ValidFrom: &from, ValidUntil: &until}
	if err := ValidateCoupon(c, now); err != nil {
		t.Fatalf("coupon inside window rejected: %v", err)
	}
	if err := ValidateCoupon(c, from.Add(-time.Hour)); !errors.Is(err, ErrCouponNotYetValid) {
		t.Fatalf("want ErrCouponNotYetValid, got %v", err)
	}
	if err := ValidateCoupon(c, until.Add(time.Hour)); !errors.Is(err, ErrCouponExpired) {
		t.Fatalf("want ErrCouponExpired, got %v", err)
	}
}

func TestValidateCouponUsage(t *testing.T) {
	limit := uint32(5)
	c := model.Coupon{Code: "FIVER", DiscountType: model.DiscountFixed, DiscountValue: 500, UsageLimit: &limit, UsedCount: 5}
	if err := ValidateCoupon(c, time.Now()); !errors.Is(err, ErrCouponExhausted) {
		t.Fatalf("want ErrCouponExhausted, got %v", err)
	}
	c.UsedCount = 4
	if err := ValidateCoupon(c, time.Now()); err != nil {
		t.Fatalf("coupon with remaining uses rejected: %v", err)
	}
}

func TestDiscount(t *testing.T) {
	t.Run("percentage capped by max", func(t *testing.T) {
		maxD := uint32(1000)
		c := model.Coupon{DiscountType: model.DiscountPercentage, DiscountValue: 50, MaxDiscountCents: &maxD}
		d, err := Discount(c, 10000)
		if err != nil {
			t.Fatal(err)
		}
		if d != 1000 {
			t.Fatalf("discount = %d, want capped 1000", d)
		}
	})

	t.Run("fixed never exceeds amount", func(t *testing.T) {
		c := model.Coupon{DiscountType: model.DiscountFixed, DiscountValue: 20000}
		d, err := Discount(c, 15000)
		if err != nil {
			t.Fatal(err)
		}
		if d != 15000 {
			t.Fatalf("discount = %d, want clamped to amount 15000", d)
		}
	})

	t.Run("percentage over 100 clamped", func(t *testing.T) {
		c := model.Coupon{DiscountType: model.DiscountPercentage, DiscountValue: 150}
		d, err := Discount(c, 10000)
		if err != nil {
			t.Fatal(err)
		}
		if d != 10000 {
			t.Fatalf("discount = %d, want 10000", d)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		c := model.Coupon{DiscountType: "bogus", DiscountValue: 10}
		if _, err := Discount(c, 100); !errors.Is(err, ErrBadDiscountType) {
			t.Fatalf("want ErrBadDiscountType, got %v", err)
		}
	})
}
