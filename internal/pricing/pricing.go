// Package pricing normalizes legacy free-text event prices into typed
// values and validates coupon discounts at checkout.
package pricing

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/runclubno/runclub-backend/internal/model"
)

// Coupon validation errors.  Handlers translate these into 400/409
// responses with the error text as the message.
var (
	ErrCouponNotYetValid = errors.New("coupon is not valid yet")
	ErrCouponExpired     = errors.New("coupon has expired")
	ErrCouponExhausted   = errors.New("coupon usage limit reached")
	ErrBadDiscountType   = errors.New("unknown discount type")
	ErrBadPrice          = errors.New("unparseable price")
)

// freeMarkers are the substrings the legacy data used to mark an event
// as free.  Matching is case-insensitive.
var freeMarkers = []string{"gratis", "free"}

// ParsePrice converts a legacy free-text price ("gratis", "kr 150",
// "150,-", "NOK 150.50", "0") into cents and a free flag.  An empty or
// zero price is free.  Returns ErrBadPrice when no numeric value can be
// extracted from a non-free string.
func ParsePrice(raw string) (cents uint32, isFree bool, err error) {
	s := strings.TrimSpace(strings.ToLower(raw))
	if s == "" || s == "0" {
		return 0, true, nil
	}
	for _, m := range freeMarkers {
		if strings.Contains(s, m) {
			return 0, true, nil
		}
	}
	// Strip currency noise: "kr", "nok", trailing ",-" and spaces.
	s = strings.ReplaceAll(s, "nok", "")
	s = strings.ReplaceAll(s, "kr", "")
	s = strings.TrimSuffix(strings.TrimSpace(s), ",-")
	s = strings.TrimSpace(s)
	// Norwegian decimal comma.
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, perr := strconv.ParseFloat(s, 64)
	if perr != nil || v < 0 {
		return 0, false, ErrBadPrice
	}
	if v == 0 {
		return 0, true, nil
	}
	return uint32(v*100 + 0.5), false, nil
}

// ValidateCoupon checks the validity window and usage limit of a
// coupon at the given instant.  It does not consume a redemption; the
// repository performs that atomically at checkout.
func ValidateCoupon(c model.Coupon, now time.Time) error {
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return ErrCouponNotYetValid
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return ErrCouponExpired
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return ErrCouponExhausted
	}
	return nil
}

// Discount computes the discount in cents a coupon grants on an
// amount.  Percentage discounts are capped by MaxDiscountCents when
// set; no discount ever exceeds the amount itself.
func Discount(c model.Coupon, amountCents uint32) (uint32, error) {
	var d uint32
	switch c.DiscountType {
	case model.DiscountPercentage:
		pct := c.DiscountValue
		if pct > 100 {
			pct = 100
		}
		d = uint32(uint64(amountCents) * uint64(pct) / 100)
		if c.MaxDiscountCents != nil && d > *c.MaxDiscountCents {
			d = *c.MaxDiscountCents
		}
	case model.DiscountFixed:
		d = c.DiscountValue
	default:
		return 0, ErrBadDiscountType
	}
	if d > amountCents {
		d = amountCents
	}
	return d, nil
}
