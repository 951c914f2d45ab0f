package model

import "time"

// Coupon discount types.
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Coupon is a discount code applicable at checkout.  Percentage
// discounts may be capped by MaxDiscountCents; fixed discounts are an
// absolute amount in cents.  This struct corresponds to a row in the
// `coupons` table.
//
// Fields:
//  ID               – primary key identifier.
//  Code             – unique, upper-cased coupon code.
//  DiscountType     – percentage or fixed.
//  DiscountValue    – percent (0-100) or cents depending on type.
//  MaxDiscountCents – cap for percentage discounts; nil means uncapped.
//  UsageLimit       – maximum number of redemptions; nil means unlimited.
//  UsedCount        – redemptions so far.
//  ValidFrom        – start of validity window; nil means no lower bound.
//  ValidUntil       – end of validity window; nil means no upper bound.
//  CreatedAt        – creation timestamp.
type Coupon struct {
	ID               uint64     // coupons.id
	Code             string     // coupons.code
	DiscountType     string     // coupons.discount_type
	DiscountValue    uint32     // coupons.discount_value
	MaxDiscountCents *uint32    // coupons.max_discount_cents (nullable)
	UsageLimit       *uint32    // coupons.usage_limit (nullable)
	UsedCount        uint32     // coupons.used_count
	ValidFrom        *time.Time // coupons.valid_from (nullable)
	ValidUntil       *time.Time // coupons.valid_until (nullable)
	CreatedAt        time.Time  // coupons.created_at
}
