package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/runclubno/runclub-backend/internal/model"
)

// ErrCouponNotFound is returned when no coupon matches the given code.
var ErrCouponNotFound = errors.New("coupon not found")

// ErrCouponSpent is returned by Redeem when the usage limit was reached
// between validation and redemption.
var ErrCouponSpent = errors.New("coupon usage limit reached")

// CouponRepo encapsulates database operations for discount coupons.
type CouponRepo struct {
	db *sql.DB
}

// NewCouponRepo constructs a CouponRepo given a DB handle.
func NewCouponRepo(db *sql.DB) *CouponRepo {
	return &CouponRepo{db: db}
}

const couponCols = "id,code,discount_type,discount_value,max_discount_cents,usage_limit,used_count,valid_from,valid_until,created_at"

// GetByCode fetches a coupon by its upper-cased code.
func (r *CouponRepo) GetByCode(ctx context.Context, code string) (model.Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	var c model.Coupon
	err := r.db.QueryRowContext(ctx,
		"SELECT "+couponCols+" FROM coupons WHERE code=? LIMIT 1", code).
		Scan(&c.ID, &c.Code, &c.DiscountType, &c.DiscountValue, &c.MaxDiscountCents,
			&c.UsageLimit, &c.UsedCount, &c.ValidFrom, &c.ValidUntil, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return c, ErrCouponNotFound
	}
	return c, err
}

// Create inserts a coupon and returns its ID. Codes are stored upper
// case.
func (r *CouponRepo) Create(ctx context.Context, c *model.Coupon) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO coupons (code, discount_type, discount_value, max_discount_cents, usage_limit, valid_from, valid_until)
		 VALUES (?,?,?,?,?,?,?)`,
		strings.ToUpper(strings.TrimSpace(c.Code)), c.DiscountType, c.DiscountValue,
		c.MaxDiscountCents, c.UsageLimit, c.ValidFrom, c.ValidUntil)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrConflict
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Redeem consumes one use of the coupon. The guarded UPDATE makes the
// increment atomic: when two checkouts race for the last use, exactly
// one succeeds and the other gets ErrCouponSpent.
func (r *CouponRepo) Redeem(ctx context.Context, couponID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE coupons SET used_count = used_count + 1
		 WHERE id=? AND (usage_limit IS NULL OR used_count < usage_limit)`,
		couponID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCouponSpent
	}
	return nil
}
