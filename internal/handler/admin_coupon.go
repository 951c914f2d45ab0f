package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/runclubno/runclub-backend/internal/model"
	"github.com/runclubno/runclub-backend/internal/repository"
)

// AdminCouponHandler creates and inspects discount codes.
type AdminCouponHandler struct {
	Coupons *repository.CouponRepo
}

func NewAdminCouponHandler(cp *repository.CouponRepo) *AdminCouponHandler {
	return &AdminCouponHandler{Coupons: cp}
}

type couponReq struct {
	Code             string     `json:"code"`
	DiscountType     string     `json:"discount_type"`
	DiscountValue    uint32     `json:"discount_value"`
	MaxDiscountCents *uint32    `json:"max_discount_cents"`
	UsageLimit       *uint32    `json:"usage_limit"`
	ValidFrom        *time.Time `json:"valid_from"`
	ValidUntil       *time.Time `json:"valid_until"`
}

// Create registers a new coupon code.
func (h *AdminCouponHandler) Create(c echo.Context) error {
	var req couponReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code required"})
	}
	switch req.DiscountType {
	case model.DiscountPercentage:
		if req.DiscountValue == 0 || req.DiscountValue > 100 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "percentage must be 1-100"})
		}
	case model.DiscountFixed:
		if req.DiscountValue == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "discount_value required"})
		}
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "discount_type must be percentage or fixed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	coupon := model.Coupon{
		Code:             code,
		DiscountType:     req.DiscountType,
		DiscountValue:    req.DiscountValue,
		MaxDiscountCents: req.MaxDiscountCents,
		UsageLimit:       req.UsageLimit,
		ValidFrom:        req.ValidFrom,
		ValidUntil:       req.ValidUntil,
	}
	id, err := h.Coupons.Create(ctx, &coupon)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create coupon failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "code": code})
}

// Get returns a coupon by code, including its usage counters.
func (h *AdminCouponHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	coupon, err := h.Coupons.GetByCode(ctx, c.Param("code"))
	if err == repository.ErrCouponNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "coupon not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load coupon failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":                 coupon.ID,
		"code":               coupon.Code,
		"discount_type":      coupon.DiscountType,
		"discount_value":     coupon.DiscountValue,
		"max_discount_cents": coupon.MaxDiscountCents,
		"usage_limit":        coupon.UsageLimit,
		"used_count":         coupon.UsedCount,
		"valid_from":         coupon.ValidFrom,
		"valid_until":        coupon.ValidUntil,
	})
}
