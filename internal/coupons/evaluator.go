package coupons

import (
	"github.com/shopspring/decimal"

	"github.com/medbasket/medbasket-backend/pkg/db/models"
	"github.com/medbasket/medbasket-backend/pkg/enums"
	pkgerrors "github.com/medbasket/medbasket-backend/pkg/errors"
)

var oneHundred = decimal.NewFromInt(100)

// Evaluation is the outcome of applying a coupon to a cart total.
type Evaluation struct {
	Discount     decimal.Decimal `json:"discount"`
	GrandTotal   decimal.Decimal `json:"grand_total"`
	FreeDelivery bool            `json:"free_delivery"`
}

// EvaluateOptions tune evaluator behavior that is configurable rather than fixed.
type EvaluateOptions struct {
	// CapPercentage applies MaxDiscount to percentage coupons as well. Off by
	// default: historically only fixed-amount coupons were capped, and the
	// cap stays opt-in until product confirms the intended rule.
	CapPercentage bool
}

// Evaluate computes the discount a coupon yields on a cart total. It is a
// pure function: the coupon row is read-only input and nothing is persisted.
//
// Percentage discounts round up to the next whole rupee. Fixed-amount
// discounts are capped at MaxDiscount. Free-delivery coupons carry no rupee
// discount of their own; the order workflow zeroes the shipping charge when
// the flag is set.
func Evaluate(coupon *models.Coupon, cartTotal decimal.Decimal, opts EvaluateOptions) (*Evaluation, error) {
	if coupon == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon is required")
	}
	if !cartTotal.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart total must be positive")
	}
	if cartTotal.LessThan(coupon.MinOrderValue) {
		return nil, pkgerrors.New(pkgerrors.CodeCouponNotApplicable, "order value below coupon minimum").
			WithDetails(map[string]any{"min_order_value": coupon.MinOrderValue})
	}

	switch coupon.DiscountType {
	case enums.DiscountTypeFreeDelivery:
		return &Evaluation{
			Discount:     decimal.Zero,
			GrandTotal:   cartTotal,
			FreeDelivery: true,
		}, nil

	case enums.DiscountTypeAmount:
		discount := decimal.Min(coupon.MaxDiscount, coupon.DiscountAmount)
		return finishEvaluation(cartTotal, discount)

	case enums.DiscountTypePercentage:
		discount := cartTotal.Mul(coupon.PercentageOff).Div(oneHundred).Ceil()
		if opts.CapPercentage && coupon.MaxDiscount.IsPositive() {
			discount = decimal.Min(discount, coupon.MaxDiscount)
		}
		return finishEvaluation(cartTotal, discount)

	default:
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCouponConfig, "unknown discount type").
			WithDetails(map[string]any{"discount_type": coupon.DiscountType})
	}
}

func finishEvaluation(cartTotal, discount decimal.Decimal) (*Evaluation, error) {
	if !discount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeNoApplicableDiscount, "coupon yields no discount")
	}
	if discount.GreaterThan(cartTotal) {
		discount = cartTotal
	}
	return &Evaluation{
		Discount:   discount,
		GrandTotal: cartTotal.Sub(discount),
	}, nil
}
