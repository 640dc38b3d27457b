package coupons

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medbasket/medbasket-backend/pkg/db/models"
	"github.com/medbasket/medbasket-backend/pkg/enums"
	pkgerrors "github.com/medbasket/medbasket-backend/pkg/errors"
)

func percentageCoupon(pct int64, minOrder int64) *models.Coupon {
	return &models.Coupon{
		Code:          "SAVE10",
		DiscountType:  enums.DiscountTypePercentage,
		PercentageOff: decimal.NewFromInt(pct),
		MinOrderValue: decimal.NewFromInt(minOrder),
		Status:        enums.CouponStatusActive,
	}
}

func TestEvaluatePercentageRoundsUp(t *testing.T) {
	tests := []struct {
		name     string
		total    int64
		pct      int64
		discount int64
	}{
		{name: "even split", total: 1800, pct: 10, discount: 180},
		{name: "rounds up to whole rupee", total: 1005, pct: 10, discount: 101},
		{name: "small order", total: 99, pct: 5, discount: 5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			coupon := percentageCoupon(tc.pct, 0)
			eval, err := Evaluate(coupon, decimal.NewFromInt(tc.total), EvaluateOptions{})
			require.NoError(t, err)

			assert.True(t, eval.Discount.Equal(decimal.NewFromInt(tc.discount)),
				"discount %s, want %d", eval.Discount, tc.discount)
			assert.True(t, eval.GrandTotal.Equal(decimal.NewFromInt(tc.total-tc.discount)))
		})
	}
}

func TestEvaluateBelowMinimumOrderValue(t *testing.T) {
	coupon := percentageCoupon(10, 1000)

	eval, err := Evaluate(coupon, decimal.NewFromInt(999), EvaluateOptions{})
	require.Error(t, err)
	assert.Nil(t, eval)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeCouponNotApplicable))
}

func TestEvaluateAmountCappedByMaxDiscount(t *testing.T) {
	coupon := &models.Coupon{
		Code:           "FLAT250",
		DiscountType:   enums.DiscountTypeAmount,
		DiscountAmount: decimal.NewFromInt(250),
		MaxDiscount:    decimal.NewFromInt(200),
		Status:         enums.CouponStatusActive,
	}

	eval, err := Evaluate(coupon, decimal.NewFromInt(1500), EvaluateOptions{})
	require.NoError(t, err)
	assert.True(t, eval.Discount.Equal(decimal.NewFromInt(200)))
	assert.True(t, eval.GrandTotal.Equal(decimal.NewFromInt(1300)))
}

func TestEvaluatePercentageNotCappedByDefault(t *testing.T) {
	coupon := percentageCoupon(20, 0)
	coupon.MaxDiscount = decimal.NewFromInt(100)

	eval, err := Evaluate(coupon, decimal.NewFromInt(2000), EvaluateOptions{})
	require.NoError(t, err)
	assert.True(t, eval.Discount.Equal(decimal.NewFromInt(400)),
		"percentage coupons ignore MaxDiscount unless the cap is enabled")
}

func TestEvaluatePercentageCapOptIn(t *testing.T) {
	coupon := percentageCoupon(20, 0)
	coupon.MaxDiscount = decimal.NewFromInt(100)

	eval, err := Evaluate(coupon, decimal.NewFromInt(2000), EvaluateOptions{CapPercentage: true})
	require.NoError(t, err)
	assert.True(t, eval.Discount.Equal(decimal.NewFromInt(100)))
}

func TestEvaluateFreeDelivery(t *testing.T) {
	coupon := &models.Coupon{
		Code:         "FREESHIP",
		DiscountType: enums.DiscountTypeFreeDelivery,
		Status:       enums.CouponStatusActive,
	}

	eval, err := Evaluate(coupon, decimal.NewFromInt(800), EvaluateOptions{})
	require.NoError(t, err)
	assert.True(t, eval.FreeDelivery)
	assert.True(t, eval.Discount.IsZero())
	assert.True(t, eval.GrandTotal.Equal(decimal.NewFromInt(800)))
}

func TestEvaluateUnknownDiscountType(t *testing.T) {
	coupon := &models.Coupon{
		Code:         "WEIRD",
		DiscountType: enums.DiscountType("BuyOneGetOne"),
		Status:       enums.CouponStatusActive,
	}

	_, err := Evaluate(coupon, decimal.NewFromInt(500), EvaluateOptions{})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidCouponConfig))
}

func TestEvaluateZeroDiscountRejected(t *testing.T) {
	coupon := &models.Coupon{
		Code:           "NOTHING",
		DiscountType:   enums.DiscountTypeAmount,
		DiscountAmount: decimal.Zero,
		MaxDiscount:    decimal.NewFromInt(100),
		Status:         enums.CouponStatusActive,
	}

	_, err := Evaluate(coupon, decimal.NewFromInt(500), EvaluateOptions{})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNoApplicableDiscount))
}

func TestEvaluateNonPositiveCartTotal(t *testing.T) {
	_, err := Evaluate(percentageCoupon(10, 0), decimal.Zero, EvaluateOptions{})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestEvaluateDiscountNeverExceedsTotal(t *testing.T) {
	coupon := &models.Coupon{
		Code:           "BIGFLAT",
		DiscountType:   enums.DiscountTypeAmount,
		DiscountAmount: decimal.NewFromInt(1000),
		MaxDiscount:    decimal.NewFromInt(1000),
		Status:         enums.CouponStatusActive,
	}

	eval, err := Evaluate(coupon, decimal.NewFromInt(400), EvaluateOptions{})
	require.NoError(t, err)
	assert.True(t, eval.Discount.Equal(decimal.NewFromInt(400)))
	assert.True(t, eval.GrandTotal.IsZero())
}
