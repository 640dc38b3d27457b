package enums

// DiscountType is the coupon discount mode.
type DiscountType string

const (
	DiscountTypePercentage   DiscountType = "Percentage"
	DiscountTypeAmount       DiscountType = "Amount"
	DiscountTypeFreeDelivery DiscountType = "FreeDelivery"
)

func (d DiscountType) String() string {
	return string(d)
}

func (d DiscountType) IsValid() bool {
	switch d {
	case DiscountTypePercentage, DiscountTypeAmount, DiscountTypeFreeDelivery:
		return true
	}
	return false
}

// CouponStatus gates whether a coupon may be applied.
type CouponStatus string

const (
	CouponStatusActive   CouponStatus = "active"
	CouponStatusInactive CouponStatus = "inactive"
)

func (c CouponStatus) String() string {
	return string(c)
}
