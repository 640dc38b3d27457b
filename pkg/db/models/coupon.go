package models

import (
	"time"

	"github.com/medbasket/medbasket-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Coupon is a read-only input to the coupon evaluator.
type Coupon struct {
	ID             int64              `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Code           string             `gorm:"column:code;uniqueIndex;not null" json:"code"`
	DiscountType   enums.DiscountType `gorm:"column:discount_type;not null" json:"discount_type"`
	PercentageOff  decimal.Decimal    `gorm:"column:percentage_off;type:numeric(5,2);default:0" json:"percentage_off"`
	DiscountAmount decimal.Decimal    `gorm:"column:discount_amount;type:numeric(12,2);default:0" json:"discount_amount"`
	MaxDiscount    decimal.Decimal    `gorm:"column:max_discount;type:numeric(12,2);default:0" json:"max_discount"`
	MinOrderValue  decimal.Decimal    `gorm:"column:min_order_value;type:numeric(12,2);default:0" json:"min_order_value"`
	Status         enums.CouponStatus `gorm:"column:status;default:'active'" json:"status"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Coupon) TableName() string { return "coupons" }
