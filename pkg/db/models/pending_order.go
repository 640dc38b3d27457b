package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/medbasket/medbasket-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// PendingOrder stages an online-payment order until the gateway confirms it.
// Verified payments promote the row into an Order and delete it; abandoned
// rows are marked by the sweep job after the configured TTL.
type PendingOrder struct {
	ID             int64                    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CustomerID     int64                    `gorm:"column:customer_id;index;not null" json:"customer_id"`
	PrescriptionID *uuid.UUID               `gorm:"column:prescription_id;type:uuid" json:"prescription_id,omitempty"`
	GatewayOrderID string                   `gorm:"column:gateway_order_id;uniqueIndex;not null" json:"gateway_order_id"`
	Status         enums.PendingOrderStatus `gorm:"column:status;not null;default:'pending'" json:"status"`

	PatientName  string `gorm:"column:patient_name;not null" json:"patient_name"`
	PatientPhone string `gorm:"column:patient_phone;not null" json:"patient_phone"`
	HospitalName string `gorm:"column:hospital_name" json:"hospital_name"`
	DoctorName   string `gorm:"column:doctor_name" json:"doctor_name"`
	Notes        string `gorm:"column:notes" json:"notes"`
	ShipStreet   string `gorm:"column:ship_street;not null" json:"ship_street"`
	ShipCity     string `gorm:"column:ship_city" json:"ship_city"`
	ShipPincode  string `gorm:"column:ship_pincode;not null" json:"ship_pincode"`
	ShipHouseNo  string `gorm:"column:ship_house_no" json:"ship_house_no"`
	ShipAddrType string `gorm:"column:ship_addr_type" json:"ship_addr_type"`

	Subtotal         decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null" json:"subtotal"`
	CouponCode       *string         `gorm:"column:coupon_code" json:"coupon_code,omitempty"`
	Discount         decimal.Decimal `gorm:"column:discount;type:numeric(12,2);default:0" json:"discount"`
	ShippingCharge   decimal.Decimal `gorm:"column:shipping_charge;type:numeric(12,2);default:0" json:"shipping_charge"`
	AdditionalCharge decimal.Decimal `gorm:"column:additional_charge;type:numeric(12,2);default:0" json:"additional_charge"`
	Amount           decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`

	Items []OrderItem `gorm:"foreignKey:PendingOrderID" json:"items,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (PendingOrder) TableName() string { return "pending_orders" }
