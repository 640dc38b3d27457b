package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is one cart line frozen at order time. Product fields are
// denormalized so later catalog edits never alter order history. Exactly one
// of OrderID/PendingOrderID is set: items staged for an online payment point
// at the pending row until promotion re-points them at the confirmed order.
type OrderItem struct {
	ID             int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderID        *int64 `gorm:"column:order_id;index" json:"order_id,omitempty"`
	PendingOrderID *int64 `gorm:"column:pending_order_id;index" json:"pending_order_id,omitempty"`

	ProductID   int64           `gorm:"column:product_id;not null" json:"product_id"`
	ProductName string          `gorm:"column:product_name;not null" json:"product_name"`
	ImageURL    string          `gorm:"column:image_url" json:"image_url"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null" json:"unit_price"`
	Quantity    int             `gorm:"column:quantity;not null" json:"quantity"`
	Tax         decimal.Decimal `gorm:"column:tax;type:numeric(12,2);default:0" json:"tax"`
	LineTotal   decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null" json:"line_total"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (OrderItem) TableName() string { return "order_items" }
