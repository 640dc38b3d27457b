package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/medbasket/medbasket-backend/pkg/enums"
)

// Prescription holds up to five uploaded prescription images.
type Prescription struct {
	ID         uuid.UUID                `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CustomerID int64                    `gorm:"column:customer_id;index;not null" json:"customer_id"`
	OrderCode  string                   `gorm:"column:order_code;uniqueIndex;not null" json:"order_code"`
	ImageURLs  []string                 `gorm:"column:image_urls;type:jsonb;serializer:json" json:"image_urls"`
	Status     enums.PrescriptionStatus `gorm:"column:status;not null;default:'pending'" json:"status"`
	CreatedAt  time.Time                `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time                `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Prescription) TableName() string { return "prescriptions" }
