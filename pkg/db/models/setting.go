package models

import "time"

// Setting is a single store-level configuration row.
// Known keys: shipping_threshold, shipping_charge, cod_fee.
type Setting struct {
	Key       string    `gorm:"column:key;primaryKey" json:"key"`
	Value     string    `gorm:"column:value;not null" json:"value"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Setting) TableName() string { return "settings" }
