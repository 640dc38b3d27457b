package models

import "time"

// Address is a saved delivery address. Orders copy its fields by value at
// creation time, so editing an address never rewrites order history.
type Address struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CustomerID int64     `gorm:"column:customer_id;index;not null" json:"customer_id"`
	Street     string    `gorm:"column:street;not null" json:"street"`
	City       string    `gorm:"column:city" json:"city"`
	Pincode    string    `gorm:"column:pincode;not null" json:"pincode"`
	HouseNo    string    `gorm:"column:house_no" json:"house_no"`
	Type       string    `gorm:"column:type;default:'home'" json:"type"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Address) TableName() string { return "addresses" }
