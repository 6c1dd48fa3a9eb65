package models

import (
	"time"
)

// OrderItem freezes name and prices as they were when the order was submitted.
type OrderItem struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OrderID uint `gorm:"not null;index" json:"order_id"`
	// Omitting Order field from JSON to avoid recursive nesting
	Order          Order          `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	MenuID         uint           `gorm:"not null" json:"menu_id"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	Quantity       int            `gorm:"not null" json:"quantity"`
	UnitPrice      int64          `gorm:"not null" json:"unit_price"`
	LineTotal      int64          `gorm:"not null" json:"line_total"`
	Customizations Customizations `gorm:"serializer:json;type:text" json:"customizations"`
	Notes          string         `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
}
