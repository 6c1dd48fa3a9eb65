package models

import (
	"time"
)

const (
	OrderTypeDineIn   = "dine_in"
	OrderTypeTakeaway = "takeaway"
	OrderTypeDelivery = "delivery"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusPreparing  = "preparing"
	OrderStatusReady      = "ready"
	OrderStatusServed     = "served"
	OrderStatusDelivering = "delivering"
	OrderStatusCompleted  = "completed"
	OrderStatusCanceled   = "canceled"
)

// Order is immutable after creation except for Status and UpdatedAt.
type Order struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	RestaurantID  uint        `gorm:"not null;index" json:"restaurant_id"`
	SessionID     *string     `gorm:"type:varchar(36);index" json:"session_id,omitempty"`
	TableID       *uint       `gorm:"index" json:"table_id,omitempty"`
	OrderType     string      `gorm:"type:varchar(20);not null;default:'dine_in'" json:"order_type"`
	Status        string      `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Subtotal      int64       `gorm:"not null;default:0" json:"subtotal"`
	DiscountTotal int64       `gorm:"not null;default:0" json:"discount_total"`
	DeliveryFee   int64       `gorm:"not null;default:0" json:"delivery_fee"`
	Total         int64       `gorm:"not null;default:0" json:"total"`
	Notes         string      `gorm:"type:text" json:"notes"`
	OrderItems    []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`
	CreatedAt     time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"not null" json:"updated_at"`
}

func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusCanceled
}
