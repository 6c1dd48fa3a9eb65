package models

import (
	"time"
)

// Customization is one selected option on a cart or order line.
type Customization struct {
	Group  string `json:"group"`
	Option string `json:"option"`
	Price  int64  `json:"price"`
}

type Customizations []Customization

// Surcharge is the sum of the option prices.
func (cs Customizations) Surcharge() int64 {
	var total int64
	for _, c := range cs {
		total += c.Price
	}
	return total
}

// SameSelection reports whether both lists select the same (group, option) pairs
// in the same order. Prices are not compared.
func (cs Customizations) SameSelection(other Customizations) bool {
	if len(cs) != len(other) {
		return false
	}
	for i := range cs {
		if cs[i].Group != other[i].Group || cs[i].Option != other[i].Option {
			return false
		}
	}
	return true
}

// SessionCartItem is one (menu item, customization set) line of a session cart.
type SessionCartItem struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	SessionID      string         `gorm:"type:varchar(36);not null;index" json:"session_id"`
	MenuID         uint           `gorm:"not null" json:"menu_id"`
	Quantity       int            `gorm:"not null" json:"quantity"`
	UnitPrice      int64          `gorm:"not null" json:"unit_price"`
	Customizations Customizations `gorm:"serializer:json;type:text" json:"customizations"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
}

// TableCart is the header of the table-scoped cart. Cleared carts are
// deactivated instead of deleted so they stay addressable.
type TableCart struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	RestaurantID   uint            `gorm:"not null;index:idx_table_carts_table" json:"restaurant_id"`
	TableID        uint            `gorm:"not null;index:idx_table_carts_table" json:"table_id"`
	IsActive       bool            `gorm:"not null;default:true" json:"is_active"`
	LastActivityAt time.Time       `gorm:"not null;index" json:"last_activity_at"`
	Items          []TableCartItem `gorm:"foreignKey:CartID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"items"`
	CreatedAt      time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null" json:"updated_at"`
}

type TableCartItem struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	CartID         uint           `gorm:"not null;index" json:"cart_id"`
	MenuID         uint           `gorm:"not null" json:"menu_id"`
	Quantity       int            `gorm:"not null" json:"quantity"`
	UnitPrice      int64          `gorm:"not null" json:"unit_price"`
	Customizations Customizations `gorm:"serializer:json;type:text" json:"customizations"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
}
