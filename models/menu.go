package models

import "time"

// Menu is a single orderable item. Prices are stored in minor currency units.
type Menu struct {
	ID                 uint         `gorm:"primaryKey" json:"id"`
	RestaurantID       uint         `gorm:"not null;index" json:"restaurant_id"`
	Name               string       `gorm:"type:varchar(255);not null" json:"name"`
	Price              int64        `gorm:"not null" json:"price"`
	DiscountPercentage int          `gorm:"not null;default:0" json:"discount_percentage"`
	IsActive           bool         `gorm:"not null;default:true" json:"is_active"`
	Options            []MenuOption `gorm:"foreignKey:MenuID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"options,omitempty"`
	CreatedAt          time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time    `gorm:"not null" json:"updated_at"`
}

// MenuOption is one selectable customization, e.g. group "Topping", option "Extra cheese".
type MenuOption struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	MenuID     uint   `gorm:"not null;index" json:"menu_id"`
	GroupName  string `gorm:"type:varchar(100);not null" json:"group_name"`
	OptionName string `gorm:"type:varchar(100);not null" json:"option_name"`
	Price      int64  `gorm:"not null;default:0" json:"price"`
}
