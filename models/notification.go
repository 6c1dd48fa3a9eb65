package models

import (
	"time"
)

// Notification is a row in the staff inbox of a restaurant.
type Notification struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RestaurantID uint      `gorm:"not null;index" json:"restaurant_id"`
	TableID      *uint     `json:"table_id,omitempty"`
	SessionID    *string   `gorm:"type:varchar(36)" json:"session_id,omitempty"`
	Title        *string   `gorm:"type:varchar(100)" json:"title,omitempty"`
	Message      string    `gorm:"type:text;not null" json:"message"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}
