package models

import (
	"time"
)

const (
	SessionStatusOpen              = "open"
	SessionStatusRequestingClosure = "requesting_closure"
	SessionStatusClosed            = "closed"
)

// Session is one dining visit at a table. The ID is chosen by the client (UUIDv4)
// so that retried create requests are idempotent.
type Session struct {
	ID           string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	RestaurantID uint       `gorm:"not null;index:idx_sessions_restaurant_device" json:"restaurant_id"`
	TableID      uint       `gorm:"not null;index" json:"table_id"`
	Table        Table      `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	DeviceID     *string    `gorm:"type:varchar(36);index:idx_sessions_restaurant_device" json:"device_id,omitempty"`
	Status       string     `gorm:"type:varchar(20);not null;default:'open'" json:"status"`
	ExpiresAt    time.Time  `gorm:"not null;index" json:"expires_at"`
	ClosedAt     *time.Time `json:"closed_at,omitempty"`
	ClosedBy     *uint      `json:"closed_by,omitempty"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}

func (s *Session) IsClosed() bool {
	return s.Status == SessionStatusClosed
}

// IsLive reports whether the session still holds its table at the given instant.
func (s *Session) IsLive(now time.Time) bool {
	return !s.IsClosed() && s.ExpiresAt.After(now)
}
