package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-ordering/events"
	"github.com/yeremiapane/restaurant-ordering/utils"
	"gorm.io/gorm"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Limits are the fixed policy ceilings of the ordering core.
type Limits struct {
	SessionDuration             time.Duration
	MaxSessionsPerDevicePerHour int
	MaxSessionsPerTable         int
	MaxLineQuantity             int
	MaxOrderLines               int
	MaxNoteLength               int
}

func DefaultLimits() Limits {
	return Limits{
		SessionDuration:             4 * time.Hour,
		MaxSessionsPerDevicePerHour: 5,
		MaxSessionsPerTable:         20,
		MaxLineQuantity:             99,
		MaxOrderLines:               50,
		MaxNoteLength:               500,
	}
}

// Deps is shared by every service. Zero fields are replaced with defaults.
type Deps struct {
	DB         *gorm.DB
	Clock      Clock
	Limits     Limits
	Publisher  events.Publisher
	Authorizer StaffAuthorizer
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = SystemClock{}
	}
	def := DefaultLimits()
	if d.Limits.SessionDuration <= 0 {
		d.Limits.SessionDuration = def.SessionDuration
	}
	if d.Limits.MaxSessionsPerDevicePerHour <= 0 {
		d.Limits.MaxSessionsPerDevicePerHour = def.MaxSessionsPerDevicePerHour
	}
	if d.Limits.MaxSessionsPerTable <= 0 {
		d.Limits.MaxSessionsPerTable = def.MaxSessionsPerTable
	}
	if d.Limits.MaxLineQuantity <= 0 {
		d.Limits.MaxLineQuantity = def.MaxLineQuantity
	}
	if d.Limits.MaxOrderLines <= 0 {
		d.Limits.MaxOrderLines = def.MaxOrderLines
	}
	if d.Limits.MaxNoteLength <= 0 {
		d.Limits.MaxNoteLength = def.MaxNoteLength
	}
	if d.Publisher == nil {
		d.Publisher = events.NopPublisher{}
	}
	if d.Authorizer == nil && d.DB != nil {
		d.Authorizer = NewGormStaffAuthorizer(d.DB)
	}
	return d
}

// publish runs after commit; a delivery failure does not undo the committed change.
func (d Deps) publish(ctx context.Context, eventType string, restaurantID uint, data interface{}) {
	evt := events.Event{
		Type:         eventType,
		RestaurantID: restaurantID,
		OccurredAt:   d.Clock.Now(),
		Data:         data,
	}
	if err := d.Publisher.Publish(ctx, evt); err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{
			"event":         eventType,
			"restaurant_id": restaurantID,
		}).Errorf("Failed to publish event: %v", err)
	}
}

func (d Deps) authorize(ctx context.Context, staffID, restaurantID uint) error {
	if staffID == 0 || restaurantID == 0 {
		return ErrNotAuthorized
	}
	ok, err := d.Authorizer.ManagesRestaurant(ctx, staffID, restaurantID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAuthorized
	}
	return nil
}
