package services

import (
	"context"
	"fmt"

	"github.com/yeremiapane/restaurant-ordering/models"
)

// NotificationService reads the staff inbox. Rows are written by the
// operations that raise them, inside their own transactions.
type NotificationService struct {
	Deps
}

func NewNotificationService(d Deps) *NotificationService {
	return &NotificationService{Deps: d.withDefaults()}
}

// ListNotifications returns the newest notifications of a restaurant first.
func (s *NotificationService) ListNotifications(ctx context.Context, staffID, restaurantID uint, limit int) ([]models.Notification, error) {
	if restaurantID == 0 {
		return nil, ErrInvalidIdentifier
	}
	if err := s.authorize(ctx, staffID, restaurantID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	notifications := []models.Notification{}
	if err := s.DB.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("created_at DESC, id DESC").Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("load notifications: %w", err)
	}
	return notifications, nil
}
