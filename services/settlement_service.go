package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-ordering/events"
	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/utils"
	"gorm.io/gorm"
)

type SettlementService struct {
	Deps
}

func NewSettlementService(d Deps) *SettlementService {
	return &SettlementService{Deps: d.withDefaults()}
}

type SettlementResult struct {
	SessionID        string `json:"session_id"`
	AlreadyClosed    bool   `json:"already_closed"`
	OrdersCompleted  int64  `json:"orders_completed"`
	CartItemsCleared int64  `json:"cart_items_cleared"`
}

// SettleBill completes every open order of a session, empties its cart and
// closes it, all in one transaction. Settling a closed session changes nothing.
func (s *SettlementService) SettleBill(ctx context.Context, staffID, restaurantID uint, sessionID string) (*SettlementResult, error) {
	if restaurantID == 0 || !utils.IsValidSessionID(sessionID) {
		return nil, ErrInvalidIdentifier
	}
	if err := s.authorize(ctx, staffID, restaurantID); err != nil {
		return nil, err
	}

	result := SettlementResult{SessionID: sessionID}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := lockSession(tx, sessionID)
		if err != nil {
			return err
		}
		if session.RestaurantID != restaurantID {
			return ErrSessionNotFound
		}
		if session.IsClosed() {
			result.AlreadyClosed = true
			return nil
		}
		now := s.Clock.Now()

		res := tx.Model(&models.Order{}).
			Where("session_id = ? AND restaurant_id = ? AND status NOT IN ?", session.ID, restaurantID, terminalOrderStatuses()).
			Updates(map[string]interface{}{
				"status":     models.OrderStatusCompleted,
				"updated_at": now,
			})
		if res.Error != nil {
			return fmt.Errorf("complete orders: %w", res.Error)
		}
		result.OrdersCompleted = res.RowsAffected

		res = tx.Where("session_id = ?", session.ID).Delete(&models.SessionCartItem{})
		if res.Error != nil {
			return fmt.Errorf("clear cart: %w", res.Error)
		}
		result.CartItemsCleared = res.RowsAffected

		closedBy := staffID
		if err := tx.Model(session).Updates(map[string]interface{}{
			"status":     models.SessionStatusClosed,
			"closed_at":  now,
			"closed_by":  closedBy,
			"updated_at": now,
		}).Error; err != nil {
			return fmt.Errorf("close session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadyClosed {
		utils.InfoLogger.WithFields(logrus.Fields{
			"session_id":       sessionID,
			"staff_id":         staffID,
			"orders_completed": result.OrdersCompleted,
		}).Info("Bill settled")
		s.publish(ctx, events.EventBillSettled, restaurantID, result)
	}
	return &result, nil
}
