package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-ordering/events"
	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/utils"
	"gorm.io/gorm"
)

// ExpirySweeper periodically purges expired sessions with their cart lines and
// retires abandoned table carts. Overlapping runs are harmless: deleting rows
// that are already gone is a no-op.
type ExpirySweeper struct {
	Deps
	StopChan         chan struct{}
	Interval         time.Duration
	BatchSize        int
	AbandonedCartTTL time.Duration

	stopOnce sync.Once
	done     chan struct{}
}

type SweepResult struct {
	DeletedSessions  int64 `json:"deleted_sessions"`
	DeletedCartItems int64 `json:"deleted_cart_items"`
	// Full is set when the batch limit was reached and more rows may be waiting.
	Full bool `json:"-"`
}

func NewExpirySweeper(d Deps, interval time.Duration, batchSize int, abandonedCartTTL time.Duration) *ExpirySweeper {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if abandonedCartTTL <= 0 {
		abandonedCartTTL = 24 * time.Hour
	}
	return &ExpirySweeper{
		Deps:             d.withDefaults(),
		StopChan:         make(chan struct{}),
		Interval:         interval,
		BatchSize:        batchSize,
		AbandonedCartTTL: abandonedCartTTL,
		done:             make(chan struct{}),
	}
}

func (es *ExpirySweeper) Start() {
	go func() {
		defer close(es.done)
		ticker := time.NewTicker(es.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				es.Run(context.Background())
			case <-es.StopChan:
				return
			}
		}
	}()
}

// Stop ends the loop and waits for an in-flight run to finish.
func (es *ExpirySweeper) Stop() {
	es.stopOnce.Do(func() {
		close(es.StopChan)
	})
	<-es.done
}

// Run sweeps until a batch comes back short, then retires abandoned table carts.
func (es *ExpirySweeper) Run(ctx context.Context) {
	for {
		res, err := es.SweepExpiredSessions(ctx)
		if err != nil {
			utils.ErrorLogger.Errorf("Expired session sweep failed: %v", err)
			break
		}
		if !res.Full {
			break
		}
		select {
		case <-es.StopChan:
			return
		default:
		}
	}

	for {
		n, err := es.SweepAbandonedTableCarts(ctx)
		if err != nil {
			utils.ErrorLogger.Errorf("Abandoned cart sweep failed: %v", err)
			return
		}
		if n < int64(es.BatchSize) {
			return
		}
		select {
		case <-es.StopChan:
			return
		default:
		}
	}
}

// SweepExpiredSessions deletes one batch of unclosed sessions whose expiry has
// passed, together with their cart lines. Closed sessions stay for history and
// keep their ids from being reused.
func (es *ExpirySweeper) SweepExpiredSessions(ctx context.Context) (*SweepResult, error) {
	now := es.Clock.Now()
	var expired []models.Session
	if err := es.DB.WithContext(ctx).Select("id", "restaurant_id").
		Where("expires_at < ? AND status <> ?", now, models.SessionStatusClosed).
		Order("expires_at").Limit(es.BatchSize).
		Find(&expired).Error; err != nil {
		return nil, fmt.Errorf("find expired sessions: %w", err)
	}
	result := &SweepResult{Full: len(expired) == es.BatchSize}
	if len(expired) == 0 {
		return result, nil
	}

	ids := make([]string, 0, len(expired))
	perRestaurant := make(map[uint][]string)
	for _, s := range expired {
		ids = append(ids, s.ID)
		perRestaurant[s.RestaurantID] = append(perRestaurant[s.RestaurantID], s.ID)
	}

	err := es.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("session_id IN ?", ids).Delete(&models.SessionCartItem{})
		if res.Error != nil {
			return fmt.Errorf("delete cart lines: %w", res.Error)
		}
		result.DeletedCartItems = res.RowsAffected

		res = tx.Where("id IN ? AND expires_at < ? AND status <> ?", ids, now, models.SessionStatusClosed).
			Delete(&models.Session{})
		if res.Error != nil {
			return fmt.Errorf("delete sessions: %w", res.Error)
		}
		result.DeletedSessions = res.RowsAffected
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.DeletedSessions > 0 {
		utils.InfoLogger.WithFields(logrus.Fields{
			"sessions":   result.DeletedSessions,
			"cart_items": result.DeletedCartItems,
		}).Info("Expired sessions swept")
		for restaurantID, sessionIDs := range perRestaurant {
			es.publish(ctx, events.EventSessionsExpired, restaurantID, sessionIDs)
		}
	}
	return result, nil
}

// SweepAbandonedTableCarts deactivates one batch of active table carts that have
// not changed for AbandonedCartTTL and deletes their lines.
func (es *ExpirySweeper) SweepAbandonedTableCarts(ctx context.Context) (int64, error) {
	cutoff := es.Clock.Now().Add(-es.AbandonedCartTTL)
	var carts []models.TableCart
	if err := es.DB.WithContext(ctx).Select("id", "restaurant_id").
		Where("is_active = ? AND last_activity_at < ?", true, cutoff).
		Order("last_activity_at").Limit(es.BatchSize).
		Find(&carts).Error; err != nil {
		return 0, fmt.Errorf("find abandoned carts: %w", err)
	}
	if len(carts) == 0 {
		return 0, nil
	}

	ids := make([]uint, 0, len(carts))
	for _, c := range carts {
		ids = append(ids, c.ID)
	}

	var retired int64
	err := es.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.TableCart{}).
			Where("id IN ? AND is_active = ? AND last_activity_at < ?", ids, true, cutoff).
			Updates(map[string]interface{}{
				"is_active":  false,
				"updated_at": es.Clock.Now(),
			})
		if res.Error != nil {
			return fmt.Errorf("deactivate carts: %w", res.Error)
		}
		retired = res.RowsAffected
		retiredIDs := tx.Model(&models.TableCart{}).Select("id").Where("id IN ? AND is_active = ?", ids, false)
		if err := tx.Where("cart_id IN (?)", retiredIDs).Delete(&models.TableCartItem{}).Error; err != nil {
			return fmt.Errorf("delete cart lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if retired > 0 {
		utils.InfoLogger.WithField("carts", retired).Info("Abandoned table carts retired")
		for _, c := range carts {
			es.publish(ctx, events.EventTableCartsAbandoned, c.RestaurantID, c.ID)
		}
	}
	return int64(len(carts)), nil
}
