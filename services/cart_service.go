package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/utils"
	"gorm.io/gorm"
)

// CartService manages the per-session cart.
type CartService struct {
	Deps
}

func NewCartService(d Deps) *CartService {
	return &CartService{Deps: d.withDefaults()}
}

type AddToCartInput struct {
	SessionID      string                   `json:"-"`
	MenuID         uint                     `json:"menu_id"`
	Quantity       int                      `json:"quantity"`
	Customizations []CustomizationSelection `json:"customizations"`
}

type CartView struct {
	SessionID string                   `json:"session_id"`
	Items     []models.SessionCartItem `json:"items"`
	Subtotal  int64                    `json:"subtotal"`
}

// AddToSessionCart adds quantity to the line with the same item and the same
// customization selection, or creates a new line. The session row is locked so
// concurrent adds of the same line merge instead of duplicating.
func (s *CartService) AddToSessionCart(ctx context.Context, in AddToCartInput) (*models.SessionCartItem, error) {
	if !utils.IsValidSessionID(in.SessionID) || in.MenuID == 0 {
		return nil, ErrInvalidIdentifier
	}
	if in.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if in.Quantity > s.Limits.MaxLineQuantity {
		return nil, fmt.Errorf("%w: at most %d per line", ErrQuantityLimitExceeded, s.Limits.MaxLineQuantity)
	}

	var line models.SessionCartItem
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := lockSession(tx, in.SessionID)
		if err != nil {
			return err
		}
		now := s.Clock.Now()
		if err := acceptsCartChanges(session, now); err != nil {
			return err
		}

		item, err := resolveMenuItem(tx, session.RestaurantID, in.MenuID)
		if err != nil {
			return err
		}
		mods, err := item.ResolveCustomizations(in.Customizations)
		if err != nil {
			return err
		}

		var lines []models.SessionCartItem
		if err := tx.Where("session_id = ? AND menu_id = ?", session.ID, in.MenuID).
			Order("id").Find(&lines).Error; err != nil {
			return fmt.Errorf("load cart lines: %w", err)
		}
		for i := range lines {
			if !lines[i].Customizations.SameSelection(mods) {
				continue
			}
			qty := lines[i].Quantity + in.Quantity
			if qty > s.Limits.MaxLineQuantity {
				return fmt.Errorf("%w: at most %d per line", ErrQuantityLimitExceeded, s.Limits.MaxLineQuantity)
			}
			if err := tx.Model(&lines[i]).Updates(map[string]interface{}{
				"quantity":   qty,
				"updated_at": now,
			}).Error; err != nil {
				return fmt.Errorf("update cart line: %w", err)
			}
			lines[i].Quantity = qty
			lines[i].UpdatedAt = now
			line = lines[i]
			return nil
		}

		line = models.SessionCartItem{
			SessionID:      session.ID,
			MenuID:         item.ID,
			Quantity:       in.Quantity,
			UnitPrice:      item.Price + mods.Surcharge(),
			Customizations: mods,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tx.Create(&line).Error; err != nil {
			return fmt.Errorf("create cart line: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"session_id": in.SessionID,
		"menu_id":    in.MenuID,
		"quantity":   line.Quantity,
	}).Debug("Cart line saved")
	return &line, nil
}

func (s *CartService) GetSessionCart(ctx context.Context, sessionID string) (*CartView, error) {
	if !utils.IsValidSessionID(sessionID) {
		return nil, ErrInvalidIdentifier
	}
	db := s.DB.WithContext(ctx)
	if _, err := findSession(db, sessionID); err != nil {
		return nil, err
	}

	view := CartView{SessionID: sessionID, Items: []models.SessionCartItem{}}
	if err := db.Where("session_id = ?", sessionID).Order("id").Find(&view.Items).Error; err != nil {
		return nil, fmt.Errorf("load cart lines: %w", err)
	}
	for _, it := range view.Items {
		view.Subtotal += it.UnitPrice * int64(it.Quantity)
	}
	return &view, nil
}

// ClearSessionCart deletes every line of the session cart in one statement and
// returns how many were removed.
func (s *CartService) ClearSessionCart(ctx context.Context, sessionID string) (int64, error) {
	if !utils.IsValidSessionID(sessionID) {
		return 0, ErrInvalidIdentifier
	}

	var deleted int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockSession(tx, sessionID); err != nil {
			return err
		}
		res := tx.Where("session_id = ?", sessionID).Delete(&models.SessionCartItem{})
		if res.Error != nil {
			return fmt.Errorf("clear cart: %w", res.Error)
		}
		deleted = res.RowsAffected
		return nil
	})
	return deleted, err
}
