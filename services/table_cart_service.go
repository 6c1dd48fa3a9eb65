package services

import (
	"context"
	"fmt"

	"github.com/yeremiapane/restaurant-ordering/models"
	"gorm.io/gorm"
)

// TableCartService manages the cart shared by everyone at a table. Unlike the
// session cart it takes signed quantity deltas.
type TableCartService struct {
	Deps
}

func NewTableCartService(d Deps) *TableCartService {
	return &TableCartService{Deps: d.withDefaults()}
}

type TableCartInput struct {
	RestaurantID   uint                     `json:"-"`
	TableID        uint                     `json:"-"`
	MenuID         uint                     `json:"menu_id"`
	Delta          int                      `json:"quantity"`
	Customizations []CustomizationSelection `json:"customizations"`
}

// AddToTableCart adds Delta to the matching line. A line that drops to zero or
// below is removed. Decrements do not require the item to be orderable.
func (s *TableCartService) AddToTableCart(ctx context.Context, in TableCartInput) (*models.TableCart, error) {
	if in.RestaurantID == 0 || in.TableID == 0 || in.MenuID == 0 {
		return nil, ErrInvalidIdentifier
	}
	if in.Delta == 0 {
		return nil, ErrInvalidQuantity
	}
	if in.Delta > s.Limits.MaxLineQuantity {
		return nil, fmt.Errorf("%w: at most %d per line", ErrQuantityLimitExceeded, s.Limits.MaxLineQuantity)
	}

	var cart models.TableCart
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockTable(tx, in.RestaurantID, in.TableID); err != nil {
			return err
		}
		now := s.Clock.Now()

		found, err := findActiveTableCart(tx, in.RestaurantID, in.TableID)
		if err != nil {
			return err
		}
		if found == nil {
			if in.Delta < 0 {
				return fmt.Errorf("%w: nothing to remove", ErrInvalidQuantity)
			}
			found = &models.TableCart{
				RestaurantID:   in.RestaurantID,
				TableID:        in.TableID,
				IsActive:       true,
				LastActivityAt: now,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if err := tx.Create(found).Error; err != nil {
				return fmt.Errorf("create table cart: %w", err)
			}
		}

		var (
			item MenuSnapshot
			mods models.Customizations
		)
		if in.Delta > 0 {
			if item, err = resolveMenuItem(tx, in.RestaurantID, in.MenuID); err != nil {
				return err
			}
			if mods, err = item.ResolveCustomizations(in.Customizations); err != nil {
				return err
			}
		} else {
			mods = selectionKey(in.Customizations)
		}

		var lines []models.TableCartItem
		if err := tx.Where("cart_id = ? AND menu_id = ?", found.ID, in.MenuID).Order("id").Find(&lines).Error; err != nil {
			return fmt.Errorf("load table cart lines: %w", err)
		}
		var line *models.TableCartItem
		for i := range lines {
			if lines[i].Customizations.SameSelection(mods) {
				line = &lines[i]
				break
			}
		}

		switch {
		case line == nil && in.Delta < 0:
			return fmt.Errorf("%w: nothing to remove", ErrInvalidQuantity)
		case line == nil:
			created := models.TableCartItem{
				CartID:         found.ID,
				MenuID:         item.ID,
				Quantity:       in.Delta,
				UnitPrice:      item.Price + mods.Surcharge(),
				Customizations: mods,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if err := tx.Create(&created).Error; err != nil {
				return fmt.Errorf("create table cart line: %w", err)
			}
		case line.Quantity+in.Delta <= 0:
			if err := tx.Delete(line).Error; err != nil {
				return fmt.Errorf("delete table cart line: %w", err)
			}
		case line.Quantity+in.Delta > s.Limits.MaxLineQuantity:
			return fmt.Errorf("%w: at most %d per line", ErrQuantityLimitExceeded, s.Limits.MaxLineQuantity)
		default:
			if err := tx.Model(line).Updates(map[string]interface{}{
				"quantity":   line.Quantity + in.Delta,
				"updated_at": now,
			}).Error; err != nil {
				return fmt.Errorf("update table cart line: %w", err)
			}
		}

		if err := tx.Model(found).Updates(map[string]interface{}{
			"last_activity_at": now,
			"updated_at":       now,
		}).Error; err != nil {
			return fmt.Errorf("touch table cart: %w", err)
		}
		return tx.Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		}).First(&cart, found.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetTableCart returns the active cart of a table. A table without one gets an
// empty, unsaved cart.
func (s *TableCartService) GetTableCart(ctx context.Context, restaurantID, tableID uint) (*models.TableCart, error) {
	if restaurantID == 0 || tableID == 0 {
		return nil, ErrInvalidIdentifier
	}
	db := s.DB.WithContext(ctx)
	var count int64
	if err := db.Model(&models.Table{}).Where("id = ? AND restaurant_id = ?", tableID, restaurantID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("load table: %w", err)
	}
	if count == 0 {
		return nil, ErrTableNotFound
	}

	cart, err := findActiveTableCart(db, restaurantID, tableID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return &models.TableCart{RestaurantID: restaurantID, TableID: tableID, Items: []models.TableCartItem{}}, nil
	}
	if err := db.Where("cart_id = ?", cart.ID).Order("id").Find(&cart.Items).Error; err != nil {
		return nil, fmt.Errorf("load table cart lines: %w", err)
	}
	return cart, nil
}

// ClearTableCart removes all lines and deactivates the cart header.
func (s *TableCartService) ClearTableCart(ctx context.Context, restaurantID, tableID uint) (int64, error) {
	if restaurantID == 0 || tableID == 0 {
		return 0, ErrInvalidIdentifier
	}

	var deleted int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockTable(tx, restaurantID, tableID); err != nil {
			return err
		}
		cart, err := findActiveTableCart(tx, restaurantID, tableID)
		if err != nil || cart == nil {
			return err
		}
		res := tx.Where("cart_id = ?", cart.ID).Delete(&models.TableCartItem{})
		if res.Error != nil {
			return fmt.Errorf("clear table cart: %w", res.Error)
		}
		deleted = res.RowsAffected
		now := s.Clock.Now()
		return tx.Model(cart).Updates(map[string]interface{}{
			"is_active":        false,
			"last_activity_at": now,
			"updated_at":       now,
		}).Error
	})
	return deleted, err
}

func findActiveTableCart(tx *gorm.DB, restaurantID, tableID uint) (*models.TableCart, error) {
	var cart models.TableCart
	res := tx.Where("restaurant_id = ? AND table_id = ? AND is_active = ?", restaurantID, tableID, true).
		Order("id DESC").Limit(1).Find(&cart)
	if res.Error != nil {
		return nil, fmt.Errorf("load table cart: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &cart, nil
}
