package services

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-ordering/models"
	"gorm.io/gorm"
)

// CustomizationSelection is what a client sends for a customization. Prices are
// never taken from the client.
type CustomizationSelection struct {
	Group  string `json:"group"`
	Option string `json:"option"`
}

// DiscountedPrice applies a percentage discount, rounding half away from zero.
// Percentages outside (0, 100] leave the price unchanged.
func DiscountedPrice(price int64, pct int) int64 {
	if pct <= 0 || pct > 100 {
		return price
	}
	return decimal.NewFromInt(price).
		Mul(decimal.NewFromInt(int64(100 - pct))).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// MenuSnapshot is a menu item as read inside the current transaction.
type MenuSnapshot struct {
	models.Menu
}

func (m MenuSnapshot) DiscountedPrice() int64 {
	return DiscountedPrice(m.Price, m.DiscountPercentage)
}

// ResolveCustomizations looks up every selected (group, option) pair among the
// item's options and returns them priced from the store, preserving order.
func (m MenuSnapshot) ResolveCustomizations(selected []CustomizationSelection) (models.Customizations, error) {
	if len(selected) == 0 {
		return models.Customizations{}, nil
	}
	resolved := make(models.Customizations, 0, len(selected))
	for _, sel := range selected {
		opt, ok := m.findOption(sel.Group, sel.Option)
		if !ok {
			return nil, fmt.Errorf("%w: %q/%q is not offered for %s", ErrInvalidCustomization, sel.Group, sel.Option, m.Name)
		}
		resolved = append(resolved, models.Customization{
			Group:  opt.GroupName,
			Option: opt.OptionName,
			Price:  opt.Price,
		})
	}
	return resolved, nil
}

func (m MenuSnapshot) findOption(group, option string) (models.MenuOption, bool) {
	for _, o := range m.Options {
		if o.GroupName == group && o.OptionName == option {
			return o, true
		}
	}
	return models.MenuOption{}, false
}

// resolveMenuItems loads the requested items of one restaurant with a single query.
// Any id that is missing, inactive, or owned by another restaurant fails with
// ErrItemUnavailable naming the first such id in request order.
func resolveMenuItems(tx *gorm.DB, restaurantID uint, ids []uint) (map[uint]MenuSnapshot, error) {
	unique := make([]uint, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	var menus []models.Menu
	if len(unique) > 0 {
		if err := tx.Preload("Options").Where("id IN ?", unique).Find(&menus).Error; err != nil {
			return nil, fmt.Errorf("load menu items: %w", err)
		}
	}

	byID := make(map[uint]MenuSnapshot, len(menus))
	for _, m := range menus {
		byID[m.ID] = MenuSnapshot{Menu: m}
	}
	for _, id := range unique {
		snap, ok := byID[id]
		if !ok || !snap.IsActive || snap.RestaurantID != restaurantID {
			return nil, fmt.Errorf("%w: menu item %d", ErrItemUnavailable, id)
		}
	}
	return byID, nil
}

// resolveMenuItem is resolveMenuItems for a single id.
func resolveMenuItem(tx *gorm.DB, restaurantID, id uint) (MenuSnapshot, error) {
	items, err := resolveMenuItems(tx, restaurantID, []uint{id})
	if err != nil {
		return MenuSnapshot{}, err
	}
	return items[id], nil
}

// asSelections strips prices so that stored customizations can be priced again.
func asSelections(cs models.Customizations) []CustomizationSelection {
	out := make([]CustomizationSelection, 0, len(cs))
	for _, c := range cs {
		out = append(out, CustomizationSelection{Group: c.Group, Option: c.Option})
	}
	return out
}

func selectionKey(sel []CustomizationSelection) models.Customizations {
	out := make(models.Customizations, 0, len(sel))
	for _, s := range sel {
		out = append(out, models.Customization{Group: s.Group, Option: s.Option})
	}
	return out
}
