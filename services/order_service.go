package services

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-ordering/events"
	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/utils"
	"gorm.io/gorm"
)

type OrderService struct {
	Deps
}

func NewOrderService(d Deps) *OrderService {
	return &OrderService{Deps: d.withDefaults()}
}

type OrderItemInput struct {
	MenuID         uint                     `json:"menu_id"`
	Quantity       int                      `json:"quantity"`
	Notes          string                   `json:"notes"`
	Customizations []CustomizationSelection `json:"customizations"`
}

type SubmitOrderInput struct {
	RestaurantID uint             `json:"-"`
	TableID      uint             `json:"-"`
	SessionID    string           `json:"session_id"`
	OrderType    string           `json:"order_type"`
	Items        []OrderItemInput `json:"items"`
	Notes        string           `json:"notes"`
}

type SubmitCartOrderInput struct {
	RestaurantID uint
	TableID      uint
	SessionID    string
	Notes        string
}

type StatusChange struct {
	OrderID uint   `json:"order_id"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// SubmitOrder prices the given lines against the current menu and stores the
// order with its items in one transaction.
func (s *OrderService) SubmitOrder(ctx context.Context, in SubmitOrderInput) (*models.Order, error) {
	if in.OrderType == "" {
		in.OrderType = models.OrderTypeDineIn
	}
	if err := s.validateHeader(in.RestaurantID, in.TableID, in.SessionID, in.OrderType, in.Notes); err != nil {
		return nil, err
	}
	if err := s.validateItems(in.Items); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		restaurant, err := loadRestaurant(tx, in.RestaurantID)
		if err != nil {
			return err
		}

		var (
			sessionID *string
			tableID   *uint
		)
		switch {
		case in.OrderType == models.OrderTypeDineIn:
			session, err := lockSession(tx, in.SessionID)
			if err != nil {
				return err
			}
			if err := s.acceptsOrders(session, in.RestaurantID, in.TableID); err != nil {
				return err
			}
			sessionID = &session.ID
			tableID = &session.TableID
		case in.TableID != 0:
			// takeaway or delivery placed from a table's code
			table, err := findTable(tx, in.RestaurantID, in.TableID)
			if err != nil {
				return err
			}
			tableID = &table.ID
		}

		order, err = s.placeOrder(tx, restaurant, sessionID, tableID, in.OrderType, in.Notes, in.Items)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logSubmitted(order)
	s.publish(ctx, events.EventOrderSubmitted, order.RestaurantID, order)
	return order, nil
}

// SubmitCartOrder turns the session cart into a dine-in order and empties the
// cart in the same transaction. Cart prices are not reused; lines are priced again.
func (s *OrderService) SubmitCartOrder(ctx context.Context, in SubmitCartOrderInput) (*models.Order, error) {
	if err := s.validateHeader(in.RestaurantID, in.TableID, in.SessionID, models.OrderTypeDineIn, in.Notes); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		restaurant, err := loadRestaurant(tx, in.RestaurantID)
		if err != nil {
			return err
		}
		session, err := lockSession(tx, in.SessionID)
		if err != nil {
			return err
		}
		if err := s.acceptsOrders(session, in.RestaurantID, in.TableID); err != nil {
			return err
		}

		var lines []models.SessionCartItem
		if err := tx.Where("session_id = ?", session.ID).Order("id").Find(&lines).Error; err != nil {
			return fmt.Errorf("load cart lines: %w", err)
		}
		if len(lines) == 0 {
			return fmt.Errorf("%w: cart is empty", ErrInvalidItemList)
		}
		items := make([]OrderItemInput, 0, len(lines))
		for _, l := range lines {
			items = append(items, OrderItemInput{
				MenuID:         l.MenuID,
				Quantity:       l.Quantity,
				Customizations: asSelections(l.Customizations),
			})
		}
		if err := s.validateItems(items); err != nil {
			return err
		}

		tableID := session.TableID
		order, err = s.placeOrder(tx, restaurant, &session.ID, &tableID, models.OrderTypeDineIn, in.Notes, items)
		if err != nil {
			return err
		}
		if err := tx.Where("session_id = ?", session.ID).Delete(&models.SessionCartItem{}).Error; err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logSubmitted(order)
	s.publish(ctx, events.EventOrderSubmitted, order.RestaurantID, order)
	return order, nil
}

// UpdateOrderStatus moves an order along the status machine. The write only
// applies if the status is still the one that was validated.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, staffID, orderID uint, newStatus string) (*models.Order, error) {
	if orderID == 0 {
		return nil, ErrInvalidIdentifier
	}
	if !IsKnownOrderStatus(newStatus) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, newStatus)
	}

	current, err := findOrder(s.DB.WithContext(ctx), orderID, false)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOrder(ctx, staffID, current); err != nil {
		return nil, err
	}

	var updated *models.Order
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := findOrder(tx, orderID, false)
		if err != nil {
			return err
		}
		if !CanTransitionOrder(order.Status, newStatus) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, order.Status, newStatus)
		}
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, order.Status).
			Updates(map[string]interface{}{
				"status":     newStatus,
				"updated_at": s.Clock.Now(),
			})
		if res.Error != nil {
			return fmt.Errorf("update order status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrStaleStatus
		}
		updated, err = findOrder(tx, orderID, true)
		return err
	})
	if err != nil {
		return nil, err
	}

	change := StatusChange{OrderID: orderID, From: current.Status, To: newStatus}
	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": orderID,
		"staff_id": staffID,
		"status":   newStatus,
	}).Info("Order status updated")
	s.publish(ctx, events.EventOrderStatusChanged, updated.RestaurantID, change)
	return updated, nil
}

// GetOrder returns an order with its items to staff of the owning restaurant.
func (s *OrderService) GetOrder(ctx context.Context, staffID, orderID uint) (*models.Order, error) {
	if orderID == 0 {
		return nil, ErrInvalidIdentifier
	}
	order, err := findOrder(s.DB.WithContext(ctx), orderID, true)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOrder(ctx, staffID, order); err != nil {
		return nil, err
	}
	return order, nil
}

// authorizeOrder reports another restaurant's order as missing so that
// sequential ids cannot be probed.
func (s *OrderService) authorizeOrder(ctx context.Context, staffID uint, order *models.Order) error {
	err := s.authorize(ctx, staffID, order.RestaurantID)
	if errors.Is(err, ErrNotAuthorized) {
		return ErrOrderNotFound
	}
	return err
}

func (s *OrderService) ListSessionOrders(ctx context.Context, staffID, restaurantID uint, sessionID string) ([]models.Order, error) {
	if restaurantID == 0 || !utils.IsValidSessionID(sessionID) {
		return nil, ErrInvalidIdentifier
	}
	if err := s.authorize(ctx, staffID, restaurantID); err != nil {
		return nil, err
	}

	orders := []models.Order{}
	if err := s.DB.WithContext(ctx).Preload("OrderItems").
		Where("restaurant_id = ? AND session_id = ?", restaurantID, sessionID).
		Order("created_at, id").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("load session orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) validateHeader(restaurantID, tableID uint, sessionID, orderType, notes string) error {
	if restaurantID == 0 {
		return ErrInvalidIdentifier
	}
	switch orderType {
	case models.OrderTypeDineIn:
		if tableID == 0 || !utils.IsValidSessionID(sessionID) {
			return fmt.Errorf("%w: dine-in orders need a table and a session", ErrInvalidIdentifier)
		}
	case models.OrderTypeTakeaway, models.OrderTypeDelivery:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOrderType, orderType)
	}
	if utf8.RuneCountInString(notes) > s.Limits.MaxNoteLength {
		return fmt.Errorf("%w: notes longer than %d characters", ErrInvalidItemList, s.Limits.MaxNoteLength)
	}
	return nil
}

func (s *OrderService) validateItems(items []OrderItemInput) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: no items", ErrInvalidItemList)
	}
	if len(items) > s.Limits.MaxOrderLines {
		return fmt.Errorf("%w: at most %d lines", ErrInvalidItemList, s.Limits.MaxOrderLines)
	}
	for i, it := range items {
		if it.MenuID == 0 {
			return fmt.Errorf("%w: line %d has no item", ErrInvalidIdentifier, i+1)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: line %d", ErrInvalidQuantity, i+1)
		}
		if it.Quantity > s.Limits.MaxLineQuantity {
			return fmt.Errorf("%w: line %d exceeds %d", ErrQuantityLimitExceeded, i+1, s.Limits.MaxLineQuantity)
		}
		if utf8.RuneCountInString(it.Notes) > s.Limits.MaxNoteLength {
			return fmt.Errorf("%w: line %d notes longer than %d characters", ErrInvalidItemList, i+1, s.Limits.MaxNoteLength)
		}
	}
	return nil
}

func (s *OrderService) acceptsOrders(session *models.Session, restaurantID, tableID uint) error {
	if session.RestaurantID != restaurantID || session.TableID != tableID {
		return ErrSessionNotFound
	}
	if session.IsClosed() {
		return ErrSessionClosed
	}
	if !session.ExpiresAt.After(s.Clock.Now()) {
		return ErrSessionExpired
	}
	return nil
}

// placeOrder prices every line and inserts the order header with its items.
func (s *OrderService) placeOrder(tx *gorm.DB, restaurant *models.Restaurant, sessionID *string, tableID *uint, orderType, notes string, items []OrderItemInput) (*models.Order, error) {
	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.MenuID)
	}
	menu, err := resolveMenuItems(tx, restaurant.ID, ids)
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	order := models.Order{
		RestaurantID: restaurant.ID,
		SessionID:    sessionID,
		TableID:      tableID,
		OrderType:    orderType,
		Status:       models.OrderStatusPending,
		Notes:        notes,
		OrderItems:   make([]models.OrderItem, 0, len(items)),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, it := range items {
		item := menu[it.MenuID]
		mods, err := item.ResolveCustomizations(it.Customizations)
		if err != nil {
			return nil, err
		}
		qty := int64(it.Quantity)
		surcharge := mods.Surcharge()
		discounted := item.DiscountedPrice()
		unit := discounted + surcharge

		order.Subtotal += (item.Price + surcharge) * qty
		order.DiscountTotal += (item.Price - discounted) * qty
		order.OrderItems = append(order.OrderItems, models.OrderItem{
			MenuID:         item.ID,
			Name:           item.Name,
			Quantity:       it.Quantity,
			UnitPrice:      unit,
			LineTotal:      unit * qty,
			Customizations: mods,
			Notes:          it.Notes,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	order.Total = order.Subtotal - order.DiscountTotal
	if orderType == models.OrderTypeDelivery {
		order.DeliveryFee = restaurant.DeliveryFee
		order.Total += restaurant.DeliveryFee
	}

	if err := tx.Create(&order).Error; err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &order, nil
}

func (s *OrderService) logSubmitted(order *models.Order) {
	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id":      order.ID,
		"restaurant_id": order.RestaurantID,
		"total":         order.Total,
		"lines":         len(order.OrderItems),
	}).Info("Order submitted")
}

func loadRestaurant(tx *gorm.DB, restaurantID uint) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	res := tx.Where("id = ?", restaurantID).Limit(1).Find(&restaurant)
	if res.Error != nil {
		return nil, fmt.Errorf("load restaurant: %w", res.Error)
	}
	if res.RowsAffected == 0 || !restaurant.IsActive {
		return nil, ErrRestaurantNotFound
	}
	return &restaurant, nil
}

func findOrder(tx *gorm.DB, orderID uint, withItems bool) (*models.Order, error) {
	var order models.Order
	q := tx
	if withItems {
		q = q.Preload("OrderItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		})
	}
	res := q.Where("id = ?", orderID).Limit(1).Find(&order)
	if res.Error != nil {
		return nil, fmt.Errorf("load order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrOrderNotFound
	}
	return &order, nil
}
