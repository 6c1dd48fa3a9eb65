package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-ordering/events"
	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionService struct {
	Deps
}

func NewSessionService(d Deps) *SessionService {
	return &SessionService{Deps: d.withDefaults()}
}

type CreateSessionInput struct {
	RestaurantID uint
	TableID      uint
	SessionID    string
	DeviceID     *string
}

// SessionResult carries the session and whether this call created it.
type SessionResult struct {
	Session *models.Session `json:"session"`
	Created bool            `json:"created"`
}

// CreateSession opens a session on a table. The table row is locked for the
// whole check-then-insert so that two diners racing for the same table
// cannot both win.
func (s *SessionService) CreateSession(ctx context.Context, in CreateSessionInput) (*SessionResult, error) {
	if in.RestaurantID == 0 || in.TableID == 0 {
		return nil, fmt.Errorf("%w: restaurant and table are required", ErrInvalidIdentifier)
	}
	if !utils.IsValidSessionID(in.SessionID) {
		return nil, fmt.Errorf("%w: session id must be a UUIDv4", ErrInvalidIdentifier)
	}
	if in.DeviceID != nil && !utils.IsValidSessionID(*in.DeviceID) {
		return nil, fmt.Errorf("%w: device id must be a UUIDv4", ErrInvalidIdentifier)
	}

	var result SessionResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock order is restaurant then table. Without the restaurant lock two
		// creates from one device for different tables would not contend.
		if in.DeviceID != nil {
			if err := lockRestaurant(tx, in.RestaurantID); err != nil {
				return err
			}
		}
		table, err := lockTable(tx, in.RestaurantID, in.TableID)
		if err != nil {
			return err
		}
		now := s.Clock.Now()

		if in.DeviceID != nil {
			var live []models.Session
			if err := tx.Where("restaurant_id = ? AND device_id = ? AND status <> ? AND expires_at > ?",
				in.RestaurantID, *in.DeviceID, models.SessionStatusClosed, now).
				Order("created_at DESC").Find(&live).Error; err != nil {
				return fmt.Errorf("load device sessions: %w", err)
			}
			for i := range live {
				if live[i].TableID != table.ID {
					return ErrAlreadyAtAnotherTable
				}
			}
			if len(live) > 0 {
				result = SessionResult{Session: &live[0]}
				return nil
			}

			var opened int64
			if err := tx.Model(&models.Session{}).
				Where("restaurant_id = ? AND device_id = ? AND created_at > ?", in.RestaurantID, *in.DeviceID, now.Add(-time.Hour)).
				Count(&opened).Error; err != nil {
				return fmt.Errorf("count device sessions: %w", err)
			}
			if opened >= int64(s.Limits.MaxSessionsPerDevicePerHour) {
				return ErrRateLimited
			}
		}

		existing, err := findSession(tx, in.SessionID)
		switch {
		case err == nil:
			if existing.RestaurantID != in.RestaurantID || existing.TableID != table.ID {
				return fmt.Errorf("%w: session id belongs to another table", ErrInvalidIdentifier)
			}
			// an expired replay is still returned; cart and order calls reject it
			if existing.IsClosed() {
				return ErrSessionClosed
			}
			result = SessionResult{Session: existing}
			return nil
		case !errors.Is(err, ErrSessionNotFound):
			return err
		}

		var onTable []models.Session
		if err := tx.Where("table_id = ? AND expires_at > ?", table.ID, now).Find(&onTable).Error; err != nil {
			return fmt.Errorf("load table sessions: %w", err)
		}
		for i := range onTable {
			if onTable[i].IsLive(now) {
				return ErrTableOccupied
			}
		}
		if len(onTable) >= s.Limits.MaxSessionsPerTable {
			return ErrTableCapacity
		}

		session := models.Session{
			ID:           in.SessionID,
			RestaurantID: in.RestaurantID,
			TableID:      table.ID,
			DeviceID:     in.DeviceID,
			Status:       models.SessionStatusOpen,
			ExpiresAt:    now.Add(s.Limits.SessionDuration),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Create(&session).Error; err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		result = SessionResult{Session: &session, Created: true}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Created {
		utils.InfoLogger.WithFields(logrus.Fields{
			"restaurant_id": in.RestaurantID,
			"table_id":      in.TableID,
			"session_id":    result.Session.ID,
		}).Info("Session created")
		s.publish(ctx, events.EventSessionCreated, in.RestaurantID, result.Session)
	}
	return &result, nil
}

// GetSession returns a session by id.
func (s *SessionService) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	if !utils.IsValidSessionID(sessionID) {
		return nil, ErrInvalidIdentifier
	}
	return findSession(s.DB.WithContext(ctx), sessionID)
}

// BillRequestResult reports the session after the call and whether its status changed.
type BillRequestResult struct {
	Session *models.Session `json:"session"`
	Changed bool            `json:"changed"`
}

// RequestCloseBill moves an open session to requesting_closure and leaves a
// notification for the restaurant staff. Repeating the request is a no-op.
func (s *SessionService) RequestCloseBill(ctx context.Context, sessionID string) (*BillRequestResult, error) {
	if !utils.IsValidSessionID(sessionID) {
		return nil, ErrInvalidIdentifier
	}

	var result BillRequestResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := lockSession(tx, sessionID)
		if err != nil {
			return err
		}
		result.Session = session
		if session.IsClosed() {
			return ErrSessionAlreadyClosed
		}
		if session.Status == models.SessionStatusRequestingClosure {
			return nil
		}

		now := s.Clock.Now()
		if err := tx.Model(session).Updates(map[string]interface{}{
			"status":     models.SessionStatusRequestingClosure,
			"updated_at": now,
		}).Error; err != nil {
			return fmt.Errorf("update session status: %w", err)
		}
		session.Status = models.SessionStatusRequestingClosure
		session.UpdatedAt = now

		title := "Bill requested"
		tableID := session.TableID
		notification := models.Notification{
			RestaurantID: session.RestaurantID,
			TableID:      &tableID,
			SessionID:    &session.ID,
			Title:        &title,
			Message:      fmt.Sprintf("Table %d is asking for the bill", session.TableID),
			CreatedAt:    now,
		}
		if err := tx.Create(&notification).Error; err != nil {
			return fmt.Errorf("create notification: %w", err)
		}
		result.Changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Changed {
		s.publish(ctx, events.EventBillRequested, result.Session.RestaurantID, result.Session)
	}
	return &result, nil
}

// CancelCloseBillRequest reopens a session that asked for the bill.
func (s *SessionService) CancelCloseBillRequest(ctx context.Context, sessionID string) (*BillRequestResult, error) {
	if !utils.IsValidSessionID(sessionID) {
		return nil, ErrInvalidIdentifier
	}

	var result BillRequestResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := lockSession(tx, sessionID)
		if err != nil {
			return err
		}
		result.Session = session
		if session.IsClosed() {
			return ErrSessionAlreadyClosed
		}
		if session.Status == models.SessionStatusOpen {
			return nil
		}

		now := s.Clock.Now()
		if err := tx.Model(session).Updates(map[string]interface{}{
			"status":     models.SessionStatusOpen,
			"updated_at": now,
		}).Error; err != nil {
			return fmt.Errorf("update session status: %w", err)
		}
		session.Status = models.SessionStatusOpen
		session.UpdatedAt = now
		result.Changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Changed {
		s.publish(ctx, events.EventBillRequestCanceled, result.Session.RestaurantID, result.Session)
	}
	return &result, nil
}

func findSession(tx *gorm.DB, sessionID string) (*models.Session, error) {
	var session models.Session
	res := tx.Where("id = ?", sessionID).Limit(1).Find(&session)
	if res.Error != nil {
		return nil, fmt.Errorf("load session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

func lockSession(tx *gorm.DB, sessionID string) (*models.Session, error) {
	return findSession(tx.Clauses(clause.Locking{Strength: "UPDATE"}), sessionID)
}

func lockTable(tx *gorm.DB, restaurantID, tableID uint) (*models.Table, error) {
	table, err := findTable(tx.Clauses(clause.Locking{Strength: "UPDATE"}), restaurantID, tableID)
	if err != nil {
		return nil, err
	}
	if !table.IsActive {
		return nil, ErrTableInactive
	}
	return table, nil
}

// findTable loads a table only when it belongs to the restaurant.
func findTable(tx *gorm.DB, restaurantID, tableID uint) (*models.Table, error) {
	var table models.Table
	res := tx.Where("id = ? AND restaurant_id = ?", tableID, restaurantID).Limit(1).Find(&table)
	if res.Error != nil {
		return nil, fmt.Errorf("load table: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrTableNotFound
	}
	return &table, nil
}

// lockRestaurant serializes device checks across all tables of a restaurant.
func lockRestaurant(tx *gorm.DB, restaurantID uint) error {
	var restaurant models.Restaurant
	res := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").Where("id = ?", restaurantID).Limit(1).Find(&restaurant)
	if res.Error != nil {
		return fmt.Errorf("lock restaurant: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRestaurantNotFound
	}
	return nil
}

// acceptsCartChanges rejects carts of sessions that can no longer take orders.
func acceptsCartChanges(session *models.Session, now time.Time) error {
	switch {
	case session.IsClosed():
		return ErrSessionClosed
	case !session.ExpiresAt.After(now):
		return ErrSessionExpired
	case session.Status == models.SessionStatusRequestingClosure:
		return ErrSessionPendingClosure
	}
	return nil
}
