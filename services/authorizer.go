package services

import (
	"context"
	"fmt"

	"github.com/yeremiapane/restaurant-ordering/models"
	"gorm.io/gorm"
)

// StaffAuthorizer answers "does this caller manage this restaurant?".
type StaffAuthorizer interface {
	ManagesRestaurant(ctx context.Context, userID, restaurantID uint) (bool, error)
}

type GormStaffAuthorizer struct {
	DB *gorm.DB
}

func NewGormStaffAuthorizer(db *gorm.DB) *GormStaffAuthorizer {
	return &GormStaffAuthorizer{DB: db}
}

func (a *GormStaffAuthorizer) ManagesRestaurant(ctx context.Context, userID, restaurantID uint) (bool, error) {
	var count int64
	err := a.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND restaurant_id = ? AND role IN ?", userID, restaurantID, []string{models.RoleAdmin, models.RoleStaff}).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check staff membership: %w", err)
	}
	return count > 0, nil
}
