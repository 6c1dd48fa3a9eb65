package database

import (
	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/utils"
	"gorm.io/gorm"
)

// Models lists every table owned or read by the ordering core, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.Restaurant{},
		&models.User{},
		&models.Table{},
		&models.Menu{},
		&models.MenuOption{},
		&models.Session{},
		&models.SessionCartItem{},
		&models.TableCart{},
		&models.TableCartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Notification{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}

	// Cart lines are looked up by (session, menu) on every merge.
	if !db.Migrator().HasIndex(&models.SessionCartItem{}, "idx_session_cart_items_session_menu") {
		if err := db.Exec("CREATE INDEX idx_session_cart_items_session_menu ON session_cart_items (session_id, menu_id)").Error; err != nil {
			utils.ErrorLogger.Printf("Error creating cart line index: %v", err)
		}
	}

	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}
