package services_test

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-ordering/database"
	"github.com/yeremiapane/restaurant-ordering/events"
	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	db    *gorm.DB
	clock *fixedClock
	pub   *events.MemoryPublisher
	deps  services.Deps

	restaurant models.Restaurant
	other      models.Restaurant
	tables     []models.Table
	otherTable models.Table

	burger  models.Menu
	tea     models.Menu
	foreign models.Menu

	staff    models.User
	outsider models.User
}

// openTestDB uses a file database so that concurrent transactions really
// contend; immediate transactions serialize writers like row locks would.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000&_txlock=immediate"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		db:    openTestDB(t),
		clock: &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		pub:   &events.MemoryPublisher{},
	}
	f.deps = services.Deps{
		DB:        f.db,
		Clock:     f.clock,
		Publisher: f.pub,
		Limits:    services.DefaultLimits(),
	}

	f.restaurant = models.Restaurant{Name: "Warung Senja", DeliveryFee: 10000, IsActive: true}
	f.other = models.Restaurant{Name: "Kedai Pagi", IsActive: true}
	require.NoError(t, f.db.Create(&f.restaurant).Error)
	require.NoError(t, f.db.Create(&f.other).Error)

	for i := 1; i <= 5; i++ {
		table := models.Table{RestaurantID: f.restaurant.ID, TableNumber: "A" + string(rune('0'+i)), IsActive: true}
		require.NoError(t, f.db.Create(&table).Error)
		f.tables = append(f.tables, table)
	}
	f.otherTable = models.Table{RestaurantID: f.other.ID, TableNumber: "B1", IsActive: true}
	require.NoError(t, f.db.Create(&f.otherTable).Error)

	f.burger = models.Menu{
		RestaurantID:       f.restaurant.ID,
		Name:               "Burger",
		Price:              25000,
		DiscountPercentage: 10,
		IsActive:           true,
		Options: []models.MenuOption{
			{GroupName: "Size", OptionName: "Large", Price: 5000},
			{GroupName: "Topping", OptionName: "Cheese", Price: 3000},
			{GroupName: "Topping", OptionName: "Bacon", Price: 4000},
		},
	}
	f.tea = models.Menu{RestaurantID: f.restaurant.ID, Name: "Iced Tea", Price: 8000, IsActive: true}
	f.foreign = models.Menu{RestaurantID: f.other.ID, Name: "Nasi Uduk", Price: 15000, IsActive: true}
	require.NoError(t, f.db.Create(&f.burger).Error)
	require.NoError(t, f.db.Create(&f.tea).Error)
	require.NoError(t, f.db.Create(&f.foreign).Error)

	f.staff = models.User{RestaurantID: f.restaurant.ID, Name: "Rina", Email: "rina@example.com", Password: "x", Role: models.RoleStaff}
	f.outsider = models.User{RestaurantID: f.other.ID, Name: "Budi", Email: "budi@example.com", Password: "x", Role: models.RoleAdmin}
	require.NoError(t, f.db.Create(&f.staff).Error)
	require.NoError(t, f.db.Create(&f.outsider).Error)
	return f
}

func (f *fixture) openSession(t *testing.T, table models.Table) *models.Session {
	t.Helper()
	res, err := services.NewSessionService(f.deps).CreateSession(testCtx, services.CreateSessionInput{
		RestaurantID: table.RestaurantID,
		TableID:      table.ID,
		SessionID:    uuid.NewString(),
	})
	require.NoError(t, err)
	require.True(t, res.Created)
	return res.Session
}

func (f *fixture) closeSession(t *testing.T, sessionID string) {
	t.Helper()
	require.NoError(t, f.db.Model(&models.Session{}).Where("id = ?", sessionID).
		Update("status", models.SessionStatusClosed).Error)
}

func (f *fixture) cartLines(t *testing.T, sessionID string) []models.SessionCartItem {
	t.Helper()
	var lines []models.SessionCartItem
	require.NoError(t, f.db.Where("session_id = ?", sessionID).Order("id").Find(&lines).Error)
	return lines
}

func sel(pairs ...string) []services.CustomizationSelection {
	out := make([]services.CustomizationSelection, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, services.CustomizationSelection{Group: pairs[i], Option: pairs[i+1]})
	}
	return out
}
