package services_test

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-ordering/events"
	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/services"
)

func TestDiscountedPrice(t *testing.T) {
	cases := []struct {
		price int64
		pct   int
		want  int64
	}{
		{10000, 0, 10000},
		{10000, -5, 10000},
		{10000, 101, 10000},
		{10000, 100, 0},
		{25000, 10, 22500},
		{999, 50, 500},
		{333, 33, 223},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, services.DiscountedPrice(tc.price, tc.pct), "price=%d pct=%d", tc.price, tc.pct)
	}
}

func TestSubmitOrderPricesFromStore(t *testing.T) {
	f := newFixture(t)
	orders := services.NewOrderService(f.deps)
	session := f.openSession(t, f.tables[0])

	order, err := orders.SubmitOrder(testCtx, services.SubmitOrderInput{
		RestaurantID: f.restaurant.ID,
		TableID:      f.tables[0].ID,
		SessionID:    session.ID,
		Items: []services.OrderItemInput{
			{MenuID: f.burger.ID, Quantity: 2, Customizations: sel("Size", "Large"), Notes: "no onion"},
			{MenuID: f.tea.ID, Quantity: 3},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.OrderTypeDineIn, order.OrderType)
	require.Len(t, order.OrderItems, 2)

	burger := order.OrderItems[0]
	assert.Equal(t, "Burger", burger.Name)
	assert.Equal(t, int64(22500+5000), burger.UnitPrice)
	assert.Equal(t, int64(27500*2), burger.LineTotal)
	assert.Equal(t, "no onion", burger.Notes)

	tea := order.OrderItems[1]
	assert.Equal(t, int64(8000), tea.UnitPrice)
	assert.Equal(t, int64(24000), tea.LineTotal)

	assert.Equal(t, int64((25000+5000)*2+8000*3), order.Subtotal)
	assert.Equal(t, int64(2500*2), order.DiscountTotal)
	assert.Equal(t, order.Subtotal-order.DiscountTotal, order.Total)
	assert.Equal(t, burger.LineTotal+tea.LineTotal, order.Total)
	assert.Zero(t, order.DeliveryFee)

	// later menu changes do not touch the stored order
	require.NoError(t, f.db.Model(&f.burger).Update("price", 99000).Error)
	var stored models.Order
	require.NoError(t, f.db.Preload("OrderItems").First(&stored, order.ID).Error)
	assert.Equal(t, order.Total, stored.Total)
	assert.Equal(t, int64(27500), stored.OrderItems[0].UnitPrice)

	assert.Contains(t, f.pub.Types(), events.EventOrderSubmitted)
}

func TestSubmitTakeawayChecksTableOwnership(t *testing.T) {
	f := newFixture(t)
	orders := services.NewOrderService(f.deps)

	_, err := orders.SubmitOrder(testCtx, services.SubmitOrderInput{
		RestaurantID: f.restaurant.ID,
		TableID:      f.otherTable.ID,
		OrderType:    models.OrderTypeTakeaway,
		Items:        []services.OrderItemInput{{MenuID: f.tea.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, services.ErrTableNotFound)

	var count int64
	f.db.Model(&models.Order{}).Count(&count)
	assert.Zero(t, count)

	order, err := orders.SubmitOrder(testCtx, services.SubmitOrderInput{
		RestaurantID: f.restaurant.ID,
		TableID:      f.tables[2].ID,
		OrderType:    models.OrderTypeTakeaway,
		Items:        []services.OrderItemInput{{MenuID: f.tea.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	require.NotNil(t, order.TableID)
	assert.Equal(t, f.tables[2].ID, *order.TableID)
	assert.Nil(t, order.SessionID)
}

func TestSubmitOrderDeliveryAndTakeaway(t *testing.T) {
	f := newFixture(t)
	orders := services.NewOrderService(f.deps)

	delivery, err := orders.SubmitOrder(testCtx, services.SubmitOrderInput{
		RestaurantID: f.restaurant.ID,
		OrderType:    models.OrderTypeDelivery,
		Items:        []services.OrderItemInput{{MenuID: f.tea.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Nil(t, delivery.SessionID)
	assert.Equal(t, int64(10000), delivery.DeliveryFee)
	assert.Equal(t, int64(8000+10000), delivery.Total)

	takeaway, err := orders.SubmitOrder(testCtx, services.SubmitOrderInput{
		RestaurantID: f.restaurant.ID,
		OrderType:    models.OrderTypeTakeaway,
		Items:        []services.OrderItemInput{{MenuID: f.tea.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(8000), takeaway.Total)

	_, err = orders.SubmitOrder(testCtx, services.SubmitOrderInput{
		RestaurantID: f.restaurant.ID,
		OrderType:    "drive_thru",
		Items:        []services.OrderItemInput{{MenuID: f.tea.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, services.ErrInvalidOrderType)
}

func TestSubmitOrderValidation(t *testing.T) {
	f := newFixture(t)
	orders := services.NewOrderService(f.deps)
	session := f.openSession(t, f.tables[0])
	base := func(items ...services.OrderItemInput) services.SubmitOrderInput {
		return services.SubmitOrderInput{
			RestaurantID: f.restaurant.ID, TableID: f.tables[0].ID, SessionID: session.ID, Items: items,
		}
	}
	tooMany := make([]services.OrderItemInput, 51)
	for i := range tooMany {
		tooMany[i] = services.OrderItemInput{MenuID: f.tea.ID, Quantity: 1}
	}

	cases := []struct {
		name string
		in   services.SubmitOrderInput
		want error
	}{
		{"empty", base(), services.ErrInvalidItemList},
		{"too many lines", base(tooMany...), services.ErrInvalidItemList},
		{"zero quantity", base(services.OrderItemInput{MenuID: f.tea.ID}), services.ErrInvalidQuantity},
		{"negative quantity", base(services.OrderItemInput{MenuID: f.tea.ID, Quantity: -2}), services.ErrInvalidQuantity},
		{"over line limit", base(services.OrderItemInput{MenuID: f.tea.ID, Quantity: 100}), services.ErrQuantityLimitExceeded},
		{"long note", base(services.OrderItemInput{MenuID: f.tea.ID, Quantity: 1, Notes: strings.Repeat("é", 501)}), services.ErrInvalidItemList},
		{"foreign item", base(services.OrderItemInput{MenuID: f.foreign.ID, Quantity: 1}), services.ErrItemUnavailable},
		{"unknown option", base(services.OrderItemInput{MenuID: f.tea.ID, Quantity: 1, Customizations: sel("Size", "Large")}), services.ErrInvalidCustomization},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := orders.SubmitOrder(testCtx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	var count int64
	f.db.Model(&models.Order{}).Count(&count)
	assert.Zero(t, count)
}

func TestSubmitOrderSessionChecks(t *testing.T) {
	f := newFixture(t)
	orders := services.NewOrderService(f.deps)
	items := []services.OrderItemInput{{MenuID: f.tea.ID, Quantity: 1}}
	session := f.openSession(t, f.tables[0])

	_, err := orders.SubmitOrder(testCtx, services.SubmitOrderInput{
		RestaurantID: f.restaurant.ID, TableID: f.tables[1].ID, SessionID: session.ID, Items: items,
	})
	assert.ErrorIs(t, err, services.ErrSessionNotFound)

	_, err = orders.SubmitOrder(testCtx, services.SubmitOrderInput{
		RestaurantID: f.restaurant.ID, TableID: f.tables[0].ID, SessionID: uuid.NewString(), Items: items,
	})
	assert.ErrorIs(t, err, services.ErrSessionNotFound)

	f.clock.Advance(5 * time.Hour)
	_, err = orders.SubmitOrder(testCtx, services.SubmitOrderInput{
		RestaurantID: f.restaurant.ID, TableID: f.tables[0].ID, SessionID: session.ID, Items: items,
	})
	assert.ErrorIs(t, err, services.ErrSessionExpired)

	closed := f.openSession(t, f.tables[1])
	f.closeSession(t, closed.ID)
	_, err = orders.SubmitOrder(testCtx, services.SubmitOrderInput{
		RestaurantID: f.restaurant.ID, TableID: f.tables[1].ID, SessionID: closed.ID, Items: items,
	})
	assert.ErrorIs(t, err, services.ErrSessionClosed)
}

func TestSubmitCartOrderEmptiesCart(t *testing.T) {
	f := newFixture(t)
	orders := services.NewOrderService(f.deps)
	carts := services.NewCartService(f.deps)
	session := f.openSession(t, f.tables[0])
	in := services.SubmitCartOrderInput{RestaurantID: f.restaurant.ID, TableID: f.tables[0].ID, SessionID: session.ID}

	_, err := orders.SubmitCartOrder(testCtx, in)
	assert.ErrorIs(t, err, services.ErrInvalidItemList)

	_, err = carts.AddToSessionCart(testCtx, services.AddToCartInput{
		SessionID: session.ID, MenuID: f.burger.ID, Quantity: 2, Customizations: sel("Topping", "Bacon"),
	})
	require.NoError(t, err)
	_, err = carts.AddToSessionCart(testCtx, services.AddToCartInput{SessionID: session.ID, MenuID: f.tea.ID, Quantity: 1})
	require.NoError(t, err)

	order, err := orders.SubmitCartOrder(testCtx, in)
	require.NoError(t, err)
	require.Len(t, order.OrderItems, 2)
	assert.Equal(t, int64(22500+4000), order.OrderItems[0].UnitPrice)
	assert.Equal(t, int64((22500+4000)*2+8000), order.Total)
	assert.Equal(t, session.ID, *order.SessionID)
	assert.Empty(t, f.cartLines(t, session.ID))
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newFixture(t)
	orders := services.NewOrderService(f.deps)
	session := f.openSession(t, f.tables[0])
	order, err := orders.SubmitOrder(testCtx, services.SubmitOrderInput{
		RestaurantID: f.restaurant.ID, TableID: f.tables[0].ID, SessionID: session.ID,
		Items: []services.OrderItemInput{{MenuID: f.tea.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	// another restaurant's staff cannot tell an existing order from a missing one
	_, err = orders.UpdateOrderStatus(testCtx, f.outsider.ID, order.ID, models.OrderStatusConfirmed)
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
	_, err = orders.UpdateOrderStatus(testCtx, f.outsider.ID, order.ID+1000, models.OrderStatusConfirmed)
	assert.ErrorIs(t, err, services.ErrOrderNotFound)

	_, err = orders.UpdateOrderStatus(testCtx, f.staff.ID, order.ID, "teleported")
	assert.ErrorIs(t, err, services.ErrInvalidStatus)

	_, err = orders.UpdateOrderStatus(testCtx, f.staff.ID, order.ID, models.OrderStatusReady)
	assert.ErrorIs(t, err, services.ErrInvalidStatusTransition)

	for _, next := range []string{
		models.OrderStatusConfirmed,
		models.OrderStatusPreparing,
		models.OrderStatusReady,
		models.OrderStatusServed,
		models.OrderStatusCompleted,
	} {
		updated, err := orders.UpdateOrderStatus(testCtx, f.staff.ID, order.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, updated.Status)
	}

	_, err = orders.UpdateOrderStatus(testCtx, f.staff.ID, order.ID, models.OrderStatusCanceled)
	assert.ErrorIs(t, err, services.ErrInvalidStatusTransition)

	_, err = orders.UpdateOrderStatus(testCtx, f.staff.ID, 9999, models.OrderStatusCanceled)
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
}

func TestUpdateOrderStatusConcurrentWritersOneWins(t *testing.T) {
	f := newFixture(t)
	orders := services.NewOrderService(f.deps)
	order, err := orders.SubmitOrder(testCtx, services.SubmitOrderInput{
		RestaurantID: f.restaurant.ID, OrderType: models.OrderTypeTakeaway,
		Items: []services.OrderItemInput{{MenuID: f.tea.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := orders.UpdateOrderStatus(testCtx, f.staff.ID, order.ID, models.OrderStatusConfirmed)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, services.ErrInvalidStatusTransition), errors.Is(err, services.ErrStaleStatus):
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, successes)
}

func TestOrderTransitionTable(t *testing.T) {
	all := []string{
		models.OrderStatusPending, models.OrderStatusConfirmed, models.OrderStatusPreparing,
		models.OrderStatusReady, models.OrderStatusServed, models.OrderStatusDelivering,
		models.OrderStatusCompleted, models.OrderStatusCanceled,
	}
	for _, to := range all {
		assert.False(t, services.CanTransitionOrder(models.OrderStatusCompleted, to))
		assert.False(t, services.CanTransitionOrder(models.OrderStatusCanceled, to))
	}
	assert.True(t, services.CanTransitionOrder(models.OrderStatusReady, models.OrderStatusDelivering))
	assert.True(t, services.CanTransitionOrder(models.OrderStatusDelivering, models.OrderStatusCompleted))
	assert.False(t, services.CanTransitionOrder(models.OrderStatusServed, models.OrderStatusCanceled))
	assert.False(t, services.IsKnownOrderStatus("paid"))
}

func TestGetOrderAndListSessionOrders(t *testing.T) {
	f := newFixture(t)
	orders := services.NewOrderService(f.deps)
	session := f.openSession(t, f.tables[0])
	for i := 0; i < 2; i++ {
		_, err := orders.SubmitOrder(testCtx, services.SubmitOrderInput{
			RestaurantID: f.restaurant.ID, TableID: f.tables[0].ID, SessionID: session.ID,
			Items: []services.OrderItemInput{{MenuID: f.tea.ID, Quantity: i + 1}},
		})
		require.NoError(t, err)
	}

	list, err := orders.ListSessionOrders(testCtx, f.staff.ID, f.restaurant.ID, session.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Len(t, list[1].OrderItems, 1)

	got, err := orders.GetOrder(testCtx, f.staff.ID, list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, list[0].Total, got.Total)

	_, err = orders.GetOrder(testCtx, f.outsider.ID, list[0].ID)
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
	_, err = orders.GetOrder(testCtx, f.outsider.ID, list[1].ID+1000)
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
	_, err = orders.ListSessionOrders(testCtx, f.outsider.ID, f.restaurant.ID, session.ID)
	assert.ErrorIs(t, err, services.ErrNotAuthorized)
}
