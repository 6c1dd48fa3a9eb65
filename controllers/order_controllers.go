package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

// CreateOrder -> submit an item list, or the session cart when from_cart is set
func (oc *OrderController) CreateOrder(c *gin.Context) {
	restaurantID, ok := pathID(c, "restaurant_id")
	if !ok {
		return
	}
	tableID, ok := pathID(c, "table_id")
	if !ok {
		return
	}

	var body struct {
		services.SubmitOrderInput
		FromCart bool `json:"from_cart"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request.Context()
	var (
		order interface{}
		err   error
	)
	if body.FromCart {
		order, err = oc.Orders.SubmitCartOrder(ctx, services.SubmitCartOrderInput{
			RestaurantID: restaurantID,
			TableID:      tableID,
			SessionID:    body.SessionID,
			Notes:        body.Notes,
		})
	} else {
		in := body.SubmitOrderInput
		in.RestaurantID = restaurantID
		in.TableID = tableID
		order, err = oc.Orders.SubmitOrder(ctx, in)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// GetOrderByID -> detail 1 order
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	staff, ok := staffID(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "order_id")
	if !ok {
		return
	}

	order, err := oc.Orders.GetOrder(c.Request.Context(), staff, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	staff, ok := staffID(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "order_id")
	if !ok {
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.UpdateOrderStatus(c.Request.Context(), staff, orderID, body.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

func (oc *OrderController) ListSessionOrders(c *gin.Context) {
	staff, ok := staffID(c)
	if !ok {
		return
	}
	restaurantID, ok := pathID(c, "restaurant_id")
	if !ok {
		return
	}

	orders, err := oc.Orders.ListSessionOrders(c.Request.Context(), staff, restaurantID, c.Param("session_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session orders", orders)
}
