package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

// TableController serves the cart shared by a whole table.
type TableController struct {
	Carts *services.TableCartService
}

func NewTableController(carts *services.TableCartService) *TableController {
	return &TableController{Carts: carts}
}

func (tc *TableController) GetTableCart(c *gin.Context) {
	restaurantID, ok := pathID(c, "restaurant_id")
	if !ok {
		return
	}
	tableID, ok := pathID(c, "table_id")
	if !ok {
		return
	}

	cart, err := tc.Carts.GetTableCart(c.Request.Context(), restaurantID, tableID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table cart", cart)
}

// AddToTableCart -> quantity may be negative to remove items
func (tc *TableController) AddToTableCart(c *gin.Context) {
	restaurantID, ok := pathID(c, "restaurant_id")
	if !ok {
		return
	}
	tableID, ok := pathID(c, "table_id")
	if !ok {
		return
	}

	var body services.TableCartInput
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	body.RestaurantID = restaurantID
	body.TableID = tableID

	cart, err := tc.Carts.AddToTableCart(c.Request.Context(), body)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table cart updated", cart)
}

func (tc *TableController) ClearTableCart(c *gin.Context) {
	restaurantID, ok := pathID(c, "restaurant_id")
	if !ok {
		return
	}
	tableID, ok := pathID(c, "table_id")
	if !ok {
		return
	}

	deleted, err := tc.Carts.ClearTableCart(c.Request.Context(), restaurantID, tableID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table cart cleared", gin.H{"deleted": deleted})
}
