package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

// AdminController holds staff-only operations that span a whole session.
type AdminController struct {
	Settlement *services.SettlementService
}

func NewAdminController(settlement *services.SettlementService) *AdminController {
	return &AdminController{Settlement: settlement}
}

// SettleBill -> complete orders, clear the cart and close the session
func (ac *AdminController) SettleBill(c *gin.Context) {
	staff, ok := staffID(c)
	if !ok {
		return
	}
	restaurantID, ok := pathID(c, "restaurant_id")
	if !ok {
		return
	}

	res, err := ac.Settlement.SettleBill(c.Request.Context(), staff, restaurantID, c.Param("session_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if res.AlreadyClosed {
		utils.RespondJSON(c, http.StatusOK, "Session already closed", res)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bill settled", res)
}
