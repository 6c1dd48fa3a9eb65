package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

type SessionController struct {
	Sessions *services.SessionService
}

func NewSessionController(sessions *services.SessionService) *SessionController {
	return &SessionController{Sessions: sessions}
}

// CreateSession -> diner scans the table code
func (sc *SessionController) CreateSession(c *gin.Context) {
	restaurantID, ok := pathID(c, "restaurant_id")
	if !ok {
		return
	}
	tableID, ok := pathID(c, "table_id")
	if !ok {
		return
	}

	var body struct {
		SessionID string  `json:"session_id"`
		DeviceID  *string `json:"device_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	// Clients without a stored id get one; retries must resend it.
	if body.SessionID == "" {
		body.SessionID = uuid.NewString()
	}

	res, err := sc.Sessions.CreateSession(c.Request.Context(), services.CreateSessionInput{
		RestaurantID: restaurantID,
		TableID:      tableID,
		SessionID:    body.SessionID,
		DeviceID:     body.DeviceID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if res.Created {
		utils.RespondJSON(c, http.StatusCreated, "Session created", res)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session resumed", res)
}

func (sc *SessionController) GetSession(c *gin.Context) {
	session, err := sc.Sessions.GetSession(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session detail", session)
}

func (sc *SessionController) RequestBill(c *gin.Context) {
	res, err := sc.Sessions.RequestCloseBill(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bill requested", res)
}

func (sc *SessionController) CancelBillRequest(c *gin.Context) {
	res, err := sc.Sessions.CancelCloseBillRequest(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bill request canceled", res)
}
