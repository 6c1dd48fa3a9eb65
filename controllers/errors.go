package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

var (
	ErrMissingStaff  = errors.New("staff identity missing from token")
	ErrInvalidPathID = errors.New("invalid identifier in path")
)

// statusFor maps a service error to an HTTP status code.
func statusFor(err error) int {
	switch services.KindOf(err) {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindConflict:
		return http.StatusConflict
	case services.KindRateLimited:
		return http.StatusTooManyRequests
	case services.KindAuthorization:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes err with its mapped status. Internal errors are
// logged and hidden from the client.
func respondServiceError(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		utils.ErrorLogger.WithField("path", c.FullPath()).Errorf("Request failed: %v", err)
		utils.RespondError(c, code, errors.New("internal server error"))
		return
	}
	utils.RespondError(c, code, err)
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, ok := utils.ParseRecordID(c.Param(name))
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, ErrInvalidPathID)
	}
	return id, ok
}

// staffID reads the user id set by the auth middleware.
func staffID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		utils.RespondError(c, http.StatusUnauthorized, ErrMissingStaff)
		return 0, false
	}
	id, ok := v.(uint)
	if !ok || id == 0 {
		utils.RespondError(c, http.StatusUnauthorized, ErrMissingStaff)
		return 0, false
	}
	return id, true
}
