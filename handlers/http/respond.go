package httpHandler

import (
	"errors"
	"net/http"

	"ecotracker/errs"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// statusFor maps a domain error onto an HTTP status.
func statusFor(err error) int {
	var verr *errs.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrDeviceNotFound),
		errors.Is(err, errs.ErrAlertNotFound),
		errors.Is(err, errs.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrDeviceAlreadyExists),
		errors.Is(err, errs.ErrUserAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, errs.ErrInvalidCredentials),
		errors.Is(err, errs.ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with the status it maps to. Internal failures are
// logged and hidden from the client.
func respondError(c *gin.Context, log *logrus.Entry, err error) {
	status := statusFor(err)

	var verr *errs.ValidationError
	if errors.As(err, &verr) {
		c.JSON(status, gin.H{"error": verr.Error(), "details": verr})
		return
	}
	if status == http.StatusInternalServerError {
		log.Errorf("%s %s failed: %s", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request body",
		"details": err.Error(),
	})
}
