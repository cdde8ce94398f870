package main

import (
	"errors"
	"net/http"

	"bitbucket.org/mmdatafocus/stock_backend/config"
	"bitbucket.org/mmdatafocus/stock_backend/models"
	"bitbucket.org/mmdatafocus/stock_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// statusFor maps the engine's error kinds to HTTP status codes.
// InsufficientStock is checked before Validation because it matches both.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrInvalidMovement):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidCredentials), errors.Is(err, models.ErrUserDisabled):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		config.GetLogger().WithFields(logrus.Fields{
			"path":           c.FullPath(),
			"correlation_id": cid,
		}).Error(err.Error())
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}

	body := gin.H{"error": err.Error()}
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) && validationErr.Field != "" {
		body["field"] = validationErr.Field
	}
	var stockErr *models.InsufficientStockError
	if errors.As(err, &stockErr) {
		body["product_id"] = stockErr.ProductId
		body["variant_id"] = stockErr.VariantId
		body["requested"] = stockErr.Requested
		body["available"] = stockErr.Available
	}
	c.JSON(status, body)
}
