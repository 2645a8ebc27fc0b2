package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kendall-kelly/bistro-orders-api/middleware"
	"github.com/kendall-kelly/bistro-orders-api/services"
	"github.com/kendall-kelly/bistro-orders-api/utils"
)

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondFailure(c *gin.Context, status int, code, message string, details interface{}) {
	body := gin.H{
		"code":    code,
		"message": message,
	}
	if details != nil {
		body["details"] = details
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   body,
	})
}

// respondError maps a service error kind to its HTTP status and error code.
// notFoundCode names the missing resource, e.g. ORDER_NOT_FOUND.
func respondError(c *gin.Context, err error, notFoundCode string) {
	var uploadErr *utils.FileUploadError
	switch {
	case errors.As(err, &uploadErr):
		respondFailure(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message, nil)
	case errors.Is(err, services.ErrValidation):
		respondFailure(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data", err.Error())
	case errors.Is(err, services.ErrInvalidTransition):
		respondFailure(c, http.StatusBadRequest, "INVALID_STATUS_TRANSITION", "Status change not allowed", err.Error())
	case errors.Is(err, services.ErrUnauthenticated):
		respondFailure(c, http.StatusUnauthorized, "UNAUTHORIZED", err.Error(), nil)
	case errors.Is(err, services.ErrForbidden):
		respondFailure(c, http.StatusForbidden, "FORBIDDEN", "You do not have access to this resource", nil)
	case errors.Is(err, services.ErrNotFound):
		if notFoundCode == "" {
			notFoundCode = "NOT_FOUND"
		}
		respondFailure(c, http.StatusNotFound, notFoundCode, err.Error(), nil)
	case errors.Is(err, services.ErrConflict):
		respondFailure(c, http.StatusConflict, "CONFLICT", err.Error(), nil)
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		respondFailure(c, http.StatusInternalServerError, "DATABASE_ERROR", "An internal error occurred", nil)
	}
}

func respondBindError(c *gin.Context, err error) {
	respondFailure(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data", err.Error())
}

// callerOrAbort reads the authenticated identity; the auth middleware guarantees it on protected routes
func callerOrAbort(c *gin.Context) (services.Caller, bool) {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		respondFailure(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information", nil)
		return services.Caller{}, false
	}
	return caller, true
}

// idParam parses a positive numeric path parameter
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondFailure(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data", name+" must be a positive integer")
		return 0, false
	}
	return uint(id), true
}
