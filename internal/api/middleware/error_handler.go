// Package middleware provides HTTP middleware for the vmigrate API.
//
// Import Path: vmigrate.io/vmigrate/internal/api/middleware
package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "vmigrate.io/vmigrate/internal/pkg/errors"
	"vmigrate.io/vmigrate/internal/pkg/logger"
)

// ErrorHandler is a Gin middleware that provides centralized error handling.
// It captures errors added via c.Error() and returns a consistent JSON body
// of {code, message[, params], request_id} with the AppError's status:
// 422 business rule, 404 not found, 409 duplicate, 400 malformed request.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		requestID := GetRequestID(c.Request.Context())

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			fields := []zap.Field{
				zap.String("code", appErr.Code),
				zap.String("message", appErr.Message),
				zap.Int("status", appErr.HTTPStatus),
				zap.String("request_id", requestID),
			}
			if appErr.Err != nil {
				fields = append(fields, zap.Error(appErr.Err))
			}
			if appErr.HTTPStatus >= http.StatusInternalServerError {
				logger.Error("Request failed", fields...)
			} else {
				logger.Warn("Request error", fields...)
			}

			body := gin.H{
				"code":       appErr.Code,
				"message":    appErr.Message,
				"request_id": requestID,
			}
			if len(appErr.Params) > 0 {
				body["params"] = appErr.Params
			}
			c.JSON(appErr.HTTPStatus, body)
			return
		}

		// Fallback: generic 500 error
		logger.Error("Unhandled request error", zap.Error(err), zap.String("request_id", requestID))
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":       apperrors.CodeInternal,
			"message":    "An internal error occurred",
			"request_id": requestID,
		})
	}
}
