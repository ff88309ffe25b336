package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type contextKey string

const (
	// RequestIDHeader is the HTTP header for request tracing.
	RequestIDHeader = "X-Request-ID"

	// ActorHeader optionally names the operator behind a request. It is
	// recorded in the audit trail and never used for authorization.
	ActorHeader = "X-Actor"

	ctxKeyRequestID contextKey = "request_id"
	ctxKeyActor     contextKey = "actor"

	anonymousActor = "anonymous"
)

// RequestID injects a unique request ID and the declared actor into the
// context and echoes the request ID in the response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			id, err := uuid.NewV7()
			if err != nil {
				id = uuid.New()
			}
			rid = id.String()
		}
		actor := c.GetHeader(ActorHeader)
		if actor == "" {
			actor = anonymousActor
		}

		c.Set(string(ctxKeyRequestID), rid)
		c.Set(string(ctxKeyActor), actor)
		c.Writer.Header().Set(RequestIDHeader, rid)

		ctx := context.WithValue(c.Request.Context(), ctxKeyRequestID, rid)
		ctx = context.WithValue(ctx, ctxKeyActor, actor)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetRequestID extracts request ID from context.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return v
	}
	return ""
}

// GetActor extracts the declared actor from context, or "anonymous".
func GetActor(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyActor).(string); ok && v != "" {
		return v
	}
	return anonymousActor
}
