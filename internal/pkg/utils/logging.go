package utils

import (
	"context"

	"careflow-service/internal/pkg/constvars"

	"github.com/google/uuid"
)

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string); ok {
		return requestID
	}
	return ""
}

// GenerateRequestID mints the id stamped on requests that arrive
// without an X-Request-Id header.
func GenerateRequestID() string {
	return constvars.REQUEST_ID_PREFIX + uuid.NewString()
}
