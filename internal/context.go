package internal

import (
	"time"

	"github.com/gin-gonic/gin"
)

// CtxDataKey is how request values or stored/retrieved.
const CtxDataKey = "app-context"

// Data represent state for each request.
type Data struct {
	TraceID    string
	StatusCode int
	Now        time.Time
	// Outcome is set by handlers that dispatch a lighthouse message.
	Outcome string
}

// ContextWithData sets a gin.Context with context data.
func ContextWithData(ctx *gin.Context, data *Data) {
	ctx.Set(CtxDataKey, data)
}

// DataFromContext retrieves data from gin.Context.
func DataFromContext(ctx *gin.Context) (*Data, bool) {
	v, ok := ctx.Value(CtxDataKey).(*Data)
	return v, ok
}

// SetOutcome records the dispatch outcome on the request data, if present.
func SetOutcome(ctx *gin.Context, outcome string) {
	if v, ok := DataFromContext(ctx); ok {
		v.Outcome = outcome
	}
}
