package model

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

type (
	// ContextKey key of a value carried on a golang context.
	ContextKey string
)

func (c ContextKey) String() string {
	return string(c)
}

// CopyTraceID copy trace ID from gin context to golang context
func CopyTraceID(ctx context.Context, c *gin.Context) context.Context {
	name := "req_id"
	id := c.GetString(name)

	ctxValue := context.WithValue(ctx, ContextKey(name), id)

	return ctxValue
}

// EngineContext is the structured request context passed to the engine,
// gateway, resolver and connector methods. It is opaque to core logic and
// carries the tenant and caller identity plus an optional deadline. The
// gateway does not pass it on: vault and entity store calls receive only
// the context.Context. No engine operation applies Deadline.
type EngineContext struct {
	TenantID       string
	CallerIdentity string
	Deadline       *time.Time
}

// WithDeadline returns a context.Context derived from ctx that additionally
// honors ec.Deadline, if set.
func (ec EngineContext) WithDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if ec.Deadline == nil {
		return ctx, func() {}
	}
	return context.WithDeadline(ctx, *ec.Deadline)
}
