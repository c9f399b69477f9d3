// Package requestcontext carries request-scoped values from the HTTP
// middleware into services and SOAP handlers without importing net/http.
//
//	uuid := requestcontext.UserUUID(ctx)
//	ip := requestcontext.ClientIP(ctx)
//	now := requestcontext.Now(ctx)
package requestcontext

import (
	"context"
	"time"
)

type key int

const (
	userUUIDKey key = iota
	clientIPKey
	userAgentKey
	requestIDKey
	requestTimeKey
)

func value[T any](ctx context.Context, k key) (T, bool) {
	v, ok := ctx.Value(k).(T)
	return v, ok
}

// UserUUID is the uuid the bearer middleware resolved, or "" for
// unauthenticated requests.
func UserUUID(ctx context.Context) string {
	v, _ := value[string](ctx, userUUIDKey)
	return v
}

func WithUserUUID(ctx context.Context, uuid string) context.Context {
	return context.WithValue(ctx, userUUIDKey, uuid)
}

// ClientIP is the caller's address as resolved by the metadata middleware.
func ClientIP(ctx context.Context) string {
	v, _ := value[string](ctx, clientIPKey)
	return v
}

func UserAgent(ctx context.Context) string {
	v, _ := value[string](ctx, userAgentKey)
	return v
}

// WithClientMetadata stores the caller's address and User-Agent. Service tests
// use it in place of the middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey, clientIP)
	return context.WithValue(ctx, userAgentKey, userAgent)
}

func RequestID(ctx context.Context) string {
	v, _ := value[string](ctx, requestIDKey)
	return v
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// Now is the time the request arrived. Outside a request it is the wall clock.
func Now(ctx context.Context) time.Time {
	if t, ok := value[time.Time](ctx, requestTimeKey); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey, t)
}
