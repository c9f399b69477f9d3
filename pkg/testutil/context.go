package testutil

import (
	"net/http"

	"gangland/pkg/requestcontext"
)

// WithUserUUID adds an authenticated user uuid to the request context.
func WithUserUUID(req *http.Request, uuid string) *http.Request {
	return req.WithContext(requestcontext.WithUserUUID(req.Context(), uuid))
}

// WithClientIP adds the resolved client address to the request context.
func WithClientIP(req *http.Request, ip string) *http.Request {
	return req.WithContext(requestcontext.WithClientMetadata(req.Context(), ip, req.UserAgent()))
}
