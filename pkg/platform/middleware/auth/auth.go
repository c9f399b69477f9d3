// Package auth resolves the bearer token the game client sends into the
// authenticated user uuid.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"gangland/pkg/platform/httputil"
	"gangland/pkg/requestcontext"
)

// TokenValidator turns an access token into the user uuid it was issued for.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (string, error)
}

// Failure describes how a route family rejects bad credentials. The game
// client expects plain text bodies, and the status differs between routes.
type Failure struct {
	Status    int
	Missing   string
	Malformed string
	Invalid   string
}

// UsersFailure matches the /users routes.
var UsersFailure = Failure{
	Status:    http.StatusUnauthorized,
	Missing:   "Unauthorized: Missing Authorization header",
	Malformed: "Unauthorized: Invalid Authorization header format",
	Invalid:   "Unauthorized: Token verification failed",
}

// StoreFailure matches the /store transaction routes.
var StoreFailure = Failure{
	Status:    http.StatusBadRequest,
	Missing:   "Invalid authorization header: Missing",
	Malformed: "Invalid authorization header: Malformed or missing token",
	Invalid:   "Invalid authorization header: Token verification failed",
}

// UserUUID retrieves the authenticated user uuid from the context.
func UserUUID(ctx context.Context) string {
	return requestcontext.UserUUID(ctx)
}

// RequireBearer rejects requests without a valid "Bearer <token>" header and
// stores the resolved uuid in the request context.
func RequireBearer(validator TokenValidator, failure Failure, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			header := r.Header.Get("Authorization")
			if header == "" {
				logger.WarnContext(ctx, "unauthorized access - missing authorization header",
					"request_id", requestID,
				)
				httputil.WriteText(w, failure.Status, failure.Missing)
				return
			}

			scheme, token, _ := strings.Cut(header, " ")
			if scheme != "Bearer" || token == "" {
				logger.WarnContext(ctx, "unauthorized access - malformed authorization header",
					"request_id", requestID,
				)
				httputil.WriteText(w, failure.Status, failure.Malformed)
				return
			}

			uuid, err := validator.ValidateToken(ctx, token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteText(w, failure.Status, failure.Invalid)
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithUserUUID(ctx, uuid)))
		})
	}
}
