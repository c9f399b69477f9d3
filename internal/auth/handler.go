package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"gangland/pkg/platform/httputil"
	"gangland/pkg/requestcontext"
)

// TokenService is what the handler needs from Service.
type TokenService interface {
	IssueToken(ctx context.Context, ticket, ip string) (*TokenResponse, error)
}

type Handler struct {
	service TokenService
	logger  *slog.Logger
}

func NewHandler(service TokenService, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register registers the auth routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/token", h.handleToken)
}

func (h *Handler) handleToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	header := r.Header.Get("Authorization")
	if header == "" {
		h.logger.WarnContext(ctx, "token request with missing authorization header",
			"request_id", requestID,
		)
		httputil.WriteText(w, http.StatusBadRequest, "Invalid authorization header: Missing")
		return
	}

	scheme, _, _ := strings.Cut(header, " ")
	ticket := httputil.StringField(httputil.ReadFields(r), "ticket")
	if scheme != "Basic" || ticket == "" {
		h.logger.WarnContext(ctx, "token request with invalid authorization header or missing ticket",
			"request_id", requestID,
		)
		httputil.WriteText(w, http.StatusBadRequest, "Invalid authorization header or missing ticket")
		return
	}

	res, err := h.service.IssueToken(ctx, ticket, requestcontext.ClientIP(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue token",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteText(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, res)
}
