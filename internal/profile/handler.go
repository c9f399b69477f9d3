package profile

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gangland/pkg/platform/httputil"
	authmw "gangland/pkg/platform/middleware/auth"
	"gangland/pkg/requestcontext"
)

// Me addresses the authenticated user in /users paths.
const Me = "me"

const maxProfileBytes = 1 << 20

// wbnetUnlinked is the canned reply to WBNet link attempts.
var wbnetUnlinked = map[string]any{"message": "No WBNet user linked", "code": 2600}

type ProfileService interface {
	Exists(ctx context.Context, uuid string) error
	Inventory(ctx context.Context, uuid string) (json.RawMessage, error)
	PrivateProfile(ctx context.Context, uuid string) (json.RawMessage, error)
	SaveProfile(ctx context.Context, uuid string, doc map[string]any) error
}

type Handler struct {
	service   ProfileService
	validator authmw.TokenValidator
	logger    *slog.Logger
}

func NewHandler(service ProfileService, validator authmw.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{service: service, validator: validator, logger: logger}
}

// Register registers the /users routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireBearer(h.validator, authmw.UsersFailure, h.logger))
		for _, pattern := range []string{"/users/{uuid}", "/users/{uuid}/{sub}", "/users/{uuid}/{sub}/{sub2}"} {
			r.Get(pattern, h.handleGet)
			r.Put(pattern, h.handlePut)
		}
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	target, sub, sub2 := chi.URLParam(r, "uuid"), chi.URLParam(r, "sub"), chi.URLParam(r, "sub2")
	uuid := authmw.UserUUID(ctx)

	h.logger.DebugContext(ctx, "user data get",
		"target", target,
		"uuid", uuid,
		"request_id", requestcontext.RequestID(ctx),
	)

	if target != Me {
		if sub == "profile" && target == uuid {
			if sub2 != "private" {
				httputil.WriteJSON(w, http.StatusNotFound, map[string]string{
					"message": "Profile sub-resource not found or not implemented.",
				})
				return
			}
			doc, err := h.service.PrivateProfile(ctx, uuid)
			h.writeDocument(ctx, w, doc, err)
			return
		}
		if target != uuid {
			httputil.WriteText(w, http.StatusForbidden, "Forbidden: Cannot access another user's data.")
			return
		}
	}

	switch sub {
	case "":
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"user_id": uuid})
	case "inventory":
		doc, err := h.service.Inventory(ctx, uuid)
		h.writeDocument(ctx, w, doc, err)
	default:
		httputil.WriteJSON(w, http.StatusNotFound, map[string]string{
			"message": "Resource not found or not implemented.",
		})
	}
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	target, sub, sub2 := chi.URLParam(r, "uuid"), chi.URLParam(r, "sub"), chi.URLParam(r, "sub2")
	uuid := authmw.UserUUID(ctx)

	if target != Me && target != uuid {
		httputil.WriteText(w, http.StatusForbidden, "Forbidden: Cannot modify another user's data.")
		return
	}

	if err := h.service.Exists(ctx, uuid); err != nil {
		h.writeLookupError(ctx, w, err)
		return
	}

	switch {
	case sub == "wbnet" && target == Me:
		h.logger.DebugContext(ctx, "wbnet link attempt",
			"uuid", uuid,
			"request_id", requestID,
		)
		httputil.WriteJSON(w, http.StatusOK, wbnetUnlinked)
	case sub == "profile" && sub2 == "private":
		doc := decodeProfile(r)
		err := h.service.SaveProfile(ctx, uuid, doc)
		switch {
		case errors.Is(err, ErrInvalidProfile):
			httputil.WriteText(w, http.StatusBadRequest, "Invalid request body: Missing required fields (e.g., data.AccountXPLevel)")
		case errors.Is(err, ErrUserNotFound):
			httputil.WriteText(w, http.StatusNotFound, "User not found")
		case err != nil:
			h.logger.ErrorContext(ctx, "failed to save profile",
				"error", err,
				"uuid", uuid,
				"request_id", requestID,
			)
			httputil.WriteText(w, http.StatusInternalServerError, "Internal server error: Could not update profile data.")
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	default:
		httputil.WriteJSON(w, http.StatusNotFound, map[string]string{
			"message": "Resource for update not found or not implemented.",
		})
	}
}

func (h *Handler) writeDocument(ctx context.Context, w http.ResponseWriter, doc json.RawMessage, err error) {
	if err != nil {
		h.writeLookupError(ctx, w, err)
		return
	}
	httputil.WriteRawJSON(w, http.StatusOK, doc)
}

func (h *Handler) writeLookupError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, ErrUserNotFound) {
		h.logger.WarnContext(ctx, "user not found",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteText(w, http.StatusNotFound, "User not found")
		return
	}
	h.logger.ErrorContext(ctx, "user lookup failed",
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	httputil.WriteText(w, http.StatusInternalServerError, "Internal server error")
}

// decodeProfile reads a JSON object body. Numbers stay json.Number so large
// values survive the round trip.
func decodeProfile(r *http.Request) map[string]any {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxProfileBytes))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil
	}
	return doc
}
