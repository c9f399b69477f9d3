package shop

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"gangland/pkg/platform/httputil"
	authmw "gangland/pkg/platform/middleware/auth"
	"gangland/pkg/requestcontext"
)

// validVouchers are the voucher ids the shipped client redeems.
var validVouchers = []string{
	"e8fd70ec-f3ec-519b-8b57-70518c4c4f74",
	"640144eb-7862-5186-90d0-606211ec2271",
	"54d80a04-cfbc-51a4-91a1-a88a5c96e7ea",
	"82a9febc-5f11-57db-8464-2ed2b4df74f9",
}

type TransactionService interface {
	ProcessTransaction(ctx context.Context, uuid, transactionID string) (*Unlocks, error)
}

type Handler struct {
	service   TransactionService
	validator authmw.TokenValidator
	logger    *slog.Logger
}

func NewHandler(service TransactionService, validator authmw.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{service: service, validator: validator, logger: logger}
}

// Register registers the store transaction routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/store/vouchers/transactions", h.handleVoucherTransaction)
	r.Post("/store/purchases/transactions", h.handlePurchaseTransaction)

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireBearer(h.validator, authmw.StoreFailure, h.logger))
		r.Put("/store/vouchers/{transactionID}", h.handleProcessTransaction)
		r.Put("/store/purchases/{transactionID}", h.handleProcessTransaction)
	})
}

func (h *Handler) handleVoucherTransaction(w http.ResponseWriter, r *http.Request) {
	voucherID := httputil.StringField(httputil.ReadFields(r), "voucher_id")
	if voucherID == "" || !slices.Contains(validVouchers, voucherID) {
		httputil.WriteText(w, http.StatusBadRequest, "Invalid or missing voucher ID")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"transaction_id": voucherID})
}

func (h *Handler) handlePurchaseTransaction(w http.ResponseWriter, r *http.Request) {
	offerID := httputil.ReadFields(r)["offer_id"]
	if !truthy(offerID) {
		httputil.WriteText(w, http.StatusBadRequest, "Missing offer_id in request body")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"transaction_id": offerID})
}

func (h *Handler) handleProcessTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	uuid := authmw.UserUUID(ctx)
	transactionID := chi.URLParam(r, "transactionID")

	unlocks, err := h.service.ProcessTransaction(ctx, uuid, transactionID)
	if errors.Is(err, ErrUserNotFound) {
		h.logger.ErrorContext(ctx, "transaction for unknown user",
			"uuid", uuid,
			"transaction_id", transactionID,
			"request_id", requestID,
		)
		httputil.WriteText(w, http.StatusInternalServerError, "Internal server error: User not found")
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to process transaction",
			"error", err,
			"transaction_id", transactionID,
			"request_id", requestID,
		)
		httputil.WriteText(w, http.StatusInternalServerError, "Internal server error: Could not update inventory.")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, unlocks)
}

// truthy mirrors how the client treats an offer id: absent, empty, zero and
// false all mean missing.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case float64:
		return t != 0
	case bool:
		return t
	default:
		return true
	}
}
