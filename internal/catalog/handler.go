package catalog

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"gangland/pkg/platform/httputil"
	"gangland/pkg/requestcontext"
)

// creditsVendor is the offers vendor id that selects the credit packs.
const creditsVendor = 4

// Handler serves the static content routes.
type Handler struct {
	content *Content
	logger  *slog.Logger
}

func NewHandler(content *Content, logger *slog.Logger) *Handler {
	return &Handler{content: content, logger: logger}
}

// Register registers the content routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/files/netvars.dat", h.handleNetvars)
	r.Get("/motd", h.handleMOTD)
	r.Get("/store/catalog/general", h.handleCatalog)
	r.Get("/store/offers", h.handleOffers)
}

func (h *Handler) handleNetvars(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"data": h.content.Netvars})
}

func (h *Handler) handleMOTD(w http.ResponseWriter, r *http.Request) {
	httputil.WriteRawJSON(w, http.StatusOK, h.content.MOTD)
}

func (h *Handler) handleCatalog(w http.ResponseWriter, r *http.Request) {
	httputil.WriteRawJSON(w, http.StatusOK, h.content.Catalog)
}

func (h *Handler) handleOffers(w http.ResponseWriter, r *http.Request) {
	vendor := r.URL.Query().Get("vendor")
	h.logger.DebugContext(r.Context(), "store offers requested",
		"vendor", vendor,
		"request_id", requestcontext.RequestID(r.Context()),
	)
	if n, err := strconv.ParseFloat(strings.TrimSpace(vendor), 64); err == nil && n == creditsVendor {
		httputil.WriteRawJSON(w, http.StatusOK, h.content.Credits)
		return
	}
	httputil.WriteRawJSON(w, http.StatusOK, h.content.Store)
}
