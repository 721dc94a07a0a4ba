package addresslookup

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"claimshub/internal/platform/middleware"
	domainerrors "claimshub/pkg/domain-errors"
	"claimshub/pkg/platform/httputil"
	"claimshub/pkg/platform/sentinel"
)

// Handler exposes the postcode lookup endpoint.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/api/address-lookup", h.lookup)
}

// LookupResponse wraps candidate addresses for a postcode.
type LookupResponse struct {
	Addresses []Candidate `json:"addresses"`
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	postcode := r.URL.Query().Get("postcode")
	if postcode == "" {
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeBadRequest, "postcode is required"))
		return
	}

	candidates, err := h.service.Lookup(ctx, postcode)
	if err != nil {
		if errors.Is(err, sentinel.ErrUnavailable) {
			httputil.WriteError(w, domainerrors.New(domainerrors.CodeUnavailable, "address lookup is temporarily unavailable"))
			return
		}
		h.logger.ErrorContext(ctx, "address lookup failed",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	if candidates == nil {
		candidates = []Candidate{}
	}
	httputil.WriteJSON(w, http.StatusOK, LookupResponse{Addresses: candidates})
}
