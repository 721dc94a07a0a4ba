package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"claimshub/internal/platform/middleware"
	"claimshub/pkg/platform/httputil"
)

// Handler serves the authenticated introducer dashboard.
type Handler struct {
	service   *Service
	validator middleware.JWTValidator
	logger    *slog.Logger
}

func NewHandler(service *Service, validator middleware.JWTValidator, logger *slog.Logger) *Handler {
	return &Handler{service: service, validator: validator, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Get("/api/introducers/stats", h.stats)
	})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := middleware.GetIntroducerSlug(ctx)

	stats, err := h.service.StatsFor(ctx, slug)
	if err != nil {
		h.logger.ErrorContext(ctx, "dashboard stats failed",
			"error", err,
			"introducer", slug,
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}
