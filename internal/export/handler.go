package export

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"claimshub/internal/claims"
	"claimshub/internal/platform/middleware"
	domainerrors "claimshub/pkg/domain-errors"
	"claimshub/pkg/platform/httputil"
)

// ExportRequest carries the claim record to render. The client holds the
// full record after submission, so export is stateless.
type ExportRequest struct {
	Claim *claims.Claim `json:"claim"`
}

func (r *ExportRequest) Validate() error {
	if r.Claim == nil {
		return domainerrors.New(domainerrors.CodeBadRequest, "claim is required")
	}
	if r.Claim.Reference == "" {
		return domainerrors.New(domainerrors.CodeBadRequest, "claim reference is required")
	}
	return nil
}

// Handler serves the plain-text claim download.
type Handler struct {
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/api/claims/export", h.export)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ExportRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	document, err := Render(req.Claim)
	if err != nil {
		h.logger.ErrorContext(ctx, "claim export failed",
			"error", err,
			"reference", req.Claim.Reference,
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+Filename(req.Claim)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(document))
}
