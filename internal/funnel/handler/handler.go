// Package handler exposes the visitor-facing funnel API under the
// introducer's slug prefix. Every route runs behind the session middleware
// so the flow controller always has a (session, introducer) pair.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"claimshub/internal/funnel"
	"claimshub/internal/platform/middleware"
	"claimshub/pkg/platform/httputil"
)

type Handler struct {
	service *funnel.Service
	logger  *slog.Logger
}

func New(service *funnel.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/{introducer}", func(r chi.Router) {
		r.Use(middleware.Session)
		r.Get("/", h.enter)
		r.Route("/steps/{step}", func(r chi.Router) {
			r.Get("/", h.step)
			r.Post("/fields", h.saveFields)
			r.Post("/advance", h.advance)
			r.Post("/back", h.back)
		})
		r.Get("/checking", h.checking)
		r.Get("/signature", h.signing)
		r.Post("/signature", h.saveSignature)
		r.Delete("/signature", h.clearSignature)
		r.Post("/submit", h.submit)
		r.Get("/thank-you", h.thankYou)
	})
}

func (h *Handler) enter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, err := h.service.Enter(ctx, middleware.GetFunnelSession(ctx), chi.URLParam(r, "introducer"))
	if err != nil {
		h.writeError(w, r, "funnel entry", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, state)
}

func (h *Handler) step(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, err := h.service.Step(ctx, middleware.GetFunnelSession(ctx),
		chi.URLParam(r, "introducer"), chi.URLParam(r, "step"))
	if err != nil {
		h.writeError(w, r, "step view", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, state)
}

func (h *Handler) saveFields(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req FieldsRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	err := h.service.SaveFields(ctx, middleware.GetFunnelSession(ctx),
		chi.URLParam(r, "introducer"), chi.URLParam(r, "step"), req.Fields)
	if err != nil {
		h.writeError(w, r, "field save", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"saved": true})
}

func (h *Handler) advance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req FieldsRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.service.Advance(ctx, middleware.GetFunnelSession(ctx),
		chi.URLParam(r, "introducer"), chi.URLParam(r, "step"), req.Fields)
	if err != nil {
		h.writeError(w, r, "advance", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) back(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	target, err := h.service.Back(ctx, middleware.GetFunnelSession(ctx),
		chi.URLParam(r, "introducer"), chi.URLParam(r, "step"))
	if err != nil {
		h.writeError(w, r, "back", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]*funnel.Target{"next": target})
}

func (h *Handler) checking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result, err := h.service.Checking(ctx, middleware.GetFunnelSession(ctx), chi.URLParam(r, "introducer"))
	if err != nil {
		h.writeError(w, r, "eligibility check", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) signing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, err := h.service.Signing(ctx, middleware.GetFunnelSession(ctx), chi.URLParam(r, "introducer"))
	if err != nil {
		h.writeError(w, r, "signing state", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, state)
}

func (h *Handler) saveSignature(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SignatureRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	state, err := h.service.SaveSignature(ctx, middleware.GetFunnelSession(ctx),
		chi.URLParam(r, "introducer"), req.SignatureData, req.Strokes)
	if err != nil {
		h.writeError(w, r, "signature save", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, state)
}

func (h *Handler) clearSignature(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, err := h.service.ClearSignature(ctx, middleware.GetFunnelSession(ctx), chi.URLParam(r, "introducer"))
	if err != nil {
		h.writeError(w, r, "signature clear", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, state)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SubmitRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	claim, err := h.service.Submit(ctx, middleware.GetFunnelSession(ctx),
		chi.URLParam(r, "introducer"), req.TermsAccepted)
	if err != nil {
		h.writeError(w, r, "submit", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"success": true, "claim": claim})
}

func (h *Handler) thankYou(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	receipt, err := h.service.ThankYou(ctx, middleware.GetFunnelSession(ctx), chi.URLParam(r, "introducer"))
	if err != nil {
		h.writeError(w, r, "thank you", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, receipt)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	h.logger.WarnContext(ctx, op+" failed",
		"error", err,
		"introducer", chi.URLParam(r, "introducer"),
		"request_id", middleware.GetRequestID(ctx),
	)
	httputil.WriteError(w, err)
}
