// Package handler exposes the claims API: direct claim creation from the
// funnel client and the authenticated dashboard listing.
package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"claimshub/internal/claims"
	"claimshub/internal/introducer"
	"claimshub/internal/platform/middleware"
	domainerrors "claimshub/pkg/domain-errors"
	"claimshub/pkg/platform/httputil"
)

type Handler struct {
	service     *claims.Service
	introducers *introducer.Service
	validator   middleware.JWTValidator
	logger      *slog.Logger
}

func New(service *claims.Service, introducers *introducer.Service, validator middleware.JWTValidator, logger *slog.Logger) *Handler {
	return &Handler{
		service:     service,
		introducers: introducers,
		validator:   validator,
		logger:      logger,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/api/claims", h.create)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Get("/api/claims", h.list)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateClaimRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if _, err := h.introducers.Resolve(ctx, req.Introducer); err != nil {
		httputil.WriteError(w, err)
		return
	}

	claim, err := h.service.Create(ctx, claims.CreateInput{
		Introducer:       req.Introducer,
		Title:            req.Title,
		FirstName:        req.FirstName,
		MiddleName:       req.MiddleName,
		LastName:         req.LastName,
		DateOfBirth:      req.DateOfBirth,
		DOBDay:           req.DOBDay,
		DOBMonth:         req.DOBMonth,
		DOBYear:          req.DOBYear,
		Email:            req.Email,
		Phone:            req.Phone,
		AddressLine1:     req.AddressLine1,
		AddressLine2:     req.AddressLine2,
		City:             req.City,
		County:           req.County,
		Postcode:         req.Postcode,
		HasCarFinance:    req.HasCarFinance,
		MultipleVehicles: req.MultipleVehicles,
		Signature:        req.Signature,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "claim creation failed",
			"error", err,
			"introducer", req.Introducer,
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, CreateClaimResponse{Success: true, Claim: claim})
}

// list returns the authenticated introducer's claims, newest first. An
// optional ?limit= caps the result.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := middleware.GetIntroducerSlug(ctx)

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httputil.WriteError(w, domainerrors.New(domainerrors.CodeBadRequest, "limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	out, err := h.service.List(ctx, slug, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "claim listing failed",
			"error", err,
			"introducer", slug,
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	if out == nil {
		out = []*claims.Claim{}
	}
	httputil.WriteJSON(w, http.StatusOK, ListClaimsResponse{Claims: out})
}
