package handler

import (
	"claimshub/internal/funnel/signature"
	domainerrors "claimshub/pkg/domain-errors"
)

// FieldsRequest carries step answers for write-through saves and
// advancement attempts.
type FieldsRequest struct {
	Fields map[string]string `json:"fields"`
}

func (r *FieldsRequest) Validate() error {
	if r.Fields == nil {
		r.Fields = map[string]string{}
	}
	return nil
}

// SignatureRequest carries the captured signature: either a rendered PNG
// data URL or the raw strokes to rasterize.
type SignatureRequest struct {
	SignatureData string             `json:"signature_data"`
	Strokes       []signature.Stroke `json:"strokes"`
}

func (r *SignatureRequest) Validate() error {
	if r.SignatureData == "" && len(r.Strokes) == 0 {
		return domainerrors.New(domainerrors.CodeBadRequest, "signature_data or strokes is required")
	}
	return nil
}

// SubmitRequest confirms the terms acceptance that gates final submission.
type SubmitRequest struct {
	TermsAccepted bool `json:"terms_accepted"`
}

func (r *SubmitRequest) Validate() error { return nil }
