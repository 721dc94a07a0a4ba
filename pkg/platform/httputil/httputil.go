// Package httputil centralizes JSON response envelopes so every handler
// renders errors and payloads the same way.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "claimshub/pkg/domain-errors"
)

// Validatable is implemented by request types that validate and normalize
// themselves after decoding.
type Validatable interface {
	Validate() error
}

// Decode decodes a JSON request body into target and runs its validation.
// Both failure modes surface as domain errors ready for WriteError.
func Decode(r *http.Request, target Validatable) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	return target.Validate()
}

// WriteJSON writes a JSON payload with the given status code.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError renders a domain error as a JSON envelope. Internal errors omit
// the description so infrastructure details never reach clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := map[string]string{"error": string(code)}
	var de *dErrors.Error
	if code != dErrors.CodeInternal && errors.As(err, &de) && de.Message != "" {
		body["error_description"] = de.Message
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), body)
}
