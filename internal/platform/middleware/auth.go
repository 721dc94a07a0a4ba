package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// JWTValidator defines the interface for validating dashboard bearer tokens.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator.
type JWTClaims struct {
	Subject        string
	IntroducerSlug string
}

// Context keys for storing authenticated identity information.
type contextKeySubject struct{}
type contextKeyIntroducer struct{}

var (
	ContextKeySubject    = contextKeySubject{}
	ContextKeyIntroducer = contextKeyIntroducer{}
)

// GetSubject retrieves the authenticated subject from the context.
func GetSubject(ctx context.Context) string {
	subject, ok := ctx.Value(ContextKeySubject).(string)
	if !ok {
		return ""
	}
	return subject
}

// GetIntroducerSlug retrieves the authenticated introducer slug from the context.
func GetIntroducerSlug(ctx context.Context) string {
	slug, ok := ctx.Value(ContextKeyIntroducer).(string)
	if !ok {
		return ""
	}
	return slug
}

// RequireAuth validates the Authorization bearer token and stores its claims
// in the request context. Requests without a valid token get 401.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				unauthorized(w)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				unauthorized(w)
				return
			}

			ctx = context.WithValue(ctx, ContextKeySubject, claims.Subject)
			ctx = context.WithValue(ctx, ContextKeyIntroducer, claims.IntroducerSlug)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"Invalid or expired token"}`))
}
