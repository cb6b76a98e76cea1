package middleware

import (
	"context"
	"net/http"

	"github.com/Afhammirza1/sharingapp/internal/models"
)

type contextKey string

const CallerContextKey contextKey = "caller"

// CallerResolver decides which caller a request acts on behalf of.
type CallerResolver func(r *http.Request) models.Caller

// AnonymousResolver attributes every request to the anonymous caller.
func AnonymousResolver(*http.Request) models.Caller {
	return models.Anonymous()
}

// Identify attaches the resolved caller to the request context.
func Identify(resolve CallerResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := resolve(r)
			if caller.IsZero() {
				caller = models.Anonymous()
			}
			ctx := context.WithValue(r.Context(), CallerContextKey, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetCallerFromContext retrieves the caller from the request context,
// falling back to the anonymous caller.
func GetCallerFromContext(ctx context.Context) models.Caller {
	caller, ok := ctx.Value(CallerContextKey).(models.Caller)
	if !ok {
		return models.Anonymous()
	}
	return caller
}
