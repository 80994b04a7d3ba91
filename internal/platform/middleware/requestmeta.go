package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"grantflow/pkg/requestcontext"
)

// RequestMeta stamps every request with a correlation ID and a single
// request-scoped timestamp. All mutations committed by one request observe
// the same clock reading.
func RequestMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		ctx = requestcontext.WithTime(ctx, time.Now().UTC())
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
