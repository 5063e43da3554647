package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/ghinaderbes2002/vita-hr-sub000/internal/requestctx"
)

// RequestID propagates an inbound X-Request-ID when it is a well-formed
// UUID and mints a fresh one otherwise, so log correlation cannot be
// polluted by arbitrary client strings.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(reqID); err != nil {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		ctx := requestctx.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetRequestID(ctx context.Context) string {
	return requestctx.GetRequestID(ctx)
}
