package middleware

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trickreich/SuluSyliusProducerPlugin/pkg/logger"
)

// RequestLogger stores a logger enriched with correlation_id, trace_id and
// span_id in the request context, for logger.FromContext downstream. Mount it
// after RequestLogging and Tracing.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ProductScope adds the product code URL parameter named param to the
// request context and to the request-scoped logger. Mount it on a route
// whose pattern declares param.
func ProductScope(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := chi.URLParam(r, param)
			if code == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := logger.WithProductCode(r.Context(), code)
			l := logger.FromContext(ctx).With(slog.String("product_code", code))
			ctx = logger.NewContext(ctx, l)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
