package handler

import (
	"context"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"online-store/service"
)

const requestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// RequestID tags each request with an id, reusing the caller's
// X-Request-Id when one is sent.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// RequestIDFrom returns the id set by RequestID, or "-".
func RequestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return "-"
}

// Wrap applies the middleware chain: recovery, access log, CORS, request id.
func Wrap(h http.Handler, allowedOrigins []string) http.Handler {
	h = RequestID(h)
	h = handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", requestIDHeader}),
		handlers.AllowCredentials(),
	)(h)
	h = handlers.LoggingHandler(os.Stdout, h)
	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(h)
}

// NewRouter builds the full API. The result is a *mux.Router so the same
// value can back an http.Server or the Lambda proxy adapter.
func NewRouter(svc service.ServiceInterface, allowedOrigins []string) *mux.Router {
	api := mux.NewRouter()
	NewHandler(svc).RegisterRoutes(api)

	root := mux.NewRouter()
	root.PathPrefix("/").Handler(Wrap(api, allowedOrigins))
	return root
}
