package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	perr "brushline/internal/platform/errors"
	"brushline/internal/platform/logger"
	pnet "brushline/internal/platform/net"
	phttp "brushline/internal/platform/net/http"
)

// RecoverJSON turns a handler panic into the standard error envelope with code panic
// http.ErrAbortHandler is re-raised so net/http can abort the connection
func RecoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(v)
			}

			logger.C(r.Context()).Error().
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Str("path", r.URL.Path).
				Msg("panic recovered")

			if id := pnet.RequestID(r.Context()); id != "" {
				w.Header().Set("X-Request-ID", id)
			}
			phttp.Handle(func(*http.Request) phttp.Response {
				return phttp.Error(perr.PanicErrf("panic recovered"))
			})(w, r)
		}()
		next.ServeHTTP(w, r)
	})
}
