package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"brushline/internal/platform/config"
	"brushline/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack
type StackOptions struct {
	// Origins allowed by CORS; empty allows none
	Origins []string
	// Timeout cancels a request context; series queries honor it
	Timeout time.Duration
	// Slow marks access log lines at warn level
	Slow time.Duration
}

// StackFromConfig reads CORS_ORIGINS, REQUEST_TIMEOUT and SLOW_REQUEST
func StackFromConfig(cfg config.Conf) StackOptions {
	return StackOptions{
		Origins: cfg.MayCSV("CORS_ORIGINS", nil),
		Timeout: cfg.MayDuration("REQUEST_TIMEOUT", 30*time.Second),
		Slow:    cfg.MayDuration("SLOW_REQUEST", 500*time.Millisecond),
	}
}

// RootStack is mounted on the bare router ahead of every module
// slashes are only stripped under /api/v1 since the docs UI lives at /api/docs/
func RootStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.Heartbeat("/health"),
	}
}

// CommonStack returns the middleware shared by every versioned module
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	return []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.StripSlashes(),
		middleware.RecoverJSON,
		middleware.NoCache(),
		middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: o.Slow}),
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.Origins}),
		middleware.Compress(flate.BestSpeed),
		middleware.Timeout(o.Timeout),
	}
}
