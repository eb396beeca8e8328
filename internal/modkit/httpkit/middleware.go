package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"gavel/internal/platform/net/middleware"
)

// CommonStack returns the baseline middleware slice for the API scope.
// Compose auth middleware on top as needed in main
func CommonStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		// tracing / correlation
		middleware.RequestID(),
		middleware.RealIP(),

		// safety
		middleware.RecoverJSON,

		// cache / freshness
		middleware.NoCache(),

		// observability
		middleware.AccessLog(middleware.AccessLogOptions{Slow: 2 * time.Second}),

		// cross-origin
		middleware.CORS(middleware.CORSOptions{}),
		middleware.Compress(flate.BestSpeed),
		middleware.Heartbeat("/health"),
		middleware.RedirectSlashes(),
		middleware.StripSlashes(),
		middleware.Timeout(30 * time.Second),
	}
}
