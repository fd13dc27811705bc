package server

import (
	"fmt"
	"net/http"
	"wvw-dashboard/internal/errsink"
	"wvw-dashboard/internal/middleware"

	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// gzipMinSize skips compression for tiny bodies such as 304s and health checks.
const gzipMinSize = 500

// NewHandler wraps the dashboard routes with request ids, panic recovery,
// CORS and gzip.
func NewHandler(dashboard *DashboardServer, sink errsink.Sink, logger zerolog.Logger) (http.Handler, error) {
	gzip, err := gzhttp.NewWrapper(gzhttp.MinSize(gzipMinSize))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip wrapper: %w", err)
	}

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"ETag", "X-Request-ID"},
	})

	var h http.Handler = dashboard.Routes()
	h = gzip(h)
	h = c.Handler(h)
	h = middleware.Recover(sink)(h)
	h = middleware.RequestID(logger)(h)
	return h, nil
}
