package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpserver "github.com/fairyhunter13/thumbnail-analyzer/internal/adapter/httpserver"
	"github.com/fairyhunter13/thumbnail-analyzer/internal/adapter/observability"
	"github.com/fairyhunter13/thumbnail-analyzer/internal/config"
)

// ParseOrigins splits a comma-separated origin list into a slice, trimming spaces.
// If the input is empty, returns ["*"].
func ParseOrigins(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return []string{"*"}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// BuildRouter constructs the HTTP handler with all middlewares and routes.
func BuildRouter(cfg config.Config, srv *httpserver.Server) http.Handler {
	r := chi.NewRouter()
	// Security & instrumentation middleware
	r.Use(httpserver.Recoverer())
	r.Use(httpserver.RequestID())
	// Script generation can legitimately run for a minute; the write timeout
	// is the outer bound.
	reqTimeout := cfg.HTTPWriteTimeout - time.Second
	if reqTimeout <= 0 {
		reqTimeout = 89 * time.Second
	}
	r.Use(httpserver.TimeoutMiddleware(reqTimeout))
	r.Use(httpserver.TraceMiddleware)
	r.Use(httpserver.AccessLog())
	r.Use(observability.HTTPMetricsMiddleware)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ParseOrigins(cfg.CORSAllowOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Rate limit the provider-backed endpoints
	r.Group(func(wr chi.Router) {
		wr.Use(httprate.LimitByIP(cfg.RateLimitPerMin, 1*time.Minute))
		wr.Post("/generate_script", srv.GenerateScript())
		wr.Post("/generate_tweet", srv.GenerateTweet())
		wr.Post("/upload_and_query", srv.UploadAndQuery())
		wr.Post("/compare_models", srv.CompareModels())
		wr.Get("/analyze_keyword", srv.AnalyzeKeyword())
		wr.Get("/keyword_metrics", srv.KeywordMetrics())
	})

	r.Get("/", srv.Index())
	r.Get("/healthz", srv.Healthz())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) { promhttp.Handler().ServeHTTP(w, r) })

	return httpserver.SecurityHeaders(r)
}
