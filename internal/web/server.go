// Package web provides the JSON API for the feed normalization pipeline.
package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/feedflow/feedflow/internal/web/middleware"
	"github.com/feedflow/feedflow/internal/workflow"
)

// Options tunes the HTTP layer.
type Options struct {
	// MaxUploadSize bounds multipart upload bodies in bytes.
	MaxUploadSize int64
	// RateLimit is requests per RateWindow per client IP. Zero disables
	// rate limiting.
	RateLimit  int
	RateWindow time.Duration
	// TrustedProxies lists CIDRs whose forwarding headers are honored.
	TrustedProxies []string
}

// Server is the HTTP server for the pipeline API.
type Server struct {
	service *workflow.Service
	opts    Options
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a new Server instance.
func NewServer(service *workflow.Service, opts Options) *Server {
	if opts.RateWindow <= 0 {
		opts.RateWindow = time.Minute
	}
	s := &Server{
		service: service,
		opts:    opts,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.opts.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(60 * time.Second))

	s.router.Use(securityHeaders)

	if s.opts.RateLimit > 0 {
		limiter := newRateLimiter(s.opts.RateLimit, s.opts.RateWindow)
		s.router.Use(limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)

		// Session lifecycle
		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)

			// Upload and dataset preview
			r.Post("/upload", s.handleUpload)
			r.Get("/dataset", s.handleDataset)

			// Field mapping
			r.Get("/mappings", s.handleGetMappings)
			r.Put("/mappings", s.handleSetMapping)
			r.Post("/mappings/auto", s.handleAutoMap)
			r.Post("/mappings/validate", s.handleValidateMappings)

			// Custom fields
			r.Post("/custom-fields", s.handleAddCustomField)
			r.Put("/custom-fields/{fieldID}", s.handleUpdateCustomField)
			r.Delete("/custom-fields/{fieldID}", s.handleRemoveCustomField)

			// Schema design
			r.Post("/schema", s.handleGenerateSchema)
			r.Get("/schema", s.handleGetSchema)
			r.Put("/schema", s.handleUpdateSchema)
			r.Post("/schema/fields", s.handleAddSchemaField)
			r.Put("/schema/fields/{fieldName}", s.handleUpdateSchemaField)
			r.Delete("/schema/fields/{fieldName}", s.handleRemoveSchemaField)
			r.Post("/schema/categories", s.handleAddCategory)
			r.Put("/schema/categories", s.handleSetCategoryTarget)
			r.Delete("/schema/categories", s.handleRemoveCategory)
			r.Post("/schema/categories/regenerate", s.handleRegenerateCategories)
			r.Post("/finalize", s.handleFinalize)

			// Re-hydration from history
			r.Post("/load/upload/{recordID}", s.handleLoadUpload)
			r.Post("/load/mapping/{recordID}", s.handleLoadMapping)
			r.Post("/load/schema/{recordID}", s.handleLoadSchema)

			// Export
			r.Get("/export", s.handleExport)
		})

		// History
		r.Get("/history/uploads", s.handleListUploads)
		r.Get("/history/uploads/{recordID}", s.handleGetUploadRecord)
		r.Get("/history/mappings", s.handleListMappings)
		r.Get("/history/mappings/{recordID}", s.handleGetMappingRecord)
		r.Get("/history/schemas", s.handleListSchemas)
		r.Get("/history/schemas/{recordID}", s.handleGetSchemaRecord)
		r.Get("/history/exports", s.handleListExports)
		r.Delete("/history", s.handleClearHistory)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

// rateLimiter implements a simple token bucket rate limiter per IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int
	window   time.Duration
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
	}
	go rl.cleanup()
	return rl
}

// cleanup removes stale visitor entries every minute.
func (rl *rateLimiter) cleanup() {
	for {
		time.Sleep(time.Minute)
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{
			tokens:    rl.rate - 1,
			lastReset: time.Now(),
		}
		return true
	}

	if time.Since(v.lastReset) > rl.window {
		v.tokens = rl.rate - 1
		v.lastReset = time.Now()
		return true
	}

	if v.tokens <= 0 {
		return false
	}

	v.tokens--
	return true
}

// middleware returns an HTTP middleware that rate limits by IP.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(r.RemoteAddr) {
			w.Header().Set("Retry-After", "60")
			respondErrorJSON(w, workflow.UserMessage{
				Message: "Too many requests",
				Action:  "Please wait a moment before trying again",
				Code:    "RATE001",
			}, http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
