package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/faculty-recruitment/internal/config"
	"github.com/jonathan/faculty-recruitment/internal/recruitment"
	"github.com/jonathan/faculty-recruitment/internal/server/middleware"
	"github.com/jonathan/faculty-recruitment/internal/server/ratelimit"
	"github.com/jonathan/faculty-recruitment/internal/types"
)

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// FileOpener reads stored upload files; blobstore.Local implements it
type FileOpener interface {
	Open(ctx context.Context, id string) (io.ReadCloser, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer    *http.Server
	handler       http.Handler
	service       *recruitment.Service
	jwtService    *JWTService
	rateLimiter   *ratelimit.Limiter
	files         FileOpener
	health        HealthChecker
	webhookSecret []byte
	onShutdown    []func()
}

// Config holds server configuration and its wired dependencies
type Config struct {
	Port    int
	Service *recruitment.Service
	JWT     *config.JWTConfig

	// RateLimit defaults to ratelimit.LoadConfig(). RateLimitBackend
	// replaces the in-memory buckets when set.
	RateLimit        *ratelimit.Config
	RateLimitBackend ratelimit.Backend

	// Files serves GET /files/{key...} when set
	Files FileOpener
	// Health is pinged by GET /health when set
	Health HealthChecker

	// WebhookSecret signs payment webhook bodies; the webhook is disabled
	// when empty
	WebhookSecret string

	// OnShutdown runs after the HTTP server has stopped
	OnShutdown []func()
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Service == nil {
		return nil, fmt.Errorf("recruitment service is required")
	}
	if cfg.JWT == nil {
		return nil, fmt.Errorf("JWT config is required")
	}
	rateLimitConfig := cfg.RateLimit
	if rateLimitConfig == nil {
		rateLimitConfig = ratelimit.LoadConfig()
	}

	s := &Server{
		service:       cfg.Service,
		jwtService:    NewJWTService(cfg.JWT),
		rateLimiter:   ratelimit.NewLimiter(rateLimitConfig, ratelimit.WithBackend(cfg.RateLimitBackend)),
		files:         cfg.Files,
		health:        cfg.Health,
		webhookSecret: []byte(cfg.WebhookSecret),
		onShutdown:    cfg.OnShutdown,
	}

	authed := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	staff := func(h http.HandlerFunc) http.Handler {
		return authed(middleware.RequireRole(types.RoleAdmin, types.RoleReviewer)(h))
	}
	user := func(h http.HandlerFunc) http.Handler {
		return authed(h)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Jobs
	mux.Handle("POST /v1/jobs", staff(s.handleCreateJob))
	mux.Handle("GET /v1/jobs", user(s.handleListJobs))
	mux.Handle("GET /v1/jobs/{id}", user(s.handleGetJob))
	mux.Handle("PUT /v1/jobs/{id}", staff(s.handleUpdateJob))
	mux.Handle("POST /v1/jobs/{id}/status", staff(s.handleSetJobStatus))

	// Applications
	mux.Handle("POST /v1/applications", user(s.handleCreateApplication))
	mux.Handle("GET /v1/applications", user(s.handleListApplications))
	mux.Handle("GET /v1/applications/{id}", user(s.handleGetApplication))
	mux.Handle("DELETE /v1/applications/{id}", user(s.handleDeleteApplication))
	mux.Handle("GET /v1/applications/{id}/validate", user(s.handleValidateApplication))
	mux.Handle("POST /v1/applications/{id}/submit", user(s.handleSubmitApplication))
	mux.Handle("POST /v1/applications/{id}/withdraw", user(s.handleWithdrawApplication))

	// Sections
	mux.Handle("PUT /v1/applications/{id}/sections/{section}", user(s.handleSaveSectionData))
	mux.Handle("POST /v1/applications/{id}/sections/{section}/file", user(s.handleSaveSectionFile))
	mux.Handle("DELETE /v1/applications/{id}/sections/{section}/file", user(s.handleDeleteSectionFile))
	mux.Handle("GET /v1/applications/{id}/sections/{section}/validate", user(s.handleValidateSection))

	// Review
	mux.Handle("PATCH /v1/admin/applications/status", staff(s.handleBulkUpdateStatus))
	mux.Handle("PATCH /v1/admin/applications/{id}/status", staff(s.handleUpdateStatus))
	mux.Handle("PUT /v1/admin/applications/{id}/review-notes", staff(s.handleReviewNotes))
	mux.Handle("PATCH /v1/admin/applications/{id}/sections/{section}/verify", staff(s.handleVerifySection))

	// Payment gateway, authenticated by body signature
	mux.HandleFunc("POST /v1/payments/webhook", s.handlePaymentWebhook)

	if s.files != nil {
		mux.Handle("GET /files/{key...}", user(s.handleGetFile))
	}

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-stop:
	case err := <-errCh:
		s.cleanup()
		return fmt.Errorf("server error: %w", err)
	}
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.cleanup()
	log.Println("Server stopped")
	return nil
}

func (s *Server) cleanup() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	for _, fn := range s.onShutdown {
		fn()
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health.Ping(ctx); err != nil {
			log.Printf("[health] dependency check failed: %v", err)
			s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, ErrorResponse{Error: message})
}

// serviceError writes the response for an error returned by the service,
// logging system errors
func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[%s] %s failed: %v", r.Method, r.URL.Path, err)
	}
	s.jsonResponse(w, status, errorBody(err))
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; X-Forwarded-For is not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds())
		if seconds < 1 {
			seconds = 1
		}
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
