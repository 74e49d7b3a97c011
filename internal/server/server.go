// Package server provides the HTTP REST API for the Bridge marketplace.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Kevin16883/Bridge-sub000/internal/config"
	"github.com/Kevin16883/Bridge-sub000/internal/db"
	"github.com/Kevin16883/Bridge-sub000/internal/grading"
	"github.com/Kevin16883/Bridge-sub000/internal/server/middleware"
	"github.com/Kevin16883/Bridge-sub000/internal/server/ratelimit"
	"github.com/Kevin16883/Bridge-sub000/internal/types"
)

// Store is the persistence the API needs. *db.DB implements it.
type Store interface {
	DBClient
	grading.Store

	Ping(ctx context.Context) error

	CreateProjectWithTasks(ctx context.Context, ownerID uuid.UUID, demand string, breakdown *types.TaskBreakdown) (*db.Project, error)
	GetProject(ctx context.Context, id uuid.UUID) (*db.Project, error)
	ListProjects(ctx context.Context, filters db.ProjectFilters) ([]db.Project, error)
	ListOpenTasks(ctx context.Context, filters db.TaskFilters) ([]db.Task, error)
	UpdateProjectStatus(ctx context.Context, id uuid.UUID, status db.ProjectStatus) error

	CreateChallenge(ctx context.Context, authorID uuid.UUID, title string, content types.ChallengeContent) (*db.Challenge, error)
	GetChallenge(ctx context.Context, id uuid.UUID) (*db.Challenge, error)
	CreateAttempt(ctx context.Context, challengeID, performerID uuid.UUID, response string) (*db.Attempt, error)
	ListAttempts(ctx context.Context, challengeID uuid.UUID, limit, offset int) ([]db.Attempt, error)

	CreateQuestion(ctx context.Context, authorID uuid.UUID, title, content, category string, tags []string) (*db.Question, error)
	GetQuestion(ctx context.Context, id uuid.UUID) (*db.Question, error)
	AddComment(ctx context.Context, questionID, authorID uuid.UUID, body string) (*db.Comment, error)
	SaveAnswer(ctx context.Context, questionID uuid.UUID, answer string) error
}

// Assistant runs the AI pipelines. *assist.Assistant implements it.
type Assistant interface {
	Decompose(ctx context.Context, demand string) (*types.TaskBreakdown, error)
	GenerateTags(ctx context.Context, title, content, category string) (*types.TagSet, error)
	SynthesizeAnswer(ctx context.Context, title, content string, comments []types.Comment) (*types.SynthesizedAnswer, error)
	Evaluate(ctx context.Context, challenge types.ChallengeContent, response string) (*types.EvaluationResult, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	store       Store
	assistant   Assistant
	grader      *grading.Grader
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	authHandler *AuthHandler
	validator   *validator.Validate
	logger      *slog.Logger
}

// Config holds server configuration
type Config struct {
	Port      int
	JWT       *config.JWTConfig
	Password  *config.PasswordConfig
	RateLimit *ratelimit.Config
	Logger    *slog.Logger
}

// New creates a new server instance
func New(cfg Config, store Store, assistant Assistant) (*Server, error) {
	if store == nil || assistant == nil {
		return nil, fmt.Errorf("store and assistant are required")
	}
	if cfg.JWT == nil || cfg.Password == nil {
		return nil, fmt.Errorf("JWT and password configuration are required")
	}
	if cfg.RateLimit == nil {
		cfg.RateLimit = ratelimit.LoadConfig()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		store:       store,
		assistant:   assistant,
		grader:      grading.New(store, assistant, logger),
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
		jwtService:  NewJWTService(cfg.JWT),
		validator:   validator.New(),
		logger:      logger,
	}
	s.authHandler = NewAuthHandler(NewUserService(store, cfg.Password), s.jwtService, logger)

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(s.routes())))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // covers a completion call with all its retries
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	authed := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	protect := func(h http.HandlerFunc) http.Handler { return authed(h) }
	only := func(role types.Role, h http.HandlerFunc) http.Handler {
		return authed(middleware.RequireRole(role)(h))
	}

	mux.HandleFunc("GET /health", s.handleHealth)

	// Auth
	mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	mux.Handle("PUT /auth/password", protect(s.authHandler.UpdatePassword))

	// AI previews
	mux.Handle("POST /ai/breakdown", protect(s.handleBreakdown))
	mux.Handle("POST /ai/tags", protect(s.handleTags))

	// Projects and tasks
	mux.Handle("POST /projects", only(types.RoleProvider, s.handleCreateProject))
	mux.Handle("GET /projects", protect(s.handleListProjects))
	mux.Handle("GET /projects/{id}", protect(s.handleGetProject))
	mux.Handle("PUT /projects/{id}/status", only(types.RoleProvider, s.handleUpdateProjectStatus))
	mux.Handle("GET /tasks", protect(s.handleListTasks))

	// Challenges
	mux.Handle("POST /challenges", protect(s.handleCreateChallenge))
	mux.Handle("GET /challenges/{id}", protect(s.handleGetChallenge))
	mux.Handle("POST /challenges/{id}/attempts", only(types.RolePerformer, s.handleSubmitAttempt))
	mux.Handle("GET /challenges/{id}/attempts", protect(s.handleListAttempts))

	// Community
	mux.Handle("POST /questions", protect(s.handleCreateQuestion))
	mux.Handle("GET /questions/{id}", protect(s.handleGetQuestion))
	mux.Handle("POST /questions/{id}/comments", protect(s.handleAddComment))
	mux.Handle("POST /questions/{id}/answer", protect(s.handleSynthesizeAnswer))

	return mux
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.rateLimiter.Stop()
	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
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
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"remote", r.RemoteAddr,
		)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "database": "ok"}
	if err := s.store.Ping(r.Context()); err != nil {
		status["database"] = "unreachable"
	}
	jsonResponse(w, http.StatusOK, status)
}

// extractClientID uses the IP address from RemoteAddr.
// X-Forwarded-For is ignored since it is client-controlled without a trusted proxy.
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
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds())
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.Warn("rate limit exceeded", "path", r.URL.Path, "method", r.Method, "limit", info.Limit)
	jsonResponse(w, http.StatusTooManyRequests, response)
}
