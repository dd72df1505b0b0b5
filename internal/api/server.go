package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/trollornot/troll-analyzer/internal/auth"
	"github.com/trollornot/troll-analyzer/internal/enhance"
	"github.com/trollornot/troll-analyzer/internal/storage"
)

// Enhancer is the optional LLM pass. Both the plain and cached analyzers
// satisfy it.
type Enhancer interface {
	Enhance(ctx context.Context, req enhance.Request) (*enhance.Analysis, error)
	ExtractConversation(ctx context.Context, imageBase64, mediaType string) (string, error)
}

// ServerConfig wires the server's collaborators. AnalysisRepo, VisitorRepo
// and Enhancer may be nil; the corresponding features degrade gracefully.
type ServerConfig struct {
	AnalysisRepo storage.AnalysisRepository
	VisitorRepo  storage.VisitorRepository
	AuthService  auth.Service
	Enhancer     Enhancer
	Logger       *zap.Logger
}

type Server struct {
	router       *chi.Mux
	analysisRepo storage.AnalysisRepository
	visitorRepo  storage.VisitorRepository
	authService  auth.Service
	enhancer     Enhancer
	logger       *zap.Logger
}

func NewServer(cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s := &Server{
		router:       r,
		analysisRepo: cfg.AnalysisRepo,
		visitorRepo:  cfg.VisitorRepo,
		authService:  cfg.AuthService,
		enhancer:     cfg.Enhancer,
		logger:       logger,
	}
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.handleHealth)

	// API v1
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/extract", s.handleExtract)

		r.Post("/admin/login", s.handleAdminLogin)

		// Protected admin routes
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(s.authService))

			r.Get("/admin/stats", s.handleAdminStats)
			r.Get("/admin/analyses/{analysisID}/similar", s.handleSimilarAnalyses)
		})
	})
}

func (s *Server) Run(addr string) error {
	return http.ListenAndServe(addr, s.router)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Helper to send JSON responses
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]any{"success": false, "error": message})
}
