package api

import (
	"log/slog"
	"net/http"
)

// Server handles HTTP requests for the verification service.
type Server struct {
	service  *Service
	adminKey string
	mux      *http.ServeMux
}

// NewServer creates a new Server with default mux. adminKey guards the
// key-management and stats endpoints; when empty they are disabled.
func NewServer(service *Service, adminKey string) *Server {
	return NewServerWithMux(service, adminKey, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(service *Service, adminKey string, mux *http.ServeMux) *Server {
	s := &Server{
		service:  service,
		adminKey: adminKey,
		mux:      mux,
	}
	s.registerRoutes()
	return s
}

// corsMiddleware adds CORS headers to responses
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next(w, r)
	}
}

// requireKey resolves the caller's API key and threads its ID through
// for usage recording.
func (s *Server) requireKey(next func(w http.ResponseWriter, r *http.Request, key *APIKey)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := s.service.Authenticate(r.Header.Get("X-API-Key"))
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusUnauthorized)
			return
		}
		next(w, r, key)
	}
}

// requireAdmin guards operator endpoints with the configured admin key.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.adminKey == "" || r.Header.Get("X-Admin-Key") != s.adminKey {
			writeJSONError(w, "admin key required", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key, X-Admin-Key")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// registerRoutes registers all API routes on the server's mux.
func (s *Server) registerRoutes() {
	// Verification endpoints (API-key callers)
	s.mux.HandleFunc("POST /api/verify", s.requireKey(s.handleVerify))
	s.mux.HandleFunc("POST /api/verify/image", s.requireKey(s.handleVerifyImage))

	// Operator endpoints
	s.mux.HandleFunc("POST /api/keys", s.requireAdmin(s.handleCreateKey))
	s.mux.HandleFunc("GET /api/keys", s.requireAdmin(s.handleListKeys))
	s.mux.HandleFunc("DELETE /api/keys/{id}", s.requireAdmin(s.handleRevokeKey))
	s.mux.HandleFunc("GET /api/stats", s.requireAdmin(s.handleStats))

	s.mux.HandleFunc("GET /healthz", s.handleHealth)
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "address", addr)
	return http.ListenAndServe(addr, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			s.mux.ServeHTTP(w, r)
		})(w, r)
	}))
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
