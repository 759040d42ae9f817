package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/quantscan/leapscan/pkg/marketdata"
	"github.com/quantscan/leapscan/pkg/scanner"
)

// Server exposes one-shot scans over HTTP. Each request runs a fresh scan;
// nothing is cached or persisted between calls.
type Server struct {
	scanner *scanner.Scanner
	params  scanner.Params
	logger  *logrus.Logger
	port    string
}

func NewServer(sc *scanner.Scanner, params scanner.Params, logger *logrus.Logger, port string) *Server {
	return &Server{
		scanner: sc,
		params:  params,
		logger:  logger,
		port:    port,
	}
}

func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scan", s.handleScan)

	handler := corsMiddleware(mux)

	s.logger.Infof("Starting API server on port %s", s.port)
	return http.ListenAndServe(":"+s.port, handler)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	params := s.params
	if symbol := r.URL.Query().Get("symbol"); symbol != "" {
		params.Symbol = symbol
	}

	result, err := s.scanner.Scan(r.Context(), params)
	if err != nil {
		s.logger.WithError(err).WithField("symbol", params.Symbol).Error("Scan failed")

		var providerErr *marketdata.ProviderError
		switch {
		case errors.Is(err, scanner.ErrInvalidConfig):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.As(err, &providerErr):
			http.Error(w, err.Error(), http.StatusBadGateway)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithError(err).Error("Failed to encode JSON response")
	}
}
