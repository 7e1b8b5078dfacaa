package control

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/1broseidon/previewgrid/internal/arrange"
)

// Server exposes the HTTP control surface consumed by the engine's
// blueprint HTTP node: reorder, status and health.
type Server struct {
	manager *arrange.Manager
	logger  *slog.Logger
	httpSrv *http.Server
}

// NewServer creates the control server on the given listen address.
func NewServer(addr string, manager *arrange.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		manager: manager,
		logger:  logger,
	}
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler builds the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/reorder", s.handleReorder)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/health", s.handleHealth)
	return s.withRecovery(s.withCORS(mux))
}

// Start begins serving in the background.
func (s *Server) Start() {
	go func() {
		s.logger.Info("control server listening", "addr", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("control server failed", "error", err)
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// withRecovery converts a panicking handler into a 500 response instead of
// killing the process; an individual bad request must never take down the
// control surface or the detection loop.
func (s *Server) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.Error("handler panic recovered", "path", r.URL.Path, "error", err)
				writeJSON(w, http.StatusInternalServerError, map[string]any{
					"success": false,
					"message": fmt.Sprintf("Error: %v", err),
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// withCORS allows cross-origin calls; the caller is an engine blueprint
// running off-origin.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type reorderRequest struct {
	Order *[]int `json:"order"`
}

type reorderResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Order   []int  `json:"order,omitempty"`
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, reorderResponse{
			Success: false,
			Message: "Method not allowed",
		})
		return
	}

	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Order == nil {
		writeJSON(w, http.StatusBadRequest, reorderResponse{
			Success: false,
			Message: "Missing 'order' field in JSON body",
		})
		return
	}

	outcome := s.manager.Reorder(*req.Order)

	status := http.StatusOK
	if !outcome.Success {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, reorderResponse{
		Success: outcome.Success,
		Message: outcome.Message,
		Order:   outcome.Order,
	})
}

type statusResponse struct {
	WindowsFound  int               `json:"windows_found"`
	CurrentOrder  []int             `json:"current_order"`
	WindowMapping map[string]string `json:"window_mapping"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		return
	}

	st := s.manager.Status()
	writeJSON(w, http.StatusOK, statusResponse{
		WindowsFound:  st.WindowsFound,
		CurrentOrder:  st.CurrentOrder,
		WindowMapping: st.Mapping,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already written; nothing left to do but note it.
		slog.Debug("failed to encode response", "error", err)
	}
}
