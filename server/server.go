package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/anggasct/greenwave"
	"github.com/anggasct/greenwave/detection"
)

// Server is the HTTP front of a managed signal controller
type Server struct {
	manager    *Manager
	aggregator *detection.Aggregator
	httpServer *http.Server
}

// updateResponse is the envelope returned by the update endpoints
type updateResponse struct {
	Status string              `json:"status"`
	Output *greenwave.Decision `json:"output,omitempty"`
	Counts []greenwave.Reading `json:"counts,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// detectionPayload is the request body of the detections endpoint
type detectionPayload struct {
	Detections []detection.Detection `json:"detections"`
}

// New creates a server for the given manager
func New(addr string, manager *Manager) *Server {
	s := &Server{manager: manager}
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return s
}

// WithAggregator enables the detections endpoint over the given aggregator
func (s *Server) WithAggregator(aggregator *detection.Aggregator) *Server {
	s.aggregator = aggregator
	return s
}

// Routes builds the HTTP handler tree with permissive CORS
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/update", s.handleUpdate)
	mux.HandleFunc("/detections", s.handleDetections)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/health", s.handleHealth)
	return cors(mux)
}

// ListenAndServe runs the server until Shutdown or a listener error
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the server, waiting for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// handleUpdate runs one decision cycle over a JSON array of lane readings
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "update requires POST")
		return
	}

	var readings []greenwave.Reading
	if err := json.NewDecoder(r.Body).Decode(&readings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	decision, err := s.manager.Apply(readings)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updateResponse{Status: "success", Output: decision})
}

// handleDetections classifies raw detections, then runs a decision
// cycle over the aggregated counts
func (s *Server) handleDetections(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "detections requires POST")
		return
	}
	if s.aggregator == nil {
		writeError(w, http.StatusNotImplemented, "no classifier configured")
		return
	}

	var payload detectionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	readings, err := s.aggregator.Aggregate(r.Context(), payload.Detections)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	decision, err := s.manager.Apply(readings)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updateResponse{Status: "success", Output: decision, Counts: readings})
}

// handleStatus reports the running controller's lane state
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "status requires GET")
		return
	}
	writeJSON(w, http.StatusOK, s.manager.Inspect())
}

// handleHealth is a liveness endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "ok"}
	if id, ok := s.manager.ControllerID(); ok {
		body["controller_id"] = id
	}
	writeJSON(w, http.StatusOK, body)
}

// cors wraps a handler with a permissive CORS policy for dashboards
func cors(next http.Handler) http.Handler {
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

// statusFor maps controller errors to HTTP status codes
func statusFor(err error) int {
	switch greenwave.GetErrorCode(err) {
	case greenwave.ErrCodeLaneNotFound, greenwave.ErrCodeInvalidLane, greenwave.ErrCodeInvalidConfiguration:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, updateResponse{Status: "error", Error: message})
}
