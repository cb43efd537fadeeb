// Package devserver is a reference implementation of the duties REST API
// backed by SQLite. It serves local development and end-to-end tests.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"duties/internal/service"
	"duties/internal/validate"
)

// DefaultAddr matches the client's default API URL.
const DefaultAddr = "localhost:3001"

// Prefix is the path every route is mounted under.
const Prefix = "/api"

const maxBodySize = 1 << 20

// Server exposes a Store over HTTP.
type Server struct {
	store *Store
	log   *slog.Logger
}

// New creates a server. A nil logger discards output.
func New(store *Store, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Server{store: store, log: log}
}

// Handler returns the routed API handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("GET "+Prefix+"/lists", s.handleListLists)
	mux.HandleFunc("POST "+Prefix+"/lists", s.handleCreateList)
	mux.HandleFunc("GET "+Prefix+"/lists/{id}", s.handleGetList)
	mux.HandleFunc("PUT "+Prefix+"/lists/{id}", s.handleUpdateList)
	mux.HandleFunc("DELETE "+Prefix+"/lists/{id}", s.handleDeleteList)

	mux.HandleFunc("GET "+Prefix+"/duties", s.handleListDuties)
	mux.HandleFunc("POST "+Prefix+"/duties", s.handleCreateDuty)
	mux.HandleFunc("GET "+Prefix+"/duties/{id}", s.handleGetDuty)
	mux.HandleFunc("PUT "+Prefix+"/duties/{id}", s.handleUpdateDuty)
	mux.HandleFunc("DELETE "+Prefix+"/duties/{id}", s.handleDeleteDuty)

	return s.logRequests(mux)
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.log.Info("listening", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"request_id", r.Header.Get("X-Request-ID"),
			"duration", time.Since(start),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) handleListLists(w http.ResponseWriter, r *http.Request) {
	lists, err := s.store.ListLists(r.Context())
	if err != nil {
		s.writeError(w, err, "List", "")
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

func (s *Server) handleGetList(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	list, err := s.store.GetList(r.Context(), id)
	if err != nil {
		s.writeError(w, err, "List", id)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	var input service.CreateListInput
	if !s.decode(w, r, &input) {
		return
	}
	list, err := s.store.CreateList(r.Context(), input)
	if err != nil {
		s.writeError(w, err, "List", "")
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

func (s *Server) handleUpdateList(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var input service.UpdateListInput
	if !s.decode(w, r, &input) {
		return
	}
	list, err := s.store.UpdateList(r.Context(), id, input)
	if err != nil {
		s.writeError(w, err, "List", id)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.DeleteList(r.Context(), id); err != nil {
		s.writeError(w, err, "List", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListDuties(w http.ResponseWriter, r *http.Request) {
	var filter service.DutyFilter
	if r.URL.Query().Has("list_id") {
		id := r.URL.Query().Get("list_id")
		filter.ListID = &id
	}
	duties, err := s.store.ListDuties(r.Context(), filter)
	if err != nil {
		s.writeError(w, err, "Duty", "")
		return
	}
	writeJSON(w, http.StatusOK, duties)
}

func (s *Server) handleGetDuty(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	duty, err := s.store.GetDuty(r.Context(), id)
	if err != nil {
		s.writeError(w, err, "Duty", id)
		return
	}
	writeJSON(w, http.StatusOK, duty)
}

func (s *Server) handleCreateDuty(w http.ResponseWriter, r *http.Request) {
	var input service.CreateDutyInput
	if !s.decode(w, r, &input) {
		return
	}
	duty, err := s.store.CreateDuty(r.Context(), input)
	if err != nil {
		s.writeError(w, err, "Duty", "")
		return
	}
	writeJSON(w, http.StatusCreated, duty)
}

func (s *Server) handleUpdateDuty(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var input service.UpdateDutyInput
	if !s.decode(w, r, &input) {
		return
	}
	duty, err := s.store.UpdateDuty(r.Context(), id, input)
	if err != nil {
		s.writeError(w, err, "Duty", id)
		return
	}
	writeJSON(w, http.StatusOK, duty)
}

func (s *Server) handleDeleteDuty(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.DeleteDuty(r.Context(), id); err != nil {
		s.writeError(w, err, "Duty", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body", nil)
		return false
	}
	return true
}

type successBody struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(successBody{Success: true, Data: data})
}

func writeFailure(w http.ResponseWriter, status int, code, message string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: code, Message: message, Details: details})
}

// writeError maps store errors onto the API's error envelope.
func (s *Server) writeError(w http.ResponseWriter, err error, kind, id string) {
	var verr *validate.Error
	switch {
	case errors.As(err, &verr):
		writeFailure(w, http.StatusBadRequest, "validation_error", verr.Error(),
			map[string]string{"field": verr.Field, "kind": string(verr.Kind)})
	case errors.Is(err, ErrUnknownList):
		writeFailure(w, http.StatusBadRequest, "invalid_list", "Referenced list does not exist", nil)
	case errors.Is(err, ErrInvalidStatus):
		writeFailure(w, http.StatusBadRequest, "validation_error", "Status must be one of pending, in_progress, done", nil)
	case errors.Is(err, ErrNotFound):
		writeFailure(w, http.StatusNotFound, "not_found", fmt.Sprintf("%s with id %s not found", kind, id), nil)
	default:
		s.log.Error("request failed", "error", err)
		writeFailure(w, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
	}
}
