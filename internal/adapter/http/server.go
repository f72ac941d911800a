// Package http exposes the engine operations over a thin JSON API. It
// carries no business logic: handlers parse requests, call one engine
// operation and translate the result or its error kind into a response.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/openbucketeer/backend/internal/domain"
	"github.com/openbucketeer/backend/internal/usecase/balance"
	"github.com/openbucketeer/backend/internal/usecase/distribution"
	"github.com/openbucketeer/backend/internal/usecase/grouping"
	"github.com/openbucketeer/backend/internal/usecase/lifecycle"
	"github.com/openbucketeer/backend/internal/usecase/versioning"
)

// Server wires the engine services into an http.Handler.
type Server struct {
	Grouping     *grouping.Service
	Versioning   *versioning.Service
	Balance      *balance.Service
	Lifecycle    *lifecycle.Service
	Distribution *distribution.Service

	logger *slog.Logger
	mux    *http.ServeMux
}

// NewServer creates a new API server instance.
func NewServer(
	groupingService *grouping.Service,
	versioningService *versioning.Service,
	balanceService *balance.Service,
	lifecycleService *lifecycle.Service,
	distributionService *distribution.Service,
	logger *slog.Logger,
) *Server {
	s := &Server{
		Grouping:     groupingService,
		Versioning:   versioningService,
		Balance:      balanceService,
		Lifecycle:    lifecycleService,
		Distribution: distributionService,
		logger:       logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/groups", s.handleListGroups)
	mux.HandleFunc("POST /api/groups", s.handleCreateGroup)
	mux.HandleFunc("DELETE /api/groups/{id}", s.handleDeleteGroup)
	mux.HandleFunc("POST /api/groups/{id}/move", s.handleMoveGroup)
	mux.HandleFunc("GET /api/buckets", s.handleListBuckets)
	mux.HandleFunc("POST /api/buckets", s.handleCreateBucket)
	mux.HandleFunc("PUT /api/buckets/{id}", s.handleUpdateBucket)
	mux.HandleFunc("POST /api/buckets/{id}/close", s.handleCloseBucket)
	mux.HandleFunc("DELETE /api/buckets/{id}", s.handleDeleteBucket)
	mux.HandleFunc("GET /api/buckets/{id}/figures", s.handleFigures)
	mux.HandleFunc("POST /api/distribute", s.handleDistribute)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux = mux

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// writeError translates a domain error kind into an HTTP status. Every
// failure surfaces its human-readable message to the caller.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var de *domain.Error
	if errors.As(err, &de) {
		switch de.Kind {
		case domain.KindNotFound:
			status = http.StatusNotFound
		case domain.KindValidation:
			status = http.StatusUnprocessableEntity
		case domain.KindConstraint, domain.KindConflict:
			status = http.StatusConflict
		case domain.KindStorage:
			status = http.StatusInternalServerError
		}
	}

	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "url", r.URL.Path, "error", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeBadRequest(w http.ResponseWriter, msg string) {
	s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}
