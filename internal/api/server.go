// Package api exposes the reconciliation core over HTTP as a thin JSON
// surface. No rendering, no auth: those live elsewhere.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ACTO-LLC/modern-accounting-sub000/internal/directory"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/lifecycle"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/pipeline"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/store"
)

// Server routes reconciliation operations to the core packages.
type Server struct {
	importer *pipeline.Importer
	ctrl     *lifecycle.Controller
	txns     *store.TransactionStore
	rules    *store.RuleStore
	batches  *store.BatchStore
	dir      *directory.Service
	log      *zap.Logger
}

// NewServer wires the core into an HTTP server.
func NewServer(importer *pipeline.Importer, ctrl *lifecycle.Controller, txns *store.TransactionStore, rules *store.RuleStore, batches *store.BatchStore, dir *directory.Service, log *zap.Logger) *Server {
	return &Server{
		importer: importer,
		ctrl:     ctrl,
		txns:     txns,
		rules:    rules,
		batches:  batches,
		dir:      dir,
		log:      log,
	}
}

// Routes builds the router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/imports", s.handleImport)
	r.Get("/batches", s.handleListBatches)

	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", s.handleListTransactions)
		r.Post("/approve", s.handleApprove)
		r.Post("/approve-high-confidence", s.handleApproveHighConfidence)
		r.Post("/post", s.handlePost)
		r.Route("/{id}", func(r chi.Router) {
			r.Patch("/", s.handleEdit)
			r.Post("/reject", s.handleReject)
			r.Post("/exclude", s.handleExclude)
			r.Post("/match", s.handleMatch)
			r.Get("/candidates", s.handleCandidates)
		})
	})

	r.Route("/rules", func(r chi.Router) {
		r.Get("/", s.handleListRules)
		r.Post("/", s.handleCreateRule)
		r.Post("/test", s.handleTestRule)
		r.Delete("/{id}", s.handleDeleteRule)
	})

	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encoding response failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_input", "malformed JSON body")
		return false
	}
	return true
}
