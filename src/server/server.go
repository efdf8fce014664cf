package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"graphmigrate/src/domain"
)

// GraphQueries é o que o servidor precisa do repositório de leitura;
// tanto o repositório direto quanto o decorado com cache servem.
type GraphQueries interface {
	NodeCount(ctx context.Context, label string) (int64, error)
	RelationshipCount(ctx context.Context, relType string) (int64, error)
	TopByIncomingDegree(ctx context.Context, label string, relType string, limit int) ([]map[string]any, error)
	DistributionByBucket(ctx context.Context, label string, property string, bucket string) ([]map[string]any, error)
	ShortestPath(ctx context.Context, fromLabel string, fromKey string, from any, toLabel string, toKey string, to any) ([]map[string]any, error)
	PageRank(ctx context.Context, label string, relType string, limit int) ([]map[string]any, error)
	Communities(ctx context.Context, label string, relType string, limit int) ([]map[string]any, error)
}

// Pinger é a probe de conectividade usada pelo health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server é a API read-only sobre o grafo populado. Pass-through fino:
// nenhuma escrita, nenhuma regra de negócio além de validar que labels
// e tipos pedidos existem no plano ativo.
type Server struct {
	logger  *slog.Logger
	server  *http.Server
	mux     *http.ServeMux
	port    int
	plan    domain.Plan
	queries GraphQueries
	pinger  Pinger
}

// NewServer cria uma nova instância do servidor
func NewServer(
	logger *slog.Logger,
	port int,
	plan domain.Plan,
	queries GraphQueries,
	pinger Pinger,
) *Server {
	server := &Server{
		mux:     http.NewServeMux(),
		port:    port,
		logger:  logger,
		plan:    plan,
		queries: queries,
		pinger:  pinger,
	}

	server.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      server.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	server.mux.HandleFunc("GET /health", server.GetHealth)
	server.mux.HandleFunc("GET /v1/stats", server.GetStats)
	server.mux.HandleFunc("GET /v1/nodes/{label}/top", server.GetTopNodes)
	server.mux.HandleFunc("GET /v1/nodes/{label}/distribution", server.GetDistribution)
	server.mux.HandleFunc("GET /v1/path", server.GetShortestPath)
	server.mux.HandleFunc("GET /v1/analytics/pagerank", server.GetPageRank)
	server.mux.HandleFunc("GET /v1/analytics/communities", server.GetCommunities)

	return server
}

// Handler expõe o mux com todas as rotas registradas.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start inicia o servidor HTTP
func (s *Server) Start() error {
	s.logger.Info("Server started", "port", s.port, "plan", s.plan.Name)

	return s.server.ListenAndServe()
}

// Shutdown encerra o servidor HTTP de forma graciosa
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down server...")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.pinger.Ping(r.Context()); err != nil {
		s.logger.Error("Health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, HealthDTO{Status: "unhealthy", Database: "unreachable"})
		return
	}

	writeJSON(w, http.StatusOK, HealthDTO{Status: "healthy", Database: "connected"})
}

// hasLabel valida um label de request contra o plano ativo.
func (s *Server) hasLabel(label string) bool {
	for _, l := range s.plan.Labels() {
		if l == label {
			return true
		}
	}
	return false
}

// hasRelationshipType valida um tipo de aresta de request contra o
// plano ativo.
func (s *Server) hasRelationshipType(relType string) bool {
	for _, t := range s.plan.RelationshipTypes() {
		if t == relType {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("ERROR: Failed to write JSON response: %v", err)
	}
}

func (s *Server) writeQueryError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("Query failed", "path", r.URL.Path, "error", err)
	http.Error(w, domain.ErrUnavailableServer.Error(), http.StatusInternalServerError)
}
