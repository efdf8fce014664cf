package server

import "net/http"

// GetStats devolve as contagens por label de nó e por tipo de aresta do
// plano ativo.
func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := StatsDTO{
		Plan:  s.plan.Name,
		Nodes: make(map[string]int64),
		Edges: make(map[string]int64),
	}

	for _, label := range s.plan.Labels() {
		count, err := s.queries.NodeCount(r.Context(), label)
		if err != nil {
			s.writeQueryError(w, r, err)
			return
		}
		stats.Nodes[label] = count
	}

	for _, relType := range s.plan.RelationshipTypes() {
		count, err := s.queries.RelationshipCount(r.Context(), relType)
		if err != nil {
			s.writeQueryError(w, r, err)
			return
		}
		stats.Edges[relType] = count
	}

	writeJSON(w, http.StatusOK, stats)
}
