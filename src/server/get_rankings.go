package server

import (
	"net/http"
	"strconv"
)

// GetTopNodes ranqueia os nós de um label pelo grau de entrada de um
// tipo de relacionamento: /v1/nodes/User/top?rel=FOLLOWS&limit=10.
func (s *Server) GetTopNodes(w http.ResponseWriter, r *http.Request) {
	label := r.PathValue("label")
	if !s.hasLabel(label) {
		http.Error(w, "Unknown node label", http.StatusBadRequest)
		return
	}

	relType := r.URL.Query().Get("rel")
	if !s.hasRelationshipType(relType) {
		http.Error(w, "Query parameter 'rel' must name a relationship type of the active plan", http.StatusBadRequest)
		return
	}

	limit := queryLimit(r, 10)

	rows, err := s.queries.TopByIncomingDegree(r.Context(), label, relType, limit)
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}

	ranked := make([]RankedNodeDTO, 0, len(rows))
	for _, row := range rows {
		dto := RankedNodeDTO{}
		if node, ok := row["node"].(map[string]any); ok {
			dto.Node = node
		}
		if degree, ok := row["degree"].(int64); ok {
			dto.Degree = degree
		}
		ranked = append(ranked, dto)
	}

	writeJSON(w, http.StatusOK, ranked)
}

func queryLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > 1000 {
		return fallback
	}
	return limit
}
