package server

import "net/http"

// GetPageRank expõe o ranking de PageRank calculado pela extensão de
// algoritmos do store: /v1/analytics/pagerank?label=User&rel=FOLLOWS.
func (s *Server) GetPageRank(w http.ResponseWriter, r *http.Request) {
	label, relType, ok := s.analyticsParams(w, r)
	if !ok {
		return
	}

	rows, err := s.queries.PageRank(r.Context(), label, relType, queryLimit(r, 20))
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}

	scored := make([]ScoredNodeDTO, 0, len(rows))
	for _, row := range rows {
		dto := ScoredNodeDTO{}
		if node, ok := row["node"].(map[string]any); ok {
			dto.Node = node
		}
		if score, ok := row["score"].(float64); ok {
			dto.Score = score
		}
		scored = append(scored, dto)
	}

	writeJSON(w, http.StatusOK, scored)
}

// GetCommunities expõe a detecção de comunidades (Louvain) da mesma
// extensão: /v1/analytics/communities?label=User&rel=FOLLOWS.
func (s *Server) GetCommunities(w http.ResponseWriter, r *http.Request) {
	label, relType, ok := s.analyticsParams(w, r)
	if !ok {
		return
	}

	rows, err := s.queries.Communities(r.Context(), label, relType, queryLimit(r, 100))
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}

	members := make([]CommunityNodeDTO, 0, len(rows))
	for _, row := range rows {
		dto := CommunityNodeDTO{}
		if node, ok := row["node"].(map[string]any); ok {
			dto.Node = node
		}
		if communityID, ok := row["communityId"].(int64); ok {
			dto.CommunityID = communityID
		}
		members = append(members, dto)
	}

	writeJSON(w, http.StatusOK, members)
}

func (s *Server) analyticsParams(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	label := r.URL.Query().Get("label")
	if !s.hasLabel(label) {
		http.Error(w, "Query parameter 'label' must name a label of the active plan", http.StatusBadRequest)
		return "", "", false
	}

	relType := r.URL.Query().Get("rel")
	if !s.hasRelationshipType(relType) {
		http.Error(w, "Query parameter 'rel' must name a relationship type of the active plan", http.StatusBadRequest)
		return "", "", false
	}

	return label, relType, true
}
