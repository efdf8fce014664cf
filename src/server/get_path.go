package server

import (
	"net/http"
	"strconv"

	"graphmigrate/src/domain"
)

// GetShortestPath busca o menor caminho não-dirigido entre dois nós:
// /v1/path?from_label=User&from=42&to_label=User&to=99.
func (s *Server) GetShortestPath(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	fromLabel := query.Get("from_label")
	toLabel := query.Get("to_label")
	if !s.hasLabel(fromLabel) || !s.hasLabel(toLabel) {
		http.Error(w, "Query parameters 'from_label' and 'to_label' must name labels of the active plan", http.StatusBadRequest)
		return
	}

	from, ok := s.keyValue(fromLabel, query.Get("from"))
	if !ok {
		http.Error(w, "Query parameter 'from' is missing or not a valid key value", http.StatusBadRequest)
		return
	}
	to, ok := s.keyValue(toLabel, query.Get("to"))
	if !ok {
		http.Error(w, "Query parameter 'to' is missing or not a valid key value", http.StatusBadRequest)
		return
	}

	fromKey, _ := s.plan.KeyOf(fromLabel)
	toKey, _ := s.plan.KeyOf(toLabel)

	rows, err := s.queries.ShortestPath(r.Context(), fromLabel, fromKey.Name, from, toLabel, toKey.Name, to)
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}

	if len(rows) == 0 {
		http.Error(w, "No path between the given nodes", http.StatusNotFound)
		return
	}

	dto := PathDTO{}
	if nodes, ok := rows[0]["nodes"].([]any); ok {
		for _, node := range nodes {
			if props, ok := node.(map[string]any); ok {
				dto.Nodes = append(dto.Nodes, props)
			}
		}
	}
	if length, ok := rows[0]["length"].(int64); ok {
		dto.Length = length
	}

	writeJSON(w, http.StatusOK, dto)
}

// keyValue converte o valor textual da query string para o tipo da
// chave natural do label, conforme o plano ativo.
func (s *Server) keyValue(label string, raw string) (any, bool) {
	if raw == "" {
		return nil, false
	}

	key, ok := s.plan.KeyOf(label)
	if !ok {
		return nil, false
	}

	switch key.Type {
	case domain.FieldInt:
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, false
		}
		return value, true
	case domain.FieldFloat:
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, false
		}
		return value, true
	default:
		return raw, true
	}
}
