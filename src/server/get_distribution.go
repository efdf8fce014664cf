package server

import (
	"net/http"

	"graphmigrate/src/domain"
)

// GetDistribution conta nós por bucket temporal de uma propriedade de
// data: /v1/nodes/Tweet/distribution?property=createdAt&bucket=day.
func (s *Server) GetDistribution(w http.ResponseWriter, r *http.Request) {
	label := r.PathValue("label")
	if !s.hasLabel(label) {
		http.Error(w, "Unknown node label", http.StatusBadRequest)
		return
	}

	property := r.URL.Query().Get("property")
	if !domain.ValidIdentifier(property) {
		http.Error(w, "Query parameter 'property' is required", http.StatusBadRequest)
		return
	}

	bucket := r.URL.Query().Get("bucket")
	if bucket == "" {
		bucket = "day"
	}
	switch bucket {
	case "day", "month", "year":
	default:
		http.Error(w, "Query parameter 'bucket' must be day, month or year", http.StatusBadRequest)
		return
	}

	rows, err := s.queries.DistributionByBucket(r.Context(), label, property, bucket)
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}

	buckets := make([]BucketDTO, 0, len(rows))
	for _, row := range rows {
		dto := BucketDTO{}
		if value, ok := row["bucket"].(string); ok {
			dto.Bucket = value
		}
		if count, ok := row["count"].(int64); ok {
			dto.Count = count
		}
		buckets = append(buckets, dto)
	}

	writeJSON(w, http.StatusOK, buckets)
}
