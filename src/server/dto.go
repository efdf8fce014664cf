package server

type HealthDTO struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

type StatsDTO struct {
	Plan  string           `json:"plan"`
	Nodes map[string]int64 `json:"nodes"`
	Edges map[string]int64 `json:"edges"`
}

type RankedNodeDTO struct {
	Node   map[string]any `json:"node"`
	Degree int64          `json:"degree"`
}

type BucketDTO struct {
	Bucket string `json:"bucket"`
	Count  int64  `json:"count"`
}

type PathDTO struct {
	Nodes  []map[string]any `json:"nodes"`
	Length int64            `json:"length"`
}

type ScoredNodeDTO struct {
	Node  map[string]any `json:"node"`
	Score float64        `json:"score"`
}

type CommunityNodeDTO struct {
	Node        map[string]any `json:"node"`
	CommunityID int64          `json:"community_id"`
}
