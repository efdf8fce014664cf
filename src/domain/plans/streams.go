package plans

import "graphmigrate/src/domain"

// Streams migra a rede de audiência compartilhada entre canais: a
// relação é não-dirigida na origem, então cada linha vira um par de
// arestas SHARED_AUDIENCE, uma em cada direção, com o mesmo peso.
func Streams() domain.Plan {
	return domain.Plan{
		Name: "streams",
		Schema: []string{
			"CREATE CONSTRAINT stream_id_unique IF NOT EXISTS FOR (s:Stream) REQUIRE s.id IS UNIQUE",
			"CREATE INDEX stream_language_idx IF NOT EXISTS FOR (s:Stream) ON (s.language)",
		},
		Entities: []domain.EntitySpec{
			{
				Label:  "Stream",
				Source: domain.Source{Kind: domain.SourceCSV, Name: "streams.csv"},
				Key:    domain.FieldSpec{Name: "id", Type: domain.FieldInt},
				Properties: []domain.FieldSpec{
					{Name: "language", Type: domain.FieldString},
				},
			},
		},
		Relationships: []domain.RelationshipSpec{
			{
				Type:      "SHARED_AUDIENCE",
				Source:    domain.Source{Kind: domain.SourceCSV, Name: "shared_audience.csv"},
				Start:     domain.EndpointSpec{Label: "Stream", Column: "source"},
				End:       domain.EndpointSpec{Label: "Stream", Column: "target"},
				Symmetric: true,
				Properties: []domain.FieldSpec{
					{Name: "weight", Type: domain.FieldFloat},
				},
			},
		},
	}
}
