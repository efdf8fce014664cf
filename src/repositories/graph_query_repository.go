package repositories

import (
	"context"
	"fmt"

	"graphmigrate/src/domain"
)

// GraphQueryRepository emite as consultas read-only do serviço de
// leitura contra o grafo populado. Labels e tipos chegam do plano
// validado; valores de usuário só trafegam como parâmetros.
type GraphQueryRepository struct {
	runner GraphRunner
}

func NewGraphQueryRepository(runner GraphRunner) *GraphQueryRepository {
	return &GraphQueryRepository{runner: runner}
}

func (r *GraphQueryRepository) NodeCount(ctx context.Context, label string) (int64, error) {
	if !domain.ValidIdentifier(label) {
		return 0, fmt.Errorf("%w: label %q", domain.ErrInvalidPlan, label)
	}

	rows, err := r.runner.Read(ctx, fmt.Sprintf("MATCH (n:`%s`) RETURN count(n) AS count", label), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s nodes: %w", label, err)
	}
	return countFrom(rows)
}

func (r *GraphQueryRepository) RelationshipCount(ctx context.Context, relType string) (int64, error) {
	if !domain.ValidIdentifier(relType) {
		return 0, fmt.Errorf("%w: relationship type %q", domain.ErrInvalidPlan, relType)
	}

	rows, err := r.runner.Read(ctx, fmt.Sprintf("MATCH ()-[r:`%s`]->() RETURN count(r) AS count", relType), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s relationships: %w", relType, err)
	}
	return countFrom(rows)
}

// TopByIncomingDegree ranqueia os nós de um label pelo grau de entrada
// de um tipo de relacionamento.
func (r *GraphQueryRepository) TopByIncomingDegree(ctx context.Context, label string, relType string, limit int) ([]map[string]any, error) {
	if !domain.ValidIdentifier(label) || !domain.ValidIdentifier(relType) {
		return nil, fmt.Errorf("%w: label %q / relationship type %q", domain.ErrInvalidPlan, label, relType)
	}

	cypher := fmt.Sprintf(`MATCH (n:`+"`%s`"+`)
WITH n, COUNT { (n)<-[:`+"`%s`"+`]-() } AS degree
ORDER BY degree DESC
LIMIT $limit
RETURN properties(n) AS node, degree`, label, relType)

	rows, err := r.runner.Read(ctx, cypher, map[string]any{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("failed to rank %s by incoming %s: %w", label, relType, err)
	}
	return rows, nil
}

// DistributionByBucket conta nós de um label por bucket temporal de uma
// propriedade de data. bucket aceita day, month ou year.
func (r *GraphQueryRepository) DistributionByBucket(ctx context.Context, label string, property string, bucket string) ([]map[string]any, error) {
	if !domain.ValidIdentifier(label) || !domain.ValidIdentifier(property) {
		return nil, fmt.Errorf("%w: label %q / property %q", domain.ErrInvalidPlan, label, property)
	}

	switch bucket {
	case "day", "month", "year":
	default:
		return nil, fmt.Errorf("unsupported bucket %q (want day, month or year)", bucket)
	}

	cypher := fmt.Sprintf(`MATCH (n:`+"`%s`"+`)
WHERE n.`+"`%s`"+` IS NOT NULL
WITH toString(date.truncate('%s', n.`+"`%s`"+`)) AS bucket
RETURN bucket, count(*) AS count
ORDER BY bucket`, label, property, bucket, property)

	rows, err := r.runner.Read(ctx, cypher, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to bucket %s.%s by %s: %w", label, property, bucket, err)
	}
	return rows, nil
}

// ShortestPath busca o menor caminho não-dirigido entre dois nós
// identificados por chave natural.
func (r *GraphQueryRepository) ShortestPath(ctx context.Context, fromLabel string, fromKey string, from any, toLabel string, toKey string, to any) ([]map[string]any, error) {
	for _, ident := range []string{fromLabel, fromKey, toLabel, toKey} {
		if !domain.ValidIdentifier(ident) {
			return nil, fmt.Errorf("%w: identifier %q", domain.ErrInvalidPlan, ident)
		}
	}

	cypher := fmt.Sprintf(`MATCH (a:`+"`%s`"+` {`+"`%s`"+`: $from}), (b:`+"`%s`"+` {`+"`%s`"+`: $to})
MATCH p = shortestPath((a)-[*]-(b))
RETURN [node IN nodes(p) | properties(node)] AS nodes, length(p) AS length`,
		fromLabel, fromKey, toLabel, toKey)

	rows, err := r.runner.Read(ctx, cypher, map[string]any{"from": from, "to": to})
	if err != nil {
		return nil, fmt.Errorf("failed to find shortest path: %w", err)
	}
	return rows, nil
}

// PageRank delega para a extensão de algoritmos de grafo instalada no
// store; este serviço não implementa o algoritmo.
func (r *GraphQueryRepository) PageRank(ctx context.Context, label string, relType string, limit int) ([]map[string]any, error) {
	if !domain.ValidIdentifier(label) || !domain.ValidIdentifier(relType) {
		return nil, fmt.Errorf("%w: label %q / relationship type %q", domain.ErrInvalidPlan, label, relType)
	}

	cypher := `CALL gds.pageRank.stream({nodeProjection: $label, relationshipProjection: $relType})
YIELD nodeId, score
RETURN properties(gds.util.asNode(nodeId)) AS node, score
ORDER BY score DESC
LIMIT $limit`

	rows, err := r.runner.Read(ctx, cypher, map[string]any{"label": label, "relType": relType, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("failed to run pagerank: %w", err)
	}
	return rows, nil
}

// Communities delega a detecção de comunidades (Louvain) para a mesma
// extensão.
func (r *GraphQueryRepository) Communities(ctx context.Context, label string, relType string, limit int) ([]map[string]any, error) {
	if !domain.ValidIdentifier(label) || !domain.ValidIdentifier(relType) {
		return nil, fmt.Errorf("%w: label %q / relationship type %q", domain.ErrInvalidPlan, label, relType)
	}

	cypher := `CALL gds.louvain.stream({nodeProjection: $label, relationshipProjection: {REL: {type: $relType, orientation: 'UNDIRECTED'}}})
YIELD nodeId, communityId
RETURN properties(gds.util.asNode(nodeId)) AS node, communityId
ORDER BY communityId
LIMIT $limit`

	rows, err := r.runner.Read(ctx, cypher, map[string]any{"label": label, "relType": relType, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("failed to run community detection: %w", err)
	}
	return rows, nil
}

func countFrom(rows []map[string]any) (int64, error) {
	if len(rows) == 0 {
		return 0, fmt.Errorf("store returned no count")
	}
	count, ok := rows[0]["count"].(int64)
	if !ok {
		return 0, fmt.Errorf("store returned non-integer count")
	}
	return count, nil
}
