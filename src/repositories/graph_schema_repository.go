package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"graphmigrate/src/domain"
)

// GraphSchemaRepository estabelece o schema do grafo de forma
// idempotente antes de qualquer load.
type GraphSchemaRepository struct {
	runner GraphRunner
	logger *slog.Logger
}

func NewGraphSchemaRepository(runner GraphRunner, logger *slog.Logger) *GraphSchemaRepository {
	return &GraphSchemaRepository{runner: runner, logger: logger}
}

// EnsureSchema executa a lista ordenada de statements de
// constraint/index. Falha por "já existe" é tolerada e registrada;
// qualquer outra falha é estrutural e aborta com ErrSchemaConflict.
func (r *GraphSchemaRepository) EnsureSchema(ctx context.Context, statements []string) error {
	for _, statement := range statements {
		if err := r.runner.Exec(ctx, statement, nil); err != nil {
			if isAlreadyExists(err) {
				r.logger.Info("Schema element already exists, skipping", "statement", statement)
				continue
			}
			return fmt.Errorf("%w: %q: %v", domain.ErrSchemaConflict, statement, err)
		}
	}

	return nil
}

// Clear apaga todos os nós e relacionamentos. É o reset bruto opcional
// antes de uma carga completa, não um caminho de lifecycle incremental.
func (r *GraphSchemaRepository) Clear(ctx context.Context) error {
	if _, err := r.runner.Run(ctx, "MATCH (n) DETACH DELETE n", nil); err != nil {
		return fmt.Errorf("failed to clear graph store: %w", err)
	}

	r.logger.Info("Graph store cleared")
	return nil
}

// isAlreadyExists classifica erros de schema que indicam que a
// constraint ou o index já existem. Os statements usam IF NOT EXISTS,
// então isto só acontece com stores antigos ou statements de operador.
func isAlreadyExists(err error) bool {
	var neo4jErr *neo4j.Neo4jError
	if errors.As(err, &neo4jErr) {
		return strings.Contains(neo4jErr.Code, "AlreadyExists") ||
			strings.Contains(neo4jErr.Code, "EquivalentSchemaRule")
	}
	return false
}
