package repositories

import (
	"context"
	"fmt"
	"log/slog"

	"graphmigrate/src/domain"
)

const defaultBatchSize = 1000

// GraphLoadRepository executa os loads de entidades e relacionamentos de
// um plano contra o graph store, em lotes limitados. Os limites de lote
// só afetam throughput e memória; o estado final é o mesmo porque todo
// load é um upsert idempotente.
type GraphLoadRepository struct {
	runner    GraphRunner
	logger    *slog.Logger
	batchSize int
}

func NewGraphLoadRepository(runner GraphRunner, logger *slog.Logger, batchSize int) *GraphLoadRepository {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &GraphLoadRepository{runner: runner, logger: logger, batchSize: batchSize}
}

// UpsertEntities faz o upsert-por-chave de todos os registros de um tipo
// de entidade. Registro malformado aborta o load inteiro: a correção
// referencial dos relacionamentos depende dos nós terem sido carregados
// por completo.
func (r *GraphLoadRepository) UpsertEntities(ctx context.Context, spec domain.EntitySpec, records domain.RecordSet) (domain.LoadStats, error) {
	stats := domain.LoadStats{Name: spec.Label, Offered: len(records.Rows)}

	// Coluna ausente no header é erro estrutural da origem, não de
	// registro: falha antes de preparar qualquer row.
	for _, field := range append([]domain.FieldSpec{spec.Key}, spec.Properties...) {
		if !records.HasColumn(field.SourceColumn()) {
			return stats, fmt.Errorf("%w: source %s has no column %q", domain.ErrMalformedRecord, spec.Source.Name, field.SourceColumn())
		}
	}

	rows := make([]map[string]any, 0, len(records.Rows))
	for i, record := range records.Rows {
		row := make(map[string]any, len(spec.Properties)+1)

		key, err := convertField(record, spec.Key, true)
		if err != nil {
			return stats, fmt.Errorf("%w: %s record %d: %v", domain.ErrMalformedRecord, spec.Label, i+1, err)
		}
		row[spec.Key.Name] = key

		for _, prop := range spec.Properties {
			value, err := convertField(record, prop, false)
			if err != nil {
				return stats, fmt.Errorf("%w: %s record %d: %v", domain.ErrMalformedRecord, spec.Label, i+1, err)
			}
			row[prop.Name] = value
		}

		rows = append(rows, row)
	}

	cypher := buildEntityUpsert(spec)
	for _, batch := range chunk(rows, r.batchSize) {
		count, err := r.runCounting(ctx, cypher, batch)
		if err != nil {
			return stats, fmt.Errorf("failed to upsert %s batch: %w", spec.Label, err)
		}
		stats.Loaded += count
	}

	r.logger.Info("Loaded entities", "label", spec.Label, "count", stats.Loaded)
	return stats, nil
}

// MergeRelationships aplica uma família de relacionamentos: filtra pelo
// discriminador, resolve o tipo dinâmico por registro, agrupa por tipo
// resolvido e emite merges em lote. Registros malformados e endpoints
// ausentes são pulados com contagem, nunca fatais.
func (r *GraphLoadRepository) MergeRelationships(ctx context.Context, plan domain.Plan, spec domain.RelationshipSpec, records domain.RecordSet) (domain.LoadStats, error) {
	stats := domain.LoadStats{Name: spec.Name()}

	startKey, ok := plan.KeyOf(spec.Start.Label)
	if !ok {
		return stats, fmt.Errorf("%w: relationship %s starts at unknown label %s", domain.ErrInvalidPlan, spec.Name(), spec.Start.Label)
	}
	endKey, ok := plan.KeyOf(spec.End.Label)
	if !ok {
		return stats, fmt.Errorf("%w: relationship %s ends at unknown label %s", domain.ErrInvalidPlan, spec.Name(), spec.End.Label)
	}

	required := []string{spec.Start.Column, spec.End.Column}
	if spec.Discriminator != nil {
		required = append(required, spec.Discriminator.Column)
	}
	if spec.DynamicType != nil {
		required = append(required, spec.DynamicType.Column)
	}
	for _, prop := range spec.Properties {
		required = append(required, prop.SourceColumn())
	}
	for _, column := range required {
		if !records.HasColumn(column) {
			return stats, fmt.Errorf("%w: source %s has no column %q", domain.ErrMalformedRecord, spec.Source.Name, column)
		}
	}

	// rows agrupadas por tipo de aresta resolvido. Specs estáticos têm um
	// grupo só; o mapeamento dinâmico resolve antes de montar o statement.
	grouped := map[string][]map[string]any{}

	for i, record := range records.Rows {
		if spec.Discriminator != nil {
			value, _ := record[spec.Discriminator.Column].(string)
			if value != spec.Discriminator.Value {
				continue
			}
		}
		stats.Offered++

		row := make(map[string]any, len(spec.Properties)+2)

		start, err := convertField(record, domain.FieldSpec{Name: startKeyParam, Column: spec.Start.Column, Type: startKey.Type}, true)
		if err != nil {
			r.logger.Warn("Skipping malformed relationship record", "relationship", spec.Name(), "record", i+1, "error", err)
			stats.Skipped++
			continue
		}
		end, err := convertField(record, domain.FieldSpec{Name: endKeyParam, Column: spec.End.Column, Type: endKey.Type}, true)
		if err != nil {
			r.logger.Warn("Skipping malformed relationship record", "relationship", spec.Name(), "record", i+1, "error", err)
			stats.Skipped++
			continue
		}
		row[startKeyParam] = start
		row[endKeyParam] = end

		malformed := false
		for _, prop := range spec.Properties {
			value, err := convertField(record, prop, false)
			if err != nil {
				r.logger.Warn("Skipping malformed relationship record", "relationship", spec.Name(), "record", i+1, "error", err)
				malformed = true
				break
			}
			row[prop.Name] = value
		}
		if malformed {
			stats.Skipped++
			continue
		}

		relType := spec.Type
		if spec.DynamicType != nil {
			value, _ := record[spec.DynamicType.Column].(string)
			relType = spec.DynamicType.Resolve(value)
		}
		grouped[relType] = append(grouped[relType], row)
	}

	edgesPerRow := 1
	if spec.Symmetric {
		edgesPerRow = 2
	}

	for relType, rows := range grouped {
		cypher := buildRelationshipMerge(spec, relType, startKey.Name, endKey.Name)

		for _, batch := range chunk(rows, r.batchSize) {
			count, err := r.runCounting(ctx, cypher, batch)
			if err != nil {
				return stats, fmt.Errorf("failed to merge %s batch: %w", relType, err)
			}

			stats.Loaded += count
			// MATCH dos endpoints filtra as rows sem nó: o que não contou
			// foi pulado por integridade referencial.
			stats.Skipped += len(batch) - count/edgesPerRow
		}
	}

	r.logger.Info("Loaded relationships",
		"relationship", spec.Name(),
		"edges", stats.Loaded,
		"skipped", stats.Skipped)
	return stats, nil
}

func (r *GraphLoadRepository) runCounting(ctx context.Context, cypher string, rows []map[string]any) (int, error) {
	results, err := r.runner.Run(ctx, cypher, map[string]any{"rows": rows})
	if err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}

	count, ok := results[0]["count"].(int64)
	if !ok {
		return 0, fmt.Errorf("store returned no count for batch")
	}
	return int(count), nil
}

func chunk(rows []map[string]any, size int) [][]map[string]any {
	if len(rows) == 0 {
		return nil
	}

	batches := make([][]map[string]any, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		batches = append(batches, rows[start:end])
	}
	return batches
}
