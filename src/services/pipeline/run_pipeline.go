package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"graphmigrate/src/domain"
	"graphmigrate/src/helper/retry"
	"graphmigrate/src/services/events"
)

// Run executa o pipeline completo em etapas estritamente ordenadas:
// todas as entidades são carregadas antes de qualquer família de
// relacionamentos, que é o que garante a integridade referencial das
// arestas. A primeira falha irrecuperável aborta a execução; skips por
// registro dentro dos loaders são resultados esperados e só contam.
func (s *Service) Run(ctx context.Context) (domain.RunReport, error) {
	report := domain.RunReport{
		RunID:     uuid.NewString(),
		Plan:      s.plan.Name,
		State:     domain.StateNotStarted,
		StartedAt: time.Now().UTC(),
	}

	s.logger.Info("Starting migration pipeline", "run_id", report.RunID, "plan", s.plan.Name)

	if err := s.plan.Validate(); err != nil {
		return s.fail(ctx, report, "validate_plan", err)
	}

	// Snapshots memoizados por origem: a mesma tabela/arquivo pode
	// alimentar um loader de entidades e outro de relacionamentos.
	snapshots := map[domain.Source]domain.RecordSet{}

	// ---- Espera pelas dependências -------------------------------------
	report.State = domain.StateWaitingOnDependencies
	for _, dependency := range s.dependencies {
		if err := retry.WaitUntilReady(ctx, s.logger, dependency.Name, dependency.Probe, s.config.MaxAttempts, s.config.Delay); err != nil {
			return s.fail(ctx, report, "wait_for_dependencies", err)
		}
	}

	// ---- Schema ---------------------------------------------------------
	if s.config.ClearBeforeLoad {
		if err := s.schemaRepository.Clear(ctx); err != nil {
			return s.fail(ctx, report, "clear_store", err)
		}
	}

	if err := s.schemaRepository.EnsureSchema(ctx, s.plan.Schema); err != nil {
		return s.fail(ctx, report, "ensure_schema", err)
	}
	report.State = domain.StateSchemaReady
	s.publishStage(ctx, report, "ensure_schema", nil)

	// ---- Entidades, na ordem de declaração do plano ---------------------
	for _, spec := range s.plan.Entities {
		records, err := s.extract(ctx, snapshots, spec.Source)
		if err != nil {
			return s.fail(ctx, report, "extract:"+spec.Source.Name, err)
		}

		stats, err := s.loadRepository.UpsertEntities(ctx, spec, records)
		if err != nil {
			return s.fail(ctx, report, "load_entities:"+spec.Label, err)
		}
		report.Entities = append(report.Entities, stats)
	}
	report.State = domain.StateEntitiesLoaded
	s.publishStage(ctx, report, "load_entities", nil)

	// ---- Relacionamentos, só depois de todos os nós ---------------------
	for _, spec := range s.plan.Relationships {
		records, err := s.extract(ctx, snapshots, spec.Source)
		if err != nil {
			return s.fail(ctx, report, "extract:"+spec.Source.Name, err)
		}

		stats, err := s.loadRepository.MergeRelationships(ctx, s.plan, spec, records)
		if err != nil {
			return s.fail(ctx, report, "load_relationships:"+spec.Name(), err)
		}
		report.Relationships = append(report.Relationships, stats)
	}
	report.State = domain.StateRelationshipsLoaded
	s.publishStage(ctx, report, "load_relationships", nil)

	// ---- Estatísticas autoritativas do store ----------------------------
	if err := s.reportStats(ctx, &report); err != nil {
		return s.fail(ctx, report, "report_stats", err)
	}
	report.State = domain.StateStatsReported

	report.State = domain.StateDone
	report.FinishedAt = time.Now().UTC()
	s.publishStage(ctx, report, "done", nil)

	s.logger.Info("Migration pipeline finished",
		"run_id", report.RunID,
		"plan", report.Plan,
		"duration", report.FinishedAt.Sub(report.StartedAt).String())

	return report, nil
}

func (s *Service) extract(ctx context.Context, snapshots map[domain.Source]domain.RecordSet, source domain.Source) (domain.RecordSet, error) {
	if records, ok := snapshots[source]; ok {
		return records, nil
	}

	extractor, ok := s.extractors[source.Kind]
	if !ok {
		return domain.RecordSet{}, fmt.Errorf("%w: no extractor configured for %s sources", domain.ErrInvalidPlan, source.Kind)
	}

	records, err := extractor.Extract(ctx, source)
	if err != nil {
		return domain.RecordSet{}, err
	}

	s.logger.Info("Extracted source snapshot", "source", source.Name, "records", len(records.Rows))
	snapshots[source] = records
	return records, nil
}

func (s *Service) reportStats(ctx context.Context, report *domain.RunReport) error {
	for _, label := range s.plan.Labels() {
		count, err := s.queryRepository.NodeCount(ctx, label)
		if err != nil {
			return err
		}
		report.NodeCounts = append(report.NodeCounts, domain.StoreCount{Name: label, Count: count})
		s.logger.Info("Store node count", "label", label, "count", count)
	}

	for _, relType := range s.plan.RelationshipTypes() {
		count, err := s.queryRepository.RelationshipCount(ctx, relType)
		if err != nil {
			return err
		}
		report.EdgeCounts = append(report.EdgeCounts, domain.StoreCount{Name: relType, Count: count})
		s.logger.Info("Store relationship count", "type", relType, "count", count)
	}

	return nil
}

func (s *Service) fail(ctx context.Context, report domain.RunReport, stage string, err error) (domain.RunReport, error) {
	report.State = domain.StateFailed
	report.FailedStage = stage
	report.Error = err.Error()
	report.FinishedAt = time.Now().UTC()

	s.publisher.PublishFailure(ctx, report.RunID, report.Plan, stage, err)
	s.logger.Error("Migration pipeline failed", "run_id", report.RunID, "stage", stage, "error", err)

	return report, fmt.Errorf("pipeline stage %s: %w", stage, err)
}

func (s *Service) publishStage(ctx context.Context, report domain.RunReport, stage string, stats *domain.LoadStats) {
	s.publisher.Publish(ctx, events.RunEvent{
		RunID:      report.RunID,
		Plan:       report.Plan,
		Stage:      stage,
		State:      report.State,
		OccurredAt: time.Now().UTC(),
		Stats:      stats,
	})
}
