package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"graphmigrate/src/domain"
	"graphmigrate/src/infra/kafka"
)

// RunEvent é o evento publicado a cada transição de etapa do pipeline.
// Consumidores típicos: dashboards de carga e alertas de falha.
type RunEvent struct {
	RunID      string       `json:"run_id"`
	Plan       string       `json:"plan"`
	Stage      string       `json:"stage"`
	State      domain.State `json:"state"`
	OccurredAt time.Time    `json:"occurred_at"`
	Error      string       `json:"error,omitempty"`

	Stats *domain.LoadStats `json:"stats,omitempty"`
}

// RunEventPublisher publica eventos de execução no Kafka. Um publisher
// nil é válido e desliga a publicação por completo.
type RunEventPublisher struct {
	logger      *slog.Logger
	kafkaClient *kafka.KafkaClient
	topic       string
}

func NewRunEventPublisher(
	logger *slog.Logger,
	kafkaClient *kafka.KafkaClient,
	topic string,
) *RunEventPublisher {
	return &RunEventPublisher{
		logger:      logger,
		kafkaClient: kafkaClient,
		topic:       topic,
	}
}

// Publish serializa e envia um evento de execução. Falha de publicação
// não derruba o pipeline: o evento é observabilidade, não estado.
func (p *RunEventPublisher) Publish(ctx context.Context, event RunEvent) {
	if p == nil {
		return
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal run event", "error", err, "run_id", event.RunID)
		return
	}

	message := kafka.Message{
		// Particiona por run para manter a ordem das etapas de uma execução.
		Key:   event.RunID,
		Value: eventBytes,
		Headers: map[string]string{
			"event_type":     "pipeline_run",
			"source_service": "graphmigrate-etl",
			"schema_version": "v1",
			"plan":           event.Plan,
			"state":          string(event.State),
		},
	}

	if err := p.kafkaClient.Producer([]kafka.Message{message}, p.topic); err != nil {
		p.logger.Error("Failed to publish run event",
			"error", err,
			"topic", p.topic,
			"run_id", event.RunID,
			"stage", event.Stage)
		return
	}

	p.logger.Debug("Published run event",
		"topic", p.topic,
		"run_id", event.RunID,
		"stage", event.Stage,
		"state", event.State)
}

// PublishFailure é o atalho usado pelo orquestrador ao abortar.
func (p *RunEventPublisher) PublishFailure(ctx context.Context, runID string, plan string, stage string, err error) {
	p.Publish(ctx, RunEvent{
		RunID:      runID,
		Plan:       plan,
		Stage:      stage,
		State:      domain.StateFailed,
		OccurredAt: time.Now().UTC(),
		Error:      fmt.Sprintf("%v", err),
	})
}
