package pipeline

import (
	"context"
	"log/slog"
	"time"

	"graphmigrate/src/domain"
	"graphmigrate/src/helper/retry"
	"graphmigrate/src/repositories"
	"graphmigrate/src/services/events"
)

// Extractor materializa o snapshot completo de uma origem em memória.
type Extractor interface {
	Extract(ctx context.Context, source domain.Source) (domain.RecordSet, error)
}

// Dependency é um backing store que precisa responder antes do pipeline
// começar. A probe abre e libera a própria conexão.
type Dependency struct {
	Name  string
	Probe retry.Probe
}

// Config agrupa os knobs operacionais do orquestrador.
type Config struct {
	// MaxAttempts e Delay limitam a espera por cada dependência.
	MaxAttempts int
	Delay       time.Duration
	// ClearBeforeLoad aplica o reset bruto (DETACH DELETE) antes do
	// schema. Fora isso o pipeline nunca deleta nada.
	ClearBeforeLoad bool
}

// Service é o orquestrador do pipeline: sequencia prontidão, schema,
// extração e loads em ordem de dependência, e reporta contagens
// agregadas. Uma execução por vez; nenhuma conexão é retida entre
// etapas além do pooling interno dos drivers.
type Service struct {
	logger       *slog.Logger
	plan         domain.Plan
	dependencies []Dependency
	extractors   map[domain.SourceKind]Extractor

	schemaRepository *repositories.GraphSchemaRepository
	loadRepository   *repositories.GraphLoadRepository
	queryRepository  *repositories.GraphQueryRepository
	publisher        *events.RunEventPublisher

	config Config
}

func NewService(
	logger *slog.Logger,
	plan domain.Plan,
	dependencies []Dependency,
	extractors map[domain.SourceKind]Extractor,
	schemaRepository *repositories.GraphSchemaRepository,
	loadRepository *repositories.GraphLoadRepository,
	queryRepository *repositories.GraphQueryRepository,
	publisher *events.RunEventPublisher,
	config Config,
) *Service {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 30
	}
	if config.Delay <= 0 {
		config.Delay = 2 * time.Second
	}

	return &Service{
		logger:           logger,
		plan:             plan,
		dependencies:     dependencies,
		extractors:       extractors,
		schemaRepository: schemaRepository,
		loadRepository:   loadRepository,
		queryRepository:  queryRepository,
		publisher:        publisher,
		config:           config,
	}
}
