package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"graphmigrate/src/domain"
	"graphmigrate/src/domain/plans"
	"graphmigrate/src/extract"
	"graphmigrate/src/helper/env"
	"graphmigrate/src/infra/kafka"
	"graphmigrate/src/infra/neo4j"
	"graphmigrate/src/infra/postgres"
	"graphmigrate/src/repositories"
	"graphmigrate/src/services/events"
	"graphmigrate/src/services/pipeline"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

func main() {
	// Configurar logger
	log.SetOutput(os.Stdout)
	log.Println("Starting migration pipeline with Uber Fx...")

	// .env é opcional: em docker as variáveis já chegam no ambiente.
	_ = godotenv.Load()

	app := fx.New(
		// Providers
		fx.Provide(
			newLogger,
			newPlan,
			newGraphClient,
			newSQLPool,
			newKafkaClient,
			newRunEventPublisher,
			newExtractors,
			newDependencies,
			newSchemaRepository,
			newLoadRepository,
			newQueryRepository,
			newPipelineService,
		),

		// Invocations
		fx.Invoke(registerClosers),
		fx.Invoke(runPipeline),
	)

	app.Run()
}

func newLogger() *slog.Logger {
	logLevel := env.GetString("LOG_LEVEL", "info")
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

func newPlan() (domain.Plan, error) {
	return plans.ByName(env.GetString("MIGRATION_PLAN", "catalog"))
}

func newGraphClient() (*neo4j.Client, error) {
	uri := env.GetString("NEO4J_URI", "bolt://localhost:7687")
	username := env.GetString("NEO4J_USER", "neo4j")
	password := env.MustGetString("NEO4J_PASSWORD")
	database := env.GetString("NEO4J_DATABASE", "neo4j")
	maxPoolSize := env.GetInt("NEO4J_MAX_POOL_SIZE", 25)

	return neo4j.NewNeo4jClient(uri, username, password, database, maxPoolSize)
}

// newSQLPool cria o pool do postgres apenas quando o plano ativo lê de
// tabelas relacionais. Planos 100% CSV retornam pool nil.
func newSQLPool(plan domain.Plan) (*pgxpool.Pool, error) {
	if !plan.HasTableSources() {
		return nil, nil
	}

	dbHost := env.MustGetString("DB_HOST")
	dbPort := env.GetString("DB_PORT", "5432")
	dbname := env.MustGetString("DB_NAME")
	dbUser := env.MustGetString("DB_USER")
	dbPassword := env.MustGetString("DB_PASSWORD")
	maxConnections := env.GetInt("DB_MAX_POOL_CONNECTIONS", 10)

	return postgres.NewPostgresClient(dbHost, dbPort, dbname, dbUser, dbPassword, maxConnections)
}

// newKafkaClient é opcional: sem KAFKA_BROKERS o pipeline roda sem
// publicar eventos de execução.
func newKafkaClient(logger *slog.Logger) (*kafka.KafkaClient, error) {
	brokers := env.GetString("KAFKA_BROKERS", "")
	if brokers == "" {
		logger.Info("KAFKA_BROKERS not set, run events disabled")
		return nil, nil
	}

	return kafka.NewKafkaClient(brokers)
}

func newRunEventPublisher(logger *slog.Logger, kafkaClient *kafka.KafkaClient) *events.RunEventPublisher {
	if kafkaClient == nil {
		return nil
	}

	topic := env.GetString("KAFKA_RUN_EVENTS_TOPIC", "graph.migration.run-events")
	return events.NewRunEventPublisher(logger, kafkaClient, topic)
}

func newExtractors(pool *pgxpool.Pool) map[domain.SourceKind]pipeline.Extractor {
	extractors := map[domain.SourceKind]pipeline.Extractor{
		domain.SourceCSV: extract.NewCSVExtractor(env.GetString("CSV_DATA_DIR", "./data")),
	}
	if pool != nil {
		extractors[domain.SourceTable] = extract.NewPostgresExtractor(pool)
	}
	return extractors
}

func newDependencies(graphClient *neo4j.Client, pool *pgxpool.Pool) []pipeline.Dependency {
	dependencies := []pipeline.Dependency{
		{Name: "neo4j", Probe: graphClient.Ping},
	}
	if pool != nil {
		dependencies = append(dependencies, pipeline.Dependency{Name: "postgres", Probe: pool.Ping})
	}
	return dependencies
}

func newSchemaRepository(graphClient *neo4j.Client, logger *slog.Logger) *repositories.GraphSchemaRepository {
	return repositories.NewGraphSchemaRepository(graphClient, logger)
}

func newLoadRepository(graphClient *neo4j.Client, logger *slog.Logger) *repositories.GraphLoadRepository {
	return repositories.NewGraphLoadRepository(graphClient, logger, env.GetInt("LOAD_BATCH_SIZE", 1000))
}

func newQueryRepository(graphClient *neo4j.Client) *repositories.GraphQueryRepository {
	return repositories.NewGraphQueryRepository(graphClient)
}

func newPipelineService(
	logger *slog.Logger,
	plan domain.Plan,
	dependencies []pipeline.Dependency,
	extractors map[domain.SourceKind]pipeline.Extractor,
	schemaRepository *repositories.GraphSchemaRepository,
	loadRepository *repositories.GraphLoadRepository,
	queryRepository *repositories.GraphQueryRepository,
	publisher *events.RunEventPublisher,
) *pipeline.Service {
	config := pipeline.Config{
		MaxAttempts:     env.GetInt("READINESS_MAX_ATTEMPTS", 30),
		Delay:           env.GetDuration("READINESS_DELAY", 2*time.Second),
		ClearBeforeLoad: env.GetBool("CLEAR_BEFORE_LOAD", false),
	}

	return pipeline.NewService(logger, plan, dependencies, extractors,
		schemaRepository, loadRepository, queryRepository, publisher, config)
}

// registerClosers garante que conexões abertas são liberadas no
// shutdown, falhando ou não a migração.
func registerClosers(lc fx.Lifecycle, graphClient *neo4j.Client, pool *pgxpool.Pool, kafkaClient *kafka.KafkaClient) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if pool != nil {
				pool.Close()
			}
			if kafkaClient != nil {
				if err := kafkaClient.Close(); err != nil {
					log.Printf("Failed to close kafka producer: %v", err)
				}
			}
			return graphClient.Close(ctx)
		},
	})
}

// runPipeline executa a migração uma única vez e encerra o processo com
// o exit code correspondente. Não é um daemon.
func runPipeline(lc fx.Lifecycle, shutdowner fx.Shutdowner, service *pipeline.Service, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				report, err := service.Run(context.Background())
				if err != nil {
					logger.Error("Migration run failed",
						"run_id", report.RunID,
						"failed_stage", report.FailedStage,
						"error", err,
					)
					_ = shutdowner.Shutdown(fx.ExitCode(1))
					return
				}

				logger.Info("Migration run finished",
					"run_id", report.RunID,
					"plan", report.Plan,
					"duration", report.FinishedAt.Sub(report.StartedAt).String(),
				)
				_ = shutdowner.Shutdown(fx.ExitCode(0))
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return nil
		},
	})
}
