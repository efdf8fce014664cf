package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"graphmigrate/src/domain"
	"graphmigrate/src/domain/plans"
	"graphmigrate/src/helper/env"
	"graphmigrate/src/infra/neo4j"
	"graphmigrate/src/infra/redis"
	"graphmigrate/src/repositories"
	"graphmigrate/src/server"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

func main() {
	// Configurar logger
	log.SetOutput(os.Stdout)
	log.Println("Starting API server with Uber Fx...")

	_ = godotenv.Load()

	app := fx.New(
		// Providers
		fx.Provide(
			newLogger,
			newPlan,
			newGraphClient,
			newRedisClient,
			newGraphQueries,
			newServer,
		),

		// Invocations
		fx.Invoke(registerServerHooks),
	)

	// Start the application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	// Wait for app to exit gracefully
	<-app.Done()
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

// newRedisClient é opcional: sem REDIS_ADDRS a API consulta o grafo
// direto, sem cache.
func newRedisClient(logger *slog.Logger) *redis.RedisClient {
	addrs := env.GetString("REDIS_ADDRS", "")
	if addrs == "" {
		logger.Info("REDIS_ADDRS not set, query cache disabled")
		return nil
	}

	poolSize := env.GetInt("REDIS_POOL_SIZE", 10)
	ttl := env.GetDuration("REDIS_CACHE_TTL", 5*time.Minute)
	client := redis.NewRedisClient(addrs, poolSize, ttl).WithPrefix("graphmigrate:")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.HealthCheck(ctx); err != nil {
		logger.Warn("redis cluster unreachable, queries will fall through to the graph", "error", err)
	}

	return client
}

func newGraphQueries(graphClient *neo4j.Client, redisClient *redis.RedisClient) server.GraphQueries {
	queryRepository := repositories.NewGraphQueryRepository(graphClient)
	if redisClient == nil {
		return queryRepository
	}
	return repositories.NewCachedGraphQueryRepository(queryRepository, redisClient)
}

func newServer(
	logger *slog.Logger,
	plan domain.Plan,
	queries server.GraphQueries,
	graphClient *neo4j.Client,
) *server.Server {

	port := 8888 // default value
	if portStr := os.Getenv("SERVER_ADDR"); portStr != "" {
		if val, err := strconv.Atoi(portStr); err == nil {
			port = val
		}
	}

	return server.NewServer(logger, port, plan, queries, graphClient)
}

// registerServerHooks registers lifecycle hooks for the HTTP server
func registerServerHooks(lc fx.Lifecycle, srv *server.Server, graphClient *neo4j.Client) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// Start server in a separate goroutine
			go func() {
				if err := srv.Start(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("Server failed: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			// Create timeout context for graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("Server forced to shutdown: %v", err)
				return err
			}

			log.Println("Server exited gracefully")
			return graphClient.Close(shutdownCtx)
		},
	})
}
