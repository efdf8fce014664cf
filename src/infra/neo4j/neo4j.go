package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Client embrulha o driver oficial com uma sessão por unidade de
// trabalho: cada chamada abre a própria sessão e a libera no retorno,
// mesmo em erro. O pooling de conexões fica por conta do driver.
type Client struct {
	driver   neo4j.DriverWithContext
	database string
}

func NewNeo4jClient(uri string, username string, password string, database string, maxPoolSize int) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""), func(config *neo4j.Config) {
		config.MaxConnectionPoolSize = maxPoolSize
		config.ConnectionAcquisitionTimeout = 30 * time.Second
		config.MaxTransactionRetryTime = 15 * time.Second
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	return &Client{driver: driver, database: database}, nil
}

// Ping é a probe de prontidão: uma verificação de conectividade que
// abre e devolve a própria conexão.
func (c *Client) Ping(ctx context.Context) error {
	return c.driver.VerifyConnectivity(ctx)
}

// Run executa um statement parametrizado em uma transação de escrita
// gerenciada e materializa todos os registros retornados.
func (c *Client) Run(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.database})
	defer session.Close(ctx)

	rows, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return collect(ctx, tx, cypher, params)
	})
	if err != nil {
		return nil, err
	}

	return rows.([]map[string]any), nil
}

// Read executa um statement parametrizado em uma transação de leitura.
func (c *Client) Read(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.database, AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	rows, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return collect(ctx, tx, cypher, params)
	})
	if err != nil {
		return nil, err
	}

	return rows.([]map[string]any), nil
}

// Exec executa um statement em transação auto-commit. Statements de
// schema (CREATE CONSTRAINT/INDEX) não podem rodar dentro de transaction
// functions, então o initializer de schema usa este caminho.
func (c *Client) Exec(ctx context.Context, cypher string, params map[string]any) error {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.database})
	defer session.Close(ctx)

	result, err := session.Run(ctx, cypher, params)
	if err != nil {
		return err
	}

	_, err = result.Consume(ctx)
	return err
}

func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

func collect(ctx context.Context, tx neo4j.ManagedTransaction, cypher string, params map[string]any) ([]map[string]any, error) {
	result, err := tx.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}

	records, err := result.Collect(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]map[string]any, 0, len(records))
	for _, record := range records {
		rows = append(rows, record.AsMap())
	}

	return rows, nil
}
